package store

// PageParams contains page/limit pagination request parameters.
type PageParams struct {
	Page  int // 1-based page number (defaults to 1)
	Limit int // Items per page (defaults to 10, capped at 100)
}

// DefaultPageParams returns sensible defaults.
func DefaultPageParams() PageParams {
	return PageParams{
		Page:  1,
		Limit: 10,
	}
}

// Validate checks and corrects pagination parameters.
func (p *PageParams) Validate() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit <= 0 {
		p.Limit = 10
	}
	if p.Limit > 100 {
		p.Limit = 100
	}
}

// Offset returns the number of items to skip for this page.
func (p PageParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

// TotalPages returns the page count for a total item count.
func (p PageParams) TotalPages(total int) int {
	if total == 0 {
		return 0
	}
	return (total + p.Limit - 1) / p.Limit
}
