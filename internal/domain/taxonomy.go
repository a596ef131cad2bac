package domain

// Category classifies posts. Flat, no hierarchy.
// Name and Slug are each unique across all categories.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Tag is a free-form label on posts. Same shape and uniqueness rules as
// Category; kept as a distinct type because posts reference the two
// independently.
type Tag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}
