// Package access centralizes the visibility and permission rules for posts.
// Handlers ask for a Decision instead of re-deriving the rules inline.
package access

import "github.com/inkwellapp/inkwell-server/internal/domain"

// Decision is the outcome of evaluating a requester against a post.
type Decision struct {
	// CanRead is true when the post is visible to the requester at all.
	// An invisible post reads as nonexistent, not as forbidden.
	CanRead bool

	// PremiumBlocked is true when the post is visible but its full content
	// is withheld because it requires a premium subscription.
	PremiumBlocked bool

	// CanWrite is true when the requester may update or delete the post.
	CanWrite bool

	// CountsView is true when serving this read should increment the
	// post's view counter. Authors and admins don't inflate their own
	// numbers; anonymous readers do count.
	CountsView bool
}

// Decide evaluates the requester (nil for anonymous) against the post.
func Decide(p *domain.Principal, post *domain.Post) Decision {
	isAuthor := p != nil && post.IsAuthoredBy(p.ID)
	isAdmin := p.IsAdmin()

	var d Decision

	// Drafts exist only for their author and admins.
	d.CanRead = post.Published || isAuthor || isAdmin

	if d.CanRead && post.IsPremium {
		hasPremium := p != nil && p.IsPremium
		d.PremiumBlocked = !hasPremium && !isAuthor && !isAdmin
	}

	d.CanWrite = isAuthor || isAdmin

	d.CountsView = d.CanRead && !d.PremiumBlocked && !isAuthor && !isAdmin

	return d
}
