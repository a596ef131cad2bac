package domain

import "time"

// Role represents the user's permission level in the system.
type Role string

const (
	// RoleAdmin grants full administrative access.
	RoleAdmin Role = "admin"
	// RoleUser grants standard author access.
	RoleUser Role = "user"
)

// User represents an account in the system. Every user can author posts;
// premium subscription gates reading premium content, not writing it.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"passwordHash,omitempty"` // Stored hashed, filter from API responses
	Role         Role      `json:"role"`
	IsPremium    bool      `json:"isPremium"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// IsAdmin returns true if the user has administrative privileges.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Ref returns the author projection used in post responses.
func (u *User) Ref() AuthorRef {
	return AuthorRef{ID: u.ID, Name: u.Name, Email: u.Email}
}

// Sanitized returns a copy safe to send to clients, with the password hash
// stripped.
func (u *User) Sanitized() *User {
	clean := *u
	clean.PasswordHash = ""
	return &clean
}

// Principal is the authenticated identity making a request.
// A nil *Principal means the request is anonymous.
type Principal struct {
	ID        string `json:"id"`
	Role      Role   `json:"role"`
	IsPremium bool   `json:"isPremium"`
}

// IsAdmin returns true for administrative principals. Safe on nil.
func (p *Principal) IsAdmin() bool {
	return p != nil && p.Role == RoleAdmin
}

// UserID returns the principal's user ID, or "" for anonymous requests.
func (p *Principal) UserID() string {
	if p == nil {
		return ""
	}
	return p.ID
}
