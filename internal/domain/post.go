package domain

import "time"

// DefaultPostType is assigned when a submission omits the post type.
// Post types distinguish editorial formats; clients currently submit
// "article" and "opinion".
const DefaultPostType = "article"

// Post is the stored form of a blog post. Author, Categories and Tags hold
// entity IDs; API responses use PostView, which carries the resolved entities.
type Post struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Slug          string    `json:"slug"`
	Content       string    `json:"content"`
	Markdown      string    `json:"markdown"`
	Author        string    `json:"author"`
	Categories    []string  `json:"categories"`
	Tags          []string  `json:"tags"`
	CoverImage    string    `json:"coverImage,omitempty"`
	CoverBlurHash string    `json:"coverBlurHash,omitempty"`
	PostType      string    `json:"postType"`
	IsPremium     bool      `json:"isPremium"`
	Published     bool      `json:"published"`
	Views         int64     `json:"views"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Touch updates the UpdatedAt timestamp.
func (p *Post) Touch() {
	p.UpdatedAt = time.Now()
}

// IsAuthoredBy reports whether the given user wrote this post.
func (p *Post) IsAuthoredBy(userID string) bool {
	return userID != "" && p.Author == userID
}

// AuthorRef is the author projection embedded in post responses.
// Mirrors what the read side needs for bylines: name and contact, never
// credentials.
type AuthorRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// PostView is a Post with author, categories and tags resolved to entities.
// This is the only post shape that leaves the API.
type PostView struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Slug          string     `json:"slug"`
	Content       string     `json:"content"`
	Markdown      string     `json:"markdown"`
	Author        AuthorRef  `json:"author"`
	Categories    []Category `json:"categories"`
	Tags          []Tag      `json:"tags"`
	CoverImage    string     `json:"coverImage,omitempty"`
	CoverBlurHash string     `json:"coverBlurHash,omitempty"`
	PostType      string     `json:"postType"`
	IsPremium     bool       `json:"isPremium"`
	Published     bool       `json:"published"`
	Views         int64      `json:"views"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}
