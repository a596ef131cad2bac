package access

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/inkwellapp/inkwell-server/internal/domain"
)

var (
	author  = &domain.Principal{ID: "user-author", Role: domain.RoleUser}
	admin   = &domain.Principal{ID: "user-admin", Role: domain.RoleAdmin}
	premium = &domain.Principal{ID: "user-premium", Role: domain.RoleUser, IsPremium: true}
	reader  = &domain.Principal{ID: "user-reader", Role: domain.RoleUser}
)

func publishedPost() *domain.Post {
	return &domain.Post{ID: "post-001", Author: "user-author", Published: true}
}

func TestDecide_PublishedPost(t *testing.T) {
	post := publishedPost()

	tests := []struct {
		name       string
		principal  *domain.Principal
		canRead    bool
		countsView bool
	}{
		{"anonymous", nil, true, true},
		{"regular reader", reader, true, true},
		{"author", author, true, false},
		{"admin", admin, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Decide(tt.principal, post)
			assert.Equal(t, tt.canRead, d.CanRead)
			assert.Equal(t, tt.countsView, d.CountsView)
			assert.False(t, d.PremiumBlocked)
		})
	}
}

func TestDecide_Draft(t *testing.T) {
	post := publishedPost()
	post.Published = false

	assert.False(t, Decide(nil, post).CanRead)
	assert.False(t, Decide(reader, post).CanRead)
	assert.True(t, Decide(author, post).CanRead)
	assert.True(t, Decide(admin, post).CanRead)

	// Nobody's draft reads count as views
	assert.False(t, Decide(author, post).CountsView)
	assert.False(t, Decide(admin, post).CountsView)
}

func TestDecide_PremiumPost(t *testing.T) {
	post := publishedPost()
	post.IsPremium = true

	tests := []struct {
		name       string
		principal  *domain.Principal
		blocked    bool
		countsView bool
	}{
		{"anonymous", nil, true, false},
		{"regular reader", reader, true, false},
		{"premium reader", premium, false, true},
		{"author without premium", author, false, false},
		{"admin without premium", admin, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Decide(tt.principal, post)
			assert.True(t, d.CanRead)
			assert.Equal(t, tt.blocked, d.PremiumBlocked)
			assert.Equal(t, tt.countsView, d.CountsView)
		})
	}
}

func TestDecide_Write(t *testing.T) {
	post := publishedPost()

	assert.False(t, Decide(nil, post).CanWrite)
	assert.False(t, Decide(reader, post).CanWrite)
	assert.True(t, Decide(author, post).CanWrite)
	assert.True(t, Decide(admin, post).CanWrite)
}
