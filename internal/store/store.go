// Package store provides BadgerDB-backed persistence for posts, users,
// sessions and taxonomy. Entities are stored as JSON under prefixed keys;
// uniqueness constraints (post slugs, user emails, category/tag names) are
// enforced through index keys written in the same transaction.
package store

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/inkwellapp/inkwell-server/internal/domain"
)

// Store wraps a Badger database instance.
type Store struct {
	db     *badger.DB
	logger *slog.Logger

	// Generic entities. Posts have their own accessors in posts.go because
	// of slug-index maintenance, filtered listing and the view counter.
	Users      *Entity[domain.User]
	Sessions   *Entity[domain.Session]
	Categories *Entity[domain.Category]
	Tags       *Entity[domain.Tag]
}

// New creates a new Store instance at the given database path.
func New(path string, logger *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil            // Disable Badger's internal logging
	opts.SyncWrites = true       // Ensure writes are synced to disk to prevent corruption on crashes
	opts.CompactL0OnClose = true // Compact L0 tables on close for faster startup

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	store := &Store{
		db:     db,
		logger: logger,
	}

	store.initUsers()
	store.initSessions()
	store.initTaxonomy()

	if logger != nil {
		logger.Info("Badger database opened successfully", "path", path)
	}

	return store, nil
}

// Close gracefully closes the database connection.
func (s *Store) Close() error {
	if s.logger != nil {
		s.logger.Info("Closing database connection")
	}
	return s.db.Close()
}

// initUsers initializes the Users entity.
// Emails are unique and matched case-insensitively; usernames are unique.
func (s *Store) initUsers() {
	s.Users = NewEntity[domain.User](s, "user:").
		WithIndexTransform("email",
			func(u *domain.User) []string {
				return []string{normalizeEmail(u.Email)}
			},
			normalizeEmail,
		).
		WithIndex("username", func(u *domain.User) []string {
			return []string{u.Username}
		})
}

// initSessions initializes the Sessions entity, indexed by refresh token
// hash so refresh/logout can find the session from the presented token.
func (s *Store) initSessions() {
	s.Sessions = NewEntity[domain.Session](s, "session:").
		WithIndex("token", func(sess *domain.Session) []string {
			return []string{sess.RefreshTokenHash}
		})
}

// initTaxonomy initializes the Categories and Tags entities.
// Both names and slugs are unique within each kind.
func (s *Store) initTaxonomy() {
	s.Categories = NewEntity[domain.Category](s, "category:").
		WithIndex("name", func(c *domain.Category) []string {
			return []string{c.Name}
		}).
		WithIndex("slug", func(c *domain.Category) []string {
			return []string{c.Slug}
		})

	s.Tags = NewEntity[domain.Tag](s, "tag:").
		WithIndex("name", func(t *domain.Tag) []string {
			return []string{t.Name}
		}).
		WithIndex("slug", func(t *domain.Tag) []string {
			return []string{t.Slug}
		})
}

// normalizeEmail lowercases and trims an email for index storage/lookup.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
