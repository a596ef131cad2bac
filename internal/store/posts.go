package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/inkwellapp/inkwell-server/internal/domain"
)

// Key prefixes for post storage. The slug index enforces global slug
// uniqueness inside the same transaction that writes the post.
const (
	postPrefix       = "post:"           // post:{id} → Post JSON
	postBySlugPrefix = "idx:post:slug:"  // idx:post:slug:{slug} → postID
)

// PostFilter narrows ListPosts results. Zero values mean "no constraint".
type PostFilter struct {
	Category      string // Category ID a post must reference
	Tag           string // Tag ID a post must reference
	Search        string // Case-insensitive substring over title/content
	PublishedOnly bool   // Restrict to published posts (non-admin reads)
}

// CreatePost persists a new post.
// Returns ErrSlugTaken if another post already owns the slug.
func (s *Store) CreatePost(ctx context.Context, p *domain.Post) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal post: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		slugKey := []byte(postBySlugPrefix + p.Slug)
		if _, err := txn.Get(slugKey); err == nil {
			return ErrSlugTaken
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("check slug index: %w", err)
		}

		if err := txn.Set([]byte(postPrefix+p.ID), data); err != nil {
			return fmt.Errorf("set post: %w", err)
		}
		return txn.Set(slugKey, []byte(p.ID))
	})
}

// GetPost retrieves a post by ID.
func (s *Store) GetPost(ctx context.Context, id string) (*domain.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var p domain.Post
	err := s.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, postPrefix+id, &p, ErrPostNotFound)
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetPostBySlug retrieves a post by its slug.
func (s *Store) GetPostBySlug(ctx context.Context, slug string) (*domain.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var p domain.Post
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(postBySlugPrefix + slug))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrPostNotFound
		}
		if err != nil {
			return fmt.Errorf("get slug index: %w", err)
		}

		var id string
		if err := item.Value(func(val []byte) error {
			id = string(val)
			return nil
		}); err != nil {
			return err
		}

		return getJSON(txn, postPrefix+id, &p, ErrPostNotFound)
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdatePost replaces an existing post, maintaining the slug index.
// Returns ErrPostNotFound if the post does not exist and ErrSlugTaken if the
// new slug belongs to a different post.
func (s *Store) UpdatePost(ctx context.Context, p *domain.Post) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal post: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		var old domain.Post
		if err := getJSON(txn, postPrefix+p.ID, &old, ErrPostNotFound); err != nil {
			return err
		}

		if old.Slug != p.Slug {
			newSlugKey := []byte(postBySlugPrefix + p.Slug)
			if _, err := txn.Get(newSlugKey); err == nil {
				return ErrSlugTaken
			} else if !errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("check slug index: %w", err)
			}

			if err := txn.Delete([]byte(postBySlugPrefix + old.Slug)); err != nil {
				return fmt.Errorf("delete old slug index: %w", err)
			}
			if err := txn.Set(newSlugKey, []byte(p.ID)); err != nil {
				return fmt.Errorf("set slug index: %w", err)
			}
		}

		return txn.Set([]byte(postPrefix+p.ID), data)
	})
}

// DeletePost removes a post and its slug index entry.
// Returns ErrPostNotFound if the post does not exist.
func (s *Store) DeletePost(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		var p domain.Post
		if err := getJSON(txn, postPrefix+id, &p, ErrPostNotFound); err != nil {
			return err
		}

		if err := txn.Delete([]byte(postBySlugPrefix + p.Slug)); err != nil {
			return fmt.Errorf("delete slug index: %w", err)
		}
		return txn.Delete([]byte(postPrefix + id))
	})
}

// ListPosts returns the filtered posts for one page, newest first, along
// with the total number of posts matching the filter.
func (s *Store) ListPosts(ctx context.Context, filter PostFilter, page PageParams) ([]*domain.Post, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	page.Validate()

	var matched []*domain.Post
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(postPrefix)
		opts.PrefetchValues = true

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek([]byte(postPrefix)); it.ValidForPrefix([]byte(postPrefix)); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			var p domain.Post
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &p)
			}); err != nil {
				return fmt.Errorf("unmarshal post: %w", err)
			}

			if filter.matches(&p) {
				matched = append(matched, &p)
			}
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	// Newest first; ID tie-break keeps pagination stable.
	slices.SortFunc(matched, func(a, b *domain.Post) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})

	total := len(matched)
	start := page.Offset()
	if start >= total {
		return []*domain.Post{}, total, nil
	}
	end := min(start+page.Limit, total)
	return matched[start:end], total, nil
}

// matches reports whether a post satisfies every set filter constraint.
func (f PostFilter) matches(p *domain.Post) bool {
	if f.PublishedOnly && !p.Published {
		return false
	}
	if f.Category != "" && !slices.Contains(p.Categories, f.Category) {
		return false
	}
	if f.Tag != "" && !slices.Contains(p.Tags, f.Tag) {
		return false
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(p.Title), needle) &&
			!strings.Contains(strings.ToLower(p.Content), needle) {
			return false
		}
	}
	return true
}

// IncrementPostViews bumps a post's view counter by one and returns the
// updated post. The read-modify-write happens inside a single transaction;
// Badger aborts conflicting transactions, so the counter never loses an
// increment under concurrent reads. Conflicted attempts are retried.
func (s *Store) IncrementPostViews(ctx context.Context, id string) (*domain.Post, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var p domain.Post
		err := s.db.Update(func(txn *badger.Txn) error {
			if err := getJSON(txn, postPrefix+id, &p, ErrPostNotFound); err != nil {
				return err
			}

			p.Views++

			data, err := json.Marshal(&p)
			if err != nil {
				return fmt.Errorf("marshal post: %w", err)
			}
			return txn.Set([]byte(postPrefix+id), data)
		})
		if errors.Is(err, badger.ErrConflict) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return &p, nil
	}
}

// getJSON reads a key inside a transaction and unmarshals it, translating
// a missing key to the given sentinel.
func getJSON(txn *badger.Txn, key string, dest any, notFound error) error {
	item, err := txn.Get([]byte(key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return notFound
	}
	if err != nil {
		return fmt.Errorf("get key: %w", err)
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, dest)
	})
}
