package store

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/inkwellapp/inkwell-server/internal/domain"
)

// ResolveCategories maps category IDs to entities, silently dropping IDs
// that do not reference an existing category. Submissions regularly carry
// stale or malformed references and the pipeline treats them as absent
// rather than failing the whole request.
func (s *Store) ResolveCategories(ctx context.Context, ids []string) ([]domain.Category, error) {
	resolved := make([]domain.Category, 0, len(ids))
	for _, id := range ids {
		c, err := s.Categories.Get(ctx, id)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, *c)
	}
	return resolved, nil
}

// ResolveTags maps tag IDs to entities with the same drop-unknown contract
// as ResolveCategories.
func (s *Store) ResolveTags(ctx context.Context, ids []string) ([]domain.Tag, error) {
	resolved := make([]domain.Tag, 0, len(ids))
	for _, id := range ids {
		t, err := s.Tags.Get(ctx, id)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, *t)
	}
	return resolved, nil
}

// ListCategories returns all categories sorted by name.
func (s *Store) ListCategories(ctx context.Context) ([]domain.Category, error) {
	var out []domain.Category
	for c, err := range s.Categories.List(ctx) {
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	slices.SortFunc(out, func(a, b domain.Category) int {
		return strings.Compare(a.Name, b.Name)
	})
	return out, nil
}

// ListTags returns all tags sorted by name.
func (s *Store) ListTags(ctx context.Context) ([]domain.Tag, error) {
	var out []domain.Tag
	for t, err := range s.Tags.List(ctx) {
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	slices.SortFunc(out, func(a, b domain.Tag) int {
		return strings.Compare(a.Name, b.Name)
	})
	return out, nil
}
