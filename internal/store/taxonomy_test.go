package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwellapp/inkwell-server/internal/domain"
)

func seedTaxonomy(t *testing.T, s *Store) {
	t.Helper()
	ctx := context.Background()

	categories := []domain.Category{
		{ID: "cat-001", Name: "Technology", Slug: "technology"},
		{ID: "cat-002", Name: "Art", Slug: "art"},
	}
	for _, c := range categories {
		require.NoError(t, s.Categories.Create(ctx, c.ID, &c))
	}

	tags := []domain.Tag{
		{ID: "tag-001", Name: "golang", Slug: "golang"},
		{ID: "tag-002", Name: "design", Slug: "design"},
	}
	for _, tg := range tags {
		require.NoError(t, s.Tags.Create(ctx, tg.ID, &tg))
	}
}

func TestResolveCategories_DropsUnknown(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	seedTaxonomy(t, store)

	ctx := context.Background()
	resolved, err := store.ResolveCategories(ctx, []string{"cat-001", "bogus", "cat-002"})
	require.NoError(t, err)
	require.Len(t, resolved, 2)
	assert.Equal(t, "Technology", resolved[0].Name)
	assert.Equal(t, "Art", resolved[1].Name)

	resolved, err = store.ResolveCategories(ctx, []string{"bogus"})
	require.NoError(t, err)
	assert.Empty(t, resolved)
}

func TestResolveTags_DropsUnknown(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	seedTaxonomy(t, store)

	resolved, err := store.ResolveTags(context.Background(), []string{"tag-002", "nope"})
	require.NoError(t, err)
	require.Len(t, resolved, 1)
	assert.Equal(t, "design", resolved[0].Name)
}

func TestListCategories_SortedByName(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	seedTaxonomy(t, store)

	categories, err := store.ListCategories(context.Background())
	require.NoError(t, err)
	require.Len(t, categories, 2)
	assert.Equal(t, "Art", categories[0].Name)
	assert.Equal(t, "Technology", categories[1].Name)
}

func TestListTags_SortedByName(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	seedTaxonomy(t, store)

	tags, err := store.ListTags(context.Background())
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, "design", tags[0].Name)
	assert.Equal(t, "golang", tags[1].Name)
}

func TestTaxonomy_DuplicateName(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	seedTaxonomy(t, store)

	err := store.Categories.Create(context.Background(), "cat-003",
		&domain.Category{ID: "cat-003", Name: "Technology", Slug: "technology-2"})
	assert.ErrorIs(t, err, ErrAlreadyExists)
}
