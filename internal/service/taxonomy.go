package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/inkwellapp/inkwell-server/internal/domain"
	domainerrors "github.com/inkwellapp/inkwell-server/internal/errors"
	"github.com/inkwellapp/inkwell-server/internal/id"
	"github.com/inkwellapp/inkwell-server/internal/store"
	"github.com/inkwellapp/inkwell-server/internal/util"
)

// TaxonomyService manages the category and tag vocabularies.
type TaxonomyService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewTaxonomyService creates a new taxonomy service.
func NewTaxonomyService(store *store.Store, logger *slog.Logger) *TaxonomyService {
	return &TaxonomyService{store: store, logger: logger}
}

// ListCategories returns all categories sorted by name.
func (s *TaxonomyService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.store.ListCategories(ctx)
}

// ListTags returns all tags sorted by name.
func (s *TaxonomyService) ListTags(ctx context.Context) ([]domain.Tag, error) {
	return s.store.ListTags(ctx)
}

// CreateCategory adds a category to the vocabulary.
func (s *TaxonomyService) CreateCategory(ctx context.Context, name string) (*domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domainerrors.Validation("name is required")
	}

	categoryID, err := id.Generate("cat")
	if err != nil {
		return nil, fmt.Errorf("generate category ID: %w", err)
	}

	category := &domain.Category{
		ID:   categoryID,
		Name: name,
		Slug: util.Slugify(name),
	}

	if err := s.store.Categories.Create(ctx, category.ID, category); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.Conflict("category already exists")
		}
		return nil, fmt.Errorf("create category: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("Category created", "category_id", category.ID, "name", name)
	}

	return category, nil
}

// CreateTag adds a tag to the vocabulary.
func (s *TaxonomyService) CreateTag(ctx context.Context, name string) (*domain.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domainerrors.Validation("name is required")
	}

	tagID, err := id.Generate("tag")
	if err != nil {
		return nil, fmt.Errorf("generate tag ID: %w", err)
	}

	tag := &domain.Tag{
		ID:   tagID,
		Name: name,
		Slug: util.Slugify(name),
	}

	if err := s.store.Tags.Create(ctx, tag.ID, tag); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.Conflict("tag already exists")
		}
		return nil, fmt.Errorf("create tag: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("Tag created", "tag_id", tag.ID, "name", name)
	}

	return tag, nil
}

// EnsureCategory returns the existing category with the given name or
// creates it. Used by the seed tool; lookup is by the name index.
func (s *TaxonomyService) EnsureCategory(ctx context.Context, name string) (*domain.Category, error) {
	if existing, err := s.store.Categories.GetByIndex(ctx, "name", strings.TrimSpace(name)); err == nil {
		return existing, nil
	}
	return s.CreateCategory(ctx, name)
}

// EnsureTag returns the existing tag with the given name or creates it.
func (s *TaxonomyService) EnsureTag(ctx context.Context, name string) (*domain.Tag, error) {
	if existing, err := s.store.Tags.GetByIndex(ctx, "name", strings.TrimSpace(name)); err == nil {
		return existing, nil
	}
	return s.CreateTag(ctx, name)
}
