package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/inkwellapp/inkwell-server/internal/access"
	"github.com/inkwellapp/inkwell-server/internal/domain"
	domainerrors "github.com/inkwellapp/inkwell-server/internal/errors"
	"github.com/inkwellapp/inkwell-server/internal/id"
	"github.com/inkwellapp/inkwell-server/internal/media/uploads"
	"github.com/inkwellapp/inkwell-server/internal/normalize"
	"github.com/inkwellapp/inkwell-server/internal/store"
	"github.com/inkwellapp/inkwell-server/internal/util"
)

// Post error messages. Ownership failures deliberately read the same as
// missing posts so the API doesn't confirm another author's post exists.
const (
	msgSlugTaken    = "A post with this title already exists"
	msgNotPublished = "Post not found or not published"
	msgPremiumOnly  = "Premium content requires subscription"
	msgUpdateDenied = "Post not found or you don't have permission to update it"
	msgDeleteDenied = "Post not found or you don't have permission to delete it"
)

// PostService runs the post submission pipeline and read-side access rules.
type PostService struct {
	store   *store.Store
	uploads *uploads.Storage
	logger  *slog.Logger
}

// NewPostService creates a new post service.
func NewPostService(store *store.Store, uploads *uploads.Storage, logger *slog.Logger) *PostService {
	return &PostService{
		store:   store,
		uploads: uploads,
		logger:  logger,
	}
}

// CoverUpload carries a submitted cover image.
type CoverUpload struct {
	Filename string
	Data     []byte
}

// PostInput is the raw submission payload. Multipart fields arrive as
// strings while JSON bodies carry native types, so list and boolean fields
// stay untyped until normalization.
type PostInput struct {
	Title      string
	Content    string
	Markdown   string
	Categories any
	Tags       any
	IsPremium  any
	Published  any
	PostType   string
	Cover      *CoverUpload
}

// ListParams selects and pages the post list.
type ListParams struct {
	Category string
	Tag      string
	Search   string
	Page     int
	Limit    int
}

// ListResult is one page of posts with paging metadata.
type ListResult struct {
	Posts       []*domain.PostView
	TotalPages  int
	CurrentPage int
}

// Submit runs the full creation pipeline: validation, body backfill, slug
// derivation, taxonomy resolution, cover storage, and persistence.
func (s *PostService) Submit(ctx context.Context, principal *domain.Principal, input PostInput) (*domain.PostView, error) {
	if err := validateSubmission(input); err != nil {
		return nil, err
	}

	content, markdown := normalize.Body(input.Content, input.Markdown)

	categories, tags, err := s.resolveTaxonomy(ctx, input.Categories, input.Tags)
	if err != nil {
		return nil, err
	}

	postType := strings.TrimSpace(input.PostType)
	if postType == "" {
		postType = domain.DefaultPostType
	}

	postID, err := id.Generate("post")
	if err != nil {
		return nil, fmt.Errorf("generate post ID: %w", err)
	}

	now := time.Now()
	post := &domain.Post{
		ID:         postID,
		Title:      strings.TrimSpace(input.Title),
		Slug:       util.Slugify(input.Title),
		Content:    content,
		Markdown:   markdown,
		Author:     principal.ID,
		Categories: categoryIDs(categories),
		Tags:       tagIDs(tags),
		PostType:   postType,
		IsPremium:  normalize.Bool(input.IsPremium),
		Published:  normalize.Bool(input.Published),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if input.Cover != nil {
		if err := s.storeCover(post, input.Cover); err != nil {
			return nil, err
		}
	}

	if err := s.store.CreatePost(ctx, post); err != nil {
		if errors.Is(err, store.ErrSlugTaken) {
			return nil, domainerrors.Conflict(msgSlugTaken)
		}
		return nil, fmt.Errorf("create post: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("Post created",
			"post_id", post.ID,
			"slug", post.Slug,
			"author", post.Author,
		)
	}

	return s.buildView(ctx, post)
}

// GetBySlug returns a single post for reading, applying visibility and
// premium rules and counting the view when appropriate.
func (s *PostService) GetBySlug(ctx context.Context, principal *domain.Principal, slug string) (*domain.PostView, error) {
	post, err := s.store.GetPostBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, store.ErrPostNotFound) {
			return nil, domainerrors.NotFound(msgNotPublished)
		}
		return nil, fmt.Errorf("get post: %w", err)
	}

	decision := access.Decide(principal, post)
	if !decision.CanRead {
		return nil, domainerrors.NotFound(msgNotPublished)
	}
	if decision.PremiumBlocked {
		return nil, domainerrors.Forbidden(msgPremiumOnly)
	}

	if decision.CountsView {
		updated, err := s.store.IncrementPostViews(ctx, post.ID)
		if err != nil {
			// Losing a view count shouldn't fail the read
			if s.logger != nil {
				s.logger.Warn("Failed to count view", "post_id", post.ID, "error", err)
			}
		} else {
			post = updated
		}
	}

	return s.buildView(ctx, post)
}

// List returns a page of posts. Drafts are included only for admins.
func (s *PostService) List(ctx context.Context, principal *domain.Principal, params ListParams) (*ListResult, error) {
	page := store.PageParams{Page: params.Page, Limit: params.Limit}
	page.Validate()

	filter := store.PostFilter{
		Category:      params.Category,
		Tag:           params.Tag,
		Search:        params.Search,
		PublishedOnly: !principal.IsAdmin(),
	}

	posts, total, err := s.store.ListPosts(ctx, filter, page)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}

	views := make([]*domain.PostView, 0, len(posts))
	for _, post := range posts {
		view, err := s.buildView(ctx, post)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}

	return &ListResult{
		Posts:       views,
		TotalPages:  page.TotalPages(total),
		CurrentPage: page.Page,
	}, nil
}

// Update applies a partial update to a post. Only the author or an admin may
// update; anyone else sees the post as missing.
func (s *PostService) Update(ctx context.Context, principal *domain.Principal, postID string, input PostInput) (*domain.PostView, error) {
	post, err := s.store.GetPost(ctx, postID)
	if err != nil {
		if errors.Is(err, store.ErrPostNotFound) {
			return nil, domainerrors.NotFound(msgUpdateDenied)
		}
		return nil, fmt.Errorf("get post: %w", err)
	}

	if !access.Decide(principal, post).CanWrite {
		return nil, domainerrors.NotFound(msgUpdateDenied)
	}

	if title := strings.TrimSpace(input.Title); title != "" {
		post.Title = title
		post.Slug = util.Slugify(title)
	}

	if input.Content != "" || input.Markdown != "" {
		post.Content, post.Markdown = normalize.Body(input.Content, input.Markdown)
	}

	if input.Categories != nil {
		resolved, err := s.store.ResolveCategories(ctx, normalize.ReferenceList(input.Categories))
		if err != nil {
			return nil, fmt.Errorf("resolve categories: %w", err)
		}
		post.Categories = categoryIDs(resolved)
	}

	if input.Tags != nil {
		resolved, err := s.store.ResolveTags(ctx, normalize.ReferenceList(input.Tags))
		if err != nil {
			return nil, fmt.Errorf("resolve tags: %w", err)
		}
		post.Tags = tagIDs(resolved)
	}

	if input.IsPremium != nil {
		post.IsPremium = normalize.Bool(input.IsPremium)
	}
	if input.Published != nil {
		post.Published = normalize.Bool(input.Published)
	}
	if postType := strings.TrimSpace(input.PostType); postType != "" {
		post.PostType = postType
	}

	if input.Cover != nil {
		oldCover := post.CoverImage
		if err := s.storeCover(post, input.Cover); err != nil {
			return nil, err
		}
		if oldCover != "" && oldCover != post.CoverImage {
			_ = s.uploads.Delete(oldCover)
		}
	}

	post.Touch()

	if err := s.store.UpdatePost(ctx, post); err != nil {
		if errors.Is(err, store.ErrSlugTaken) {
			return nil, domainerrors.Conflict(msgSlugTaken)
		}
		return nil, fmt.Errorf("update post: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("Post updated", "post_id", post.ID, "slug", post.Slug)
	}

	return s.buildView(ctx, post)
}

// Delete removes a post and its stored cover. Only the author or an admin
// may delete; anyone else sees the post as missing.
func (s *PostService) Delete(ctx context.Context, principal *domain.Principal, postID string) error {
	post, err := s.store.GetPost(ctx, postID)
	if err != nil {
		if errors.Is(err, store.ErrPostNotFound) {
			return domainerrors.NotFound(msgDeleteDenied)
		}
		return fmt.Errorf("get post: %w", err)
	}

	if !access.Decide(principal, post).CanWrite {
		return domainerrors.NotFound(msgDeleteDenied)
	}

	if err := s.store.DeletePost(ctx, post.ID); err != nil {
		return fmt.Errorf("delete post: %w", err)
	}

	if post.CoverImage != "" {
		_ = s.uploads.Delete(post.CoverImage)
	}

	if s.logger != nil {
		s.logger.Info("Post deleted", "post_id", post.ID)
	}

	return nil
}

// validateSubmission enumerates every missing required field so the client
// sees the whole problem in one round trip.
func validateSubmission(input PostInput) error {
	var missing []string
	if strings.TrimSpace(input.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(input.Content) == "" && strings.TrimSpace(input.Markdown) == "" {
		missing = append(missing, "content or markdown")
	}
	if len(missing) > 0 {
		return domainerrors.Validationf("Missing required fields: %s", strings.Join(missing, ", "))
	}
	return nil
}

// storeCover writes the uploaded cover and computes its placeholder hash.
// A blurhash failure is logged and leaves the field empty; the upload itself
// must succeed.
func (s *PostService) storeCover(post *domain.Post, cover *CoverUpload) error {
	filename, err := uploads.NewFilename(cover.Filename)
	if err != nil {
		return domainerrors.Validation(err.Error())
	}

	if err := s.uploads.Save(filename, cover.Data); err != nil {
		return fmt.Errorf("save cover: %w", err)
	}

	post.CoverImage = filename

	hash, err := uploads.ComputeBlurHash(cover.Data)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("Failed to compute cover blurhash", "post_id", post.ID, "error", err)
		}
		post.CoverBlurHash = ""
		return nil
	}
	post.CoverBlurHash = hash
	return nil
}

// resolveTaxonomy normalizes and resolves category and tag references.
// Unknown references are dropped, not rejected.
func (s *PostService) resolveTaxonomy(ctx context.Context, rawCategories, rawTags any) ([]domain.Category, []domain.Tag, error) {
	categories, err := s.store.ResolveCategories(ctx, normalize.ReferenceList(rawCategories))
	if err != nil {
		return nil, nil, fmt.Errorf("resolve categories: %w", err)
	}

	tags, err := s.store.ResolveTags(ctx, normalize.ReferenceList(rawTags))
	if err != nil {
		return nil, nil, fmt.Errorf("resolve tags: %w", err)
	}

	return categories, tags, nil
}

// buildView resolves the post's references into the API response shape.
func (s *PostService) buildView(ctx context.Context, post *domain.Post) (*domain.PostView, error) {
	var author domain.AuthorRef
	if user, err := s.store.Users.Get(ctx, post.Author); err == nil {
		author = user.Ref()
	} else {
		// Deleted authors keep their posts readable with a bare ID byline
		author = domain.AuthorRef{ID: post.Author}
	}

	categories, err := s.store.ResolveCategories(ctx, post.Categories)
	if err != nil {
		return nil, fmt.Errorf("resolve categories: %w", err)
	}
	tags, err := s.store.ResolveTags(ctx, post.Tags)
	if err != nil {
		return nil, fmt.Errorf("resolve tags: %w", err)
	}

	return &domain.PostView{
		ID:            post.ID,
		Title:         post.Title,
		Slug:          post.Slug,
		Content:       post.Content,
		Markdown:      post.Markdown,
		Author:        author,
		Categories:    categories,
		Tags:          tags,
		CoverImage:    post.CoverImage,
		CoverBlurHash: post.CoverBlurHash,
		PostType:      post.PostType,
		IsPremium:     post.IsPremium,
		Published:     post.Published,
		Views:         post.Views,
		CreatedAt:     post.CreatedAt,
		UpdatedAt:     post.UpdatedAt,
	}, nil
}

// categoryIDs projects resolved categories back to stored IDs.
func categoryIDs(categories []domain.Category) []string {
	ids := make([]string, 0, len(categories))
	for _, c := range categories {
		ids = append(ids, c.ID)
	}
	return ids
}

// tagIDs projects resolved tags back to stored IDs.
func tagIDs(tags []domain.Tag) []string {
	ids := make([]string, 0, len(tags))
	for _, t := range tags {
		ids = append(ids, t.ID)
	}
	return ids
}
