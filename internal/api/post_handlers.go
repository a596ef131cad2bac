package api

import (
	"encoding/json/v2"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	domainerrors "github.com/inkwellapp/inkwell-server/internal/errors"
	"github.com/inkwellapp/inkwell-server/internal/http/response"
	"github.com/inkwellapp/inkwell-server/internal/service"
)

// coverFieldName is the multipart field carrying the cover image.
const coverFieldName = "coverImage"

// handleCreatePost runs the submission pipeline for a new post.
func (s *Server) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	input, err := s.parsePostInput(r)
	if err != nil {
		response.BadRequest(w, err.Error(), s.logger)
		return
	}

	view, err := s.postService.Submit(r.Context(), getPrincipal(r.Context()), input)
	if err != nil {
		s.writePostError(w, err)
		return
	}

	message := "Post saved as draft successfully"
	if view.Published {
		message = "Post published successfully"
	}
	response.Created(w, view, message, s.logger)
}

// handleGetPost returns a single post by slug.
func (s *Server) handleGetPost(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	if slug == "" {
		response.BadRequest(w, "Post slug is required", s.logger)
		return
	}

	view, err := s.postService.GetBySlug(r.Context(), getPrincipal(r.Context()), slug)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, view, s.logger)
}

// handleListPosts returns a page of posts.
func (s *Server) handleListPosts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := service.ListParams{
		Category: q.Get("category"),
		Tag:      q.Get("tag"),
		Search:   q.Get("search"),
	}
	if page, err := strconv.Atoi(q.Get("page")); err == nil {
		params.Page = page
	}
	if limit, err := strconv.Atoi(q.Get("limit")); err == nil {
		params.Limit = limit
	}

	result, err := s.postService.List(r.Context(), getPrincipal(r.Context()), params)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Paginated(w, result.Posts, result.TotalPages, result.CurrentPage, s.logger)
}

// handleUpdatePost applies a partial update to a post.
func (s *Server) handleUpdatePost(w http.ResponseWriter, r *http.Request) {
	postID := chi.URLParam(r, "id")
	if postID == "" {
		response.BadRequest(w, "Post ID is required", s.logger)
		return
	}

	input, err := s.parsePostInput(r)
	if err != nil {
		response.BadRequest(w, err.Error(), s.logger)
		return
	}

	view, err := s.postService.Update(r.Context(), getPrincipal(r.Context()), postID, input)
	if err != nil {
		s.writePostError(w, err)
		return
	}

	response.Success(w, view, s.logger)
}

// handleDeletePost removes a post.
func (s *Server) handleDeletePost(w http.ResponseWriter, r *http.Request) {
	postID := chi.URLParam(r, "id")
	if postID == "" {
		response.BadRequest(w, "Post ID is required", s.logger)
		return
	}

	if err := s.postService.Delete(r.Context(), getPrincipal(r.Context()), postID); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.SuccessMessage(w, "Post deleted", s.logger)
}

// writePostError maps post pipeline errors to responses. Slug conflicts are
// reported as 400 to match what submission clients expect.
func (s *Server) writePostError(w http.ResponseWriter, err error) {
	if errors.Is(err, domainerrors.ErrConflict) {
		var domainErr *domainerrors.Error
		if errors.As(err, &domainErr) {
			response.BadRequest(w, domainErr.Message, s.logger)
			return
		}
	}
	response.HandleError(w, err, s.logger)
}

// parsePostInput reads a submission from either a multipart form or a JSON
// body. Multipart fields all arrive as strings; normalization downstream
// sorts out lists and booleans.
func (s *Server) parsePostInput(r *http.Request) (service.PostInput, error) {
	r.Body = http.MaxBytesReader(nil, r.Body, s.cfg.Uploads.MaxUploadSize)

	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		return s.parseMultipartPost(r)
	}
	return parseJSONPost(r)
}

// parseMultipartPost reads form fields and the optional cover file.
// Absent fields stay nil so partial updates can tell unset from empty.
func (s *Server) parseMultipartPost(r *http.Request) (service.PostInput, error) {
	if err := r.ParseMultipartForm(s.cfg.Uploads.MaxUploadSize); err != nil {
		return service.PostInput{}, fmt.Errorf("invalid multipart form: %w", err)
	}

	input := service.PostInput{
		Title:    r.FormValue("title"),
		Content:  r.FormValue("content"),
		Markdown: r.FormValue("markdown"),
		PostType: r.FormValue("postType"),
	}

	form := r.MultipartForm
	if value := formListValue(form.Value["categories"]); value != nil {
		input.Categories = value
	}
	if value := formListValue(form.Value["tags"]); value != nil {
		input.Tags = value
	}
	if values, ok := form.Value["isPremium"]; ok && len(values) > 0 {
		input.IsPremium = values[0]
	}
	if values, ok := form.Value["published"]; ok && len(values) > 0 {
		input.Published = values[0]
	}

	file, header, err := r.FormFile(coverFieldName)
	if err == nil {
		defer file.Close()
		data, err := io.ReadAll(file)
		if err != nil {
			return service.PostInput{}, fmt.Errorf("read cover upload: %w", err)
		}
		input.Cover = &service.CoverUpload{
			Filename: header.Filename,
			Data:     data,
		}
	} else if !errors.Is(err, http.ErrMissingFile) {
		return service.PostInput{}, fmt.Errorf("invalid cover upload: %w", err)
	}

	return input, nil
}

// formListValue shapes a repeatable form field for normalization. Clients
// either repeat the field once per element or send a single JSON-encoded
// string; a repeated field is already a sequence and must survive as one.
func formListValue(values []string) any {
	switch len(values) {
	case 0:
		return nil
	case 1:
		return values[0]
	default:
		return values
	}
}

// parseJSONPost reads a JSON submission body.
func parseJSONPost(r *http.Request) (service.PostInput, error) {
	var body struct {
		Title      string `json:"title"`
		Content    string `json:"content"`
		Markdown   string `json:"markdown"`
		Categories any    `json:"categories"`
		Tags       any    `json:"tags"`
		IsPremium  any    `json:"isPremium"`
		Published  any    `json:"published"`
		PostType   string `json:"postType"`
	}
	if err := json.UnmarshalRead(r.Body, &body); err != nil {
		return service.PostInput{}, errors.New("invalid request body")
	}

	return service.PostInput{
		Title:      body.Title,
		Content:    body.Content,
		Markdown:   body.Markdown,
		Categories: body.Categories,
		Tags:       body.Tags,
		IsPremium:  body.IsPremium,
		Published:  body.Published,
		PostType:   body.PostType,
	}, nil
}
