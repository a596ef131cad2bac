package api

import (
	"bytes"
	"context"
	"encoding/json/v2"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwellapp/inkwell-server/internal/auth"
	"github.com/inkwellapp/inkwell-server/internal/config"
	"github.com/inkwellapp/inkwell-server/internal/domain"
	"github.com/inkwellapp/inkwell-server/internal/media/uploads"
	"github.com/inkwellapp/inkwell-server/internal/ratelimit"
	"github.com/inkwellapp/inkwell-server/internal/service"
	"github.com/inkwellapp/inkwell-server/internal/store"
	"github.com/inkwellapp/inkwell-server/internal/validation"
)

type testServer struct {
	*Server
	store *store.Store
}

func newTestServer(t *testing.T, loginRPS float64, loginBurst int) *testServer {
	t.Helper()

	dataDir := t.TempDir()
	st, err := store.New(filepath.Join(dataDir, "db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	key, err := auth.LoadOrGenerateKey(dataDir)
	require.NoError(t, err)

	tokenService, err := auth.NewTokenService(key, 15*time.Minute, 720*time.Hour)
	require.NoError(t, err)

	uploadsDir := filepath.Join(dataDir, "uploads")
	uploadStorage, err := uploads.NewStorage(uploadsDir)
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.App.Environment = "development"
	cfg.Data.BasePath = dataDir
	cfg.Uploads.Path = uploadsDir
	cfg.Uploads.MaxUploadSize = 5 << 20
	cfg.Server.AllowedOrigins = []string{"*"}

	sessionService := service.NewSessionService(st, tokenService, nil)
	authService := service.NewAuthService(st, tokenService, sessionService, validation.New(), nil)
	postService := service.NewPostService(st, uploadStorage, nil)
	taxonomyService := service.NewTaxonomyService(st, nil)

	limiter := ratelimit.New(loginRPS, loginBurst)
	t.Cleanup(limiter.Stop)

	return &testServer{
		Server: NewServer(st, authService, postService, taxonomyService, limiter, cfg, nil),
		store:  st,
	}
}

func (ts *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.RemoteAddr = "192.0.2.10:5000"
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	ts.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

// register creates an account and returns its access token.
func (ts *testServer) register(t *testing.T, name, email string) string {
	t.Helper()
	w := ts.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name":     name,
		"email":    email,
		"password": "correct-horse-battery",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	data := decodeBody(t, w)["data"].(map[string]any)
	return data["accessToken"].(string)
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t, 100, 100)

	w := ts.do(t, http.MethodGet, "/health", "", nil)

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "healthy", body["data"].(map[string]any)["status"])
}

func TestRegisterAndLogin(t *testing.T) {
	ts := newTestServer(t, 100, 100)

	w := ts.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name":     "Alice",
		"email":    "alice@example.com",
		"password": "correct-horse-battery",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	data := decodeBody(t, w)["data"].(map[string]any)
	user := data["user"].(map[string]any)
	assert.Equal(t, "alice", user["username"])
	assert.Empty(t, user["passwordHash"])
	assert.NotEmpty(t, data["accessToken"])
	assert.NotEmpty(t, data["refreshToken"])
	assert.Equal(t, "Bearer", data["tokenType"])

	w = ts.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "correct-horse-battery",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "wrong-password",
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "invalid email or password", decodeBody(t, w)["message"])
}

func TestRegister_InvalidPayload(t *testing.T) {
	ts := newTestServer(t, 100, 100)

	w := ts.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name":     "Bob",
		"email":    "not-an-email",
		"password": "short",
	})

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, false, decodeBody(t, w)["success"])
}

func TestRefreshAndLogout(t *testing.T) {
	ts := newTestServer(t, 100, 100)

	w := ts.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name":     "Carol",
		"email":    "carol@example.com",
		"password": "correct-horse-battery",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	refreshToken := decodeBody(t, w)["data"].(map[string]any)["refreshToken"].(string)

	w = ts.do(t, http.MethodPost, "/api/auth/refresh", "", map[string]string{
		"refreshToken": refreshToken,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	rotated := decodeBody(t, w)["data"].(map[string]any)["refreshToken"].(string)
	assert.NotEqual(t, refreshToken, rotated)

	// The pre-rotation token no longer works.
	w = ts.do(t, http.MethodPost, "/api/auth/refresh", "", map[string]string{
		"refreshToken": refreshToken,
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = ts.do(t, http.MethodPost, "/api/auth/logout", "", map[string]string{
		"refreshToken": rotated,
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, http.MethodPost, "/api/auth/refresh", "", map[string]string{
		"refreshToken": rotated,
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreatePost_RequiresAuth(t *testing.T) {
	ts := newTestServer(t, 100, 100)

	w := ts.do(t, http.MethodPost, "/api/posts", "", map[string]string{
		"title":   "Hello",
		"content": "<p>hi</p>",
	})

	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Missing authorization header", decodeBody(t, w)["message"])
}

func TestPostLifecycle(t *testing.T) {
	ts := newTestServer(t, 100, 100)
	token := ts.register(t, "Alice", "alice@example.com")

	w := ts.do(t, http.MethodPost, "/api/posts", token, map[string]any{
		"title":     "Hello World",
		"content":   "<h1>Hello</h1><p>First post.</p>",
		"published": true,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	body := decodeBody(t, w)
	assert.Equal(t, "Post published successfully", body["message"])
	created := body["data"].(map[string]any)
	postID := created["id"].(string)
	assert.Equal(t, "hello-world", created["slug"])
	assert.Equal(t, "article", created["postType"])
	assert.Equal(t, "Alice", created["author"].(map[string]any)["name"])
	assert.Contains(t, created["markdown"], "# Hello")

	// Anonymous readers see published posts; each read counts a view.
	w = ts.do(t, http.MethodGet, "/api/posts/hello-world", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = ts.do(t, http.MethodGet, "/api/posts/hello-world", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(2), decodeBody(t, w)["data"].(map[string]any)["views"])

	// The author's own reads do not count.
	w = ts.do(t, http.MethodGet, "/api/posts/hello-world", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(2), decodeBody(t, w)["data"].(map[string]any)["views"])

	w = ts.do(t, http.MethodPut, "/api/posts/"+postID, token, map[string]any{
		"title": "Hello Again",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "hello-again", decodeBody(t, w)["data"].(map[string]any)["slug"])

	// The old slug is released.
	w = ts.do(t, http.MethodGet, "/api/posts/hello-world", "", nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	w = ts.do(t, http.MethodDelete, "/api/posts/"+postID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Post deleted", decodeBody(t, w)["message"])

	w = ts.do(t, http.MethodGet, "/api/posts/hello-again", "", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Post not found or not published", decodeBody(t, w)["message"])
}

func TestCreatePost_SlugConflict(t *testing.T) {
	ts := newTestServer(t, 100, 100)
	token := ts.register(t, "Alice", "alice@example.com")

	w := ts.do(t, http.MethodPost, "/api/posts", token, map[string]any{
		"title":   "Same Title",
		"content": "<p>one</p>",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = ts.do(t, http.MethodPost, "/api/posts", token, map[string]any{
		"title":   "Same Title",
		"content": "<p>two</p>",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "A post with this title already exists", decodeBody(t, w)["message"])
}

func TestCreatePost_Multipart(t *testing.T) {
	ts := newTestServer(t, 100, 100)
	token := ts.register(t, "Alice", "alice@example.com")

	// A category to attach; unknown IDs are dropped silently.
	adminToken := ts.promoteToAdmin(t, "Root", "root@example.com")
	w := ts.do(t, http.MethodPost, "/api/categories", adminToken, map[string]string{"name": "Technology"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	categoryID := decodeBody(t, w)["data"].(map[string]any)["id"].(string)

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	require.NoError(t, form.WriteField("title", "Shipped With Cover"))
	require.NoError(t, form.WriteField("markdown", "# Shipped\n\nBody."))
	require.NoError(t, form.WriteField("published", "true"))
	require.NoError(t, form.WriteField("categories", fmt.Sprintf(`["%s","cat-missing"]`, categoryID)))
	part, err := form.CreateFormFile("coverImage", "cover.png")
	require.NoError(t, err)
	_, err = part.Write(pngBytes(t))
	require.NoError(t, err)
	require.NoError(t, form.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/posts", &buf)
	req.RemoteAddr = "192.0.2.10:5000"
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	ts.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	data := decodeBody(t, rec)["data"].(map[string]any)
	assert.Contains(t, data["content"], "<h1")
	assert.NotEmpty(t, data["coverBlurHash"])

	categories := data["categories"].([]any)
	require.Len(t, categories, 1)
	assert.Equal(t, "Technology", categories[0].(map[string]any)["name"])

	// The stored cover is served under /uploads.
	coverImage := data["coverImage"].(string)
	require.NotEmpty(t, coverImage)
	w = ts.do(t, http.MethodGet, "/uploads/"+filepath.Base(coverImage), "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCreatePost_MultipartRepeatedFields(t *testing.T) {
	ts := newTestServer(t, 100, 100)
	token := ts.register(t, "Alice", "alice@example.com")
	adminToken := ts.promoteToAdmin(t, "Root", "root@example.com")

	var categoryIDs []string
	for _, name := range []string{"Tech", "Art"} {
		w := ts.do(t, http.MethodPost, "/api/categories", adminToken, map[string]string{"name": name})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		categoryIDs = append(categoryIDs, decodeBody(t, w)["data"].(map[string]any)["id"].(string))
	}
	w := ts.do(t, http.MethodPost, "/api/tags", adminToken, map[string]string{"name": "golang"})
	require.Equal(t, http.StatusCreated, w.Code)
	tagID := decodeBody(t, w)["data"].(map[string]any)["id"].(string)

	// One field per selection, the way browser FormData submits lists.
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	require.NoError(t, form.WriteField("title", "Tagged Twice"))
	require.NoError(t, form.WriteField("content", "<p>body</p>"))
	require.NoError(t, form.WriteField("published", "true"))
	for _, id := range categoryIDs {
		require.NoError(t, form.WriteField("categories", id))
	}
	require.NoError(t, form.WriteField("tags", tagID))
	require.NoError(t, form.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/posts", &buf)
	req.RemoteAddr = "192.0.2.10:5000"
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	ts.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	data := decodeBody(t, rec)["data"].(map[string]any)

	categories := data["categories"].([]any)
	require.Len(t, categories, 2)
	var names []string
	for _, c := range categories {
		names = append(names, c.(map[string]any)["name"].(string))
	}
	assert.ElementsMatch(t, []string{"Tech", "Art"}, names)

	tags := data["tags"].([]any)
	require.Len(t, tags, 1)
	assert.Equal(t, "golang", tags[0].(map[string]any)["name"])
}

func TestUpdatePost_NonOwner(t *testing.T) {
	ts := newTestServer(t, 100, 100)
	alice := ts.register(t, "Alice", "alice@example.com")
	mallory := ts.register(t, "Mallory", "mallory@example.com")

	w := ts.do(t, http.MethodPost, "/api/posts", alice, map[string]any{
		"title":   "Owned",
		"content": "<p>mine</p>",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	postID := decodeBody(t, w)["data"].(map[string]any)["id"].(string)

	w = ts.do(t, http.MethodPut, "/api/posts/"+postID, mallory, map[string]any{"title": "Stolen"})
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Post not found or you don't have permission to update it", decodeBody(t, w)["message"])

	w = ts.do(t, http.MethodDelete, "/api/posts/"+postID, mallory, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Post not found or you don't have permission to delete it", decodeBody(t, w)["message"])
}

func TestListPosts_Envelope(t *testing.T) {
	ts := newTestServer(t, 100, 100)
	token := ts.register(t, "Alice", "alice@example.com")

	for i := range 12 {
		w := ts.do(t, http.MethodPost, "/api/posts", token, map[string]any{
			"title":     fmt.Sprintf("Post %02d", i),
			"content":   "<p>body</p>",
			"published": true,
		})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := ts.do(t, http.MethodGet, "/api/posts?page=2&limit=10", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(2), body["totalPages"])
	assert.Equal(t, float64(2), body["currentPage"])
	assert.Len(t, body["data"].([]any), 2)
}

func TestListPosts_DraftsHiddenFromReaders(t *testing.T) {
	ts := newTestServer(t, 100, 100)
	token := ts.register(t, "Alice", "alice@example.com")

	w := ts.do(t, http.MethodPost, "/api/posts", token, map[string]any{
		"title":   "Draft",
		"content": "<p>wip</p>",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Post saved as draft successfully", decodeBody(t, w)["message"])

	w = ts.do(t, http.MethodGet, "/api/posts", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodeBody(t, w)["data"])

	w = ts.do(t, http.MethodGet, "/api/posts/draft", "", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestPremiumGate(t *testing.T) {
	ts := newTestServer(t, 100, 100)
	author := ts.register(t, "Alice", "alice@example.com")

	w := ts.do(t, http.MethodPost, "/api/posts", author, map[string]any{
		"title":     "Members Only",
		"content":   "<p>secret</p>",
		"isPremium": true,
		"published": true,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	reader := ts.register(t, "Bob", "bob@example.com")
	w = ts.do(t, http.MethodGet, "/api/posts/members-only", reader, nil)
	require.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Premium content requires subscription", decodeBody(t, w)["message"])

	w = ts.do(t, http.MethodGet, "/api/posts/members-only", "", nil)
	require.Equal(t, http.StatusForbidden, w.Code)

	w = ts.do(t, http.MethodGet, "/api/posts/members-only", author, nil)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestOptionalAuth_RejectsBadToken(t *testing.T) {
	ts := newTestServer(t, 100, 100)

	w := ts.do(t, http.MethodGet, "/api/posts", "garbage-token", nil)

	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid or expired token", decodeBody(t, w)["message"])
}

func TestTaxonomyEndpoints(t *testing.T) {
	ts := newTestServer(t, 100, 100)
	adminToken := ts.promoteToAdmin(t, "Root", "root@example.com")

	for _, name := range []string{"Technology", "Art"} {
		w := ts.do(t, http.MethodPost, "/api/categories", adminToken, map[string]string{"name": name})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}
	w := ts.do(t, http.MethodPost, "/api/tags", adminToken, map[string]string{"name": "golang"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = ts.do(t, http.MethodGet, "/api/categories", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, float64(2), body["count"])
	names := []string{
		body["data"].([]any)[0].(map[string]any)["name"].(string),
		body["data"].([]any)[1].(map[string]any)["name"].(string),
	}
	assert.Equal(t, []string{"Art", "Technology"}, names)

	w = ts.do(t, http.MethodGet, "/api/tags", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decodeBody(t, w)["count"])

	// Duplicates are rejected.
	w = ts.do(t, http.MethodPost, "/api/tags", adminToken, map[string]string{"name": "golang"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestTaxonomyCreate_AdminOnly(t *testing.T) {
	ts := newTestServer(t, 100, 100)
	token := ts.register(t, "Alice", "alice@example.com")

	w := ts.do(t, http.MethodPost, "/api/categories", token, map[string]string{"name": "Tech"})

	require.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Admin access required", decodeBody(t, w)["message"])
}

func TestLoginRateLimit(t *testing.T) {
	ts := newTestServer(t, 0.001, 2)

	payload := map[string]string{"email": "nobody@example.com", "password": "whatever"}
	for range 2 {
		w := ts.do(t, http.MethodPost, "/api/auth/login", "", payload)
		require.Equal(t, http.StatusUnauthorized, w.Code)
	}

	w := ts.do(t, http.MethodPost, "/api/auth/login", "", payload)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	// A different client IP has its own bucket.
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(mustJSON(t, payload)))
	req.RemoteAddr = "198.51.100.7:6000"
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	ts.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// promoteToAdmin registers an account, flips its role in the store, and
// logs back in so the fresh token carries the admin role.
func (ts *testServer) promoteToAdmin(t *testing.T, name, email string) string {
	t.Helper()
	ts.register(t, name, email)

	ctx := context.Background()
	user, err := ts.store.Users.GetByIndex(ctx, "email", email)
	require.NoError(t, err)
	user.Role = domain.RoleAdmin
	require.NoError(t, ts.store.Users.Update(ctx, user.ID, user))

	w := ts.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    email,
		"password": "correct-horse-battery",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return decodeBody(t, w)["data"].(map[string]any)["accessToken"].(string)
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for y := range 16 {
		for x := range 16 {
			img.Set(x, y, color.RGBA{R: uint8(x * 16), G: uint8(y * 16), B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}
