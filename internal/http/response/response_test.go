package response_test

import (
	"encoding/json/v2"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	domainerrors "github.com/inkwellapp/inkwell-server/internal/errors"
	"github.com/inkwellapp/inkwell-server/internal/http/response"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestSuccess(t *testing.T) {
	w := httptest.NewRecorder()
	response.Success(w, map[string]string{"slug": "hello-world"}, discardLogger())

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))

	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	assert.NotNil(t, body["data"])
	assert.NotContains(t, body, "message")
}

func TestError_UsesMessageField(t *testing.T) {
	w := httptest.NewRecorder()
	response.BadRequest(w, "Missing required fields: title", discardLogger())

	assert.Equal(t, http.StatusBadRequest, w.Code)

	body := decode(t, w)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Missing required fields: title", body["message"])
	assert.NotContains(t, body, "data")
}

func TestPaginated(t *testing.T) {
	w := httptest.NewRecorder()
	response.Paginated(w, []string{"a", "b"}, 3, 1, discardLogger())

	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	assert.EqualValues(t, 3, body["totalPages"])
	assert.EqualValues(t, 1, body["currentPage"])
}

func TestCounted(t *testing.T) {
	w := httptest.NewRecorder()
	response.Counted(w, []string{"a"}, 1, discardLogger())

	body := decode(t, w)
	assert.EqualValues(t, 1, body["count"])
}

func TestHandleError_DomainError(t *testing.T) {
	w := httptest.NewRecorder()
	response.HandleError(w, domainerrors.Forbidden("Premium content requires subscription"), discardLogger())

	assert.Equal(t, http.StatusForbidden, w.Code)
	body := decode(t, w)
	assert.Equal(t, "Premium content requires subscription", body["message"])
}

func TestHandleError_UnknownError(t *testing.T) {
	w := httptest.NewRecorder()
	response.HandleError(w, assert.AnError, discardLogger())

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decode(t, w)
	assert.Equal(t, false, body["success"])
}

func TestNilLogger(t *testing.T) {
	w := httptest.NewRecorder()
	response.Success(w, "ok", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
