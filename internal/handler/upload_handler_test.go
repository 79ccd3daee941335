package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weiwangfds/redactor-upload/config"
	"github.com/weiwangfds/redactor-upload/internal/response"
	"github.com/weiwangfds/redactor-upload/internal/service/upload"
)

var fixedNow = time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)

func setupUploadRouter(t *testing.T, legacySilent bool) (*gin.Engine, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	root := filepath.Join(t.TempDir(), "wp-content", "uploads")
	require.NoError(t, os.MkdirAll(root, 0755))

	svc := upload.NewUploadService(config.UploadConfig{
		UploadsRoot:  root,
		PublicPath:   "/wp-content/uploads",
		AllowedTypes: upload.DefaultAllowedTypes,
	}, upload.WithClock(func() time.Time { return fixedNow }))

	r := gin.New()
	r.POST("/upload", NewUploadHandler(svc, legacySilent).Upload)
	return r, root
}

// multipartRequest 构造带自定义Content-Type的文件字段
func multipartRequest(t *testing.T, field, filename, contentType, body string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, field, filename))
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write([]byte(body))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &buf)
	req.Host = "example.com"
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUploadSuccess(t *testing.T) {
	r, root := setupUploadRouter(t, false)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, multipartRequest(t, "file", "photo.jpg", "image/jpeg", "jpeg-bytes"))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `{"filelink":"http://example.com/wp-content/uploads/2026/10/photo.jpg"}`, w.Body.String())

	data, err := os.ReadFile(filepath.Join(root, "2026", "10", "photo.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "jpeg-bytes", string(data))
}

func TestUploadCollisionSequence(t *testing.T) {
	r, root := setupUploadRouter(t, false)

	want := []string{"photo.jpg", "photo-2.jpg", "photo-3.jpg"}
	for _, name := range want {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, multipartRequest(t, "file", "photo.jpg", "image/jpeg", "x"))
		require.Equal(t, http.StatusOK, w.Code)

		var body response.FileLinkResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "http://example.com/wp-content/uploads/2026/10/"+name, body.FileLink)
		assert.FileExists(t, filepath.Join(root, "2026", "10", name))
	}
}

func TestUploadRejectsType(t *testing.T) {
	r, root := setupUploadRouter(t, false)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, multipartRequest(t, "file", "notes.txt", "text/plain", "hello"))

	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
	var body response.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 2007, body.Code)
	assert.Equal(t, "text/plain", body.Details)

	assert.NoDirExists(t, filepath.Join(root, "2026"))
}

func TestUploadAcceptsUppercaseType(t *testing.T) {
	r, _ := setupUploadRouter(t, false)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, multipartRequest(t, "file", "logo.png", "IMAGE/PNG", "png"))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/2026/10/logo.png")
}

func TestUploadMissingFile(t *testing.T) {
	r, _ := setupUploadRouter(t, false)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, multipartRequest(t, "image", "photo.jpg", "image/jpeg", "x"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"code":2010`)
}

func TestUploadMalformedFilename(t *testing.T) {
	r, _ := setupUploadRouter(t, false)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, multipartRequest(t, "file", ".htaccess", "image/png", "x"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"code":2011`)
}

func TestUploadLegacySilent(t *testing.T) {
	r, root := setupUploadRouter(t, true)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, multipartRequest(t, "file", "notes.txt", "text/plain", "hello"))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Zero(t, w.Body.Len())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, multipartRequest(t, "other", "photo.jpg", "image/jpeg", "x"))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Zero(t, w.Body.Len())

	assert.NoDirExists(t, filepath.Join(root, "2026"))
}

func TestUploadLocalizedError(t *testing.T) {
	r, _ := setupUploadRouter(t, false)

	req := multipartRequest(t, "file", "notes.txt", "text/plain", "hello")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var body response.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Unsupported Media Type", body.Message)
}

func TestRequestScheme(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/upload", nil)
	assert.Equal(t, "http", requestScheme(req))

	req.Header.Set("X-Forwarded-Proto", "HTTPS, http")
	assert.Equal(t, "https", requestScheme(req))
}
