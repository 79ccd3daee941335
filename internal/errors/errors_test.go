package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weiwangfds/redactor-upload/internal/i18n"
)

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		err  *AppError
		want int
	}{
		{ErrNoFileProvidedError, http.StatusBadRequest},
		{ErrMalformedFilenameError, http.StatusBadRequest},
		{ErrUnsupportedMediaTypeError, http.StatusUnsupportedMediaType},
		{ErrFileSizeTooLargeError, http.StatusRequestEntityTooLarge},
		{ErrDirectoryCreationFailedError, http.StatusInternalServerError},
		{ErrCopyFailedError, http.StatusInternalServerError},
		{ErrMirrorFailedError, http.StatusBadGateway},
		{ErrTooManyRequestsError, http.StatusTooManyRequests},
		{New(ErrorCode(9999), "x"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.err.HTTPStatus(), tc.err.Error())
	}
}

func TestWrapKeepsChain(t *testing.T) {
	cause := fmt.Errorf("mkdir /x: permission denied")
	err := fmt.Errorf("resolve destination: %w", Wrap(ErrDirectoryCreationFailed, cause))

	appErr, ok := GetAppError(err)
	require.True(t, ok)
	assert.Equal(t, ErrDirectoryCreationFailed, appErr.Code)
	assert.Equal(t, cause.Error(), appErr.Details)
	assert.True(t, stderrors.Is(err, cause))
	assert.True(t, stderrors.Is(err, ErrDirectoryCreationFailedError))
	assert.False(t, stderrors.Is(err, ErrCopyFailedError))
}

func TestWithDetailsDoesNotMutateSentinel(t *testing.T) {
	e := ErrUnsupportedMediaTypeError.WithDetails("text/plain")
	assert.Equal(t, "text/plain", e.Details)
	assert.Empty(t, ErrUnsupportedMediaTypeError.Details)
	assert.Contains(t, e.Error(), "[2007]")
}

func TestGetErrorMessageWithLang(t *testing.T) {
	assert.Equal(t, "Unsupported Media Type", GetErrorMessageWithLang(ErrFileTypeNotAllowed, i18n.LangEnUS))
	assert.Equal(t, "文件类型不允许", GetErrorMessageWithLang(ErrFileTypeNotAllowed, i18n.LangZhCN))
	assert.Equal(t, "Unknown Error", GetErrorMessageWithLang(ErrorCode(42), i18n.LangEnUS))
}

func TestGetAppErrorPlainError(t *testing.T) {
	_, ok := GetAppError(stderrors.New("plain"))
	assert.False(t, ok)
}
