package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/weiwangfds/redactor-upload/internal/i18n"
)

// ErrorCode 错误码类型
type ErrorCode int

// 定义错误码常量
const (
	// 通用错误码 (1000-1999)
	ErrSuccess         ErrorCode = 0    // 成功
	ErrInternalServer  ErrorCode = 1000 // 服务器内部错误
	ErrInvalidParams   ErrorCode = 1001 // 参数错误
	ErrTooManyRequests ErrorCode = 1006 // 请求过于频繁

	// 上传相关错误码 (2000-2999)
	ErrFileWriteFailed         ErrorCode = 2005 // 文件复制失败
	ErrFileSizeTooLarge        ErrorCode = 2006 // 文件大小超限
	ErrFileTypeNotAllowed      ErrorCode = 2007 // 文件类型不允许
	ErrNoFileProvided          ErrorCode = 2010 // 未提供文件
	ErrMalformedFilename       ErrorCode = 2011 // 文件名无效
	ErrDirectoryCreationFailed ErrorCode = 2012 // 目录创建失败
	ErrUploadsRootUnresolved   ErrorCode = 2013 // 上传根目录无法确定

	// 对象存储相关错误码 (3000-3999)
	ErrMirrorFailed ErrorCode = 3003 // 镜像上传失败
)

// AppError 应用错误结构体
type AppError struct {
	// 错误码
	Code ErrorCode `json:"code"`
	// 错误消息
	Message string `json:"message"`
	// 详细错误信息
	Details string `json:"details,omitempty"`
	// 原始错误
	OriginalError error `json:"-"`
}

// Error 实现error接口
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%d] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap 返回原始错误，支持 errors.Is / errors.As
func (e *AppError) Unwrap() error {
	return e.OriginalError
}

// Is 按错误码比较，使预定义错误可以作为哨兵值使用
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// HTTPStatus 返回错误码对应的HTTP状态码
func (e *AppError) HTTPStatus() int {
	if status, ok := httpStatusMap[e.Code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// WithDetails 返回带详细信息的副本
func (e *AppError) WithDetails(details string) *AppError {
	c := *e
	c.Details = details
	return &c
}

// New 创建新的应用错误
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// NewWithDetails 创建带详细信息的应用错误
func NewWithDetails(code ErrorCode, details string) *AppError {
	return &AppError{
		Code:    code,
		Message: GetErrorMessage(code),
		Details: details,
	}
}

// Wrap 包装原始错误
func Wrap(code ErrorCode, err error) *AppError {
	appErr := &AppError{
		Code:          code,
		Message:       GetErrorMessage(code),
		OriginalError: err,
	}
	if err != nil {
		appErr.Details = err.Error()
	}
	return appErr
}

// GetAppError 从错误链中提取应用错误
func GetAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// 预定义的常用错误
var (
	ErrInternalServerError          = New(ErrInternalServer, GetErrorMessage(ErrInternalServer))
	ErrTooManyRequestsError         = New(ErrTooManyRequests, GetErrorMessage(ErrTooManyRequests))
	ErrNoFileProvidedError          = New(ErrNoFileProvided, GetErrorMessage(ErrNoFileProvided))
	ErrMalformedFilenameError       = New(ErrMalformedFilename, GetErrorMessage(ErrMalformedFilename))
	ErrUnsupportedMediaTypeError    = New(ErrFileTypeNotAllowed, GetErrorMessage(ErrFileTypeNotAllowed))
	ErrFileSizeTooLargeError        = New(ErrFileSizeTooLarge, GetErrorMessage(ErrFileSizeTooLarge))
	ErrDirectoryCreationFailedError = New(ErrDirectoryCreationFailed, GetErrorMessage(ErrDirectoryCreationFailed))
	ErrCopyFailedError              = New(ErrFileWriteFailed, GetErrorMessage(ErrFileWriteFailed))
	ErrUploadsRootUnresolvedError   = New(ErrUploadsRootUnresolved, GetErrorMessage(ErrUploadsRootUnresolved))
	ErrMirrorFailedError            = New(ErrMirrorFailed, GetErrorMessage(ErrMirrorFailed))
)

var httpStatusMap = map[ErrorCode]int{
	ErrInternalServer:          http.StatusInternalServerError,
	ErrInvalidParams:           http.StatusBadRequest,
	ErrTooManyRequests:         http.StatusTooManyRequests,
	ErrNoFileProvided:          http.StatusBadRequest,
	ErrMalformedFilename:       http.StatusBadRequest,
	ErrFileTypeNotAllowed:      http.StatusUnsupportedMediaType,
	ErrFileSizeTooLarge:        http.StatusRequestEntityTooLarge,
	ErrDirectoryCreationFailed: http.StatusInternalServerError,
	ErrFileWriteFailed:         http.StatusInternalServerError,
	ErrUploadsRootUnresolved:   http.StatusInternalServerError,
	ErrMirrorFailed:            http.StatusBadGateway,
}

// 错误码到i18n键的映射
var errorCodeToKeyMap = map[ErrorCode]string{
	ErrSuccess:         "success",
	ErrInternalServer:  "internal_server_error",
	ErrInvalidParams:   "invalid_params",
	ErrTooManyRequests: "too_many_requests",

	ErrFileWriteFailed:         "file_write_failed",
	ErrFileSizeTooLarge:        "file_size_too_large",
	ErrFileTypeNotAllowed:      "file_type_not_allowed",
	ErrNoFileProvided:          "no_file_provided",
	ErrMalformedFilename:       "malformed_filename",
	ErrDirectoryCreationFailed: "directory_creation_failed",
	ErrUploadsRootUnresolved:   "uploads_root_unresolved",

	ErrMirrorFailed: "mirror_failed",
}

// GetErrorMessage 根据错误码获取错误消息（使用默认语言）
func GetErrorMessage(code ErrorCode) string {
	return GetErrorMessageWithLang(code, i18n.GetInstance().GetDefaultLanguage())
}

// GetErrorMessageWithLang 根据错误码和语言获取错误消息
func GetErrorMessageWithLang(code ErrorCode, lang string) string {
	key, exists := errorCodeToKeyMap[code]
	if !exists {
		key = "unknown_error"
	}
	return i18n.GetInstance().Translate(key, lang)
}
