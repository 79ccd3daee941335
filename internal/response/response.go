package response

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	apperrors "github.com/weiwangfds/redactor-upload/internal/errors"
)

// FileLinkResponse Redactor编辑器期望的上传成功响应
// 字段名不可更改，编辑器插件直接读取 filelink
type FileLinkResponse struct {
	FileLink string `json:"filelink" example:"http://example.com/wp-content/uploads/2026/10/photo.jpg"`
}

// ErrorResponse 统一错误响应结构体
// @Description 上传失败时的响应格式
type ErrorResponse struct {
	// 错误码
	Code int `json:"code" example:"2007"`
	// 错误消息
	Message string `json:"message" example:"Unsupported Media Type"`
	// 详细错误信息
	Details string `json:"details,omitempty"`
	// 请求ID，用于链路追踪
	RequestID string `json:"request_id,omitempty" example:"4f6c1a5e-9f43-4a3a-a6c2-7f4b7d2a1e0b"`
	// 时间戳
	Timestamp int64 `json:"timestamp" example:"1792396800"`
}

// Now 时间来源，测试时可替换
var Now = time.Now

// FileLink 返回上传成功响应
// URL中的 & < > 不做HTML转义，响应体末尾没有换行
func FileLink(c *gin.Context, link string) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(FileLinkResponse{FileLink: link}); err != nil {
		Error(c, apperrors.ErrInternalServerError, "")
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", bytes.TrimRight(buf.Bytes(), "\n"))
}

// Empty 返回200空响应体，兼容旧版静默失败行为
func Empty(c *gin.Context) {
	c.Status(http.StatusOK)
	c.Writer.WriteHeaderNow()
}

// Error 根据应用错误返回对应HTTP状态码和错误体
// lang为空时使用默认语言
func Error(c *gin.Context, err *apperrors.AppError, lang string) {
	message := err.Message
	if lang != "" {
		message = apperrors.GetErrorMessageWithLang(err.Code, lang)
	}

	c.AbortWithStatusJSON(err.HTTPStatus(), ErrorResponse{
		Code:      int(err.Code),
		Message:   message,
		Details:   err.Details,
		RequestID: getRequestID(c),
		Timestamp: Now().Unix(),
	})
}

// getRequestID 从gin上下文中获取请求ID
func getRequestID(c *gin.Context) string {
	if requestID, exists := c.Get("request_id"); exists {
		if id, ok := requestID.(string); ok {
			return id
		}
	}
	return ""
}
