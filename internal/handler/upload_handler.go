package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/weiwangfds/redactor-upload/internal/errors"
	"github.com/weiwangfds/redactor-upload/internal/i18n"
	"github.com/weiwangfds/redactor-upload/internal/logger"
	"github.com/weiwangfds/redactor-upload/internal/response"
	"github.com/weiwangfds/redactor-upload/internal/service/upload"
)

// UploadFormField 编辑器提交文件使用的表单字段名
const UploadFormField = "file"

// UploadHandler 编辑器图片上传处理器
// @Description 接收Redactor编辑器的图片上传
type UploadHandler struct {
	uploadService upload.UploadService
	legacySilent  bool
}

// NewUploadHandler 创建上传处理器实例
// legacySilent为true时，未提供文件或类型不合法返回200空响应
func NewUploadHandler(uploadService upload.UploadService, legacySilent bool) *UploadHandler {
	return &UploadHandler{
		uploadService: uploadService,
		legacySilent:  legacySilent,
	}
}

// Upload 上传图片
// @Summary 上传图片
// @Description 保存到 uploads/YYYY/MM/ 并返回可访问的URL，重名时自动追加序号
// @Tags 上传
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "图片文件（png/jpg/jpeg/pjpeg/gif）"
// @Success 200 {object} response.FileLinkResponse "上传成功"
// @Failure 400 {object} response.ErrorResponse "未提供文件或文件名无效"
// @Failure 413 {object} response.ErrorResponse "文件过大"
// @Failure 415 {object} response.ErrorResponse "文件类型不允许"
// @Failure 500 {object} response.ErrorResponse "服务器内部错误"
// @Router /upload [post]
func (h *UploadHandler) Upload(c *gin.Context) {
	lang := i18n.GetInstance().MatchLanguage(c.GetHeader("Accept-Language"))

	file, err := c.FormFile(UploadFormField)
	if err != nil {
		logger.Debugf("请求中没有上传文件: %v", err)
		if h.legacySilent {
			response.Empty(c)
			return
		}
		response.Error(c, errors.ErrNoFileProvidedError, lang)
		return
	}

	declared := file.Header.Get("Content-Type")
	// 类型不合法时不打开文件
	if !h.uploadService.IsAllowedType(declared) {
		if h.legacySilent {
			response.Empty(c)
			return
		}
		response.Error(c, errors.ErrUnsupportedMediaTypeError.WithDetails(declared), lang)
		return
	}

	src, err := file.Open()
	if err != nil {
		response.Error(c, errors.Wrap(errors.ErrFileWriteFailed, err), lang)
		return
	}
	defer src.Close()

	result, err := h.uploadService.Store(c.Request.Context(), &upload.Incoming{
		OriginalFilename: file.Filename,
		DeclaredMIMEType: declared,
		Size:             file.Size,
		Content:          src,
	}, upload.Target{
		Host:   c.Request.Host,
		Scheme: requestScheme(c.Request),
	})
	if err != nil {
		appErr, ok := errors.GetAppError(err)
		if !ok {
			appErr = errors.Wrap(errors.ErrInternalServer, err)
		}
		_ = c.Error(err)
		response.Error(c, appErr, lang)
		return
	}

	response.FileLink(c, result.FileLink)
}

// requestScheme 请求实际使用的协议，反向代理时读取 X-Forwarded-Proto
func requestScheme(r *http.Request) string {
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		return strings.ToLower(strings.TrimSpace(strings.Split(proto, ",")[0]))
	}
	if r.TLS != nil {
		return "https"
	}
	return "http"
}
