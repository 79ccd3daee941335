// Package upload 实现编辑器图片上传的核心流程
// 类型校验 -> 确定年月目录 -> 处理重名 -> 复制文件 -> 生成访问URL
package upload

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/weiwangfds/redactor-upload/config"
	apperrors "github.com/weiwangfds/redactor-upload/internal/errors"
	"github.com/weiwangfds/redactor-upload/internal/logger"
	"github.com/weiwangfds/redactor-upload/internal/service/mirror"
)

// Incoming 一次上传请求携带的文件
type Incoming struct {
	OriginalFilename string
	DeclaredMIMEType string
	// Size 客户端报告的大小，未知时为-1
	Size    int64
	Content io.Reader
}

// Target 生成访问URL所需的请求信息
type Target struct {
	Host string
	// Scheme 请求实际使用的协议，仅在url_scheme为auto时使用
	Scheme string
}

// Result 上传结果
type Result struct {
	StoredName   string `json:"stored_name"`
	Directory    string `json:"-"`
	FilePath     string `json:"-"`
	RelativePath string `json:"relative_path"` // YYYY/MM/name
	FileLink     string `json:"filelink"`
	Size         int64  `json:"size"`
}

// UploadService 上传服务接口
type UploadService interface {
	// IsAllowedType 判断声明的MIME类型是否允许上传
	IsAllowedType(declared string) bool

	// Store 保存一次上传并返回访问地址
	// 失败时返回 *errors.AppError，类型不合法时不会写入任何文件
	Store(ctx context.Context, in *Incoming, target Target) (*Result, error)

	// PrepareCurrentDirectory 提前创建当前年月目录
	PrepareCurrentDirectory() (string, error)
}

// Option 服务可选项
type Option func(*uploadService)

// WithClock 替换时间来源
func WithClock(now func() time.Time) Option {
	return func(s *uploadService) { s.now = now }
}

// WithMirror 设置对象存储镜像
func WithMirror(m mirror.Mirror, cfg config.MirrorConfig) Option {
	return func(s *uploadService) {
		s.mirror = m
		s.mirrorCfg = cfg
	}
}

type uploadService struct {
	cfg       config.UploadConfig
	validator *TypeValidator
	now       func() time.Time
	mirror    mirror.Mirror
	mirrorCfg config.MirrorConfig
}

// NewUploadService 创建上传服务实例
func NewUploadService(cfg config.UploadConfig, opts ...Option) UploadService {
	if cfg.Marker == "" {
		cfg.Marker = DefaultMarker
	}
	if cfg.PublicPath == "" {
		cfg.PublicPath = "/wp-content/uploads"
	}
	if cfg.URLScheme == "" {
		cfg.URLScheme = "http"
	}
	if cfg.MaxRenameAttempts <= 0 {
		cfg.MaxRenameAttempts = 100
	}
	if cfg.DirMode == 0 {
		cfg.DirMode = 0755
	}
	if cfg.FileMode == 0 {
		cfg.FileMode = 0644
	}

	s := &uploadService{
		cfg:       cfg,
		validator: NewTypeValidator(cfg.AllowedTypes),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	logger.WithFields(logrus.Fields{
		"uploads_root":  cfg.UploadsRoot,
		"script_path":   cfg.ScriptPath,
		"public_path":   cfg.PublicPath,
		"allowed_types": cfg.AllowedTypes,
		"mirror":        s.mirrorName(),
	}).Info("上传服务初始化完成")

	return s
}

func (s *uploadService) IsAllowedType(declared string) bool {
	return s.validator.IsValid(declared)
}

func (s *uploadService) uploadsRoot() (string, error) {
	root, err := ResolveUploadsRoot(s.cfg.UploadsRoot, s.cfg.ScriptPath, s.cfg.Marker)
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrUploadsRootUnresolved, err)
	}
	return root, nil
}

// PrepareCurrentDirectory 创建当前年月目录
func (s *uploadService) PrepareCurrentDirectory() (string, error) {
	root, err := s.uploadsRoot()
	if err != nil {
		return "", err
	}
	dir, _, err := EnsureDateDirectory(root, s.now(), os.FileMode(s.cfg.DirMode))
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrDirectoryCreationFailed, err)
	}
	return dir, nil
}

// Store 执行完整的上传流程
func (s *uploadService) Store(ctx context.Context, in *Incoming, target Target) (*Result, error) {
	if in == nil || in.Content == nil {
		return nil, apperrors.ErrNoFileProvidedError
	}

	log := logger.WithFields(logrus.Fields{
		"filename": in.OriginalFilename,
		"type":     in.DeclaredMIMEType,
		"size":     in.Size,
	})

	if !s.IsAllowedType(in.DeclaredMIMEType) {
		log.Warn("拒绝不支持的文件类型")
		return nil, apperrors.ErrUnsupportedMediaTypeError.WithDetails(in.DeclaredMIMEType)
	}

	name, ok := SanitizeFilename(in.OriginalFilename)
	if !ok {
		log.Warn("文件名无效")
		return nil, apperrors.ErrMalformedFilenameError.WithDetails(in.OriginalFilename)
	}

	if s.cfg.MaxFileSize > 0 && in.Size > s.cfg.MaxFileSize {
		return nil, apperrors.ErrFileSizeTooLargeError.WithDetails(
			fmt.Sprintf("%d > %d", in.Size, s.cfg.MaxFileSize))
	}

	root, err := s.uploadsRoot()
	if err != nil {
		log.WithError(err).Error("无法确定上传根目录")
		return nil, err
	}

	now := s.now()
	dir, rel, err := EnsureDateDirectory(root, now, os.FileMode(s.cfg.DirMode))
	if err != nil {
		log.WithError(err).Error("创建上传目录失败")
		return nil, apperrors.Wrap(apperrors.ErrDirectoryCreationFailed, err)
	}

	// 重名判断必须基于最终目录
	resolved, next, err := ResolveFilename(dir, name)
	if err != nil {
		log.WithError(err).Error("读取上传目录失败")
		return nil, apperrors.Wrap(apperrors.ErrFileWriteFailed, err)
	}

	storedName, written, err := s.copyExclusive(ctx, dir, name, resolved, next, in.Content)
	if err != nil {
		log.WithError(err).Error("复制上传文件失败")
		return nil, err
	}

	relPath := path.Join(rel, storedName)
	result := &Result{
		StoredName:   storedName,
		Directory:    dir,
		FilePath:     storedPath(dir, storedName),
		RelativePath: relPath,
		FileLink:     s.fileLink(target, relPath),
		Size:         written,
	}

	if err := s.replicate(ctx, result, in.DeclaredMIMEType); err != nil {
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"stored_name": storedName,
		"bytes":       written,
		"filelink":    result.FileLink,
	}).Info("上传完成")

	return result, nil
}

// copyExclusive 以独占方式创建目标文件并写入内容
// 文件已存在时递增序号重试，避免并发上传同名文件时相互覆盖
func (s *uploadService) copyExclusive(ctx context.Context, dir, original, resolved string, next int, src io.Reader) (string, int64, error) {
	base, ext := SplitFilename(original)
	candidate := resolved

	for attempt := 0; attempt < s.cfg.MaxRenameAttempts; attempt++ {
		if attempt > 0 {
			candidate = suffixedName(base, ext, next)
			next++
		}

		dst := storedPath(dir, candidate)
		f, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, os.FileMode(s.cfg.FileMode))
		if err != nil {
			if stderrors.Is(err, fs.ErrExist) {
				logger.Debugf("文件已存在，重新命名: %s", candidate)
				continue
			}
			return "", 0, apperrors.Wrap(apperrors.ErrFileWriteFailed, err)
		}

		written, err := s.writeContent(ctx, f, src)
		if cerr := f.Close(); err == nil && cerr != nil {
			err = apperrors.Wrap(apperrors.ErrFileWriteFailed, cerr)
		}
		if err != nil {
			_ = os.Remove(dst)
			return "", 0, err
		}
		return candidate, written, nil
	}

	return "", 0, apperrors.NewWithDetails(apperrors.ErrFileWriteFailed,
		fmt.Sprintf("no free name for %s after %d attempts", original, s.cfg.MaxRenameAttempts))
}

func (s *uploadService) writeContent(ctx context.Context, dst io.Writer, src io.Reader) (int64, error) {
	reader := &contextReader{ctx: ctx, r: src}

	if s.cfg.MaxFileSize <= 0 {
		n, err := io.Copy(dst, reader)
		if err != nil {
			return n, apperrors.Wrap(apperrors.ErrFileWriteFailed, err)
		}
		return n, nil
	}

	// 多读一个字节用于判断是否超限
	n, err := io.Copy(dst, io.LimitReader(reader, s.cfg.MaxFileSize+1))
	if err != nil {
		return n, apperrors.Wrap(apperrors.ErrFileWriteFailed, err)
	}
	if n > s.cfg.MaxFileSize {
		return n, apperrors.ErrFileSizeTooLargeError.WithDetails(
			fmt.Sprintf("exceeds %d bytes", s.cfg.MaxFileSize))
	}
	return n, nil
}

// fileLink 生成访问URL，路径部分与文件系统中根目录之后的部分一致
func (s *uploadService) fileLink(target Target, relPath string) string {
	host := s.cfg.PublicHost
	if host == "" {
		host = target.Host
	}
	u := url.URL{
		Path: path.Join(s.cfg.PublicPath, relPath),
	}
	if host == "" {
		return u.String()
	}
	u.Scheme = s.scheme(target)
	u.Host = host
	return u.String()
}

func (s *uploadService) scheme(target Target) string {
	switch strings.ToLower(s.cfg.URLScheme) {
	case "https":
		return "https"
	case "auto":
		if strings.EqualFold(target.Scheme, "https") {
			return "https"
		}
		return "http"
	default:
		return "http"
	}
}

// replicate 将已保存的文件上传到对象存储
// 本地文件为准，镜像失败仅在mirror.required时返回错误
func (s *uploadService) replicate(ctx context.Context, result *Result, contentType string) error {
	if s.mirror == nil {
		return nil
	}

	key := mirror.ObjectKey(s.mirrorCfg.Prefix, result.RelativePath)
	err := s.putMirror(ctx, key, result.FilePath, strings.ToLower(strings.TrimSpace(contentType)))
	if err == nil {
		logger.WithFields(logrus.Fields{
			"provider": s.mirror.Name(),
			"key":      key,
		}).Info("镜像上传完成")
		return nil
	}

	logger.WithFields(logrus.Fields{
		"provider": s.mirror.Name(),
		"key":      key,
	}).WithError(err).Error("镜像上传失败")

	if s.mirrorCfg.Required {
		return apperrors.Wrap(apperrors.ErrMirrorFailed, err)
	}
	return nil
}

func (s *uploadService) putMirror(ctx context.Context, key, filePath, contentType string) error {
	if s.mirrorCfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(s.mirrorCfg.Timeout)*time.Second)
		defer cancel()
	}

	f, err := os.Open(filePath)
	if err != nil {
		return err
	}
	defer f.Close()

	return s.mirror.Put(ctx, key, f, contentType)
}

func (s *uploadService) mirrorName() string {
	if s.mirror == nil {
		return "none"
	}
	return s.mirror.Name()
}

// contextReader 在每次读取前检查请求是否已取消
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
