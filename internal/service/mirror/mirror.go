// Package mirror 将本地保存的上传文件复制到对象存储
// 支持阿里云OSS、腾讯云COS和七牛云Kodo
package mirror

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/weiwangfds/redactor-upload/config"
)

// 支持的提供商
const (
	ProviderAliyun  = "aliyun"
	ProviderTencent = "tencent"
	ProviderQiniu   = "qiniu"
)

// ErrUnsupportedProvider 不支持的对象存储提供商
var ErrUnsupportedProvider = errors.New("unsupported mirror provider")

// Mirror 对象存储写入接口
type Mirror interface {
	// Name 提供商名称，用于日志
	Name() string
	// Put 上传对象，key使用正斜杠分隔
	Put(ctx context.Context, key string, reader io.Reader, contentType string) error
}

// New 根据配置创建镜像实例
// provider为空或none时返回nil，表示不启用镜像
func New(cfg config.MirrorConfig) (Mirror, error) {
	switch strings.ToLower(cfg.Provider) {
	case "", "none":
		return nil, nil
	case ProviderAliyun:
		return NewAliyunMirror(cfg)
	case ProviderTencent:
		return NewTencentMirror(cfg)
	case ProviderQiniu:
		return NewQiniuMirror(cfg)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedProvider, cfg.Provider)
	}
}

// ObjectKey 拼接对象键，去掉首尾多余的斜杠
func ObjectKey(prefix, relPath string) string {
	key := path.Join("/", prefix, relPath)
	return strings.TrimPrefix(key, "/")
}
