package mirror

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/tencentyun/cos-go-sdk-v5"
	"github.com/weiwangfds/redactor-upload/config"
	"github.com/weiwangfds/redactor-upload/internal/logger"
)

// TencentMirror 腾讯云COS镜像
type TencentMirror struct {
	client *cos.Client
}

// NewTencentMirror 创建腾讯云COS镜像实例
func NewTencentMirror(cfg config.MirrorConfig) (*TencentMirror, error) {
	bucketURL := fmt.Sprintf("https://%s.cos.%s.myqcloud.com", cfg.Bucket, cfg.Region)
	if cfg.Endpoint != "" {
		bucketURL = cfg.Endpoint
	}

	u, err := url.Parse(bucketURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse bucket URL: %w", err)
	}

	logger.Infof("[腾讯云COS] 初始化镜像, 存储桶地址: %s", u.String())

	client := cos.NewClient(&cos.BaseURL{BucketURL: u}, &http.Client{
		Transport: &cos.AuthorizationTransport{
			SecretID:  cfg.AccessKey,
			SecretKey: cfg.SecretKey,
		},
	})

	return &TencentMirror{client: client}, nil
}

// Name 实现Mirror接口
func (m *TencentMirror) Name() string { return ProviderTencent }

// Put 上传对象到COS
func (m *TencentMirror) Put(ctx context.Context, key string, reader io.Reader, contentType string) error {
	options := &cos.ObjectPutOptions{}
	if contentType != "" {
		options.ObjectPutHeaderOptions = &cos.ObjectPutHeaderOptions{
			ContentType: contentType,
		}
	}

	if _, err := m.client.Object.Put(ctx, key, reader, options); err != nil {
		return fmt.Errorf("failed to upload %s to tencent cos: %w", key, err)
	}
	return nil
}
