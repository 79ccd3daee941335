package mirror

import (
	"context"
	"fmt"
	"io"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/weiwangfds/redactor-upload/config"
	"github.com/weiwangfds/redactor-upload/internal/logger"
)

// AliyunMirror 阿里云OSS镜像
type AliyunMirror struct {
	client *oss.Client
	bucket *oss.Bucket
}

// NewAliyunMirror 创建阿里云OSS镜像实例
// 未配置endpoint时按region拼接默认域名
func NewAliyunMirror(cfg config.MirrorConfig) (*AliyunMirror, error) {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = fmt.Sprintf("https://oss-%s.aliyuncs.com", cfg.Region)
	}

	logger.Infof("[阿里云OSS] 初始化镜像, 域名: %s, 存储桶: %s", endpoint, cfg.Bucket)

	client, err := oss.New(endpoint, cfg.AccessKey, cfg.SecretKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create aliyun oss client: %w", err)
	}

	bucket, err := client.Bucket(cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to get bucket %s: %w", cfg.Bucket, err)
	}

	return &AliyunMirror{client: client, bucket: bucket}, nil
}

// Name 实现Mirror接口
func (m *AliyunMirror) Name() string { return ProviderAliyun }

// Put 上传对象到OSS
func (m *AliyunMirror) Put(ctx context.Context, key string, reader io.Reader, contentType string) error {
	options := []oss.Option{oss.WithContext(ctx)}
	if contentType != "" {
		options = append(options, oss.ContentType(contentType))
	}

	if err := m.bucket.PutObject(key, reader, options...); err != nil {
		return fmt.Errorf("failed to upload %s to aliyun oss: %w", key, err)
	}
	return nil
}
