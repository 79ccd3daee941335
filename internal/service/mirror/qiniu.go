package mirror

import (
	"context"
	"fmt"
	"io"

	"github.com/qiniu/go-sdk/v7/auth/qbox"
	"github.com/qiniu/go-sdk/v7/storage"
	"github.com/weiwangfds/redactor-upload/config"
	"github.com/weiwangfds/redactor-upload/internal/logger"
)

// QiniuMirror 七牛云Kodo镜像
type QiniuMirror struct {
	mac    *qbox.Mac
	bucket string
	region *storage.Region
}

// NewQiniuMirror 创建七牛云Kodo镜像实例
// 配置了region时直接使用，否则由SDK在上传时按存储桶查询区域
func NewQiniuMirror(cfg config.MirrorConfig) (*QiniuMirror, error) {
	m := &QiniuMirror{
		mac:    qbox.NewMac(cfg.AccessKey, cfg.SecretKey),
		bucket: cfg.Bucket,
	}

	if cfg.Region != "" {
		region, ok := storage.GetRegionByID(storage.RegionID(cfg.Region))
		if !ok {
			return nil, fmt.Errorf("unknown qiniu region: %s", cfg.Region)
		}
		m.region = &region
	}

	logger.Infof("[七牛云Kodo] 初始化镜像, 存储桶: %s, 区域: %s", cfg.Bucket, cfg.Region)
	return m, nil
}

// Name 实现Mirror接口
func (m *QiniuMirror) Name() string { return ProviderQiniu }

// Put 以表单方式上传对象，允许覆盖同名对象
func (m *QiniuMirror) Put(ctx context.Context, key string, reader io.Reader, contentType string) error {
	putPolicy := storage.PutPolicy{
		Scope: fmt.Sprintf("%s:%s", m.bucket, key),
	}
	upToken := putPolicy.UploadToken(m.mac)

	formUploader := storage.NewFormUploader(&storage.Config{
		Region:   m.region,
		UseHTTPS: true,
	})

	putExtra := storage.PutExtra{}
	if contentType != "" {
		putExtra.MimeType = contentType
	}

	ret := storage.PutRet{}
	if err := formUploader.Put(ctx, &ret, upToken, key, reader, -1, &putExtra); err != nil {
		return fmt.Errorf("failed to upload %s to qiniu kodo: %w", key, err)
	}
	return nil
}
