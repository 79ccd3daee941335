// @title Redactor Upload API
// @version 1.0
// @description Redactor编辑器图片上传服务，按年月目录保存并返回可访问的URL

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8080
// @BasePath /
// @schemes http https
package main

import (
	"context"
	"crypto/tls"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/weiwangfds/redactor-upload/config"
	"github.com/weiwangfds/redactor-upload/internal/logger"
	"github.com/weiwangfds/redactor-upload/internal/router"
	"github.com/weiwangfds/redactor-upload/internal/service/mirror"
	"github.com/weiwangfds/redactor-upload/internal/service/scheduler"
	"github.com/weiwangfds/redactor-upload/internal/service/upload"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

func main() {
	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(&cfg.Log); err != nil {
		logger.Fatalf("Failed to initialize logger: %v", err)
	}

	// 初始化对象存储镜像，未配置时为nil
	m, err := mirror.New(cfg.Mirror)
	if err != nil {
		logger.Fatalf("Failed to initialize mirror: %v", err)
	}

	opts := []upload.Option{}
	if m != nil {
		opts = append(opts, upload.WithMirror(m, cfg.Mirror))
	}
	uploadService := upload.NewUploadService(cfg.Upload, opts...)

	uploadsRoot, err := upload.ResolveUploadsRoot(cfg.Upload.UploadsRoot, cfg.Upload.ScriptPath, cfg.Upload.Marker)
	if err != nil {
		logger.Fatalf("无法确定上传根目录: %v", err)
	}

	// 定时预创建当月目录
	var dirScheduler *scheduler.DirectoryScheduler
	if cfg.Scheduler.Enabled {
		dirScheduler = scheduler.NewDirectoryScheduler(uploadService, cfg.Scheduler.Spec)
		if err := dirScheduler.Start(); err != nil {
			logger.Errorf("Failed to start directory scheduler: %v", err)
			dirScheduler = nil
		}
	}

	r := router.NewRouter(cfg, uploadService, uploadsRoot)

	srv := &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.Server.Port),
		Handler:      r.GetEngine(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	if cfg.Server.EnableHTTPS {
		srv.TLSConfig = &tls.Config{
			MinVersion: tls.VersionTLS12,
			NextProtos: []string{"h2", "http/1.1"},
		}
		if cfg.Server.EnableHTTP2 {
			if err := http2.ConfigureServer(srv, &http2.Server{}); err != nil {
				logger.Fatalf("配置HTTP/2失败: %v", err)
			}
		}
	} else if cfg.Server.EnableHTTP2 {
		// 明文HTTP/2，通常位于反向代理之后
		srv.Handler = h2c.NewHandler(srv.Handler, &http2.Server{})
	}

	go func() {
		logger.Infof("上传服务启动在端口 %d (HTTPS: %v, HTTP/2: %v, 上传路径: %s)",
			cfg.Server.Port, cfg.Server.EnableHTTPS, cfg.Server.EnableHTTP2, cfg.Server.UploadPath)

		var err error
		if cfg.Server.EnableHTTPS {
			err = srv.ListenAndServeTLS(cfg.Server.TLSCertFile, cfg.Server.TLSKeyFile)
		} else {
			err = srv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("服务器启动失败: %v", err)
		}
	}()

	// 等待中断信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("正在关闭服务器...")

	if dirScheduler != nil {
		dirScheduler.Stop()
	}

	// 优雅关闭服务器
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatalf("服务器强制关闭: %v", err)
	}

	logger.Info("服务器已退出")
}
