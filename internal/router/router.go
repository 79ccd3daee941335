package router

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/weiwangfds/redactor-upload/config"
	"github.com/weiwangfds/redactor-upload/internal/handler"
	"github.com/weiwangfds/redactor-upload/internal/middleware"
	"github.com/weiwangfds/redactor-upload/internal/service/upload"
)

// Router 路由配置
type Router struct {
	engine *gin.Engine
}

// NewRouter 创建路由实例
// uploadsRoot为实际的上传根目录，仅在server.serve_uploads开启时用于静态文件
func NewRouter(cfg *config.Config, uploadService upload.UploadService, uploadsRoot string) *Router {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}

	engine := gin.New()
	loggerMiddleware := middleware.NewLoggerMiddleware("/health")

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestID())
	engine.Use(loggerMiddleware.RequestLogger())

	// 配置CORS，编辑器可能部署在其他域名下
	origins := cfg.Server.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	corsCfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept-Language", middleware.RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", middleware.RequestIDHeader},
		MaxAge:        86400,
	}
	if len(origins) == 1 && origins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = origins
		corsCfg.AllowCredentials = true
	}
	engine.Use(cors.New(corsCfg))

	// 健康检查
	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	uploadHandler := handler.NewUploadHandler(uploadService, cfg.Upload.LegacySilent)
	limiter := middleware.NewRateLimiter(cfg.Server.RateLimitQPS)
	engine.POST(cfg.Server.UploadPath, limiter.Middleware(), uploadHandler.Upload)

	if cfg.Server.ServeUploads && uploadsRoot != "" {
		engine.Static(cfg.Upload.PublicPath, uploadsRoot)
	}

	return &Router{engine: engine}
}

// GetEngine 获取Gin引擎
func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}
