package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/weiwangfds/redactor-upload/internal/logger"
)

// LoggerMiddleware 访问日志中间件
type LoggerMiddleware struct {
	logger    *logrus.Logger
	skipPaths map[string]struct{}
}

// NewLoggerMiddleware 创建日志中间件实例，skipPaths中的路径不记录
func NewLoggerMiddleware(skipPaths ...string) *LoggerMiddleware {
	skip := make(map[string]struct{}, len(skipPaths))
	for _, p := range skipPaths {
		skip[p] = struct{}{}
	}
	return &LoggerMiddleware{
		logger:    logger.GetLogger(),
		skipPaths: skip,
	}
}

// RequestLogger 请求完成后记录一条访问日志
func (m *LoggerMiddleware) RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		if _, skip := m.skipPaths[path]; skip {
			return
		}

		status := c.Writer.Status()
		entry := m.logger.WithFields(logrus.Fields{
			"request_id":     requestIDFrom(c),
			"status":         status,
			"latency":        time.Since(start).String(),
			"client_ip":      c.ClientIP(),
			"method":         c.Request.Method,
			"path":           path,
			"raw_query":      c.Request.URL.RawQuery,
			"user_agent":     c.Request.UserAgent(),
			"content_length": c.Request.ContentLength,
			"response_size":  c.Writer.Size(),
		})
		if len(c.Errors) > 0 {
			entry = entry.WithField("error_message", c.Errors.String())
		}

		switch {
		case status >= 500:
			entry.Error("HTTP Response")
		case status >= 400:
			entry.Warn("HTTP Response")
		default:
			entry.Info("HTTP Response")
		}
	}
}
