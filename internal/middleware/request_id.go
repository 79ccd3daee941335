package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDHeader 请求ID的HTTP头
const RequestIDHeader = "X-Request-ID"

// requestIDKey gin上下文中保存请求ID的键，response包读取同一个键
const requestIDKey = "request_id"

// RequestID 为每个请求分配追踪ID
// 客户端已携带合法的 X-Request-ID 时沿用，否则生成UUID
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" || len(id) > 64 {
			id = uuid.New().String()
		}
		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

func requestIDFrom(c *gin.Context) string {
	return c.GetString(requestIDKey)
}
