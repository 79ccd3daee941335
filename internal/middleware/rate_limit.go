package middleware

import (
	"github.com/gin-gonic/gin"
	apperrors "github.com/weiwangfds/redactor-upload/internal/errors"
	"github.com/weiwangfds/redactor-upload/internal/i18n"
	"github.com/weiwangfds/redactor-upload/internal/response"
	"golang.org/x/time/rate"
)

// RateLimiter 基于令牌桶的QPS限制
type RateLimiter struct {
	limiter *rate.Limiter
}

// NewRateLimiter 创建限流器，qps为0或负数时不限制
// 允许短时间内的突发请求（桶大小为QPS）
func NewRateLimiter(qps int) *RateLimiter {
	if qps <= 0 {
		return &RateLimiter{limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	return &RateLimiter{limiter: rate.NewLimiter(rate.Limit(qps), qps)}
}

// Allow 检查是否允许当前请求，不阻塞
func (r *RateLimiter) Allow() bool {
	return r.limiter.Allow()
}

// Middleware 超出限制时返回429
func (r *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !r.Allow() {
			lang := i18n.GetInstance().MatchLanguage(c.GetHeader("Accept-Language"))
			response.Error(c, apperrors.ErrTooManyRequestsError, lang)
			return
		}
		c.Next()
	}
}
