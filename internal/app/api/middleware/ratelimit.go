package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/usecmdr-rgb/ovrsee-sub007/pkg/response"
)

// RateLimitMiddleware enforces a process-wide request budget. The limiter is
// injected by the composition root rather than held in package state, so its
// lifecycle is explicit and tests can supply their own.
func RateLimitMiddleware(limiter *rate.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests,
				response.ErrorT[any](response.APIResponseCodeBadRequest, "too many requests"))
			return
		}
		c.Next()
	}
}
