package ginutil

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// RateLimiter is satisfied by ratelimit/memory and ratelimit/redis.
type RateLimiter interface {
	Allow(ctx context.Context, bucket, key string) (bool, error)
}

// Rate limit buckets.
const (
	RLRedeem  = "redeem"
	RLConsume = "consume"
	RLStatus  = "status"
)

// ClientKey is the gin context key holding the caller's client id.
const ClientKey = "donorkit.client_id"

// AllowNamed checks bucket for the current caller. Redemption is keyed on
// the remote IP because a guesser can drop the client cookie and get a new
// id on every request; other buckets use the client id when one is
// attached. Limiter errors fail open.
func AllowNamed(c *gin.Context, rl RateLimiter, bucket string) bool {
	if rl == nil {
		return true
	}
	key := c.ClientIP()
	if id := c.GetString(ClientKey); id != "" && bucket != RLRedeem {
		key = id
	}
	ok, err := rl.Allow(c.Request.Context(), bucket, key)
	if err != nil {
		_ = c.Error(err)
		return true
	}
	return ok
}

func BadRequest(c *gin.Context, code string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": code})
}

func Conflict(c *gin.Context, code string) {
	c.AbortWithStatusJSON(http.StatusConflict, gin.H{"ok": false, "error": code})
}

func TooMany(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate_limited"})
}

func ServerErr(c *gin.Context, code string) {
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": code})
}
