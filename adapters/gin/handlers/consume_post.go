package handlers

import (
	"errors"
	"net/http"

	"github.com/PaulFidika/donorkit/adapters/ginutil"
	"github.com/PaulFidika/donorkit/entitlements"
	"github.com/gin-gonic/gin"
)

// HandleConsumePOST takes one print from the caller's entitlement.
func HandleConsumePOST(p ServiceProvider, rl ginutil.RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !ginutil.AllowNamed(c, rl, ginutil.RLConsume) {
			ginutil.TooMany(c)
			return
		}
		rec, err := p.ServiceFor(c).ConsumeRecord(c.Request.Context())
		switch {
		case errors.Is(err, entitlements.ErrNoEntitlement):
			ginutil.Conflict(c, "no_entitlement")
			return
		case errors.Is(err, entitlements.ErrQuotaExhausted):
			ginutil.Conflict(c, "quota_exhausted")
			return
		case err != nil:
			_ = c.Error(err)
			ginutil.ServerErr(c, "failed_to_consume")
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true, "record": rec})
	}
}
