package handlers

import (
	"net/http"

	"github.com/PaulFidika/donorkit/adapters/ginutil"
	"github.com/gin-gonic/gin"
)

func HandleStatusGET(p ServiceProvider, rl ginutil.RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !ginutil.AllowNamed(c, rl, ginutil.RLStatus) {
			ginutil.TooMany(c)
			return
		}
		rec, err := p.ServiceFor(c).Status(c.Request.Context())
		if err != nil {
			_ = c.Error(err)
			ginutil.ServerErr(c, "failed_to_read_status")
			return
		}
		if rec == nil {
			c.JSON(http.StatusOK, gin.H{"premium": false})
			return
		}
		c.JSON(http.StatusOK, gin.H{"premium": true, "record": rec})
	}
}
