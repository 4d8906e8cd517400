package handlers

import (
	"errors"
	"net/http"

	"github.com/PaulFidika/donorkit/adapters/ginutil"
	core "github.com/PaulFidika/donorkit/core"
	"github.com/PaulFidika/donorkit/entitlements"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

// HandleRedeemPOST accepts a code as JSON or form data. Form posts are
// redirected to the landing page on success, like the page script did.
func HandleRedeemPOST(p ServiceProvider, rl ginutil.RateLimiter) gin.HandlerFunc {
	type redeemReq struct {
		Code string `json:"code" form:"code"`
	}
	return func(c *gin.Context) {
		if !ginutil.AllowNamed(c, rl, ginutil.RLRedeem) {
			ginutil.TooMany(c)
			return
		}
		var req redeemReq
		if err := c.ShouldBind(&req); err != nil {
			ginutil.BadRequest(c, "invalid_request")
			return
		}
		ex := &exchange{}
		svc := p.ServiceFor(c, core.WithNotifier(ex), core.WithNavigator(ex))
		rec, err := svc.Redeem(c.Request.Context(), req.Code)
		if errors.Is(err, entitlements.ErrInvalidCode) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_code", "message": ex.message()})
			return
		}
		if err != nil {
			_ = c.Error(err)
			ginutil.ServerErr(c, "failed_to_redeem")
			return
		}
		if c.ContentType() == binding.MIMEPOSTForm && ex.destination != "" {
			c.Redirect(http.StatusSeeOther, ex.destination)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true, "record": rec, "message": ex.message(), "redirect": ex.destination})
	}
}
