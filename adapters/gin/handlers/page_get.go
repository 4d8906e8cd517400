package handlers

import (
	_ "embed"
	"net/http"

	"github.com/PaulFidika/donorkit/adapters/ginutil"
	"github.com/PaulFidika/donorkit/badge"
	core "github.com/PaulFidika/donorkit/core"
	"github.com/gin-gonic/gin"
)

//go:embed page.html
var pageHTML string

// HandlePageGET serves the landing page with the badge rendered for the
// caller, the server-side counterpart of refreshing on page load.
func HandlePageGET(p ServiceProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, err := badge.ParsePage(pageHTML)
		if err != nil {
			_ = c.Error(err)
			ginutil.ServerErr(c, "failed_to_render")
			return
		}
		svc := p.ServiceFor(c, core.WithRenderer(badge.NewRenderer(page)))
		if err := svc.RefreshBadge(c.Request.Context()); err != nil {
			_ = c.Error(err)
			ginutil.ServerErr(c, "failed_to_read_status")
			return
		}
		out, err := page.HTML()
		if err != nil {
			_ = c.Error(err)
			ginutil.ServerErr(c, "failed_to_render")
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(out))
	}
}
