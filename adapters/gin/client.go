package donorgin

import (
	"net/http"
	"strings"
	"time"

	"github.com/PaulFidika/donorkit/adapters/ginutil"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ClientConfig controls the cookie that gives each browser its own record,
// the server-side stand-in for per-browser local storage.
type ClientConfig struct {
	CookieName string
	MaxAge     time.Duration
	Secure     bool
}

func (c *ClientConfig) defaulted() ClientConfig {
	out := ClientConfig{}
	if c != nil {
		out = *c
	}
	if strings.TrimSpace(out.CookieName) == "" {
		out.CookieName = "donorkit_client"
	}
	if out.MaxAge <= 0 {
		out.MaxAge = 400 * 24 * time.Hour
	}
	return out
}

// ClientMiddleware reads the client id cookie, minting a new id when it is
// missing or not a UUID, and refreshes the cookie on every response.
func ClientMiddleware(cfg *ClientConfig) gin.HandlerFunc {
	c := cfg.defaulted()
	return func(g *gin.Context) {
		id := ""
		if v, err := g.Cookie(c.CookieName); err == nil {
			if u, err := uuid.Parse(v); err == nil {
				id = u.String()
			}
		}
		if id == "" {
			id = uuid.NewString()
		}
		g.SetSameSite(http.SameSiteLaxMode)
		g.SetCookie(c.CookieName, id, int(c.MaxAge/time.Second), "/", "", c.Secure, true)
		g.Set(ginutil.ClientKey, id)
		g.Next()
	}
}

// ClientID returns the id attached by ClientMiddleware.
func ClientID(c *gin.Context) (string, bool) {
	id := c.GetString(ginutil.ClientKey)
	return id, id != ""
}
