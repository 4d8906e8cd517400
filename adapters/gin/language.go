package donorgin

import (
	"regexp"
	"strings"

	donorlang "github.com/PaulFidika/donorkit/lang"
	"github.com/gin-gonic/gin"
)

// LanguageConfig selects the language of notices and badge text.
type LanguageConfig struct {
	Supported  []string
	Default    string
	QueryParam string
	CookieName string
}

func (c *LanguageConfig) defaulted() LanguageConfig {
	if c == nil {
		return LanguageConfig{
			Supported:  donorlang.Supported(),
			Default:    donorlang.Default,
			QueryParam: "lang",
			CookieName: "lang",
		}
	}
	out := *c
	if len(out.Supported) == 0 {
		out.Supported = donorlang.Supported()
	}
	if strings.TrimSpace(out.Default) == "" {
		out.Default = donorlang.Default
	}
	if strings.TrimSpace(out.QueryParam) == "" {
		out.QueryParam = "lang"
	}
	if strings.TrimSpace(out.CookieName) == "" {
		out.CookieName = "lang"
	}
	return out
}

// LanguageKey is the gin context key holding the resolved language.
const LanguageKey = "donorkit.language"

var reLangCode = regexp.MustCompile(`^[a-z]{2}$`)

// langCode reduces "ko-KR", "ko_kr" or "KO" to "ko"; anything else is "".
func langCode(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if i := strings.IndexAny(s, "-_;"); i >= 0 {
		s = s[:i]
	}
	if !reLangCode.MatchString(s) {
		return ""
	}
	return s
}

// acceptLanguages lists the codes of an Accept-Language header in header
// order. Quality values are ignored; browsers already sort by them.
func acceptLanguages(header string) []string {
	var out []string
	for _, part := range strings.Split(header, ",") {
		if code := langCode(part); code != "" {
			out = append(out, code)
		}
	}
	return out
}

// pathLanguage returns the first path segment when it looks like a
// language code, as in /ko/index.html.
func pathLanguage(path string) string {
	seg, _, _ := strings.Cut(strings.TrimLeft(path, "/"), "/")
	if len(seg) != 2 {
		return ""
	}
	return langCode(seg)
}

// resolveRequestLanguage picks the first supported candidate from, in order:
// the query parameter, the path prefix, the cookie, Accept-Language and the
// configured default.
func resolveRequestLanguage(c *gin.Context, cfg LanguageConfig) string {
	supported := make(map[string]bool, len(cfg.Supported))
	for _, s := range cfg.Supported {
		if code := langCode(s); code != "" {
			supported[code] = true
		}
	}

	candidates := []string{c.Query(cfg.QueryParam), pathLanguage(c.Request.URL.Path)}
	if cfg.CookieName != "" {
		if v, err := c.Cookie(cfg.CookieName); err == nil {
			candidates = append(candidates, v)
		}
	}
	candidates = append(candidates, acceptLanguages(c.GetHeader("Accept-Language"))...)
	candidates = append(candidates, cfg.Default)

	for _, cand := range candidates {
		code := langCode(cand)
		if code == "" {
			continue
		}
		if len(supported) == 0 || supported[code] {
			return code
		}
	}
	return donorlang.Default
}

// LanguageMiddleware infers request language and attaches it to the request context.
func LanguageMiddleware(cfg *LanguageConfig) gin.HandlerFunc {
	c := cfg.defaulted()
	return func(g *gin.Context) {
		lang := resolveRequestLanguage(g, c)
		g.Set(LanguageKey, lang)
		g.Request = g.Request.WithContext(donorlang.WithLanguage(g.Request.Context(), lang))
		g.Next()
	}
}
