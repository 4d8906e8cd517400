package lang

import (
	"context"
	"fmt"
)

type ctxKey struct{}

// WithLanguage attaches a request language to ctx.
func WithLanguage(ctx context.Context, language string) context.Context {
	return context.WithValue(ctx, ctxKey{}, language)
}

// LanguageFromContext reads a request language from ctx.
func LanguageFromContext(ctx context.Context) (string, bool) {
	v := ctx.Value(ctxKey{})
	s, ok := v.(string)
	return s, ok && s != ""
}

const Default = "en"

// Message keys.
const (
	InvalidCode = "invalid_code"
	Redeemed    = "redeemed"
	Badge       = "badge"
)

var catalogs = map[string]map[string]string{
	"en": {
		InvalidCode: "Invalid code. Please check the code and try again.",
		Redeemed:    "Activated! [%s]\nPrints available: %d",
		Badge:       "🙏 %s (prints: %d)",
	},
	"ko": {
		InvalidCode: "유효하지 않은 코드입니다. 코드를 다시 확인해 주세요.",
		Redeemed:    "인증 성공! [%s]\n인쇄 가능 횟수: %d회",
		Badge:       "🙏 %s (인쇄: %d회)",
	},
}

// Supported lists the languages with a message table.
func Supported() []string { return []string{"en", "ko"} }

// Message formats key in language, falling back to English.
func Message(language, key string, args ...any) string {
	tbl, ok := catalogs[language]
	if !ok {
		tbl = catalogs[Default]
	}
	f, ok := tbl[key]
	if !ok {
		f, ok = catalogs[Default][key]
		if !ok {
			return key
		}
	}
	if len(args) == 0 {
		return f
	}
	return fmt.Sprintf(f, args...)
}

// MessageCtx formats key in the language attached to ctx.
func MessageCtx(ctx context.Context, key string, args ...any) string {
	l, _ := LanguageFromContext(ctx)
	return Message(l, key, args...)
}
