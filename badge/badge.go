// Package badge renders the entitlement status badge into an HTML page.
//
// The badge is a single fixed-position element with id "premium-badge".
// Rendering always removes existing badges first, so calling Render any
// number of times leaves at most one badge on the page.
package badge

import (
	"context"
	"fmt"
	"html"
	"io"
	"strings"
	"sync"

	"github.com/PaulFidika/donorkit/entitlements"
	"github.com/PaulFidika/donorkit/lang"
	"github.com/PuerkitoBio/goquery"
)

// ElementID identifies the badge element.
const ElementID = "premium-badge"

// Style is the inline style of the badge overlay.
var Style = strings.Join([]string{
	"position: fixed",
	"top: 15px",
	"right: 15px",
	"background: #ffd700",
	"color: #000",
	"padding: 6px 12px",
	"border-radius: 20px",
	"font-size: 12px",
	"font-weight: bold",
	"z-index: 10000",
	"box-shadow: 0 2px 8px rgba(0,0,0,0.15)",
	"border: 1px solid #e6be00",
}, "; ")

const blankHTML = `<!DOCTYPE html><html><head><meta charset="utf-8"></head><body></body></html>`

// Page is a mutable HTML document.
type Page struct {
	mu  sync.Mutex
	doc *goquery.Document
}

// NewPage parses an HTML document.
func NewPage(r io.Reader) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}
	return &Page{doc: doc}, nil
}

// ParsePage parses an HTML string.
func ParsePage(s string) (*Page, error) { return NewPage(strings.NewReader(s)) }

// BlankPage returns an empty document.
func BlankPage() *Page {
	p, err := ParsePage(blankHTML)
	if err != nil {
		panic(err)
	}
	return p
}

// HTML serializes the document.
func (p *Page) HTML() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.doc.Html()
}

// Count returns how many elements carry id.
func (p *Page) Count(id string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.doc.Find("#" + id).Length()
}

// Text returns the text of the first element with id.
func (p *Page) Text(id string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.doc.Find("#" + id).First().Text()
}

// Text is the badge caption for rec in the language attached to ctx.
func Text(ctx context.Context, rec *entitlements.Record) string {
	return lang.MessageCtx(ctx, lang.Badge, rec.TypeName, rec.PrintCount)
}

// Renderer draws the badge into a Page. It implements core.Renderer.
type Renderer struct {
	Page *Page
}

func NewRenderer(p *Page) *Renderer { return &Renderer{Page: p} }

// Render replaces any existing badge with one for rec, or just removes it
// when rec is nil.
func (r *Renderer) Render(ctx context.Context, rec *entitlements.Record) error {
	p := r.Page
	p.mu.Lock()
	defer p.mu.Unlock()

	p.doc.Find("#" + ElementID).Remove()
	if rec == nil {
		return nil
	}
	body := p.doc.Find("body").First()
	if body.Length() == 0 {
		return fmt.Errorf("page has no body")
	}
	body.AppendHtml(fmt.Sprintf(`<div id="%s" style="%s">%s</div>`,
		ElementID, html.EscapeString(Style), html.EscapeString(Text(ctx, rec))))
	return nil
}
