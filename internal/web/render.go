// Package web serves the dashboard: HTML pages, the JSON API, exports and
// the websocket endpoint.
package web

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"time"

	"factorypulse/internal/dashboard"
	"factorypulse/internal/model"
	"factorypulse/internal/widget"
)

//go:embed templates
var templatesFS embed.FS

//go:embed static
var staticFS embed.FS

const notFoundSlug = "not-found"

var ErrNoTemplate = errors.New("no template for page")

// Renderer executes the page templates; one template set per screen, all
// sharing the layout and partials.
type Renderer struct {
	site   string
	wsPath string
	pages  map[string]*template.Template
}

type pageData struct {
	Site         string
	Sidebar      []widget.NavGroup
	Header       widget.Header
	Page         dashboard.Page
	BlueprintSVG template.HTML
	WSPath       string
}

func NewRenderer(site, wsPath string) (*Renderer, error) {
	base, err := template.ParseFS(templatesFS, "templates/layout.html", "templates/partials.html")
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}

	slugs := []string{notFoundSlug}
	for _, e := range dashboard.Registry() {
		slugs = append(slugs, e.Slug)
	}

	r := &Renderer{site: site, wsPath: wsPath, pages: make(map[string]*template.Template, len(slugs))}
	for _, slug := range slugs {
		t, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("clone layout for %s: %w", slug, err)
		}
		if _, err := t.ParseFS(templatesFS, "templates/pages/"+slug+".html"); err != nil {
			return nil, fmt.Errorf("parse page %s: %w", slug, err)
		}
		r.pages[slug] = t
	}
	return r, nil
}

// Render writes the full HTML document for p. The header alert badge
// counts unacknowledged alerts in snap.
func (r *Renderer) Render(w io.Writer, p dashboard.Page, snap model.Snapshot, now time.Time) error {
	t, ok := r.pages[p.Slug]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoTemplate, p.Slug)
	}

	data := pageData{
		Site:    r.site,
		Sidebar: widget.Sidebar(p.Path),
		Header:  widget.NewHeader(p.Title, p.Subtitle, now, snap.Alerts.Unacknowledged()),
		Page:    p,
		WSPath:  r.wsPath,
	}
	if view, ok := p.Body.(dashboard.ShopFloorView); ok {
		var svg bytes.Buffer
		if err := view.Blueprint.RenderSVG(&svg); err != nil {
			return fmt.Errorf("render blueprint: %w", err)
		}
		// Produced by an html/template, so already escaped.
		data.BlueprintSVG = template.HTML(svg.String())
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("render %s: %w", p.Slug, err)
	}
	_, err := buf.WriteTo(w)
	return err
}

// NotFoundPage is the page shown for unknown paths.
func NotFoundPage(path string) dashboard.Page {
	return dashboard.Page{
		Slug:     notFoundSlug,
		Title:    "Page Not Found",
		Subtitle: "No page exists at " + path,
	}
}
