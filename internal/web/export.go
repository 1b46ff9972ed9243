package web

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"factorypulse/internal/dashboard"
	"factorypulse/internal/model"
	"factorypulse/internal/widget"
)

// ExportSite writes every page as <path>/index.html under dir, together
// with the static assets and the blueprint SVG, so the tree can be served
// by any static file server. It returns the written paths.
func ExportSite(dir string, r *Renderer, snap model.Snapshot, now time.Time) ([]string, error) {
	var written []string
	write := func(rel string, data []byte) error {
		full := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(full, data, 0o644); err != nil {
			return err
		}
		written = append(written, rel)
		return nil
	}

	for _, e := range dashboard.Registry() {
		p, err := e.Build(snap)
		if err != nil {
			return written, fmt.Errorf("build %s: %w", e.Slug, err)
		}
		var buf bytes.Buffer
		if err := r.Render(&buf, p, snap, now); err != nil {
			return written, err
		}
		rel := strings.TrimPrefix(e.Path+"/index.html", "/")
		if e.Path == "/" {
			rel = "index.html"
		}
		if err := write(rel, buf.Bytes()); err != nil {
			return written, fmt.Errorf("write %s: %w", rel, err)
		}
	}

	bp, err := widget.NewBlueprint(widget.DefaultPlacements(), snap.Floor)
	if err != nil {
		return written, err
	}
	var svg bytes.Buffer
	if err := bp.RenderSVG(&svg); err != nil {
		return written, err
	}
	if err := write("api/blueprint.svg", svg.Bytes()); err != nil {
		return written, fmt.Errorf("write blueprint: %w", err)
	}

	err = fs.WalkDir(staticFS, "static", func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := staticFS.ReadFile(path)
		if err != nil {
			return err
		}
		return write(path, data)
	})
	if err != nil {
		return written, fmt.Errorf("copy static assets: %w", err)
	}
	return written, nil
}
