package web

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"factorypulse/internal/dashboard"
	"factorypulse/internal/model"
	"factorypulse/internal/monitor"
	"factorypulse/internal/report"
	"factorypulse/internal/store"
	"factorypulse/internal/widget"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const WSPath = "/ws"

type Options struct {
	Store     *store.Store
	WS        http.Handler
	Health    *monitor.Health
	Site      string
	PublicURL string
	Logger    *zap.SugaredLogger
}

type Server struct {
	store     *store.Store
	renderer  *Renderer
	ws        http.Handler
	health    *monitor.Health
	site      string
	publicURL string
	logger    *zap.SugaredLogger
	now       func() time.Time
}

func NewServer(opts Options) (*Server, error) {
	r, err := NewRenderer(opts.Site, WSPath)
	if err != nil {
		return nil, err
	}
	return &Server{
		store:     opts.Store,
		renderer:  r,
		ws:        opts.WS,
		health:    opts.Health,
		site:      opts.Site,
		publicURL: strings.TrimRight(opts.PublicURL, "/"),
		logger:    opts.Logger,
		now:       time.Now,
	}, nil
}

// Handler returns the routed, request-logging handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	for _, e := range dashboard.Registry() {
		pattern := "GET " + e.Path
		if e.Path == "/" {
			pattern = "GET /{$}"
		}
		mux.HandleFunc(pattern, s.handlePage(e))
	}

	mux.HandleFunc("GET /api/pages/{slug}", s.handleAPIPage)
	mux.HandleFunc("GET /api/equipment", s.handleAPIEquipment)
	mux.HandleFunc("GET /api/blueprint.svg", s.handleBlueprint)
	mux.HandleFunc("GET /api/alerts", s.handleAPIAlerts)
	mux.HandleFunc("POST /alerts/{id}/ack", s.handleAck)
	mux.HandleFunc("POST /alerts/ack-all", s.handleAckAll)

	mux.HandleFunc("GET /export/production.xlsx", s.handleProductionXLSX)
	mux.HandleFunc("GET /export/oee.pdf", s.handleOEEPDF)
	mux.HandleFunc("GET /equipment/{id}/qr.png", s.handleQR)

	static, _ := fs.Sub(staticFS, "static")
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(static))))

	if s.ws != nil {
		mux.Handle("GET "+WSPath, s.ws)
	}
	if s.health != nil {
		s.health.Register(mux)
	}

	mux.HandleFunc("/", s.notFound)
	return logRequests(s.logger, mux)
}

func (s *Server) handlePage(e dashboard.Entry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := s.store.Snapshot()

		var (
			p   dashboard.Page
			err error
		)
		if e.Slug == "alerts" {
			p, err = alertsPage(snap, r)
		} else {
			p, err = e.Build(snap)
		}
		if err != nil {
			s.htmlError(w, r, err)
			return
		}
		s.renderHTML(w, http.StatusOK, p, snap)
	}
}

func alertsPage(snap model.Snapshot, r *http.Request) (dashboard.Page, error) {
	f, err := dashboard.ParseAlertFilter(r.URL.Query().Get("severity"))
	if err != nil {
		return dashboard.Page{}, err
	}
	return dashboard.FilteredAlerts(snap, f)
}

func (s *Server) renderHTML(w http.ResponseWriter, code int, p dashboard.Page, snap model.Snapshot) {
	var buf bytes.Buffer
	if err := s.renderer.Render(&buf, p, snap, s.now()); err != nil {
		s.logger.Errorw("failed to render page", "error", err, "page", p.Slug)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	_, _ = buf.WriteTo(w)
}

func (s *Server) notFound(w http.ResponseWriter, r *http.Request) {
	s.logger.Warnw("route not found", "path", r.URL.Path)
	if strings.HasPrefix(r.URL.Path, "/api/") {
		s.writeError(w, http.StatusNotFound, "not found")
		return
	}
	s.renderHTML(w, http.StatusNotFound, NotFoundPage(r.URL.Path), s.store.Snapshot())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, dashboard.ErrUnknownPage), errors.Is(err, store.ErrUnknownAlert), errors.Is(err, store.ErrUnknownEquipment):
		return http.StatusNotFound
	case errors.Is(err, dashboard.ErrUnknownFilter):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) htmlError(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	if code == http.StatusNotFound {
		s.notFound(w, r)
		return
	}
	if code >= http.StatusInternalServerError {
		s.logger.Errorw("request failed", "error", err, "path", r.URL.Path)
	}
	http.Error(w, err.Error(), code)
}

func (s *Server) apiError(w http.ResponseWriter, err error) {
	code := statusFor(err)
	if code >= http.StatusInternalServerError {
		s.logger.Errorw("api request failed", "error", err)
	}
	s.writeError(w, code, err.Error())
}

// writeJSON encodes before writing the status, so an encode failure
// becomes a 500 rather than a truncated 200.
func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		s.logger.Errorw("failed to encode response", "error", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"error":"internal server error"}`+"\n")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = buf.WriteTo(w)
}

func (s *Server) writeError(w http.ResponseWriter, code int, msg string) {
	s.writeJSON(w, code, map[string]string{"error": msg})
}

func (s *Server) handleAPIPage(w http.ResponseWriter, r *http.Request) {
	e, err := dashboard.BySlug(r.PathValue("slug"))
	if err != nil {
		s.apiError(w, err)
		return
	}
	snap := s.store.Snapshot()
	var p dashboard.Page
	if e.Slug == "alerts" {
		p, err = alertsPage(snap, r)
	} else {
		p, err = e.Build(snap)
	}
	if err != nil {
		s.apiError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleAPIEquipment(w http.ResponseWriter, r *http.Request) {
	snap := s.store.Snapshot()
	cards := make([]widget.EquipmentCard, 0, len(snap.Mission.Equipment)+len(snap.ShopFloor.Equipment))
	for _, list := range [][]model.EquipmentRecord{snap.Mission.Equipment, snap.ShopFloor.Equipment} {
		for _, rec := range list {
			c, err := widget.NewEquipmentCard(rec)
			if err != nil {
				s.apiError(w, err)
				return
			}
			cards = append(cards, c)
		}
	}
	s.writeJSON(w, http.StatusOK, cards)
}

func (s *Server) handleBlueprint(w http.ResponseWriter, r *http.Request) {
	bp, err := widget.NewBlueprint(widget.DefaultPlacements(), s.store.Snapshot().Floor)
	if err != nil {
		s.apiError(w, err)
		return
	}
	var buf bytes.Buffer
	if err := bp.RenderSVG(&buf); err != nil {
		s.apiError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleAPIAlerts(w http.ResponseWriter, r *http.Request) {
	f, err := dashboard.ParseAlertFilter(r.URL.Query().Get("severity"))
	if err != nil {
		s.apiError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, dashboard.FilterAlerts(s.store.Snapshot().Alerts.Items, f))
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

func (s *Server) handleAck(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid alert id")
		return
	}
	if err := s.store.Acknowledge(id); err != nil {
		s.apiError(w, err)
		return
	}
	s.logger.Infow("alert acknowledged", "alert_id", id)
	s.afterAck(w, r)
}

func (s *Server) handleAckAll(w http.ResponseWriter, r *http.Request) {
	n := s.store.AcknowledgeAll()
	s.logger.Infow("alerts acknowledged", "count", n)
	s.afterAck(w, r)
}

func (s *Server) afterAck(w http.ResponseWriter, r *http.Request) {
	if wantsJSON(r) {
		s.writeJSON(w, http.StatusOK, map[string]int{"unacknowledged": s.store.Snapshot().Alerts.Unacknowledged()})
		return
	}
	http.Redirect(w, r, "/alerts", http.StatusSeeOther)
}

func attachment(w http.ResponseWriter, contentType, name string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
}

func (s *Server) handleProductionXLSX(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := report.WriteProductionXLSX(&buf, s.store.Snapshot()); err != nil {
		s.apiError(w, err)
		return
	}
	attachment(w, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "production.xlsx")
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleOEEPDF(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := report.WriteOEEPDF(&buf, s.store.Snapshot(), s.site); err != nil {
		s.apiError(w, err)
		return
	}
	attachment(w, "application/pdf", "oee.pdf")
	_, _ = buf.WriteTo(w)
}

// knownEquipment reports whether id names any equipment on any screen.
func knownEquipment(snap model.Snapshot, id string) bool {
	key := model.NormalizeID(id)
	for _, list := range [][]model.EquipmentRecord{snap.Mission.Equipment, snap.ShopFloor.Equipment} {
		for _, r := range list {
			if model.NormalizeID(r.ID) == key {
				return true
			}
		}
	}
	for _, e := range snap.Live.Equipment {
		if model.NormalizeID(e.ID) == key {
			return true
		}
	}
	return false
}

func (s *Server) handleQR(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !knownEquipment(s.store.Snapshot(), id) {
		s.apiError(w, fmt.Errorf("%w: %s", store.ErrUnknownEquipment, id))
		return
	}
	png, err := report.EquipmentQR(report.EquipmentURL(s.publicURL, id))
	if err != nil {
		s.apiError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}
