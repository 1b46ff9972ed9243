package web

import (
	"bytes"
	"context"
	"image/png"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"factorypulse/internal/dashboard"
	"factorypulse/internal/db"
	"factorypulse/internal/fixtures"
	"factorypulse/internal/model"
	"factorypulse/internal/monitor"
	"factorypulse/internal/service"
	"factorypulse/internal/store"
	"factorypulse/internal/widget"
)

func newTestServer(t *testing.T) (*Server, *store.Store) {
	t.Helper()
	snap, err := fixtures.Load()
	require.NoError(t, err)
	logger := zap.NewNop().Sugar()
	st := store.New(snap, logger)

	srv, err := NewServer(Options{
		Store:     st,
		Health:    &monitor.Health{},
		Site:      "FactoryPulse",
		PublicURL: "http://plant.local/",
		Logger:    logger,
	})
	require.NoError(t, err)
	srv.now = func() time.Time { return time.Date(2024, 1, 15, 14, 5, 9, 0, time.UTC) }
	return srv, st
}

func do(t *testing.T, h http.Handler, method, target string, hdr map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestEveryPageRenders(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	for _, e := range dashboard.Registry() {
		t.Run(e.Slug, func(t *testing.T) {
			rec := do(t, h, http.MethodGet, e.Path, nil)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")

			body := rec.Body.String()
			p, err := e.Build(mustSnapshot(t))
			require.NoError(t, err)
			assert.Contains(t, body, "<h1>"+p.Title+"</h1>")
			assert.Contains(t, body, `href="`+e.Path+`" class="nav-item active"`)
			assert.Contains(t, body, "1/15/2024, 2:05:09 PM")
		})
	}
}

func mustSnapshot(t *testing.T) model.Snapshot {
	t.Helper()
	snap, err := fixtures.Load()
	require.NoError(t, err)
	return snap
}

func TestShopFloorEmbedsBlueprint(t *testing.T) {
	srv, _ := newTestServer(t)
	body := do(t, srv.Handler(), http.MethodGet, "/shop-floor", nil).Body.String()
	assert.Contains(t, body, "<svg")
	assert.Contains(t, body, `id="eq-cnc1"`)
	assert.Contains(t, body, "WO-2024-001")
}

func TestNotFound(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	rec := do(t, h, http.MethodGet, "/no-such-screen", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Oops! Page not found")
	assert.NotContains(t, rec.Body.String(), "nav-item active")

	rec = do(t, h, http.MethodGet, "/api/nothing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
}

func TestAPIPage(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	rec := do(t, h, http.MethodGet, "/api/pages/oee", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var p struct {
		Slug  string `json:"slug"`
		Title string `json:"title"`
		Body  struct {
			Derived float64 `json:"derived"`
		} `json:"body"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Equal(t, "oee", p.Slug)
	assert.Equal(t, "OEE Analytics", p.Title)
	assert.Greater(t, p.Body.Derived, 0.0)

	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/api/pages/payroll", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/api/pages/alerts?severity=loud", nil).Code)
}

func TestAPIEquipment(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := do(t, srv.Handler(), http.MethodGet, "/api/equipment", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var cards []widget.EquipmentCard
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cards))
	snap := mustSnapshot(t)
	assert.Len(t, cards, len(snap.Mission.Equipment)+len(snap.ShopFloor.Equipment))
	assert.Equal(t, "847/1,000 units", cards[0].OutputText)
}

func TestAPIEquipmentSurvivesNonFiniteFeed(t *testing.T) {
	srv, st := newTestServer(t)
	logger := zap.NewNop().Sugar()
	stats := db.NewIngestStats()
	in := service.NewIngestor(st, nil, stats, logger)

	err := in.Handle(context.Background(), []byte(`{"equipment_id":"line-a","status":"idle","efficiency":"NaN"}`))
	require.ErrorIs(t, err, model.ErrNonFinite)
	_, _, rejected := stats.Counts()
	assert.Equal(t, 1, rejected)

	rec := do(t, srv.Handler(), http.MethodGet, "/api/equipment", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var cards []widget.EquipmentCard
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cards))
	assert.Equal(t, 89.0, cards[0].Efficiency)
}

func TestWriteJSONEncodeFailureIs500(t *testing.T) {
	srv, st := newTestServer(t)
	snap := st.Snapshot()
	snap.Mission.Equipment[0].Efficiency = math.NaN()
	st.Replace(snap)

	rec := do(t, srv.Handler(), http.MethodGet, "/api/equipment", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, rec.Body.String())
}

func TestAPIBlueprint(t *testing.T) {
	srv, st := newTestServer(t)
	_, err := st.Apply(model.StatusEvent{EquipmentID: "cnc-1", Status: model.Down})
	require.NoError(t, err)

	rec := do(t, srv.Handler(), http.MethodGet, "/api/blueprint.svg", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), `<g id="eq-cnc1" data-status="down">`)
}

func TestAPIAlerts(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	tests := []struct {
		query string
		code  int
		count int
	}{
		{"", http.StatusOK, 5},
		{"?severity=critical", http.StatusOK, 2},
		{"?severity=warning", http.StatusOK, 2},
		{"?severity=info", http.StatusOK, 1},
		{"?severity=unacknowledged", http.StatusOK, 2},
		{"?severity=loud", http.StatusBadRequest, 0},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			rec := do(t, h, http.MethodGet, "/api/alerts"+tt.query, nil)
			require.Equal(t, tt.code, rec.Code)
			if tt.code != http.StatusOK {
				return
			}
			var items []model.Alert
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
			assert.Len(t, items, tt.count)
		})
	}
}

func TestAlertsPageFilter(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	body := do(t, h, http.MethodGet, "/alerts?severity=info", nil).Body.String()
	assert.Contains(t, body, "Shift Change Notification")
	assert.NotContains(t, body, "Line C Conveyor Belt Malfunction")

	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/alerts?severity=loud", nil).Code)
}

func TestAcknowledge(t *testing.T) {
	srv, st := newTestServer(t)
	h := srv.Handler()

	rec := do(t, h, http.MethodPost, "/alerts/1/ack", nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/alerts", rec.Header().Get("Location"))
	assert.Equal(t, 1, st.Snapshot().Alerts.Unacknowledged())

	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodPost, "/alerts/99/ack", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/alerts/first/ack", nil).Code)

	rec = do(t, h, http.MethodPost, "/alerts/ack-all", map[string]string{"Accept": "application/json"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"unacknowledged":0}`, rec.Body.String())
}

func TestHeaderBadgeCountsUnacknowledged(t *testing.T) {
	srv, st := newTestServer(t)
	h := srv.Handler()

	assert.Contains(t, do(t, h, http.MethodGet, "/", nil).Body.String(), `<span class="badge badge-destructive">2</span>`)
	st.AcknowledgeAll()
	assert.NotContains(t, do(t, h, http.MethodGet, "/", nil).Body.String(), `class="bell">Alerts <span`)
}

func TestExports(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	rec := do(t, h, http.MethodGet, "/export/production.xlsx", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "production.xlsx")
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")))

	rec = do(t, h, http.MethodGet, "/export/oee.pdf", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-")))
}

func TestEquipmentQR(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	rec := do(t, h, http.MethodGet, "/equipment/CNC-1/qr.png", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	_, err := png.Decode(rec.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/equipment/press-9/qr.png", nil).Code)
}

func TestStaticAndHealth(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	rec := do(t, h, http.MethodGet, "/static/app.css", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), ".equipment-running")

	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/health", nil).Code)
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/ready", nil).Code)
}

func TestExportSite(t *testing.T) {
	r, err := NewRenderer("FactoryPulse", WSPath)
	require.NoError(t, err)
	dir := t.TempDir()

	written, err := ExportSite(dir, r, mustSnapshot(t), time.Date(2024, 1, 15, 14, 5, 9, 0, time.UTC))
	require.NoError(t, err)
	assert.Contains(t, written, "index.html")
	assert.Contains(t, written, "shop-floor/index.html")
	assert.Contains(t, written, "api/blueprint.svg")
	assert.Contains(t, written, "static/app.css")

	f, err := os.Open(filepath.Join(dir, "downtime", "index.html"))
	require.NoError(t, err)
	defer f.Close()
	b, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(b), "Downtime"))
}

func TestRenderUnknownSlug(t *testing.T) {
	r, err := NewRenderer("FactoryPulse", WSPath)
	require.NoError(t, err)
	err = r.Render(io.Discard, dashboard.Page{Slug: "payroll"}, mustSnapshot(t), time.Now())
	assert.ErrorIs(t, err, ErrNoTemplate)
}
