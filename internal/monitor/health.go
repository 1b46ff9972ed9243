package monitor

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// HealthResponse represents the health check response structure
type HealthResponse struct {
	Status  string            `json:"status"`
	Message string            `json:"message,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

type Pinger interface {
	Ping(ctx context.Context) error
}

type AliveChecker interface {
	IsAlive() bool
}

// Health serves /health and /ready. Components left nil are not
// configured and are not checked.
type Health struct {
	DB      Pinger
	Feed    AliveChecker
	Clients func() int
	Logger  *zap.SugaredLogger
}

func (h *Health) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.live)
	mux.HandleFunc("GET /ready", h.ready)
}

// --- Liveness ---
func (h *Health) live(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "alive",
		Message: "Service is running",
	})
}

// --- Readiness ---
func (h *Health) ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	details := make(map[string]string)
	var failing []string

	if h.DB != nil {
		if err := h.DB.Ping(ctx); err != nil {
			details["database"] = "unhealthy"
			failing = append(failing, fmt.Sprintf("database unhealthy: %v", err))
		} else {
			details["database"] = "healthy"
		}
	}

	if h.Feed != nil {
		if h.Feed.IsAlive() {
			details["feed"] = "healthy"
		} else {
			details["feed"] = "unhealthy"
			failing = append(failing, "feed disconnected")
		}
	}

	if h.Clients != nil {
		details["websocket_clients"] = strconv.Itoa(h.Clients())
	}

	statusCode := http.StatusOK
	statusMsg := "ready"
	if len(failing) > 0 {
		statusCode = http.StatusServiceUnavailable
		statusMsg = fmt.Sprintf("%d component(s) failing", len(failing))
		if h.Logger != nil {
			h.Logger.Warnw("readiness check failed", "failing", failing)
		}
	}

	writeJSON(w, statusCode, HealthResponse{
		Status:  statusMsg,
		Details: details,
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
