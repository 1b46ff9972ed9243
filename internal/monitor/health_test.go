package monitor

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

type alive bool

func (a alive) IsAlive() bool { return bool(a) }

func serve(t *testing.T, h *Health, path string) (int, HealthResponse) {
	t.Helper()
	mux := http.NewServeMux()
	h.Register(mux)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return rec.Code, resp
}

func TestLive(t *testing.T) {
	code, resp := serve(t, &Health{}, "/health")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "alive", resp.Status)
}

func TestReady(t *testing.T) {
	tests := []struct {
		name     string
		health   *Health
		wantCode int
		want     map[string]string
	}{
		{
			name:     "nothing configured",
			health:   &Health{},
			wantCode: http.StatusOK,
		},
		{
			name:     "all healthy",
			health:   &Health{DB: pinger{}, Feed: alive(true), Clients: func() int { return 4 }},
			wantCode: http.StatusOK,
			want:     map[string]string{"database": "healthy", "feed": "healthy", "websocket_clients": "4"},
		},
		{
			name:     "database down",
			health:   &Health{DB: pinger{err: errors.New("refused")}, Feed: alive(false), Logger: zap.NewNop().Sugar()},
			wantCode: http.StatusServiceUnavailable,
			want:     map[string]string{"database": "unhealthy", "feed": "unhealthy"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, resp := serve(t, tt.health, "/ready")
			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.want, resp.Details)
		})
	}
}
