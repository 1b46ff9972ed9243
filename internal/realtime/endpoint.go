package realtime

import (
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handler upgrades /ws requests and runs a client until it disconnects.
//
//	wscat -c "ws://localhost:8080/ws?token={jwt}"
//	{"action":"subscribe","equipment_ids":["cnc-1","*"]}
type Handler struct {
	hub      *Hub
	auth     *Authenticator
	logger   *zap.SugaredLogger
	upgrader websocket.Upgrader
}

func NewHandler(hub *Hub, auth *Authenticator, logger *zap.SugaredLogger) *Handler {
	return &Handler{
		hub:    hub,
		auth:   auth,
		logger: logger,
		upgrader: websocket.Upgrader{
			// The dashboard is served same-origin; tokens gate access.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID, err := h.auth.Authenticate(r)
	if err != nil {
		h.logger.Warnw("websocket auth failed", "error", err, "remote", r.RemoteAddr)
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Errorw("websocket upgrade failed", "error", err)
		return
	}

	client := NewClient(conn, h.hub, userID)
	h.hub.Register(client)
	h.logger.Infow("client connected", "client_id", client.id, "user_id", userID, "remote", conn.RemoteAddr().String())

	defer func() {
		h.hub.Remove(client)
		h.logger.Infow("client disconnected", "client_id", client.id)
	}()

	go client.WritePump()
	client.ReadPump()
}
