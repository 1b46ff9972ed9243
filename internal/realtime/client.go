package realtime

import (
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

type Client struct {
	id     string
	conn   *websocket.Conn
	send   chan []byte
	userID string
	hub    *Hub
}

func NewClient(conn *websocket.Conn, hub *Hub, userID string) *Client {
	return &Client{
		id:     uuid.NewString(),
		conn:   conn,
		send:   make(chan []byte, 256),
		hub:    hub,
		userID: userID,
	}
}

func (c *Client) ID() string { return c.id }

// SubscribeMessage is what browsers send to pick their rooms.
type SubscribeMessage struct {
	Action       string   `json:"action"`
	EquipmentIDs []string `json:"equipment_ids"`
}

// ReadPump handles subscription requests until the connection drops.
func (c *Client) ReadPump() {
	defer c.conn.Close()

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.hub.logger.Warnw("read error", "error", err, "client_id", c.id)
			}
			return
		}

		var req SubscribeMessage
		if err := jsonFast.Unmarshal(msg, &req); err != nil {
			c.hub.logger.Warnw("invalid subscription message", "error", err, "client_id", c.id)
			continue
		}

		switch req.Action {
		case "subscribe":
			for _, id := range req.EquipmentIDs {
				c.hub.Subscribe(id, c)
			}
			c.hub.logger.Debugw("client subscribed", "client_id", c.id, "user_id", c.userID, "equipment_ids", req.EquipmentIDs)
		case "unsubscribe":
			c.hub.Unsubscribe(c, req.EquipmentIDs...)
		default:
			c.hub.logger.Warnw("unknown action", "action", req.Action, "client_id", c.id)
		}
	}
}

// WritePump drains the send queue until the hub closes it.
func (c *Client) WritePump() {
	defer c.conn.Close()

	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			c.hub.logger.Warnw("write error", "error", err, "client_id", c.id)
			return
		}
	}
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
}
