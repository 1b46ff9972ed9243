// Package realtime pushes equipment status changes to browsers over
// websockets. Clients join rooms keyed by equipment id, or "*" for all.
package realtime

import (
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"factorypulse/internal/model"
	"factorypulse/internal/store"
	"factorypulse/internal/widget"
)

// AllEquipment is the room that receives every update.
const AllEquipment = "*"

var jsonFast = jsoniter.ConfigFastest

func roomKey(id string) string {
	if id == AllEquipment {
		return id
	}
	return model.NormalizeID(id)
}

type Hub struct {
	mu sync.RWMutex

	// room mapping: equipment id -> clients
	rooms map[string]map[*Client]bool

	// reverse mapping: client -> subscribed rooms
	clientSubs map[*Client]map[string]bool
	logger     *zap.SugaredLogger
}

func NewHub(logger *zap.SugaredLogger) *Hub {
	return &Hub{
		rooms:      make(map[string]map[*Client]bool),
		clientSubs: make(map[*Client]map[string]bool),
		logger:     logger,
	}
}

// Register tracks a connected client before it subscribes to anything.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clientSubs[c] == nil {
		h.clientSubs[c] = make(map[string]bool)
	}
}

func (h *Hub) Subscribe(id string, c *Client) {
	key := roomKey(id)
	if key == "" {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.rooms[key] == nil {
		h.rooms[key] = make(map[*Client]bool)
	}
	h.rooms[key][c] = true

	if h.clientSubs[c] == nil {
		h.clientSubs[c] = make(map[string]bool)
	}
	h.clientSubs[c][key] = true
}

// Unsubscribe leaves the given rooms; the client stays registered.
func (h *Hub) Unsubscribe(c *Client, ids ...string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, id := range ids {
		key := roomKey(id)
		h.leave(c, key)
		delete(h.clientSubs[c], key)
	}
}

// Remove drops the client from every room and closes its send queue.
func (h *Hub) Remove(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs, ok := h.clientSubs[c]
	if !ok {
		return
	}
	for key := range subs {
		h.leave(c, key)
	}
	delete(h.clientSubs, c)
	close(c.send)
}

func (h *Hub) leave(c *Client, key string) {
	delete(h.rooms[key], c)
	if len(h.rooms[key]) == 0 {
		delete(h.rooms, key)
	}
}

// BroadcastTo sends msg to the equipment room and the "*" room. Each
// client gets it once; clients with a full queue are skipped.
func (h *Hub) BroadcastTo(id string, msg []byte) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	sent := 0
	seen := make(map[*Client]bool)
	for _, key := range []string{roomKey(id), AllEquipment} {
		for client := range h.rooms[key] {
			if seen[client] {
				continue
			}
			seen[client] = true
			select {
			case client.send <- msg:
				sent++
			default:
				h.logger.Warnw("slow client skipped", "client_id", client.id, "equipment_id", id)
			}
		}
	}
	return sent
}

func (h *Hub) Subscribers(id string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomKey(id)])
}

func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clientSubs)
}

// Update is the message pushed for each applied status change.
type Update struct {
	Type        string                 `json:"type"`
	EquipmentID string                 `json:"equipment_id"`
	Status      model.EquipmentStatus  `json:"status"`
	Cards       []widget.EquipmentCard `json:"cards"`
	At          time.Time              `json:"at"`
}

// Publish is a store.ChangeListener: it renders the touched records as
// equipment cards and broadcasts them. Changes that touched no card, such
// as a machine only listed on the live status screen, are not sent.
func (h *Hub) Publish(change store.Change) {
	if len(change.Records) == 0 {
		return
	}
	update := Update{
		Type:        "equipment",
		EquipmentID: change.EquipmentID,
		Status:      change.Status,
		At:          change.At,
	}
	for _, r := range change.Records {
		card, err := widget.NewEquipmentCard(r)
		if err != nil {
			h.logger.Errorw("failed to render equipment card", "error", err, "equipment_id", r.ID)
			continue
		}
		update.Cards = append(update.Cards, card)
	}
	if len(update.Cards) == 0 {
		return
	}

	msg, err := jsonFast.Marshal(update)
	if err != nil {
		h.logger.Errorw("failed to encode update", "error", err)
		return
	}
	n := h.BroadcastTo(change.EquipmentID, msg)
	h.logger.Debugw("update broadcast", "equipment_id", change.EquipmentID, "clients", n)
}
