package feed

import (
	"context"
	"errors"
	"slices"

	"github.com/coder/websocket/wsjson"
	"go.uber.org/zap"
)

// AllEquipment subscribes to every machine on the feed.
const AllEquipment = "*"

type subscribeMsg struct {
	Action       string   `json:"action"`
	EquipmentIDs []string `json:"equipment_ids"`
}

var errNotConnected = errors.New("feed not connected")

// Subscribe adds equipment ids to the subscription. They are sent now when
// connected and again after every reconnect.
func (c *Client) Subscribe(ctx context.Context, ids ...string) error {
	c.mu.Lock()
	for _, id := range ids {
		if !slices.Contains(c.topics, id) {
			c.topics = append(c.topics, id)
		}
	}
	c.mu.Unlock()

	if !c.IsAlive() {
		return nil
	}
	return c.sendSubscription(ctx, ids)
}

// resubscribeAll re-sends every remembered id; nothing is sent when the
// subscription is empty.
func (c *Client) resubscribeAll(ctx context.Context) error {
	c.mu.Lock()
	ids := slices.Clone(c.topics)
	c.mu.Unlock()

	if len(ids) == 0 {
		return nil
	}
	return c.sendSubscription(ctx, ids)
}

// sendSubscription sends a subscription request to the server
func (c *Client) sendSubscription(ctx context.Context, ids []string) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return errNotConnected
	}

	c.logger.Debug("feed subscribe", zap.Strings("equipment_ids", ids))
	return wsjson.Write(ctx, conn, subscribeMsg{Action: "subscribe", EquipmentIDs: ids})
}
