package feed

import (
	"context"
	"time"

	"github.com/coder/websocket"
	"go.uber.org/zap"
)

// heartbeatLoop pings the server; a failed ping closes the connection so
// the read loop ends and Run reconnects.
func (c *Client) heartbeatLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(c.opts.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.sendHeartbeat(ctx, conn); err != nil {
				if ctx.Err() != nil {
					return
				}
				c.logger.Error("heartbeat failed", zap.Error(err))
				_ = conn.Close(websocket.StatusGoingAway, "heartbeat timeout")
				return
			}
		}
	}
}

func (c *Client) sendHeartbeat(ctx context.Context, conn *websocket.Conn) error {
	hbCtx, cancel := context.WithTimeout(ctx, c.opts.HeartbeatTimeout)
	defer cancel()

	c.logger.Debug("sending heartbeat")
	return conn.Ping(hbCtx)
}
