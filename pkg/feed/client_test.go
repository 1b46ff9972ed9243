package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestClientSubscribesAndDispatches(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	subs := make(chan subscribeMsg, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.CloseNow()

		var sub subscribeMsg
		if err := wsjson.Read(r.Context(), conn, &sub); err != nil {
			return
		}
		subs <- sub

		_ = conn.Write(r.Context(), websocket.MessageBinary, []byte{0x1})
		_ = conn.Write(r.Context(), websocket.MessageText, []byte(`{"equipment_id":"cnc-1","status":"down"}`))
		_ = conn.Write(r.Context(), websocket.MessageText, []byte(`{"equipment_id":"qc-1","status":"running"}`))

		// hold the connection until the client leaves
		_, _, _ = conn.Read(r.Context())
	}))
	defer srv.Close()

	client := NewClient(Options{URL: wsURL(srv), Token: "secret"}, zap.NewNop())
	require.NoError(t, client.Subscribe(context.Background(), "cnc-1", "qc-1", "cnc-1"))

	ctx, cancel := context.WithCancel(context.Background())
	got := make(chan string, 2)
	done := make(chan error, 1)
	go func() {
		done <- client.Run(ctx, func(_ context.Context, msg []byte) {
			got <- string(msg)
		})
	}()

	select {
	case sub := <-subs:
		assert.Equal(t, "subscribe", sub.Action)
		assert.Equal(t, []string{"cnc-1", "qc-1"}, sub.EquipmentIDs)
	case <-time.After(5 * time.Second):
		t.Fatal("no subscription received")
	}

	for _, want := range []string{"cnc-1", "qc-1"} {
		select {
		case msg := <-got:
			assert.Contains(t, msg, want)
		case <-time.After(5 * time.Second):
			t.Fatal("message not dispatched")
		}
	}
	assert.True(t, client.IsAlive())

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return")
	}
	assert.False(t, client.IsAlive())
}

func TestClientReconnects(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	var accepted atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		if accepted.Add(1) == 1 {
			// drop the first session straight away
			_ = conn.Close(websocket.StatusNormalClosure, "bye")
			return
		}
		defer conn.CloseNow()
		_ = conn.Write(r.Context(), websocket.MessageText, []byte(`{"ok":true}`))
		_, _, _ = conn.Read(r.Context())
	}))
	defer srv.Close()

	client := NewClient(Options{URL: wsURL(srv), ReconnectInterval: 10 * time.Millisecond}, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	got := make(chan struct{}, 1)
	done := make(chan error, 1)
	go func() {
		done <- client.Run(ctx, func(context.Context, []byte) {
			select {
			case got <- struct{}{}:
			default:
			}
		})
	}()

	select {
	case <-got:
	case <-time.After(5 * time.Second):
		t.Fatal("no message after reconnect")
	}
	assert.GreaterOrEqual(t, accepted.Load(), int32(2))

	cancel()
	<-done
}

func TestRunStopsWhileDialFails(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	client := NewClient(Options{URL: "ws://127.0.0.1:1", ReconnectInterval: 5 * time.Millisecond}, zap.NewNop())
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := client.Run(ctx, func(context.Context, []byte) {})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, client.IsAlive())
}
