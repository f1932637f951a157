package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"
	"github.com/gorilla/websocket"

	"github.com/RafaelAlves9/ML-Hate-Comments-Classification/internal/view"
)

func TestBroadcastNotBlockedByStalledSession(t *testing.T) {
	n := NewStateNotifier()
	stalled := &wsClient{session: "slow"}
	idle := &wsClient{session: "fast"}
	n.clients[stalled] = struct{}{}
	n.clients[idle] = struct{}{}

	// A write in progress on the stalled socket holds its lock.
	stalled.mu.Lock()
	slowDone := make(chan struct{})
	go func() {
		n.Publish("slow", view.State{Mode: view.ModeSingle, Phase: view.PhaseLoading})
		close(slowDone)
	}()

	fastDone := make(chan struct{})
	go func() {
		n.Publish("fast", view.State{Mode: view.ModeSingle, Phase: view.PhaseLoading})
		_ = n.Count()
		close(fastDone)
	}()

	select {
	case <-fastDone:
	case <-time.After(2 * time.Second):
		t.Fatalf("publish to another session waited on a stalled client")
	}
	stalled.mu.Unlock()
	<-slowDone
	assert.Equal(t, 2, n.Count())
}

func TestBroadcastDropsFailedClient(t *testing.T) {
	conns := make(chan *websocket.Conn, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		upgrader := websocket.Upgrader{}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conns <- conn
	}))
	defer srv.Close()

	peer, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer peer.Close()
	conn := <-conns

	n := NewStateNotifier()
	n.Register(conn, "s", view.Snapshot{Active: view.ModeSingle})
	assert.Equal(t, 1, n.Count())

	_ = conn.Close()
	n.Publish("s", view.State{Mode: view.ModeSingle, Phase: view.PhaseIdle})
	assert.Equal(t, 0, n.Count())
}
