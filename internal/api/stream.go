package api

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/RafaelAlves9/ML-Hate-Comments-Classification/internal/view"
)

// StateEvent describes websocket payloads emitted when a session's view changes.
type StateEvent struct {
	Type      string         `json:"type"`
	Session   string         `json:"-"`
	State     *view.State    `json:"state,omitempty"`
	Snapshot  *view.Snapshot `json:"snapshot,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// wsClient wraps a websocket connection with write locking.
type wsClient struct {
	conn    *websocket.Conn
	session string
	mu      sync.Mutex
}

// StateNotifier keeps track of websocket clients per session and pushes view changes to them.
type StateNotifier struct {
	mu      sync.Mutex
	clients map[*wsClient]struct{}
}

// NewStateNotifier constructs a notifier instance.
func NewStateNotifier() *StateNotifier {
	return &StateNotifier{clients: make(map[*wsClient]struct{})}
}

// Register attaches a websocket connection for session and sends it the
// current snapshot.
func (n *StateNotifier) Register(conn *websocket.Conn, session string, snapshot view.Snapshot) *wsClient {
	client := &wsClient{conn: conn, session: session}
	n.mu.Lock()
	n.clients[client] = struct{}{}
	n.mu.Unlock()

	_ = client.writeJSON(StateEvent{Type: "snapshot", Snapshot: &snapshot, Timestamp: time.Now().UTC()})
	return client
}

// Unregister removes the websocket client from the notifier and closes the socket.
func (n *StateNotifier) Unregister(client *wsClient) {
	if client == nil {
		return
	}
	n.mu.Lock()
	delete(n.clients, client)
	n.mu.Unlock()
	_ = client.conn.Close()
}

// Publish adapts a controller transition into a state event for its session.
func (n *StateNotifier) Publish(session string, state view.State) {
	n.Broadcast(StateEvent{Type: "state", Session: session, State: &state})
}

// Broadcast sends the event to every client registered for the event's session.
// Writes happen outside the registry lock so a stalled socket only delays its
// own session.
func (n *StateNotifier) Broadcast(event StateEvent) {
	event.Timestamp = time.Now().UTC()

	n.mu.Lock()
	targets := make([]*wsClient, 0, 1)
	for client := range n.clients {
		if client.session == event.Session {
			targets = append(targets, client)
		}
	}
	n.mu.Unlock()

	for _, client := range targets {
		if err := client.writeJSON(event); err != nil {
			n.Unregister(client)
		}
	}
}

// Count returns the number of connected clients.
func (n *StateNotifier) Count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.clients)
}

func (c *wsClient) writeJSON(payload interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return c.conn.WriteJSON(payload)
}
