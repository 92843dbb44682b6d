package realtime

import (
	"sync"

	"github.com/gorilla/websocket"
)

// Registry tracks the set of currently-open connections to the chatroom
// endpoint. There is a single room: every registered connection receives
// every broadcast. Mutations happen on connect/disconnect only; broadcasts
// iterate a snapshot so a connection closing mid-fanout never fails the call
// for the others.
type Registry struct {
	mu          sync.RWMutex
	connections map[string]*Connection // connection ID -> connection
}

// NewRegistry constructs an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		connections: make(map[string]*Connection),
	}
}

// Register adds a connection once the transport handshake has completed and
// starts its write loop.
func (r *Registry) Register(conn *Connection) {
	r.mu.Lock()
	r.connections[conn.ID] = conn
	r.mu.Unlock()

	conn.Start()
}

// Unregister removes a connection. Idempotent: removing a connection that is
// already gone is a no-op.
func (r *Registry) Unregister(conn *Connection) {
	if conn == nil {
		return
	}
	r.mu.Lock()
	delete(r.connections, conn.ID)
	r.mu.Unlock()
}

// Broadcast delivers payload to every connection whose transport is still
// open at the moment the snapshot is taken. Connections in any other state
// are silently skipped, not queued and not retried. Fan-out order across
// connections is unspecified. Returns the number of deliveries accepted.
func (r *Registry) Broadcast(payload []byte) int {
	r.mu.RLock()
	snapshot := make([]*Connection, 0, len(r.connections))
	for _, conn := range r.connections {
		snapshot = append(snapshot, conn)
	}
	r.mu.RUnlock()

	delivered := 0
	for _, conn := range snapshot {
		if !conn.Open() {
			continue
		}
		if err := conn.Send(payload); err == nil {
			delivered++
		}
	}
	return delivered
}

// Count returns the number of registered connections. Used for the presence
// endpoint and the connection gauge.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.connections)
}

// Close terminates every tracked connection and clears the registry.
func (r *Registry) Close() {
	r.mu.Lock()
	connections := make([]*Connection, 0, len(r.connections))
	for _, conn := range r.connections {
		connections = append(connections, conn)
	}
	r.connections = make(map[string]*Connection)
	r.mu.Unlock()

	for _, conn := range connections {
		conn.Close(websocket.CloseGoingAway, "registry shutdown")
	}
}
