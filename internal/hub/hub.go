// Package hub tracks which users are currently online. A user may hold
// several authenticated connections at once; the hub counts them all.
package hub

import "sync"

type Connection struct {
	UserUUID string
}

type Hub struct {
	mu          sync.RWMutex
	connections map[string]map[*Connection]struct{}
}

func New() *Hub {
	return &Hub{connections: make(map[string]map[*Connection]struct{})}
}

func (h *Hub) Register(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.connections[conn.UserUUID] == nil {
		h.connections[conn.UserUUID] = make(map[*Connection]struct{})
	}
	h.connections[conn.UserUUID][conn] = struct{}{}
}

func (h *Hub) Unregister(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set := h.connections[conn.UserUUID]
	if set == nil {
		return
	}
	delete(set, conn)
	if len(set) == 0 {
		delete(h.connections, conn.UserUUID)
	}
}

// CountUser returns the number of open connections of one user.
func (h *Hub) CountUser(userUUID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections[userUUID])
}

// CountTotal returns the number of authenticated connections across all
// users.
func (h *Hub) CountTotal() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	for _, set := range h.connections {
		total += len(set)
	}
	return total
}
