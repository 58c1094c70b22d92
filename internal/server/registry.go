package server

import (
	"net"
	"sort"
	"sync"
)

// Registry tracks which usernames currently have a live connection. It is
// presence bookkeeping only; message delivery always goes through the Hub.
type Registry struct {
	mu      sync.RWMutex
	clients map[string]net.Conn
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{clients: make(map[string]net.Conn)}
}

// Insert records conn under username. A later Insert with the same name
// silently overwrites the earlier entry; uniqueness is not enforced.
func (r *Registry) Insert(username string, conn net.Conn) {
	r.mu.Lock()
	r.clients[username] = conn
	r.mu.Unlock()
}

// Remove drops the entry for username. Removing an absent name is a no-op.
func (r *Registry) Remove(username string) {
	r.mu.Lock()
	delete(r.clients, username)
	r.mu.Unlock()
}

// Names returns a sorted snapshot of the registered usernames.
func (r *Registry) Names() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.clients))
	for name := range r.clients {
		names = append(names, name)
	}
	r.mu.RUnlock()
	sort.Strings(names)
	return names
}

// Contains reports whether username is currently registered.
func (r *Registry) Contains(username string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.clients[username]
	return ok
}

// Len reports how many clients are registered.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}
