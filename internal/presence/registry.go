package presence

import (
	"log"
	"sort"
	"sync"

	"dm-service/internal/models"
)

// Handle is the live connection owned by a registry entry. Push must not
// block on receiver acknowledgment.
type Handle interface {
	Push(event models.PushEvent) error
}

// Registry is the authoritative record of which users are reachable right
// now. At most one entry exists per user; a new connection for the same
// user replaces the prior entry.
type Registry struct {
	mu      sync.RWMutex
	entries map[int]Handle
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[int]Handle)}
}

// Register inserts or replaces the entry for the user and notifies all
// other registered users that the user joined. The old handle, if any, is
// left untouched; closing it is the connection layer's responsibility.
func (r *Registry) Register(userID int, handle Handle) {
	r.mu.Lock()
	r.entries[userID] = handle
	peers := r.othersLocked(userID)
	r.mu.Unlock()

	r.fanOut(peers, models.PushEvent{Type: models.EventJoined, UserID: userID})
}

// Unregister removes the entry only if it still holds the given handle.
// A close event for a connection that has already been replaced by a newer
// session must not remove the newer entry.
func (r *Registry) Unregister(userID int, handle Handle) {
	r.mu.Lock()
	current, ok := r.entries[userID]
	if !ok || current != handle {
		r.mu.Unlock()
		return
	}
	delete(r.entries, userID)
	peers := r.othersLocked(userID)
	r.mu.Unlock()

	r.fanOut(peers, models.PushEvent{Type: models.EventLeft, UserID: userID})
}

// Lookup returns the live handle for the user, if any. Never blocks.
func (r *Registry) Lookup(userID int) (Handle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	handle, ok := r.entries[userID]
	return handle, ok
}

// Online reports whether the user currently has an active connection.
func (r *Registry) Online(userID int) bool {
	_, ok := r.Lookup(userID)
	return ok
}

// ListOthers returns the ids of all registered users except the given one,
// in ascending order.
func (r *Registry) ListOthers(excludingUserID int) []int {
	r.mu.RLock()
	ids := make([]int, 0, len(r.entries))
	for id := range r.entries {
		if id != excludingUserID {
			ids = append(ids, id)
		}
	}
	r.mu.RUnlock()

	sort.Ints(ids)
	return ids
}

func (r *Registry) othersLocked(excludingUserID int) map[int]Handle {
	peers := make(map[int]Handle, len(r.entries))
	for id, handle := range r.entries {
		if id != excludingUserID {
			peers[id] = handle
		}
	}
	return peers
}

// fanOut delivers a presence notification best effort. A failed push means
// the peer's connection is on its way out; its own close event cleans up.
func (r *Registry) fanOut(peers map[int]Handle, event models.PushEvent) {
	for id, handle := range peers {
		if err := handle.Push(event); err != nil {
			log.Printf("presence push to user %d failed: %v", id, err)
		}
	}
}
