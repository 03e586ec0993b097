package session

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"dm-service/internal/models"
)

// State of the currently selected conversation.
type State int

const (
	Unselected State = iota
	Loading
	Live
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Live:
		return "live"
	default:
		return "unselected"
	}
}

// ErrSelectionChanged reports that a fetch resolved after its conversation
// was deselected or replaced; its result has been discarded.
var ErrSelectionChanged = errors.New("selection changed")

// Fetcher is the history range query the reconciler consumes.
type Fetcher interface {
	Range(ctx context.Context, userA int, userB int) ([]models.Message, error)
}

// recordKey identifies a message record for de-duplication. The id breaks
// ties between distinct records persisted at the same timestamp.
type recordKey struct {
	senderID   int
	receiverID int
	ts         int64
	id         int
}

func keyOf(msg models.Message) recordKey {
	return recordKey{
		senderID:   msg.SenderID,
		receiverID: msg.ReceiverID,
		ts:         msg.CreatedAt.UnixNano(),
		id:         msg.ID,
	}
}

// Reconciler merges a one-shot history fetch with live pushes into a single
// ordered, de-duplicated view of the selected conversation.
type Reconciler struct {
	selfID int
	fetch  Fetcher

	mu     sync.Mutex
	state  State
	peerID int
	epoch  uint64
	view   []models.Message
	seen   map[recordKey]struct{}
}

// NewReconciler builds a reconciler for the given local user.
func NewReconciler(selfID int, fetch Fetcher) *Reconciler {
	return &Reconciler{
		selfID: selfID,
		fetch:  fetch,
		seen:   make(map[recordKey]struct{}),
	}
}

// Select switches to the conversation with the given peer. The previous
// view is discarded immediately; the returned view is the fetched history
// merged with any pushes applied while the fetch was in flight. A fetch
// that resolves after a newer Select or a Deselect returns
// ErrSelectionChanged and leaves the current view untouched.
func (r *Reconciler) Select(ctx context.Context, peerID int) ([]models.Message, error) {
	r.mu.Lock()
	r.epoch++
	epoch := r.epoch
	r.state = Loading
	r.peerID = peerID
	r.view = nil
	r.seen = make(map[recordKey]struct{})
	r.mu.Unlock()

	fetched, err := r.fetch.Range(ctx, r.selfID, peerID)

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.epoch != epoch {
		return nil, ErrSelectionChanged
	}
	if err != nil {
		r.resetLocked()
		return nil, fmt.Errorf("fetch conversation: %w", err)
	}

	// Records pushed or echoed while loading are merged, not lost: they
	// may have been persisted after the store answered the range query.
	pending := r.view
	merged := make([]models.Message, 0, len(fetched)+len(pending))
	seen := make(map[recordKey]struct{}, len(fetched)+len(pending))
	for _, msg := range fetched {
		key := keyOf(msg)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		merged = append(merged, msg)
	}
	for _, msg := range pending {
		key := keyOf(msg)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		merged = insertOrdered(merged, msg)
	}

	r.view = merged
	r.seen = seen
	r.state = Live
	return snapshot(merged), nil
}

// Deselect discards the current view. A fetch still in flight for the old
// selection will be dropped when it resolves.
func (r *Reconciler) Deselect() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.epoch++
	r.resetLocked()
}

// ApplyPush applies a live-pushed record. It is ignored unless it belongs
// to the selected conversation, and never duplicates a known record.
func (r *Reconciler) ApplyPush(msg models.Message) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state == Unselected {
		return false
	}
	if msg.SenderID != r.peerID || msg.ReceiverID != r.selfID {
		return false
	}
	return r.applyLocked(msg)
}

// ApplyLocalEcho appends the caller's own persisted record immediately
// after a successful send, so the sender sees the message without waiting
// for a fetch. A later fetch reconciles against it by record key.
func (r *Reconciler) ApplyLocalEcho(msg models.Message) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state == Unselected {
		return false
	}
	if msg.SenderID != r.selfID || msg.ReceiverID != r.peerID {
		return false
	}
	return r.applyLocked(msg)
}

// View returns a snapshot of the current conversation view.
func (r *Reconciler) View() []models.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return snapshot(r.view)
}

// State returns the selection state.
func (r *Reconciler) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Peer returns the selected peer, zero when unselected.
func (r *Reconciler) Peer() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.peerID
}

func (r *Reconciler) applyLocked(msg models.Message) bool {
	key := keyOf(msg)
	if _, dup := r.seen[key]; dup {
		return false
	}
	r.seen[key] = struct{}{}
	r.view = insertOrdered(r.view, msg)
	return true
}

func (r *Reconciler) resetLocked() {
	r.state = Unselected
	r.peerID = 0
	r.view = nil
	r.seen = make(map[recordKey]struct{})
}

func insertOrdered(view []models.Message, msg models.Message) []models.Message {
	i := sort.Search(len(view), func(i int) bool { return chronoLess(msg, view[i]) })
	view = append(view, models.Message{})
	copy(view[i+1:], view[i:])
	view[i] = msg
	return view
}

func chronoLess(a, b models.Message) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}

func snapshot(view []models.Message) []models.Message {
	out := make([]models.Message, len(view))
	copy(out, view)
	return out
}
