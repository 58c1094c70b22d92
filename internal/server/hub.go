package server

import (
	"errors"
	"sync"
)

// DefaultHubCapacity bounds how many undelivered records the hub retains
// before evicting the oldest ones out from under a slow subscriber.
const DefaultHubCapacity = 100

var (
	// ErrLagged reports that a receiver fell behind and the hub evicted
	// records it had not read yet. The receiver is still usable; the next
	// Recv resumes from the oldest retained record.
	ErrLagged = errors.New("hub: receiver lagged, oldest records dropped")

	// ErrHubClosed reports that the hub was torn down. Terminal for every
	// receiver.
	ErrHubClosed = errors.New("hub: closed")

	// ErrReceiverClosed reports that this receiver was closed, usually by
	// its own session during shutdown.
	ErrReceiverClosed = errors.New("hub: receiver closed")
)

// Hub is a bounded broadcast ring shared by every session. Each Receiver
// observes all records published after its Subscribe call, in publish
// order. Publishing never blocks: a receiver that trails by more than the
// ring capacity has its cursor advanced past the evicted records and its
// next Recv reports ErrLagged instead.
//
// The hub is safe for concurrent Publish, Subscribe, and Recv without any
// external locking.
type Hub struct {
	mu       sync.Mutex
	cond     *sync.Cond
	ring     []string
	capacity uint64
	head     uint64 // sequence number of the next publish
	closed   bool
}

// NewHub creates a hub retaining up to capacity records. Non-positive
// capacities fall back to DefaultHubCapacity.
func NewHub(capacity int) *Hub {
	if capacity <= 0 {
		capacity = DefaultHubCapacity
	}
	h := &Hub{
		ring:     make([]string, capacity),
		capacity: uint64(capacity),
	}
	h.cond = sync.NewCond(&h.mu)
	return h
}

// Publish appends one encoded record to the ring. It never blocks and
// succeeds even when nobody is subscribed.
func (h *Hub) Publish(encoded string) {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.ring[h.head%h.capacity] = encoded
	h.head++
	h.mu.Unlock()
	h.cond.Broadcast()
}

// Subscribe returns a receiver that observes only records published after
// this call; there is no replay of history.
func (h *Hub) Subscribe() *Receiver {
	h.mu.Lock()
	defer h.mu.Unlock()
	return &Receiver{hub: h, cursor: h.head}
}

// Close tears the hub down. Every receiver's next Recv returns
// ErrHubClosed. Publishing after Close is a no-op.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	h.mu.Unlock()
	h.cond.Broadcast()
}

// Receiver is one subscription cursor into the hub's ring.
type Receiver struct {
	hub    *Hub
	cursor uint64
	closed bool
}

// Recv blocks until a record is available and returns it. It returns
// ErrLagged when the ring evicted unread records (retry to keep reading),
// ErrHubClosed after the hub is closed, and ErrReceiverClosed after Close
// on this receiver.
func (r *Receiver) Recv() (string, error) {
	h := r.hub
	h.mu.Lock()
	defer h.mu.Unlock()
	for {
		if r.closed {
			return "", ErrReceiverClosed
		}
		if h.closed {
			return "", ErrHubClosed
		}
		var oldest uint64
		if h.head > h.capacity {
			oldest = h.head - h.capacity
		}
		if r.cursor < oldest {
			r.cursor = oldest
			return "", ErrLagged
		}
		if r.cursor < h.head {
			record := h.ring[r.cursor%h.capacity]
			r.cursor++
			return record, nil
		}
		h.cond.Wait()
	}
}

// Close releases the subscription and promptly wakes any Recv blocked on
// it. Safe to call more than once and from a different goroutine than the
// one receiving.
func (r *Receiver) Close() {
	h := r.hub
	h.mu.Lock()
	r.closed = true
	h.mu.Unlock()
	h.cond.Broadcast()
}
