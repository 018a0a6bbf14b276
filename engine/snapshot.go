package engine

import (
	"slices"
	"sync"

	"github.com/google/uuid"
)

// Snapshot is an immutable view of the pool's transport state.
type Snapshot struct {
	// Generation identifies the lane set. It changes whenever lanes are
	// built, rebuilt or torn down.
	Generation uuid.UUID
	// Playing holds one entry per lane, in lane order.
	Playing    []bool
	UseSpeaker bool
}

// Clone returns a deep copy.
func (s Snapshot) Clone() Snapshot {
	s.Playing = slices.Clone(s.Playing)
	return s
}

// Equal reports whether s and o describe the same state.
func (s Snapshot) Equal(o Snapshot) bool {
	return s.Generation == o.Generation && s.UseSpeaker == o.UseSpeaker && slices.Equal(s.Playing, o.Playing)
}

// hub fans snapshots out to subscribers. Each subscriber channel holds at
// most one snapshot; a newer one replaces an unread older one.
type hub struct {
	mu     sync.Mutex
	next   int
	subs   map[int]chan Snapshot
	closed bool
}

func newHub() *hub {
	return &hub{subs: make(map[int]chan Snapshot)}
}

func (h *hub) subscribe(current Snapshot) (<-chan Snapshot, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Snapshot, 1)
	if h.closed {
		close(ch)
		return ch, func() {}
	}

	ch <- current.Clone()

	id := h.next
	h.next++
	h.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()

			if c, ok := h.subs[id]; ok {
				delete(h.subs, id)
				close(c)
			}
		})
	}

	return ch, cancel
}

func (h *hub) publish(s Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, ch := range h.subs {
		select {
		case <-ch:
		default:
		}

		ch <- s.Clone()
	}
}

func (h *hub) close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, ch := range h.subs {
		delete(h.subs, id)
		close(ch)
	}

	h.closed = true
}
