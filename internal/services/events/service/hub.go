package service

import (
	"sync"
	"sync/atomic"

	"allocvault/internal/platform/logger"
	"allocvault/internal/services/events/domain"
)

// Hub is the in-process fan-out for committed events
// a subscriber that falls behind by more than its buffer loses events rather than stalling writers
type Hub struct {
	mu     sync.RWMutex
	subs   map[uint64]chan domain.Event
	nextID uint64
	buffer int
	drops  atomic.Uint64
}

// NewHub builds a Hub; buffer below 1 becomes 64
func NewHub(buffer int) *Hub {
	if buffer < 1 {
		buffer = 64
	}
	return &Hub{subs: map[uint64]chan domain.Event{}, buffer: buffer}
}

// Subscribe registers a channel; cancel is idempotent and closes it
func (h *Hub) Subscribe() (<-chan domain.Event, func()) {
	h.mu.Lock()
	h.nextID++
	id := h.nextID
	ch := make(chan domain.Event, h.buffer)
	h.subs[id] = ch
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
			close(ch)
		})
	}
}

// Publish delivers evs to every subscriber without blocking
func (h *Hub) Publish(evs ...domain.Event) {
	if len(evs) == 0 {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for id, ch := range h.subs {
		for _, ev := range evs {
			select {
			case ch <- ev:
			default:
				h.drops.Add(1)
				logger.Named("events-hub").Warn().Uint64("subscriber", id).Int64("seq", ev.Seq).Msg("subscriber full; event dropped")
			}
		}
	}
}

// Dropped reports how many deliveries were skipped for full subscribers
func (h *Hub) Dropped() uint64 { return h.drops.Load() }

// Subscribers reports the live subscriber count
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
