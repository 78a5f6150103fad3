// Package spectate serves a running game to HTTP and websocket spectators.
package spectate

import (
	"encoding/json"
	"sync"

	"github.com/vovakirdan/snakepilot/internal/games/snake"
)

// subscriberBuffer is how many frames a slow subscriber may lag before
// frames are dropped for it.
const subscriberBuffer = 16

// Frame is one published game state.
type Frame struct {
	Provider string         `json:"provider"`
	Snapshot snake.Snapshot `json:"snapshot"`
	Stats    snake.Stats    `json:"stats"`
}

// Hub fans frames out from the game loop to spectators. It is the only
// game state shared across goroutines.
type Hub struct {
	mu      sync.RWMutex
	latest  Frame
	encoded []byte
	has     bool
	subs    map[chan []byte]struct{}
	dropped uint64
	failed  uint64
}

// NewHub returns an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[chan []byte]struct{})}
}

// Publish stores f as the latest frame and offers it to every subscriber.
// It never blocks; subscribers with a full buffer miss the frame. A frame
// that cannot be encoded is counted in Failed and the previous one stays
// latest.
func (h *Hub) Publish(f Frame) {
	f.Snapshot.Body = append([]snake.Position(nil), f.Snapshot.Body...)
	data, err := json.Marshal(f)

	h.mu.Lock()
	defer h.mu.Unlock()

	if err != nil {
		h.failed++
		return
	}

	h.latest = f
	h.encoded = data
	h.has = true
	for ch := range h.subs {
		select {
		case ch <- data:
		default:
			h.dropped++
		}
	}
}

// Latest returns the most recent frame.
func (h *Hub) Latest() (Frame, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.latest, h.has
}

// latestEncoded returns the JSON of the most recent frame.
func (h *Hub) latestEncoded() ([]byte, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.encoded, h.has
}

// Subscribe registers a subscriber. The returned cancel function
// unregisters it and closes the channel.
func (h *Hub) Subscribe() (<-chan []byte, func()) {
	ch := make(chan []byte, subscriberBuffer)

	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, ch)
			close(ch)
			h.mu.Unlock()
		})
	}
	return ch, cancel
}

// Subscribers returns the number of connected subscribers.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Dropped returns how many frames were skipped for slow subscribers.
func (h *Hub) Dropped() uint64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.dropped
}

// Failed returns how many frames could not be encoded.
func (h *Hub) Failed() uint64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.failed
}
