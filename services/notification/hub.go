package notification

import (
	"context"
	"strings"
	"sync"

	"velora/utils"

	"github.com/go-redis/redis/v8"
)

// notifyChannelPrefix is the Redis pub/sub channel prefix; one channel per
// recipient so instances only wake for users they host connections for.
const notifyChannelPrefix = "notify:"

// subscriberBuffer is the per-connection queue depth. A consumer that falls
// this far behind is disconnected rather than allowed to block the hub.
const subscriberBuffer = 16

// subscriber.mu serializes queueing against close: the channel must never
// be closed while a publisher is mid-send on it.
type subscriber struct {
	mu     sync.Mutex
	ch     chan []byte
	closed bool
}

// send queues the payload. Reports false when the buffer is full; a send
// after close is a silent no-op.
func (s *subscriber) send(payload []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return true
	}
	select {
	case s.ch <- payload:
		return true
	default:
		return false
	}
}

func (s *subscriber) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.ch)
	}
}

// Hub fans notification payloads out to live SSE connections, keyed by
// user ID. Delivery is best-effort: the persisted notification record is
// the source of truth, the stream is only a wake-up.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]map[*subscriber]struct{}
}

// NewHub creates an empty fan-out hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[*subscriber]struct{})}
}

// Subscribe registers a connection for the user and returns its receive
// channel plus a cancel function. The channel is closed on cancel or when
// the consumer is dropped for falling behind.
func (h *Hub) Subscribe(userID string) (<-chan []byte, func()) {
	sub := &subscriber{ch: make(chan []byte, subscriberBuffer)}

	h.mu.Lock()
	if h.subs[userID] == nil {
		h.subs[userID] = make(map[*subscriber]struct{})
	}
	h.subs[userID][sub] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.remove(userID, sub)
		sub.close()
	}
	return sub.ch, cancel
}

// Publish delivers a payload to every live connection of the user. Slow
// consumers are dropped and their channels closed.
func (h *Hub) Publish(userID string, payload []byte) {
	h.mu.RLock()
	set := h.subs[userID]
	targets := make([]*subscriber, 0, len(set))
	for sub := range set {
		targets = append(targets, sub)
	}
	h.mu.RUnlock()

	for _, sub := range targets {
		if !sub.send(payload) {
			h.remove(userID, sub)
			sub.close()
		}
	}
}

// ConnectionCount reports how many live connections the user has.
func (h *Hub) ConnectionCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[userID])
}

func (h *Hub) remove(userID string, sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set := h.subs[userID]
	if set == nil {
		return
	}
	delete(set, sub)
	if len(set) == 0 {
		delete(h.subs, userID)
	}
}

// RunBridge consumes the Redis pub/sub notification channels and replays
// payloads into the local hub, so SSE delivery works across instances.
// Blocks until ctx is cancelled.
func (h *Hub) RunBridge(ctx context.Context, client *redis.Client) {
	pubsub := client.PSubscribe(ctx, notifyChannelPrefix+"*")
	defer pubsub.Close()

	logger := utils.GetLogger()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-pubsub.Channel():
			if !ok {
				logger.Warn("notification bridge channel closed")
				return
			}
			userID := strings.TrimPrefix(msg.Channel, notifyChannelPrefix)
			h.Publish(userID, []byte(msg.Payload))
		}
	}
}
