package pubsub

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/riskibarqy/matchday/internal/domain/realtime"
	"github.com/riskibarqy/matchday/internal/platform/logging"
)

const DefaultBufferSize = 64

var (
	// ErrSubscriberLagged closes a subscription whose buffer filled up. The
	// observer must re-read authoritative state before subscribing again.
	ErrSubscriberLagged = errors.New("subscriber fell behind")
	ErrUnsubscribed     = errors.New("subscription closed")
	ErrHubClosed        = errors.New("hub closed")
)

// Hub keeps per-match subscriber sets. The registry lock only guards topic
// lookup; fan-out holds the topic's own lock and never waits on a subscriber.
type Hub struct {
	mu         sync.RWMutex
	topics     map[string]*topic
	closed     bool
	bufferSize int
	nextID     atomic.Uint64
	now        func() time.Time
	logger     *logging.Logger
}

type topic struct {
	mu          sync.Mutex
	seq         uint64
	subscribers map[uint64]*Subscription
}

// Subscription is one observer's ordered notification stream for a match.
type Subscription struct {
	ID      uint64
	MatchID string

	hub  *Hub
	ch   chan realtime.Notification
	once sync.Once
	err  atomic.Pointer[error]
}

func NewHub(bufferSize int, logger *logging.Logger) *Hub {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &Hub{
		topics:     make(map[string]*topic),
		bufferSize: bufferSize,
		now:        time.Now,
		logger:     logger,
	}
}

func (h *Hub) Subscribe(matchID string) (*Subscription, error) {
	sub := &Subscription{
		ID:      h.nextID.Add(1),
		MatchID: matchID,
		hub:     h,
		ch:      make(chan realtime.Notification, h.bufferSize),
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil, ErrHubClosed
	}
	t, ok := h.topics[matchID]
	if !ok {
		t = &topic{subscribers: make(map[uint64]*Subscription)}
		h.topics[matchID] = t
	}
	// Registering under the registry lock keeps a concurrent Unsubscribe from
	// dropping the topic between lookup and insert.
	t.mu.Lock()
	t.subscribers[sub.ID] = sub
	t.mu.Unlock()
	h.mu.Unlock()

	return sub, nil
}

func (h *Hub) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}
	h.remove(sub, ErrUnsubscribed)
}

// Publish stamps n with the match's next sequence number and offers it to
// every subscriber. A subscriber with a full buffer is evicted.
func (h *Hub) Publish(ctx context.Context, n realtime.Notification) {
	h.mu.RLock()
	t, ok := h.topics[n.MatchID]
	h.mu.RUnlock()
	if !ok {
		return
	}
	if n.OccurredAt.IsZero() {
		n.OccurredAt = h.now().UTC()
	}

	var lagged []*Subscription
	t.mu.Lock()
	t.seq++
	n.Sequence = t.seq
	for _, sub := range t.subscribers {
		select {
		case sub.ch <- n:
		default:
			lagged = append(lagged, sub)
		}
	}
	t.mu.Unlock()

	for _, sub := range lagged {
		h.logger.WarnContext(ctx, "evicting lagging subscriber",
			"match_id", n.MatchID,
			"subscription_id", sub.ID,
			"sequence", n.Sequence,
		)
		h.remove(sub, ErrSubscriberLagged)
	}
}

// SubscriberCount returns the number of live subscriptions for a match.
func (h *Hub) SubscriberCount(matchID string) int {
	h.mu.RLock()
	t, ok := h.topics[matchID]
	h.mu.RUnlock()
	if !ok {
		return 0
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.subscribers)
}

// Close ends every subscription. Later Subscribe calls fail with ErrHubClosed.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	topics := h.topics
	h.topics = make(map[string]*topic)
	h.mu.Unlock()

	for _, t := range topics {
		t.mu.Lock()
		subs := make([]*Subscription, 0, len(t.subscribers))
		for _, sub := range t.subscribers {
			subs = append(subs, sub)
		}
		t.subscribers = make(map[uint64]*Subscription)
		t.mu.Unlock()

		for _, sub := range subs {
			sub.close(ErrHubClosed)
		}
	}
}

func (h *Hub) remove(sub *Subscription, reason error) {
	h.mu.Lock()
	if t, ok := h.topics[sub.MatchID]; ok {
		t.mu.Lock()
		delete(t.subscribers, sub.ID)
		empty := len(t.subscribers) == 0
		t.mu.Unlock()
		if empty {
			delete(h.topics, sub.MatchID)
		}
	}
	h.mu.Unlock()

	sub.close(reason)
}

// C delivers notifications in publish order. It is closed when the
// subscription ends; Err then reports why.
func (s *Subscription) C() <-chan realtime.Notification {
	return s.ch
}

func (s *Subscription) Err() error {
	if p := s.err.Load(); p != nil {
		return *p
	}
	return nil
}

func (s *Subscription) close(reason error) {
	s.once.Do(func() {
		s.err.Store(&reason)
		close(s.ch)
	})
}
