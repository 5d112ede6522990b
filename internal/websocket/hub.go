package websocket

import (
	"errors"
	"sync"

	"github.com/dafibh/finbot/finbot-backend/internal/domain"
	"github.com/rs/zerolog/log"
)

var (
	// ErrSubscriberClosed is returned when delivering to a closed subscriber
	ErrSubscriberClosed = errors.New("subscriber is closed")
	// ErrSubscriberSlow is returned when a subscriber's outbound buffer is full
	ErrSubscriberSlow = errors.New("subscriber is too slow")
)

// Subscriber receives one user's ledger feed. Deliver must not block.
type Subscriber interface {
	ID() string
	UserID() string
	Deliver(data []byte) error
	Close() error
}

// HistorySource supplies the recent transactions sent to a new subscriber.
// n <= 0 asks for the source's default length.
type HistorySource interface {
	History(userID string, n int) []*domain.Transaction
}

// EventPublisher defines the interface for publishing ledger events
type EventPublisher interface {
	// Publish sends an event to every subscriber of the user
	Publish(userID string, event Event)
}

// NoOpPublisher is a publisher that does nothing (for testing or when the feed is disabled)
type NoOpPublisher struct{}

// Publish does nothing
func (n *NoOpPublisher) Publish(userID string, event Event) {}

var _ EventPublisher = (*Hub)(nil)

// feed is the state kept per user while anyone is subscribed
type feed struct {
	subscribers map[string]Subscriber
	seq         uint64
}

// Hub fans ledger events out to the subscribers of each user. Events of one
// user are delivered in publish order, after that subscriber's snapshot.
type Hub struct {
	history HistorySource
	feeds   map[string]*feed
	mu      sync.Mutex
}

// NewHub creates a new Hub. A nil history sends empty snapshots.
func NewHub(history HistorySource) *Hub {
	return &Hub{
		history: history,
		feeds:   make(map[string]*feed),
	}
}

// SetHistory sets the source of subscribe snapshots. The ledger service
// publishes into the hub, so it is attached after both are built.
func (h *Hub) SetHistory(history HistorySource) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.history = history
}

// Subscribe adds a subscriber and sends it a ledger.snapshot of the user's
// recent history. A transaction committed while subscribing may appear both
// in the snapshot and as a following transaction.created event.
func (h *Hub) Subscribe(sub Subscriber) error {
	userID := sub.UserID()

	h.mu.Lock()
	defer h.mu.Unlock()

	f := h.feeds[userID]
	if f == nil {
		f = &feed{subscribers: make(map[string]Subscriber)}
	}

	var transactions []*domain.Transaction
	if h.history != nil {
		transactions = h.history.History(userID, 0)
	}
	snapshot := LedgerSnapshot(transactions)
	snapshot.Seq = f.seq

	data, err := snapshot.ToJSON()
	if err != nil {
		return err
	}
	if err := sub.Deliver(data); err != nil {
		return err
	}

	f.subscribers[sub.ID()] = sub
	h.feeds[userID] = f

	log.Debug().
		Str("user_id", userID).
		Str("subscriber_id", sub.ID()).
		Int("snapshot_size", len(transactions)).
		Msg("Ledger feed subscribed")
	return nil
}

// Unsubscribe removes a subscriber. The user's feed state is dropped with its
// last subscriber.
func (h *Hub) Unsubscribe(sub Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(sub.UserID(), sub.ID())
}

func (h *Hub) removeLocked(userID, subscriberID string) bool {
	f, ok := h.feeds[userID]
	if !ok {
		return false
	}
	if _, ok := f.subscribers[subscriberID]; !ok {
		return false
	}
	delete(f.subscribers, subscriberID)
	if len(f.subscribers) == 0 {
		delete(h.feeds, userID)
	}
	log.Debug().Str("user_id", userID).Str("subscriber_id", subscriberID).Msg("Ledger feed unsubscribed")
	return true
}

// Publish stamps the next sequence number on the event and delivers it to the
// user's subscribers. Subscribers that cannot keep up are dropped and closed.
func (h *Hub) Publish(userID string, event Event) {
	h.mu.Lock()
	f, ok := h.feeds[userID]
	if !ok {
		h.mu.Unlock()
		return
	}

	f.seq++
	event.Seq = f.seq
	data, err := event.ToJSON()
	if err != nil {
		h.mu.Unlock()
		log.Error().Err(err).Str("user_id", userID).Str("event_type", event.Type).Msg("Failed to serialize event")
		return
	}

	var dropped []Subscriber
	for id, sub := range f.subscribers {
		if err := sub.Deliver(data); err != nil {
			log.Warn().Err(err).Str("user_id", userID).Str("subscriber_id", id).Msg("Dropping ledger feed subscriber")
			dropped = append(dropped, sub)
		}
	}
	for _, sub := range dropped {
		h.removeLocked(userID, sub.ID())
	}
	delivered := len(f.subscribers)
	h.mu.Unlock()

	for _, sub := range dropped {
		_ = sub.Close()
	}

	log.Debug().
		Str("user_id", userID).
		Str("event_type", event.Type).
		Uint64("seq", event.Seq).
		Int("subscribers", delivered).
		Msg("Published ledger event")
}

// SubscriberCount returns the number of open subscriptions of one user
func (h *Hub) SubscriberCount(userID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	if f, ok := h.feeds[userID]; ok {
		return len(f.subscribers)
	}
	return 0
}

// TotalSubscribers returns the number of open subscriptions across all users
func (h *Hub) TotalSubscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	total := 0
	for _, f := range h.feeds {
		total += len(f.subscribers)
	}
	return total
}
