// Package stream fans decoded market data out to in-process and websocket
// consumers.
package stream

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"ib-trader/internal/models"
)

// AllRequests subscribes to events of every request id.
const AllRequests int64 = -1

// HubConfig holds configuration for the Stream Hub.
type HubConfig struct {
	// BufferSize is the size of the internal event channel buffer.
	BufferSize int
	// SubscriberBufferSize is the size of each subscriber's channel buffer.
	SubscriberBufferSize int
	// SlowConsumerDropThreshold is the number of drops after which a subscriber is
	// reported as slow.
	SlowConsumerDropThreshold int
}

// DefaultHubConfig returns the default hub configuration.
func DefaultHubConfig() HubConfig {
	return HubConfig{
		BufferSize:                1000,
		SubscriberBufferSize:      100,
		SlowConsumerDropThreshold: 10,
	}
}

// Hub distributes tick events to subscribers keyed by request id. A single
// broadcast goroutine drains the inbound buffer; sends to subscribers never block.
type Hub struct {
	config HubConfig
	logger zerolog.Logger

	mu          sync.RWMutex
	subscribers map[int64][]*Subscriber
	eventChan   chan models.TickEvent
	done        chan struct{}
	started     bool

	consumers   []Consumer
	consumersMu sync.RWMutex

	// Metrics
	eventsReceived  uint64
	eventsBroadcast uint64
	eventsDropped   uint64
	metricsMu       sync.RWMutex
}

// Subscriber represents a channel subscriber with metadata.
type Subscriber struct {
	ID           string
	ReqID        int64
	Channel      chan models.TickEvent
	DroppedCount int
	CreatedAt    time.Time
}

// NewHub creates a new stream hub with default configuration.
func NewHub(logger zerolog.Logger) *Hub {
	return NewHubWithConfig(DefaultHubConfig(), logger)
}

// NewHubWithConfig creates a new stream hub with custom configuration.
func NewHubWithConfig(config HubConfig, logger zerolog.Logger) *Hub {
	return &Hub{
		config:      config,
		logger:      logger.With().Str("component", "hub").Logger(),
		subscribers: make(map[int64][]*Subscriber),
		eventChan:   make(chan models.TickEvent, config.BufferSize),
		done:        make(chan struct{}),
	}
}

// Start begins the hub's distribution loop.
func (h *Hub) Start(ctx context.Context) {
	h.mu.Lock()
	if h.started {
		h.mu.Unlock()
		return
	}
	h.started = true
	h.done = make(chan struct{})
	done := h.done
	h.mu.Unlock()

	go h.broadcastLoop(ctx, done)
}

func (h *Hub) broadcastLoop(ctx context.Context, done chan struct{}) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-done:
			return
		case ev := <-h.eventChan:
			h.metricsMu.Lock()
			h.eventsReceived++
			h.metricsMu.Unlock()

			h.broadcast(ev)
			h.notifyConsumers(ev)
		}
	}
}

// Stop stops the hub and closes all subscriber channels.
func (h *Hub) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.started {
		return
	}

	close(h.done)
	h.started = false

	for reqID, subs := range h.subscribers {
		for _, sub := range subs {
			close(sub.Channel)
		}
		delete(h.subscribers, reqID)
	}
}

// Subscribe adds a subscriber for reqID (or AllRequests).
func (h *Hub) Subscribe(reqID int64) <-chan models.TickEvent {
	return h.SubscribeWithID(reqID, "")
}

// SubscribeWithID adds a named subscriber for reqID.
func (h *Hub) SubscribeWithID(reqID int64, id string) <-chan models.TickEvent {
	ch := make(chan models.TickEvent, h.config.SubscriberBufferSize)
	sub := &Subscriber{
		ID:        id,
		ReqID:     reqID,
		Channel:   ch,
		CreatedAt: time.Now(),
	}

	h.mu.Lock()
	h.subscribers[reqID] = append(h.subscribers[reqID], sub)
	h.mu.Unlock()

	return ch
}

// Unsubscribe removes a subscriber channel and closes it.
func (h *Hub) Unsubscribe(reqID int64, ch <-chan models.TickEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs := h.subscribers[reqID]
	for i, sub := range subs {
		if sub.Channel == ch {
			close(sub.Channel)
			h.subscribers[reqID] = append(subs[:i], subs[i+1:]...)
			break
		}
	}

	if len(h.subscribers[reqID]) == 0 {
		delete(h.subscribers, reqID)
	}
}

// Publish queues an event for distribution. When the buffer is full the event is
// dropped.
func (h *Hub) Publish(ev models.TickEvent) {
	select {
	case h.eventChan <- ev:
	default:
		h.metricsMu.Lock()
		h.eventsDropped++
		h.metricsMu.Unlock()
	}
}

// broadcast sends an event to the subscribers of its request id and to the
// AllRequests subscribers.
func (h *Hub) broadcast(ev models.TickEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	h.sendTo(h.subscribers[ev.ReqID], ev)
	if ev.ReqID != AllRequests {
		h.sendTo(h.subscribers[AllRequests], ev)
	}
}

// sendTo skips subscribers whose buffer is full. h.mu must be held.
func (h *Hub) sendTo(subs []*Subscriber, ev models.TickEvent) {
	for _, sub := range subs {
		select {
		case sub.Channel <- ev:
			h.metricsMu.Lock()
			h.eventsBroadcast++
			h.metricsMu.Unlock()
		default:
			sub.DroppedCount++
			h.metricsMu.Lock()
			h.eventsDropped++
			h.metricsMu.Unlock()
			if sub.DroppedCount == h.config.SlowConsumerDropThreshold {
				h.logger.Warn().
					Str("subscriber", sub.ID).
					Int64("req_id", sub.ReqID).
					Int("dropped", sub.DroppedCount).
					Msg("Slow consumer")
			}
		}
	}
}

// GetSubscriberCount returns the number of subscribers for reqID.
func (h *Hub) GetSubscriberCount(reqID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[reqID])
}

// GetTotalSubscriberCount returns the number of subscribers across all ids.
func (h *Hub) GetTotalSubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	count := 0
	for _, subs := range h.subscribers {
		count += len(subs)
	}
	return count
}

// GetMetrics returns hub metrics.
func (h *Hub) GetMetrics() HubMetrics {
	h.mu.RLock()
	requests := len(h.subscribers)
	h.mu.RUnlock()

	h.metricsMu.RLock()
	defer h.metricsMu.RUnlock()

	return HubMetrics{
		EventsReceived:  h.eventsReceived,
		EventsBroadcast: h.eventsBroadcast,
		EventsDropped:   h.eventsDropped,
		Subscribers:     h.GetTotalSubscriberCount(),
		Requests:        requests,
	}
}

// HubMetrics contains hub performance metrics.
type HubMetrics struct {
	EventsReceived  uint64
	EventsBroadcast uint64
	EventsDropped   uint64
	Subscribers     int
	Requests        int
}

// IsStarted returns whether the hub is running.
func (h *Hub) IsStarted() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.started
}

// Consumer processes events outside the subscriber channels.
type Consumer interface {
	OnEvent(ev models.TickEvent)
	// ReqIDs returns the request ids this consumer wants. Empty means all.
	ReqIDs() []int64
}

// RegisterConsumer adds a consumer to receive events.
func (h *Hub) RegisterConsumer(consumer Consumer) {
	h.consumersMu.Lock()
	h.consumers = append(h.consumers, consumer)
	h.consumersMu.Unlock()
}

// UnregisterConsumer removes a consumer.
func (h *Hub) UnregisterConsumer(consumer Consumer) {
	h.consumersMu.Lock()
	defer h.consumersMu.Unlock()

	for i, c := range h.consumers {
		if c == consumer {
			h.consumers = append(h.consumers[:i], h.consumers[i+1:]...)
			break
		}
	}
}

// notifyConsumers calls each interested consumer in its own goroutine.
func (h *Hub) notifyConsumers(ev models.TickEvent) {
	h.consumersMu.RLock()
	consumers := make([]Consumer, len(h.consumers))
	copy(consumers, h.consumers)
	h.consumersMu.RUnlock()

	for _, consumer := range consumers {
		ids := consumer.ReqIDs()
		if len(ids) == 0 || containsReqID(ids, ev.ReqID) {
			go consumer.OnEvent(ev)
		}
	}
}

func containsReqID(ids []int64, reqID int64) bool {
	for _, id := range ids {
		if id == reqID {
			return true
		}
	}
	return false
}

// ConsumerFunc adapts a function to Consumer.
type ConsumerFunc struct {
	reqIDs []int64
	fn     func(models.TickEvent)
}

// NewConsumerFunc creates a new ConsumerFunc.
func NewConsumerFunc(reqIDs []int64, fn func(models.TickEvent)) *ConsumerFunc {
	return &ConsumerFunc{reqIDs: reqIDs, fn: fn}
}

// OnEvent implements Consumer.
func (c *ConsumerFunc) OnEvent(ev models.TickEvent) {
	if c.fn != nil {
		c.fn(ev)
	}
}

// ReqIDs implements Consumer.
func (c *ConsumerFunc) ReqIDs() []int64 {
	return c.reqIDs
}
