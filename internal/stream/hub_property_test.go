package stream

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ib-trader/internal/models"
)

func priceEvent(reqID int64, price float64) models.TickEvent {
	return models.TickEvent{
		ReqID:     reqID,
		Kind:      models.TickKindPrice,
		TickType:  models.TickLast,
		Price:     price,
		Size:      models.UnsetDecimal,
		Timestamp: time.Now(),
	}
}

// Property: every subscriber of a request id receives the events published for
// it when it keeps up.
func TestProperty_AllSubscribersReceiveEvents(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 20
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("fast subscribers receive all events", prop.ForAll(
		func(subscriberCount int, eventCount int, reqID int64, basePrice float64) bool {
			hub := NewHubWithConfig(HubConfig{BufferSize: 1000, SubscriberBufferSize: 100}, zerolog.Nop())

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			hub.Start(ctx)
			defer hub.Stop()

			var wg sync.WaitGroup
			receivedCounts := make([]int64, subscriberCount)

			channels := make([]<-chan models.TickEvent, subscriberCount)
			for i := 0; i < subscriberCount; i++ {
				channels[i] = hub.Subscribe(reqID)
			}

			for i := 0; i < subscriberCount; i++ {
				wg.Add(1)
				go func(idx int, ch <-chan models.TickEvent) {
					defer wg.Done()
					timeout := time.After(5 * time.Second)
					for {
						select {
						case _, ok := <-ch:
							if !ok {
								return
							}
							if atomic.AddInt64(&receivedCounts[idx], 1) >= int64(eventCount) {
								return
							}
						case <-timeout:
							return
						}
					}
				}(i, channels[i])
			}

			for i := 0; i < eventCount; i++ {
				hub.Publish(priceEvent(reqID, basePrice+float64(i)*0.05))
			}

			wg.Wait()

			for i := 0; i < subscriberCount; i++ {
				if atomic.LoadInt64(&receivedCounts[i]) != int64(eventCount) {
					return false
				}
			}
			return true
		},
		gen.IntRange(1, 5),
		gen.IntRange(1, 50),
		gen.Int64Range(1, 1000),
		gen.Float64Range(1.0, 5000.0),
	))

	properties.TestingRun(t)
}

// Property: a subscriber that never reads does not stop others from receiving.
func TestProperty_SlowConsumersDoNotBlockOthers(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 20
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("slow consumers do not block fast consumers", prop.ForAll(
		func(reqID int64, basePrice float64) bool {
			hub := NewHubWithConfig(HubConfig{
				BufferSize:                100,
				SubscriberBufferSize:      5,
				SlowConsumerDropThreshold: 3,
			}, zerolog.Nop())

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			hub.Start(ctx)
			defer hub.Stop()

			fastCh := hub.Subscribe(reqID)
			_ = hub.Subscribe(reqID)

			var fastReceived int64
			var wg sync.WaitGroup
			wg.Add(1)
			go func() {
				defer wg.Done()
				timeout := time.After(2 * time.Second)
				for {
					select {
					case _, ok := <-fastCh:
						if !ok {
							return
						}
						if atomic.AddInt64(&fastReceived, 1) >= 10 {
							return
						}
					case <-timeout:
						return
					}
				}
			}()

			for i := 0; i < 20; i++ {
				hub.Publish(priceEvent(reqID, basePrice+float64(i)*0.05))
			}

			wg.Wait()
			return atomic.LoadInt64(&fastReceived) > 0
		},
		gen.Int64Range(1, 1000),
		gen.Float64Range(1.0, 5000.0),
	))

	properties.TestingRun(t)
}

// Property: subscribers only see events for their own request id.
func TestProperty_SubscribersReceiveOwnRequestOnly(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 20
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("subscribers only receive their request id", prop.ForAll(
		func(subscribed, published int64) bool {
			hub := NewHub(zerolog.Nop())
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			hub.Start(ctx)
			defer hub.Stop()

			ch := hub.Subscribe(subscribed)
			hub.Publish(priceEvent(published, 100))

			select {
			case ev := <-ch:
				return ev.ReqID == subscribed
			case <-time.After(200 * time.Millisecond):
				return subscribed != published
			}
		},
		gen.Int64Range(1, 4),
		gen.Int64Range(1, 4),
	))

	properties.TestingRun(t)
}

func TestHubAllRequestsSubscriber(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hub.Start(ctx)
	defer hub.Stop()

	all := hub.Subscribe(AllRequests)
	hub.Publish(priceEvent(7, 10))
	hub.Publish(priceEvent(8, 11))

	for _, want := range []int64{7, 8} {
		select {
		case ev := <-all:
			assert.Equal(t, want, ev.ReqID)
		case <-time.After(time.Second):
			t.Fatalf("no event for %d", want)
		}
	}
}

func TestHubUnsubscribeClosesChannel(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	ch := hub.Subscribe(3)
	require.Equal(t, 1, hub.GetSubscriberCount(3))

	hub.Unsubscribe(3, ch)
	_, ok := <-ch
	assert.False(t, ok)
	assert.Equal(t, 0, hub.GetTotalSubscriberCount())
}

func TestHubConsumerFilter(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hub.Start(ctx)
	defer hub.Stop()

	got := make(chan int64, 4)
	hub.RegisterConsumer(NewConsumerFunc([]int64{2}, func(ev models.TickEvent) { got <- ev.ReqID }))

	hub.Publish(priceEvent(1, 10))
	hub.Publish(priceEvent(2, 10))

	select {
	case reqID := <-got:
		assert.Equal(t, int64(2), reqID)
	case <-time.After(time.Second):
		t.Fatal("consumer not called")
	}
	require.Eventually(t, func() bool { return hub.GetMetrics().EventsReceived == 2 }, time.Second, 5*time.Millisecond)
	assert.Empty(t, got)
}
