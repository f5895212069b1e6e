package stream

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ib-trader/internal/decoder"
	"ib-trader/internal/models"
)

type countingWrapper struct {
	decoder.NopWrapper
	bars int
}

func (w *countingWrapper) RealtimeBar(int64, models.RealTimeBar) { w.bars++ }

func startHub(t *testing.T) *Hub {
	hub := NewHub(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	hub.Start(ctx)
	t.Cleanup(func() {
		hub.Stop()
		cancel()
	})
	return hub
}

func next(t *testing.T, ch <-chan models.TickEvent) models.TickEvent {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(time.Second):
		t.Fatal("no event")
		return models.TickEvent{}
	}
}

func TestTickWrapperPublishesAndForwards(t *testing.T) {
	hub := startHub(t)
	ch := hub.Subscribe(4)
	down := &countingWrapper{}
	w := NewTickWrapper(hub, down)

	w.TickPrice(4, models.TickBid, 101.25, models.TickAttrib{})
	ev := next(t, ch)
	assert.Equal(t, models.TickKindPrice, ev.Kind)
	assert.Equal(t, models.TickBid, ev.TickType)
	assert.Equal(t, 101.25, ev.Price)
	assert.True(t, models.IsUnsetDecimal(ev.Size))

	w.TickByTickBidAsk(4, 1760780000, 101, 101.5, decimal.NewFromInt(3), decimal.NewFromInt(5), models.TickAttribBidAsk{})
	ev = next(t, ch)
	assert.Equal(t, models.TickKindBidAsk, ev.Kind)
	assert.Equal(t, 101.5, ev.AskPrice)
	assert.Equal(t, "5", ev.AskSize.String())
	assert.Equal(t, int64(1760780000), ev.Timestamp.Unix())

	bar := models.RealTimeBar{Time: 1760780005, Open: 1, High: 2, Low: 0.5, Close: 1.5, Volume: decimal.NewFromInt(10)}
	w.RealtimeBar(4, bar)
	ev = next(t, ch)
	assert.Equal(t, models.TickKindRealTime, ev.Kind)
	require.NotNil(t, ev.Bar)
	assert.Equal(t, 1.5, ev.Bar.Close)
	assert.Equal(t, 1, down.bars)
}

func TestNewWSEventOmitsUnsetValues(t *testing.T) {
	ev := NewWSEvent(models.TickEvent{
		ReqID:     1,
		Kind:      models.TickKindSize,
		TickType:  models.TickBidSize,
		Price:     models.UnsetFloat,
		Size:      decimal.NewFromInt(200),
		Timestamp: time.UnixMilli(1760780000123),
	})
	assert.Nil(t, ev.Price)
	assert.Equal(t, "200", ev.Size)
	assert.Equal(t, models.TickBidSize.String(), ev.TickType)
	assert.Equal(t, int64(1760780000123), ev.Time)
}

func TestParseReqIDs(t *testing.T) {
	ids, err := parseReqIDs("")
	require.NoError(t, err)
	assert.Equal(t, []int64{AllRequests}, ids)

	ids, err = parseReqIDs("3, 4,3")
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 4}, ids)

	_, err = parseReqIDs("x")
	assert.Error(t, err)
}

func TestWSBridgeStreamsEvents(t *testing.T) {
	hub := startHub(t)
	bridge := NewWSBridge(hub, zerolog.Nop())
	srv := httptest.NewServer(bridge)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?req=9"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)

	require.Eventually(t, func() bool { return hub.GetSubscriberCount(9) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, bridge.ClientCount())

	hub.Publish(priceEvent(8, 1))
	hub.Publish(priceEvent(9, 42.5))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got WSEvent
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, int64(9), got.ReqID)
	assert.Equal(t, "price", got.Kind)
	require.NotNil(t, got.Price)
	assert.Equal(t, 42.5, *got.Price)

	conn.Close()
	require.Eventually(t, func() bool { return bridge.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 0, hub.GetSubscriberCount(9))
}

func TestWSBridgeRejectsBadQuery(t *testing.T) {
	bridge := NewWSBridge(NewHub(zerolog.Nop()), zerolog.Nop())
	srv := httptest.NewServer(bridge)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?req=abc"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 400, resp.StatusCode)
}
