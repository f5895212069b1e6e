package broker

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ib-trader/internal/decoder"
	"ib-trader/internal/errors"
	"ib-trader/internal/models"
	"ib-trader/internal/wire"
	"ib-trader/pkg/utils"
)

type timeRecorder struct {
	decoder.NopWrapper
	times []int64
}

func (w *timeRecorder) CurrentTime(t int64) { w.times = append(w.times, t) }

func TestClientConnectHandshake(t *testing.T) {
	g := newFakeGateway(t, testServerVersion)
	c := newTestClient(t, g, decoder.NopWrapper{})

	assert.True(t, c.IsConnected())
	assert.Equal(t, testServerVersion, c.ServerVersion())
	assert.Equal(t, "20261018 09:30:00 EST", c.ConnectionTime())

	start := g.waitFor(t, wire.OutStartAPI)
	assert.Equal(t, []string{"2", "7", ""}, start.fields)

	require.NoError(t, c.Disconnect())
	assert.False(t, c.IsConnected())
	require.NoError(t, c.Disconnect())
}

func TestClientConnectTwice(t *testing.T) {
	g := newFakeGateway(t, testServerVersion)
	c := newTestClient(t, g, decoder.NopWrapper{})

	err := c.Connect(context.Background())
	assert.True(t, errors.Is(err, errors.ErrAlreadyConnected))
}

func TestClientRejectsOldServer(t *testing.T) {
	g := newFakeGateway(t, 90)
	c := NewClient(testConfig(g), decoder.NopWrapper{}, zerolog.Nop())

	err := c.Connect(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrUnsupportedVersion))
	assert.False(t, c.IsConnected())
}

func TestClientConnectRefused(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Port = 1
	cfg.ConnectTimeout = 500 * time.Millisecond
	c := NewClient(cfg, decoder.NopWrapper{}, zerolog.Nop())

	err := c.Connect(context.Background())
	assert.True(t, errors.Is(err, errors.ErrConnectionFailed))
}

func TestClientConcurrentConnectDialsOnce(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	accepted := make(chan net.Conn, 4)
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			accepted <- conn
		}
	}()

	cfg := DefaultConfig()
	cfg.Port = ln.Addr().(*net.TCPAddr).Port
	cfg.ConnectTimeout = 2 * time.Second
	c := NewClient(cfg, decoder.NopWrapper{}, zerolog.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	first := make(chan error, 1)
	go func() { first <- c.Connect(ctx) }()

	select {
	case conn := <-accepted:
		defer conn.Close()
	case <-time.After(2 * time.Second):
		t.Fatal("first connect never dialed")
	}

	err = c.Connect(context.Background())
	assert.True(t, errors.Is(err, errors.ErrAlreadyConnected))

	assert.True(t, errors.Is(<-first, errors.ErrHandshakeFailed))
	assert.Empty(t, accepted)
	assert.False(t, c.IsConnected())
}

type closeRecorder struct {
	decoder.NopWrapper
	closed chan struct{}
}

func (w *closeRecorder) ConnectionClosed() {
	select {
	case w.closed <- struct{}{}:
	default:
	}
}

func reconnectingClient(t *testing.T, g *fakeGateway, retry utils.RetryConfig) (*Client, *closeRecorder) {
	t.Helper()
	cfg := testConfig(g)
	cfg.Reconnect = true
	cfg.Retry = retry
	w := &closeRecorder{closed: make(chan struct{}, 1)}
	c := NewClient(cfg, w, zerolog.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, c.Connect(ctx))
	t.Cleanup(func() { c.Disconnect() })
	require.Equal(t, 1, g.waitSession(t))
	g.waitFor(t, wire.OutStartAPI)
	return c, w
}

func waitClosed(t *testing.T, w *closeRecorder) {
	t.Helper()
	select {
	case <-w.closed:
	case <-time.After(2 * time.Second):
		t.Fatal("connection loss not reported")
	}
}

func TestClientReconnectsAfterDrop(t *testing.T) {
	g := newFakeGateway(t, testServerVersion)
	c, w := reconnectingClient(t, g, utils.RetryConfig{
		MaxAttempts: 10, InitialDelay: 10 * time.Millisecond, MaxDelay: 50 * time.Millisecond, BackoffFactor: 2,
	})

	g.drop()
	waitClosed(t, w)

	assert.Equal(t, 2, g.waitSession(t))
	start := g.waitFor(t, wire.OutStartAPI)
	assert.Equal(t, []string{"2", "7", ""}, start.fields)
	assert.Eventually(t, c.IsConnected, 2*time.Second, 10*time.Millisecond)
}

func TestClientDisconnectStopsReconnect(t *testing.T) {
	g := newFakeGateway(t, testServerVersion)
	c, w := reconnectingClient(t, g, utils.RetryConfig{
		MaxAttempts: 100, InitialDelay: 100 * time.Millisecond, MaxDelay: 100 * time.Millisecond, BackoffFactor: 1,
	})

	// Later handshakes offer a version the client rejects, so every attempt fails.
	g.setServerVersion(90)
	g.drop()
	waitClosed(t, w)
	g.waitSession(t)

	require.NoError(t, c.Disconnect())
	time.Sleep(50 * time.Millisecond)
	for len(g.sessions) > 0 {
		<-g.sessions
	}

	assert.Never(t, func() bool { return len(g.sessions) > 0 }, 400*time.Millisecond, 20*time.Millisecond)
	assert.False(t, c.IsConnected())
}

func TestClientSendWhenDisconnected(t *testing.T) {
	c := NewClient(DefaultConfig(), decoder.NopWrapper{}, zerolog.Nop())
	err := c.ReqCurrentTime(context.Background())
	assert.True(t, errors.Is(err, errors.ErrNotConnected))
}

func TestClientNextReqIDIncreases(t *testing.T) {
	c := NewClient(DefaultConfig(), decoder.NopWrapper{}, zerolog.Nop())
	a := c.NextReqID()
	b := c.NextReqID()
	assert.Equal(t, a+1, b)
}

func TestClientCaptureReplay(t *testing.T) {
	g := newFakeGateway(t, testServerVersion)
	g.handle(wire.OutReqCurrentTime, func(in inbound) {
		g.send(wire.InCurrentTime, "1", "1760780000")
	})

	capture := filepath.Join(t.TempDir(), "session.cap")
	cfg := testConfig(g)
	cfg.CapturePath = capture
	sc := NewSyncClient(cfg, decoder.NopWrapper{}, zerolog.Nop())
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, sc.Connect(ctx))

	_, err := sc.CurrentTime(ctx)
	require.NoError(t, err)
	require.NoError(t, sc.Disconnect())

	f, err := os.Open(capture)
	require.NoError(t, err)
	defer f.Close()

	rec := &timeRecorder{}
	n, err := Replay(f, rec, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []int64{1760780000}, rec.times)
}

func TestCaptureAppendsSessions(t *testing.T) {
	g := newFakeGateway(t, testServerVersion)
	var mu sync.Mutex
	stamp := int64(1760780000)
	g.handle(wire.OutReqCurrentTime, func(in inbound) {
		mu.Lock()
		stamp++
		v := stamp
		mu.Unlock()
		g.send(wire.InCurrentTime, "1", strconv.FormatInt(v, 10))
	})

	capture := filepath.Join(t.TempDir(), "session.cap")
	cfg := testConfig(g)
	cfg.CapturePath = capture
	sc := NewSyncClient(cfg, decoder.NopWrapper{}, zerolog.Nop())
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	for i := 0; i < 2; i++ {
		require.NoError(t, sc.Connect(ctx))
		g.waitSession(t)
		_, err := sc.CurrentTime(ctx)
		require.NoError(t, err)
		require.NoError(t, sc.Disconnect())
	}

	f, err := os.Open(capture)
	require.NoError(t, err)
	defer f.Close()

	rec := &timeRecorder{}
	n, err := Replay(f, rec, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []int64{1760780001, 1760780002}, rec.times)
}

func TestReplayBareHandshakeHeader(t *testing.T) {
	var b []byte
	b = append(b, wire.MakeMsg([]byte("187\x0020261018 09:30:00 EST\x00"))...)
	b = append(b, wire.MakeMsg([]byte("49\x001\x001760780000\x00"))...)
	path := filepath.Join(t.TempDir(), "old.cap")
	require.NoError(t, os.WriteFile(path, b, 0o644))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rec := &timeRecorder{}
	n, err := Replay(f, rec, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []int64{1760780000}, rec.times)
}

func TestReplayRejectsBadHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.cap")
	require.NoError(t, os.WriteFile(path, wire.MakeMsg([]byte("abc\x00")), 0o644))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	_, err = Replay(f, decoder.NopWrapper{}, zerolog.Nop())
	assert.True(t, errors.Is(err, errors.ErrHandshakeFailed))
}

func TestRequestEncoding(t *testing.T) {
	g := newFakeGateway(t, testServerVersion)
	c := newTestClient(t, g, decoder.NopWrapper{})
	ctx := context.Background()
	aapl := stock("AAPL")

	t.Run("historical data", func(t *testing.T) {
		req := HistoricalDataRequest{Duration: "1 D", BarSize: "1 hour", WhatToShow: "TRADES", UseRTH: true, FormatDate: 1}
		require.NoError(t, c.ReqHistoricalData(ctx, 12, aapl, req, false))

		in := g.waitFor(t, wire.OutReqHistoricalData)
		want := []string{
			"12", "265598", "AAPL", "STK", "", "0", "", "", "SMART", "NASDAQ", "USD", "", "",
			"0", "", "1 hour", "1 D", "1", "TRADES", "1", "0", "",
		}
		assert.Equal(t, want, in.fields)
	})

	t.Run("contract details carries issuer id", func(t *testing.T) {
		require.NoError(t, c.ReqContractDetails(ctx, 13, aapl))

		in := g.waitFor(t, wire.OutReqContractData)
		require.Len(t, in.fields, 18)
		assert.Equal(t, "8", in.fields[0])
		assert.Equal(t, "13", in.fields[1])
		assert.Equal(t, "", in.fields[17])
	})

	t.Run("cancel order before CME tagging", func(t *testing.T) {
		require.NoError(t, c.CancelOrder(ctx, 42, NewOrderCancel()))

		in := g.waitFor(t, wire.OutCancelOrder)
		assert.Equal(t, []string{"1", "42", "", "", "", "2147483647"}, in.fields)
	})

	t.Run("tick by tick", func(t *testing.T) {
		require.NoError(t, c.ReqTickByTickData(ctx, 14, aapl, "BidAsk", 0, true))

		in := g.waitFor(t, wire.OutReqTickByTickData)
		require.Len(t, in.fields, 16)
		assert.Equal(t, "BidAsk", in.fields[13])
		assert.Equal(t, []string{"0", "1"}, in.fields[14:])
	})

	t.Run("executions without day filter", func(t *testing.T) {
		require.NoError(t, c.ReqExecutions(ctx, 15, models.NewExecutionFilter()))

		in := g.waitFor(t, wire.OutReqExecutions)
		assert.Equal(t, []string{"3", "15", "0", "", "", "", "", "", ""}, in.fields)
	})
}

func TestCancelOrderRFQPlaceholders(t *testing.T) {
	cases := []struct {
		sv   int
		want []string
	}{
		{wire.MinServerVerRFQFields - 1, []string{"1", "42", ""}},
		{wire.MinServerVerRFQFields, []string{"1", "42", "", "", "", "2147483647"}},
		{wire.MinServerVerUndoRFQFields - 1, []string{"1", "42", "", "", "", "2147483647"}},
		{wire.MinServerVerUndoRFQFields, []string{"1", "42", ""}},
	}
	for _, tc := range cases {
		t.Run(strconv.Itoa(tc.sv), func(t *testing.T) {
			g := newFakeGateway(t, tc.sv)
			c := newTestClient(t, g, decoder.NopWrapper{})

			require.NoError(t, c.CancelOrder(context.Background(), 42, NewOrderCancel()))
			in := g.waitFor(t, wire.OutCancelOrder)
			assert.Equal(t, tc.want, in.fields)
		})
	}
}

func TestRequestVersionGating(t *testing.T) {
	g := newFakeGateway(t, testServerVersion)
	c := newTestClient(t, g, decoder.NopWrapper{})
	ctx := context.Background()

	err := c.ReqCurrentTimeInMillis(ctx)
	assert.True(t, errors.Is(err, errors.ErrUnsupportedVersion))

	filter := models.NewExecutionFilter()
	filter.LastNDays = 3
	err = c.ReqExecutions(ctx, 1, filter)
	assert.True(t, errors.Is(err, errors.ErrUnsupportedVersion))
}

func TestRequestValidation(t *testing.T) {
	g := newFakeGateway(t, testServerVersion)
	c := newTestClient(t, g, decoder.NopWrapper{})
	ctx := context.Background()

	var verr *errors.ValidationError
	err := c.ReqMktData(ctx, 1, nil, "", false, false)
	assert.True(t, errors.As(err, &verr))

	err = c.ReqHistoricalData(ctx, 1, stock("AAPL"), HistoricalDataRequest{}, false)
	assert.True(t, errors.As(err, &verr))

	err = c.ReqMarketDataType(ctx, 9)
	assert.True(t, errors.As(err, &verr))
}

func TestRequestEncodingProtobufIDs(t *testing.T) {
	g := newFakeGateway(t, wire.MinServerVerProtobuf)
	c := newTestClient(t, g, decoder.NopWrapper{})
	ctx := context.Background()

	require.NoError(t, c.ReqGlobalCancel(ctx, NewOrderCancel()))
	in := g.waitFor(t, wire.OutReqGlobalCancel)
	assert.Equal(t, []string{"", ""}, in.fields)

	require.NoError(t, c.ReqCurrentTimeInMillis(ctx))
	in = g.waitFor(t, wire.OutReqCurrentTimeInMillis)
	assert.Empty(t, in.fields)

	cancel := OrderCancel{ManualOrderCancelTime: "20261018 10:00:00", ExtOperator: "desk", ManualOrderIndicator: 1}
	require.NoError(t, c.CancelOrder(ctx, 9, cancel))
	in = g.waitFor(t, wire.OutCancelOrder)
	assert.Equal(t, []string{"9", "20261018 10:00:00", "desk", strconv.Itoa(1)}, in.fields)
}
