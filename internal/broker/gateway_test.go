package broker

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ib-trader/internal/decoder"
	"ib-trader/internal/wire"
)

const testServerVersion = 187

type inbound struct {
	id     int
	fields []string
}

// fakeGateway serves one client connection at a time, answers each handshake with
// its current server version and passes each request to the handler registered
// for its id.
type fakeGateway struct {
	t  *testing.T
	ln net.Listener

	ready     chan struct{}
	readyOnce sync.Once
	sessions  chan int
	received  chan inbound

	mu       sync.Mutex
	sv       int
	conn     net.Conn
	handlers map[int]func(in inbound)
	writeMu  sync.Mutex
}

func newFakeGateway(t *testing.T, sv int) *fakeGateway {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	g := &fakeGateway{
		t:        t,
		ln:       ln,
		sv:       sv,
		ready:    make(chan struct{}),
		sessions: make(chan int, 16),
		received: make(chan inbound, 64),
		handlers: make(map[int]func(in inbound)),
	}
	t.Cleanup(func() {
		ln.Close()
		g.drop()
	})
	go g.serve()
	return g
}

func (g *fakeGateway) port() int { return g.ln.Addr().(*net.TCPAddr).Port }

func (g *fakeGateway) serve() {
	for n := 1; ; n++ {
		conn, err := g.ln.Accept()
		if err != nil {
			return
		}
		g.serveConn(conn, n)
	}
}

func (g *fakeGateway) serveConn(conn net.Conn, session int) {
	defer conn.Close()

	prefix := make([]byte, len(wire.APIPrefix))
	if _, err := io.ReadFull(conn, prefix); err != nil {
		return
	}
	if _, err := wire.ReadFrame(conn); err != nil {
		return
	}
	g.mu.Lock()
	sv := g.sv
	g.mu.Unlock()
	reply := fmt.Sprintf("%d\x0020261018 09:30:00 EST\x00", sv)
	if _, err := conn.Write(wire.MakeMsg([]byte(reply))); err != nil {
		return
	}

	g.mu.Lock()
	g.conn = conn
	g.mu.Unlock()
	g.readyOnce.Do(func() { close(g.ready) })
	select {
	case g.sessions <- session:
	default:
	}

	for {
		payload, err := wire.ReadFrame(conn)
		if err != nil {
			return
		}
		id, rest, err := wire.SplitMsgID(payload, sv)
		if err != nil {
			return
		}
		in := inbound{id: id, fields: wire.SplitFields(rest)}

		select {
		case g.received <- in:
		default:
		}

		g.mu.Lock()
		fn := g.handlers[id]
		g.mu.Unlock()
		if fn != nil {
			fn(in)
		}
	}
}

// setServerVersion changes the version offered to later handshakes.
func (g *fakeGateway) setServerVersion(sv int) {
	g.mu.Lock()
	g.sv = sv
	g.mu.Unlock()
}

// waitSession returns the number of the next completed handshake.
func (g *fakeGateway) waitSession(t *testing.T) int {
	t.Helper()
	select {
	case n := <-g.sessions:
		return n
	case <-time.After(2 * time.Second):
		t.Fatal("no handshake")
		return 0
	}
}

func (g *fakeGateway) handle(msgID int, fn func(in inbound)) {
	g.mu.Lock()
	g.handlers[msgID] = fn
	g.mu.Unlock()
}

func (g *fakeGateway) send(msgID int, fields ...string) {
	<-g.ready
	g.mu.Lock()
	sv := g.sv
	g.mu.Unlock()

	var b bytes.Buffer
	b.Write(wire.EncodeMsgID(msgID, sv))
	for _, f := range fields {
		b.WriteString(f)
		b.WriteByte(0)
	}

	g.mu.Lock()
	conn := g.conn
	g.mu.Unlock()

	g.writeMu.Lock()
	defer g.writeMu.Unlock()
	_, err := conn.Write(wire.MakeMsg(b.Bytes()))
	assert.NoError(g.t, err)
}

func (g *fakeGateway) drop() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.conn != nil {
		g.conn.Close()
	}
}

// waitFor returns the next request with msgID, skipping others.
func (g *fakeGateway) waitFor(t *testing.T, msgID int) inbound {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case in := <-g.received:
			if in.id == msgID {
				return in
			}
		case <-timeout:
			t.Fatalf("no request with id %d", msgID)
			return inbound{}
		}
	}
}

func testConfig(g *fakeGateway) Config {
	cfg := DefaultConfig()
	cfg.Port = g.port()
	cfg.ClientID = 7
	cfg.ConnectTimeout = 2 * time.Second
	cfg.MessagesPerSecond = 1000
	return cfg
}

func newTestSyncClient(t *testing.T, g *fakeGateway) *SyncClient {
	t.Helper()
	sc := NewSyncClient(testConfig(g), decoder.NopWrapper{}, zerolog.Nop())
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, sc.Connect(ctx))
	t.Cleanup(func() { sc.Disconnect() })
	return sc
}

func newTestClient(t *testing.T, g *fakeGateway, wrapper decoder.Wrapper) *Client {
	t.Helper()
	c := NewClient(testConfig(g), wrapper, zerolog.Nop())
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, c.Connect(ctx))
	t.Cleanup(func() { c.Disconnect() })
	return c
}
