package stream

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"ib-trader/internal/errors"
	"ib-trader/internal/models"
)

// WSEvent is the JSON form of a TickEvent sent to websocket clients. Unset values
// are omitted.
type WSEvent struct {
	ReqID    int64    `json:"reqId"`
	Kind     string   `json:"kind"`
	TickType string   `json:"tickType,omitempty"`
	Price    *float64 `json:"price,omitempty"`
	Size     string   `json:"size,omitempty"`
	BidPrice *float64 `json:"bidPrice,omitempty"`
	AskPrice *float64 `json:"askPrice,omitempty"`
	BidSize  string   `json:"bidSize,omitempty"`
	AskSize  string   `json:"askSize,omitempty"`
	Time     int64    `json:"time"`
}

// NewWSEvent converts ev for the wire.
func NewWSEvent(ev models.TickEvent) WSEvent {
	out := WSEvent{
		ReqID: ev.ReqID,
		Kind:  string(ev.Kind),
		Time:  ev.Timestamp.UnixMilli(),
	}
	if ev.TickType != models.TickNotSet {
		out.TickType = ev.TickType.String()
	}
	switch ev.Kind {
	case models.TickKindBidAsk:
		out.BidPrice = floatPtr(ev.BidPrice)
		out.AskPrice = floatPtr(ev.AskPrice)
		out.BidSize = decimalString(ev.BidSize)
		out.AskSize = decimalString(ev.AskSize)
	default:
		out.Price = floatPtr(ev.Price)
		out.Size = decimalString(ev.Size)
	}
	return out
}

func floatPtr(v float64) *float64 {
	if v == models.UnsetFloat {
		return nil
	}
	return &v
}

func decimalString(d decimal.Decimal) string {
	if models.IsUnsetDecimal(d) {
		return ""
	}
	return d.String()
}

// parseReqIDs reads a comma separated id list. An empty list means every request.
func parseReqIDs(raw string) ([]int64, error) {
	if strings.TrimSpace(raw) == "" {
		return []int64{AllRequests}, nil
	}
	var ids []int64
	seen := make(map[int64]bool)
	for _, part := range strings.Split(raw, ",") {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return nil, errors.NewValidationError("req", part, "request ids must be integers")
		}
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids, nil
}

type wsClient struct {
	id   string
	conn *websocket.Conn
	out  chan models.TickEvent
	done chan struct{}
}

// forward copies events from a hub channel to the client's outbox, dropping when
// the outbox is full.
func (c *wsClient) forward(ch <-chan models.TickEvent) {
	for ev := range ch {
		select {
		case <-c.done:
			return
		case c.out <- ev:
		default:
		}
	}
}

func (c *wsClient) writeLoop(timeout time.Duration, logger zerolog.Logger) {
	for {
		select {
		case <-c.done:
			return
		case ev := <-c.out:
			c.conn.SetWriteDeadline(time.Now().Add(timeout))
			if err := c.conn.WriteJSON(NewWSEvent(ev)); err != nil {
				logger.Debug().Err(err).Str("client", c.id).Msg("Websocket write failed")
				c.conn.Close()
				return
			}
		}
	}
}

// WSBridge serves hub events to websocket clients. Clients choose request ids with
// the "req" query parameter, e.g. /ws?req=1,2.
type WSBridge struct {
	hub          *Hub
	logger       zerolog.Logger
	upgrader     websocket.Upgrader
	writeTimeout time.Duration
	bufferSize   int

	mu      sync.Mutex
	clients map[string]*wsClient
}

// NewWSBridge creates a bridge over hub.
func NewWSBridge(hub *Hub, logger zerolog.Logger) *WSBridge {
	return &WSBridge{
		hub:    hub,
		logger: logger.With().Str("component", "ws").Logger(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		writeTimeout: 5 * time.Second,
		bufferSize:   256,
		clients:      make(map[string]*wsClient),
	}
}

// ServeHTTP upgrades the connection and streams events until the client leaves.
func (b *WSBridge) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	reqIDs, err := parseReqIDs(r.URL.Query().Get("req"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	conn, err := b.upgrader.Upgrade(w, r, nil)
	if err != nil {
		b.logger.Warn().Err(err).Msg("Websocket upgrade failed")
		return
	}

	c := &wsClient{
		id:   uuid.NewString(),
		conn: conn,
		out:  make(chan models.TickEvent, b.bufferSize),
		done: make(chan struct{}),
	}
	b.mu.Lock()
	b.clients[c.id] = c
	b.mu.Unlock()

	subs := make(map[int64]<-chan models.TickEvent, len(reqIDs))
	for _, reqID := range reqIDs {
		ch := b.hub.SubscribeWithID(reqID, c.id)
		subs[reqID] = ch
		go c.forward(ch)
	}
	b.logger.Info().Str("client", c.id).Ints64("req_ids", reqIDs).Msg("Websocket client connected")

	go c.writeLoop(b.writeTimeout, b.logger)

	// Reads only detect the client going away.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	close(c.done)
	for reqID, ch := range subs {
		b.hub.Unsubscribe(reqID, ch)
	}
	b.mu.Lock()
	delete(b.clients, c.id)
	b.mu.Unlock()
	conn.Close()
	b.logger.Info().Str("client", c.id).Msg("Websocket client disconnected")
}

// ClientCount returns the number of connected websocket clients.
func (b *WSBridge) ClientCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.clients)
}
