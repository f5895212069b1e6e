package broker

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"ib-trader/internal/decoder"
	"ib-trader/internal/errors"
	"ib-trader/internal/logging"
	"ib-trader/internal/wire"
	"ib-trader/pkg/utils"
)

// Client is a TWS API socket connection. Inbound messages are decoded on a reader
// goroutine and delivered to the wrapper; requests may be sent from any goroutine.
type Client struct {
	cfg     Config
	wrapper decoder.Wrapper
	logger  zerolog.Logger
	limiter *rate.Limiter

	mu            sync.RWMutex
	conn          net.Conn
	dec           *decoder.Decoder
	serverVersion int
	connTime      string
	connected     bool
	connecting    bool
	closing       bool
	capture       *captureWriter
	done          chan struct{}

	// life is canceled by Disconnect and stops a pending reconnect.
	life context.Context
	stop context.CancelFunc

	writeMu   sync.Mutex
	nextReqID atomic.Int64
}

// NewClient creates a client that delivers callbacks to wrapper.
func NewClient(cfg Config, wrapper decoder.Wrapper, logger zerolog.Logger) *Client {
	if cfg.MessagesPerSecond <= 0 {
		cfg.MessagesPerSecond = DefaultConfig().MessagesPerSecond
	}
	if cfg.MinVersion == 0 {
		cfg.MinVersion = wire.MinClientVer
	}
	if cfg.MaxVersion == 0 {
		cfg.MaxVersion = wire.MaxClientVer
	}
	c := &Client{
		cfg:     cfg,
		wrapper: wrapper,
		logger:  logger.With().Str("component", "client").Logger(),
		limiter: rate.NewLimiter(rate.Limit(cfg.MessagesPerSecond), 1),
	}
	c.nextReqID.Store(1)
	return c
}

// Connect dials TWS, negotiates the server version and starts the API session.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.connected || c.connecting {
		c.mu.Unlock()
		return errors.ErrAlreadyConnected
	}
	c.closing = false
	if c.stop != nil {
		c.stop()
	}
	c.life, c.stop = context.WithCancel(context.Background())
	c.connecting = true
	c.mu.Unlock()

	return c.dial(ctx)
}

// redial is one reconnect attempt. It never revives a client the caller has
// disconnected.
func (c *Client) redial(ctx context.Context) error {
	c.mu.Lock()
	if c.closing {
		c.mu.Unlock()
		return context.Canceled
	}
	if c.connected || c.connecting {
		c.mu.Unlock()
		return errors.ErrAlreadyConnected
	}
	c.connecting = true
	c.mu.Unlock()

	return c.dial(ctx)
}

// dial runs one connection attempt. The caller must have set c.connecting.
func (c *Client) dial(ctx context.Context) error {
	defer func() {
		c.mu.Lock()
		c.connecting = false
		c.mu.Unlock()
	}()

	addr := net.JoinHostPort(c.cfg.Host, strconv.Itoa(c.cfg.Port))
	dialer := net.Dialer{Timeout: c.cfg.ConnectTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", errors.ErrConnectionFailed, addr, err)
	}

	reader := bufio.NewReader(conn)
	sv, connTime, reply, err := c.handshake(ctx, conn, reader)
	if err != nil {
		conn.Close()
		return err
	}

	var capture *captureWriter
	if c.cfg.CapturePath != "" {
		capture, err = openCapture(c.cfg.CapturePath, reply)
		if err != nil {
			conn.Close()
			return err
		}
	}

	c.mu.Lock()
	if c.closing {
		c.mu.Unlock()
		if capture != nil {
			capture.Close()
		}
		conn.Close()
		return fmt.Errorf("%w: disconnected while connecting", errors.ErrNotConnected)
	}
	c.conn = conn
	c.serverVersion = sv
	c.connTime = connTime
	c.dec = decoder.New(c.wrapper, sv, c.logger)
	c.capture = capture
	c.connected = true
	c.done = make(chan struct{})
	done := c.done
	c.mu.Unlock()

	c.logger.Info().
		Str("addr", addr).
		Int("server_version", sv).
		Str("connection_time", connTime).
		Msg("Connected to TWS")

	if err := c.startAPI(ctx); err != nil {
		c.mu.Lock()
		if c.done == done {
			c.teardownLocked()
		}
		c.mu.Unlock()
		return err
	}

	go c.readLoop(reader, done)
	return nil
}

func (c *Client) handshake(ctx context.Context, conn net.Conn, reader *bufio.Reader) (int, string, []byte, error) {
	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
		defer conn.SetDeadline(time.Time{})
	}

	if _, err := conn.Write(wire.MakeHandshake(c.cfg.MinVersion, c.cfg.MaxVersion, c.cfg.ConnectOptions)); err != nil {
		return 0, "", nil, fmt.Errorf("%w: %v", errors.ErrHandshakeFailed, err)
	}

	reply, err := wire.ReadFrame(reader)
	if err != nil {
		return 0, "", nil, fmt.Errorf("%w: %v", errors.ErrHandshakeFailed, err)
	}
	fields := wire.SplitFields(reply)
	if len(fields) < 2 {
		return 0, "", nil, fmt.Errorf("%w: reply has %d fields", errors.ErrHandshakeFailed, len(fields))
	}
	sv, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, "", nil, fmt.Errorf("%w: bad server version %q", errors.ErrHandshakeFailed, fields[0])
	}
	if sv < c.cfg.MinVersion {
		return 0, "", nil, fmt.Errorf("%w: %d", errors.ErrUnsupportedVersion, sv)
	}
	return sv, fields[1], reply, nil
}

func (c *Client) startAPI(ctx context.Context) error {
	msg := c.newMessage(wire.OutStartAPI).Int(2).Int(c.cfg.ClientID)
	if c.ServerVersion() >= wire.MinServerVerOptionalCapabilities {
		msg.String(c.cfg.OptionalCapabilities)
	}
	return c.send(ctx, msg)
}

func (c *Client) readLoop(reader io.Reader, done chan struct{}) {
	for {
		payload, err := wire.ReadFrame(reader)
		if err != nil {
			c.handleReadError(err, done)
			return
		}

		c.mu.RLock()
		dec, capture := c.dec, c.capture
		c.mu.RUnlock()

		if capture != nil {
			if err := capture.write(wire.MakeMsg(payload)); err != nil {
				c.logger.Warn().Err(err).Msg("Failed to write capture")
			}
		}
		logging.LogInbound(c.logger, msgIDOf(payload, dec.ServerVersion()), len(payload))

		// Decode failures are logged by the decoder; the stream stays usable.
		_ = dec.ProcessMessage(payload)
	}
}

func msgIDOf(payload []byte, sv int) int {
	id, _, err := wire.SplitMsgID(payload, sv)
	if err != nil {
		return -1
	}
	return id
}

func (c *Client) handleReadError(err error, done chan struct{}) {
	c.mu.Lock()
	closing, life := c.closing, c.life
	if c.done == done {
		c.teardownLocked()
	}
	c.mu.Unlock()

	if closing {
		return
	}

	c.logger.Error().Err(err).Msg("Connection lost")
	c.wrapper.ConnectionClosed()

	if c.cfg.Reconnect {
		go c.reconnect(life)
	}
}

// reconnect retries the connection until it is back, the attempts run out or
// ctx is canceled by Disconnect.
func (c *Client) reconnect(ctx context.Context) {
	cfg := c.cfg.Retry
	cfg.OnRetry = func(attempt int, delay time.Duration, err error) {
		c.logger.Warn().Err(err).Int("attempt", attempt).Dur("delay", delay).Msg("Reconnect failed, retrying")
	}
	err := utils.Retry(ctx, cfg, func() error {
		attemptCtx, cancel := context.WithTimeout(ctx, c.cfg.ConnectTimeout)
		defer cancel()
		err := c.redial(attemptCtx)
		if errors.Is(err, errors.ErrAlreadyConnected) {
			return nil
		}
		return err
	})
	switch {
	case err == nil:
		c.logger.Info().Msg("Reconnected to TWS")
	case ctx.Err() != nil:
		c.logger.Debug().Msg("Reconnect stopped by disconnect")
	default:
		c.logger.Error().Err(err).Msg("Giving up on reconnect")
	}
}

// teardownLocked closes the socket and capture. c.mu must be held.
func (c *Client) teardownLocked() {
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	if c.capture != nil {
		c.capture.Close()
		c.capture = nil
	}
	if c.done != nil {
		close(c.done)
		c.done = nil
	}
	c.connected = false
}

// Disconnect closes the connection. The wrapper is not told about a disconnect the
// caller asked for.
func (c *Client) Disconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closing = true
	if c.stop != nil {
		c.stop()
	}
	if !c.connected {
		return nil
	}
	c.teardownLocked()
	c.logger.Info().Msg("Disconnected from TWS")
	return nil
}

// IsConnected reports whether the session is up.
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

// ServerVersion returns the version negotiated by the last handshake.
func (c *Client) ServerVersion() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.serverVersion
}

// ConnectionTime returns the server's connection timestamp.
func (c *Client) ConnectionTime() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connTime
}

// NextReqID allocates a request id.
func (c *Client) NextReqID() int64 {
	return c.nextReqID.Add(1) - 1
}

func (c *Client) newMessage(msgID int) *wire.FieldWriter {
	return wire.NewMessage(msgID, c.ServerVersion())
}

// send throttles and writes one message.
func (c *Client) send(ctx context.Context, msg *wire.FieldWriter) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return errors.Wrap(errors.ErrRequestCancelled, err.Error())
	}

	c.mu.RLock()
	conn := c.conn
	c.mu.RUnlock()
	if conn == nil {
		return errors.ErrNotConnected
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if _, err := conn.Write(msg.Frame()); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrConnectionFailed, err)
	}
	return nil
}

// requireVersion fails when the server is older than minVersion.
func (c *Client) requireVersion(minVersion int, feature string) error {
	if sv := c.ServerVersion(); sv < minVersion {
		return fmt.Errorf("%w: %s needs server version %d, have %d", errors.ErrUnsupportedVersion, feature, minVersion, sv)
	}
	return nil
}

// captureMarker starts the header frame each connection appends to a capture
// file. The rest of the header is the handshake reply.
var captureMarker = []byte("ib-capture\x00")

// captureWriter appends raw frames to a file.
type captureWriter struct {
	f  *os.File
	w  *bufio.Writer
	mu sync.Mutex
}

// openCapture opens path for appending and writes a session header carrying the
// handshake reply, so reconnects add sessions instead of truncating the file.
func openCapture(path string, reply []byte) (*captureWriter, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, errors.Wrapf(err, "open capture %s", path)
	}
	cw := &captureWriter{f: f, w: bufio.NewWriter(f)}
	header := append(append([]byte{}, captureMarker...), reply...)
	if err := cw.write(wire.MakeMsg(header)); err != nil {
		cw.Close()
		return nil, errors.Wrapf(err, "write capture header %s", path)
	}
	return cw, nil
}

func (cw *captureWriter) write(frame []byte) error {
	cw.mu.Lock()
	defer cw.mu.Unlock()
	if _, err := cw.w.Write(frame); err != nil {
		return err
	}
	return cw.w.Flush()
}

func (cw *captureWriter) Close() error {
	cw.mu.Lock()
	defer cw.mu.Unlock()
	cw.w.Flush()
	return cw.f.Close()
}

// Replay decodes a capture file written by a Client. Every session header resets
// the server version for the frames after it; a file that starts with a bare
// handshake reply is read as a single session. It returns the number of messages
// decoded; decode failures are logged and skipped.
func Replay(r io.Reader, wrapper decoder.Wrapper, logger zerolog.Logger) (int, error) {
	var dec *decoder.Decoder
	n, sessions := 0, 0
	for {
		payload, err := wire.ReadFrame(r)
		if err == io.EOF && dec != nil {
			logger.Debug().Int("sessions", sessions).Int("messages", n).Msg("Replay finished")
			return n, nil
		}
		if err != nil {
			if dec == nil {
				return 0, errors.Wrap(err, "read capture header")
			}
			return n, errors.Wrap(err, "read capture")
		}

		reply, isHeader := bytes.CutPrefix(payload, captureMarker)
		if isHeader || dec == nil {
			sv, err := replyServerVersion(reply)
			if err != nil {
				return n, err
			}
			dec = decoder.New(wrapper, sv, logger)
			sessions++
			continue
		}
		_ = dec.ProcessMessage(payload)
		n++
	}
}

func replyServerVersion(reply []byte) (int, error) {
	fields := wire.SplitFields(reply)
	if len(fields) < 1 {
		return 0, fmt.Errorf("%w: empty capture header", errors.ErrHandshakeFailed)
	}
	sv, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, fmt.Errorf("%w: bad server version %q", errors.ErrHandshakeFailed, fields[0])
	}
	return sv, nil
}
