// Package stream receives point batches from a Socket.IO server over a WebSocket.
//
// The client runs on its own goroutine. Batches are handed to the render side
// through a kernel.Mailbox and the connection state through a kernel.Latest, so
// nothing here touches the point store.
package stream

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"pointview/internal/cloud"
	"pointview/kernel"
)

// Status is the connection state shown to the user.
type Status uint8

const (
	Disconnected Status = iota
	Connecting
	Connected
)

func (s Status) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	default:
		return "disconnected"
	}
}

const (
	DefaultURL   = "ws://127.0.0.1:5000/socket.io/?EIO=4&transport=websocket"
	DefaultEvent = "mediapipe_data"

	defaultReconnectMin = 500 * time.Millisecond
	defaultReconnectMax = 30 * time.Second
	defaultHandshake    = 10 * time.Second
	writeTimeout        = 5 * time.Second
)

// Config configures a Client.
type Config struct {
	URL   string
	Event string

	ReconnectMin     time.Duration
	ReconnectMax     time.Duration
	HandshakeTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.URL == "" {
		c.URL = DefaultURL
	}
	if c.Event == "" {
		c.Event = DefaultEvent
	}
	if c.ReconnectMin <= 0 {
		c.ReconnectMin = defaultReconnectMin
	}
	if c.ReconnectMax < c.ReconnectMin {
		c.ReconnectMax = defaultReconnectMax
		if c.ReconnectMax < c.ReconnectMin {
			c.ReconnectMax = c.ReconnectMin
		}
	}
	if c.HandshakeTimeout <= 0 {
		c.HandshakeTimeout = defaultHandshake
	}
	return c
}

// Option customizes a Client.
type Option func(*Client)

// WithClock replaces the clock used for reconnect waits.
func WithClock(clk clock.Clock) Option {
	return func(c *Client) { c.clock = clk }
}

// Client keeps a Socket.IO session open and forwards point batches.
type Client struct {
	cfg    Config
	logger *zap.Logger
	clock  clock.Clock
	dialer *websocket.Dialer

	batches *kernel.Mailbox[[]cloud.Point3D]
	status  *kernel.Latest[Status]

	received atomic.Uint64
	skipped  atomic.Uint64
}

// NewClient returns a client that offers decoded batches to batches and publishes
// its connection state to status. Nothing is dialed until Run.
func NewClient(cfg Config, logger *zap.Logger, batches *kernel.Mailbox[[]cloud.Point3D], status *kernel.Latest[Status], opts ...Option) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Client{
		cfg:     cfg.withDefaults(),
		logger:  logger,
		clock:   clock.New(),
		batches: batches,
		status:  status,
	}
	d := *websocket.DefaultDialer
	d.HandshakeTimeout = c.cfg.HandshakeTimeout
	c.dialer = &d
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Received returns the number of batches handed to the mailbox.
func (c *Client) Received() uint64 { return c.received.Load() }

// Skipped returns the number of malformed batch entries dropped so far.
func (c *Client) Skipped() uint64 { return c.skipped.Load() }

// Run connects and reconnects until ctx is done. It returns nil on cancellation.
func (c *Client) Run(ctx context.Context) error {
	defer c.setStatus(Disconnected)

	wait := time.Duration(0)
	for {
		if ctx.Err() != nil {
			return nil
		}
		c.setStatus(Connecting)
		connected, err := c.session(ctx)
		c.setStatus(Disconnected)
		if ctx.Err() != nil {
			return nil
		}
		if connected {
			wait = 0
		}
		wait = nextBackoff(wait, c.cfg.ReconnectMin, c.cfg.ReconnectMax)
		c.logger.Warn("stream session ended", zap.Error(err), zap.Duration("retry_in", wait))

		t := c.clock.Timer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil
		case <-t.C:
		}
	}
}

// nextBackoff doubles the previous wait, starting at lo and capped at hi.
func nextBackoff(prev, lo, hi time.Duration) time.Duration {
	if prev <= 0 {
		return lo
	}
	next := prev * 2
	if next > hi || next <= 0 {
		return hi
	}
	return next
}

func (c *Client) setStatus(s Status) {
	if c.status == nil {
		return
	}
	if cur, _, ok := c.status.Load(); ok && cur == s {
		return
	}
	c.status.Store(s)
}

// session runs one connection. connected reports whether the Socket.IO handshake
// completed.
func (c *Client) session(ctx context.Context) (connected bool, err error) {
	conn, _, err := c.dialer.DialContext(ctx, c.cfg.URL, nil)
	if err != nil {
		return false, errors.Wrapf(err, "dial %s", c.cfg.URL)
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeTimeout))
			_ = conn.Close()
		case <-stop:
		}
	}()
	defer func() {
		close(stop)
		<-done
		if cerr := conn.Close(); cerr != nil && ctx.Err() == nil && !errors.Is(cerr, websocket.ErrCloseSent) {
			err = multierr.Append(err, errors.Wrap(cerr, "close"))
		}
	}()

	info, err := c.handshake(conn)
	if err != nil {
		return false, err
	}
	c.setStatus(Connected)
	c.logger.Info("stream connected", zap.String("url", c.cfg.URL), zap.String("sid", info.SID))

	return true, c.readLoop(conn, info)
}

func (c *Client) handshake(conn *websocket.Conn) (openInfo, error) {
	deadline := time.Now().Add(c.cfg.HandshakeTimeout)
	if err := conn.SetReadDeadline(deadline); err != nil {
		return openInfo{}, errors.Wrap(err, "set deadline")
	}

	f, err := readFrame(conn)
	if err != nil {
		return openInfo{}, errors.Wrap(err, "read open")
	}
	if f.kind != frameOpen {
		return openInfo{}, errors.Errorf("expected open packet, got kind %d", f.kind)
	}
	info, err := parseOpen(f.data)
	if err != nil {
		return openInfo{}, err
	}

	if err := c.write(conn, connectPacket); err != nil {
		return openInfo{}, errors.Wrap(err, "send connect")
	}
	for {
		f, err := readFrame(conn)
		if err != nil {
			return openInfo{}, errors.Wrap(err, "read connect")
		}
		switch f.kind {
		case frameConnect:
			return info, nil
		case frameConnectError:
			return openInfo{}, connectError(f.data)
		case framePing:
			if err := c.write(conn, pongPacket); err != nil {
				return openInfo{}, errors.Wrap(err, "send pong")
			}
		case frameClose:
			return openInfo{}, errors.New("server closed during handshake")
		}
	}
}

func (c *Client) readLoop(conn *websocket.Conn, info openInfo) error {
	live := info.Liveness()
	for {
		if live > 0 {
			if err := conn.SetReadDeadline(time.Now().Add(live)); err != nil {
				return errors.Wrap(err, "set deadline")
			}
		}
		f, err := readFrame(conn)
		if err != nil {
			return errors.Wrap(err, "read")
		}
		switch f.kind {
		case framePing:
			if err := c.write(conn, pongPacket); err != nil {
				return errors.Wrap(err, "send pong")
			}
		case frameEvent:
			c.handleEvent(f.data)
		case frameDisconnect:
			return errors.New("server disconnected the socket")
		case frameClose:
			return errors.New("server closed the session")
		}
	}
}

func (c *Client) handleEvent(data []byte) {
	name, args, err := parseEvent(data)
	if err != nil {
		c.logger.Warn("bad event", zap.Error(err))
		return
	}
	if name != c.cfg.Event {
		c.logger.Debug("ignoring event", zap.String("event", name))
		return
	}
	if len(args) == 0 {
		c.logger.Warn("event without payload", zap.String("event", name))
		return
	}
	points, skipped, err := DecodeBatch(args[0])
	if err != nil {
		c.logger.Warn("dropping batch", zap.Error(err))
		return
	}
	if skipped > 0 {
		c.skipped.Add(uint64(skipped))
		c.logger.Debug("skipped malformed points", zap.Int("skipped", skipped), zap.Int("kept", len(points)))
	}
	c.received.Add(1)
	if !c.batches.Offer(points) {
		c.logger.Debug("mailbox full, older batch superseded", zap.Uint64("dropped", c.batches.Dropped()))
	}
}

func (c *Client) write(conn *websocket.Conn, b []byte) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, b)
}

func readFrame(conn *websocket.Conn) (frame, error) {
	for {
		mt, b, err := conn.ReadMessage()
		if err != nil {
			return frame{}, err
		}
		if mt != websocket.TextMessage {
			continue
		}
		f, err := parseFrame(b)
		if errors.Is(err, errEmptyFrame) {
			continue
		}
		return f, err
	}
}
