// Package client implements the client half of Yuzu: the local state
// mirror, subscription registry, and session layer that opens (and
// transparently reconnects) a transport to a Yuzu server (spec §4.4,
// §4.5).
package client

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/yuzu-sync/yuzu/jsonvalue"
	"github.com/yuzu-sync/yuzu/wire"
	"github.com/yuzu-sync/yuzu/yuzulog"
)

// defaultReconnectTimeout is spec §6's reconnectTimeout default.
const defaultReconnectTimeout = 3000 * time.Millisecond

// GetTokenFunc resolves the current auth token on every connect
// attempt (spec §4.5: "invoked on every connect attempt so that
// rotated tokens are picked up across reconnects"). It may block; it
// is the only suspension point in a connect attempt before the
// transport is opened.
type GetTokenFunc func(ctx context.Context) (string, error)

// Options configures a Client (spec §6, "Client constructor
// configuration").
type Options struct {
	// Address is the transport URL; required unless ExternalTransport
	// is set.
	Address string

	// ReconnectTimeout is the delay before retrying after an
	// unexpected close; default 3000ms.
	ReconnectTimeout time.Duration

	// Token and GetToken are mutually exclusive; GetToken takes
	// precedence if both are set.
	Token    string
	GetToken GetTokenFunc

	// ExternalTransport switches to external mode (spec §4.6): the
	// library creates no WebSocket, the host calls OnMessage whenever
	// Yuzu wants to send, and drives inbound bytes through
	// HandleServerMessage. connected/IsConnected stay false and
	// Reconnect/Disconnect are no-ops.
	ExternalTransport bool
	OnMessage         func(buf []byte) error

	// Logger receives all log output; defaults to yuzulog.New(LogLevel),
	// where the zero LogLevel is yuzulog.LevelDebug.
	Logger yuzulog.Logger
	// LogLevel is only consulted when Logger is nil.
	LogLevel yuzulog.Level
}

// Client is one connection's worth of local state, subscriptions, and
// reconnect bookkeeping (spec §2/§4.5).
type Client struct {
	opts   Options
	logger yuzulog.Logger

	state    *localState
	registry *registry

	mu             sync.Mutex
	transport      wire.ClientTransport
	ws             *wsTransport
	connected      bool
	reconnectTimer *time.Timer
}

// New validates opts and constructs a Client without connecting (spec
// §6/§7's construction-misconfiguration rule: at least one of Address
// or ExternalTransport must be set, and external mode requires
// OnMessage).
func New(opts Options) (*Client, error) {
	if opts.Address == "" && !opts.ExternalTransport {
		return nil, errors.New("client: one of Address or ExternalTransport must be set")
	}
	if opts.ExternalTransport && opts.OnMessage == nil {
		return nil, errors.New("client: external transport requires OnMessage")
	}
	if opts.ReconnectTimeout <= 0 {
		opts.ReconnectTimeout = defaultReconnectTimeout
	}

	logger := opts.Logger
	if logger == nil {
		logger = yuzulog.New(opts.LogLevel)
	}

	c := &Client{opts: opts, logger: logger}
	c.state = newLocalState()
	c.registry = newRegistry(c.state.get)

	if opts.ExternalTransport {
		c.transport = wire.ClientTransportFunc(opts.OnMessage)
	}
	return c, nil
}

// Root returns the subscribable projection's root cursor.
func (c *Client) Root() *Cursor {
	return &Cursor{client: c, path: jsonvalue.Path{}}
}

// At returns a cursor at the given path.
func (c *Client) At(path ...string) *Cursor {
	return &Cursor{client: c, path: jsonvalue.PathOf(path...)}
}

// IsConnected reports the transport's liveness; always false in
// external mode (spec §4.6).
func (c *Client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// Connect opens the transport (external mode: sends the initial
// complete request through OnMessage instead, since there is no dial
// step to perform).
func (c *Client) Connect(ctx context.Context) error {
	if c.opts.ExternalTransport {
		return c.sendCompleteRequest()
	}
	return c.connectAttempt(ctx)
}

// Disconnect closes the current transport and suppresses
// auto-reconnect (spec §4.5: "If user-initiated (disconnect or
// reconnect), do not auto-reconnect"). A no-op in external mode.
func (c *Client) Disconnect() {
	if c.opts.ExternalTransport {
		return
	}
	ws := c.stopAndDetach()
	if ws != nil {
		ws.Close()
	}
}

// Reconnect cancels any pending reconnect timer, closes the current
// transport if open, and immediately attempts a fresh connect (spec
// §4.5: "a reconnect initiates its own connect"). A no-op in external
// mode.
func (c *Client) Reconnect() error {
	if c.opts.ExternalTransport {
		return nil
	}
	ws := c.stopAndDetach()
	if ws != nil {
		ws.Close()
	}
	return c.connectAttempt(context.Background())
}

// stopAndDetach cancels any pending reconnect timer and detaches the
// current transport, returning it (nil if none) for the caller to
// close outside the lock.
func (c *Client) stopAndDetach() *wsTransport {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.reconnectTimer != nil {
		c.reconnectTimer.Stop()
		c.reconnectTimer = nil
	}
	ws := c.ws
	c.ws = nil
	c.transport = nil
	c.connected = false
	return ws
}

// connectAttempt resolves the token, dials, and performs the handshake
// (spec §4.5: "On transport open: immediately send complete and flip
// connected → true").
func (c *Client) connectAttempt(ctx context.Context) error {
	addr, err := c.resolveAddress(ctx)
	if err != nil {
		return err
	}

	ws, err := dialWS(ctx, addr, c.handleInbound, c.handleClosed)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.ws = ws
	c.transport = ws
	c.connected = true
	c.mu.Unlock()

	c.logger.Logf("client: connected to %s", c.opts.Address)
	return c.sendCompleteRequest()
}

// resolveAddress fetches the token (the only suspension point before
// the transport is created, spec §5) and appends it to Address as a
// percent-encoded query parameter.
func (c *Client) resolveAddress(ctx context.Context) (string, error) {
	var token string
	var err error
	switch {
	case c.opts.GetToken != nil:
		token, err = c.opts.GetToken(ctx)
	case c.opts.Token != "":
		token = c.opts.Token
	default:
		return c.opts.Address, nil
	}
	if err != nil {
		return "", err
	}
	return withToken(c.opts.Address, token)
}

// handleClosed is the transport's unexpected-close callback: flips
// connected → false and schedules exactly one reconnect timer (spec
// §4.5). It is never invoked for a Disconnect/Reconnect-initiated
// close, since those detach the transport before closing it.
func (c *Client) handleClosed(err error) {
	c.mu.Lock()
	c.connected = false
	c.ws = nil
	c.transport = nil
	c.mu.Unlock()

	if err != nil {
		c.logger.Warnf("client: transport closed: %v", err)
	}
	c.scheduleReconnect()
}

func (c *Client) scheduleReconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.reconnectTimer != nil {
		return
	}
	c.reconnectTimer = time.AfterFunc(c.opts.ReconnectTimeout, c.retryConnect)
}

func (c *Client) retryConnect() {
	c.mu.Lock()
	c.reconnectTimer = nil
	c.mu.Unlock()

	if err := c.connectAttempt(context.Background()); err != nil {
		c.logger.Errorf("client: reconnect failed: %v", err)
		c.scheduleReconnect()
	}
}

// sendCompleteRequest sends the client -> server handshake/resync
// message (spec §6).
func (c *Client) sendCompleteRequest() error {
	buf, err := wire.Marshal(wire.NewCompleteRequest())
	if err != nil {
		return err
	}
	c.mu.Lock()
	t := c.transport
	c.mu.Unlock()
	if t == nil {
		return errors.New("client: not connected")
	}
	return t.Send(buf)
}

// HandleServerMessage is the external-mode entry point the host calls
// with inbound wire bytes (spec §4.6); the built-in WebSocket
// transport routes through the same logic internally.
func (c *Client) HandleServerMessage(buf []byte) {
	c.handleInbound(buf)
}

// handleInbound decodes one server -> client message and applies it
// (spec §4.5). Malformed messages are logged, unknown message types are
// ignored without logging, and in both cases the connection stays open
// (spec §7).
func (c *Client) handleInbound(buf []byte) {
	msg, err := wire.Decode(buf)
	if err != nil {
		if err == wire.ErrUnknownType {
			return
		}
		c.logger.Errorf("client: malformed server message: %v", err)
		return
	}

	switch m := msg.(type) {
	case wire.CompleteReply:
		c.state.replace(m.State)
		c.registry.notifyAll()
	case wire.PatchMessage:
		if err := c.state.apply(m.Patch); err != nil {
			c.logger.Errorf("client: apply patch: %v", err)
			return
		}
		c.registry.notifySingle(m.Patch.Path)
	case wire.PatchBatchMessage:
		paths := make([]jsonvalue.Path, 0, len(m.Patches))
		for _, p := range m.Patches {
			if err := c.state.apply(p); err != nil {
				c.logger.Errorf("client: apply batched patch: %v", err)
				continue
			}
			paths = append(paths, p.Path)
		}
		c.registry.notifyBatch(paths)
	default:
		// A CompleteRequest arriving at the client is unexpected
		// (servers only ever send complete replies, patches, and
		// batches) but is ignored rather than treated as an error.
	}
}
