package server

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/yuzu-sync/yuzu/wire"
	"github.com/yuzu-sync/yuzu/yuzulog"
)

// DefaultPath is the default WebSocket upgrade path (spec §6).
const DefaultPath = "/api/yuzu"

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// wsTransport is the default transport adapter (spec §4.6): it owns a
// github.com/gorilla/websocket upgrade handler and the set of
// currently-open connections. This generalizes the teacher's
// server/hub/hub.go handleConn — one read-pump goroutine and one
// write-pump goroutine per connection, coordinated so either exiting
// tears the other down — except the two pumps are joined with
// golang.org/x/sync/errgroup rather than the teacher's ad hoc eof/done
// channel pair, and connections are addressed by a stable ClientID
// (github.com/google/uuid) instead of an anonymous send channel so
// targeted complete replies are possible alongside broadcasts.
type wsTransport struct {
	path         string
	authenticate AuthenticateFunc
	logger       yuzulog.Logger

	// onMessage delivers an inbound wire message to the session layer
	// (Server.HandleClientMessage). Set by New.
	onMessage func(raw []byte, id wire.ClientID)

	mu    sync.Mutex
	conns map[wire.ClientID]*wsConn
}

type wsConn struct {
	conn     *websocket.Conn
	send     chan []byte
	done     chan struct{}
	closeOne sync.Once
}

func newWSTransport(path string, authenticate AuthenticateFunc, logger yuzulog.Logger) *wsTransport {
	if path == "" {
		path = DefaultPath
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return &wsTransport{
		path:         path,
		authenticate: authenticate,
		logger:       logger,
		conns:        make(map[wire.ClientID]*wsConn),
	}
}

// Handler returns the http.Handler to mount at t.path, either directly
// via http.Handle or wrapped by a host's own router/framework (spec
// §6's serverRef option).
func (t *wsTransport) Handler() http.Handler {
	return http.HandlerFunc(t.serveHTTP)
}

func (t *wsTransport) serveHTTP(w http.ResponseWriter, r *http.Request) {
	query, _ := url.ParseQuery(r.URL.RawQuery)
	if t.authenticate != nil {
		ok, err := t.authenticate(AuthInfo{Request: r, Query: query, Origin: r.Header.Get("Origin")})
		if err != nil {
			t.logger.Errorf("authenticate: %v", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		t.logger.Errorf("upgrade: %v", err)
		return
	}

	id := wire.ClientID(uuid.NewString())
	c := &wsConn{conn: conn, send: make(chan []byte, 16), done: make(chan struct{})}

	t.mu.Lock()
	t.conns[id] = c
	t.mu.Unlock()
	t.logger.Logf("client %s connected", id)

	var eg errgroup.Group
	eg.Go(func() error { return t.readPump(id, c) })
	eg.Go(func() error { return t.writePump(c) })
	eg.Wait()

	t.mu.Lock()
	delete(t.conns, id)
	t.mu.Unlock()
	conn.Close()
	t.logger.Logf("client %s disconnected", id)
}

// readPump and writePump generalize the teacher's eof/done channel
// pair: whichever pump notices the connection is gone closes done,
// which unblocks the other.
func (t *wsTransport) readPump(id wire.ClientID, c *wsConn) error {
	defer c.closeOne.Do(func() { close(c.done) })
	for {
		_, buf, err := c.conn.ReadMessage()
		if err != nil {
			return nil
		}
		if t.onMessage != nil {
			t.onMessage(buf, id)
		}
	}
}

func (t *wsTransport) writePump(c *wsConn) error {
	defer c.closeOne.Do(func() { close(c.done) })
	for {
		select {
		case buf := <-c.send:
			if err := c.conn.WriteMessage(websocket.TextMessage, buf); err != nil {
				// Closing the socket unblocks readPump's ReadMessage.
				c.conn.Close()
				return nil
			}
		case <-c.done:
			return nil
		}
	}
}

// Send implements wire.ServerTransport: an empty id broadcasts to every
// open connection, a non-empty id targets exactly that connection
// (spec §4.6).
func (t *wsTransport) Send(id wire.ClientID, buf []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if id == "" {
		for _, c := range t.conns {
			select {
			case c.send <- buf:
			default:
				t.logger.Warnf("dropping broadcast to slow client")
			}
		}
		return nil
	}

	c, ok := t.conns[id]
	if !ok {
		return fmt.Errorf("server: unknown client %s", id)
	}
	select {
	case c.send <- buf:
		return nil
	default:
		return fmt.Errorf("server: client %s send buffer full", id)
	}
}
