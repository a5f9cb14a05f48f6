package client

import (
	"context"
	"net/url"
	"sync"

	"github.com/gorilla/websocket"
)

// wsTransport is the built-in client transport (spec §4.6 default
// mode): one gorilla/websocket connection, written directly by Send
// under a mutex, and a receive goroutine dispatching inbound frames to
// onMessage. Grounded on the teacher's own connection-pump shape in
// server/hub, mirrored for the single-connection client side.
type wsTransport struct {
	conn *websocket.Conn

	sendMu sync.Mutex

	onMessage func([]byte)
	onClose   func(error)

	closeOnce sync.Once
	done      chan struct{}
}

// dialWS opens addr and starts the receive pump. onMessage is called
// for every inbound text frame; onClose is called at most once, with
// the error that ended the read loop, when the receive goroutine exits
// on its own. It is not called once Close has run.
func dialWS(ctx context.Context, addr string, onMessage func([]byte), onClose func(error)) (*wsTransport, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, addr, nil)
	if err != nil {
		return nil, err
	}
	t := &wsTransport{
		conn:      conn,
		onMessage: onMessage,
		onClose:   onClose,
		done:      make(chan struct{}),
	}
	go t.readPump()
	return t, nil
}

func (t *wsTransport) readPump() {
	var closeErr error
	for {
		_, buf, err := t.conn.ReadMessage()
		if err != nil {
			closeErr = err
			break
		}
		t.onMessage(buf)
	}
	t.closeOnce.Do(func() {
		close(t.done)
		t.conn.Close()
		t.onClose(closeErr)
	})
}

// Send implements wire.ClientTransport.
func (t *wsTransport) Send(buf []byte) error {
	t.sendMu.Lock()
	defer t.sendMu.Unlock()
	return t.conn.WriteMessage(websocket.TextMessage, buf)
}

// Close closes the underlying connection without calling onClose: it
// takes the same once-guard readPump uses, so the receive goroutine's
// exit no longer reaches onClose. A second Close is a no-op.
func (t *wsTransport) Close() {
	t.closeOnce.Do(func() {
		close(t.done)
		t.conn.Close()
	})
}

// withToken returns addr with the token query parameter appended,
// percent-encoded (spec §4.5: "URL-encoding is the caller's
// responsibility for the URL but the library must percent-encode the
// token value itself").
func withToken(addr, token string) (string, error) {
	u, err := url.Parse(addr)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
