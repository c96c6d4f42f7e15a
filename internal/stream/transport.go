package stream

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// Conn is an open live connection.
type Conn interface {
	// ReadMessage blocks until the next message or an error. Close unblocks it.
	ReadMessage() ([]byte, error)
	Close() error
}

// Dialer opens live connections.
type Dialer interface {
	Dial(ctx context.Context, url string) (Conn, error)
}

// WebSocketDialer dials the backend's WebSocket endpoint.
type WebSocketDialer struct {
	// Header is sent on the upgrade request (e.g. X-Client-Id).
	Header           http.Header
	HandshakeTimeout time.Duration
}

// Dial implements Dialer.
func (d WebSocketDialer) Dial(ctx context.Context, url string) (Conn, error) {
	dialer := websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: d.HandshakeTimeout,
	}
	if dialer.HandshakeTimeout == 0 {
		dialer.HandshakeTimeout = 10 * time.Second
	}

	conn, resp, err := dialer.DialContext(ctx, url, d.Header)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return nil, err
	}
	return &wsConn{conn: conn}, nil
}

type wsConn struct {
	conn *websocket.Conn
}

func (c *wsConn) ReadMessage() ([]byte, error) {
	_, data, err := c.conn.ReadMessage()
	return data, err
}

func (c *wsConn) Close() error {
	return c.conn.Close()
}
