// Package ws provides the WebSocket transport implementation. It
// implements the transport.Dialer interface using binary messages as a
// byte stream. The dialer always speaks plain ws://; TLS for secure
// destinations is layered on top of the resulting stream by the TLS
// engine, so the transport stays scheme-agnostic.
package ws

import (
	"context"
	"fmt"
	"net"

	"github.com/coder/websocket"
)

// Dialer implements the transport.Dialer interface for WebSocket
// connections.
type Dialer struct {
	url string
}

// NewDialer creates a new WebSocket dialer for the specified address.
func NewDialer(addr string) *Dialer {
	return &Dialer{
		url: fmt.Sprintf("ws://%s", addr),
	}
}

// Dial establishes a WebSocket connection and adapts it to a net.Conn
// carrying binary messages.
func (d *Dialer) Dial(ctx context.Context) (net.Conn, error) {
	opts := &websocket.DialOptions{
		Subprotocols: []string{"bin"},
	}

	c, _, err := websocket.Dial(ctx, d.url, opts)
	if err != nil {
		return nil, fmt.Errorf("websocket.Dial(%s): %w", d.url, err)
	}
	return websocket.NetConn(context.Background(), c, websocket.MessageBinary), nil
}
