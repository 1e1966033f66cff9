// Package transport defines the contract the connector consumes from
// the transport layer and hosts its implementations (tcp, ws, kcp,
// mux). Transports are scheme-agnostic: they produce raw duplex byte
// streams and know nothing about TLS, which is layered on top by the
// TLS engine when the destination requires it.
//
// Each transport follows the same shape:
//   - NewDialer binds a dialer to one address at construction
//   - Dial accepts a context and returns a net.Conn or an error
//   - connection setup and cleanup on failure happen internally
//
// Transport-specific notes:
//   - TCP: stdlib dial with keep-alive, injectable dial function
//   - WebSocket: binary-message stream over ws://
//   - KCP: reliable stream over UDP
//   - Mux: decorator multiplexing logical conns over one inner dial
package transport

import (
	"context"
	"net"
)

// Dialer establishes outbound connections to the address it was
// constructed for. Implementations must honor context cancellation and
// leave no open socket behind when Dial returns an error.
type Dialer interface {
	Dial(ctx context.Context) (net.Conn, error)
}
