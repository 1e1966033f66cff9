// Package tlsengine wraps the TLS handshake behind a small interface so
// the connector can be tested against scripted engines and callers can
// substitute their own TLS stack.
package tlsengine

import (
	"context"
	"crypto/tls"
	"net"
)

// Conn is a TLS-wrapped connection as returned by an Engine. It is the
// subset of *tls.Conn the connector relies on.
type Conn interface {
	net.Conn

	// ConnectionState reports the handshake result, including the
	// negotiated ALPN protocol.
	ConnectionState() tls.ConnectionState
}

// Engine performs a TLS handshake over an established raw connection.
// serverName is used for SNI and certificate verification. On failure
// the raw connection is left open; closing it is the caller's job.
// Implementations must honor context cancellation during the
// handshake.
type Engine interface {
	Handshake(ctx context.Context, raw net.Conn, serverName string) (Conn, error)
}
