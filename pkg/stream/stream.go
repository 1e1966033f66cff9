// Package stream provides the unified connection type handed to the
// HTTP client: one net.Conn contract over either a plaintext or a
// TLS-wrapped connection, with a capability query for the negotiated
// application protocol.
package stream

import (
	"crypto/tls"
	"net"
	"time"
)

// SecureConn is a TLS-wrapped connection as produced by the TLS engine.
type SecureConn interface {
	net.Conn
	ConnectionState() tls.ConnectionState
}

// Conn is a tagged union with exactly two variants: plain or secure.
// The variant is fixed at construction and every I/O operation forwards
// verbatim to the active inner connection. Exactly one of plain and
// secure is non-nil.
type Conn struct {
	plain net.Conn
	tls   SecureConn

	// negotiated ALPN identifier, captured once at construction;
	// always empty on the plain variant
	proto string
}

var _ net.Conn = (*Conn)(nil)

// NewPlain wraps a raw connection as the plain variant.
func NewPlain(raw net.Conn) *Conn {
	return &Conn{plain: raw}
}

// NewSecure wraps a TLS connection as the secure variant, recording the
// negotiated application protocol.
func NewSecure(tc SecureConn) *Conn {
	return &Conn{
		tls:   tc,
		proto: tc.ConnectionState().NegotiatedProtocol,
	}
}

// IsTLS reports whether the secure variant is active.
func (c *Conn) IsTLS() bool {
	return c.tls != nil
}

// Protocol returns the ALPN protocol negotiated during the handshake,
// or "" when none was negotiated or the connection is plaintext. The
// HTTP layer uses this to decide whether to speak a multiplexed
// protocol such as h2.
func (c *Conn) Protocol() string {
	return c.proto
}

// ConnectionState returns the TLS handshake state of the secure
// variant. ok is false on the plain variant.
func (c *Conn) ConnectionState() (tls.ConnectionState, bool) {
	if c.tls != nil {
		return c.tls.ConnectionState(), true
	}
	return tls.ConnectionState{}, false
}

// Read reads from the active inner connection.
func (c *Conn) Read(b []byte) (int, error) {
	if c.tls != nil {
		return c.tls.Read(b)
	}
	return c.plain.Read(b)
}

// Write writes to the active inner connection.
func (c *Conn) Write(b []byte) (int, error) {
	if c.tls != nil {
		return c.tls.Write(b)
	}
	return c.plain.Write(b)
}

// Close closes the owned inner connection, releasing the underlying
// transport resources.
func (c *Conn) Close() error {
	if c.tls != nil {
		return c.tls.Close()
	}
	return c.plain.Close()
}

// LocalAddr returns the local address of the active inner connection.
func (c *Conn) LocalAddr() net.Addr {
	if c.tls != nil {
		return c.tls.LocalAddr()
	}
	return c.plain.LocalAddr()
}

// RemoteAddr returns the remote address of the active inner connection.
func (c *Conn) RemoteAddr() net.Addr {
	if c.tls != nil {
		return c.tls.RemoteAddr()
	}
	return c.plain.RemoteAddr()
}

// SetDeadline forwards to the active inner connection.
func (c *Conn) SetDeadline(t time.Time) error {
	if c.tls != nil {
		return c.tls.SetDeadline(t)
	}
	return c.plain.SetDeadline(t)
}

// SetReadDeadline forwards to the active inner connection.
func (c *Conn) SetReadDeadline(t time.Time) error {
	if c.tls != nil {
		return c.tls.SetReadDeadline(t)
	}
	return c.plain.SetReadDeadline(t)
}

// SetWriteDeadline forwards to the active inner connection.
func (c *Conn) SetWriteDeadline(t time.Time) error {
	if c.tls != nil {
		return c.tls.SetWriteDeadline(t)
	}
	return c.plain.SetWriteDeadline(t)
}
