// Package mocks provides test doubles shared across packages.
package mocks

import (
	"context"
	"crypto/tls"
	"net"
	"sync"

	"maybetls/pkg/tlsengine"
)

// TLSEngine is a scripted tlsengine.Engine. It records every handshake
// invocation and can be configured to fail, to block until the context
// is cancelled, or to report a chosen ALPN protocol.
type TLSEngine struct {
	Protocol string // ALPN identifier to report on success
	Err      error  // handshake failure to return
	Block    bool   // block until ctx is done, then return ctx.Err()

	mu          sync.Mutex
	calls       int
	serverNames []string
}

var _ tlsengine.Engine = (*TLSEngine)(nil)

// Handshake implements tlsengine.Engine.
func (e *TLSEngine) Handshake(ctx context.Context, raw net.Conn, serverName string) (tlsengine.Conn, error) {
	e.mu.Lock()
	e.calls++
	e.serverNames = append(e.serverNames, serverName)
	e.mu.Unlock()

	if e.Block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if e.Err != nil {
		return nil, e.Err
	}

	return &scriptedConn{Conn: raw, proto: e.Protocol}, nil
}

// Calls returns how many handshakes were attempted.
func (e *TLSEngine) Calls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls
}

// ServerNames returns the server names passed to each handshake, in
// order.
func (e *TLSEngine) ServerNames() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.serverNames...)
}

// scriptedConn pretends the wrapped conn completed a handshake with the
// scripted ALPN result. I/O passes through unencrypted.
type scriptedConn struct {
	net.Conn
	proto string
}

func (c *scriptedConn) ConnectionState() tls.ConnectionState {
	return tls.ConnectionState{
		HandshakeComplete:  true,
		NegotiatedProtocol: c.proto,
	}
}
