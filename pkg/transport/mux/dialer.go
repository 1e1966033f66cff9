// Package mux provides a multiplexing transport decorator. It wraps
// another transport.Dialer and serves every Dial call with a fresh
// yamux stream over a single shared underlying connection, so many
// logical connections cost one physical dial.
package mux

import (
	"context"
	"fmt"
	"io"
	stdlog "log"
	"net"
	"sync"

	"github.com/hashicorp/yamux"

	"maybetls/pkg/transport"
)

// Dialer implements the transport.Dialer interface by multiplexing
// streams over a connection obtained from the inner dialer. The first
// Dial establishes the underlying connection; later calls reuse it
// until the session dies, then redial.
type Dialer struct {
	inner transport.Dialer

	mu   sync.Mutex
	sess *yamux.Session
}

// NewDialer creates a multiplexing dialer on top of inner.
func NewDialer(inner transport.Dialer) *Dialer {
	return &Dialer{inner: inner}
}

// Dial opens a new logical stream, establishing or re-establishing the
// underlying connection as needed.
func (d *Dialer) Dial(ctx context.Context) (net.Conn, error) {
	sess, err := d.session(ctx)
	if err != nil {
		return nil, err
	}

	stream, err := sess.OpenStream()
	if err != nil {
		return nil, fmt.Errorf("yamux OpenStream: %w", err)
	}
	return stream, nil
}

// Close tears down the underlying session and connection. Logical
// streams handed out earlier are closed with it.
func (d *Dialer) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.sess == nil {
		return nil
	}
	err := d.sess.Close()
	d.sess = nil
	return err
}

func (d *Dialer) session(ctx context.Context) (*yamux.Session, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.sess != nil && !d.sess.IsClosed() {
		return d.sess, nil
	}

	conn, err := d.inner.Dial(ctx)
	if err != nil {
		return nil, fmt.Errorf("inner dial: %w", err)
	}

	sess, err := yamux.Client(conn, config())
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("yamux.Client(conn): %w", err)
	}

	d.sess = sess
	return sess, nil
}

func config() *yamux.Config {
	cfg := yamux.DefaultConfig()

	cfg.LogOutput = nil
	cfg.Logger = stdlog.New(io.Discard, "", stdlog.LstdFlags) // discard all console logging in yamux

	return cfg
}
