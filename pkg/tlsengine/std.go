package tlsengine

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net"

	"maybetls/pkg/crypto"
)

// Std is the crypto/tls-backed Engine. It holds an immutable base
// configuration; each handshake clones it and fills in the server name,
// so one Std instance is safe for concurrent use.
type Std struct {
	base *tls.Config
}

// Option configures a Std engine at construction time.
type Option func(*tls.Config) error

// NewStd creates a crypto/tls engine. Without options it verifies
// server certificates against the system roots and negotiates no ALPN
// protocols.
func NewStd(opts ...Option) (*Std, error) {
	cfg := &tls.Config{
		MinVersion: tls.VersionTLS12,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	return &Std{base: cfg}, nil
}

// WithConfig replaces the base configuration entirely. Later options
// apply on top of it.
func WithConfig(cfg *tls.Config) Option {
	return func(dst *tls.Config) error {
		if cfg == nil {
			return fmt.Errorf("tlsengine: nil config")
		}
		*dst = *cfg.Clone()
		return nil
	}
}

// WithNextProtos sets the ALPN protocols offered during the handshake,
// e.g. "h2", "http/1.1".
func WithNextProtos(protos ...string) Option {
	return func(cfg *tls.Config) error {
		cfg.NextProtos = protos
		return nil
	}
}

// WithRootCAs pins server certificate verification to the given pool.
func WithRootCAs(pool *x509.CertPool) Option {
	return func(cfg *tls.Config) error {
		cfg.RootCAs = pool
		return nil
	}
}

// WithInsecureSkipVerify disables certificate verification. For testing
// against self-signed peers only.
func WithInsecureSkipVerify() Option {
	return func(cfg *tls.Config) error {
		cfg.InsecureSkipVerify = true
		return nil
	}
}

// WithSharedKey switches the engine to shared-key mutual
// authentication: both peers derive the same CA from the key and pin
// each other's certificates to it. ALPN protocols set before this
// option are preserved.
func WithSharedKey(key string) Option {
	return func(cfg *tls.Config) error {
		if key == "" {
			return fmt.Errorf("tlsengine: empty shared key")
		}
		keyed, err := crypto.ClientTLSConfig(key, cfg.NextProtos)
		if err != nil {
			return fmt.Errorf("tlsengine: %w", err)
		}
		*cfg = *keyed.Clone()
		return nil
	}
}

// Handshake performs the TLS client handshake over raw. The destination
// host becomes the SNI value and verification target unless the base
// configuration pinned its own ServerName.
func (e *Std) Handshake(ctx context.Context, raw net.Conn, serverName string) (Conn, error) {
	cfg := e.base.Clone()
	if cfg.ServerName == "" {
		cfg.ServerName = serverName
	}

	tlsConn := tls.Client(raw, cfg)
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		return nil, fmt.Errorf("tls handshake with %s: %w", serverName, err)
	}

	return tlsConn, nil
}
