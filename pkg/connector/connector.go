// Package connector establishes client connections for HTTP-style
// callers: it dials a transport, upgrades to TLS when the destination's
// scheme requires it, and returns one unified stream either way. All
// cryptography lives in the TLS engine; the connector only sequences
// dial and handshake and tags failures with their stage.
package connector

import (
	"context"
	"fmt"

	"maybetls/pkg/destination"
	"maybetls/pkg/log"
	"maybetls/pkg/stream"
	"maybetls/pkg/tlsengine"
	"maybetls/pkg/transport"
	"maybetls/pkg/transport/tcp"
)

// DialerFactory produces a transport dialer for a destination. The
// transport layer is scheme-agnostic: the factory sees the destination
// only to learn where to dial.
type DialerFactory func(dest destination.Destination) (transport.Dialer, error)

// Service wraps a transport and a TLS engine behind a single connect
// operation. It is immutable after New and safe for concurrent use;
// every call owns its own destination, raw connection and resulting
// stream.
type Service struct {
	newDialer DialerFactory
	engine    tlsengine.Engine
	policy    destination.Policy
	logger    *log.Logger
}

// Option configures a Service at construction time.
type Option func(*Service) error

// New creates a connector Service. Without options it dials TCP,
// performs handshakes with the crypto/tls engine offering h2 and
// http/1.1, and classifies schemes with destination.DefaultPolicy.
func New(opts ...Option) (*Service, error) {
	s := &Service{
		newDialer: defaultDialerFactory,
		policy:    destination.DefaultPolicy,
		logger:    log.NewLogger(false),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	if s.engine == nil {
		engine, err := tlsengine.NewStd(tlsengine.WithNextProtos("h2", "http/1.1"))
		if err != nil {
			return nil, fmt.Errorf("default TLS engine: %w", err)
		}
		s.engine = engine
	}

	return s, nil
}

// WithDialerFactory replaces the transport used for all connections.
func WithDialerFactory(f DialerFactory) Option {
	return func(s *Service) error {
		if f == nil {
			return fmt.Errorf("connector: nil dialer factory")
		}
		s.newDialer = f
		return nil
	}
}

// WithEngine replaces the TLS engine used for secure destinations.
func WithEngine(e tlsengine.Engine) Option {
	return func(s *Service) error {
		if e == nil {
			return fmt.Errorf("connector: nil TLS engine")
		}
		s.engine = e
		return nil
	}
}

// WithPolicy replaces the scheme classification policy used by Resolve.
func WithPolicy(p destination.Policy) Option {
	return func(s *Service) error {
		if p == nil {
			return fmt.Errorf("connector: nil policy")
		}
		s.policy = p
		return nil
	}
}

// WithLogger sets the logger for verbose connection progress output.
func WithLogger(l *log.Logger) Option {
	return func(s *Service) error {
		s.logger = l
		return nil
	}
}

func defaultDialerFactory(dest destination.Destination) (transport.Dialer, error) {
	return tcp.NewDialer(dest.Authority, nil)
}

// Resolve derives a Destination from a target URL using the service's
// scheme policy.
func (s *Service) Resolve(rawURL string) (destination.Destination, error) {
	dest, err := destination.Resolve(rawURL, s.policy)
	if err != nil {
		return dest, &DestinationError{Target: rawURL, Err: err}
	}
	return dest, nil
}

// Connect dials the destination's transport and, for secure
// destinations, performs a TLS handshake with the destination host as
// the server name. It makes at most one dial and one handshake attempt;
// retries are the caller's business. Cancelling ctx aborts a pending
// dial or handshake without leaking the socket.
func (s *Service) Connect(ctx context.Context, dest destination.Destination) (*stream.Conn, error) {
	if dest.Host == "" {
		return nil, &DestinationError{Target: dest.String(), Err: destination.ErrMissingHost}
	}

	dialer, err := s.newDialer(dest)
	if err != nil {
		return nil, &TransportError{Authority: dest.Authority, Err: err}
	}

	s.logger.VerboseMsg("Dialing %s\n", dest.Authority)
	raw, err := dialer.Dial(ctx)
	if err != nil {
		return nil, &TransportError{Authority: dest.Authority, Err: err}
	}

	if dest.Scheme == destination.SchemePlain {
		s.logger.VerboseMsg("Connected to %s\n", dest.Authority)
		return stream.NewPlain(raw), nil
	}

	s.logger.VerboseMsg("Starting TLS handshake with %s\n", dest.Host)
	tlsConn, err := s.engine.Handshake(ctx, raw, dest.Host)
	if err != nil {
		raw.Close()
		return nil, &HandshakeError{Host: dest.Host, Err: err}
	}

	out := stream.NewSecure(tlsConn)
	s.logger.VerboseMsg("Connected to %s, negotiated protocol %q\n", dest.Authority, out.Protocol())
	return out, nil
}

// ConnectURL resolves a target URL and connects to it.
func (s *Service) ConnectURL(ctx context.Context, rawURL string) (*stream.Conn, error) {
	dest, err := s.Resolve(rawURL)
	if err != nil {
		return nil, err
	}
	return s.Connect(ctx, dest)
}
