package connector

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"testing"
	"time"

	"maybetls/mocks"
	mocktcp "maybetls/mocks/tcp"
	"maybetls/pkg/crypto"
	"maybetls/pkg/destination"
	"maybetls/pkg/tlsengine"
	"maybetls/pkg/transport"
	"maybetls/pkg/transport/tcp"
)

// recordingDialer hands out one end of a net.Pipe and records dials.
type recordingDialer struct {
	mu    sync.Mutex
	dials int
	raws  []net.Conn
	fail  error
}

func (d *recordingDialer) Dial(ctx context.Context) (net.Conn, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.dials++
	if d.fail != nil {
		return nil, d.fail
	}

	client, server := net.Pipe()
	go func() {
		// drain so writes through the pipe don't block
		buf := make([]byte, 1024)
		for {
			if _, err := server.Read(buf); err != nil {
				return
			}
		}
	}()
	d.raws = append(d.raws, client)
	return client, nil
}

func (d *recordingDialer) factory() DialerFactory {
	return func(dest destination.Destination) (transport.Dialer, error) {
		return d, nil
	}
}

func (d *recordingDialer) dialCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dials
}

func mustDest(t *testing.T, rawURL string) destination.Destination {
	t.Helper()
	dest, err := destination.Resolve(rawURL, nil)
	if err != nil {
		t.Fatalf("destination.Resolve(%q) error = %v", rawURL, err)
	}
	return dest
}

func TestConnectPlainNeverInvokesEngine(t *testing.T) {
	t.Parallel()

	dialer := &recordingDialer{}
	engine := &mocks.TLSEngine{Protocol: "h2"}

	s, err := New(WithDialerFactory(dialer.factory()), WithEngine(engine))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	conn, err := s.Connect(context.Background(), mustDest(t, "http://example.com"))
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer conn.Close()

	if engine.Calls() != 0 {
		t.Errorf("engine handshakes = %d, want 0 for plain scheme", engine.Calls())
	}
	if conn.IsTLS() {
		t.Error("IsTLS() = true, want plain variant")
	}
	if got := conn.Protocol(); got != "" {
		t.Errorf("Protocol() = %q, want empty on plain variant", got)
	}
}

func TestConnectSecureDialsThenHandshakesOnce(t *testing.T) {
	t.Parallel()

	dialer := &recordingDialer{}
	engine := &mocks.TLSEngine{Protocol: "h2"}

	s, err := New(WithDialerFactory(dialer.factory()), WithEngine(engine))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	conn, err := s.Connect(context.Background(), mustDest(t, "https://example.com"))
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer conn.Close()

	if got := dialer.dialCount(); got != 1 {
		t.Errorf("transport dials = %d, want exactly 1", got)
	}
	if got := engine.Calls(); got != 1 {
		t.Errorf("engine handshakes = %d, want exactly 1", got)
	}
	if names := engine.ServerNames(); len(names) != 1 || names[0] != "example.com" {
		t.Errorf("handshake server names = %v, want [example.com]", names)
	}
	if !conn.IsTLS() {
		t.Error("IsTLS() = false, want secure variant")
	}
	if got := conn.Protocol(); got != "h2" {
		t.Errorf("Protocol() = %q, want h2", got)
	}
}

func TestConnectTransportFailure(t *testing.T) {
	t.Parallel()

	cause := fmt.Errorf("connection refused")
	dialer := &recordingDialer{fail: cause}
	engine := &mocks.TLSEngine{}

	s, err := New(WithDialerFactory(dialer.factory()), WithEngine(engine))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	conn, err := s.Connect(context.Background(), mustDest(t, "https://example.com"))
	if conn != nil {
		t.Error("Connect() returned a stream on transport failure")
	}
	if !errors.Is(err, &TransportError{}) {
		t.Errorf("error = %v, want TransportError", err)
	}
	if !errors.Is(err, cause) {
		t.Errorf("error does not preserve cause: %v", err)
	}
	if engine.Calls() != 0 {
		t.Errorf("engine handshakes = %d, want 0 after transport failure", engine.Calls())
	}
}

func TestConnectHandshakeFailure(t *testing.T) {
	t.Parallel()

	cause := fmt.Errorf("certificate rejected")
	dialer := &recordingDialer{}
	engine := &mocks.TLSEngine{Err: cause}

	s, err := New(WithDialerFactory(dialer.factory()), WithEngine(engine))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	conn, err := s.Connect(context.Background(), mustDest(t, "https://example.com"))
	if conn != nil {
		t.Error("Connect() returned a stream on handshake failure")
	}
	if !errors.Is(err, &HandshakeError{}) {
		t.Errorf("error = %v, want HandshakeError", err)
	}
	if !errors.Is(err, cause) {
		t.Errorf("error does not preserve cause: %v", err)
	}

	// the raw connection must be closed on the failure path
	dialer.mu.Lock()
	raw := dialer.raws[0]
	dialer.mu.Unlock()
	if _, err := raw.Write([]byte("x")); err == nil {
		t.Error("raw conn still writable after handshake failure")
	}
}

func TestConnectCancelReleasesSocket(t *testing.T) {
	t.Parallel()

	network := mocktcp.NewMockTCPNetwork()
	srv, err := mocktcp.StartEchoServer(network, "127.0.0.1:8443", nil)
	if err != nil {
		t.Fatalf("StartEchoServer() error = %v", err)
	}
	defer srv.Close()

	engine := &mocks.TLSEngine{Block: true}
	factory := func(dest destination.Destination) (transport.Dialer, error) {
		return tcp.NewDialer(dest.Authority, network.DialTCPContext)
	}

	s, err := New(WithDialerFactory(factory), WithEngine(engine))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	baseline := network.OpenConns()

	ctx, cancel := context.WithCancel(context.Background())
	type result struct {
		conn interface{ Close() error }
		err  error
	}
	resCh := make(chan result, 1)
	go func() {
		conn, err := s.Connect(ctx, mustDest(t, "https://127.0.0.1:8443"))
		if conn == nil {
			resCh <- result{nil, err}
			return
		}
		resCh <- result{conn, err}
	}()

	// wait until the handshake is pending, then abandon the attempt
	deadline := time.Now().Add(5 * time.Second)
	for engine.Calls() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("timeout waiting for handshake to start")
		}
		time.Sleep(time.Millisecond)
	}
	cancel()

	res := <-resCh
	if res.conn != nil {
		t.Error("Connect() returned a stream for a cancelled attempt")
	}
	if res.err == nil {
		t.Fatal("Connect() error = nil, want cancellation error")
	}
	if !errors.Is(res.err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled in chain", res.err)
	}

	if got := network.OpenConns(); got != baseline {
		t.Errorf("OpenConns() = %d after cancel, want baseline %d", got, baseline)
	}
}

func TestConnectURLDestinationError(t *testing.T) {
	t.Parallel()

	s, err := New(WithDialerFactory((&recordingDialer{}).factory()), WithEngine(&mocks.TLSEngine{}))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	tests := []struct {
		name   string
		rawURL string
	}{
		{
			name:   "unknown scheme",
			rawURL: "ftp://example.com",
		},
		{
			name:   "missing host",
			rawURL: "https://",
		},
		{
			name:   "no scheme",
			rawURL: "/relative/path",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			conn, err := s.ConnectURL(context.Background(), tc.rawURL)
			if conn != nil {
				t.Error("ConnectURL() returned a stream for a malformed target")
			}
			if !errors.Is(err, &DestinationError{}) {
				t.Errorf("error = %v, want DestinationError", err)
			}
		})
	}
}

func TestConnectSecureOnlyPolicy(t *testing.T) {
	t.Parallel()

	s, err := New(
		WithDialerFactory((&recordingDialer{}).factory()),
		WithEngine(&mocks.TLSEngine{}),
		WithPolicy(destination.SecureOnly(nil)),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	_, err = s.ConnectURL(context.Background(), "http://example.com")
	if !errors.Is(err, &DestinationError{}) {
		t.Errorf("error = %v, want DestinationError for plain scheme under SecureOnly", err)
	}
	if !errors.Is(err, destination.ErrSchemeNotAllowed) {
		t.Errorf("error = %v, want ErrSchemeNotAllowed in chain", err)
	}
}

func TestNewOptionValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		opt  Option
	}{
		{
			name: "nil dialer factory",
			opt:  WithDialerFactory(nil),
		},
		{
			name: "nil engine",
			opt:  WithEngine(nil),
		},
		{
			name: "nil policy",
			opt:  WithPolicy(nil),
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if _, err := New(tc.opt); err == nil {
				t.Error("New() = nil error, want validation error")
			}
		})
	}
}

func TestConnectLoopbackRoundTrip(t *testing.T) {
	t.Parallel()

	const key = "round-trip-key"

	network := mocktcp.NewMockTCPNetwork()
	serverCfg, err := crypto.ServerTLSConfig(key, []string{"h2"})
	if err != nil {
		t.Fatalf("ServerTLSConfig() error = %v", err)
	}
	srv, err := mocktcp.StartEchoServer(network, "127.0.0.1:8443", serverCfg)
	if err != nil {
		t.Fatalf("StartEchoServer() error = %v", err)
	}
	defer srv.Close()

	engine, err := tlsengine.NewStd(
		tlsengine.WithNextProtos("h2"),
		tlsengine.WithSharedKey(key),
	)
	if err != nil {
		t.Fatalf("tlsengine.NewStd() error = %v", err)
	}

	factory := func(dest destination.Destination) (transport.Dialer, error) {
		return tcp.NewDialer(dest.Authority, network.DialTCPContext)
	}

	s, err := New(WithDialerFactory(factory), WithEngine(engine))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	conn, err := s.ConnectURL(context.Background(), "https://127.0.0.1:8443")
	if err != nil {
		t.Fatalf("ConnectURL() error = %v", err)
	}
	defer conn.Close()

	if got := conn.Protocol(); got != "h2" {
		t.Errorf("Protocol() = %q, want h2", got)
	}

	// repeated write/read cycles through the encrypted echo must match
	// byte for byte
	for i := 0; i < 3; i++ {
		msg := []byte(fmt.Sprintf("round trip %d through the tunnel", i))
		if _, err := conn.Write(msg); err != nil {
			t.Fatalf("Write() cycle %d error = %v", i, err)
		}

		buf := make([]byte, len(msg))
		if _, err := io.ReadFull(conn, buf); err != nil {
			t.Fatalf("Read() cycle %d error = %v", i, err)
		}
		if string(buf) != string(msg) {
			t.Errorf("cycle %d echo = %q, want %q", i, buf, msg)
		}
	}
}
