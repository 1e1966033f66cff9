// Package tcp provides mock TCP network primitives for testing.
package tcp

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"
)

// MockTCPNetwork simulates a TCP network for testing without real
// network connections. It allows creating listeners and dialers that
// communicate through in-memory pipes, tracks how many connection
// pairs are open (for leak assertions) and can be switched to refuse
// all dials.
type MockTCPNetwork struct {
	listeners    map[string]*MockTCPListener
	mu           sync.Mutex
	listenerCond *sync.Cond // signals listener changes

	openPairs int
	refuse    bool
}

// NewMockTCPNetwork creates a new mock TCP network.
func NewMockTCPNetwork() *MockTCPNetwork {
	m := &MockTCPNetwork{
		listeners: make(map[string]*MockTCPListener),
	}
	m.listenerCond = sync.NewCond(&m.mu)
	return m
}

// OpenConns returns the number of connection pairs that have been
// dialed and not yet closed by either side.
func (m *MockTCPNetwork) OpenConns() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.openPairs
}

// SetRefuse makes every subsequent dial fail with a refused error,
// simulating an unreachable destination.
func (m *MockTCPNetwork) SetRefuse(refuse bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refuse = refuse
}

func (m *MockTCPNetwork) pairOpened() {
	m.mu.Lock()
	m.openPairs++
	m.mu.Unlock()
}

func (m *MockTCPNetwork) pairClosed() {
	m.mu.Lock()
	m.openPairs--
	m.mu.Unlock()
}

// ListenTCP creates a mock TCP listener on the specified address.
func (m *MockTCPNetwork) ListenTCP(network string, laddr *net.TCPAddr) (net.Listener, error) {
	if network != "tcp" {
		return nil, fmt.Errorf("unsupported network type: %s", network)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	addr := laddr.String()
	if _, exists := m.listeners[addr]; exists {
		return nil, fmt.Errorf("address already in use: %s", addr)
	}

	listener := &MockTCPListener{
		addr:       laddr,
		connCh:     make(chan *MockTCPConn, 10),
		acceptedCh: make(chan *MockTCPConn, 16),
		closeCh:    make(chan struct{}),
		network:    m,
	}
	m.listeners[addr] = listener
	m.listenerCond.Broadcast() // signal that a new listener is available

	return listener, nil
}

// DialTCP creates a mock TCP connection to the specified address.
func (m *MockTCPNetwork) DialTCP(network string, laddr, raddr *net.TCPAddr) (net.Conn, error) {
	if network != "tcp" {
		return nil, fmt.Errorf("unsupported network type: %s", network)
	}

	m.mu.Lock()
	refused := m.refuse
	listener, exists := m.listeners[raddr.String()]
	m.mu.Unlock()

	if refused {
		return nil, fmt.Errorf("connection refused: %s", raddr.String())
	}
	if !exists {
		return nil, fmt.Errorf("connection refused: no listener on %s", raddr.String())
	}

	// If laddr is nil, generate a mock ephemeral local address
	if laddr == nil {
		laddr = &net.TCPAddr{
			IP:   net.IPv4(127, 0, 0, 1),
			Port: 50000 + (int(time.Now().UnixNano()) % 10000),
		}
	}

	// Create a pair of connected pipes sharing one accounting record
	clientConn, serverConn := net.Pipe()
	pair := &pairState{network: m}
	m.pairOpened()

	mockClient := &MockTCPConn{
		Conn:       clientConn,
		localAddr:  laddr,
		remoteAddr: raddr,
		pair:       pair,
	}
	mockServer := &MockTCPConn{
		Conn:       serverConn,
		localAddr:  raddr,
		remoteAddr: laddr,
		pair:       pair,
	}

	// Send the server side to the listener
	select {
	case listener.connCh <- mockServer:
		// Connection established
	case <-listener.closeCh:
		mockClient.Close()
		serverConn.Close()
		return nil, fmt.Errorf("connection refused: listener closed")
	case <-time.After(1 * time.Second):
		mockClient.Close()
		serverConn.Close()
		return nil, fmt.Errorf("connection timeout")
	}

	return mockClient, nil
}

// DialTCPContext is a context-aware wrapper matching the
// tcp.DialContextFunc signature of the real transport. The mock network
// is in-memory, so it only needs to honor an already-cancelled context.
func (m *MockTCPNetwork) DialTCPContext(ctx context.Context, network string, laddr, raddr *net.TCPAddr) (net.Conn, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	return m.DialTCP(network, laddr, raddr)
}

// pairState is the accounting record shared by the two ends of a mock
// connection. The pair counts as closed as soon as either side closes.
type pairState struct {
	network *MockTCPNetwork
	once    sync.Once
}

func (p *pairState) closed() {
	p.once.Do(p.network.pairClosed)
}
