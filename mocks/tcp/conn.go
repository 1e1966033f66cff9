package tcp

import "net"

// MockTCPConn is a mock implementation of net.TCPConn.
type MockTCPConn struct {
	net.Conn
	localAddr  *net.TCPAddr
	remoteAddr *net.TCPAddr
	pair       *pairState
}

// Close closes the underlying pipe and marks the connection pair as
// closed in the network's accounting.
func (c *MockTCPConn) Close() error {
	if c.pair != nil {
		c.pair.closed()
	}
	return c.Conn.Close()
}

// LocalAddr returns the local network address.
func (c *MockTCPConn) LocalAddr() net.Addr {
	if c.localAddr != nil {
		return c.localAddr
	}
	return c.Conn.LocalAddr()
}

// RemoteAddr returns the remote network address.
func (c *MockTCPConn) RemoteAddr() net.Addr {
	if c.remoteAddr != nil {
		return c.remoteAddr
	}
	return c.Conn.RemoteAddr()
}

var _ net.Conn = (*MockTCPConn)(nil)
