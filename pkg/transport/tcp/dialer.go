// Package tcp provides the TCP transport implementation. It implements
// the transport.Dialer interface for TCP network connections.
package tcp

import (
	"context"
	"fmt"
	"net"
)

// DialContextFunc is a function that dials a TCP connection. It returns
// a net.Conn to allow for mock implementations.
type DialContextFunc func(ctx context.Context, network string, laddr, raddr *net.TCPAddr) (net.Conn, error)

// Dialer implements the transport.Dialer interface for TCP connections.
type Dialer struct {
	tcpAddr *net.TCPAddr
	dialFn  DialContextFunc
}

// NewDialer creates a new TCP dialer for the specified address. The
// dialFn parameter is optional and can be nil to use the default
// implementation.
func NewDialer(addr string, dialFn DialContextFunc) (*Dialer, error) {
	tcpAddr, err := net.ResolveTCPAddr("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("net.ResolveTCPAddr(tcp, %s): %s", addr, err)
	}

	if dialFn == nil {
		dialFn = defaultDialFn
	}

	return &Dialer{
		tcpAddr: tcpAddr,
		dialFn:  dialFn,
	}, nil
}

// Dial establishes a TCP connection to the configured address with
// keep-alive enabled. The context cancels a pending dial.
func (d *Dialer) Dial(ctx context.Context) (net.Conn, error) {
	conn, err := d.dialFn(ctx, "tcp", nil, d.tcpAddr)
	if err != nil {
		return nil, fmt.Errorf("dial tcp %s: %w", d.tcpAddr.String(), err)
	}

	if tcpConn, ok := conn.(*net.TCPConn); ok {
		tcpConn.SetKeepAlive(true)
	}
	return conn, nil
}

func defaultDialFn(ctx context.Context, network string, laddr, raddr *net.TCPAddr) (net.Conn, error) {
	d := net.Dialer{}
	if laddr != nil {
		d.LocalAddr = laddr
	}
	return d.DialContext(ctx, network, raddr.String())
}
