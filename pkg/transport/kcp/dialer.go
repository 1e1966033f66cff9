// Package kcp provides a reliable-UDP transport implementation. It
// implements the transport.Dialer interface using the KCP protocol for
// reliable delivery over UDP datagrams.
package kcp

import (
	"context"
	"fmt"
	"net"

	kcp "github.com/xtaci/kcp-go/v5"
)

// PacketListenerFunc is a function that creates a packet listener. It
// returns a net.PacketConn to allow for mock implementations.
type PacketListenerFunc func(network, address string) (net.PacketConn, error)

// Dialer implements the transport.Dialer interface for KCP-over-UDP
// connections.
type Dialer struct {
	remoteAddr   *net.UDPAddr
	packetConnFn PacketListenerFunc
}

// NewDialer creates a new KCP dialer for the specified address. The
// packetConnFn parameter is optional and can be nil to use
// net.ListenPacket.
func NewDialer(addr string, packetConnFn PacketListenerFunc) (*Dialer, error) {
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("net.ResolveUDPAddr(udp, %s): %w", addr, err)
	}

	if packetConnFn == nil {
		packetConnFn = net.ListenPacket
	}

	return &Dialer{
		remoteAddr:   udpAddr,
		packetConnFn: packetConnFn,
	}, nil
}

// Dial establishes a KCP session over UDP to the configured address.
func (d *Dialer) Dial(ctx context.Context) (net.Conn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// ":0" for the local address lets the OS pick an ephemeral port
	conn, err := d.packetConnFn("udp", ":0")
	if err != nil {
		return nil, fmt.Errorf("net.ListenPacket(udp, :0): %w", err)
	}

	kcpConn, err := kcp.NewConn(d.remoteAddr.String(), nil, 0, 0, conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("kcp.NewConn(%s): %w", d.remoteAddr.String(), err)
	}

	// nodelay mode, 10ms update interval, fast resend after 2 crossed
	// ACKs, congestion control off
	kcpConn.SetNoDelay(1, 10, 2, 1)
	kcpConn.SetStreamMode(true)
	kcpConn.SetWindowSize(1024, 1024)

	return kcpConn, nil
}
