package tcp

import (
	"crypto/tls"
	"io"
	"net"
)

// Server is a simple echo server for the mock network. Each accepted
// connection is served by copying everything read back to the peer,
// optionally after a server-side TLS handshake.
type Server struct {
	ln net.Listener
}

// StartEchoServer listens on addr inside the mock network and echoes
// on every accepted connection. A non-nil tlsCfg upgrades each
// connection with a server-side TLS handshake first.
func StartEchoServer(m *MockTCPNetwork, addr string, tlsCfg *tls.Config) (*Server, error) {
	laddr, err := net.ResolveTCPAddr("tcp", addr)
	if err != nil {
		return nil, err
	}

	ln, err := m.ListenTCP("tcp", laddr)
	if err != nil {
		return nil, err
	}

	s := &Server{ln: ln}
	go s.serve(tlsCfg)
	return s, nil
}

// Close stops accepting. Connections already being served finish on
// their own.
func (s *Server) Close() error {
	return s.ln.Close()
}

func (s *Server) serve(tlsCfg *tls.Config) {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			return
		}

		go func(c net.Conn) {
			defer c.Close()
			if tlsCfg != nil {
				tc := tls.Server(c, tlsCfg)
				if err := tc.Handshake(); err != nil {
					return
				}
				c = tc
			}
			io.Copy(c, c)
		}(conn)
	}
}
