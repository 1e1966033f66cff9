package shared

import (
	"fmt"
	"sync"

	"maybetls/pkg/connector"
	"maybetls/pkg/destination"
	"maybetls/pkg/transport"
	"maybetls/pkg/transport/kcp"
	"maybetls/pkg/transport/mux"
	"maybetls/pkg/transport/tcp"
	"maybetls/pkg/transport/ws"
)

// DialerFactory maps a transport name from the CLI to a
// connector.DialerFactory.
func DialerFactory(name string) (connector.DialerFactory, error) {
	switch name {
	case "", "tcp":
		return func(dest destination.Destination) (transport.Dialer, error) {
			return tcp.NewDialer(dest.Authority, nil)
		}, nil

	case "ws":
		return func(dest destination.Destination) (transport.Dialer, error) {
			return ws.NewDialer(dest.Authority), nil
		}, nil

	case "kcp":
		return func(dest destination.Destination) (transport.Dialer, error) {
			return kcp.NewDialer(dest.Authority, nil)
		}, nil

	case "mux":
		// one shared yamux session per authority
		var mu sync.Mutex
		dialers := make(map[string]*mux.Dialer)
		return func(dest destination.Destination) (transport.Dialer, error) {
			mu.Lock()
			defer mu.Unlock()

			if d, ok := dialers[dest.Authority]; ok {
				return d, nil
			}
			inner, err := tcp.NewDialer(dest.Authority, nil)
			if err != nil {
				return nil, err
			}
			d := mux.NewDialer(inner)
			dialers[dest.Authority] = d
			return d, nil
		}, nil

	default:
		return nil, fmt.Errorf("unknown transport %q: must be tcp|ws|kcp|mux", name)
	}
}
