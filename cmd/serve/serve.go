// Package serve implements the serve command, a loopback TLS echo
// server for exercising the client commands without external
// infrastructure.
package serve

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"

	"github.com/urfave/cli/v3"

	"maybetls/cmd/shared"
	"maybetls/pkg/crypto"
	"maybetls/pkg/log"
)

const plainFlag = "plain"

// GetCommand returns the CLI command for the echo server.
func GetCommand() *cli.Command {
	return &cli.Command{
		Name:      "serve",
		Usage:     "Run a TLS echo server for testing the client commands",
		ArgsUsage: "host:port",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			args := cmd.Args()
			if args.Len() != 1 {
				return fmt.Errorf("must provide exactly one listen address, got %d", args.Len())
			}
			addr := args.Get(0)

			var tlsCfg *tls.Config
			if !cmd.Bool(plainFlag) {
				cfg, err := crypto.ServerTLSConfig(cmd.String(shared.KeyFlag), cmd.StringSlice(shared.ALPNFlag))
				if err != nil {
					return fmt.Errorf("building TLS config: %w", err)
				}
				tlsCfg = cfg
			}

			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return fmt.Errorf("listening on %s: %w", addr, err)
			}

			go func() {
				<-ctx.Done()
				ln.Close()
			}()

			log.InfoMsg("Echo server listening on %s\n", ln.Addr())

			for {
				conn, err := ln.Accept()
				if err != nil {
					if ctx.Err() != nil {
						return nil
					}
					return fmt.Errorf("accept: %w", err)
				}
				go serveConn(conn, tlsCfg)
			}
		},
		Flags: append([]cli.Flag{
			&cli.BoolFlag{
				Name:     plainFlag,
				Usage:    "Echo without TLS",
				Value:    false,
				Required: false,
			},
		}, shared.GetCommonFlags()...),
	}
}

func serveConn(conn net.Conn, tlsCfg *tls.Config) {
	defer conn.Close()

	log.InfoMsg("Connection from %s\n", conn.RemoteAddr())

	if tlsCfg != nil {
		tlsConn := tls.Server(conn, tlsCfg)
		if err := tlsConn.Handshake(); err != nil {
			log.ErrorMsg("TLS handshake with %s: %s\n", conn.RemoteAddr(), err)
			return
		}
		proto := tlsConn.ConnectionState().NegotiatedProtocol
		if proto == "" {
			proto = "none"
		}
		log.InfoMsg("TLS established with %s, protocol %s\n", conn.RemoteAddr(), proto)
		conn = tlsConn
	}

	io.Copy(conn, conn)
	log.InfoMsg("Connection from %s closed\n", conn.RemoteAddr())
}
