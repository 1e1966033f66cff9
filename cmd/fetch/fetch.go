// Package fetch implements the fetch command, which issues an HTTP GET
// over a connection established by the connector. The negotiated ALPN
// protocol decides whether the request is driven over HTTP/2 or
// HTTP/1.1 — the same decision an HTTP client makes with the
// connector's capability query.
package fetch

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/urfave/cli/v3"
	"golang.org/x/net/http2"

	"maybetls/cmd/shared"
	"maybetls/pkg/log"
	"maybetls/pkg/stream"
)

// GetCommand returns the CLI command for fetching a URL.
func GetCommand() *cli.Command {
	return &cli.Command{
		Name:        "fetch",
		Usage:       "HTTP GET a URL over a plain or TLS connection and print the body",
		Description: shared.GetBaseDescription(),
		ArgsUsage:   "url",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			rawURL, err := shared.TargetURL(cmd)
			if err != nil {
				return err
			}

			svc, err := shared.BuildService(cmd)
			if err != nil {
				return err
			}

			connectCtx, cancel := context.WithTimeout(ctx, shared.Timeout(cmd))
			defer cancel()

			conn, err := svc.ConnectURL(connectCtx, rawURL)
			if err != nil {
				return fmt.Errorf("connecting: %w", err)
			}
			defer conn.Close()

			req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
			if err != nil {
				return fmt.Errorf("building request: %w", err)
			}

			resp, err := roundTrip(conn, req)
			if err != nil {
				return fmt.Errorf("request failed: %w", err)
			}
			defer resp.Body.Close()

			log.InfoMsg("%s %s\n", resp.Proto, resp.Status)
			if _, err := io.Copy(os.Stdout, resp.Body); err != nil {
				return fmt.Errorf("reading body: %w", err)
			}

			return nil
		},
		Flags: shared.GetCommonFlags(),
	}
}

// roundTrip drives the request over the established stream, speaking
// HTTP/2 when that is what the handshake negotiated.
func roundTrip(conn *stream.Conn, req *http.Request) (*http.Response, error) {
	if conn.Protocol() == http2.NextProtoTLS {
		tr := &http2.Transport{}
		cc, err := tr.NewClientConn(conn)
		if err != nil {
			return nil, fmt.Errorf("http2 client conn: %w", err)
		}
		return cc.RoundTrip(req)
	}

	if err := req.Write(conn); err != nil {
		return nil, fmt.Errorf("writing request: %w", err)
	}
	resp, err := http.ReadResponse(bufio.NewReader(conn), req)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	return resp, nil
}
