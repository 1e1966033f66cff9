// Package probe implements the probe command, which establishes a
// connection to a target URL and reports the resulting stream variant
// and TLS parameters.
package probe

import (
	"context"
	"crypto/tls"
	"fmt"

	"github.com/urfave/cli/v3"

	"maybetls/cmd/shared"
	"maybetls/pkg/log"
)

// GetCommand returns the CLI command for probing a target.
func GetCommand() *cli.Command {
	return &cli.Command{
		Name:        "probe",
		Usage:       "Connect to a target URL and report the negotiated connection",
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

			ctx, cancel := context.WithTimeout(ctx, shared.Timeout(cmd))
			defer cancel()

			conn, err := svc.ConnectURL(ctx, rawURL)
			if err != nil {
				return fmt.Errorf("connecting: %w", err)
			}
			defer conn.Close()

			log.InfoMsg("Connected to %s\n", conn.RemoteAddr())

			state, ok := conn.ConnectionState()
			if !ok {
				log.InfoMsg("Plaintext connection, negotiated protocol: none\n")
				return nil
			}

			log.InfoMsg("TLS %s, cipher %s\n", tls.VersionName(state.Version), tls.CipherSuiteName(state.CipherSuite))
			proto := conn.Protocol()
			if proto == "" {
				proto = "none"
			}
			log.InfoMsg("Negotiated protocol: %s\n", proto)

			return nil
		},
		Flags: shared.GetCommonFlags(),
	}
}
