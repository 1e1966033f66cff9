// Package shared provides common CLI flag definitions and helpers used
// across the maybetls command-line interface.
package shared

import (
	"fmt"
	"strings"
	"time"

	"github.com/urfave/cli/v3"

	"maybetls/pkg/connector"
	"maybetls/pkg/log"
	"maybetls/pkg/tlsengine"
)

const categoryCommon = "common"

// TransportFlag is the name of the flag selecting the transport.
const TransportFlag = "transport"

// ALPNFlag is the name of the flag listing ALPN protocols to offer.
const ALPNFlag = "alpn"

// InsecureFlag is the name of the flag disabling certificate verification.
const InsecureFlag = "insecure"

// KeyFlag is the name of the flag for shared-key mutual TLS authentication.
const KeyFlag = "key"

// VerboseFlag is the name of the flag to enable verbose progress logging.
const VerboseFlag = "verbose"

// TimeoutFlag is the name of the flag for the connect timeout in milliseconds.
const TimeoutFlag = "timeout"

// GetBaseDescription returns the base description for target URLs used
// in CLI commands.
func GetBaseDescription() string {
	return strings.Join([]string{
		"Specify the target as a URL like https://example.com:8443 (supports http|https|ws|wss|tcp|kcp)",
		"The scheme decides whether the connection is upgraded to TLS.",
	}, "\n")
}

// GetCommonFlags returns the flags shared by the client commands.
func GetCommonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     TransportFlag,
			Aliases:  []string{"T"},
			Usage:    "Transport to dial: tcp|ws|kcp|mux (mux multiplexes over one tcp connection)",
			Category: categoryCommon,
			Value:    "tcp",
			Required: false,
		},
		&cli.StringSliceFlag{
			Name:     ALPNFlag,
			Aliases:  []string{"a"},
			Usage:    "ALPN protocol to offer during the TLS handshake (repeatable)",
			Category: categoryCommon,
			Value:    []string{"h2", "http/1.1"},
			Required: false,
		},
		&cli.BoolFlag{
			Name:     InsecureFlag,
			Aliases:  []string{"k"},
			Usage:    "Skip server certificate verification",
			Category: categoryCommon,
			Value:    false,
			Required: false,
		},
		&cli.StringFlag{
			Name:     KeyFlag,
			Usage:    "Key for shared-key mTLS authentication, leave empty to verify against system roots",
			Category: categoryCommon,
			Value:    "",
			Required: false,
		},
		&cli.BoolFlag{
			Name:     VerboseFlag,
			Aliases:  []string{"v"},
			Usage:    "Verbose connection progress logging",
			Category: categoryCommon,
			Value:    false,
			Required: false,
		},
		&cli.IntFlag{
			Name:     TimeoutFlag,
			Aliases:  []string{"t"},
			Usage:    "Connect timeout in milliseconds (dial plus TLS handshake)",
			Category: categoryCommon,
			Value:    10000, // 10 seconds default
			Required: false,
		},
	}
}

// Timeout returns the connect timeout configured on the command.
func Timeout(cmd *cli.Command) time.Duration {
	return time.Duration(cmd.Int(TimeoutFlag)) * time.Millisecond
}

// TargetURL extracts the single target URL argument of a command.
func TargetURL(cmd *cli.Command) (string, error) {
	args := cmd.Args()
	if args.Len() != 1 {
		return "", fmt.Errorf("must provide exactly one target URL, got %d (%s)", args.Len(), strings.Join(args.Slice(), ", "))
	}
	return args.Get(0), nil
}

// BuildService assembles a connector service from the common flags.
func BuildService(cmd *cli.Command) (*connector.Service, error) {
	factory, err := DialerFactory(cmd.String(TransportFlag))
	if err != nil {
		return nil, err
	}

	engineOpts := []tlsengine.Option{
		tlsengine.WithNextProtos(cmd.StringSlice(ALPNFlag)...),
	}
	if cmd.Bool(InsecureFlag) {
		engineOpts = append(engineOpts, tlsengine.WithInsecureSkipVerify())
	}
	if key := cmd.String(KeyFlag); key != "" {
		engineOpts = append(engineOpts, tlsengine.WithSharedKey(key))
	}

	engine, err := tlsengine.NewStd(engineOpts...)
	if err != nil {
		return nil, fmt.Errorf("building TLS engine: %w", err)
	}

	return connector.New(
		connector.WithDialerFactory(factory),
		connector.WithEngine(engine),
		connector.WithLogger(log.NewLogger(cmd.Bool(VerboseFlag))),
	)
}
