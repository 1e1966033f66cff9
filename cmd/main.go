package main

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"

	"maybetls/cmd/fetch"
	"maybetls/cmd/probe"
	"maybetls/cmd/serve"
	"maybetls/cmd/version"
	"maybetls/pkg/log"
)

func main() {
	app := &cli.Command{
		Name:  "maybetls",
		Usage: "dial plain or TLS connections based on the target scheme",
		Commands: []*cli.Command{
			probe.GetCommand(),
			fetch.GetCommand(),
			serve.GetCommand(),
			version.GetCommand(),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		log.ErrorMsg("%s\n", err)
		os.Exit(1)
	}
}
