// cmd/ritual/main.go
//
// This is the entry point for the ritual CLI.
// Everything interesting lives in internal/cli; main only wires up signal
// handling and turns the returned error into an exit status.

package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/kingrea/ritual/internal/cli"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := cli.Execute(ctx, version)
	stop()
	os.Exit(cli.ExitCode(err))
}
