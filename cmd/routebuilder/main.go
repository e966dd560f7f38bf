package main

import (
	"context"
	"delivery-route-builder/internal/cli"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
)

// main is the composition root: each command wires its own adapters from config.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := cli.RootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, color.New(color.FgRed).Sprint("Error: "+err.Error()))
	}
	os.Exit(cli.ExitCode(err))
}
