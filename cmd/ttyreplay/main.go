package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/SmitUplenchwar2687/ttyreplay/internal/apperr"
	"github.com/SmitUplenchwar2687/ttyreplay/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.NewRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ttyreplay: %v\n", err)
		if apperr.HasCode(err, apperr.CodeUsage) {
			fmt.Fprintln(os.Stderr, "Run 'ttyreplay --help' for usage.")
		}
		os.Exit(apperr.ExitCode(err))
	}
}
