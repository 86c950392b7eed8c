package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/arbiterhq/arbiter/internal/cli"
)

func main() {
	// Root context with cancel on SIGINT/SIGTERM so a batch can be
	// interrupted without losing the evaluation cache flush.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cli.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
