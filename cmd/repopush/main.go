package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/shaun/repopush/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := cli.NewApplication().Execute(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "repopush: %v\n", err)
		stop()
		os.Exit(1)
	}
}
