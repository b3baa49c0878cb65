package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"telecrm/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.Execute(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", cli.Message(err))
		stop()
		os.Exit(1)
	}
}
