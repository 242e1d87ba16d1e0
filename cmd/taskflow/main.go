package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"taskflow/internal/app"
	"taskflow/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Run(ctx, os.Args[1:], os.Stdout, os.Stderr, app.Open)
	stop()
	os.Exit(code)
}
