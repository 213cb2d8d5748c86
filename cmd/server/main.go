package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"leafscan/internal/logger"
	"leafscan/internal/server"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Run(ctx); err != nil {
		logger.Get().Errorf("server: %v", err)
		stop()
		os.Exit(1)
	}
}
