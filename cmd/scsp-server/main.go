package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrymomot/scsp/app"
	"github.com/dmitrymomot/scsp/core/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New()
	if err != nil {
		logger.New().Error("Failed to initialize scsp", logger.Component("app"), logger.Error(err))
		os.Exit(1)
	}

	if err := a.Run(ctx); err != nil {
		os.Exit(1)
	}
}
