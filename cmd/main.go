package main

import (
	"context"
	"fmt"
	"os"

	"github.com/yungbote/cementplant-backend/internal/app"
	"github.com/yungbote/cementplant-backend/internal/platform/shutdown"
)

func main() {
	a, err := app.New()
	if err != nil {
		fmt.Printf("failed to initialize app: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := shutdown.NotifyContext(context.Background())
	defer stop()

	if err := a.Start(); err != nil {
		a.Log.Error("Startup failed", "error", err)
		a.Close(context.Background())
		os.Exit(1)
	}

	errCh := make(chan error, 1)
	go func() { errCh <- a.Run() }()

	exitCode := 0
	select {
	case <-ctx.Done():
		a.Log.Info("Shutdown signal received")
	case err := <-errCh:
		if err != nil {
			a.Log.Error("Server exited", "error", err)
			exitCode = 1
		}
	}

	graceCtx, cancel := shutdown.GraceContext(shutdown.DefaultGrace)
	a.Close(graceCtx)
	cancel()
	os.Exit(exitCode)
}
