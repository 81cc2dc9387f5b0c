package main

import (
	"context"
	"errors"
	"os"

	"github.com/desertthunder/spotify-sync/internal/shared"
	"github.com/desertthunder/spotify-sync/internal/ui"
)

func main() {
	logger := shared.NewLogger(nil)

	if err := shared.LoadEnvFile(".env"); err != nil {
		logger.Warn("ignoring .env file", "error", err)
	}

	runner := NewRunner(RunnerOpts{Logger: logger})

	if err := runner.command().Run(context.Background(), os.Args); err != nil {
		if errors.Is(err, ui.ErrAborted) {
			logger.Warn("transfer aborted")
			os.Exit(0)
		} else {
			logger.Fatalf("application error: %v", err)
		}
	}
}
