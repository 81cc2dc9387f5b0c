package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/desertthunder/spotify-sync/internal/shared"
	"github.com/desertthunder/spotify-sync/internal/tasks"
	"github.com/desertthunder/spotify-sync/internal/ui"
)

// transferTUI runs the transfer behind the interactive progress view.
func (r *Runner) transferTUI(ctx context.Context, req tasks.TransferRequest, journal tasks.Journal, confirm bool) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	logPath := filepath.Join(shared.AppDir(), "tui.log")
	fileLogger, logFile, err := shared.NewFileLogger(logPath)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	defer logFile.Close()

	fileLogger.SetLevel(r.logger.GetLevel())
	previous := r.logger
	r.SetLogger(fileLogger)
	defer r.SetLogger(previous)

	engine := tasks.NewTransferEngine(tasks.EngineOpts{
		Journal: journal,
		Logger:  fileLogger,
		Now:     r.now,
	})

	result, err := ui.Run(ctx, engine, req, confirm)
	if err != nil {
		return err
	}

	r.logger.Info("transfer finished", "run", result.RunID, "log", logPath)
	return nil
}
