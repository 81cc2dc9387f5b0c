package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/desertthunder/spotify-sync/internal/formatter"
	"github.com/desertthunder/spotify-sync/internal/models"
	"github.com/desertthunder/spotify-sync/internal/repositories"
	"github.com/desertthunder/spotify-sync/internal/shared"
	"github.com/desertthunder/spotify-sync/internal/tasks"
	"github.com/desertthunder/spotify-sync/internal/ui"
	"github.com/urfave/cli/v3"
)

// Transfer copies liked songs and playlists from the source account to the target account.
func (r *Runner) Transfer(ctx context.Context, cmd *cli.Command) error {
	sourceName := cmd.StringArg("source")
	targetName := cmd.StringArg("target")

	if sourceName == "" || targetName == "" {
		return fmt.Errorf("%w: transfer <source> <target>", shared.ErrMissingArgument)
	}
	if sourceName == targetName {
		return fmt.Errorf("%w: source and target must be different accounts", shared.ErrInvalidArgument)
	}

	source, err := r.library(ctx, sourceName)
	if err != nil {
		return err
	}
	target, err := r.library(ctx, targetName)
	if err != nil {
		return err
	}

	req := tasks.TransferRequest{
		SourceName: sourceName,
		TargetName: targetName,
		Source:     source,
		Target:     target,
	}

	var journal tasks.Journal
	if !cmd.Bool("no-history") {
		db, err := r.openJournal()
		if err != nil {
			r.logger.Warn("transfer history disabled", "error", err)
		} else {
			defer db.Close()
			journal = repositories.NewTransferRepository(db)
		}
	}

	if cmd.Bool("tui") {
		return r.transferTUI(ctx, req, journal, !cmd.Bool("yes"))
	}

	engine := tasks.NewTransferEngine(tasks.EngineOpts{
		Journal: journal,
		Logger:  r.logger,
		Now:     r.now,
	})

	r.logger.Info("starting transfer", "source", sourceName, "target", targetName)
	r.writePlain("Starting library transfer...\n")
	r.writePlain("Source: %s\n", sourceName)
	r.writePlain("Target: %s\n\n", targetName)

	// Create progress channel and goroutine to handle updates
	progressCh := make(chan tasks.ProgressUpdate, 50)
	printed := make(chan struct{})
	go func() {
		defer close(printed)
		for update := range progressCh {
			r.printProgress(update)
		}
	}()

	result, err := engine.Run(ctx, req, progressCh)
	close(progressCh)
	<-printed

	if err != nil {
		return err
	}

	r.printSummary(result)
	return nil
}

func (r *Runner) printProgress(update tasks.ProgressUpdate) {
	switch update.Phase {
	case tasks.FetchLiked, tasks.FetchPlaylists:
		r.writePlain("📥 %s\n", update.Message)
	case tasks.TransferLiked, tasks.TransferPlaylists:
		r.writePlain("   %s\n", update.Message)
	case tasks.Failed:
		r.writePlain("\n%s\n", ui.Failure(update.Message))
	}
}

func (r *Runner) printSummary(result *tasks.TransferResult) {
	r.writePlain("\n")
	r.writePlainHeader(ui.Success("Transfer Complete!"))
	r.writePlain("Liked songs: %d\n", result.LikedSongs)
	r.writePlain("Playlists created: %d\n", result.PlaylistsCreated)
	if result.PlaylistsSkipped > 0 {
		r.writePlain("Empty playlists skipped: %d\n", result.PlaylistsSkipped)
	}
	r.writePlain("Playlist tracks added: %d\n", result.TracksAdded)

	if len(result.Playlists) > 0 {
		r.writePlainln("Playlists:")
		for _, pl := range result.Playlists {
			r.writePlain("  - %s (%d tracks) → %s\n", pl.Name, pl.Tracks, pl.TargetID)
		}
	}
	if result.RunID != "" {
		r.writePlain("\n%s\n", ui.Muted("Run ID: "+result.RunID))
	}
}

// openJournal opens the transfer journal database from the config, applying migrations.
func (r *Runner) openJournal() (*sql.DB, error) {
	db, err := shared.OpenJournal(r.config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to open transfer journal: %w", err)
	}
	return db, nil
}

// History lists recorded transfer runs, or the playlists created by one run.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	db, err := r.openJournal()
	if err != nil {
		return err
	}
	defer db.Close()

	repo := repositories.NewTransferRepository(db)

	if id := cmd.StringArg("id"); id != "" {
		return r.historyRun(repo, id, format)
	}

	limit := cmd.Int("limit")
	if limit < 0 {
		return fmt.Errorf("%w: --limit must not be negative", shared.ErrInvalidArgument)
	}

	runs, err := repo.List(limit)
	if err != nil {
		return err
	}
	r.logger.Debug("listing transfer runs", "count", len(runs))

	data, err := formatter.FormatHistory(runs, format)
	if err != nil {
		return err
	}
	return r.export(data, cmd.String("output"), format)
}

func (r *Runner) historyRun(repo *repositories.TransferRepository, id string, format formatter.Format) error {
	run, err := repo.Get(id)
	if err != nil {
		return err
	}
	playlists, err := repo.Playlists(id)
	if err != nil {
		return err
	}

	if format == formatter.FormatJSON {
		return r.writeJSON(map[string]any{"run": run, "playlists": playlists}, true)
	}

	data, err := formatter.FormatHistory([]*models.TransferRun{run}, format)
	if err != nil {
		return err
	}
	if err := r.writeBytes(data); err != nil {
		return err
	}

	if format != formatter.FormatText || len(playlists) == 0 {
		return nil
	}
	r.writePlainln("Playlists created:")
	for _, pl := range playlists {
		r.writePlain("  - %s (%d tracks) %s → %s\n", pl.Name, pl.Tracks, pl.SourcePlaylistID, pl.TargetPlaylistID)
	}
	return nil
}
