package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/spotify-sync/internal/formatter"
	"github.com/desertthunder/spotify-sync/internal/models"
	"github.com/desertthunder/spotify-sync/internal/shared"
	"github.com/urfave/cli/v3"
)

// List prints the stored account names. A missing token store lists nothing.
func (r *Runner) List(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}
	if cmd.Bool("json") {
		format = formatter.FormatJSON
	}

	store := r.tokenStore()
	names, err := store.ListAccounts()
	if err != nil {
		return err
	}

	records := make(map[string]models.TokenRecord, len(names))
	for _, name := range names {
		if records[name], err = store.Load(name); err != nil {
			return err
		}
	}

	accounts := formatter.NewAccounts(records, r.now())
	r.logger.Debug("listing accounts", "count", len(accounts))

	data, err := formatter.FormatAccounts(accounts, format)
	if err != nil {
		return err
	}
	return r.writeBytes(data)
}

// Preview fetches liked song and playlist totals for an account.
func (r *Runner) Preview(ctx context.Context, cmd *cli.Command) error {
	account := cmd.StringArg("source")
	if account == "" {
		return fmt.Errorf("%w: preview <source>", shared.ErrMissingArgument)
	}

	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	library, err := r.library(ctx, account)
	if err != nil {
		return err
	}

	r.logger.Info("fetching library stats", "account", account)
	stats, err := library.LibraryStats(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch library stats for %s: %w", account, err)
	}

	data, err := formatter.FormatPreview(formatter.Preview{Account: account, LibraryStats: stats}, format)
	if err != nil {
		return err
	}
	return r.export(data, cmd.String("output"), format)
}

// export writes data to path when one is given and to the runner's output otherwise.
func (r *Runner) export(data []byte, path string, format formatter.Format) error {
	if path == "" {
		return r.writeBytes(data)
	}

	written, err := formatter.WriteExport(data, path, format)
	if err != nil {
		return err
	}
	r.logger.Info("export written", "path", written)
	return r.writePlain("✓ Saved to %s\n", written)
}
