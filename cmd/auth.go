package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/spotify-sync/internal/services"
	"github.com/desertthunder/spotify-sync/internal/shared"
	"github.com/urfave/cli/v3"
)

// Login runs the authorization-code flow and stores the tokens under the given name.
//
// Re-running login for an existing name replaces its tokens.
func (r *Runner) Login(ctx context.Context, cmd *cli.Command) error {
	account := cmd.StringArg("name")
	if account == "" {
		return fmt.Errorf("%w: login <name>", shared.ErrMissingArgument)
	}

	store := r.tokenStore()
	flow, err := services.NewAuthFlow(services.AuthConfigFrom(r.config), store, services.AuthFlowOpts{
		Browser:    r.browser,
		Output:     r.output,
		Logger:     shared.WithLogger(r.logger, "account", account),
		HTTPClient: r.httpClient,
		Now:        r.now,
	})
	if err != nil {
		return err
	}

	r.logger.Info("starting login", "account", account)

	record, err := flow.Login(ctx, account)
	if err != nil {
		return err
	}

	r.writePlain("✓ Logged in as %s\n", account)
	r.writePlain("Tokens saved to: %s\n", store.Path())
	if record.ExpiresAt != nil {
		r.writePlain("Access token expires: %s\n", record.Expiry().Local().Format("2006-01-02 15:04:05"))
	}
	return nil
}
