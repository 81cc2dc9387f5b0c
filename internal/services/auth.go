package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotify-sync/internal/models"
	"github.com/desertthunder/spotify-sync/internal/server"
	"github.com/desertthunder/spotify-sync/internal/shared"
	"golang.org/x/oauth2"
)

// DefaultScopes grants read and write access to saved tracks and playlists.
var DefaultScopes = []string{
	"user-library-read",
	"user-library-modify",
	"playlist-read-private",
	"playlist-modify-public",
	"playlist-modify-private",
}

// AuthConfig holds everything the authorization-code flow needs.
//
// An empty RedirectURI is derived from the bound listener address.
type AuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	ListenAddr   string
	AuthURL      string
	TokenURL     string
	Scopes       []string
}

// AuthConfigFrom builds an [AuthConfig] from the application config.
func AuthConfigFrom(cfg *shared.Config) AuthConfig {
	return AuthConfig{
		ClientID:     cfg.Credentials.Spotify.ClientID,
		ClientSecret: cfg.Credentials.Spotify.ClientSecret,
		RedirectURI:  cfg.Credentials.Spotify.RedirectURI,
		ListenAddr:   cfg.Server.ListenAddr(),
		AuthURL:      cfg.API.AuthURL,
		TokenURL:     cfg.API.TokenURL,
		Scopes:       DefaultScopes,
	}
}

// Validate fails with [shared.ErrMissingCredentials] when the client id or secret is empty.
func (c AuthConfig) Validate() error {
	var missing []string
	if c.ClientID == "" {
		missing = append(missing, shared.EnvClientID)
	}
	if c.ClientSecret == "" {
		missing = append(missing, shared.EnvClientSecret)
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: set %s", shared.ErrMissingCredentials, strings.Join(missing, " and "))
	}
	return nil
}

func (c AuthConfig) oauth2Config(redirectURI string) *oauth2.Config {
	authURL, tokenURL := c.AuthURL, c.TokenURL
	if authURL == "" {
		authURL = SpotifyAuthURL
	}
	if tokenURL == "" {
		tokenURL = SpotifyTokenURL
	}

	scopes := c.Scopes
	if len(scopes) == 0 {
		scopes = DefaultScopes
	}

	return &oauth2.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		RedirectURL:  redirectURI,
		Scopes:       scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:   authURL,
			TokenURL:  tokenURL,
			AuthStyle: oauth2.AuthStyleInHeader,
		},
	}
}

// TokenSaver persists a token record under an account name.
type TokenSaver interface {
	Save(account string, record models.TokenRecord) error
}

// AuthFlowOpts configures an [AuthFlow]. Zero values select the defaults.
type AuthFlowOpts struct {
	Browser    shared.BrowserOpener
	Output     io.Writer
	Logger     *log.Logger
	HTTPClient *http.Client
	Now        func() time.Time
	State      func() string
}

// AuthFlow runs the three-legged authorization-code exchange and stores the resulting tokens.
//
// It never retries: any failure ends the login.
type AuthFlow struct {
	config     AuthConfig
	store      TokenSaver
	browser    shared.BrowserOpener
	out        io.Writer
	logger     *log.Logger
	httpClient *http.Client
	now        func() time.Time
	state      func() string
}

// NewAuthFlow validates credentials and creates an [AuthFlow].
func NewAuthFlow(config AuthConfig, store TokenSaver, opts AuthFlowOpts) (*AuthFlow, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	flow := &AuthFlow{
		config:     config,
		store:      store,
		browser:    opts.Browser,
		out:        opts.Output,
		logger:     opts.Logger,
		httpClient: opts.HTTPClient,
		now:        opts.Now,
		state:      opts.State,
	}

	if flow.browser == nil {
		flow.browser = shared.OpenBrowser
	}
	if flow.out == nil {
		flow.out = io.Discard
	}
	if flow.logger == nil {
		flow.logger = log.New(io.Discard)
	}
	if flow.now == nil {
		flow.now = time.Now
	}
	if flow.state == nil {
		flow.state = shared.GenerateState
	}

	return flow, nil
}

// AuthURL builds the authorization URL for state against redirectURI.
func (a *AuthFlow) AuthURL(redirectURI, state string) string {
	return a.config.oauth2Config(redirectURI).AuthCodeURL(state)
}

// Login authorizes account in the browser and saves the issued tokens, replacing any previous record.
//
// It blocks until the callback arrives or ctx is cancelled.
func (a *AuthFlow) Login(ctx context.Context, account string) (models.TokenRecord, error) {
	if account == "" {
		return models.TokenRecord{}, fmt.Errorf("%w: account name", shared.ErrMissingArgument)
	}

	state := a.state()
	listener, err := server.ListenCallback(a.config.ListenAddr, state, a.logger)
	if err != nil {
		return models.TokenRecord{}, err
	}

	redirectURI := a.config.RedirectURI
	if redirectURI == "" {
		redirectURI = "http://" + listener.Addr() + server.CallbackPath
	}

	authURL := a.AuthURL(redirectURI, state)
	a.logger.Debug("starting authorization", "account", account, "redirect_uri", redirectURI)

	if err := a.browser(authURL); err != nil {
		a.logger.Warn("could not open browser", "error", err)
		fmt.Fprintf(a.out, "Open this URL in your browser to authorize %q:\n\n%s\n\n", account, authURL)
	} else {
		fmt.Fprintf(a.out, "Opened browser to authorize %q. Waiting for callback...\n", account)
	}

	code, err := listener.Await(ctx)
	if err != nil {
		return models.TokenRecord{}, err
	}

	record, err := a.Exchange(ctx, redirectURI, code)
	if err != nil {
		return models.TokenRecord{}, err
	}

	if err := a.store.Save(account, record); err != nil {
		return models.TokenRecord{}, fmt.Errorf("failed to save tokens for %s: %w", account, err)
	}

	a.logger.Info("account authorized", "account", account)
	return record, nil
}

// Exchange trades an authorization code for a token record stamped with an absolute expiry.
func (a *AuthFlow) Exchange(ctx context.Context, redirectURI, code string) (models.TokenRecord, error) {
	if a.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, a.httpClient)
	}

	now := a.now()
	token, err := a.config.oauth2Config(redirectURI).Exchange(ctx, code)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			return models.TokenRecord{}, fmt.Errorf("%w: %s", shared.ErrTokenExchangeFailed, strings.TrimSpace(string(retrieveErr.Body)))
		}
		return models.TokenRecord{}, fmt.Errorf("%w: %w", shared.ErrTokenExchangeFailed, err)
	}

	return models.NewTokenRecord(token.AccessToken, token.RefreshToken, expiresIn(token, now), now), nil
}

func expiresIn(token *oauth2.Token, now time.Time) int64 {
	if token.ExpiresIn > 0 {
		return token.ExpiresIn
	}
	if token.Expiry.IsZero() {
		return 0
	}
	return int64(token.Expiry.Sub(now).Round(time.Second).Seconds())
}
