package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotify-sync/internal/shared"
)

// CallbackPath is the redirect path registered with the provider.
const CallbackPath = "/callback"

const confirmationPage = `<!DOCTYPE html>
<html>
<head>
    <title>Authorization Complete</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               display: flex; align-items: center; justify-content: center; height: 100vh;
               margin: 0; background: #f5f5f5; }
        .container { text-align: center; background: white; padding: 2rem;
                     border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        h1 { color: #1DB954; margin: 0 0 1rem 0; }
        p { color: #666; margin: 0; }
    </style>
</head>
<body>
    <div class="container">
        <h1>Authorization Complete</h1>
        <p>You can close this window and return to the terminal.</p>
    </div>
</body>
</html>
`

// CallbackResult carries the authorization code, or the reason none was obtained.
type CallbackResult struct {
	Code string
	err  error
}

func (c CallbackResult) Error() error {
	return c.err
}

// CallbackHandler accepts exactly one OAuth redirect.
//
// The first request always receives the confirmation page regardless of outcome; later requests get 409.
type CallbackHandler struct {
	state      string
	resultChan chan CallbackResult
	once       sync.Once
	mu         sync.Mutex
	hit        bool
}

// NewCallbackHandler creates a handler expecting state. An empty state disables the check.
func NewCallbackHandler(state string) *CallbackHandler {
	return &CallbackHandler{state: state, resultChan: make(chan CallbackResult, 1)}
}

// Routes returns the HTTP routes this handler serves.
func (h *CallbackHandler) Routes() []string {
	return []string{CallbackPath}
}

// ServeHTTP extracts the authorization code and checks the state parameter.
func (h *CallbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	if h.hit {
		h.mu.Unlock()
		http.Error(w, "Callback already processed", http.StatusConflict)
		return
	}
	h.hit = true
	h.mu.Unlock()

	h.Send(ParseCallback(r, h.state))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, confirmationPage)
}

// ParseCallback reads the redirect query. The state check runs before the code check.
func ParseCallback(r *http.Request, state string) CallbackResult {
	q := r.URL.Query()

	if state != "" && q.Get("state") != state {
		return CallbackResult{err: fmt.Errorf("%w: state mismatch in callback", shared.ErrAuthFailed)}
	}

	code := q.Get("code")
	if code == "" {
		if reason := q.Get("error"); reason != "" {
			return CallbackResult{err: fmt.Errorf("%w: provider returned %q", shared.ErrMissingAuthCode, reason)}
		}
		return CallbackResult{err: shared.ErrMissingAuthCode}
	}

	return CallbackResult{Code: code}
}

// Send delivers the result (only once).
func (h *CallbackHandler) Send(result CallbackResult) {
	h.once.Do(func() {
		h.resultChan <- result
		close(h.resultChan)
	})
}

// Result receives exactly one result and is then closed.
func (h *CallbackHandler) Result() <-chan CallbackResult {
	return h.resultChan
}

// CallbackListener is a single-shot HTTP server for the OAuth redirect.
//
// The socket is bound by [ListenCallback] so the browser can be opened before [CallbackListener.Await] starts serving.
type CallbackListener struct {
	listener net.Listener
	server   *http.Server
	handler  *CallbackHandler
	logger   *log.Logger
}

// ListenCallback binds addr (":0" picks a free port) and prepares a handler expecting state.
func ListenCallback(addr, state string, logger *log.Logger) (*CallbackListener, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to bind callback listener on %s: %w", addr, err)
	}

	handler := NewCallbackHandler(state)
	router := NewRouter()
	router.Use(RequestLogger(logger))
	router.Mount(handler)

	return &CallbackListener{
		listener: ln,
		server:   &http.Server{Handler: router, ReadHeaderTimeout: 10 * time.Second},
		handler:  handler,
		logger:   logger,
	}, nil
}

// Addr is the bound address, useful when listening on ":0".
func (l *CallbackListener) Addr() string {
	return l.listener.Addr().String()
}

// Await serves until one callback arrives or ctx is done, then shuts the server down.
//
// There is no timeout of its own.
func (l *CallbackListener) Await(ctx context.Context) (string, error) {
	errc := make(chan error, 1)
	go func() {
		if err := l.server.Serve(l.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()
	defer l.shutdown()

	l.logger.Debug("waiting for OAuth callback", "addr", l.Addr())

	select {
	case res := <-l.handler.Result():
		return res.Code, res.Error()
	case err := <-errc:
		return "", fmt.Errorf("callback server failed: %w", err)
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (l *CallbackListener) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := l.server.Shutdown(ctx); err != nil {
		l.logger.Warn("callback server shutdown", "error", err)
	}
}
