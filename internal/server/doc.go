// Package server runs the local HTTP endpoint that completes the OAuth authorization-code flow.
//
// # Callback Listener
//
// [ListenCallback] binds the socket up front so the authorization URL can be opened in a browser
// before anything is served. [CallbackListener.Await] then serves a [Router] with a single
// [CallbackHandler] mounted at [CallbackPath] and returns the first authorization code it receives.
// Only context cancellation ends the wait.
//
// # Callback Handler
//
// The handler accepts one request. It checks the state parameter, extracts the code and always
// renders the same static confirmation page, so the browser sees no difference between success
// and failure; the outcome is reported to the terminal instead.
//
// # Router
//
// [Router] wraps [http.ServeMux] method patterns and applies [Middleware] in registration order.
// [RequestLogger] logs paths and statuses without query strings.
package server
