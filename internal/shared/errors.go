package shared

import "fmt"

var (
	// Configuration errors
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Authentication errors
	ErrAuthFailed          = fmt.Errorf("authentication failed")
	ErrMissingAuthCode     = fmt.Errorf("no authorization code in callback")
	ErrTokenExchangeFailed = fmt.Errorf("token exchange failed")

	// Token store errors
	ErrAccountNotFound = fmt.Errorf("account not found")
	ErrNoStoreFile     = fmt.Errorf("no token store found, run login first")
	ErrCorruptStore    = fmt.Errorf("token store is corrupt")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")

	// Input validation errors
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)

// RemoteAPIError is returned for any non-success response from the Spotify Web API.
//
// It unwraps to [ErrAPIRequest].
type RemoteAPIError struct {
	Status int
	Body   string
}

func (e *RemoteAPIError) Error() string {
	return fmt.Sprintf("spotify API error: status %d: %s", e.Status, e.Body)
}

func (e *RemoteAPIError) Unwrap() error {
	return ErrAPIRequest
}
