// Package services talks to the Spotify Web API.
//
// # Authorization
//
// [AuthFlow] runs the authorization-code grant: it binds the callback listener from the server
// package, opens the authorization URL in a browser, waits for the single redirect and trades the
// code for tokens through [golang.org/x/oauth2] with client credentials in a basic-auth header.
// The resulting [models.TokenRecord] is stamped with an absolute expiry and handed to a
// [TokenSaver]. Credentials come from an explicit [AuthConfig].
//
// # Library Client
//
// [SpotifyClient] is bound to one access token and implements [Library]. List reads page through
// offset/limit until an empty page; playlist reads also stop on a null next link while liked songs
// ignore it. Writes are split into batches of at most 50 saved-track ids or 100 playlist URIs and
// sent one request per batch in input order.
//
// Tokens are never refreshed. An expired token surfaces as a 401 [shared.RemoteAPIError].
//
// # Errors
//
//   - [shared.ErrMissingCredentials] : client id or secret unset
//   - [shared.ErrMissingAuthCode] : callback carried no code
//   - [shared.ErrAuthFailed] : callback state did not match
//   - [shared.ErrTokenExchangeFailed] : token endpoint refused the code, message carries its body
//   - [shared.RemoteAPIError] : non-2xx Web API response, unwraps to [shared.ErrAPIRequest]
package services
