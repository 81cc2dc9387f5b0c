// Package repositories implements local persistence.
//
// Key Implementations:
//   - [TokenStore] : per-account OAuth tokens in a pretty-printed JSON document, rewritten whole on every save
//   - [TransferRepository] : SQLite transfer journal recording each run and the playlists it created
//
// The journal is an audit log only. Nothing reads it back to skip work on a later run,
// so rerunning a transfer recreates playlists that a previous run already created.
package repositories
