// Package models defines the entities shared by the token store, the Spotify library client, and the transfer pipeline.
//
// The package contains three groups of types:
//
//  1. Credentials persisted in the token document
//     - [TokenRecord] : OAuth tokens for one named account
//     - [TokenDocument] : the whole document, keyed by account name
//
//  2. Transient library data fetched per request and never cached across runs
//     - [Track], [Artist] : saved or playlist tracks
//     - [SimplifiedPlaylist] : playlist metadata from the playlist listing
//     - [UserProfile] : the authenticated user
//     - [LibraryStats] : a preview snapshot of an account
//
//  3. Transfer journal entries persisted in SQLite
//     - [TransferRun] : one invocation of the transfer pipeline
//     - [TransferredPlaylist] : a playlist created on the target during a run
package models
