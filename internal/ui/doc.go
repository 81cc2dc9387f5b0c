// Package ui renders transfer progress in the terminal with bubbletea's Elm architecture.
//
// The [Model] moves through four views:
//  1. [LoadingView] : reads the source library stats (only when confirmation is requested)
//  2. [ConfirmView] : shows the stats and waits for y/n
//  3. [TransferView] : spinner, per-phase progress bar and the most recent progress messages
//  4. [ResultView] : summary counts and a scrollable list of created playlists
//
// Progress flows from [tasks.TransferEngine] through a buffered channel that the model drains one
// message at a time. The engine's outcome arrives on a separate channel after the progress channel
// is closed. Quitting mid-transfer cancels the engine's context.
//
// Styles live in a lipgloss [Theme]. [Success], [Failure] and [Muted] let the plain CLI output share it.
package ui
