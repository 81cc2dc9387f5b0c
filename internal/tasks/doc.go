// Package tasks copies one account's library into another with progress reporting.
//
// # Transfer
//
// [TransferEngine.Run] reads before it writes, one content type at a time:
//
//  1. Liked songs: read every saved track from the source, then save the ids to the target in
//     batches of 50, one progress step per batch.
//  2. Playlists: read the playlist list, then for each playlist in order read its tracks, skip it
//     when empty, otherwise create it on the target with the same name, description and
//     visibility and add every track URI in the original order.
//
// The first error from either library aborts the whole transfer. There is no checkpoint or
// resume, and nothing written to the target is deduplicated against earlier runs.
//
// # Progress Reporting
//
// [ProgressUpdate] values are sent with select/default so a slow or absent consumer never blocks
// the transfer. Steps increase monotonically within a [Phase].
//
// # Journal
//
// The optional [Journal] records the run, each created playlist and the final outcome. Journal
// failures are logged and otherwise ignored; the journal is never read back by the engine.
package tasks
