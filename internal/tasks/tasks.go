// package tasks implements the liked-songs and playlist transfer between two accounts.
package tasks

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotify-sync/internal/models"
	"github.com/desertthunder/spotify-sync/internal/services"
	"github.com/desertthunder/spotify-sync/internal/shared"
)

// Journal records transfer runs. The SQLite transfer repository implements it.
type Journal interface {
	Create(run *models.TransferRun) error
	AddPlaylist(p models.TransferredPlaylist) error
	Update(run *models.TransferRun) error
}

// TransferRequest names the two accounts and the libraries bound to them.
type TransferRequest struct {
	SourceName string
	TargetName string
	Source     services.Library
	Target     services.Library
}

// PlaylistResult is one playlist created on the target.
type PlaylistResult struct {
	SourceID string `json:"source_id"`
	TargetID string `json:"target_id"`
	Name     string `json:"name"`
	Tracks   int    `json:"tracks"`
}

// TransferResult summarizes a transfer. On failure it holds what was done before the error.
type TransferResult struct {
	RunID            string           `json:"run_id"`
	LikedSongs       int              `json:"liked_songs"`
	PlaylistsCreated int              `json:"playlists_created"`
	PlaylistsSkipped int              `json:"playlists_skipped"`
	TracksAdded      int              `json:"tracks_added"`
	Playlists        []PlaylistResult `json:"playlists"`
}

// EngineOpts configures a [TransferEngine]. All fields are optional.
type EngineOpts struct {
	Journal Journal
	Logger  *log.Logger
	Now     func() time.Time
}

// TransferEngine copies liked songs and then playlists from a source library to a target library.
//
// Everything runs sequentially and the first error aborts the transfer. Nothing on the target is
// deduplicated, so a rerun recreates playlists made by an earlier run.
type TransferEngine struct {
	journal Journal
	logger  *log.Logger
	now     func() time.Time
}

// NewTransferEngine creates a new [TransferEngine].
func NewTransferEngine(opts EngineOpts) *TransferEngine {
	e := &TransferEngine{journal: opts.Journal, logger: opts.Logger, now: opts.Now}
	if e.logger == nil {
		e.logger = log.New(io.Discard)
	}
	if e.now == nil {
		e.now = time.Now
	}
	return e
}

// sendProgress sends a progress update through the channel without blocking.
func (e *TransferEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Run transfers liked songs, then every non-empty playlist in source order.
//
// The progress channel may be nil. It is not closed by Run.
func (e *TransferEngine) Run(ctx context.Context, req TransferRequest, progress chan<- ProgressUpdate) (*TransferResult, error) {
	if req.Source == nil {
		return nil, fmt.Errorf("%w: source library not initialized", shared.ErrServiceUnavailable)
	}
	if req.Target == nil {
		return nil, fmt.Errorf("%w: target library not initialized", shared.ErrServiceUnavailable)
	}

	run := models.NewTransferRun(shared.GenerateID(), req.SourceName, req.TargetName, e.now())
	journal := e.startRun(run)

	result := &TransferResult{RunID: run.ID}
	logger := shared.WithLogger(e.logger, "run", run.ID)
	logger.Info("transfer started", "source", req.SourceName, "target", req.TargetName)

	err := e.transferLiked(ctx, req, result, progress)
	if err == nil {
		err = e.transferPlaylists(ctx, req, result, run.ID, journal, progress)
	}

	e.finishRun(journal, run, result, err)

	if err != nil {
		e.sendProgress(progress, failedUpdate(err))
		logger.Error("transfer failed", "error", err)
		return result, err
	}

	e.sendProgress(progress, completeUpdate(result))
	logger.Info("transfer complete",
		"liked_songs", result.LikedSongs,
		"playlists_created", result.PlaylistsCreated,
		"playlists_skipped", result.PlaylistsSkipped,
		"tracks_added", result.TracksAdded)
	return result, nil
}

func (e *TransferEngine) transferLiked(ctx context.Context, req TransferRequest, result *TransferResult, progress chan<- ProgressUpdate) error {
	e.sendProgress(progress, fetchLikedUpdate(req.SourceName))

	tracks, err := req.Source.LikedSongs(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch liked songs from %s: %w", req.SourceName, err)
	}

	if len(tracks) == 0 {
		e.sendProgress(progress, skipLikedUpdate())
		return nil
	}

	ids := make([]string, len(tracks))
	for i, t := range tracks {
		ids[i] = t.ID
	}

	chunks := shared.Chunk(ids, services.LikedSongsBatchSize)
	for i, chunk := range chunks {
		if err := req.Target.AddLikedSongs(ctx, chunk); err != nil {
			return fmt.Errorf("failed to save liked songs to %s: %w", req.TargetName, err)
		}
		result.LikedSongs += len(chunk)
		e.sendProgress(progress, likedChunkUpdate(i+1, len(chunks), result.LikedSongs, len(ids)))
	}

	return nil
}

func (e *TransferEngine) transferPlaylists(ctx context.Context, req TransferRequest, result *TransferResult, runID string, journal Journal, progress chan<- ProgressUpdate) error {
	e.sendProgress(progress, fetchPlaylistsUpdate(req.SourceName))

	playlists, err := req.Source.Playlists(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch playlists from %s: %w", req.SourceName, err)
	}

	if len(playlists) == 0 {
		e.sendProgress(progress, skipPlaylistsUpdate())
		return nil
	}

	total := len(playlists)
	for i, pl := range playlists {
		tracks, err := req.Source.PlaylistTracks(ctx, pl.ID)
		if err != nil {
			return fmt.Errorf("failed to fetch tracks for playlist %q: %w", pl.Name, err)
		}

		if len(tracks) == 0 {
			result.PlaylistsSkipped++
			e.sendProgress(progress, emptyPlaylistUpdate(i+1, total, pl))
			continue
		}

		targetID, err := req.Target.CreatePlaylist(ctx, pl.Name, pl.DescriptionOrEmpty(), pl.Public)
		if err != nil {
			return fmt.Errorf("failed to create playlist %q on %s: %w", pl.Name, req.TargetName, err)
		}

		uris := make([]string, len(tracks))
		for j, t := range tracks {
			uris[j] = t.URI
		}

		if err := req.Target.AddTracksToPlaylist(ctx, targetID, uris); err != nil {
			return fmt.Errorf("failed to add tracks to playlist %q: %w", pl.Name, err)
		}

		copied := PlaylistResult{SourceID: pl.ID, TargetID: targetID, Name: pl.Name, Tracks: len(uris)}
		result.Playlists = append(result.Playlists, copied)
		result.PlaylistsCreated++
		result.TracksAdded += len(uris)

		e.record(journal, models.TransferredPlaylist{
			RunID:            runID,
			SourcePlaylistID: pl.ID,
			TargetPlaylistID: targetID,
			Name:             pl.Name,
			Tracks:           len(uris),
			CreatedAt:        e.now().UTC(),
		})
		e.sendProgress(progress, playlistCopiedUpdate(i+1, total, copied))
	}

	return nil
}

// startRun records the run and returns the journal to use for it, or nil when recording failed.
func (e *TransferEngine) startRun(run *models.TransferRun) Journal {
	if e.journal == nil {
		return nil
	}
	if err := e.journal.Create(run); err != nil {
		e.logger.Warn("transfer journal unavailable", "error", err)
		return nil
	}
	return e.journal
}

func (e *TransferEngine) record(journal Journal, p models.TransferredPlaylist) {
	if journal == nil {
		return
	}
	if err := journal.AddPlaylist(p); err != nil {
		e.logger.Warn("failed to record playlist", "playlist", p.Name, "error", err)
	}
}

func (e *TransferEngine) finishRun(journal Journal, run *models.TransferRun, result *TransferResult, err error) {
	if journal == nil {
		return
	}

	finished := e.now().UTC()
	run.FinishedAt = &finished
	run.LikedSongs = result.LikedSongs
	run.PlaylistsCreated = result.PlaylistsCreated
	run.PlaylistsSkipped = result.PlaylistsSkipped
	run.TracksAdded = result.TracksAdded
	run.Status = models.RunCompleted
	if err != nil {
		run.Status = models.RunFailed
		run.Error = err.Error()
	}

	if err := journal.Update(run); err != nil {
		e.logger.Warn("failed to finish transfer run", "run", run.ID, "error", err)
	}
}
