package models

import (
	"fmt"
	"time"
)

// RunStatus is the lifecycle state of a [TransferRun].
type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
)

// TransferRun records one invocation of the transfer pipeline.
type TransferRun struct {
	ID               string     `json:"id"`
	Source           string     `json:"source"`
	Target           string     `json:"target"`
	Status           RunStatus  `json:"status"`
	LikedSongs       int        `json:"liked_songs"`
	PlaylistsCreated int        `json:"playlists_created"`
	PlaylistsSkipped int        `json:"playlists_skipped"`
	TracksAdded      int        `json:"tracks_added"`
	Error            string     `json:"error,omitempty"`
	StartedAt        time.Time  `json:"started_at"`
	FinishedAt       *time.Time `json:"finished_at,omitempty"`
}

// NewTransferRun creates a running TransferRun between two accounts.
func NewTransferRun(id, source, target string, startedAt time.Time) *TransferRun {
	return &TransferRun{
		ID:        id,
		Source:    source,
		Target:    target,
		Status:    RunRunning,
		StartedAt: startedAt.UTC(),
	}
}

// Validate checks required fields and the status value.
func (r *TransferRun) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("transfer run id is required")
	}
	if r.Source == "" || r.Target == "" {
		return fmt.Errorf("transfer run requires source and target accounts")
	}
	switch r.Status {
	case RunRunning, RunCompleted, RunFailed:
	default:
		return fmt.Errorf("invalid transfer run status %q", r.Status)
	}
	return nil
}

// Duration is the elapsed time of a finished run, or zero while running.
func (r *TransferRun) Duration() time.Duration {
	if r.FinishedAt == nil {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// TransferredPlaylist is a playlist created on the target account during a run.
type TransferredPlaylist struct {
	RunID            string    `json:"run_id"`
	SourcePlaylistID string    `json:"source_playlist_id"`
	TargetPlaylistID string    `json:"target_playlist_id"`
	Name             string    `json:"name"`
	Tracks           int       `json:"tracks"`
	CreatedAt        time.Time `json:"created_at"`
}
