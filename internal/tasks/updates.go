package tasks

import (
	"fmt"

	"github.com/desertthunder/spotify-sync/internal/models"
)

// ProgressUpdate represents a progress event during a transfer.
//
// Step increases monotonically within a phase.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchLiked Phase = iota
	TransferLiked
	FetchPlaylists
	TransferPlaylists
	Complete
	Failed
)

func (p Phase) String() string {
	switch p {
	case FetchLiked:
		return "fetch_liked"
	case TransferLiked:
		return "transfer_liked"
	case FetchPlaylists:
		return "fetch_playlists"
	case TransferPlaylists:
		return "transfer_playlists"
	case Complete:
		return "complete"
	case Failed:
		return "failed"
	default:
		return ""
	}
}

// Label is a short title for display.
func (p Phase) Label() string {
	switch p {
	case FetchLiked:
		return "Reading liked songs"
	case TransferLiked:
		return "Saving liked songs"
	case FetchPlaylists:
		return "Reading playlists"
	case TransferPlaylists:
		return "Copying playlists"
	case Complete:
		return "Done"
	case Failed:
		return "Failed"
	default:
		return ""
	}
}

func fetchLikedUpdate(account string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchLiked,
		Message: fmt.Sprintf("Fetching liked songs from %s...", account),
	}
}

func skipLikedUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   TransferLiked,
		Message: "No liked songs to transfer",
	}
}

func likedChunkUpdate(step, total, added, count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   TransferLiked,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Saved %d of %d liked songs", step, total, added, count),
	}
}

func fetchPlaylistsUpdate(account string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchPlaylists,
		Message: fmt.Sprintf("Fetching playlists from %s...", account),
	}
}

func skipPlaylistsUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   TransferPlaylists,
		Message: "No playlists to transfer",
	}
}

func emptyPlaylistUpdate(step, total int, pl models.SimplifiedPlaylist) ProgressUpdate {
	return ProgressUpdate{
		Phase:   TransferPlaylists,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Skipped empty playlist: %s", step, total, pl.Name),
		Data:    pl,
	}
}

func playlistCopiedUpdate(step, total int, copied PlaylistResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   TransferPlaylists,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d tracks)", step, total, copied.Name, copied.Tracks),
		Data:    copied,
	}
}

func completeUpdate(result *TransferResult) ProgressUpdate {
	return ProgressUpdate{
		Phase: Complete,
		Step:  1,
		Total: 1,
		Message: fmt.Sprintf("Transferred %d liked songs and %d playlists (%d tracks, %d skipped)",
			result.LikedSongs, result.PlaylistsCreated, result.TracksAdded, result.PlaylistsSkipped),
		Data: result,
	}
}

func failedUpdate(err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Failed,
		Message: fmt.Sprintf("✗ %v", err),
	}
}
