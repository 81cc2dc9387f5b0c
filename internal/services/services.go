package services

import (
	"context"

	"github.com/desertthunder/spotify-sync/internal/models"
)

// Library is the read and write surface of one account used by the transfer pipeline and preview.
//
// [SpotifyClient] implements it.
type Library interface {
	LikedSongs(ctx context.Context) ([]models.Track, error)
	Playlists(ctx context.Context) ([]models.SimplifiedPlaylist, error)
	PlaylistTracks(ctx context.Context, playlistID string) ([]models.Track, error)
	LibraryStats(ctx context.Context) (models.LibraryStats, error)
	AddLikedSongs(ctx context.Context, ids []string) error
	CreatePlaylist(ctx context.Context, name, description string, public bool) (string, error)
	AddTracksToPlaylist(ctx context.Context, playlistID string, uris []string) error
}

var _ Library = (*SpotifyClient)(nil)
