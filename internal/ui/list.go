package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/spotify-sync/internal/tasks"
)

var (
	_ list.Item = playlistItem{}
)

// playlistItem wraps [tasks.PlaylistResult] to implement [list.Item].
type playlistItem struct {
	playlist tasks.PlaylistResult
}

func (i playlistItem) FilterValue() string { return i.playlist.Name }
func (i playlistItem) Title() string       { return i.playlist.Name }
func (i playlistItem) Description() string {
	return fmt.Sprintf("%d tracks • %s", i.playlist.Tracks, i.playlist.TargetID)
}

func newPlaylistList(playlists []tasks.PlaylistResult, width, height int) list.Model {
	items := make([]list.Item, len(playlists))
	for i, pl := range playlists {
		items[i] = playlistItem{playlist: pl}
	}

	l := list.New(items, list.NewDefaultDelegate(), width, height)
	l.Title = "Created playlists"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	return l
}
