package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/spotify-sync/internal/models"
	"github.com/desertthunder/spotify-sync/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgStatsFetched MsgKind = iota
	MsgProgressUpdate
	MsgTransferComplete
)

type statsResult struct {
	stats models.LibraryStats
	err   error
}

type transferOutcome struct {
	result *tasks.TransferResult
	err    error
}

// statsFetchedMsg is the constructor for [MsgStatsFetched]
func statsFetchedMsg(stats models.LibraryStats, err error) Msg {
	return Msg{kind: MsgStatsFetched, data: statsResult{stats, err}}
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

// transferCompleteMsg is the constructor for [MsgTransferComplete]
func transferCompleteMsg(result *tasks.TransferResult, err error) Msg {
	return Msg{kind: MsgTransferComplete, data: transferOutcome{result, err}}
}
