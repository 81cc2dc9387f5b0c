package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/spotify-sync/internal/models"
	"github.com/desertthunder/spotify-sync/internal/tasks"
)

// ErrAborted is returned when the user leaves the TUI before the transfer finishes.
var ErrAborted = errors.New("transfer aborted")

// ViewState represents the current view in the TUI.
type ViewState int

const (
	LoadingView ViewState = iota
	ConfirmView
	TransferView
	ResultView
)

const maxLogLines = 6

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	cancel       context.CancelFunc
	view         ViewState
	engine       *tasks.TransferEngine
	req          tasks.TransferRequest
	width        int
	height       int
	stats        *models.LibraryStats
	spinner      spinner.Model
	bar          progress.Model
	progressChan chan tasks.ProgressUpdate
	doneChan     chan transferOutcome
	finished     chan struct{}
	progress     tasks.ProgressUpdate
	log          []string
	result       *tasks.TransferResult
	err          error
	created      list.Model
	help         help.Model
	keys         keyMap
}

// NewModel creates a TUI for one transfer. With confirm set, the source library stats are shown
// and the transfer waits for the user to accept.
func NewModel(ctx context.Context, engine *tasks.TransferEngine, req tasks.TransferRequest, confirm bool) *Model {
	ctx, cancel := context.WithCancel(ctx)

	view := TransferView
	if confirm {
		view = LoadingView
	}

	return &Model{
		ctx:     ctx,
		cancel:  cancel,
		view:    view,
		engine:  engine,
		req:     req,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(theme.Done)),
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		help:    help.New(),
		keys:    newKeyMap(),
	}
}

// Init starts the spinner and either loads stats for confirmation or starts the transfer.
func (m *Model) Init() tea.Cmd {
	if m.view == LoadingView {
		return tea.Batch(m.spinner.Tick, m.fetchStats())
	}
	return tea.Batch(m.spinner.Tick, m.startTransfer())
}

// Result returns the transfer outcome once the program has exited.
func (m *Model) Result() (*tasks.TransferResult, error) {
	return m.result, m.err
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.bar.Width = max(10, min(msg.Width-4, 60))
		if m.view == ResultView && m.result != nil {
			m.created.SetSize(msg.Width-4, msg.Height-12)
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKeys(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case Msg:
		return m.handleMsg(msg)
	}

	return m, nil
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgStatsFetched:
		data := msg.data.(statsResult)
		if data.err != nil {
			m.err = fmt.Errorf("failed to read %s library: %w", m.req.SourceName, data.err)
			m.view = ResultView
			return m, tea.Quit
		}
		m.stats = &data.stats
		m.view = ConfirmView
		return m, nil

	case MsgProgressUpdate:
		update := msg.data.(tasks.ProgressUpdate)
		m.progress = update
		if update.Message != "" {
			m.log = append(m.log, update.Message)
			if len(m.log) > maxLogLines {
				m.log = m.log[len(m.log)-maxLogLines:]
			}
		}
		return m, m.waitForProgress()

	case MsgTransferComplete:
		data := msg.data.(transferOutcome)
		m.result = data.result
		m.err = data.err
		m.view = ResultView
		m.progressChan = nil
		if m.result != nil {
			m.created = newPlaylistList(m.result.Playlists, max(m.width-4, 40), max(m.height-12, 8))
		}
		return m, nil
	}
	return m, nil
}

func (m *Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.view {
	case ConfirmView:
		switch {
		case key.Matches(msg, m.keys.yes):
			m.view = TransferView
			return m, m.startTransfer()
		case key.Matches(msg, m.keys.no), key.Matches(msg, m.keys.quit):
			m.err = ErrAborted
			m.cancel()
			return m, tea.Quit
		}
		return m, nil

	case ResultView:
		if key.Matches(msg, m.keys.quit) {
			m.cancel()
			return m, tea.Quit
		}
		if m.result != nil {
			var cmd tea.Cmd
			m.created, cmd = m.created.Update(msg)
			return m, cmd
		}
		return m, nil

	default:
		if key.Matches(msg, m.keys.quit) {
			m.err = ErrAborted
			m.cancel()
			return m, tea.Quit
		}
		return m, nil
	}
}

func (m *Model) fetchStats() tea.Cmd {
	ctx, source := m.ctx, m.req.Source
	return func() tea.Msg {
		if source == nil {
			return statsFetchedMsg(models.LibraryStats{}, fmt.Errorf("source library not initialized"))
		}
		stats, err := source.LibraryStats(ctx)
		return statsFetchedMsg(stats, err)
	}
}

func (m *Model) startTransfer() tea.Cmd {
	m.progressChan = make(chan tasks.ProgressUpdate, 64)
	m.doneChan = make(chan transferOutcome, 1)
	m.finished = make(chan struct{})

	ctx, engine, req := m.ctx, m.engine, m.req
	progress, done, finished := m.progressChan, m.doneChan, m.finished

	go func() {
		defer close(finished)
		result, err := engine.Run(ctx, req, progress)
		done <- transferOutcome{result: result, err: err}
		close(progress)
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	progress, done := m.progressChan, m.doneChan
	return func() tea.Msg {
		update, ok := <-progress
		if !ok {
			out := <-done
			return transferCompleteMsg(out.result, out.err)
		}
		return progressUpdateMsg(update)
	}
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case LoadingView:
		return fmt.Sprintf("%s Reading %s library...\n", m.spinner.View(), m.req.SourceName)
	case ConfirmView:
		return m.renderConfirm()
	case TransferView:
		return m.renderTransfer()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) renderConfirm() string {
	title := theme.Heading.Render(fmt.Sprintf("Transfer %s → %s?", m.req.SourceName, m.req.TargetName))

	var info string
	if m.stats != nil {
		info = theme.Card.Render(fmt.Sprintf("Liked songs: %d\nPlaylists:   %d", m.stats.LikedSongs, m.stats.Playlists))
	}

	warning := theme.Caution.Render("Playlists are created again on every run; nothing is deduplicated.")
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.yes, m.keys.no})

	return fmt.Sprintf("%s\n%s\n\n%s\n\n%s\n", title, info, warning, helpView)
}

func (m *Model) renderTransfer() string {
	title := theme.Heading.Render(fmt.Sprintf("Transferring %s → %s", m.req.SourceName, m.req.TargetName))

	percent := 0.0
	if m.progress.Total > 0 {
		percent = float64(m.progress.Step) / float64(m.progress.Total)
	}

	phase := m.progress.Phase.Label()
	if m.progress.Total > 0 {
		phase = fmt.Sprintf("%s (%d/%d)", phase, m.progress.Step, m.progress.Total)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n%s %s\n%s\n\n", title, m.spinner.View(), phase, m.bar.ViewAs(percent))
	for _, line := range m.log {
		b.WriteString(theme.Faint.Render(line))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.help.ShortHelpView(m.keys.ShortHelp()))
	return b.String()
}

func (m *Model) renderResult() string {
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.up, m.keys.down, m.keys.quit})

	if m.err != nil {
		return fmt.Sprintf("%s\n\n%s\n", theme.Failed.Render(fmt.Sprintf("✗ Transfer failed: %v", m.err)), helpView)
	}
	if m.result == nil {
		return fmt.Sprintf("%s\n\n%s\n", theme.Failed.Render("No result available"), helpView)
	}

	title := theme.Done.Render("✓ Transfer Complete!")
	info := fmt.Sprintf(
		"\nLiked songs saved: %d\nPlaylists created: %d\nEmpty playlists skipped: %d\nPlaylist tracks added: %d",
		m.result.LikedSongs,
		m.result.PlaylistsCreated,
		m.result.PlaylistsSkipped,
		m.result.TracksAdded,
	)

	var created string
	if len(m.result.Playlists) > 0 {
		created = "\n\n" + m.created.View()
	}

	return fmt.Sprintf("%s\n%s%s\n\n%s\n", title, info, created, helpView)
}

// wait cancels an unfinished transfer and blocks until the engine has returned and its run has
// been journaled.
func (m *Model) wait() {
	m.cancel()
	if m.finished != nil {
		<-m.finished
	}
}

// Run drives a transfer inside a Bubble Tea program and returns its outcome. It returns only
// after the engine has stopped, including when the user quits mid-transfer.
func Run(ctx context.Context, engine *tasks.TransferEngine, req tasks.TransferRequest, confirm bool, opts ...tea.ProgramOption) (*tasks.TransferResult, error) {
	model := NewModel(ctx, engine, req, confirm)
	final, err := tea.NewProgram(model, opts...).Run()
	model.wait()
	if err != nil {
		return nil, fmt.Errorf("error running TUI: %w", err)
	}

	m, ok := final.(*Model)
	if !ok {
		return nil, fmt.Errorf("unexpected TUI model %T", final)
	}
	return m.Result()
}
