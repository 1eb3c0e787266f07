package ui

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/soundscript/internal/models"
	"github.com/desertthunder/soundscript/internal/shared"
	"github.com/desertthunder/soundscript/internal/state"
)

const seekStep = 10 * time.Second

// Deps are the state holders the TUI renders.
type Deps struct {
	Home          *state.Home
	NewTranscript func() *state.Transcript // Called once per transcript screen
	Logger        *log.Logger
}

// Model represents the TUI application state.
type Model struct {
	ctx           context.Context
	home          *state.Home
	newTranscript func() *state.Transcript
	logger        *log.Logger
	nav           *navigator
	transcript    *transcriptScreen

	ui        state.HomeUIState
	playback  models.PlaybackState
	selected  int
	cursor    int
	showSheet bool
	audio     string // audio whose amplitudes were last requested

	width    int
	height   int
	spinner  spinner.Model
	progress progress.Model
	help     help.Model
	keys     keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, deps Deps) *Model {
	logger := deps.Logger
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Model{
		ctx:           ctx,
		home:          deps.Home,
		newTranscript: deps.NewTranscript,
		logger:        logger,
		nav:           newNavigator(),
		selected:      -1,
		width:         80,
		height:        24,
		spinner:       spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(styles.played)),
		progress:      progress.New(progress.WithDefaultGradient(), progress.WithWidth(60), progress.WithoutPercentage()),
		help:          help.New(),
		keys:          newKeyMap(),
	}
}

// Run starts the program and blocks until the user quits or ctx is cancelled.
func Run(ctx context.Context, deps Deps) error {
	p := tea.NewProgram(NewModel(ctx, deps), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// Init starts the spinner, loads the contents and subscribes to home changes.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetchContents(), m.waitForHome())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = max(10, min(msg.Width-8, 80))
		if m.transcript != nil {
			m.transcript.resize(msg.Width, msg.Height)
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case Msg:
		return m.handleMsg(msg)

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}

		if m.nav.Current().Name == RouteTranscript && m.transcript != nil {
			return m.handleTranscriptKeys(msg)
		}
		return m.handleHomeKeys(msg)
	}

	return m, nil
}

// View renders the screen for the current route.
func (m *Model) View() string {
	if m.nav.Current().Name == RouteTranscript && m.transcript != nil {
		return m.transcriptView()
	}
	return m.homeView()
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgContentsLoaded:
		return m, m.refreshHome()
	case MsgHomeChanged:
		return m, tea.Batch(m.refreshHome(), m.waitForHome())
	case MsgTranscriptChanged:
		holder, _ := msg.data.(*state.Transcript)
		if m.transcript == nil || m.transcript.holder != holder {
			return m, nil
		}
		m.transcript.refresh()
		return m, m.transcript.wait()
	}
	return m, nil
}

// refreshHome copies the home holder's snapshot into the model.
//
// A newly selected track moves the cursor and requests its waveform.
func (m *Model) refreshHome() tea.Cmd {
	previous := m.selected

	m.ui = m.home.UIState()
	m.playback = m.home.Playback()
	m.selected = m.home.SelectedIndex()

	if n := len(m.ui.Podcasts); m.cursor >= n {
		m.cursor = max(n-1, 0)
	}
	if m.selected < 0 || m.selected >= len(m.ui.Podcasts) {
		m.selected = -1
		m.showSheet = false
		return nil
	}
	if m.selected != previous {
		m.cursor = m.selected
	}

	audio := m.ui.Podcasts[m.selected].Audio
	if audio == m.audio {
		return nil
	}
	m.audio = audio
	return m.fetchAmplitudes(audio)
}

func (m *Model) handleHomeKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	tracks := m.ui.Podcasts

	switch {
	case key.Matches(msg, m.keys.back):
		m.showSheet = false
	case key.Matches(msg, m.keys.up):
		m.moveCursor(-gridColumns)
	case key.Matches(msg, m.keys.down):
		m.moveCursor(gridColumns)
	case key.Matches(msg, m.keys.left):
		m.moveCursor(-1)
	case key.Matches(msg, m.keys.right):
		m.moveCursor(1)
	case key.Matches(msg, m.keys.enter):
		if m.cursor < len(tracks) {
			m.home.TrackClick(tracks[m.cursor])
		}
	case key.Matches(msg, m.keys.playPause):
		m.home.PlayPause()
	case key.Matches(msg, m.keys.next):
		m.home.Next()
	case key.Matches(msg, m.keys.previous):
		m.home.Previous()
	case key.Matches(msg, m.keys.forward):
		m.seek(seekStep)
	case key.Matches(msg, m.keys.rewind):
		m.seek(-seekStep)
	case key.Matches(msg, m.keys.sheet):
		if m.selected >= 0 {
			m.showSheet = !m.showSheet
		}
	case key.Matches(msg, m.keys.transcript):
		return m, m.openTranscript()
	case key.Matches(msg, m.keys.refresh):
		return m, m.fetchContents()
	}

	return m, nil
}

func (m *Model) handleTranscriptKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.back):
		m.closeTranscript()
		return m, nil
	case key.Matches(msg, m.keys.transcript):
		m.transcript.toggleTranscript()
		return m, nil
	case key.Matches(msg, m.keys.summary):
		m.transcript.toggleSummary()
		return m, nil
	}

	var cmd tea.Cmd
	m.transcript.viewport, cmd = m.transcript.viewport.Update(msg)
	return m, cmd
}

func (m *Model) moveCursor(delta int) {
	next := m.cursor + delta
	if next < 0 || next >= len(m.ui.Podcasts) {
		return
	}
	m.cursor = next
}

func (m *Model) seek(delta time.Duration) {
	if m.selected < 0 {
		return
	}
	pos := max(m.playback.CurrentPlaybackPosition+delta, 0)
	if d := m.playback.CurrentTrackDuration; d > 0 && pos > d {
		pos = d
	}
	m.home.Seek(pos)
}

// openTranscript navigates to the transcript of the selected track, or the track under the cursor.
func (m *Model) openTranscript() tea.Cmd {
	if m.newTranscript == nil {
		return nil
	}

	var id string
	switch {
	case m.selected >= 0:
		id = m.ui.Podcasts[m.selected].ID
	case m.cursor < len(m.ui.Podcasts):
		id = m.ui.Podcasts[m.cursor].ID
	default:
		return nil
	}

	m.nav.Navigate(TranscriptRoute(id))
	m.transcript = newTranscriptScreen(m.ctx, id, m.newTranscript(), m.width, m.height)
	return tea.Batch(m.transcript.fetch(), m.transcript.wait())
}

func (m *Model) closeTranscript() {
	if m.transcript != nil {
		m.transcript.close()
		m.transcript = nil
	}
	m.nav.Back()
}

func (m *Model) fetchContents() tea.Cmd {
	home, ctx := m.home, m.ctx
	return func() tea.Msg {
		home.FetchContents(ctx)
		return contentsLoadedMsg()
	}
}

func (m *Model) fetchAmplitudes(url string) tea.Cmd {
	home, ctx := m.home, m.ctx
	return func() tea.Msg {
		home.FetchAmplitudes(ctx, url)
		return nil
	}
}

// waitForHome blocks until the home holder changes.
func (m *Model) waitForHome() tea.Cmd {
	changed, ctx := m.home.Changed(), m.ctx
	return func() tea.Msg {
		select {
		case <-changed:
			return homeChangedMsg()
		case <-ctx.Done():
			return nil
		}
	}
}
