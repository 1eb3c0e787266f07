package ui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/soundscript/internal/state"
)

const (
	previewRunes     = 280
	transcriptChrome = 8
)

// transcriptScreen shows one content detail. Sections start collapsed.
type transcriptScreen struct {
	id     string
	holder *state.Transcript
	ctx    context.Context
	cancel context.CancelFunc

	ui             state.TranscriptUIState
	viewport       viewport.Model
	showTranscript bool
	showSummary    bool
}

func newTranscriptScreen(parent context.Context, id string, holder *state.Transcript, width, height int) *transcriptScreen {
	ctx, cancel := context.WithCancel(parent)
	s := &transcriptScreen{
		id:       id,
		holder:   holder,
		ctx:      ctx,
		cancel:   cancel,
		viewport: viewport.New(max(20, width-2), max(3, height-transcriptChrome)),
	}
	s.refresh()
	return s
}

func (s *transcriptScreen) fetch() tea.Cmd {
	return func() tea.Msg {
		s.holder.FetchContentDetail(s.ctx, s.id)
		return nil
	}
}

// wait blocks until the holder changes or the screen is closed.
func (s *transcriptScreen) wait() tea.Cmd {
	changed, ctx, holder := s.holder.Changed(), s.ctx, s.holder
	return func() tea.Msg {
		select {
		case <-changed:
			return transcriptChangedMsg(holder)
		case <-ctx.Done():
			return nil
		}
	}
}

func (s *transcriptScreen) refresh() {
	s.ui = s.holder.UIState()
	s.render()
}

func (s *transcriptScreen) resize(width, height int) {
	s.viewport.Width = max(20, width-2)
	s.viewport.Height = max(3, height-transcriptChrome)
	s.render()
}

func (s *transcriptScreen) toggleTranscript() {
	s.showTranscript = !s.showTranscript
	s.render()
}

func (s *transcriptScreen) toggleSummary() {
	s.showSummary = !s.showSummary
	s.render()
}

func (s *transcriptScreen) close() { s.cancel() }

func (s *transcriptScreen) render() {
	s.viewport.SetContent(s.content())
}

func (s *transcriptScreen) content() string {
	d := s.ui.TrackDetail
	if d == nil {
		return ""
	}

	lines := []string{styles.ok.Render(d.Name)}
	if d.Artist != "" {
		lines = append(lines, styles.muted.Render(d.Artist))
	}
	if len(d.Tags) > 0 {
		tags := make([]string, len(d.Tags))
		for i, t := range d.Tags {
			tags[i] = "#" + t
		}
		lines = append(lines, styles.warn.Render(strings.Join(tags, " ")))
	}

	lines = append(lines,
		"",
		s.section("Transcript", d.Transcription, s.showTranscript, "t"),
		"",
		s.section("Summary", d.Summary, s.showSummary, "s"),
	)
	return strings.Join(lines, "\n")
}

func (s *transcriptScreen) section(title, body string, expanded bool, toggle string) string {
	arrow, action := "▸", "expand"
	if expanded {
		arrow, action = "▾", "collapse"
	}
	header := lipgloss.NewStyle().Bold(true).Render(arrow+" "+title) + styles.help.Render("  "+toggle+" to "+action)

	text := strings.TrimSpace(body)
	switch {
	case text == "":
		text = styles.muted.Render("Not available.")
	case !expanded:
		text = preview(text, previewRunes)
	}
	return header + "\n" + lipgloss.NewStyle().Width(s.viewport.Width).Render(text)
}

// preview shortens text to n runes.
func preview(text string, n int) string {
	r := []rune(text)
	if len(r) <= n {
		return text
	}
	return strings.TrimSpace(string(r[:n])) + "…"
}

func (m *Model) transcriptView() string {
	s := m.transcript
	sections := []string{styles.title.Render("Transcript & Summary")}

	if s.ui.IsLoading {
		sections = append(sections, m.spinner.View()+" Loading transcript...")
	}
	if e, ok := s.ui.Error.Last(); ok && s.ui.Error.IsErrorOccurred {
		sections = append(sections, styles.err.Render("Error: "+e.Error()))
	}
	if s.ui.TrackDetail != nil {
		sections = append(sections, s.viewport.View())
	}
	sections = append(sections, m.help.View(transcriptKeys{m.keys}))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}
