package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/soundscript/internal/models"
	"github.com/desertthunder/soundscript/internal/shared"
)

const (
	gridColumns = 2
	cardHeight  = 5
)

var waveLevels = []rune("▁▂▃▄▅▆▇█")

func (m *Model) homeView() string {
	var sections []string
	sections = append(sections, styles.title.Render("SoundScript"))

	if m.ui.IsLoading {
		sections = append(sections, m.spinner.View()+" Loading contents...")
	}
	if e, ok := m.ui.Error.Last(); ok && m.ui.Error.IsErrorOccurred {
		sections = append(sections, styles.err.Render("Error: "+e.Error())+styles.help.Render("  r to retry"))
	}

	var player string
	switch {
	case m.selected >= 0 && m.showSheet:
		player = m.fullPlayerView()
	case m.selected >= 0:
		player = m.miniPlayerView()
	}

	if len(m.ui.Podcasts) == 0 {
		if !m.ui.IsLoading {
			sections = append(sections, styles.muted.Render("No tracks."))
		}
	} else if !m.showSheet {
		reserved := 6 + lipgloss.Height(player)
		rows := max(1, (m.height-reserved)/cardHeight)
		sections = append(sections, renderGrid(m.ui.Podcasts, m.cursor, m.width, rows))
	}

	if player != "" {
		sections = append(sections, player)
	}
	sections = append(sections, m.help.View(m.keys))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderGrid lays tracks out in [gridColumns] columns, scrolled so the cursor row is visible.
func renderGrid(tracks []models.Track, cursor, width, visibleRows int) string {
	cardWidth := max(20, (width-4)/gridColumns-2)
	totalRows := (len(tracks) + gridColumns - 1) / gridColumns

	first := 0
	if cursorRow := cursor / gridColumns; cursorRow >= visibleRows {
		first = cursorRow - visibleRows + 1
	}
	last := min(totalRows, first+visibleRows)

	rows := make([]string, 0, last-first)
	for r := first; r < last; r++ {
		cards := make([]string, 0, gridColumns)
		for c := 0; c < gridColumns; c++ {
			i := r*gridColumns + c
			if i >= len(tracks) {
				break
			}
			style := styles.card
			if i == cursor {
				style = styles.cursor
			}
			cards = append(cards, style.Width(cardWidth).Render(cardContent(tracks[i], cardWidth-2)))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	}

	if last < totalRows {
		rows = append(rows, styles.muted.Render(fmt.Sprintf("  %d more...", len(tracks)-last*gridColumns)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func cardContent(t models.Track, width int) string {
	artist := styles.muted.Render(truncate(t.Artist, width))
	if t.Artist == "" {
		artist = styles.muted.Render("Unknown artist")
	}
	return strings.Join([]string{
		lipgloss.NewStyle().Bold(true).Render(truncate(t.Name, width)),
		artist,
		stateMarker(t),
	}, "\n")
}

// stateMarker describes the playback state of a selected track. Unselected tracks have none.
func stateMarker(t models.Track) string {
	if !t.IsSelected {
		return ""
	}
	switch t.State {
	case models.StatePlaying:
		return styles.ok.Render("▶ playing")
	case models.StatePause:
		return styles.warn.Render("❚❚ paused")
	case models.StateBuffering:
		return styles.muted.Render("… buffering")
	case models.StateError:
		return styles.err.Render("✗ error")
	case models.StateEnd:
		return styles.muted.Render("■ ended")
	default:
		return styles.muted.Render("● selected")
	}
}

func playIcon(t models.Track) string {
	if t.State == models.StatePlaying {
		return "▶"
	}
	return "❚❚"
}

func (m *Model) miniPlayerView() string {
	t := m.ui.Podcasts[m.selected]
	line := fmt.Sprintf("%s  %s  %s",
		playIcon(t),
		lipgloss.NewStyle().Bold(true).Render(truncate(t.Name, max(10, m.width/2))),
		shared.FormatTime(m.playback.CurrentPlaybackPosition),
	)
	hint := styles.help.Render("   space play/pause · n next · tab expand")
	return styles.card.Width(max(20, m.width-4)).Render(line + hint)
}

func (m *Model) fullPlayerView() string {
	t := m.ui.Podcasts[m.selected]
	width := max(20, m.width-10)
	progress := m.playback.Progress()

	artist := t.Artist
	if artist == "" {
		artist = "Unknown artist"
	}

	body := lipgloss.JoinVertical(lipgloss.Left,
		styles.ok.Render(truncate(t.Name, width)),
		styles.muted.Render(truncate(artist, width)),
		"",
		renderWaveform(m.ui.Amplitudes, progress, width),
		"",
		m.progress.ViewAs(progress),
		fmt.Sprintf("%s / %s",
			shared.FormatTime(m.playback.CurrentPlaybackPosition),
			shared.FormatTime(m.playback.CurrentTrackDuration),
		),
		"",
		fmt.Sprintf("⏮ p    %s space    n ⏭    [ -10s    ] +10s    t transcript", playIcon(t)),
	)
	return styles.sheet.Width(max(20, m.width-4)).Render(body)
}

// renderWaveform draws amplitudes (0..100) as a bar chart fitted to width, highlighting the played part.
func renderWaveform(amplitudes []int, progress float64, width int) string {
	if len(amplitudes) == 0 {
		return styles.muted.Render("No waveform data")
	}

	bars := resample(amplitudes, width)
	played := int(progress * float64(len(bars)))

	var head, tail strings.Builder
	for i, a := range bars {
		r := waveLevels[level(a)]
		if i < played {
			head.WriteRune(r)
		} else {
			tail.WriteRune(r)
		}
	}
	return styles.played.Render(head.String()) + styles.muted.Render(tail.String())
}

// resample reduces amplitudes to at most width values, keeping each bucket's peak.
func resample(amplitudes []int, width int) []int {
	if width <= 0 || len(amplitudes) <= width {
		return amplitudes
	}
	out := make([]int, width)
	for i := range out {
		lo := i * len(amplitudes) / width
		hi := (i + 1) * len(amplitudes) / width
		peak := 0
		for _, a := range amplitudes[lo:hi] {
			peak = max(peak, a)
		}
		out[i] = peak
	}
	return out
}

func level(amplitude int) int {
	amplitude = min(max(amplitude, 0), 100)
	return amplitude * (len(waveLevels) - 1) / 100
}

func truncate(s string, width int) string {
	r := []rune(s)
	if width <= 0 || len(r) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	return string(r[:width-1]) + "…"
}
