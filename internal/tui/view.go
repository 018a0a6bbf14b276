package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/cwbudde/algo-lanes/dsp/effectchain"
	"github.com/cwbudde/algo-lanes/dsp/spectrum"
)

const (
	meterWidth    = 20
	progressWidth = 24
	spectrumBars  = 48
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	playingStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	selectedStyle = lipgloss.NewStyle().Reverse(true)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	panelStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

var sparks = []rune(" ▁▂▃▄▅▆▇█")

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	route := "default"
	if m.snapshot.UseSpeaker {
		route = "speaker"
	}

	var out strings.Builder
	out.WriteString(headerStyle.Render(fmt.Sprintf("algo-lanes  %d lanes  route:%s", len(m.status), route)))
	out.WriteString("\n\n")

	for i, st := range m.status {
		title := st.AssetID
		if t, ok := m.titles[st.AssetID]; ok && t != "" {
			title = t
		}

		state := dimStyle.Render("■ stop")
		if st.Playing {
			state = playingStyle.Render("▶ play")
		}

		progress := 0.0
		if st.Frames > 0 {
			progress = float64(st.Position) / float64(st.Frames)
		}

		row := fmt.Sprintf("%d %s %-12s %s %s", i+1, state, title,
			bar(progress, progressWidth), meter(st.Peak, meterWidth))
		if i == m.lane {
			row = selectedStyle.Render(row)
		}

		out.WriteString(row)
		out.WriteString("\n")
	}

	if len(m.params) > 0 {
		out.WriteString("\n")
		out.WriteString(panelStyle.Render(m.paramView()))
		out.WriteString("\n")
	}

	if len(m.spectrum) > 0 {
		out.WriteString(dimStyle.Render(sparkline(m.spectrum, spectrumBars)))
		out.WriteString("\n")
	}

	if m.message != "" {
		out.WriteString(errorStyle.Render(m.message))
		out.WriteString("\n")
	}

	out.WriteString("\n")
	out.WriteString(dimStyle.Render("1-9/space:toggle  ↑↓:lane  ←→:param  +/-:adjust  a:all  x:stop all  r:rewind  s:route  q:quit"))

	return out.String()
}

func (m Model) paramView() string {
	lines := make([]string, 0, len(m.params))

	for i, spec := range m.params {
		v := m.values[spec.Key]
		pos := (v - spec.Min) / (spec.Max - spec.Min)

		if spec.Role == effectchain.RoleLowPass && spec.Key == effectchain.KeyCutoff {
			lo, hi := effectchain.FilterViewCutoffMin, effectchain.FilterViewCutoffMax
			pos = math.Log(max(v, lo)/lo) / math.Log(hi/lo)
		}

		line := fmt.Sprintf("%-10s %-13s %s %9.2f %s", spec.Role, spec.Key, bar(pos, 16), v, spec.Unit)
		if i == m.param {
			line = selectedStyle.Render(line)
		}

		lines = append(lines, line)
	}

	return strings.Join(lines, "\n")
}

// bar renders fraction f of width cells.
func bar(f float64, width int) string {
	f = max(0, min(f, 1))
	n := int(math.Round(f * float64(width)))

	return "[" + strings.Repeat("=", n) + strings.Repeat(" ", width-n) + "]"
}

// meter renders a peak level on a 60 dB scale.
func meter(peak float64, width int) string {
	db := -60.0
	if peak > 0 {
		db = max(20*math.Log10(peak), -60)
	}

	return bar((db+60)/60, width)
}

// sparkline folds dB bins into n columns, each showing the loudest bin.
func sparkline(db []float64, n int) string {
	n = min(n, len(db))
	if n == 0 {
		return ""
	}

	out := make([]rune, n)
	per := len(db) / n

	for c := range out {
		peak := spectrum.FloorDB
		for _, v := range db[c*per : (c+1)*per] {
			peak = max(peak, v)
		}

		f := (peak + 90) / 90
		f = max(0, min(f, 1))
		out[c] = sparks[int(math.Round(f*float64(len(sparks)-1)))]
	}

	return string(out)
}
