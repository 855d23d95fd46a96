package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func canvasStyle() lipgloss.Style {
	return lipgloss.NewStyle().Padding(1, 2).Foreground(CurrentTheme.Flock)
}

func statsStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(CurrentTheme.Bounds).
		Padding(1, 2).
		Width(44)
}

func headerStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(CurrentTheme.Accent).Bold(true).MarginBottom(1)
}

func labelStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(CurrentTheme.Muted).Width(14)
}

func valueStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(CurrentTheme.Text)
}

func statusStyle(running bool) lipgloss.Style {
	c := CurrentTheme.Warning
	if running {
		c = CurrentTheme.Good
	}
	return lipgloss.NewStyle().Bold(true).Foreground(c)
}

func helpStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(CurrentTheme.Muted).Italic(true).MarginTop(1)
}

// Bar renders a fixed-width fill gauge for a value in [0, 1].
func Bar(frac float64, width int) string {
	filled := int(frac*float64(width) + 0.5)
	filled = max(0, min(width, filled))
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// Sparkline renders values as one block glyph per column, sampling evenly
// when there are more values than columns.
func Sparkline(values []float64, width int) string {
	if len(values) == 0 || width <= 0 {
		return strings.Repeat("─", max(width, 0))
	}
	glyphs := []rune("▁▂▃▄▅▆▇█")

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo, hi = min(lo, v), max(hi, v)
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}

	step := max(1, len(values)/width)
	var b strings.Builder
	for i := 0; i < width && i*step < len(values); i++ {
		idx := int((values[i*step] - lo) / span * float64(len(glyphs)-1))
		b.WriteRune(glyphs[max(0, min(len(glyphs)-1, idx))])
	}
	return b.String()
}
