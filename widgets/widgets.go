package widgets

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// MeterStyle holds the glyphs and colors of a level meter
type MeterStyle struct {
	Full, Empty, Peak rune
	Low, High, Over   lipgloss.Color
}

// RenderMeter draws a horizontal bar of width cells for level (linear 0-1),
// with a marker at peak. Cells past 0.9 use High, clipping cells use Over.
func RenderMeter(level, peak float64, width int, st MeterStyle) string {
	if width <= 0 {
		return ""
	}
	filled := cells(level, width)
	peakCell := cells(peak, width) - 1

	var out strings.Builder
	for i := 0; i < width; i++ {
		color := st.Low
		switch {
		case i >= width-1 && peak >= 1:
			color = st.Over
		case float64(i) >= 0.9*float64(width):
			color = st.High
		}
		r := st.Empty
		if i < filled {
			r = st.Full
		} else if i == peakCell {
			r = st.Peak
		}
		out.WriteString(lipgloss.NewStyle().Foreground(color).Render(string(r)))
	}
	return out.String()
}

func cells(v float64, width int) int {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	return min(int(math.Round(v*float64(width))), width)
}

// DBFS formats a linear amplitude as dBFS
func DBFS(v float64) string {
	if v <= 0 {
		return "  -inf dB"
	}
	return fmt.Sprintf("%6.1f dB", 20*math.Log10(v))
}

// RenderSlider renders "name [=====     ] value" for a control
func RenderSlider(name string, value, lo, hi float64, width int, color lipgloss.Color) string {
	norm := 0.0
	if hi > lo {
		norm = (value - lo) / (hi - lo)
	}
	n := cells(norm, width)
	bar := strings.Repeat("=", n) + strings.Repeat(" ", width-n)
	return fmt.Sprintf("%-8s [%s] %8.3f", name, lipgloss.NewStyle().Foreground(color).Render(bar), value)
}

// RenderKeyHelp formats key bindings in a friendly way
func RenderKeyHelp(sections []KeySection) string {
	var lines []string
	for _, sec := range sections {
		if sec.Title != "" {
			lines = append(lines, sec.Title)
		}
		for _, k := range sec.Keys {
			lines = append(lines, fmt.Sprintf("  %-12s %s", k.Key, k.Desc))
		}
	}
	return strings.Join(lines, "\n")
}

// KeySection groups related key bindings
type KeySection struct {
	Title string
	Keys  []KeyBinding
}

// KeyBinding is a single key and its description
type KeyBinding struct {
	Key  string
	Desc string
}
