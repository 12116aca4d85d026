package widgets

import (
	"strings"
	"testing"
)

var plain = MeterStyle{Full: '#', Empty: '.', Peak: '|'}

func TestRenderMeter(t *testing.T) {
	tests := []struct {
		level, peak float64
		want        string
	}{
		{0, 0, ".........."},
		{0.5, 0.5, "#####....."},
		{0.3, 0.8, "###....|.."},
		{2, 2, "##########"},
	}
	for _, tt := range tests {
		got := RenderMeter(tt.level, tt.peak, 10, plain)
		if stripped(got) != tt.want {
			t.Errorf("RenderMeter(%v, %v) = %q, want %q", tt.level, tt.peak, stripped(got), tt.want)
		}
	}
	if RenderMeter(1, 1, 0, plain) != "" {
		t.Error("zero width meter not empty")
	}
}

// stripped drops ANSI escapes so glyph order can be compared
func stripped(s string) string {
	var out strings.Builder
	esc := false
	for _, r := range s {
		switch {
		case r == 0x1b:
			esc = true
		case esc && r == 'm':
			esc = false
		case !esc:
			out.WriteRune(r)
		}
	}
	return out.String()
}

func TestDBFS(t *testing.T) {
	if got := DBFS(1); got != "   0.0 dB" {
		t.Errorf("DBFS(1) = %q", got)
	}
	if got := DBFS(0.5); got != "  -6.0 dB" {
		t.Errorf("DBFS(0.5) = %q", got)
	}
	if got := DBFS(0); got != "  -inf dB" {
		t.Errorf("DBFS(0) = %q", got)
	}
}

func TestRenderKeyHelp(t *testing.T) {
	got := RenderKeyHelp([]KeySection{{Title: "Transport", Keys: []KeyBinding{{"p", "play/stop"}}}})
	if got != "Transport\n  p            play/stop" {
		t.Errorf("got %q", got)
	}
}
