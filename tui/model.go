package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"go-synth/host"
	"go-synth/plugin"
	"go-synth/theme"
	"go-synth/widgets"
)

// keyboard rows, tracker style: bottom row from C3, top row from C4
var noteKeys = map[string]uint8{
	"z": 48, "s": 49, "x": 50, "d": 51, "c": 52, "v": 53,
	"g": 54, "b": 55, "h": 56, "n": 57, "j": 58, "m": 59,
	"q": 60, "2": 61, "w": 62, "3": 63, "e": 64, "r": 65,
	"5": 66, "t": 67, "6": 68, "y": 69, "7": 70, "u": 71,
}

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// NoteName formats a MIDI pitch with middle C as C4
func NoteName(p int) string {
	if p < 0 || p > 127 {
		return "--"
	}
	return fmt.Sprintf("%s%d", noteNames[p%12], p/12-1)
}

type Model struct {
	Manager    *host.Manager
	Theme      *theme.Theme
	MeterWidth int
	quitting   bool
	err        error
}

type UpdateMsg struct{}

func NewModel(manager *host.Manager, th *theme.Theme, meterWidth int) Model {
	if meterWidth <= 0 {
		meterWidth = 40
	}
	return Model{
		Manager:    manager,
		Theme:      th,
		MeterWidth: meterWidth,
	}
}

func ListenForUpdates(manager *host.Manager) tea.Cmd {
	return func() tea.Msg {
		<-manager.UpdateChan
		return UpdateMsg{}
	}
}

func (m Model) Init() tea.Cmd {
	return ListenForUpdates(m.Manager)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		key := msg.String()
		switch key {
		case "esc", "ctrl+c":
			m.quitting = true
			m.Manager.Stop()
			return m, tea.Quit

		case "p":
			if m.Manager.GetState().Playing {
				m.Manager.Stop()
			} else {
				m.err = m.Manager.Play()
			}

		case " ":
			m.Manager.AllNotesOff()

		case "[":
			m.Manager.SelectControl(-1)
		case "]":
			m.Manager.SelectControl(1)

		case "+", "=":
			m.Manager.AdjustControl(1)
		case "-", "_":
			m.Manager.AdjustControl(-1)

		default:
			if pitch, ok := noteKeys[key]; ok {
				m.Manager.ToggleNote(pitch)
			}
		}

	case UpdateMsg:
		return m, ListenForUpdates(m.Manager)
	}

	return m, nil
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	st := m.Manager.GetState()
	h := m.Manager.Host()
	sym := m.Theme.Symbols

	headerStyle := lipgloss.NewStyle().Foreground(m.Theme.Accent())
	dimStyle := lipgloss.NewStyle().Foreground(m.Theme.Muted())
	fgStyle := lipgloss.NewStyle().Foreground(m.Theme.FG())
	cursorStyle := lipgloss.NewStyle().Foreground(m.Theme.Cursor())
	warnStyle := lipgloss.NewStyle().Foreground(m.Theme.Warning())

	playState := fmt.Sprintf("%c STOP", sym.Stopped)
	if st.Playing {
		playState = fmt.Sprintf("%c PLAY", sym.Playing)
	}

	input := "no keyboard"
	if c := m.Manager.Controller(); c != nil {
		input = c.ID()
	}

	header := headerStyle.Render(fmt.Sprintf("go-synth  %s  %s  %.0fHz/%d  %s  %s",
		h.Descriptor().Name, playState, h.SampleRate(), h.BlockSize(), st.Backend, input))

	meter := widgets.RenderMeter(float64(st.Stats.RMS), float64(st.Stats.Peak), m.MeterWidth, widgets.MeterStyle{
		Full:  sym.MeterFull,
		Empty: sym.MeterEmpty,
		Peak:  sym.MeterPeak,
		Low:   m.Theme.Success(),
		High:  m.Theme.Warning(),
		Over:  m.Theme.Active(),
	})
	level := fmt.Sprintf("level  %s %s", meter, widgets.DBFS(float64(st.Stats.Peak)))

	voice := fgStyle.Render(fmt.Sprintf("voice  %-8s %s", st.Stats.Stage, NoteName(st.Stats.Pitch)))

	var controls []string
	for i, c := range st.Controls {
		line := widgets.RenderSlider(c.Port.Symbol, float64(c.Value), float64(c.Port.Min), float64(c.Port.Max), 20, m.Theme.Accent())
		if i == st.Selected {
			controls = append(controls, cursorStyle.Render(string(sym.Selected))+" "+line)
		} else {
			controls = append(controls, "  "+line)
		}
	}

	var held []string
	for _, p := range st.Held {
		held = append(held, NoteName(int(p)))
	}
	notes := fgStyle.Render(fmt.Sprintf("held   %c %s", sym.KeyDown, strings.Join(held, " ")))

	counters := dimStyle.Render(fmt.Sprintf("blocks %d  violations %d  dropped %d", st.Stats.Blocks, st.Stats.Violations, st.Stats.Dropped))
	if st.Stats.Violations > 0 || st.Stats.Dropped > 0 {
		counters = warnStyle.Render(fmt.Sprintf("blocks %d  violations %d  dropped %d", st.Stats.Blocks, st.Stats.Violations, st.Stats.Dropped))
	}

	help := dimStyle.Render("p:play  z-m/q-u:notes  space:all off  [/]:select  +/-:adjust  esc:quit")

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(header)
	out.WriteString("\n\n")
	out.WriteString(level)
	out.WriteString("\n")
	out.WriteString(voice)
	out.WriteString("\n")
	if h.Descriptor().Has(plugin.PortEvents) || len(st.Held) > 0 {
		out.WriteString(notes)
		out.WriteString("\n")
	}
	out.WriteString("\n")
	out.WriteString(strings.Join(controls, "\n"))
	out.WriteString("\n\n")
	out.WriteString(counters)
	if m.err != nil {
		out.WriteString("\n")
		out.WriteString(warnStyle.Render(m.err.Error()))
	}
	out.WriteString("\n\n")
	out.WriteString(help)

	return out.String()
}
