package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/jwebster45206/monologue-engine/pkg/events"
	"github.com/jwebster45206/monologue-engine/pkg/state"
)

const (
	Title = "MONOLOGUE ENGINE"

	// wordInterval paces the word-by-word reveal.
	wordInterval = 30 * time.Millisecond
	flashTimeout = 2 * time.Second
	barWidth     = 20
	cursorBlock  = "█"
)

// Controller is what the console drives.
type Controller interface {
	Status() events.Status
	FullText() string
	TogglePause() bool
	Reset()
}

// copyFunc is swapped in tests.
var copyFunc = clipboard.WriteAll

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	ctrl  Controller
	relay <-chan events.Event

	monoViewport viewport.Model
	status       events.Status
	shown        []string
	pending      []string
	animating    bool

	flash   string
	fatal   error
	ready   bool
	width   int
	height  int
	flashID int
}

type eventMsg events.Event

type wordTickMsg struct{}

type flashClearMsg struct{ id int }

type loopExitedMsg struct{ err error }

var (
	monoPanelStyle = lipgloss.NewStyle().
			PaddingTop(1).
			PaddingLeft(3).
			PaddingRight(1)

	statusPanelStyle = lipgloss.NewStyle().
				PaddingTop(1).
				PaddingRight(2).
				Border(lipgloss.NormalBorder(), false, false, false, true).
				BorderForeground(lipgloss.Color("240"))

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	textStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")). // red
			Bold(true)

	flashStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

// severityStyle colours the monologue and bars as madness rises.
func severityStyle(madness float64) lipgloss.Style {
	switch {
	case madness > 80:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("196")) // red
	case madness > 60:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("208")) // orange
	case madness > 40:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("214")) // yellow
	default:
		return textStyle
	}
}

func NewConsoleUI(ctrl Controller, relay <-chan events.Event, seedWords []string) ConsoleUI {
	vp := viewport.New(60, 20)
	vp.MouseWheelEnabled = true

	return ConsoleUI{
		ctrl:         ctrl,
		relay:        relay,
		monoViewport: vp,
		status:       ctrl.Status(),
		shown:        append([]string(nil), seedWords...),
	}
}

func (m ConsoleUI) Init() tea.Cmd {
	return waitForEvent(m.relay)
}

// waitForEvent blocks on the next controller event.
func waitForEvent(relay <-chan events.Event) tea.Cmd {
	return func() tea.Msg {
		e, ok := <-relay
		if !ok {
			return nil
		}
		return eventMsg(e)
	}
}

func wordTick() tea.Cmd {
	return tea.Tick(wordInterval, func(time.Time) tea.Msg {
		return wordTickMsg{}
	})
}

func clearFlash(id int) tea.Cmd {
	return tea.Tick(flashTimeout, func(time.Time) tea.Msg {
		return flashClearMsg{id: id}
	})
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		monoWidth, _ := m.panelWidths()
		m.monoViewport.Width = monoWidth - 4
		m.monoViewport.Height = m.height - 3
		m.ready = true
		m.refreshContent()

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "p", " ":
			m.ctrl.TogglePause()
			m.status = m.ctrl.Status()
		case "r":
			m.ctrl.Reset()
		case "c":
			if err := copyFunc(m.ctrl.FullText()); err != nil {
				m.flash = "Copy failed: " + err.Error()
			} else {
				m.flash = "Monologue copied to clipboard"
			}
			m.flashID++
			cmds = append(cmds, clearFlash(m.flashID))
		}

	case eventMsg:
		cmds = append(cmds, m.applyEvent(events.Event(msg)), waitForEvent(m.relay))
		m.refreshContent()

	case wordTickMsg:
		if len(m.pending) == 0 {
			m.animating = false
			break
		}
		m.shown = append(m.shown, m.pending[0])
		m.pending = m.pending[1:]
		m.refreshContent()
		cmds = append(cmds, wordTick())

	case flashClearMsg:
		if msg.id == m.flashID {
			m.flash = ""
		}

	case loopExitedMsg:
		m.fatal = msg.err
	}

	var vpCmd tea.Cmd
	m.monoViewport, vpCmd = m.monoViewport.Update(msg)
	cmds = append(cmds, vpCmd)

	return m, tea.Batch(cmds...)
}

// applyEvent folds a controller event into the model and returns the
// animation command when new words were queued.
func (m *ConsoleUI) applyEvent(e events.Event) tea.Cmd {
	if e.Status != nil {
		m.status = *e.Status
	}

	switch e.Type {
	case events.EventTypeNarrativeReset:
		m.shown = nil
		m.pending = append([]string(nil), e.Words...)
	case events.EventTypeFragmentAccepted:
		m.pending = append(m.pending, e.Words...)
	default:
		return nil
	}

	if m.animating || len(m.pending) == 0 {
		return nil
	}
	m.animating = true
	return wordTick()
}

func (m ConsoleUI) panelWidths() (int, int) {
	monoWidth := int(float64(m.width) * 0.7)
	return monoWidth, m.width - monoWidth
}

// refreshContent re-renders the monologue for the current viewport width.
func (m *ConsoleUI) refreshContent() {
	width := m.monoViewport.Width
	if width <= 0 {
		width = 60
	}
	text := joinWords(m.shown)
	if m.status.Generating || len(m.pending) > 0 {
		text += cursorBlock
	}
	m.monoViewport.SetContent(severityStyle(m.status.MadnessLevel).Render(wordwrap.String(text, width)))
	m.monoViewport.GotoBottom()
}

// joinWords rebuilds display text from word tokens. Paragraph markers
// become line breaks instead of being spaced like words.
func joinWords(words []string) string {
	var b strings.Builder
	lineStart := true
	for _, w := range words {
		if w == state.ParagraphBreak {
			b.WriteString(state.ParagraphBreak)
			lineStart = true
			continue
		}
		if !lineStart {
			b.WriteByte(' ')
		}
		b.WriteString(w)
		lineStart = false
	}
	return b.String()
}

func wordCount(words []string) int {
	n := 0
	for _, w := range words {
		if w != state.ParagraphBreak {
			n++
		}
	}
	return n
}

// renderBar draws a fixed-width bar for a 0-100 value.
func renderBar(value float64, width int) string {
	if value < 0 {
		value = 0
	}
	if value > 100 {
		value = 100
	}
	filled := int(value / 100 * float64(width))
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// errorBanner formats a generation error with its retry position.
func errorBanner(s events.Status) string {
	if s.Error == "" {
		return ""
	}
	return fmt.Sprintf("ERROR: %s (Retry %d/%d)", s.Error, s.RetryCount, s.MaxRetries)
}

func (m ConsoleUI) renderStatus() string {
	s := m.status
	var b strings.Builder

	b.WriteString(titleStyle.Render(Title) + "\n\n")

	row := func(label, value string) {
		b.WriteString(labelStyle.Render(label) + "\n" + value + "\n\n")
	}

	row("State", s.State)
	row("Generations", fmt.Sprintf("%d / %d", s.GenerationCount, s.TargetGenerationCount))

	sev := severityStyle(s.MadnessLevel)
	row("Madness", fmt.Sprintf("%.1f%%\n%s", s.MadnessLevel, sev.Render(renderBar(s.MadnessLevel, barWidth))))
	row("Coherence", fmt.Sprintf("%d%%\n%s", s.CoherenceScore, textStyle.Render(renderBar(float64(s.CoherenceScore), barWidth))))
	row("Words", fmt.Sprintf("%d", wordCount(m.shown)+wordCount(m.pending)))

	last := "never"
	if !s.LastGeneration.IsZero() {
		last = s.LastGeneration.Format("15:04:05")
	}
	row("Last fragment", last)

	if s.Severity != "" {
		b.WriteString(sev.Bold(true).Render(s.Severity) + "\n\n")
	}

	if banner := errorBanner(s); banner != "" {
		b.WriteString(errorStyle.Render(banner) + "\n\n")
	}
	if m.fatal != nil {
		b.WriteString(errorStyle.Render("HALTED: "+m.fatal.Error()) + "\n\n")
	}
	if m.flash != "" {
		b.WriteString(flashStyle.Render(m.flash) + "\n\n")
	}

	b.WriteString(helpStyle.Render("p/space: pause  r: reset\nc: copy  q: quit"))
	return b.String()
}

func (m ConsoleUI) View() string {
	if !m.ready {
		return "\n  Initializing..."
	}

	monoWidth, statusWidth := m.panelWidths()

	monoPanel := monoPanelStyle.Width(monoWidth).Height(m.height - 1).Render(m.monoViewport.View())
	statusPanel := statusPanelStyle.Width(statusWidth - 2).Height(m.height - 2).Render(
		wordwrap.String(m.renderStatus(), statusWidth-4),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, monoPanel, statusPanel)
}
