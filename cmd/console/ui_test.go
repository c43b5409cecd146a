package main

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/monologue-engine/pkg/events"
)

type fakeController struct {
	status  events.Status
	text    string
	toggles int
	resets  int
}

func (c *fakeController) Status() events.Status { return c.status }
func (c *fakeController) FullText() string      { return c.text }
func (c *fakeController) Reset()                { c.resets++ }

func (c *fakeController) TogglePause() bool {
	c.toggles++
	c.status.Paused = !c.status.Paused
	return c.status.Paused
}

func newTestUI(t *testing.T, ctrl *fakeController) ConsoleUI {
	t.Helper()
	ui := NewConsoleUI(ctrl, make(chan events.Event), []string{"Hello?", "\n\n"})
	model, _ := ui.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return model.(ConsoleUI)
}

func key(s string) tea.KeyMsg {
	if s == " " {
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestJoinWords(t *testing.T) {
	tests := []struct {
		name  string
		words []string
		want  string
	}{
		{"empty", nil, ""},
		{"plain", []string{"a", "b", "c"}, "a b c"},
		{"paragraphs", []string{"one", "two", "\n\n", "three"}, "one two\n\nthree"},
		{"trailing break", []string{"end.", "\n\n"}, "end.\n\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, joinWords(tt.words))
		})
	}
}

func TestRenderBar(t *testing.T) {
	assert.Equal(t, "░░░░░░░░░░", renderBar(0, 10))
	assert.Equal(t, "█████░░░░░", renderBar(50, 10))
	assert.Equal(t, "██████████", renderBar(140, 10))
	assert.Equal(t, "░░░░░░░░░░", renderBar(-5, 10))
}

func TestErrorBanner(t *testing.T) {
	assert.Empty(t, errorBanner(events.Status{}))
	assert.Equal(t, "ERROR: connection refused (Retry 2/3)",
		errorBanner(events.Status{Error: "connection refused", RetryCount: 2, MaxRetries: 3}))
}

func TestWordCount(t *testing.T) {
	assert.Equal(t, 3, wordCount([]string{"a", "\n\n", "b", "c", "\n\n"}))
}

func TestConsoleUI_FragmentAnimatesWordByWord(t *testing.T) {
	ui := newTestUI(t, &fakeController{})

	model, cmd := ui.Update(eventMsg(events.Event{
		Type:   events.EventTypeFragmentAccepted,
		Words:  []string{"The", "walls", "\n\n"},
		Status: &events.Status{GenerationCount: 1, MadnessLevel: 0.4},
	}))
	ui = model.(ConsoleUI)
	require.NotNil(t, cmd)
	assert.True(t, ui.animating)
	assert.Equal(t, 1, ui.status.GenerationCount)
	assert.Len(t, ui.pending, 3)

	for range 3 {
		model, _ = ui.Update(wordTickMsg{})
		ui = model.(ConsoleUI)
	}
	assert.Empty(t, ui.pending)
	assert.Equal(t, []string{"Hello?", "\n\n", "The", "walls", "\n\n"}, ui.shown)

	model, _ = ui.Update(wordTickMsg{})
	ui = model.(ConsoleUI)
	assert.False(t, ui.animating)
}

func TestConsoleUI_ResetReplacesText(t *testing.T) {
	ui := newTestUI(t, &fakeController{})
	ui.pending = []string{"stale"}

	model, _ := ui.Update(eventMsg(events.Event{
		Type:  events.EventTypeNarrativeReset,
		Words: []string{"Hello?", "Hello.", "\n\n"},
	}))
	ui = model.(ConsoleUI)

	assert.Empty(t, ui.shown)
	assert.Equal(t, []string{"Hello?", "Hello.", "\n\n"}, ui.pending)
}

func TestConsoleUI_Keys(t *testing.T) {
	ctrl := &fakeController{text: "the whole monologue"}
	ui := newTestUI(t, ctrl)

	model, _ := ui.Update(key("p"))
	ui = model.(ConsoleUI)
	assert.Equal(t, 1, ctrl.toggles)
	assert.True(t, ui.status.Paused)

	model, _ = ui.Update(key(" "))
	ui = model.(ConsoleUI)
	assert.Equal(t, 2, ctrl.toggles)
	assert.False(t, ui.status.Paused)

	model, _ = ui.Update(key("r"))
	ui = model.(ConsoleUI)
	assert.Equal(t, 1, ctrl.resets)

	_, cmd := ui.Update(key("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestConsoleUI_Copy(t *testing.T) {
	var copied string
	orig := copyFunc
	t.Cleanup(func() { copyFunc = orig })
	copyFunc = func(s string) error {
		copied = s
		return nil
	}

	ctrl := &fakeController{text: "the whole monologue"}
	ui := newTestUI(t, ctrl)

	model, _ := ui.Update(key("c"))
	ui = model.(ConsoleUI)
	assert.Equal(t, "the whole monologue", copied)
	assert.Contains(t, ui.flash, "copied")

	copyFunc = func(string) error { return errors.New("no clipboard") }
	model, _ = ui.Update(key("c"))
	ui = model.(ConsoleUI)
	assert.Contains(t, ui.flash, "no clipboard")

	model, _ = ui.Update(flashClearMsg{id: ui.flashID})
	ui = model.(ConsoleUI)
	assert.Empty(t, ui.flash)
}

func TestConsoleUI_StatusPanel(t *testing.T) {
	ui := newTestUI(t, &fakeController{})
	ui.status = events.Status{
		State:                 events.StateCorrupted,
		GenerationCount:       12,
		TargetGenerationCount: 300,
		MadnessLevel:          65,
		Severity:              "SEMANTIC BREAKDOWN",
		Error:                 "timeout",
		RetryCount:            1,
		MaxRetries:            3,
	}

	out := ui.renderStatus()
	assert.Contains(t, out, "12 / 300")
	assert.Contains(t, out, "SEMANTIC BREAKDOWN")
	assert.Contains(t, out, "ERROR: timeout (Retry 1/3)")
	assert.Contains(t, out, events.StateCorrupted)
}
