package ui

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeff-barlow-spady/transkript/pkg/app"
	"github.com/jeff-barlow-spady/transkript/pkg/transcription"
)

// MockRunner is a mock implementation of Runner
type MockRunner struct {
	RunFunc func(ctx context.Context, path string) (app.Result, error)
	tracker *transcription.StateTracker
	paths   []string
}

func newMockRunner(text string) *MockRunner {
	return &MockRunner{
		RunFunc: func(context.Context, string) (app.Result, error) {
			return app.Result{Text: text}, nil
		},
		tracker: transcription.NewStateTracker(),
	}
}

func (m *MockRunner) Run(ctx context.Context, path string) (app.Result, error) {
	m.paths = append(m.paths, path)
	return m.RunFunc(ctx, path)
}

func (m *MockRunner) State() *transcription.StateTracker {
	return m.tracker
}

// collect runs cmd and every command batched inside it
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var msgs []tea.Msg
		for _, c := range batch {
			msgs = append(msgs, collect(c)...)
		}
		return msgs
	}
	return []tea.Msg{msg}
}

func readyModel(t *testing.T, runner Runner, file string) *TerminalModel {
	t.Helper()
	m := NewTerminalModel(context.Background(), runner, t.TempDir(), file)
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 40})
	return m
}

func TestTerminalModelRunsInitialFile(t *testing.T) {
	runner := newMockRunner("Dobrý deň")
	m := readyModel(t, runner, "/audio/clip.m4a")

	var result *resultMsg
	for _, msg := range collect(m.Init()) {
		if r, ok := msg.(resultMsg); ok {
			result = &r
		}
	}
	if m.phase != phaseRunning {
		t.Errorf("Expected running phase, got %v", m.phase)
	}
	if result == nil {
		t.Fatal("Expected Init to run the initial file")
	}
	if len(runner.paths) != 1 || runner.paths[0] != "/audio/clip.m4a" {
		t.Errorf("Expected runner called with clip.m4a, got %v", runner.paths)
	}

	m.Update(*result)
	if m.phase != phaseDone {
		t.Errorf("Expected done phase, got %v", m.phase)
	}
	if !strings.Contains(m.View(), "Dobrý deň") {
		t.Errorf("Expected transcript in view, got:\n%s", m.View())
	}
}

func TestTerminalModelStartsInPicker(t *testing.T) {
	m := readyModel(t, newMockRunner(""), "")
	m.Init()

	if m.phase != phasePicking {
		t.Errorf("Expected picking phase, got %v", m.phase)
	}
	if !strings.Contains(m.View(), "Choose an audio file") {
		t.Errorf("Expected picker prompt in view, got:\n%s", m.View())
	}
}

func TestTerminalModelShowsState(t *testing.T) {
	m := readyModel(t, newMockRunner(""), "")
	m.start("/audio/clip.wav")

	m.Update(stateMsg(transcription.State{IsTranscribing: true, Progress: 0.3, StatusText: transcription.StatusTranscribing}))
	view := m.View()
	if !strings.Contains(view, "Status: transcribing") {
		t.Errorf("Expected status in view, got:\n%s", view)
	}
	if !strings.Contains(view, "clip.wav") {
		t.Errorf("Expected file name in view, got:\n%s", view)
	}
	if m.state.Progress != 0.3 {
		t.Errorf("Expected progress 0.3, got %v", m.state.Progress)
	}
}

func TestTerminalModelErrorIsAcknowledged(t *testing.T) {
	m := readyModel(t, newMockRunner(""), "")
	m.start("/audio/clip.mp3")

	m.Update(resultMsg{err: &transcription.Error{Kind: transcription.KindConversionFailed, Err: errors.New("exit status 1")}})
	if m.phase != phaseFailed {
		t.Fatalf("Expected failed phase, got %v", m.phase)
	}
	if !strings.Contains(m.View(), "could not be converted") {
		t.Errorf("Expected conversion message in view, got:\n%s", m.View())
	}

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.phase != phasePicking {
		t.Errorf("Expected picker after acknowledgement, got %v", m.phase)
	}
	if m.err != nil {
		t.Errorf("Expected error to be cleared, got %v", m.err)
	}
	if cmd == nil {
		t.Error("Expected directory refresh after acknowledgement")
	}
}

func TestTerminalModelQuit(t *testing.T) {
	m := readyModel(t, newMockRunner(""), "")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("Expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("Expected tea.QuitMsg")
	}
}

func TestTerminalModelSpinnerStopsWhenIdle(t *testing.T) {
	m := readyModel(t, newMockRunner(""), "")

	if _, cmd := m.Update(spinner.TickMsg{}); cmd != nil {
		t.Error("Expected no spinner tick outside a transcription")
	}
}

func TestLogWriter(t *testing.T) {
	ui := &TerminalUI{logCh: make(chan string, 2)}
	w := ui.LogWriter()

	n, err := w.Write([]byte("first\nsecond\nthird\n"))
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if n != len("first\nsecond\nthird\n") {
		t.Errorf("Expected full write, got %d", n)
	}
	if got := <-ui.logCh; got != "first" {
		t.Errorf("Expected 'first', got %q", got)
	}
	if got := <-ui.logCh; got != "second" {
		t.Errorf("Expected 'second', got %q", got)
	}
	select {
	case line := <-ui.logCh:
		t.Errorf("Expected overflow line to be dropped, got %q", line)
	default:
	}
}

func TestTerminalModelLogLines(t *testing.T) {
	m := readyModel(t, newMockRunner(""), "")
	for i := 0; i < maxLogLines+2; i++ {
		m.Update(logMsg("line"))
	}
	if len(m.logMessages) != maxLogLines {
		t.Errorf("Expected %d log lines, got %d", maxLogLines, len(m.logMessages))
	}
}
