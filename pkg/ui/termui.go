package ui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeff-barlow-spady/transkript/pkg/app"
	"github.com/jeff-barlow-spady/transkript/pkg/transcription"
)

const (
	appASCIIBanner = `
 ▀█▀ █▀█ ▄▀█ █▄ █ █▀ █▄▀ █▀█ █ █▀█ ▀█▀
  █  █▀▄ █▀█ █ ▀█ ▄█ █ █ █▀▄ █ █▀▀  █
       Audio-to-Text Transcription
`
	appVersion = "v0.2.0"

	maxLogLines = 5
)

var (
	appStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#61E3FA")).
			Background(lipgloss.Color("#1E1E2E")).
			Padding(1, 2)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A9B1D6"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#9ECE6A")).
			MarginTop(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F7768E"))

	frameStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7AA2F7")).
			Padding(1, 2)
)

// Runner transcribes one file and exposes the orchestrator state
type Runner interface {
	Run(ctx context.Context, path string) (app.Result, error)
	State() *transcription.StateTracker
}

type phase int

const (
	phasePicking phase = iota
	phaseRunning
	phaseDone
	phaseFailed
)

type (
	stateMsg  transcription.State
	logMsg    string
	resultMsg struct {
		result app.Result
		err    error
	}
)

// TerminalModel is the TUI model
type TerminalModel struct {
	ctx      context.Context
	runner   Runner
	picker   filepicker.Model
	spinner  spinner.Model
	progress progress.Model

	phase       phase
	file        string
	state       transcription.State
	result      app.Result
	err         error
	logMessages []string

	width  int
	height int
	ready  bool
}

// NewTerminalModel creates a TUI model browsing startDir. When file is set
// the model transcribes it right away.
func NewTerminalModel(ctx context.Context, runner Runner, startDir, file string) *TerminalModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#9ECE6A"))

	fp := filepicker.New()
	fp.AllowedTypes = app.SupportedExtensions
	fp.CurrentDirectory = startDir

	return &TerminalModel{
		ctx:      ctx,
		runner:   runner,
		picker:   fp,
		spinner:  s,
		progress: progress.New(progress.WithDefaultGradient()),
		file:     file,
	}
}

// Init reads the start directory and starts the initial file, if any
func (m *TerminalModel) Init() tea.Cmd {
	cmds := []tea.Cmd{m.picker.Init()}
	if m.file != "" {
		cmds = append(cmds, m.start(m.file))
	}
	return tea.Batch(cmds...)
}

func (m *TerminalModel) start(path string) tea.Cmd {
	m.phase = phaseRunning
	m.file = path
	m.state = transcription.State{}
	m.result = app.Result{}
	m.err = nil

	ctx, runner := m.ctx, m.runner
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		result, err := runner.Run(ctx, path)
		return resultMsg{result: result, err: err}
	})
}

// Update updates the model based on messages
func (m *TerminalModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		}
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.progress.Width = min(max(msg.Width-8, 10), 60)

	case stateMsg:
		m.state = transcription.State(msg)
		return m, nil

	case resultMsg:
		if msg.err != nil {
			m.phase = phaseFailed
			m.err = msg.err
		} else {
			m.phase = phaseDone
			m.result = msg.result
		}
		return m, nil

	case logMsg:
		m.logMessages = append([]string{string(msg)}, m.logMessages...)
		if len(m.logMessages) > maxLogLines {
			m.logMessages = m.logMessages[:maxLogLines]
		}
		return m, nil

	case spinner.TickMsg:
		if m.phase != phaseRunning {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	// Directory listings and resizes go to the picker in every phase
	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	return m, cmd
}

func (m *TerminalModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.phase {
	case phasePicking:
		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)
		if ok, path := m.picker.DidSelectFile(msg); ok {
			return m, m.start(path)
		}
		if ok, path := m.picker.DidSelectDisabledFile(msg); ok {
			m.phase = phaseFailed
			m.err = fmt.Errorf("%w: %s", app.ErrUnsupportedFile, filepath.Base(path))
			return m, nil
		}
		return m, cmd

	case phaseFailed, phaseDone:
		// A single acknowledgement returns to the picker
		switch msg.String() {
		case "enter", "esc", " ":
			m.phase = phasePicking
			m.err = nil
			return m, m.picker.Init()
		}
	}
	return m, nil
}

// View renders the TUI
func (m *TerminalModel) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var s strings.Builder
	s.WriteString(appStyle.Render(appASCIIBanner))
	s.WriteString("\n" + infoStyle.Render(appVersion))

	switch m.phase {
	case phasePicking:
		s.WriteString("\n" + statusStyle.Render("Choose an audio file ("+strings.Join(app.SupportedExtensions, " ")+")"))
		s.WriteString("\n\n" + m.picker.View())
		s.WriteString("\n" + infoStyle.Render("enter: open/select | esc: back | q: quit"))

	case phaseRunning:
		status := m.state.StatusText
		if status == "" {
			status = "starting"
		}
		s.WriteString("\n" + statusStyle.Render(m.spinner.View()+" Status: "+status))
		s.WriteString("\n" + infoStyle.Render("File: "+filepath.Base(m.file)))
		s.WriteString("\n\n" + m.progress.ViewAs(m.state.Progress))

	case phaseDone:
		s.WriteString("\n" + statusStyle.Render("Status: "+transcription.StatusDone))
		text := m.result.Text
		if strings.TrimSpace(text) == "" {
			text = "No speech recognized."
		}
		s.WriteString("\n\n" + frameStyle.Width(max(m.width-4, 20)).Render(text))
		if p := m.result.Saved.TextPath; p != "" {
			s.WriteString("\n" + infoStyle.Render("Saved to "+p))
		}
		if p := m.result.Saved.MarkdownPath; p != "" {
			s.WriteString("\n" + infoStyle.Render("Saved to "+p))
		}
		if m.result.SaveErr != nil {
			s.WriteString("\n" + errorStyle.Render("Could not save transcript: "+m.result.SaveErr.Error()))
		}
		if m.result.Copied {
			s.WriteString("\n" + infoStyle.Render("Copied to clipboard"))
		}
		s.WriteString("\n\n" + infoStyle.Render("enter: transcribe another file | q: quit"))

	case phaseFailed:
		s.WriteString("\n\n" + errorStyle.Render("Error: "+UserMessage(m.err)))
		s.WriteString("\n\n" + infoStyle.Render("enter: dismiss | q: quit"))
	}

	if len(m.logMessages) > 0 {
		s.WriteString("\n\nLog:")
		for _, msg := range m.logMessages {
			s.WriteString("\n" + infoStyle.Render("• "+msg))
		}
	}

	return s.String()
}

// TerminalUI runs the terminal interface for a session
type TerminalUI struct {
	program *tea.Program
	model   *TerminalModel
	runner  Runner
	cancel  context.CancelFunc
	logCh   chan string
}

// NewTerminalUI creates a terminal UI. An empty file starts in the file
// picker at the working directory.
func NewTerminalUI(runner Runner, file string) *TerminalUI {
	startDir, err := os.Getwd()
	if err != nil {
		startDir = "."
	}
	if file != "" {
		startDir = filepath.Dir(file)
	}

	ctx, cancel := context.WithCancel(context.Background())
	model := NewTerminalModel(ctx, runner, startDir, file)

	return &TerminalUI{
		program: tea.NewProgram(model, tea.WithAltScreen()),
		model:   model,
		runner:  runner,
		cancel:  cancel,
		logCh:   make(chan string, 10),
	}
}

// LogWriter returns a writer that shows log lines below the interface.
// Lines are dropped when the interface falls behind.
func (t *TerminalUI) LogWriter() *LogWriter {
	return &LogWriter{ch: t.logCh}
}

// RunBlocking runs the TUI in the current goroutine until the user quits.
// A transcription still running at that point is cancelled.
func (t *TerminalUI) RunBlocking() error {
	defer t.cancel()

	stop := t.runner.State().Observe(func(s transcription.State) {
		t.program.Send(stateMsg(s))
	})
	defer stop()

	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			select {
			case line := <-t.logCh:
				t.program.Send(logMsg(line))
			case <-done:
				return
			}
		}
	}()

	if _, err := t.program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}

// Stop terminates the terminal UI
func (t *TerminalUI) Stop() {
	t.program.Quit()
}

// LogWriter forwards written lines to a TerminalUI
type LogWriter struct {
	ch chan string
}

func (w *LogWriter) Write(p []byte) (int, error) {
	for _, line := range strings.Split(strings.TrimRight(string(p), "\n"), "\n") {
		if line == "" {
			continue
		}
		select {
		case w.ch <- line:
		default:
		}
	}
	return len(p), nil
}
