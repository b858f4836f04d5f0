// Package ui provides the graphical and terminal interfaces for transkript
package ui

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/jeff-barlow-spady/transkript/internal/clipboard"
	"github.com/jeff-barlow-spady/transkript/pkg/app"
	"github.com/jeff-barlow-spady/transkript/pkg/logger"
	"github.com/jeff-barlow-spady/transkript/pkg/resources"
	"github.com/jeff-barlow-spady/transkript/pkg/transcription"
)

const (
	idleStatus       = "Select an audio file to transcribe"
	saveFailedStatus = "Done, but the transcript file could not be written"
)

// App is the desktop window around a transcription session
type App struct {
	fyneApp    fyne.App
	mainWindow fyne.Window
	runner     Runner

	statusLabel   *canvas.Text
	progressBar   *widget.ProgressBar
	transcriptBox *widget.Entry
	openButton    *widget.Button
	copyButton    *widget.Button

	ctx           context.Context
	cancel        context.CancelFunc
	stopObserving func()
}

// NewApp creates the desktop application
func NewApp(runner Runner) *App {
	return newApp(fyneapp.New(), runner)
}

func newApp(fyneApp fyne.App, runner Runner) *App {
	fyneApp.Settings().SetTheme(newTheme())

	mainWindow := fyneApp.NewWindow("Transkript")
	mainWindow.Resize(fyne.NewSize(650, 500))
	if icon := resources.LoadAppIcon(); icon != nil {
		fyneApp.SetIcon(icon)
		mainWindow.SetIcon(icon)
	}

	ctx, cancel := context.WithCancel(context.Background())
	a := &App{
		fyneApp:    fyneApp,
		mainWindow: mainWindow,
		runner:     runner,
		ctx:        ctx,
		cancel:     cancel,
	}
	a.setupUI()

	a.stopObserving = runner.State().Observe(a.applyState)
	mainWindow.SetOnClosed(a.close)
	return a
}

func (a *App) setupUI() {
	a.statusLabel = canvas.NewText(idleStatus, theme.ForegroundColor())
	a.statusLabel.TextStyle = fyne.TextStyle{Bold: true}

	a.progressBar = widget.NewProgressBar()
	a.progressBar.Hide()

	a.transcriptBox = widget.NewMultiLineEntry()
	a.transcriptBox.Wrapping = fyne.TextWrapWord
	a.transcriptBox.SetPlaceHolder("The transcript appears here.")

	a.openButton = widget.NewButtonWithIcon("Open audio file", theme.FolderOpenIcon(), a.showOpenDialog)
	a.openButton.Importance = widget.HighImportance
	a.copyButton = widget.NewButtonWithIcon("Copy", theme.ContentCopyIcon(), a.copyTranscript)
	a.copyButton.Disable()

	top := container.NewVBox(a.statusLabel, a.progressBar)
	bottom := container.NewHBox(a.openButton, a.copyButton)
	a.mainWindow.SetContent(container.NewPadded(container.NewBorder(top, bottom, nil, nil, a.transcriptBox)))
}

// applyState mirrors an orchestrator state change in the window
func (a *App) applyState(s transcription.State) {
	if s.IsTranscribing {
		a.openButton.Disable()
		a.progressBar.Show()
	} else {
		a.openButton.Enable()
		a.progressBar.Hide()
	}
	a.progressBar.SetValue(s.Progress)

	status := idleStatus
	if s.StatusText != "" {
		status = strings.ToUpper(s.StatusText[:1]) + s.StatusText[1:]
	}
	a.setStatus(status)
}

func (a *App) setStatus(text string) {
	a.statusLabel.Text = text
	a.statusLabel.Refresh()
}

func (a *App) showOpenDialog() {
	d := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			dialog.ShowError(err, a.mainWindow)
			return
		}
		if reader == nil {
			return
		}
		path := reader.URI().Path()
		if err := reader.Close(); err != nil {
			logger.Warning(logger.CategoryUI, "Failed to close %s: %v", path, err)
		}
		a.Open(path)
	}, a.mainWindow)
	d.SetFilter(storage.NewExtensionFileFilter(app.SupportedExtensions))
	d.Show()
}

// Open transcribes path in the background and shows the result
func (a *App) Open(path string) {
	a.transcriptBox.SetText("")
	a.copyButton.Disable()
	go a.transcribe(path)
}

func (a *App) transcribe(path string) {
	result, err := a.runner.Run(a.ctx, path)
	if err != nil {
		logger.Error(logger.CategoryUI, "Transcription of %s failed: %v", path, err)
		if errors.Is(err, context.Canceled) {
			return
		}
		dialog.ShowError(errors.New(UserMessage(err)), a.mainWindow)
		return
	}

	a.transcriptBox.SetText(result.Text)
	if result.Text != "" {
		a.copyButton.Enable()
	}

	switch {
	case result.SaveErr != nil:
		logger.Warning(logger.CategoryUI, "Could not save transcript of %s: %v", path, result.SaveErr)
		a.setStatus(saveFailedStatus)
	case result.Saved.TextPath != "":
		a.setStatus("Saved to " + filepath.Base(result.Saved.TextPath))
	}
}

func (a *App) copyTranscript() {
	if err := clipboard.SetText(a.transcriptBox.Text); err != nil {
		dialog.ShowError(err, a.mainWindow)
		return
	}
	a.setStatus("Copied to clipboard")
}

func (a *App) close() {
	a.cancel()
	a.stopObserving()
}

// Run shows the window and blocks until it is closed
func (a *App) Run() {
	a.mainWindow.ShowAndRun()
}
