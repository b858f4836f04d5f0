// Package main is the transkript command: it transcribes a single audio
// file to text, headless, in the terminal or in a desktop window
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jeff-barlow-spady/transkript/config"
	"github.com/jeff-barlow-spady/transkript/pkg/app"
	"github.com/jeff-barlow-spady/transkript/pkg/logger"
	"github.com/jeff-barlow-spady/transkript/pkg/transcription"
	"github.com/jeff-barlow-spady/transkript/pkg/ui"
)

type options struct {
	file       string
	configPath string
	backend    string
	model      string
	locale     string
	useTUI     bool
	useGUI     bool
	debug      bool
	markdown   bool
	clipboard  bool
}

func parseFlags(args []string) (*options, *flag.FlagSet, error) {
	opts := &options{}
	fs := flag.NewFlagSet("transkript", flag.ContinueOnError)
	fs.StringVar(&opts.file, "file", "", "Audio file to transcribe (.m4a, .mp3, .wav, ...)")
	fs.StringVar(&opts.configPath, "config", "", "Path to a config file (default: ~/.transkript/config.json)")
	fs.StringVar(&opts.backend, "backend", "", "Recognition backend: whisper or openai")
	fs.StringVar(&opts.model, "model", "", "Whisper model size: tiny, base, small, medium, large-v3")
	fs.StringVar(&opts.locale, "locale", "", "Recognition locale (default sk-SK)")
	fs.BoolVar(&opts.useTUI, "t", false, "Use the terminal UI")
	fs.BoolVar(&opts.useGUI, "gui", false, "Use the desktop UI")
	fs.BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	fs.BoolVar(&opts.markdown, "markdown", false, "Also write a Markdown transcript")
	fs.BoolVar(&opts.clipboard, "clipboard", false, "Copy the transcript to the clipboard")
	if err := fs.Parse(args); err != nil {
		return nil, fs, err
	}
	if opts.file == "" && fs.NArg() > 0 {
		opts.file = fs.Arg(0)
	}
	return opts, fs, nil
}

// loadConfig reads the configuration and applies flag overrides on top
func loadConfig(opts *options, fs *flag.FlagSet) (*config.Config, error) {
	var cfg *config.Config
	if opts.configPath != "" {
		loaded, err := config.LoadFrom(opts.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		if err := config.LoadConfig(); err != nil {
			return nil, err
		}
		cfg = config.Current
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "backend":
			cfg.Backend = config.Backend(opts.backend)
		case "model":
			cfg.WhisperModelType = opts.model
		case "locale":
			cfg.Locale = opts.locale
		case "markdown":
			cfg.WriteMarkdown = opts.markdown
		case "clipboard":
			cfg.CopyToClipboard = opts.clipboard
		case "t":
			cfg.TerminalMode = opts.useTUI
		case "debug":
			if opts.debug {
				cfg.LogLevel = "debug"
			}
		}
	})
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func main() {
	opts, fs, err := parseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		os.Exit(2)
	}

	logger.Initialize()

	cfg, err := loadConfig(opts, fs)
	if err != nil {
		logger.Error(logger.CategoryApp, "Failed to load configuration: %v", err)
		os.Exit(1)
	}
	logger.SetLevel(logger.ParseLevel(cfg.LogLevel))
	logger.Debug(logger.CategorySystem, "Log level %s, backend %s, locale %s", logger.GetLevel(), cfg.Backend, cfg.Locale)

	session, err := app.NewSession(cfg)
	if err != nil {
		logger.Error(logger.CategoryApp, "Failed to initialize transcription: %v", err)
		os.Exit(1)
	}

	switch {
	case opts.useGUI:
		logger.Info(logger.CategoryUI, "Using desktop UI")
		window := ui.NewApp(session)
		if opts.file != "" {
			window.Open(opts.file)
		}
		window.Run()
	case cfg.TerminalMode || opts.file == "":
		logger.Info(logger.CategoryUI, "Using terminal UI")
		if err := runTerminalUI(session, opts.file); err != nil {
			logger.Error(logger.CategoryUI, "Terminal UI failed: %v", err)
			os.Exit(1)
		}
	default:
		os.Exit(runHeadless(session, opts.file))
	}
}

// runTerminalUI shows logs inside the interface instead of on stderr.
// SIGTERM closes the interface like a quit key.
func runTerminalUI(session *app.Session, file string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	tui := ui.NewTerminalUI(session, file)
	logger.EnableColors(false)
	logger.SetOutput(tui.LogWriter())
	defer logger.SetOutput(os.Stderr)

	done := make(chan struct{})
	defer close(done)
	go stopOnCancel(ctx, done, tui)
	return tui.RunBlocking()
}

type stopper interface {
	Stop()
}

// stopOnCancel stops s when ctx ends before done is closed
func stopOnCancel(ctx context.Context, done <-chan struct{}, s stopper) {
	select {
	case <-ctx.Done():
		logger.Info(logger.CategorySystem, "Received termination signal, closing terminal UI")
		s.Stop()
	case <-done:
	}
}

func runHeadless(session *app.Session, file string) int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cancel := session.State().Observe(func(s transcription.State) {
		logger.Info(logger.CategoryTranscription, "%s (%.0f%%)", s.StatusText, s.Progress*100)
	})
	defer cancel()

	result, err := session.Run(ctx, file)
	if err != nil {
		logger.Error(logger.CategoryApp, "%s", ui.UserMessage(err))
		return 1
	}

	fmt.Println(result.Text)
	if result.SaveErr != nil {
		logger.Warning(logger.CategoryApp, "Transcript was not saved next to %s: %v", file, result.SaveErr)
	}
	return 0
}
