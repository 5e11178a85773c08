package cmd

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizplay/internal/api"
	"github.com/abhisek/quizplay/internal/config"
	"github.com/abhisek/quizplay/internal/feedback"
	"github.com/abhisek/quizplay/internal/hint"
	"github.com/abhisek/quizplay/internal/llm"
	"github.com/abhisek/quizplay/internal/logging"
	"github.com/abhisek/quizplay/internal/quiz"
	"github.com/abhisek/quizplay/internal/screen"
	"github.com/abhisek/quizplay/internal/screens/history"
	"github.com/abhisek/quizplay/internal/screens/play"
	"github.com/abhisek/quizplay/internal/session"
	"github.com/abhisek/quizplay/internal/store"
)

// loadConfig reads the dotenv file and environment, then applies any
// flags the user set explicitly.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	flags := cmd.Flags()
	envFile, _ := flags.GetString("env-file")

	cfg, err := config.Load(envFile)
	if err != nil {
		return config.Config{}, err
	}

	override := func(name string, dst *string) {
		if flags.Changed(name) {
			*dst, _ = flags.GetString(name)
		}
	}
	override("db", &cfg.DBPath)
	override("api-url", &cfg.APIBaseURL)
	override("token", &cfg.Token)
	override("tf-mode", &cfg.TrueFalseMode)
	override("sound", &cfg.Sound)
	override("log-level", &cfg.LogLevel)
	override("log-format", &cfg.LogFormat)
	if flags.Changed("free-nav") {
		free, _ := flags.GetBool("free-nav")
		cfg.LockStep = !free
	}

	if cfg.DBPath == "" {
		if cfg.DBPath, err = store.DefaultDBPath(); err != nil {
			return config.Config{}, fmt.Errorf("resolve DB path: %w", err)
		}
	} else if err := store.EnsureDir(cfg.DBPath); err != nil {
		return config.Config{}, fmt.Errorf("resolve DB path: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// deps holds everything the TUI commands share.
type deps struct {
	cfg      config.Config
	sessCfg  session.Config
	logger   *slog.Logger
	store    *store.Store
	events   store.EventRepo
	client   *api.Client
	feedback *feedback.Async
	hints    *hint.Service

	closers []io.Closer
}

// openDeps builds the application's collaborators from the configuration.
// An LLM provider that fails to initialize disables hints instead of
// failing the command.
func openDeps(cmd *cobra.Command) (*deps, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	sessCfg, err := cfg.SessionConfig()
	if err != nil {
		return nil, err
	}

	logger, logFile, err := logging.Open(logging.Options{File: cfg.LogFile, Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err != nil {
		return nil, err
	}
	d := &deps{cfg: cfg, sessCfg: sessCfg, logger: logger, closers: []io.Closer{logFile}}

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		d.Close()
		return nil, fmt.Errorf("open store: %w", err)
	}
	d.store = st
	d.events = st.EventRepo()
	d.closers = append(d.closers, st)

	d.client, err = api.New(api.Config{
		BaseURL:          cfg.APIBaseURL,
		Token:            cfg.Token,
		Timeout:          cfg.RequestTimeout,
		MinServerVersion: cfg.MinServerVersion,
		Logger:           logger.With("component", "api"),
	})
	if err != nil {
		d.Close()
		return nil, err
	}

	player, err := feedback.New(cfg.Sound, cfg.SoundCorrectCmd, cfg.SoundWrongCmd)
	if err != nil {
		d.Close()
		return nil, err
	}
	d.feedback = feedback.NewAsync(player, logger.With("component", "feedback"), 0)

	provider, err := llm.NewProvider(cmd.Context(), cfg.LLM, d.events, logger.With("component", "llm"))
	if err != nil {
		logger.Warn("LLM provider not configured, hints disabled", "error", err)
		cmd.PrintErrln("LLM provider not configured:", err)
		cmd.PrintErrln("Hints will be unavailable.")
		provider = nil
	}
	if provider != nil {
		d.hints = hint.NewService(provider, hint.DefaultConfig())
	}

	return d, nil
}

// Close waits for pending feedback cues, then closes the store and the
// log file.
func (d *deps) Close() {
	if d.feedback != nil {
		d.feedback.Wait()
	}
	for i := len(d.closers) - 1; i >= 0; i-- {
		d.closers[i].Close()
	}
}

// playScreen builds a fresh controller and play screen for one test.
func (d *deps) playScreen(testID string) screen.Screen {
	sessCfg := d.sessCfg
	sessCfg.Feedback = d.feedback
	sessCfg.Logger = d.logger.With("component", "session")

	return play.New(play.Options{
		Controller: session.New(d.client, sessCfg),
		TestID:     testID,
		Events:     d.events,
		Hints:      d.hints,
		Logger:     d.logger,
	})
}

func (d *deps) openTest(info quiz.TestInfo) screen.Screen {
	return d.playScreen(info.ID)
}

func (d *deps) historyScreen() screen.Screen {
	return history.New(d.events)
}
