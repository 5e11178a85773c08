package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/abhisek/quizplay/internal/llm"
	"github.com/abhisek/quizplay/internal/quiz"
	"github.com/abhisek/quizplay/internal/session"
)

// Config is the resolved runtime configuration. It is built once by the
// CLI and handed down explicitly.
type Config struct {
	APIBaseURL       string        `validate:"required,url"`
	Token            string        `validate:"omitempty,jwt"`
	RequestTimeout   time.Duration `validate:"gt=0"`
	MinServerVersion string        `validate:"omitempty,gosemver"`

	TrueFalseMode          string `validate:"oneof=strict legacy"`
	FillBlankCaseSensitive bool
	LockStep               bool

	Sound           string `validate:"oneof=bell command off"`
	SoundCorrectCmd string `validate:"required_if=Sound command"`
	SoundWrongCmd   string `validate:"required_if=Sound command"`

	DBPath    string
	LogFile   string
	LogLevel  string `validate:"oneof=debug info warn error"`
	LogFormat string `validate:"oneof=json text"`

	LLM llm.Config
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		APIBaseURL:     "http://localhost:8080/api",
		RequestTimeout: 10 * time.Second,
		TrueFalseMode:  quiz.TrueFalseStrict.String(),
		LockStep:       true,
		Sound:          "bell",
		LogLevel:       "info",
		LogFormat:      "json",
		LLM:            llm.DefaultConfig(),
	}
}

// Load reads envFile (if present) into the environment, then builds a
// Config from QUIZPLAY_* variables over the defaults and validates it.
// An empty envFile means ".env".
func Load(envFile string) (Config, error) {
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load %s: %w", envFile, err)
	}

	cfg := Default()
	cfg.APIBaseURL = getEnv("QUIZPLAY_API_URL", cfg.APIBaseURL)
	cfg.Token = getEnv("QUIZPLAY_TOKEN", cfg.Token)
	cfg.MinServerVersion = getEnv("QUIZPLAY_MIN_SERVER_VERSION", cfg.MinServerVersion)
	cfg.TrueFalseMode = getEnv("QUIZPLAY_TF_MODE", cfg.TrueFalseMode)
	cfg.Sound = getEnv("QUIZPLAY_SOUND", cfg.Sound)
	cfg.SoundCorrectCmd = getEnv("QUIZPLAY_SOUND_CORRECT_CMD", cfg.SoundCorrectCmd)
	cfg.SoundWrongCmd = getEnv("QUIZPLAY_SOUND_WRONG_CMD", cfg.SoundWrongCmd)
	cfg.DBPath = getEnv("QUIZPLAY_DB", cfg.DBPath)
	cfg.LogFile = getEnv("QUIZPLAY_LOG_FILE", cfg.LogFile)
	cfg.LogLevel = getEnv("QUIZPLAY_LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getEnv("QUIZPLAY_LOG_FORMAT", cfg.LogFormat)

	var errs []error
	var err error
	if cfg.RequestTimeout, err = getDuration("QUIZPLAY_REQUEST_TIMEOUT", cfg.RequestTimeout); err != nil {
		errs = append(errs, err)
	}
	if cfg.FillBlankCaseSensitive, err = getBool("QUIZPLAY_FILL_CASE_SENSITIVE", cfg.FillBlankCaseSensitive); err != nil {
		errs = append(errs, err)
	}
	if cfg.LockStep, err = getBool("QUIZPLAY_LOCK_STEP", cfg.LockStep); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return Config{}, errors.Join(errs...)
	}

	cfg.LLM = llm.ConfigFromEnv()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Policy returns the scoring policy selected by the configuration.
func (c Config) Policy() (quiz.Policy, error) {
	mode, err := quiz.ParseTrueFalseMode(c.TrueFalseMode)
	if err != nil {
		return quiz.Policy{}, err
	}
	return quiz.Policy{TrueFalse: mode, FillBlankCaseSensitive: c.FillBlankCaseSensitive}, nil
}

// SessionConfig returns the controller settings without collaborators.
func (c Config) SessionConfig() (session.Config, error) {
	policy, err := c.Policy()
	if err != nil {
		return session.Config{}, err
	}
	cfg := session.DefaultConfig()
	cfg.Policy = policy
	cfg.LockStep = c.LockStep
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback, fmt.Errorf("%s: %q is not a boolean", key, v)
	}
	return b, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback, fmt.Errorf("%s: %q is not a duration", key, v)
	}
	return d, nil
}
