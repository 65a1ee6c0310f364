package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Server  Server
	Guess   Guess
	Log     Log
	Journal Journal
}

// Server describes where the scoring service lives.
type Server struct {
	BaseURL   string        `env:"SEMANTLE_SERVER_URL" envDefault:"http://localhost:5000" validate:"required,url"`
	GuessPath string        `env:"SEMANTLE_GUESS_PATH" envDefault:"/process_guess" validate:"required,startswith=/"`
	StartPath string        `env:"SEMANTLE_START_PATH" envDefault:"/start_game" validate:"required,startswith=/"`
	StartGame bool          `env:"SEMANTLE_START_GAME" envDefault:"true"`
	Timeout   time.Duration `env:"SEMANTLE_TIMEOUT" envDefault:"10s" validate:"min=0"`
}

type Guess struct {
	Normalize bool `env:"SEMANTLE_NORMALIZE" envDefault:"false"`

	// Limit caps submissions per interactive game; 0 means unlimited.
	Limit int `env:"SEMANTLE_GUESS_LIMIT" envDefault:"100" validate:"gte=0"`

	// WinScore is the score the server returns for the secret word itself.
	WinScore float64 `env:"SEMANTLE_WIN_SCORE" envDefault:"1" validate:"gt=0"`
}

type Log struct {
	Level string `env:"SEMANTLE_LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error none"`
	File  string `env:"SEMANTLE_LOG_FILE"`
}

type Journal struct {
	Enabled    bool   `env:"SEMANTLE_JOURNAL" envDefault:"true"`
	Path       string `env:"SEMANTLE_DB_PATH"`
	MaxEntries int    `env:"SEMANTLE_JOURNAL_MAX" envDefault:"1000" validate:"gte=0"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func Load() (Config, error) {
	_ = godotenv.Load()

	var config Config

	if err := env.Parse(&config); err != nil {
		return Config{}, fmt.Errorf("env.Parse: %w", err)
	}

	if err := config.fillDefaults(); err != nil {
		return Config{}, err
	}

	if err := config.Validate(); err != nil {
		return Config{}, err
	}

	return config, nil
}

// Validate checks the struct tags; callers run it again after applying
// flag overrides.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func (c *Config) fillDefaults() error {
	if c.Log.File != "" && c.Journal.Path != "" {
		return nil
	}
	dir, err := DataDir()
	if err != nil {
		return err
	}
	if c.Log.File == "" {
		c.Log.File = filepath.Join(dir, "semantle.log")
	}
	if c.Journal.Path == "" {
		c.Journal.Path = filepath.Join(dir, "semantle.db")
	}
	return nil
}

// DataDir is where the log file and journal live unless overridden.
func DataDir() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user cache dir: %w", err)
	}
	return filepath.Join(cacheDir, "semantle"), nil
}

func (s Server) GuessURL() string {
	return strings.TrimRight(s.BaseURL, "/") + s.GuessPath
}

func (s Server) StartURL() string {
	return strings.TrimRight(s.BaseURL, "/") + s.StartPath
}
