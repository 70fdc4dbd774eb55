package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"go-mingle/domain/session"
)

type Config struct {
	Addr            string        `env:"ADDR" envDefault:":9090"`
	StaticDir       string        `env:"STATIC_DIR" envDefault:"./public/frontend/dist"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat       string        `env:"LOG_FORMAT" envDefault:"json"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"5s"`

	MinPlayers            int `env:"MIN_PLAYERS" envDefault:"2"`
	MaxPlayersPerSession  int `env:"MAX_PLAYERS_PER_SESSION" envDefault:"5"`
	MaxConcurrentSessions int `env:"MAX_CONCURRENT_SESSIONS" envDefault:"3"`
	TargetMin             int `env:"TARGET_MIN" envDefault:"1"`
	TargetMax             int `env:"TARGET_MAX" envDefault:"8"`
	GuessMin              int `env:"GUESS_MIN" envDefault:"1"`
	GuessMax              int `env:"GUESS_MAX" envDefault:"10"`

	ActionRate   float64 `env:"ACTION_RATE" envDefault:"2"`
	ActionBurst  int     `env:"ACTION_BURST" envDefault:"5"`
	StreamBuffer int     `env:"STREAM_BUFFER" envDefault:"16"`
}

const envPrefix = "MINGLE_"

// Load reads the optional dotenv files, then the MINGLE_* environment.
// Variables already set in the environment win over dotenv values.
func Load(dotenv ...string) (Config, error) {
	if len(dotenv) == 0 {
		dotenv = []string{".env"}
	}
	for _, file := range dotenv {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", file, err)
		}
	}

	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: envPrefix}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Limits() session.Limits {
	return session.Limits{
		MinPlayers:            c.MinPlayers,
		MaxPlayersPerSession:  c.MaxPlayersPerSession,
		MaxConcurrentSessions: c.MaxConcurrentSessions,
		TargetMin:             c.TargetMin,
		TargetMax:             c.TargetMax,
		GuessMin:              c.GuessMin,
		GuessMax:              c.GuessMax,
	}
}

func (c Config) Validate() error {
	var errs []error
	if err := c.Limits().Validate(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.Level(); err != nil {
		errs = append(errs, err)
	}
	switch strings.ToLower(c.LogFormat) {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("log format must be json or text, got %q", c.LogFormat))
	}
	if c.ActionRate < 0 {
		errs = append(errs, fmt.Errorf("action rate must not be negative, got %v", c.ActionRate))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func (c Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("log level: %w", err)
	}
	return level, nil
}
