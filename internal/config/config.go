// internal/config/config.go
//
// Process configuration read from the environment.
// A .env file in the working directory is loaded first in development, then
// variables are parsed into Config. Unset keys take their envDefault.

package config

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/ycdle/internal/apperr"
)

// DevSeed is used when DAILY_SEED is unset outside production.
const DevSeed = "local_dev_seed"

// Config holds every runtime setting of the server and CLI.
type Config struct {
	Port   string `env:"PORT"    envDefault:"5175"`
	AppEnv string `env:"APP_ENV" envDefault:"development"`

	LogLevel  string `env:"LOG_LEVEL"  envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	DailySeed     string `env:"DAILY_SEED"`
	CatalogFile   string `env:"CATALOG_FILE"`
	CatalogWatch  bool   `env:"CATALOG_WATCH"  envDefault:"false"`
	EligibleBadge string `env:"ELIGIBLE_BADGE" envDefault:"top_company"`

	DBPath        string        `env:"DB_PATH"         envDefault:"./data/ycdle.db"`
	StateDir      string        `env:"STATE_DIR"       envDefault:"./data/state"`
	StateInMemory bool          `env:"STATE_IN_MEMORY" envDefault:"false"`
	StateTTL      time.Duration `env:"STATE_TTL"       envDefault:"720h"`

	ClientOrigin     string        `env:"CLIENT_ORIGIN"       envDefault:"http://localhost:5173"`
	DebugTokenSecret string        `env:"DEBUG_TOKEN_SECRET"`
	SolvesRatePerMin int           `env:"SOLVES_RATE_PER_MIN" envDefault:"30"`
	RequestTimeout   time.Duration `env:"REQUEST_TIMEOUT"     envDefault:"10s"`
}

// Production reports whether APP_ENV is "production".
func (c Config) Production() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

// Load reads .env (if present) and the environment into a Config.
func Load() (Config, error) {
	_ = godotenv.Load()
	return Parse()
}

// Parse reads the current environment into a Config without touching .env.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, apperr.Wrap("config.parse", apperr.KindConfiguration, fmt.Errorf("parse env: %w", err))
	}
	if cfg.DailySeed == "" && !cfg.Production() {
		cfg.DailySeed = DevSeed
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values env tags cannot express. A missing production seed
// is not an error here: the server still starts and reports it per request.
func (c Config) Validate() error {
	switch {
	case c.Port == "":
		return apperr.New("config.validate", apperr.KindConfiguration, "PORT is empty")
	case c.SolvesRatePerMin <= 0:
		return apperr.New("config.validate", apperr.KindConfiguration, "SOLVES_RATE_PER_MIN must be positive")
	case c.RequestTimeout <= 0:
		return apperr.New("config.validate", apperr.KindConfiguration, "REQUEST_TIMEOUT must be positive")
	case c.StateTTL < 0:
		return apperr.New("config.validate", apperr.KindConfiguration, "STATE_TTL must not be negative")
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return apperr.New("config.validate", apperr.KindConfiguration, "LOG_LEVEL: "+err.Error())
	}
	return nil
}

// SetupLogging configures the global zerolog logger.
func SetupLogging(c Config) {
	SetupLoggingTo(os.Stderr, c)
}

// SetupLoggingTo is SetupLogging with an explicit writer.
func SetupLoggingTo(w io.Writer, c Config) {
	if lvl, err := zerolog.ParseLevel(c.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	zerolog.TimeFieldFormat = time.RFC3339
	out := w
	if strings.EqualFold(c.LogFormat, "console") {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}
	log.Logger = zerolog.New(out).With().Timestamp().Str("env", c.AppEnv).Logger()
}
