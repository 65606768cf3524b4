package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Supported DATABASE_TYPE values
const (
	DatabasePostgres = "postgres"
	DatabaseSQLite   = "sqlite"
	DatabaseRedis    = "redis"
	DatabaseMemory   = "memory"
)

// dotEnvFile is loaded from the working directory when present
const dotEnvFile = ".env"

type Config struct {
	Port         int    `env:"PORT" envDefault:"3318"`
	DatabaseURL  string `env:"DATABASE_URL"`
	DatabaseType string `env:"DATABASE_TYPE" envDefault:"sqlite"`
	DashboardKey string `env:"DASHBOARD_KEY"`

	TwitchChannel    string `env:"TWITCH_CHANNEL"`
	TwitchUsername   string `env:"TWITCH_USERNAME"`
	TwitchOAuthToken string `env:"TWITCH_OAUTH_TOKEN"`

	DefaultPollDuration int     `env:"DEFAULT_POLL_DURATION" envDefault:"30"`
	SeedFile            string  `env:"SEED_FILE"`
	CommandRateLimit    float64 `env:"COMMAND_RATE_LIMIT" envDefault:"5"`
}

// ParseFlags builds the config from .env, the environment and CLI flags,
// in increasing order of precedence
func ParseFlags(args []string) (Config, error) {
	if err := loadDotEnv(dotEnvFile); err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	fs := flag.NewFlagSet("crossroads", flag.ContinueOnError)

	// Env values become the flag defaults, so a flag overrides env
	fs.IntVar(&cfg.Port, "p", cfg.Port, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", cfg.DatabaseURL, "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", cfg.DatabaseType, "Database type (postgres, sqlite, redis or memory)")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.DashboardKey, "dashboard-key", cfg.DashboardKey, "Dashboard key (prefer env)")
	fs.StringVar(&cfg.TwitchOAuthToken, "twitch-token", cfg.TwitchOAuthToken, "Twitch OAuth token (prefer env)")

	fs.StringVar(&cfg.TwitchChannel, "channel", cfg.TwitchChannel, "Twitch channel to read votes from")
	fs.StringVar(&cfg.TwitchUsername, "twitch-user", cfg.TwitchUsername, "Twitch login (empty joins anonymously)")
	fs.IntVar(&cfg.DefaultPollDuration, "default-duration", cfg.DefaultPollDuration, "Poll length in seconds when the outcome has none")
	fs.StringVar(&cfg.SeedFile, "seed", cfg.SeedFile, "JSON outcome graph to load at startup")
	fs.Float64Var(&cfg.CommandRateLimit, "rate", cfg.CommandRateLimit, "Dashboard commands per second per client")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks ranges and required values
func (c Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}

	switch c.DatabaseType {
	case DatabasePostgres, DatabaseSQLite, DatabaseRedis:
		if c.DatabaseURL == "" {
			return errors.New("database URL required (use -d or DATABASE_URL env)")
		}
	case DatabaseMemory:
	default:
		return fmt.Errorf("unknown database type %q", c.DatabaseType)
	}

	// Secrets - MUST be provided
	if c.DashboardKey == "" {
		return errors.New("DASHBOARD_KEY required")
	}
	if c.TwitchUsername != "" && c.TwitchOAuthToken == "" {
		return errors.New("TWITCH_OAUTH_TOKEN required when TWITCH_USERNAME is set")
	}

	if c.DefaultPollDuration <= 0 {
		return fmt.Errorf("default poll duration must be positive, got %d", c.DefaultPollDuration)
	}
	if c.CommandRateLimit <= 0 {
		return fmt.Errorf("command rate limit must be positive, got %v", c.CommandRateLimit)
	}
	return nil
}

func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("load %s: %w", path, err)
}
