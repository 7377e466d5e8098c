package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/DoyleJ11/poker-night-backend/internal/engine"
)

type Config struct {
	Addr            string
	LogLevel        string
	LogFormat       string // "json" or "console"
	TurnTimeout     time.Duration
	DefaultStack    int64
	SmallBlind      int64
	BigBlind        int64
	MaxSeats        int
	AllowedOrigins  []string
	ShutdownTimeout time.Duration
	PingInterval    time.Duration
}

func Default() Config {
	return Config{
		Addr:            ":8080",
		LogLevel:        "info",
		LogFormat:       "console",
		TurnTimeout:     30 * time.Second,
		DefaultStack:    1000,
		SmallBlind:      10,
		BigBlind:        20,
		MaxSeats:        10,
		ShutdownTimeout: 10 * time.Second,
		PingInterval:    20 * time.Second,
	}
}

// Load reads envFile into the environment (a missing file is fine) and builds
// the config from the environment on top of the defaults. Variables already
// set in the environment win over the file.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	cfg := Default()
	var errs []error
	str(&cfg.Addr, "ADDR")
	str(&cfg.LogLevel, "LOG_LEVEL")
	str(&cfg.LogFormat, "LOG_FORMAT")
	errs = append(errs,
		duration(&cfg.TurnTimeout, "TURN_TIMEOUT"),
		integer(&cfg.DefaultStack, "DEFAULT_STACK"),
		integer(&cfg.SmallBlind, "SMALL_BLIND"),
		integer(&cfg.BigBlind, "BIG_BLIND"),
		duration(&cfg.ShutdownTimeout, "SHUTDOWN_TIMEOUT"),
		duration(&cfg.PingInterval, "WS_PING_INTERVAL"),
	)
	seats := int64(cfg.MaxSeats)
	errs = append(errs, integer(&seats, "MAX_SEATS"))
	cfg.MaxSeats = int(seats)
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
			}
		}
	}

	if err := errors.Join(errs...); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch {
	case c.SmallBlind <= 0 || c.BigBlind <= c.SmallBlind:
		return fmt.Errorf("blinds %d/%d: big must exceed small and both be positive", c.SmallBlind, c.BigBlind)
	case c.MaxSeats < 2 || c.MaxSeats > 10:
		return fmt.Errorf("MAX_SEATS %d: must be between 2 and 10", c.MaxSeats)
	case c.DefaultStack <= 0 || c.DefaultStack > engine.MaxStack:
		return fmt.Errorf("DEFAULT_STACK %d: must be between 1 and %d", c.DefaultStack, int64(engine.MaxStack))
	case c.TurnTimeout < 0 || c.PingInterval < 0 || c.ShutdownTimeout < 0:
		return errors.New("durations must not be negative")
	case c.Addr == "":
		return errors.New("ADDR is empty")
	}
	return nil
}

// NewLogger builds the process logger. LOG_FORMAT=json selects the production
// encoder, anything else the development console encoder.
func NewLogger(c Config) (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	zc := zap.NewDevelopmentConfig()
	if c.LogFormat == "json" {
		zc = zap.NewProductionConfig()
	}
	zc.Level = level
	return zc.Build()
}

func str(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func duration(dst *time.Duration, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = d
	return nil
}

func integer(dst *int64, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}
