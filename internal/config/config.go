package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type BoardConfig struct {
	BaseURL    string        `yaml:"base_url" env:"BOARD_BASE_URL" env-default:"http://127.0.0.1:8000/api/"`
	GuestsPath string        `yaml:"guests_path" env:"BOARD_GUESTS_PATH" env-default:"guests/"`
	Timeout    time.Duration `yaml:"timeout" env:"BOARD_TIMEOUT" env-default:"10s"`
}

type HTTPConfig struct {
	Address string `yaml:"address" env:"HTTP_ADDRESS" env-default:":8080"`
}

type Config struct {
	LogLevel string      `yaml:"log_level" env:"LOG_LEVEL" env-default:"INFO"`
	DBPath   string      `yaml:"db_path" env:"BOARD_DB_PATH" env-default:"./board.db"`
	Board    BoardConfig `yaml:"board"`
	HTTP     HTTPConfig  `yaml:"http"`
}

// Load reads .env if present, then the YAML file at configPath and the
// environment. Env vars win over the file. A missing file falls back to
// env only.
func Load(configPath string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if configPath == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return Config{}, fmt.Errorf("read env: %w", err)
		}
		return cfg, nil
	}

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		var pe *os.PathError
		if !errors.As(err, &pe) {
			return Config{}, fmt.Errorf("read config %q: %w", configPath, err)
		}
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return Config{}, fmt.Errorf("read env: %w", err)
		}
	}
	return cfg, nil
}

func NewLogger(logLevel string, verbose bool) *slog.Logger {
	var level slog.Level
	switch strings.ToUpper(logLevel) {
	case "DEBUG":
		level = slog.LevelDebug
	case "WARN":
		level = slog.LevelWarn
	case "ERROR":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
