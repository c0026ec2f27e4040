package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"examphoto/internal/compression"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables read at startup.
const (
	EnvHome           = "EXAMPHOTO_HOME"
	EnvLogLevel       = "EXAMPHOTO_LOG_LEVEL"
	EnvAssumedInputKB = "EXAMPHOTO_ASSUMED_INPUT_KB"
)

const (
	appDirName       = "examphoto"
	configFileName   = "config.yaml"
	envFileName      = ".env"
	defaultsFileName = "default_dimensions.txt"
	databaseFileName = "history.sqlite3"
)

// Config holds application configuration
type Config struct {
	AppDataDir     string
	DefaultsPath   string
	DatabasePath   string
	LogLevel       string
	AssumedInputKB float64
	ToleranceBytes int
	MaxAttempts    int
	Logger         *slog.Logger
}

// fileConfig is the optional config.yaml in the app data directory.
type fileConfig struct {
	LogLevel       string  `yaml:"log_level"`
	AssumedInputKB float64 `yaml:"assumed_input_kb"`
	ToleranceBytes *int    `yaml:"tolerance_bytes"`
	MaxAttempts    int     `yaml:"max_attempts"`
	DefaultsPath   string  `yaml:"defaults_path"`
	DatabasePath   string  `yaml:"database_path"`
}

// New creates a new configuration instance. Settings are layered: built-in
// defaults, then config.yaml, then .env files and the environment.
func New() (*Config, error) {
	return load(os.Stderr)
}

func load(logOutput io.Writer) (*Config, error) {
	// .env in the working directory may point EXAMPHOTO_HOME elsewhere.
	var warnings []string
	if err := loadEnvFile(envFileName); err != nil {
		warnings = append(warnings, err.Error())
	}

	opts := compression.DefaultOptions()
	cfg := &Config{
		LogLevel:       "info",
		AssumedInputKB: opts.AssumedInputKB,
		ToleranceBytes: opts.ToleranceBytes,
		MaxAttempts:    opts.MaxAttempts,
	}

	if err := cfg.setupDirectories(); err != nil {
		return nil, err
	}

	if err := loadEnvFile(filepath.Join(cfg.AppDataDir, envFileName)); err != nil {
		warnings = append(warnings, err.Error())
	}

	warnings = append(warnings, cfg.applyFile(filepath.Join(cfg.AppDataDir, configFileName))...)
	warnings = append(warnings, cfg.applyEnv()...)

	cfg.Logger = NewLogger(logOutput, cfg.LogLevel)
	for _, w := range warnings {
		cfg.Logger.Warn("Ignoring configuration value", "reason", w)
	}

	return cfg, nil
}

// SearchOptions returns the quality search options derived from the config.
func (c *Config) SearchOptions() compression.Options {
	opts := compression.DefaultOptions()
	opts.AssumedInputKB = c.AssumedInputKB
	opts.ToleranceBytes = c.ToleranceBytes
	opts.MaxAttempts = c.MaxAttempts
	return opts
}

func (c *Config) setupDirectories() error {
	c.AppDataDir = getAppDataDir()
	if err := os.MkdirAll(c.AppDataDir, 0755); err != nil {
		return fmt.Errorf("create app data directory: %w", err)
	}

	c.DefaultsPath = filepath.Join(c.AppDataDir, defaultsFileName)
	c.DatabasePath = filepath.Join(c.AppDataDir, databaseFileName)
	return nil
}

func (c *Config) applyFile(path string) []string {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return []string{fmt.Sprintf("read %s: %v", path, err)}
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return []string{fmt.Sprintf("parse %s: %v", path, err)}
	}

	var warnings []string
	if fc.LogLevel != "" {
		if _, ok := parseLevel(fc.LogLevel); ok {
			c.LogLevel = fc.LogLevel
		} else {
			warnings = append(warnings, fmt.Sprintf("log_level %q", fc.LogLevel))
		}
	}
	if fc.AssumedInputKB < 0 {
		warnings = append(warnings, fmt.Sprintf("assumed_input_kb %v", fc.AssumedInputKB))
	} else if fc.AssumedInputKB > 0 {
		c.AssumedInputKB = fc.AssumedInputKB
	}
	// Zero is a valid tolerance (exact size only), so absence is nil.
	if fc.ToleranceBytes != nil {
		if *fc.ToleranceBytes < 0 {
			warnings = append(warnings, fmt.Sprintf("tolerance_bytes %d", *fc.ToleranceBytes))
		} else {
			c.ToleranceBytes = *fc.ToleranceBytes
		}
	}
	if fc.MaxAttempts < 0 {
		warnings = append(warnings, fmt.Sprintf("max_attempts %d", fc.MaxAttempts))
	} else if fc.MaxAttempts > 0 {
		c.MaxAttempts = fc.MaxAttempts
	}
	if fc.DefaultsPath != "" {
		c.DefaultsPath = c.resolvePath(fc.DefaultsPath)
	}
	if fc.DatabasePath != "" {
		c.DatabasePath = c.resolvePath(fc.DatabasePath)
	}
	return warnings
}

func (c *Config) applyEnv() []string {
	var warnings []string
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		if _, ok := parseLevel(v); ok {
			c.LogLevel = v
		} else {
			warnings = append(warnings, fmt.Sprintf("%s=%q", EnvLogLevel, v))
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvAssumedInputKB)); v != "" {
		kb, err := strconv.ParseFloat(v, 64)
		if err != nil || kb <= 0 {
			warnings = append(warnings, fmt.Sprintf("%s=%q", EnvAssumedInputKB, v))
		} else {
			c.AssumedInputKB = kb
		}
	}
	return warnings
}

func (c *Config) resolvePath(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.AppDataDir, p)
}

// NewLogger builds the text logger used across the application.
func NewLogger(w io.Writer, level string) *slog.Logger {
	lvl, _ := parseLevel(level)
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}

func parseLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, true
	case "info", "":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	}
	return slog.LevelInfo, false
}

func loadEnvFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func getAppDataDir() string {
	if home := strings.TrimSpace(os.Getenv(EnvHome)); home != "" {
		return home
	}
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, appDirName)
	}
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, "."+appDirName)
}
