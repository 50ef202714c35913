package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/JHR999/behavior-tracker/internal/platform/logger"
)

const (
	DefaultTableName  = "Behavior Tracking - Sheet1.csv"
	DefaultListenAddr = "127.0.0.1:8501"
	DefaultTimezone   = "Local"

	RotationEarliest = "earliest"
	RotationCursor   = "cursor"
)

type Config struct {
	TablePath   string
	StateDir    string
	DBPath      string
	SessionPath string
	LogPath     string
	FilePath    string

	ListenAddr string
	Timezone   string
	Rotation   string
	UpEmoji    string
	DownEmoji  string
}

// fileConfig mirrors <state dir>/config.yaml. Empty values leave defaults alone.
type fileConfig struct {
	ListenAddr string `yaml:"listen_addr"`
	Timezone   string `yaml:"timezone"`
	Rotation   string `yaml:"rotation"`
	UpEmoji    string `yaml:"up_emoji"`
	DownEmoji  string `yaml:"down_emoji"`
}

// New derives every path from the table location and fills defaults.
func New(tablePath string) (Config, error) {
	if strings.TrimSpace(tablePath) == "" {
		return Config{}, fmt.Errorf("table path is required")
	}
	stateDir := filepath.Join(filepath.Dir(tablePath), ".btrack")
	return Config{
		TablePath:   tablePath,
		StateDir:    stateDir,
		DBPath:      filepath.Join(stateDir, "btrack.db"),
		SessionPath: filepath.Join(stateDir, "session.json"),
		LogPath:     filepath.Join(stateDir, "btrack.log"),
		FilePath:    filepath.Join(stateDir, "config.yaml"),
		ListenAddr:  DefaultListenAddr,
		Timezone:    DefaultTimezone,
		Rotation:    RotationEarliest,
	}, nil
}

// Load applies config.yaml and then BTRACK_* environment overrides on top of New.
func Load(tablePath string, log *logger.Logger) (Config, error) {
	cfg, err := New(tablePath)
	if err != nil {
		return Config{}, err
	}
	if err := cfg.applyFile(); err != nil {
		return Config{}, err
	}
	cfg.ListenAddr = getEnv("BTRACK_LISTEN_ADDR", cfg.ListenAddr, log)
	cfg.Timezone = getEnv("BTRACK_TIMEZONE", cfg.Timezone, log)
	cfg.Rotation = strings.ToLower(getEnv("BTRACK_ROTATION", cfg.Rotation, log))
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Rotation {
	case RotationEarliest, RotationCursor:
	default:
		return fmt.Errorf("unsupported rotation %q", c.Rotation)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves Timezone; "Local" and "" mean the process zone.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, DefaultTimezone) {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func (c *Config) applyFile() error {
	raw, err := os.ReadFile(c.FilePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config file: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return fmt.Errorf("decode config file: %w", err)
	}
	if fc.ListenAddr != "" {
		c.ListenAddr = fc.ListenAddr
	}
	if fc.Timezone != "" {
		c.Timezone = fc.Timezone
	}
	if fc.Rotation != "" {
		c.Rotation = strings.ToLower(fc.Rotation)
	}
	if fc.UpEmoji != "" {
		c.UpEmoji = fc.UpEmoji
	}
	if fc.DownEmoji != "" {
		c.DownEmoji = fc.DownEmoji
	}
	return nil
}

func getEnv(key, defaultVal string, log *logger.Logger) string {
	if log != nil {
		log = log.With("env_var", key)
	}
	val, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(val) == "" {
		return defaultVal
	}
	if log != nil {
		log.Debug("Environment variable found, using environment", "value", val)
	}
	return val
}
