package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/JHR999/behavior-tracker/internal/platform/config"
)

func TestNewDerivesPathsFromTable(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	cfg, err := config.New(filepath.Join(dir, "habits.csv"))
	if err != nil {
		t.Fatalf("new config: %v", err)
	}
	if cfg.StateDir != filepath.Join(dir, ".btrack") {
		t.Fatalf("unexpected state dir %s", cfg.StateDir)
	}
	if !strings.HasPrefix(cfg.DBPath, cfg.StateDir) || !strings.HasPrefix(cfg.SessionPath, cfg.StateDir) {
		t.Fatalf("derived paths must live in the state dir: %+v", cfg)
	}
	if cfg.Rotation != config.RotationEarliest || cfg.ListenAddr != config.DefaultListenAddr {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if _, err := config.New("  "); err == nil {
		t.Fatalf("blank table path should fail")
	}
}

// Not parallel: mutates process environment.
func TestLoadAppliesFileThenEnvironment(t *testing.T) {
	dir := t.TempDir()
	table := filepath.Join(dir, "habits.csv")
	stateDir := filepath.Join(dir, ".btrack")
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		t.Fatalf("mkdir state dir: %v", err)
	}
	raw := "listen_addr: 127.0.0.1:9000\nrotation: cursor\ntimezone: UTC\nup_emoji: \"💪\"\n"
	if err := os.WriteFile(filepath.Join(stateDir, "config.yaml"), []byte(raw), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("BTRACK_LISTEN_ADDR", "127.0.0.1:9100")

	cfg, err := config.Load(table, nil)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.ListenAddr != "127.0.0.1:9100" {
		t.Fatalf("environment should win over file, got %s", cfg.ListenAddr)
	}
	if cfg.Rotation != config.RotationCursor || cfg.UpEmoji != "💪" {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	loc, err := cfg.Location()
	if err != nil || loc.String() != "UTC" {
		t.Fatalf("expected UTC location, got %v (%v)", loc, err)
	}
}

func TestLoadRejectsUnknownRotation(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("BTRACK_ROTATION", "random")
	if _, err := config.Load(filepath.Join(dir, "habits.csv"), nil); err == nil {
		t.Fatalf("expected unsupported rotation error")
	}
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	stateDir := filepath.Join(dir, ".btrack")
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		t.Fatalf("mkdir state dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(stateDir, "config.yaml"), []byte("rotation: [unterminated"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := config.Load(filepath.Join(dir, "habits.csv"), nil); err == nil {
		t.Fatalf("expected decode error")
	}
}
