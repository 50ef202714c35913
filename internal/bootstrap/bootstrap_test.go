package bootstrap_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/JHR999/behavior-tracker/internal/bootstrap"
	behaviordto "github.com/JHR999/behavior-tracker/internal/modules/behavior/dto"
	"github.com/JHR999/behavior-tracker/internal/platform/config"
)

func newApp(t *testing.T, scope bootstrap.SessionScope) *bootstrap.App {
	t.Helper()
	cfg, err := config.New(filepath.Join(t.TempDir(), config.DefaultTableName))
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	app, err := bootstrap.New(cfg, nil, scope)
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	t.Cleanup(func() { _ = app.Close() })
	return app
}

func TestNewWiresTableProjectionAndSession(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	app := newApp(t, bootstrap.SessionFile)

	created, err := app.InitTable(ctx)
	if err != nil || !created {
		t.Fatalf("init table: created=%v err=%v", created, err)
	}
	if created, err := app.InitTable(ctx); err != nil || created {
		t.Fatalf("second init should be a no-op: created=%v err=%v", created, err)
	}

	if _, err := app.BehaviorCLI.Add(ctx, behaviordto.AddInput{Name: "Stretch"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	out, err := app.CheckinCLI.Record(ctx, "Stretch", "did")
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if out.Change.Before != 50 || out.Change.After != 51 || out.Answered {
		t.Fatalf("unexpected change %+v", out)
	}

	if _, err := os.Stat(app.Config.SessionPath); err != nil {
		t.Fatalf("session file should exist: %v", err)
	}
	if _, err := os.Stat(app.Config.DBPath); err != nil {
		t.Fatalf("projection database should exist: %v", err)
	}
	if res, err := app.BehaviorCLI.Reindex(ctx); err != nil || res.Behaviors != 1 {
		t.Fatalf("reindex: %+v %v", res, err)
	}
}

func TestNewRejectsBadRotation(t *testing.T) {
	t.Parallel()
	cfg, err := config.New(filepath.Join(t.TempDir(), "table.csv"))
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	cfg.Rotation = "random"
	if _, err := bootstrap.New(cfg, nil, bootstrap.SessionMemory); err == nil {
		t.Fatalf("expected unknown rotation to fail")
	}
}
