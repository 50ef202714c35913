package bootstrap

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	behaviorinadapter "github.com/JHR999/behavior-tracker/internal/modules/behavior/adapter/in"
	behavioroutadapter "github.com/JHR999/behavior-tracker/internal/modules/behavior/adapter/out"
	behaviorin "github.com/JHR999/behavior-tracker/internal/modules/behavior/port/in"
	behaviorservice "github.com/JHR999/behavior-tracker/internal/modules/behavior/service"
	behaviorusecase "github.com/JHR999/behavior-tracker/internal/modules/behavior/usecase"
	checkininadapter "github.com/JHR999/behavior-tracker/internal/modules/checkin/adapter/in"
	checkinoutadapter "github.com/JHR999/behavior-tracker/internal/modules/checkin/adapter/out"
	checkindomain "github.com/JHR999/behavior-tracker/internal/modules/checkin/domain"
	checkinin "github.com/JHR999/behavior-tracker/internal/modules/checkin/port/in"
	checkinout "github.com/JHR999/behavior-tracker/internal/modules/checkin/port/out"
	checkinservice "github.com/JHR999/behavior-tracker/internal/modules/checkin/service"
	checkinusecase "github.com/JHR999/behavior-tracker/internal/modules/checkin/usecase"
	"github.com/JHR999/behavior-tracker/internal/platform/clock"
	"github.com/JHR999/behavior-tracker/internal/platform/config"
	"github.com/JHR999/behavior-tracker/internal/platform/logger"
	"github.com/JHR999/behavior-tracker/internal/platform/tx"
	uiapp "github.com/JHR999/behavior-tracker/internal/ui/app"
	"github.com/JHR999/behavior-tracker/internal/web"
)

// SessionScope picks where the day's check-in session lives.
type SessionScope int

const (
	// SessionFile persists the session next to the table so separate CLI
	// invocations share it.
	SessionFile SessionScope = iota
	// SessionMemory keeps the session for the life of the process.
	SessionMemory
)

type App struct {
	Config config.Config
	Log    *logger.Logger

	BehaviorCLI behaviorinadapter.CLIHandler
	CheckinCLI  checkininadapter.CLIHandler
	Behaviors   behaviorin.Usecase
	Checkin     checkinin.Usecase

	table     *behavioroutadapter.CSVTableStore
	projector *behavioroutadapter.SQLiteBehaviorProjector
}

func New(cfg config.Config, log *logger.Logger, scope SessionScope) (*App, error) {
	if log == nil {
		log = logger.Nop()
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	policy, err := checkindomain.ParsePolicy(cfg.Rotation)
	if err != nil {
		return nil, err
	}
	clk := clock.SystemClock{Location: loc}

	table := behavioroutadapter.NewCSVTableStore(cfg.TablePath)
	projector, err := behavioroutadapter.NewSQLiteBehaviorProjector(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("new behavior projector: %w", err)
	}
	behaviorSvc := behaviorservice.NewBehaviorService(clk, tx.NewMutexManager(), table, projector, log.With("module", "behavior"))
	behaviorUC := behaviorusecase.NewInteractor(behaviorSvc, cfg.UpEmoji, cfg.DownEmoji)

	var sessions checkinout.SessionStore
	switch scope {
	case SessionMemory:
		sessions = checkinoutadapter.NewMemorySessionStore()
	default:
		sessions = checkinoutadapter.NewFileSessionStore(cfg.SessionPath)
	}
	checkinSvc := checkinservice.NewCheckinService(clk, sessions, log.With("module", "checkin"))
	checkinUC := checkinusecase.NewInteractor(checkinSvc, behaviorUC, policy)

	return &App{
		Config:      cfg,
		Log:         log,
		BehaviorCLI: behaviorinadapter.NewCLIHandler(behaviorUC),
		CheckinCLI:  checkininadapter.NewCLIHandler(checkinUC),
		Behaviors:   behaviorUC,
		Checkin:     checkinUC,
		table:       table,
		projector:   projector,
	}, nil
}

// InitTable writes an empty table with the canonical header unless one exists.
func (a *App) InitTable(ctx context.Context) (bool, error) {
	return a.table.Init(ctx)
}

func (a *App) Close() error {
	if a.projector == nil {
		return nil
	}
	return a.projector.Close()
}

func RunTUI(app *App) error {
	model := uiapp.NewModel(app.Config.TablePath, app.Behaviors, app.Checkin)
	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err := program.Run()
	return err
}

// Serve runs the dashboard on addr until ctx is cancelled.
func Serve(ctx context.Context, app *App, addr string) error {
	if addr == "" {
		addr = app.Config.ListenAddr
	}
	server := web.NewServer(addr, web.RouterConfig{
		Behaviors: app.Behaviors,
		Checkin:   app.Checkin,
		Log:       app.Log.With("component", "http"),
	})
	return server.Run(ctx)
}
