package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/JHR999/behavior-tracker/internal/bootstrap"
	behaviordto "github.com/JHR999/behavior-tracker/internal/modules/behavior/dto"
	checkindto "github.com/JHR999/behavior-tracker/internal/modules/checkin/dto"
	"github.com/JHR999/behavior-tracker/internal/platform/config"
	"github.com/JHR999/behavior-tracker/internal/platform/logger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type rootOptions struct {
	tablePath string
	logMode   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "btrack",
		Short:         "Track how likely you are to do the things you mean to do",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.tablePath, "table", config.DefaultTableName, "behavior table CSV path")
	root.PersistentFlags().StringVar(&opts.logMode, "log-mode", envOr("BTRACK_LOG_MODE", "dev"), "log mode: dev|prod")

	root.AddCommand(newInitCmd(opts))
	root.AddCommand(newListCmd(opts))
	root.AddCommand(newShowCmd(opts))
	root.AddCommand(newAddCmd(opts))
	root.AddCommand(newEditCmd(opts))
	root.AddCommand(newSetCmd(opts))
	root.AddCommand(newRemoveCmd(opts))
	root.AddCommand(newPendingCmd(opts))
	root.AddCommand(newTodayCmd(opts))
	root.AddCommand(newSituationalCmd(opts))
	root.AddCommand(newRecordCmd(opts))
	root.AddCommand(newSessionCmd(opts))
	root.AddCommand(newReindexCmd(opts))
	root.AddCommand(newTUICmd(opts))
	root.AddCommand(newServeCmd(opts))
	return root
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// loadApp builds the application for one command. The returned cleanup closes
// the projection database and flushes the logger.
func loadApp(opts *rootOptions, log *logger.Logger, scope bootstrap.SessionScope) (*bootstrap.App, func(), error) {
	cfg, err := config.Load(opts.tablePath, log)
	if err != nil {
		return nil, nil, err
	}
	app, err := bootstrap.New(cfg, log, scope)
	if err != nil {
		return nil, nil, err
	}
	return app, func() {
		if err := app.Close(); err != nil {
			log.Warn("close app", "error", err)
		}
		log.Sync()
	}, nil
}

// runCLI wires a one-shot command with a stderr logger and the file-backed session.
func runCLI(opts *rootOptions, fn func(ctx context.Context, app *bootstrap.App) error) error {
	log, err := logger.New(opts.logMode)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	app, cleanup, err := loadApp(opts, log, bootstrap.SessionFile)
	if err != nil {
		log.Sync()
		return err
	}
	defer cleanup()
	return fn(context.Background(), app)
}

func newInitCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create an empty behavior table if none exists",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCLI(opts, func(ctx context.Context, app *bootstrap.App) error {
				created, err := app.InitTable(ctx)
				if err != nil {
					return err
				}
				if created {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", app.Config.TablePath)
				} else {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s already exists\n", app.Config.TablePath)
				}
				return nil
			})
		},
	}
}

func newListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every behavior",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCLI(opts, func(ctx context.Context, app *bootstrap.App) error {
				behaviors, err := app.BehaviorCLI.List(ctx)
				if err != nil {
					return err
				}
				if len(behaviors) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no behaviors")
					return nil
				}
				for _, b := range behaviors {
					printBehavior(cmd.OutOrStdout(), b)
				}
				return nil
			})
		},
	}
}

func newShowCmd(opts *rootOptions) *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show one behavior",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCLI(opts, func(ctx context.Context, app *bootstrap.App) error {
				b, err := app.BehaviorCLI.Show(ctx, name)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				_, _ = fmt.Fprintf(out, "name: %s\n", b.Name)
				_, _ = fmt.Fprintf(out, "probability: %d%%\n", b.Probability)
				_, _ = fmt.Fprintf(out, "category: %s\n", b.Category)
				_, _ = fmt.Fprintf(out, "prompt time: %s\n", orDash(b.PromptTime))
				_, _ = fmt.Fprintf(out, "markers: %s %s\n", b.UpEmoji, b.DownEmoji)
				_, _ = fmt.Fprintf(out, "row: %d\n", b.Position+1)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "behavior name")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newAddCmd(opts *rootOptions) *cobra.Command {
	var input behaviordto.AddInput
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a behavior",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCLI(opts, func(ctx context.Context, app *bootstrap.App) error {
				b, err := app.BehaviorCLI.Add(ctx, input)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprint(cmd.OutOrStdout(), "added ")
				printBehavior(cmd.OutOrStdout(), b)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&input.Name, "name", "", "behavior name")
	cmd.Flags().IntVar(&input.Probability, "probability", 0, "starting probability 1-99 (default 50)")
	cmd.Flags().StringVar(&input.Category, "category", "", "category: situational or a schedule label")
	cmd.Flags().StringVar(&input.PromptTime, "prompt-time", "", "daily prompt time HH:MM")
	cmd.Flags().StringVar(&input.UpEmoji, "up-emoji", "", "marker for a positive answer")
	cmd.Flags().StringVar(&input.DownEmoji, "down-emoji", "", "marker for a negative answer")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newEditCmd(opts *rootOptions) *cobra.Command {
	var name, category, promptTime, upEmoji, downEmoji string
	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Edit a behavior's category, prompt time or markers",
		RunE: func(cmd *cobra.Command, _ []string) error {
			input := behaviordto.EditInput{Name: name}
			flags := cmd.Flags()
			if flags.Changed("category") {
				input.Category = &category
			}
			if flags.Changed("prompt-time") {
				input.PromptTime = &promptTime
			}
			if flags.Changed("up-emoji") {
				input.UpEmoji = &upEmoji
			}
			if flags.Changed("down-emoji") {
				input.DownEmoji = &downEmoji
			}
			return runCLI(opts, func(ctx context.Context, app *bootstrap.App) error {
				b, err := app.BehaviorCLI.Edit(ctx, input)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprint(cmd.OutOrStdout(), "updated ")
				printBehavior(cmd.OutOrStdout(), b)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "behavior name")
	cmd.Flags().StringVar(&category, "category", "", "new category")
	cmd.Flags().StringVar(&promptTime, "prompt-time", "", "new prompt time HH:MM, empty to clear")
	cmd.Flags().StringVar(&upEmoji, "up-emoji", "", "new positive marker")
	cmd.Flags().StringVar(&downEmoji, "down-emoji", "", "new negative marker")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newSetCmd(opts *rootOptions) *cobra.Command {
	var name string
	var probability int
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Set a behavior's probability directly",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCLI(opts, func(ctx context.Context, app *bootstrap.App) error {
				change, err := app.BehaviorCLI.Set(ctx, name, probability)
				if err != nil {
					return err
				}
				printChange(cmd.OutOrStdout(), change)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "behavior name")
	cmd.Flags().IntVar(&probability, "probability", 0, "probability 1-99")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("probability")
	return cmd
}

func newRemoveCmd(opts *rootOptions) *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "remove",
		Short: "Remove a behavior",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCLI(opts, func(ctx context.Context, app *bootstrap.App) error {
				if err := app.BehaviorCLI.Remove(ctx, name); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", name)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "behavior name")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newPendingCmd(opts *rootOptions) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "pending",
		Short: "Show the check-in due now",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCLI(opts, func(ctx context.Context, app *bootstrap.App) error {
				out := cmd.OutOrStdout()
				pending, err := app.CheckinCLI.Pending(ctx)
				if err != nil {
					return err
				}
				printPending(out, pending)
				if !all {
					return nil
				}
				queue, err := app.CheckinCLI.Queue(ctx)
				if err != nil {
					return err
				}
				for i, item := range queue {
					marker := " "
					if pending.Pending && i == pending.Position {
						marker = ">"
					}
					_, _ = fmt.Fprintf(out, "%s %-5s %s %d%%\n", marker, item.PromptTime, item.Name, item.Probability)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "also print the whole queue")
	return cmd
}

func newTodayCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "today",
		Short: "Show every scheduled behavior with today's status",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCLI(opts, func(ctx context.Context, app *bootstrap.App) error {
				items, err := app.CheckinCLI.Today(ctx)
				if err != nil {
					return err
				}
				if len(items) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no scheduled behaviors")
					return nil
				}
				for _, item := range items {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%-5s %-11s %s %d%%\n", orDash(item.PromptTime), item.Status, item.Name, item.Probability)
				}
				return nil
			})
		},
	}
}

func newSituationalCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "situational",
		Short: "List situational behaviors",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCLI(opts, func(ctx context.Context, app *bootstrap.App) error {
				items, err := app.CheckinCLI.Situational(ctx)
				if err != nil {
					return err
				}
				if len(items) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no situational behaviors")
					return nil
				}
				for _, item := range items {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %d%%\n", item.Name, item.Probability)
				}
				return nil
			})
		},
	}
}

func newRecordCmd(opts *rootOptions) *cobra.Command {
	var name, outcome string
	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record whether you did a behavior",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCLI(opts, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.CheckinCLI.Record(ctx, name, outcome)
				if err != nil {
					return err
				}
				printChange(cmd.OutOrStdout(), out.Change)
				printPending(cmd.OutOrStdout(), out.Next)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "behavior name")
	cmd.Flags().StringVar(&outcome, "outcome", "", "did|didnt")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("outcome")
	return cmd
}

func newSessionCmd(opts *rootOptions) *cobra.Command {
	session := &cobra.Command{Use: "session", Short: "Daily check-in session commands"}
	session.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Forget today's answers",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCLI(opts, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.CheckinCLI.ResetSession(ctx)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "session reset for %s\n", out.Day)
				return nil
			})
		},
	})
	return session
}

func newReindexCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reindex",
		Short: "Rebuild the SQLite projection from the table",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCLI(opts, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.BehaviorCLI.Reindex(ctx)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "reindexed %d behaviors\n", out.Behaviors)
				return nil
			})
		},
	}
}

func newTUICmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Run the terminal check-in UI",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := config.New(opts.tablePath)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(cfg.StateDir, 0o755); err != nil {
				return fmt.Errorf("create state dir: %w", err)
			}
			log, err := logger.NewFile(opts.logMode, cfg.LogPath)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			app, cleanup, err := loadApp(opts, log, bootstrap.SessionMemory)
			if err != nil {
				log.Sync()
				return err
			}
			defer cleanup()
			return bootstrap.RunTUI(app)
		},
	}
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the web dashboard",
		RunE: func(_ *cobra.Command, _ []string) error {
			log, err := logger.New(opts.logMode)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			app, cleanup, err := loadApp(opts, log, bootstrap.SessionMemory)
			if err != nil {
				log.Sync()
				return err
			}
			defer cleanup()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return bootstrap.Serve(ctx, app, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, 127.0.0.1:8501)")
	return cmd
}

func printBehavior(w io.Writer, b behaviordto.BehaviorOutput) {
	_, _ = fmt.Fprintf(w, "%s %d%% %s %s\n", b.Name, b.Probability, b.Category, orDash(b.PromptTime))
}

func printChange(w io.Writer, change behaviordto.ProbabilityChangeOutput) {
	_, _ = fmt.Fprintf(w, "%s: %d%% -> %d%%\n", change.Name, change.Before, change.After)
}

func printPending(w io.Writer, pending checkindto.PendingOutput) {
	if !pending.Pending {
		_, _ = fmt.Fprintln(w, "nothing pending")
		return
	}
	item := pending.Item
	_, _ = fmt.Fprintf(w, "pending: %s %d%% (due %s, %d of %d)\n", item.Name, item.Probability, orDash(item.PromptTime), pending.Position+1, pending.Total)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
