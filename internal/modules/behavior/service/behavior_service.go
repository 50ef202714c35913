package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/JHR999/behavior-tracker/internal/modules/behavior/domain"
	behaviorout "github.com/JHR999/behavior-tracker/internal/modules/behavior/port/out"
	"github.com/JHR999/behavior-tracker/internal/platform/clock"
	apperrors "github.com/JHR999/behavior-tracker/internal/platform/errors"
	"github.com/JHR999/behavior-tracker/internal/platform/logger"
	"github.com/JHR999/behavior-tracker/internal/platform/tx"
)

// BehaviorService owns the in-memory table. The table is loaded once and
// then written through to the store on every mutation.
type BehaviorService struct {
	clock     clock.Clock
	tx        tx.Manager
	store     behaviorout.TableStore
	projector behaviorout.BehaviorIndexProjector
	log       *logger.Logger

	table  domain.Table
	loaded bool
}

func NewBehaviorService(clock clock.Clock, txm tx.Manager, store behaviorout.TableStore, projector behaviorout.BehaviorIndexProjector, log *logger.Logger) *BehaviorService {
	if txm == nil {
		txm = tx.NoopManager{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &BehaviorService{clock: clock, tx: txm, store: store, projector: projector, log: log}
}

// Reload drops the memoized table and reads the store again. On failure the
// previous table stays in place.
func (s *BehaviorService) Reload(ctx context.Context) ([]domain.Behavior, error) {
	var out []domain.Behavior
	err := s.tx.Within(ctx, func(ctx context.Context) error {
		table, err := s.store.Load(ctx)
		if err != nil {
			return err
		}
		s.table = table
		s.loaded = true
		s.log.Info("table loaded", "behaviors", len(table.Behaviors))
		out = cloneBehaviors(table.Behaviors)
		return nil
	})
	return out, err
}

func (s *BehaviorService) List(ctx context.Context) ([]domain.Behavior, error) {
	var out []domain.Behavior
	err := s.tx.Within(ctx, func(ctx context.Context) error {
		if err := s.ensureLoaded(ctx); err != nil {
			return err
		}
		out = cloneBehaviors(s.table.Behaviors)
		return nil
	})
	return out, err
}

// Get returns the behavior and its row position.
func (s *BehaviorService) Get(ctx context.Context, name string) (domain.Behavior, int, error) {
	var (
		out      domain.Behavior
		position int
	)
	err := s.tx.Within(ctx, func(ctx context.Context) error {
		if err := s.ensureLoaded(ctx); err != nil {
			return err
		}
		i, err := s.find(name)
		if err != nil {
			return err
		}
		out, position = s.table.Behaviors[i].Clone(), i
		return nil
	})
	return out, position, err
}

// UpdateProbability sets an explicit value and saves. before is the value
// prior to the change.
func (s *BehaviorService) UpdateProbability(ctx context.Context, name string, value int) (domain.Behavior, int, error) {
	if err := domain.ValidateProbability(value); err != nil {
		return domain.Behavior{}, 0, err
	}
	return s.mutateProbability(ctx, name, func(int) int { return value })
}

// ApplyOutcome moves the probability one point toward the outcome and saves.
func (s *BehaviorService) ApplyOutcome(ctx context.Context, name string, outcome domain.Outcome) (domain.Behavior, int, error) {
	if outcome != domain.OutcomePositive && outcome != domain.OutcomeNegative {
		return domain.Behavior{}, 0, fmt.Errorf("%w: unknown outcome %q", apperrors.ErrInvalidInput, outcome)
	}
	return s.mutateProbability(ctx, name, func(current int) int { return domain.Apply(current, outcome) })
}

func (s *BehaviorService) mutateProbability(ctx context.Context, name string, next func(int) int) (domain.Behavior, int, error) {
	var (
		out    domain.Behavior
		before int
	)
	err := s.tx.Within(ctx, func(ctx context.Context) error {
		if err := s.ensureLoaded(ctx); err != nil {
			return err
		}
		i, err := s.find(name)
		if err != nil {
			return err
		}
		b := &s.table.Behaviors[i]
		before = b.Probability
		b.Probability = next(before)
		out = b.Clone()
		s.log.Info("probability updated", "behavior", b.Name, "before", before, "after", b.Probability)
		return s.persist(ctx, i)
	})
	return out, before, err
}

// Add appends a row. A zero probability means the default; an empty category
// is situational when no prompt time is given.
func (s *BehaviorService) Add(ctx context.Context, behavior domain.Behavior) (domain.Behavior, error) {
	behavior.Name = strings.TrimSpace(behavior.Name)
	behavior.PromptTime = strings.TrimSpace(behavior.PromptTime)
	behavior.Category = domain.Category(strings.TrimSpace(string(behavior.Category)))
	if behavior.Probability == 0 {
		behavior.Probability = domain.DefaultProbability
	}
	if behavior.Category == "" {
		behavior.Category = domain.CategoryScheduled
		if behavior.PromptTime == "" {
			behavior.Category = domain.CategorySituational
		}
	}
	if err := behavior.Validate(); err != nil {
		return domain.Behavior{}, err
	}

	err := s.tx.Within(ctx, func(ctx context.Context) error {
		if err := s.ensureLoaded(ctx); err != nil {
			return err
		}
		if s.table.Index(behavior.Name) >= 0 {
			return fmt.Errorf("%w: behavior %q already exists", apperrors.ErrInvalidInput, behavior.Name)
		}
		s.table.Behaviors = append(s.table.Behaviors, behavior.Clone())
		s.log.Info("behavior added", "behavior", behavior.Name, "probability", behavior.Probability, "category", string(behavior.Category))
		return s.persist(ctx, len(s.table.Behaviors)-1)
	})
	if err != nil {
		return domain.Behavior{}, err
	}
	return behavior, nil
}

func (s *BehaviorService) Edit(ctx context.Context, name string, patch domain.Patch) (domain.Behavior, error) {
	var out domain.Behavior
	err := s.tx.Within(ctx, func(ctx context.Context) error {
		if err := s.ensureLoaded(ctx); err != nil {
			return err
		}
		i, err := s.find(name)
		if err != nil {
			return err
		}
		next := patch.ApplyTo(s.table.Behaviors[i])
		if err := next.Validate(); err != nil {
			return err
		}
		s.table.Behaviors[i] = next
		out = next.Clone()
		s.log.Info("behavior edited", "behavior", next.Name)
		return s.persist(ctx, i)
	})
	return out, err
}

func (s *BehaviorService) Remove(ctx context.Context, name string) error {
	return s.tx.Within(ctx, func(ctx context.Context) error {
		if err := s.ensureLoaded(ctx); err != nil {
			return err
		}
		i, err := s.find(name)
		if err != nil {
			return err
		}
		removed := s.table.Behaviors[i].Name
		s.table.Behaviors = append(s.table.Behaviors[:i], s.table.Behaviors[i+1:]...)
		s.log.Info("behavior removed", "behavior", removed)
		if err := s.store.Save(ctx, s.table); err != nil {
			s.log.Error("save table failed", "error", err)
			return err
		}
		if s.projector != nil {
			if err := s.projector.DeleteBehavior(ctx, removed); err != nil {
				s.log.Warn("projection delete failed", "behavior", removed, "error", err)
			}
			s.reproject(ctx, i)
		}
		return nil
	})
}

// Reindex rebuilds the projection from the current table and reports how
// many rows it wrote.
func (s *BehaviorService) Reindex(ctx context.Context) (int, error) {
	if s.projector == nil {
		return 0, fmt.Errorf("behavior projector is not configured")
	}
	count := 0
	err := s.tx.Within(ctx, func(ctx context.Context) error {
		if err := s.ensureLoaded(ctx); err != nil {
			return err
		}
		if err := s.projector.Reset(ctx); err != nil {
			return fmt.Errorf("%w: %w", apperrors.ErrStorage, err)
		}
		now := s.clock.Now()
		for i, b := range s.table.Behaviors {
			if err := s.projector.UpsertBehavior(ctx, b, i, now); err != nil {
				return fmt.Errorf("%w: %w", apperrors.ErrStorage, err)
			}
			count++
		}
		return nil
	})
	return count, err
}

func (s *BehaviorService) ensureLoaded(ctx context.Context) error {
	if s.loaded {
		return nil
	}
	table, err := s.store.Load(ctx)
	if err != nil {
		return err
	}
	s.table = table
	s.loaded = true
	s.log.Info("table loaded", "behaviors", len(table.Behaviors))
	return nil
}

func (s *BehaviorService) find(name string) (int, error) {
	i := s.table.Index(strings.TrimSpace(name))
	if i < 0 {
		return -1, fmt.Errorf("%w: behavior %q", apperrors.ErrNotFound, name)
	}
	return i, nil
}

// persist saves the whole table and mirrors row i into the projection. A
// failed save leaves the in-memory change in place.
func (s *BehaviorService) persist(ctx context.Context, i int) error {
	if err := s.store.Save(ctx, s.table); err != nil {
		s.log.Error("save table failed", "error", err)
		return err
	}
	if s.projector == nil {
		return nil
	}
	if err := s.projector.UpsertBehavior(ctx, s.table.Behaviors[i], i, s.clock.Now()); err != nil {
		s.log.Warn("projection upsert failed", "behavior", s.table.Behaviors[i].Name, "error", err)
	}
	return nil
}

// reproject refreshes positions of every row from index from onward.
func (s *BehaviorService) reproject(ctx context.Context, from int) {
	now := s.clock.Now()
	for i := from; i < len(s.table.Behaviors); i++ {
		if err := s.projector.UpsertBehavior(ctx, s.table.Behaviors[i], i, now); err != nil {
			s.log.Warn("projection upsert failed", "behavior", s.table.Behaviors[i].Name, "error", err)
			return
		}
	}
}

func cloneBehaviors(in []domain.Behavior) []domain.Behavior {
	out := make([]domain.Behavior, len(in))
	for i, b := range in {
		out[i] = b.Clone()
	}
	return out
}
