package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/JHR999/behavior-tracker/internal/modules/behavior/domain"
	"github.com/JHR999/behavior-tracker/internal/modules/behavior/service"
	"github.com/JHR999/behavior-tracker/internal/platform/clock"
	apperrors "github.com/JHR999/behavior-tracker/internal/platform/errors"
	"github.com/JHR999/behavior-tracker/internal/platform/tx"
)

type memoryStore struct {
	mu      sync.Mutex
	table   domain.Table
	loads   int
	saves   int
	failing bool
}

func (m *memoryStore) Load(context.Context) (domain.Table, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loads++
	return m.table.Clone(), nil
}

func (m *memoryStore) Save(_ context.Context, table domain.Table) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing {
		return errors.Join(apperrors.ErrStorage, errors.New("disk full"))
	}
	m.saves++
	m.table = table.Clone()
	return nil
}

type recordingProjector struct {
	upserts map[string]int
	deleted []string
	failing bool
}

func (p *recordingProjector) Reset(context.Context) error {
	p.upserts = map[string]int{}
	return nil
}

func (p *recordingProjector) UpsertBehavior(_ context.Context, b domain.Behavior, position int, _ time.Time) error {
	if p.failing {
		return errors.New("sqlite busy")
	}
	if p.upserts == nil {
		p.upserts = map[string]int{}
	}
	p.upserts[b.Name] = position
	return nil
}

func (p *recordingProjector) DeleteBehavior(_ context.Context, name string) error {
	p.deleted = append(p.deleted, name)
	return nil
}

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

var _ clock.Clock = fixedClock{}

func newService(store *memoryStore, projector *recordingProjector) *service.BehaviorService {
	clk := fixedClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	if projector == nil {
		return service.NewBehaviorService(clk, tx.NewMutexManager(), store, nil, nil)
	}
	return service.NewBehaviorService(clk, tx.NewMutexManager(), store, projector, nil)
}

func seededStore() *memoryStore {
	table := domain.NewTable()
	table.Behaviors = []domain.Behavior{
		{Name: "Walk", Probability: 50, Category: "scheduled", PromptTime: "08:00"},
		{Name: "Floss", Probability: 99, Category: "situational"},
	}
	return &memoryStore{table: table}
}

func TestApplyOutcomePersistsAndClamps(t *testing.T) {
	t.Parallel()
	store := seededStore()
	projector := &recordingProjector{}
	svc := newService(store, projector)

	walk, before, err := svc.ApplyOutcome(context.Background(), "Walk", domain.OutcomePositive)
	if err != nil {
		t.Fatalf("apply outcome: %v", err)
	}
	if before != 50 || walk.Probability != 51 {
		t.Fatalf("expected 50 -> 51, got %d -> %d", before, walk.Probability)
	}
	if store.table.Behaviors[0].Probability != 51 {
		t.Fatalf("change not saved: %+v", store.table.Behaviors[0])
	}
	floss, _, err := svc.ApplyOutcome(context.Background(), "Floss", domain.OutcomePositive)
	if err != nil {
		t.Fatalf("apply outcome at max: %v", err)
	}
	if floss.Probability != 99 {
		t.Fatalf("probability must stay at 99, got %d", floss.Probability)
	}
	if _, ok := projector.upserts["Walk"]; !ok {
		t.Fatalf("projection should receive the change")
	}
}

func TestUpdateProbabilityRejectsOutOfRangeAndUnknown(t *testing.T) {
	t.Parallel()
	store := seededStore()
	svc := newService(store, &recordingProjector{})

	for _, p := range []int{0, 100, -5} {
		if _, _, err := svc.UpdateProbability(context.Background(), "Walk", p); !errors.Is(err, apperrors.ErrInvariant) {
			t.Fatalf("value %d: expected invariant error, got %v", p, err)
		}
	}
	if store.saves != 0 {
		t.Fatalf("rejected updates must not save, got %d saves", store.saves)
	}
	if _, _, err := svc.UpdateProbability(context.Background(), "Nope", 40); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	got, before, err := svc.UpdateProbability(context.Background(), "Walk", 1)
	if err != nil || before != 50 || got.Probability != 1 {
		t.Fatalf("expected 50 -> 1, got %d -> %d (%v)", before, got.Probability, err)
	}
}

func TestFailedSaveKeepsMemoryChange(t *testing.T) {
	t.Parallel()
	store := seededStore()
	store.failing = true
	svc := newService(store, &recordingProjector{})

	if _, _, err := svc.ApplyOutcome(context.Background(), "Walk", domain.OutcomeNegative); !errors.Is(err, apperrors.ErrStorage) {
		t.Fatalf("expected storage error, got %v", err)
	}
	walk, _, err := svc.Get(context.Background(), "Walk")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if walk.Probability != 49 {
		t.Fatalf("in-memory value should be 49 after failed save, got %d", walk.Probability)
	}
}

func TestProjectionFailureIsNotReturned(t *testing.T) {
	t.Parallel()
	store := seededStore()
	svc := newService(store, &recordingProjector{failing: true})
	if _, _, err := svc.ApplyOutcome(context.Background(), "Walk", domain.OutcomePositive); err != nil {
		t.Fatalf("projection failure must only be logged, got %v", err)
	}
	if store.saves != 1 {
		t.Fatalf("table should still be saved, got %d saves", store.saves)
	}
}

func TestTableIsMemoizedUntilReload(t *testing.T) {
	t.Parallel()
	store := seededStore()
	svc := newService(store, nil)

	if _, err := svc.List(context.Background()); err != nil {
		t.Fatalf("list: %v", err)
	}
	if _, err := svc.List(context.Background()); err != nil {
		t.Fatalf("list: %v", err)
	}
	if store.loads != 1 {
		t.Fatalf("expected one load, got %d", store.loads)
	}
	store.table.Behaviors = append(store.table.Behaviors, domain.Behavior{Name: "Read", Probability: 30, Category: "scheduled"})
	list, err := svc.Reload(context.Background())
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if len(list) != 3 || store.loads != 2 {
		t.Fatalf("reload should pick up external edits: %d rows, %d loads", len(list), store.loads)
	}
}

func TestAddEditRemove(t *testing.T) {
	t.Parallel()
	store := seededStore()
	projector := &recordingProjector{}
	svc := newService(store, projector)
	ctx := context.Background()

	added, err := svc.Add(ctx, domain.Behavior{Name: " Meditate "})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if added.Name != "Meditate" || added.Probability != domain.DefaultProbability || !added.Category.IsSituational() {
		t.Fatalf("unexpected defaults: %+v", added)
	}
	timed, err := svc.Add(ctx, domain.Behavior{Name: "Journal", Probability: 20, PromptTime: "21:00"})
	if err != nil {
		t.Fatalf("add timed: %v", err)
	}
	if timed.Category != domain.CategoryScheduled {
		t.Fatalf("behavior with prompt time should default to scheduled, got %q", timed.Category)
	}
	if _, err := svc.Add(ctx, domain.Behavior{Name: "Walk"}); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("duplicate add should be invalid input, got %v", err)
	}
	if _, err := svc.Add(ctx, domain.Behavior{Name: "Bad", Probability: 150}); !errors.Is(err, apperrors.ErrInvariant) {
		t.Fatalf("out-of-range add should violate invariant, got %v", err)
	}

	pt := "99:00"
	if _, err := svc.Edit(ctx, "Walk", domain.Patch{PromptTime: &pt}); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("bad prompt time should be rejected, got %v", err)
	}
	pt = "07:30"
	edited, err := svc.Edit(ctx, "Walk", domain.Patch{PromptTime: &pt})
	if err != nil || edited.PromptTime != "07:30" {
		t.Fatalf("edit: %+v %v", edited, err)
	}

	if err := svc.Remove(ctx, "Walk"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if store.table.Index("Walk") >= 0 {
		t.Fatalf("removed row still saved")
	}
	if len(projector.deleted) != 1 || projector.deleted[0] != "Walk" {
		t.Fatalf("projection delete not issued: %v", projector.deleted)
	}
	if projector.upserts["Floss"] != 0 {
		t.Fatalf("remaining rows should be re-positioned, Floss at %d", projector.upserts["Floss"])
	}
	if err := svc.Remove(ctx, "Walk"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("second remove should be not found, got %v", err)
	}
}

func TestReindexProjectsEveryRow(t *testing.T) {
	t.Parallel()
	projector := &recordingProjector{}
	svc := newService(seededStore(), projector)
	count, err := svc.Reindex(context.Background())
	if err != nil {
		t.Fatalf("reindex: %v", err)
	}
	if count != 2 || len(projector.upserts) != 2 || projector.upserts["Floss"] != 1 {
		t.Fatalf("unexpected projection: count=%d %v", count, projector.upserts)
	}
}

func TestConcurrentOutcomesAreSerialized(t *testing.T) {
	t.Parallel()
	store := seededStore()
	svc := newService(store, nil)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, _ = svc.ApplyOutcome(context.Background(), "Walk", domain.OutcomeNegative)
		}()
	}
	wg.Wait()
	if store.table.Behaviors[0].Probability != 30 {
		t.Fatalf("expected 20 decrements from 50 to 30, got %d", store.table.Behaviors[0].Probability)
	}
}
