package out

import (
	"context"
	"time"

	"github.com/JHR999/behavior-tracker/internal/modules/behavior/domain"
)

// TableStore reads and fully rewrites the external behavior table.
type TableStore interface {
	Load(ctx context.Context) (domain.Table, error)
	Save(ctx context.Context, table domain.Table) error
}

type BehaviorIndexProjector interface {
	Reset(ctx context.Context) error
	UpsertBehavior(ctx context.Context, behavior domain.Behavior, position int, updatedAt time.Time) error
	DeleteBehavior(ctx context.Context, name string) error
}
