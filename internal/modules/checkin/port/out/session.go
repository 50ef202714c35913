package out

import (
	"context"

	"github.com/JHR999/behavior-tracker/internal/modules/checkin/domain"
)

// SessionStore holds the daily session. Load returns a zero session when
// nothing has been stored yet.
type SessionStore interface {
	Load(ctx context.Context) (domain.DailySession, error)
	Save(ctx context.Context, session domain.DailySession) error
}
