package service

import (
	"context"
	"sync"
	"time"

	"github.com/JHR999/behavior-tracker/internal/modules/checkin/domain"
	checkinout "github.com/JHR999/behavior-tracker/internal/modules/checkin/port/out"
	"github.com/JHR999/behavior-tracker/internal/platform/clock"
	"github.com/JHR999/behavior-tracker/internal/platform/logger"
)

// CheckinService serializes access to the daily session. It holds its own
// lock so it never nests inside the behavior table lock.
type CheckinService struct {
	clock clock.Clock
	store checkinout.SessionStore
	log   *logger.Logger
	mu    sync.Mutex
}

func NewCheckinService(clock clock.Clock, store checkinout.SessionStore, log *logger.Logger) *CheckinService {
	if log == nil {
		log = logger.Nop()
	}
	return &CheckinService{clock: clock, store: store, log: log}
}

func (s *CheckinService) Now() time.Time {
	return s.clock.Now()
}

// Snapshot returns the session for now, rolling it over first.
func (s *CheckinService) Snapshot(ctx context.Context) (domain.DailySession, time.Time, error) {
	return s.Update(ctx, nil)
}

// Update loads the session, rolls it over to today, applies fn if given and
// saves the result. The time used for the rollover is returned alongside.
func (s *CheckinService) Update(ctx context.Context, fn func(session *domain.DailySession, now time.Time) error) (domain.DailySession, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	session, err := s.store.Load(ctx)
	if err != nil {
		return domain.DailySession{}, now, err
	}
	previous := session.Day
	dirty := session.RollOver(now)
	if dirty && previous != "" {
		s.log.Info("session rolled over", "from", previous, "to", session.Day)
	}
	if fn != nil {
		if err := fn(&session, now); err != nil {
			return domain.DailySession{}, now, err
		}
		dirty = true
	}
	if dirty {
		if err := s.store.Save(ctx, session); err != nil {
			return domain.DailySession{}, now, err
		}
	}
	return session.Clone(), now, nil
}

func (s *CheckinService) Reset(ctx context.Context) (domain.DailySession, error) {
	session, _, err := s.Update(ctx, func(session *domain.DailySession, now time.Time) error {
		session.Reset(now)
		return nil
	})
	if err == nil {
		s.log.Info("session reset", "day", session.Day)
	}
	return session, err
}
