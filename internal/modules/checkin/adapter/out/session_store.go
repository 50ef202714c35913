package out

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/JHR999/behavior-tracker/internal/modules/checkin/domain"
	checkinout "github.com/JHR999/behavior-tracker/internal/modules/checkin/port/out"
	apperrors "github.com/JHR999/behavior-tracker/internal/platform/errors"
)

// MemorySessionStore keeps the session for the life of the process.
type MemorySessionStore struct {
	mu      sync.Mutex
	session domain.DailySession
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{}
}

var _ checkinout.SessionStore = (*MemorySessionStore)(nil)

func (s *MemorySessionStore) Load(context.Context) (domain.DailySession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.Clone(), nil
}

func (s *MemorySessionStore) Save(_ context.Context, session domain.DailySession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = session.Clone()
	return nil
}

// FileSessionStore lets one-shot commands share a session within a day.
type FileSessionStore struct {
	path string
}

func NewFileSessionStore(path string) *FileSessionStore {
	return &FileSessionStore{path: path}
}

var _ checkinout.SessionStore = (*FileSessionStore)(nil)

func (s *FileSessionStore) Load(_ context.Context) (domain.DailySession, error) {
	payload, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.DailySession{}, nil
		}
		return domain.DailySession{}, fmt.Errorf("%w: read session: %w", apperrors.ErrStorage, err)
	}
	session := domain.DailySession{}
	if err := json.Unmarshal(payload, &session); err != nil {
		return domain.DailySession{}, fmt.Errorf("%w: decode session: %w", apperrors.ErrStorage, err)
	}
	return session, nil
}

func (s *FileSessionStore) Save(_ context.Context, session domain.DailySession) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: create session dir: %w", apperrors.ErrStorage, err)
	}
	payload, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	// The session file is only ever replaced whole.
	tmp, err := os.CreateTemp(dir, ".session-*.json")
	if err != nil {
		return fmt.Errorf("%w: create temp session: %w", apperrors.ErrStorage, err)
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	if _, err := tmp.Write(payload); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: write session: %w", apperrors.ErrStorage, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: close temp session: %w", apperrors.ErrStorage, err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return fmt.Errorf("%w: chmod temp session: %w", apperrors.ErrStorage, err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("%w: replace session: %w", apperrors.ErrStorage, err)
	}
	return nil
}
