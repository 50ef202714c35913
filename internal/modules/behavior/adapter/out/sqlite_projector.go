package out

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/JHR999/behavior-tracker/internal/modules/behavior/domain"
	behaviorout "github.com/JHR999/behavior-tracker/internal/modules/behavior/port/out"

	_ "modernc.org/sqlite"
)

// SQLiteBehaviorProjector keeps a queryable copy of the table. The CSV file
// stays the source of truth; the projection can always be rebuilt.
type SQLiteBehaviorProjector struct {
	db *sql.DB
}

func NewSQLiteBehaviorProjector(dbPath string) (*SQLiteBehaviorProjector, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	projector := &SQLiteBehaviorProjector{db: db}
	if err := projector.ensureSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return projector, nil
}

var _ behaviorout.BehaviorIndexProjector = (*SQLiteBehaviorProjector)(nil)

func (s *SQLiteBehaviorProjector) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS behaviors (
  name TEXT PRIMARY KEY,
  probability INTEGER NOT NULL,
  category TEXT NOT NULL,
  situational INTEGER NOT NULL,
  prompt_time TEXT,
  up_emoji TEXT,
  down_emoji TEXT,
  position INTEGER NOT NULL,
  updated_at TEXT NOT NULL
);
`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create behaviors table: %w", err)
	}
	return nil
}

func (s *SQLiteBehaviorProjector) Reset(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM behaviors`); err != nil {
		return fmt.Errorf("reset behaviors: %w", err)
	}
	return nil
}

func (s *SQLiteBehaviorProjector) UpsertBehavior(ctx context.Context, behavior domain.Behavior, position int, updatedAt time.Time) error {
	const stmt = `
INSERT INTO behaviors (name, probability, category, situational, prompt_time, up_emoji, down_emoji, position, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(name) DO UPDATE SET
  probability=excluded.probability,
  category=excluded.category,
  situational=excluded.situational,
  prompt_time=excluded.prompt_time,
  up_emoji=excluded.up_emoji,
  down_emoji=excluded.down_emoji,
  position=excluded.position,
  updated_at=excluded.updated_at;
`
	situational := 0
	if behavior.Category.IsSituational() {
		situational = 1
	}
	_, err := s.db.ExecContext(ctx, stmt,
		behavior.Name,
		behavior.Probability,
		string(behavior.Category),
		situational,
		behavior.PromptTime,
		behavior.UpEmoji,
		behavior.DownEmoji,
		position,
		updatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("upsert behavior: %w", err)
	}
	return nil
}

func (s *SQLiteBehaviorProjector) DeleteBehavior(ctx context.Context, name string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM behaviors WHERE name = ?`, name); err != nil {
		return fmt.Errorf("delete behavior: %w", err)
	}
	return nil
}

func (s *SQLiteBehaviorProjector) Close() error {
	return s.db.Close()
}
