package out

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/JHR999/behavior-tracker/internal/modules/behavior/domain"
	behaviorout "github.com/JHR999/behavior-tracker/internal/modules/behavior/port/out"
	apperrors "github.com/JHR999/behavior-tracker/internal/platform/errors"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

type CSVTableStore struct {
	path string
}

func NewCSVTableStore(path string) *CSVTableStore {
	return &CSVTableStore{path: path}
}

var _ behaviorout.TableStore = (*CSVTableStore)(nil)

func (s *CSVTableStore) Path() string { return s.path }

// Init writes an empty table with the canonical header unless the file exists.
func (s *CSVTableStore) Init(ctx context.Context) (bool, error) {
	if _, err := os.Stat(s.path); err == nil {
		return false, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return false, fmt.Errorf("%w: stat table: %w", apperrors.ErrStorage, err)
	}
	if err := s.Save(ctx, domain.NewTable()); err != nil {
		return false, err
	}
	return true, nil
}

func (s *CSVTableStore) Load(_ context.Context) (domain.Table, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return domain.Table{}, fmt.Errorf("%w: read table: %w", apperrors.ErrStorage, err)
	}
	raw = bytes.TrimPrefix(raw, utf8BOM)

	reader := csv.NewReader(bytes.NewReader(raw))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return domain.Table{}, fmt.Errorf("%w: parse table %s: %w", apperrors.ErrStorage, s.path, err)
	}
	if len(records) == 0 {
		return domain.Table{}, fmt.Errorf("%w: table %s has no header row", apperrors.ErrStorage, s.path)
	}

	header := records[0]
	roles := domain.ColumnRoles(header)
	index := map[string]int{}
	for i, role := range roles {
		if role != "" {
			index[role] = i
		}
	}
	for _, required := range domain.RequiredColumns {
		if _, ok := index[required]; !ok {
			return domain.Table{}, fmt.Errorf("%w: table %s is missing required column %q", apperrors.ErrStorage, s.path, required)
		}
	}

	table := domain.Table{Columns: append([]string(nil), header...)}
	seen := map[string]struct{}{}
	for line, row := range records[1:] {
		cell := func(column string) string {
			i, ok := index[column]
			if !ok || i >= len(row) {
				return ""
			}
			return row[i]
		}
		// Names are stored and matched trimmed.
		name := strings.TrimSpace(cell(domain.ColumnBehavior))
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			return domain.Table{}, fmt.Errorf("%w: duplicate behavior %q on row %d", apperrors.ErrStorage, name, line+2)
		}
		seen[name] = struct{}{}

		behavior := domain.Behavior{
			Name:        name,
			Probability: parseProbability(cell(domain.ColumnProbability)),
			Category:    domain.Category(strings.TrimSpace(cell(domain.ColumnCategory))),
			PromptTime:  strings.TrimSpace(cell(domain.ColumnPromptTime)),
			UpEmoji:     cell(domain.ColumnUpEmoji),
			DownEmoji:   cell(domain.ColumnDownEmoji),
		}
		for i, role := range roles {
			if role != "" {
				continue
			}
			if behavior.Extra == nil {
				behavior.Extra = map[int]string{}
			}
			if i < len(row) {
				behavior.Extra[i] = row[i]
			} else {
				behavior.Extra[i] = ""
			}
		}
		table.Behaviors = append(table.Behaviors, behavior)
	}
	return table, nil
}

func (s *CSVTableStore) Save(_ context.Context, table domain.Table) error {
	columns := saveColumns(table)
	roles := domain.ColumnRoles(columns)

	buf := bytes.Buffer{}
	writer := csv.NewWriter(&buf)
	if err := writer.Write(columns); err != nil {
		return fmt.Errorf("%w: encode header: %w", apperrors.ErrStorage, err)
	}
	for _, b := range table.Behaviors {
		row := make([]string, len(columns))
		for i, role := range roles {
			if role == "" {
				row[i] = b.Extra[i]
				continue
			}
			row[i] = canonicalValue(b, role)
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("%w: encode behavior %q: %w", apperrors.ErrStorage, b.Name, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("%w: encode table: %w", apperrors.ErrStorage, err)
	}
	return s.writeAtomic(buf.Bytes())
}

func (s *CSVTableStore) writeAtomic(payload []byte) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: create table dir: %w", apperrors.ErrStorage, err)
	}
	tmp, err := os.CreateTemp(dir, ".btrack-*.csv")
	if err != nil {
		return fmt.Errorf("%w: create temp table: %w", apperrors.ErrStorage, err)
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	if _, err := tmp.Write(payload); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: write table: %w", apperrors.ErrStorage, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: close temp table: %w", apperrors.ErrStorage, err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return fmt.Errorf("%w: chmod temp table: %w", apperrors.ErrStorage, err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("%w: replace table: %w", apperrors.ErrStorage, err)
	}
	return nil
}

// saveColumns keeps the loaded header order and appends any canonical column
// that is missing but now carries data, or is required.
func saveColumns(table domain.Table) []string {
	columns := append([]string(nil), table.Columns...)
	present := map[string]bool{}
	for _, role := range domain.ColumnRoles(columns) {
		if role != "" {
			present[role] = true
		}
	}
	for _, canonical := range domain.CanonicalColumns {
		if present[canonical] {
			continue
		}
		needed := false
		for _, required := range domain.RequiredColumns {
			if required == canonical {
				needed = true
			}
		}
		for _, b := range table.Behaviors {
			if canonicalValue(b, canonical) != "" {
				needed = true
				break
			}
		}
		if needed {
			columns = append(columns, canonical)
			present[canonical] = true
		}
	}
	return columns
}

func canonicalValue(b domain.Behavior, column string) string {
	switch column {
	case domain.ColumnBehavior:
		return b.Name
	case domain.ColumnProbability:
		return strconv.Itoa(b.Probability)
	case domain.ColumnCategory:
		return string(b.Category)
	case domain.ColumnPromptTime:
		return b.PromptTime
	case domain.ColumnUpEmoji:
		return b.UpEmoji
	case domain.ColumnDownEmoji:
		return b.DownEmoji
	default:
		return ""
	}
}

// parseProbability never fails: dirty cells become the midpoint and
// out-of-range numbers are clamped.
func parseProbability(raw string) int {
	raw = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(raw), "%"))
	if raw == "" {
		return domain.DefaultProbability
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return domain.Clamp(n)
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return domain.DefaultProbability
	}
	if f > domain.MaxProbability {
		return domain.MaxProbability
	}
	if f < domain.MinProbability {
		return domain.MinProbability
	}
	return int(f)
}
