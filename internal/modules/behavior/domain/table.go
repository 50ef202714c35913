package domain

import "strings"

const (
	ColumnBehavior    = "Behavior"
	ColumnProbability = "Probability"
	ColumnCategory    = "Category"
	ColumnPromptTime  = "Prompt Time"
	ColumnUpEmoji     = "+ Emoji"
	ColumnDownEmoji   = "- Emoji"
)

var (
	RequiredColumns  = []string{ColumnBehavior, ColumnProbability, ColumnCategory}
	CanonicalColumns = []string{ColumnBehavior, ColumnProbability, ColumnCategory, ColumnPromptTime, ColumnUpEmoji, ColumnDownEmoji}
)

// CanonicalColumn maps a header cell to its canonical name, or "" for a
// column this tool does not interpret.
func CanonicalColumn(header string) string {
	header = strings.TrimSpace(header)
	for _, c := range CanonicalColumns {
		if strings.EqualFold(header, c) {
			return c
		}
	}
	return ""
}

// ColumnRoles maps each header cell to the canonical column it carries. Only
// the first occurrence of a canonical header is interpreted; every other
// column, repeated or blank, gets "" and round-trips through Behavior.Extra.
func ColumnRoles(columns []string) []string {
	roles := make([]string, len(columns))
	seen := map[string]bool{}
	for i, c := range columns {
		canonical := CanonicalColumn(c)
		if canonical == "" || seen[canonical] {
			continue
		}
		seen[canonical] = true
		roles[i] = canonical
	}
	return roles
}

// Table is the ordered behavior set plus the header it was read with.
// Row position is presentation only; Name is the key.
type Table struct {
	Columns   []string
	Behaviors []Behavior
}

func NewTable() Table {
	return Table{Columns: append([]string(nil), CanonicalColumns...)}
}

func (t Table) Index(name string) int {
	for i, b := range t.Behaviors {
		if b.Name == name {
			return i
		}
	}
	return -1
}

func (t Table) Clone() Table {
	out := Table{Columns: append([]string(nil), t.Columns...), Behaviors: make([]Behavior, len(t.Behaviors))}
	for i, b := range t.Behaviors {
		out.Behaviors[i] = b.Clone()
	}
	return out
}
