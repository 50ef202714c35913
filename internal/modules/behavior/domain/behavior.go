package domain

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/JHR999/behavior-tracker/internal/platform/errors"
)

const (
	MinProbability     = 1
	MaxProbability     = 99
	DefaultProbability = 50

	DefaultUpEmoji   = "✅"
	DefaultDownEmoji = "❌"
)

// Category holds the category cell as written in the table. Only
// "situational" (any case) is special; every other value is scheduled.
type Category string

const (
	CategoryScheduled   Category = "scheduled"
	CategorySituational Category = "situational"
)

func (c Category) IsSituational() bool {
	return strings.EqualFold(strings.TrimSpace(string(c)), string(CategorySituational))
}

type Outcome string

const (
	OutcomePositive Outcome = "positive"
	OutcomeNegative Outcome = "negative"
)

func ParseOutcome(raw string) (Outcome, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "positive", "did", "done", "yes", "y", "up", "+":
		return OutcomePositive, nil
	case "negative", "didnt", "didn't", "no", "n", "down", "-":
		return OutcomeNegative, nil
	default:
		return "", fmt.Errorf("%w: unknown outcome %q", apperrors.ErrInvalidInput, raw)
	}
}

// Apply is the only transfer function: one point per answer, clamped to [1,99].
func Apply(current int, outcome Outcome) int {
	switch outcome {
	case OutcomePositive:
		return Clamp(current + 1)
	case OutcomeNegative:
		return Clamp(current - 1)
	default:
		return Clamp(current)
	}
}

func Clamp(p int) int {
	if p < MinProbability {
		return MinProbability
	}
	if p > MaxProbability {
		return MaxProbability
	}
	return p
}

func ValidateProbability(p int) error {
	if p < MinProbability || p > MaxProbability {
		return fmt.Errorf("%w: probability %d outside [%d,%d]", apperrors.ErrInvariant, p, MinProbability, MaxProbability)
	}
	return nil
}

// ValidPromptTime accepts an empty value or a 24h HH:MM / HH:MM:SS clock time.
func ValidPromptTime(raw string) bool {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return true
	}
	for _, layout := range []string{"15:04", "15:04:05"} {
		if _, err := time.Parse(layout, raw); err == nil {
			return true
		}
	}
	return false
}

type Behavior struct {
	Name        string
	Probability int
	Category    Category
	PromptTime  string
	UpEmoji     string
	DownEmoji   string
	// Extra carries cells of columns this tool does not interpret, keyed by
	// their index in Table.Columns. Headers may repeat or be blank.
	Extra map[int]string
}

func (b Behavior) Validate() error {
	if strings.TrimSpace(b.Name) == "" {
		return fmt.Errorf("%w: behavior name is required", apperrors.ErrInvalidInput)
	}
	if err := ValidateProbability(b.Probability); err != nil {
		return err
	}
	if !ValidPromptTime(b.PromptTime) {
		return fmt.Errorf("%w: prompt time %q is not HH:MM", apperrors.ErrInvalidInput, b.PromptTime)
	}
	return nil
}

// UpLabel returns the positive marker, falling back when the cell is empty.
func (b Behavior) UpLabel(fallback string) string {
	if strings.TrimSpace(b.UpEmoji) != "" {
		return b.UpEmoji
	}
	if fallback != "" {
		return fallback
	}
	return DefaultUpEmoji
}

func (b Behavior) DownLabel(fallback string) string {
	if strings.TrimSpace(b.DownEmoji) != "" {
		return b.DownEmoji
	}
	if fallback != "" {
		return fallback
	}
	return DefaultDownEmoji
}

func (b Behavior) Clone() Behavior {
	out := b
	if b.Extra != nil {
		out.Extra = make(map[int]string, len(b.Extra))
		for k, v := range b.Extra {
			out.Extra[k] = v
		}
	}
	return out
}

// Patch updates the descriptive fields of a behavior. Nil fields are left alone.
type Patch struct {
	Category   *string
	PromptTime *string
	UpEmoji    *string
	DownEmoji  *string
}

func (p Patch) ApplyTo(b Behavior) Behavior {
	out := b.Clone()
	if p.Category != nil {
		out.Category = Category(strings.TrimSpace(*p.Category))
	}
	if p.PromptTime != nil {
		out.PromptTime = strings.TrimSpace(*p.PromptTime)
	}
	if p.UpEmoji != nil {
		out.UpEmoji = *p.UpEmoji
	}
	if p.DownEmoji != nil {
		out.DownEmoji = *p.DownEmoji
	}
	return out
}
