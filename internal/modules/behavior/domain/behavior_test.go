package domain_test

import (
	"errors"
	"testing"

	"github.com/JHR999/behavior-tracker/internal/modules/behavior/domain"
	apperrors "github.com/JHR999/behavior-tracker/internal/platform/errors"
)

func TestApplyStaysWithinBounds(t *testing.T) {
	t.Parallel()
	for p := domain.MinProbability; p <= domain.MaxProbability; p++ {
		for _, o := range []domain.Outcome{domain.OutcomePositive, domain.OutcomeNegative} {
			got := domain.Apply(p, o)
			if got < domain.MinProbability || got > domain.MaxProbability {
				t.Fatalf("apply(%d, %s) = %d escapes [1,99]", p, o, got)
			}
		}
	}
}

func TestApplyFixedPoints(t *testing.T) {
	t.Parallel()
	cases := []struct {
		current int
		outcome domain.Outcome
		want    int
	}{
		{1, domain.OutcomeNegative, 1},
		{99, domain.OutcomePositive, 99},
		{50, domain.OutcomePositive, 51},
		{50, domain.OutcomeNegative, 49},
		{1, domain.OutcomePositive, 2},
		{99, domain.OutcomeNegative, 98},
	}
	for _, tc := range cases {
		if got := domain.Apply(tc.current, tc.outcome); got != tc.want {
			t.Fatalf("apply(%d, %s) = %d, want %d", tc.current, tc.outcome, got, tc.want)
		}
	}
	p := 99
	for i := 0; i < 5; i++ {
		p = domain.Apply(p, domain.OutcomePositive)
	}
	if p != 99 {
		t.Fatalf("repeated positive at 99 should stay 99, got %d", p)
	}
}

func TestParseOutcomeAliases(t *testing.T) {
	t.Parallel()
	for _, raw := range []string{"did", "Positive", " up ", "+", "yes"} {
		if o, err := domain.ParseOutcome(raw); err != nil || o != domain.OutcomePositive {
			t.Fatalf("%q should parse as positive, got %q (%v)", raw, o, err)
		}
	}
	for _, raw := range []string{"didnt", "didn't", "negative", "-", "NO"} {
		if o, err := domain.ParseOutcome(raw); err != nil || o != domain.OutcomeNegative {
			t.Fatalf("%q should parse as negative, got %q (%v)", raw, o, err)
		}
	}
	if _, err := domain.ParseOutcome("maybe"); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestCategoryIsSituationalIgnoresCase(t *testing.T) {
	t.Parallel()
	if !domain.Category(" Situational ").IsSituational() {
		t.Fatalf("situational should match case-insensitively")
	}
	for _, c := range []domain.Category{"scheduled", "daily", ""} {
		if c.IsSituational() {
			t.Fatalf("%q must be scheduled", c)
		}
	}
}

func TestBehaviorValidate(t *testing.T) {
	t.Parallel()
	base := domain.Behavior{Name: "Walk", Probability: 50, Category: domain.CategoryScheduled, PromptTime: "08:00"}
	if err := base.Validate(); err != nil {
		t.Fatalf("behavior should be valid: %v", err)
	}
	noName := base
	noName.Name = " "
	if err := noName.Validate(); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("missing name should be invalid input, got %v", err)
	}
	for _, p := range []int{0, 100} {
		bad := base
		bad.Probability = p
		if err := bad.Validate(); !errors.Is(err, apperrors.ErrInvariant) {
			t.Fatalf("probability %d should violate invariant, got %v", p, err)
		}
	}
	badTime := base
	badTime.PromptTime = "25:99"
	if err := badTime.Validate(); err == nil {
		t.Fatalf("invalid prompt time should fail")
	}
}

func TestLabelsFallBack(t *testing.T) {
	t.Parallel()
	b := domain.Behavior{Name: "Read"}
	if b.UpLabel("") != domain.DefaultUpEmoji || b.DownLabel("") != domain.DefaultDownEmoji {
		t.Fatalf("expected default markers")
	}
	if b.UpLabel("👍") != "👍" {
		t.Fatalf("configured fallback should win over the default")
	}
	b.UpEmoji = "📚"
	if b.UpLabel("👍") != "📚" {
		t.Fatalf("cell value should win over fallbacks")
	}
}

func TestPatchApplyToLeavesOriginalAlone(t *testing.T) {
	t.Parallel()
	orig := domain.Behavior{Name: "Walk", Probability: 40, Category: "scheduled", Extra: map[int]string{3: "x"}}
	situational := "situational"
	out := domain.Patch{Category: &situational}.ApplyTo(orig)
	out.Extra[3] = "changed"
	if !out.Category.IsSituational() || orig.Category.IsSituational() {
		t.Fatalf("patch should only change the copy")
	}
	if orig.Extra[3] != "x" {
		t.Fatalf("extra columns must be copied, not shared")
	}
}

func TestColumnRolesInterpretFirstCanonicalHeaderOnly(t *testing.T) {
	t.Parallel()
	got := domain.ColumnRoles([]string{" behavior ", "Note", "Probability", "", "PROBABILITY", "Note"})
	want := []string{domain.ColumnBehavior, "", domain.ColumnProbability, "", "", ""}
	if len(got) != len(want) {
		t.Fatalf("expected %d roles, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("role %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}
