package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"

	apperrors "github.com/JHR999/behavior-tracker/internal/platform/errors"
)

// Policy picks which queue entry is presented.
type Policy string

const (
	// PolicyEarliest always presents the earliest due item.
	PolicyEarliest Policy = "earliest"
	// PolicyCursor presents queue[cursor mod len(queue)].
	PolicyCursor Policy = "cursor"
)

func ParsePolicy(raw string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(raw))) {
	case "", PolicyEarliest:
		return PolicyEarliest, nil
	case PolicyCursor:
		return PolicyCursor, nil
	default:
		return "", fmt.Errorf("%w: unknown rotation policy %q", apperrors.ErrInvalidInput, raw)
	}
}

// BuildQueue keeps eligible items ordered by prompt time, ties by Order.
func BuildQueue(items []Item, now time.Time, session DailySession) []Item {
	queue := make([]Item, 0, len(items))
	for _, item := range items {
		if IsEligible(item, now, session) {
			queue = append(queue, item)
		}
	}
	sort.SliceStable(queue, func(a, b int) bool {
		pa, _ := ParsePromptTime(queue[a].PromptTime)
		pb, _ := ParsePromptTime(queue[b].PromptTime)
		if pa != pb {
			return pa < pb
		}
		return queue[a].Order < queue[b].Order
	})
	return queue
}

// Current returns the presented item and its queue index. ok is false when
// nothing is pending.
func Current(queue []Item, session DailySession, policy Policy) (Item, int, bool) {
	if len(queue) == 0 {
		return Item{}, 0, false
	}
	if policy != PolicyCursor {
		return queue[0], 0, true
	}
	i := session.Cursor % len(queue)
	if i < 0 {
		i += len(queue)
	}
	return queue[i], i, true
}
