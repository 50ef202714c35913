package domain

import (
	"sort"
	"time"
)

const DayLayout = "2006-01-02"

// DailySession is today's answered set and rotation cursor. It is never
// written to the behavior table.
type DailySession struct {
	Day      string          `json:"day"`
	Answered map[string]bool `json:"answered,omitempty"`
	Cursor   int             `json:"cursor"`
}

func NewSession(now time.Time) DailySession {
	return DailySession{Day: now.Format(DayLayout), Answered: map[string]bool{}}
}

// RollOver clears the session when now falls on a different date than Day.
// It reports whether anything was cleared.
func (s *DailySession) RollOver(now time.Time) bool {
	today := now.Format(DayLayout)
	if s.Day == today {
		if s.Answered == nil {
			s.Answered = map[string]bool{}
		}
		return false
	}
	*s = NewSession(now)
	return true
}

// Reset clears answers and cursor while keeping the day.
func (s *DailySession) Reset(now time.Time) {
	*s = NewSession(now)
}

func (s DailySession) IsAnswered(name string) bool {
	return s.Answered[name]
}

func (s *DailySession) MarkAnswered(name string) {
	if s.Answered == nil {
		s.Answered = map[string]bool{}
	}
	s.Answered[name] = true
}

func (s *DailySession) Advance() {
	s.Cursor++
}

func (s DailySession) AnsweredNames() []string {
	out := make([]string, 0, len(s.Answered))
	for name, ok := range s.Answered {
		if ok {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

func (s DailySession) Clone() DailySession {
	out := s
	out.Answered = make(map[string]bool, len(s.Answered))
	for k, v := range s.Answered {
		out.Answered[k] = v
	}
	return out
}
