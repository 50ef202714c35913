package domain

import (
	"strings"
	"time"
)

// Item is the part of a behavior the gate and queue look at.
type Item struct {
	Name        string
	Situational bool
	PromptTime  string
	Order       int
}

type Status string

const (
	StatusSituational Status = "situational"
	StatusUnscheduled Status = "unscheduled"
	StatusInvalid     Status = "invalid"
	StatusAnswered    Status = "answered"
	StatusUpcoming    Status = "upcoming"
	StatusDue         Status = "due"
)

var promptLayouts = []string{"15:04", "15:04:05"}

// ParsePromptTime returns the prompt time as seconds since midnight.
func ParsePromptTime(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	for _, layout := range promptLayouts {
		t, err := time.Parse(layout, raw)
		if err == nil {
			return t.Hour()*3600 + t.Minute()*60 + t.Second(), true
		}
	}
	return 0, false
}

func secondsOfDay(now time.Time) int {
	return now.Hour()*3600 + now.Minute()*60 + now.Second()
}

// StatusOf classifies item at now. Only StatusDue is eligible.
func StatusOf(item Item, now time.Time, session DailySession) Status {
	if item.Situational {
		return StatusSituational
	}
	if strings.TrimSpace(item.PromptTime) == "" {
		return StatusUnscheduled
	}
	prompt, ok := ParsePromptTime(item.PromptTime)
	if !ok {
		return StatusInvalid
	}
	if session.IsAnswered(item.Name) {
		return StatusAnswered
	}
	if secondsOfDay(now) < prompt {
		return StatusUpcoming
	}
	return StatusDue
}

func IsEligible(item Item, now time.Time, session DailySession) bool {
	return StatusOf(item, now, session) == StatusDue
}
