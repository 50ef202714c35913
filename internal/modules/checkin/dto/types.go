package dto

import behaviordto "github.com/JHR999/behavior-tracker/internal/modules/behavior/dto"

type ItemOutput struct {
	Name        string `json:"name"`
	Probability int    `json:"probability"`
	Category    string `json:"category"`
	Situational bool   `json:"situational"`
	PromptTime  string `json:"prompt_time,omitempty"`
	UpEmoji     string `json:"up_emoji"`
	DownEmoji   string `json:"down_emoji"`
	Status      string `json:"status"`
}

// PendingOutput is the presented item. Pending is false when the queue is
// empty; Position is the item's index in the queue.
type PendingOutput struct {
	Pending  bool       `json:"pending"`
	Item     ItemOutput `json:"item"`
	Position int        `json:"position"`
	Total    int        `json:"total"`
}

type RecordOutcomeInput struct {
	Name    string
	Outcome string
}

type RecordOutcomeOutput struct {
	Change   behaviordto.ProbabilityChangeOutput `json:"change"`
	Answered bool                                `json:"answered"`
	Next     PendingOutput                       `json:"next"`
}

type SessionOutput struct {
	Day      string   `json:"day"`
	Answered []string `json:"answered"`
	Cursor   int      `json:"cursor"`
}
