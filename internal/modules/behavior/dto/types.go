package dto

type BehaviorOutput struct {
	Name        string `json:"name"`
	Probability int    `json:"probability"`
	Category    string `json:"category"`
	Situational bool   `json:"situational"`
	PromptTime  string `json:"prompt_time,omitempty"`
	UpEmoji     string `json:"up_emoji"`
	DownEmoji   string `json:"down_emoji"`
	Position    int    `json:"position"`
}

type AddInput struct {
	Name        string
	Probability int
	Category    string
	PromptTime  string
	UpEmoji     string
	DownEmoji   string
}

// EditInput leaves nil fields untouched.
type EditInput struct {
	Name       string
	Category   *string
	PromptTime *string
	UpEmoji    *string
	DownEmoji  *string
}

type SetProbabilityInput struct {
	Name        string
	Probability int
}

type ApplyOutcomeInput struct {
	Name    string
	Outcome string
}

type ProbabilityChangeOutput struct {
	Name        string `json:"name"`
	Before      int    `json:"before"`
	After       int    `json:"after"`
	Outcome     string `json:"outcome,omitempty"`
	Situational bool   `json:"situational"`
}

type ReindexOutput struct {
	Behaviors int `json:"behaviors"`
}
