package entities

import "time"

// Step records one round: the call that was made and what came back
type Step struct {
	Round     int            `json:"round"`
	Call      ToolInvocation `json:"call"`
	Reasoning string         `json:"reasoning,omitempty"`
	Result    ToolResult     `json:"result"`
	Duration  time.Duration  `json:"duration"`
}

// TaskState is everything a decision-maker sees when choosing the next action
type TaskState struct {
	Task    string     `json:"task"`
	Tools   []ToolSpec `json:"-"`
	Round   int        `json:"round"`
	History []Step     `json:"history"`
}

// RunStatus represents how a run ended
type RunStatus string

const (
	RunStatusCompleted RunStatus = "completed"
	RunStatusExhausted RunStatus = "round_cap_reached"
	RunStatusCanceled  RunStatus = "canceled"
	RunStatusFailed    RunStatus = "failed"
)

// RunReport summarises a finished run
type RunReport struct {
	RunID           string    `json:"run_id"`
	Status          RunStatus `json:"status"`
	Rounds          int       `json:"rounds"`
	Summary         string    `json:"summary,omitempty"`
	Error           string    `json:"error,omitempty"`
	FinalScreenshot string    `json:"final_screenshot,omitempty"`
	StartedAt       time.Time `json:"started_at"`
	FinishedAt      time.Time `json:"finished_at"`
	History         []Step    `json:"history"`
}
