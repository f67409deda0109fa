package entities

// Decision is what a decision-maker returns for one round: either a tool call
// or a declaration that the task is finished.
type Decision struct {
	Call      *ToolInvocation `json:"call,omitempty"`
	Reasoning string          `json:"reasoning,omitempty"`
	Done      bool            `json:"done"`
	Summary   string          `json:"summary,omitempty"`
}
