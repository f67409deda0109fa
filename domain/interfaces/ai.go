package interfaces

import (
	"context"

	"signup_automation/domain/entities"
)

// DecisionMaker chooses the next action for the run. The driver is its only caller.
type DecisionMaker interface {
	// Decide returns the next tool call, or a decision with Done set when the task is finished
	Decide(ctx context.Context, state entities.TaskState) (entities.Decision, error)
}
