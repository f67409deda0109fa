package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"signup_automation/domain/entities"
	"signup_automation/domain/interfaces"

	"gopkg.in/yaml.v3"
)

// ScriptStep is one scripted tool call
type ScriptStep struct {
	Tool      string                 `yaml:"tool"`
	Reasoning string                 `yaml:"reasoning,omitempty"`
	Args      map[string]interface{} `yaml:"args,omitempty"`
}

// Script is a fixed sequence of calls followed by a completion summary
type Script struct {
	Summary string       `yaml:"summary"`
	Steps   []ScriptStep `yaml:"steps"`
}

// ScriptedDecider replays a Script. It keeps no state of its own: the next
// step is picked by how many steps the history already holds.
type ScriptedDecider struct {
	script Script
}

// NewScriptedDecider - creates decider from an in-memory script
func NewScriptedDecider(script Script) *ScriptedDecider {
	return &ScriptedDecider{script: script}
}

// LoadScript - reads a YAML script file
func LoadScript(path string) (*ScriptedDecider, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}
	return ParseScript(data)
}

// ParseScript - decodes a YAML script
func ParseScript(data []byte) (*ScriptedDecider, error) {
	var script Script
	if err := yaml.Unmarshal(data, &script); err != nil {
		return nil, fmt.Errorf("failed to parse script: %w", err)
	}
	for i, step := range script.Steps {
		if step.Tool == "" {
			return nil, fmt.Errorf("script step %d has no tool", i+1)
		}
	}
	return NewScriptedDecider(script), nil
}

func (d *ScriptedDecider) Decide(ctx context.Context, state entities.TaskState) (entities.Decision, error) {
	if err := ctx.Err(); err != nil {
		return entities.Decision{}, err
	}

	next := len(state.History)
	if next >= len(d.script.Steps) {
		summary := d.script.Summary
		if summary == "" {
			summary = fmt.Sprintf("script finished after %d steps", len(d.script.Steps))
		}
		return entities.Decision{Done: true, Summary: summary}, nil
	}

	step := d.script.Steps[next]
	args := json.RawMessage("{}")
	if len(step.Args) > 0 {
		raw, err := json.Marshal(step.Args)
		if err != nil {
			return entities.Decision{}, fmt.Errorf("script step %d: %w", next+1, err)
		}
		args = raw
	}
	return entities.Decision{
		Call: &entities.ToolInvocation{
			ID:        fmt.Sprintf("script_%d", next+1),
			Tool:      step.Tool,
			Arguments: args,
		},
		Reasoning: step.Reasoning,
	}, nil
}

var _ interfaces.DecisionMaker = (*ScriptedDecider)(nil)
