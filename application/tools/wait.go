package tools

import (
	"context"
	"time"

	"signup_automation/domain/entities"
)

// WaitTool waits until a hint resolves to a visible element
type WaitTool struct {
	deps Deps
}

// NewWaitTool - creates wait-for-visible tool
func NewWaitTool(deps Deps) *WaitTool {
	return &WaitTool{deps: deps}
}

func (t *WaitTool) Spec() entities.ToolSpec {
	params := hintParams()
	params = append(params, entities.ParamSpec{
		Name:        "timeout",
		Type:        entities.ParamNumber,
		Description: "Seconds to wait. Omit or null for the default.",
		Nullable:    true,
	})
	return entities.ToolSpec{
		Name:        "wait_for_element",
		Description: "Wait until an element is visible on the page or in the first iframe. Never waits longer than the timeout.",
		Params:      params,
	}
}

func (t *WaitTool) Execute(ctx context.Context, args Args) entities.ToolResult {
	name := t.Spec().Name
	hint, err := entities.ParseHint(args.String("selector"), args.String("by"))
	if err != nil {
		return entities.Failure(name, "%v", err)
	}

	timeout := t.deps.Timeouts.DefaultWait
	if secs, ok := args.Number("timeout"); ok {
		if secs <= 0 {
			return entities.Failure(name, "timeout must be positive, got %v", secs)
		}
		// Clamp in seconds; converting a huge value first overflows Duration.
		if secs >= t.deps.Timeouts.MaxWait.Seconds() {
			timeout = t.deps.Timeouts.MaxWait
		} else {
			timeout = time.Duration(secs * float64(time.Second))
		}
	}

	start := time.Now()
	res, err := t.deps.Resolver.WaitVisible(ctx, hint, timeout)
	if err != nil {
		return entities.Failure(name, "%s did not become visible within %s: %v", hint, timeout, err)
	}

	return entities.Success(name, "%s is visible (matched as %s in %s after %s)",
		hint, res.Strategy.Kind, res.Document, time.Since(start).Round(time.Millisecond))
}
