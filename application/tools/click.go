package tools

import (
	"context"

	"signup_automation/domain/entities"
)

// ClickTool clicks the element a locator hint resolves to
type ClickTool struct {
	deps Deps
}

// NewClickTool - creates click tool
func NewClickTool(deps Deps) *ClickTool {
	return &ClickTool{deps: deps}
}

func (t *ClickTool) Spec() entities.ToolSpec {
	return entities.ToolSpec{
		Name:        "click",
		Description: "Click an element. The selector may be a CSS selector or the element's visible text; the main page is searched before the first iframe.",
		Params:      hintParams(),
	}
}

func (t *ClickTool) Execute(ctx context.Context, args Args) entities.ToolResult {
	name := t.Spec().Name
	hint, err := entities.ParseHint(args.String("selector"), args.String("by"))
	if err != nil {
		return entities.Failure(name, "%v", err)
	}

	res, err := t.deps.Resolver.Resolve(ctx, hint)
	if err != nil {
		return entities.Failure(name, "could not click %s: %v", hint, err)
	}

	timeout := t.deps.Timeouts.Action
	if err := res.Element.Click(timeout); err != nil {
		return entities.Failure(name, "click on %s failed (timeout %s): %v", hint, timeout, err)
	}

	t.deps.Page.WaitIdle(t.deps.Timeouts.Settle)

	t.deps.log(name).WithField("strategy", res.Strategy.String()).Info("clicked")
	return entities.Success(name, "clicked %s (matched as %s in %s); current URL: %s",
		hint, res.Strategy.Kind, res.Document, t.deps.Page.URL())
}

// hintParams are the parameters shared by tools taking a locator hint
func hintParams() []entities.ParamSpec {
	return []entities.ParamSpec{
		{
			Name:        "selector",
			Type:        entities.ParamString,
			Description: "CSS selector (e.g. 'input[name=\"email\"]') or visible text (e.g. 'Sign Up')",
			Required:    true,
		},
		{
			Name:        "by",
			Type:        entities.ParamString,
			Description: "How to read selector: 'css' or 'text'. Omit or null to try both, CSS first.",
			Nullable:    true,
			Enum:        []string{string(entities.HintSelector), string(entities.HintText)},
		},
	}
}
