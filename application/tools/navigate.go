package tools

import (
	"context"

	"signup_automation/domain/entities"
)

// NavigateTool loads a URL and waits for the network to go idle
type NavigateTool struct {
	deps Deps
}

// NewNavigateTool - creates navigate tool
func NewNavigateTool(deps Deps) *NavigateTool {
	return &NavigateTool{deps: deps}
}

func (t *NavigateTool) Spec() entities.ToolSpec {
	return entities.ToolSpec{
		Name:        "navigate",
		Description: "Open a URL in the browser and wait until the network is idle. Returns the resolved URL and page title.",
		Params: []entities.ParamSpec{
			{Name: "url", Type: entities.ParamString, Description: "Absolute URL to open", Required: true},
		},
	}
}

func (t *NavigateTool) Execute(ctx context.Context, args Args) entities.ToolResult {
	name := t.Spec().Name
	url := args.String("url")

	if t.deps.Guard != nil {
		if err := t.deps.Guard.CheckNavigation(url); err != nil {
			return entities.Failure(name, "refused to open %s: %v", url, err)
		}
	}

	timeout := t.deps.Timeouts.Navigation
	info, err := t.deps.Page.Navigate(url, timeout)
	if err != nil {
		return entities.Failure(name, "navigation to %s failed (timeout %s): %v", url, timeout, err)
	}

	t.deps.log(name).WithField("url", info.URL).Info("navigated")
	return entities.Success(name, "navigated to %s (title: %q)", info.URL, info.Title)
}
