package tools

import (
	"context"

	"signup_automation/domain/entities"
)

// ScreenshotTool saves a full-page capture of the current state
type ScreenshotTool struct {
	deps Deps
}

// NewScreenshotTool - creates screenshot tool
func NewScreenshotTool(deps Deps) *ScreenshotTool {
	return &ScreenshotTool{deps: deps}
}

func (t *ScreenshotTool) Spec() entities.ToolSpec {
	return entities.ToolSpec{
		Name:        "take_screenshot",
		Description: "Save a full-page screenshot and return its file path.",
	}
}

func (t *ScreenshotTool) Execute(ctx context.Context, args Args) entities.ToolResult {
	name := t.Spec().Name
	rec, err := t.deps.Archiver.Capture(ctx, t.deps.Page)
	if err != nil {
		return entities.Failure(name, "screenshot failed: %v", err)
	}
	return entities.Success(name, "screenshot saved to %s", rec.Path)
}
