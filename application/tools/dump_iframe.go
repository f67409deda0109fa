package tools

import (
	"context"
	"errors"

	"signup_automation/application/resolver"
	"signup_automation/domain/entities"
)

// DumpIframeTool writes the first iframe's body markup to the debug file
type DumpIframeTool struct {
	deps Deps
}

// NewDumpIframeTool - creates dump-frame-markup tool
func NewDumpIframeTool(deps Deps) *DumpIframeTool {
	return &DumpIframeTool{deps: deps}
}

func (t *DumpIframeTool) Spec() entities.ToolSpec {
	return entities.ToolSpec{
		Name:        "dump_iframe",
		Description: "Save the HTML body of the first iframe to a debug file for diagnosis. Returns the file path.",
	}
}

func (t *DumpIframeTool) Execute(ctx context.Context, args Args) entities.ToolResult {
	name := t.Spec().Name
	path, err := t.deps.Resolver.DumpFrame()
	if errors.Is(err, resolver.ErrNoFrame) {
		return entities.Failure(name, "the page has no iframe to dump")
	}
	if err != nil {
		return entities.Failure(name, "iframe dump failed: %v", err)
	}
	return entities.Success(name, "iframe markup saved to %s", path)
}
