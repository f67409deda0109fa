package tools

import (
	"context"
	"sort"
	"strings"
	"time"

	"signup_automation/domain/entities"

	"github.com/sirupsen/logrus"
)

// Toolset dispatches invocations by name to the registered tools
type Toolset struct {
	deps  Deps
	tools map[string]Tool
	order []string
}

// NewToolset - registers the full browser catalog
func NewToolset(deps Deps) *Toolset {
	ts := &Toolset{
		deps:  deps,
		tools: make(map[string]Tool),
	}
	ts.Register(
		NewNavigateTool(deps),
		NewClickTool(deps),
		NewTypeTextTool(deps),
		NewWaitTool(deps),
		NewFindElementsTool(deps),
		NewScreenshotTool(deps),
		NewDumpIframeTool(deps),
	)
	return ts
}

// Register adds tools, replacing any with the same name
func (ts *Toolset) Register(tools ...Tool) {
	for _, tool := range tools {
		name := tool.Spec().Name
		if _, exists := ts.tools[name]; !exists {
			ts.order = append(ts.order, name)
		}
		ts.tools[name] = tool
	}
}

// Specs returns the catalog in registration order
func (ts *Toolset) Specs() []entities.ToolSpec {
	specs := make([]entities.ToolSpec, 0, len(ts.order))
	for _, name := range ts.order {
		specs = append(specs, ts.tools[name].Spec())
	}
	return specs
}

// Invoke validates and runs one call. It always returns a result; a panicking
// tool is reported as a failure.
func (ts *Toolset) Invoke(ctx context.Context, call entities.ToolInvocation) (result entities.ToolResult) {
	start := time.Now()
	defer func() {
		if p := recover(); p != nil {
			result = entities.Failure(call.Tool, "tool %s crashed: %v", call.Tool, p)
		}
		elapsed := time.Since(start)
		if ts.deps.Metrics != nil {
			ts.deps.Metrics.ObserveTool(call.Tool, result.OK, elapsed)
		}
		entry := ts.deps.Logger.WithFields(logrus.Fields{
			"component": "toolset",
			"tool":      call.Tool,
			"ok":        result.OK,
			"elapsed":   elapsed.Round(time.Millisecond),
		})
		if result.OK {
			entry.Info(truncate(result.Message, 200))
		} else {
			entry.Warn(truncate(result.Message, 200))
		}
	}()

	tool, ok := ts.tools[call.Tool]
	if !ok {
		return entities.Failure(call.Tool, "unknown tool %q; available tools: %s", call.Tool, strings.Join(ts.names(), ", "))
	}
	if err := ctx.Err(); err != nil {
		return entities.Failure(call.Tool, "not run: %v", err)
	}

	args, err := ValidateArguments(tool.Spec(), call.Arguments)
	if err != nil {
		return entities.Failure(call.Tool, "%v", err)
	}
	return tool.Execute(ctx, args)
}

func (ts *Toolset) names() []string {
	names := append([]string(nil), ts.order...)
	sort.Strings(names)
	return names
}
