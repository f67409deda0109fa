package tools

import (
	"context"
	"fmt"
	"strings"

	"signup_automation/domain/entities"
	"signup_automation/domain/interfaces"
)

const maxListed = 5

// FindElementsTool counts the matches of a selector and describes the first few
type FindElementsTool struct {
	deps Deps
}

// NewFindElementsTool - creates enumerate-matches tool
func NewFindElementsTool(deps Deps) *FindElementsTool {
	return &FindElementsTool{deps: deps}
}

func (t *FindElementsTool) Spec() entities.ToolSpec {
	return entities.ToolSpec{
		Name:        "find_elements",
		Description: "Count all elements matching a CSS selector and list the visible text of the first five. Searches the first iframe when the page itself has no match.",
		Params: []entities.ParamSpec{
			{Name: "selector", Type: entities.ParamString, Description: "CSS selector, e.g. 'input' or 'button[type=submit]'", Required: true},
		},
	}
}

func (t *FindElementsTool) Execute(ctx context.Context, args Args) entities.ToolResult {
	name := t.Spec().Name
	selector := strings.TrimSpace(args.String("selector"))
	if selector == "" {
		return entities.Failure(name, "selector is empty")
	}

	doc := t.deps.Page.MainDocument()
	matches, err := doc.FindAll(selector)
	if err != nil {
		return entities.Failure(name, "could not query %q in %s: %v", selector, doc.Name(), err)
	}

	if len(matches) == 0 {
		if frame, ok := t.deps.Page.FirstFrame(); ok {
			frameMatches, err := frame.FindAll(selector)
			if err != nil {
				return entities.Failure(name, "could not query %q in %s: %v", selector, frame.Name(), err)
			}
			doc, matches = frame, frameMatches
		}
	}

	if len(matches) == 0 {
		msg := fmt.Sprintf("found 0 elements matching %q in the page or its first iframe", selector)
		if path, err := t.deps.Resolver.DumpFrame(); err == nil {
			msg += "; iframe markup saved to " + path
		}
		return entities.Success(name, "%s", msg)
	}

	return entities.Success(name, "%s", t.describe(selector, doc, matches))
}

func (t *FindElementsTool) describe(selector string, doc interfaces.Document, matches []interfaces.Element) string {
	var b strings.Builder
	fmt.Fprintf(&b, "found %d elements matching %q in %s", len(matches), selector, doc.Name())

	for i, el := range matches {
		if i >= maxListed {
			fmt.Fprintf(&b, "\n... %d more not listed", len(matches)-maxListed)
			break
		}
		info := entities.ElementInfo{Index: i}
		info.IsVisible, _ = el.IsVisible()
		if text, err := el.InnerText(t.deps.Timeouts.Action); err == nil {
			info.Text = truncate(strings.Join(strings.Fields(text), " "), 80)
		}
		visibility := "hidden"
		if info.IsVisible {
			visibility = "visible"
		}
		fmt.Fprintf(&b, "\n[%d] %s text=%q", info.Index, visibility, info.Text)
	}
	return b.String()
}
