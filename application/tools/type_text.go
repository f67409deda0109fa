package tools

import (
	"context"
	"fmt"
	"time"

	"signup_automation/domain/entities"

	"github.com/sirupsen/logrus"
)

// TypeTextTool clears a field and types new text key by key
type TypeTextTool struct {
	deps Deps
}

// NewTypeTextTool - creates clear-and-type tool
func NewTypeTextTool(deps Deps) *TypeTextTool {
	return &TypeTextTool{deps: deps}
}

func (t *TypeTextTool) Spec() entities.ToolSpec {
	params := hintParams()
	params = append(params, entities.ParamSpec{
		Name:        "text",
		Type:        entities.ParamString,
		Description: "Text to type. Existing content of the field is cleared first.",
		Required:    true,
	})
	return entities.ToolSpec{
		Name:        "type_text",
		Description: "Clear an input field and type text into it character by character, then verify the field's value.",
		Params:      params,
	}
}

func (t *TypeTextTool) Execute(ctx context.Context, args Args) entities.ToolResult {
	name := t.Spec().Name
	hint, err := entities.ParseHint(args.String("selector"), args.String("by"))
	if err != nil {
		return entities.Failure(name, "%v", err)
	}
	text := args.String("text")

	res, err := t.deps.Resolver.Resolve(ctx, hint)
	if err != nil {
		return entities.Failure(name, "could not type into %s: %v", hint, err)
	}

	if err := t.clearAndType(res.Element, text); err != nil {
		return entities.Failure(name, "typing into %s failed: %v", hint, err)
	}

	actual, err := res.Element.InputValue(t.deps.Timeouts.Action)
	if err != nil {
		return entities.Failure(name, "typed into %s but could not read the value back: %v", hint, err)
	}
	if actual != text {
		err := fmt.Errorf("%w: expected %q, field reads %q", ErrVerification, text, actual)
		return entities.Failure(name, "%s: %v; try another selector for the same field", hint, err)
	}

	t.deps.log(name).WithFields(logrus.Fields{
		"strategy": res.Strategy.String(),
		"length":   len(text),
	}).Info("typed")
	return entities.Success(name, "typed %d characters into %s (matched as %s in %s)",
		len([]rune(text)), hint, res.Strategy.Kind, res.Document)
}

type keyboard interface {
	Click(timeout time.Duration) error
	Press(key string, timeout time.Duration) error
	TypeSequentially(text string, delay, timeout time.Duration) error
}

func (t *TypeTextTool) clearAndType(el keyboard, text string) error {
	timeout := t.deps.Timeouts.Action
	if err := el.Click(timeout); err != nil {
		return fmt.Errorf("focus (timeout %s): %w", timeout, err)
	}
	if err := el.Press(selectAllKey(), timeout); err != nil {
		return fmt.Errorf("select all (timeout %s): %w", timeout, err)
	}
	if err := el.Press("Backspace", timeout); err != nil {
		return fmt.Errorf("clear (timeout %s): %w", timeout, err)
	}
	if text == "" {
		return nil
	}

	delay := t.deps.Timeouts.TypeDelay
	typing := timeout + time.Duration(len([]rune(text)))*delay
	if err := el.TypeSequentially(text, delay, typing); err != nil {
		return fmt.Errorf("type (timeout %s): %w", typing, err)
	}
	return nil
}
