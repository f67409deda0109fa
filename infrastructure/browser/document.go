package browser

import (
	"time"

	"signup_automation/domain/entities"
	"signup_automation/domain/interfaces"

	"github.com/playwright-community/playwright-go"
)

type document struct {
	name  string
	frame playwright.Frame
}

func (d *document) Name() string {
	return d.name
}

func (d *document) Find(kind entities.HintKind, value string) interfaces.Element {
	return &element{loc: locate(d.frame, kind, value)}
}

// locate maps a hint kind onto a playwright query. Text hints use
// GetByText; css and auto are handed to Locator as selectors. Only the
// first match is ever used.
func locate(frame playwright.Frame, kind entities.HintKind, value string) playwright.Locator {
	if kind == entities.HintText {
		return frame.GetByText(value).First()
	}
	return frame.Locator(value).First()
}

func (d *document) FindAll(selector string) ([]interfaces.Element, error) {
	locs, err := d.frame.Locator(selector).All()
	if err != nil {
		return nil, err
	}
	out := make([]interfaces.Element, 0, len(locs))
	for _, loc := range locs {
		out = append(out, &element{loc: loc})
	}
	return out, nil
}

func (d *document) BodyHTML(timeout time.Duration) (string, error) {
	return d.frame.InnerHTML("body", playwright.FrameInnerHTMLOptions{
		Timeout: millis(timeout),
	})
}

// element wraps a lazy playwright locator
type element struct {
	loc playwright.Locator
}

func (e *element) WaitVisible(timeout time.Duration) error {
	return e.loc.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: millis(timeout),
	})
}

func (e *element) IsVisible() (bool, error) {
	return e.loc.IsVisible()
}

func (e *element) Click(timeout time.Duration) error {
	return e.loc.Click(playwright.LocatorClickOptions{Timeout: millis(timeout)})
}

func (e *element) Press(key string, timeout time.Duration) error {
	return e.loc.Press(key, playwright.LocatorPressOptions{Timeout: millis(timeout)})
}

func (e *element) TypeSequentially(text string, delay, timeout time.Duration) error {
	return e.loc.PressSequentially(text, playwright.LocatorPressSequentiallyOptions{
		Delay:   playwright.Float(float64(delay.Milliseconds())),
		Timeout: millis(timeout),
	})
}

func (e *element) InputValue(timeout time.Duration) (string, error) {
	return e.loc.InputValue(playwright.LocatorInputValueOptions{Timeout: millis(timeout)})
}

func (e *element) InnerText(timeout time.Duration) (string, error) {
	return e.loc.InnerText(playwright.LocatorInnerTextOptions{Timeout: millis(timeout)})
}
