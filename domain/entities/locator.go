package entities

import (
	"fmt"
	"strings"
)

// HintKind says how a locator hint should be interpreted.
type HintKind string

const (
	// HintAuto tries the hint as a selector first, then as visible text.
	HintAuto     HintKind = "auto"
	HintSelector HintKind = "css"
	HintText     HintKind = "text"
)

// Hint identifies a target element. Raw is either a CSS selector or visible text;
// Kind pins one interpretation or leaves both open.
type Hint struct {
	Raw  string   `json:"raw"`
	Kind HintKind `json:"kind"`
}

// ParseHint - builds a hint from a tool argument and the optional "by" value.
// An empty by means HintAuto.
func ParseHint(raw string, by string) (Hint, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Hint{}, fmt.Errorf("locator hint is empty")
	}

	switch HintKind(strings.ToLower(strings.TrimSpace(by))) {
	case "", HintAuto:
		return Hint{Raw: raw, Kind: HintAuto}, nil
	case HintSelector:
		return Hint{Raw: raw, Kind: HintSelector}, nil
	case HintText:
		return Hint{Raw: raw, Kind: HintText}, nil
	default:
		return Hint{}, fmt.Errorf("unknown locator kind %q (want css or text)", by)
	}
}

// Allows reports whether the hint may be tried with the given interpretation.
func (h Hint) Allows(kind HintKind) bool {
	return h.Kind == HintAuto || h.Kind == kind
}

func (h Hint) String() string {
	if h.Kind == HintAuto || h.Kind == "" {
		return fmt.Sprintf("%q", h.Raw)
	}
	return fmt.Sprintf("%s=%q", h.Kind, h.Raw)
}
