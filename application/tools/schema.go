package tools

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"

	"signup_automation/domain/entities"
)

// Args holds validated tool arguments
type Args map[string]interface{}

// String returns a string argument or "" when absent
func (a Args) String(name string) string {
	s, _ := a[name].(string)
	return s
}

// Number returns a numeric argument and whether it was supplied
func (a Args) Number(name string) (float64, bool) {
	f, ok := a[name].(float64)
	return f, ok
}

// ValidateArguments - checks raw JSON against the tool's parameter specs.
// Only shape is checked: presence, JSON type, enum membership and null.
// Unknown keys are dropped.
func ValidateArguments(spec entities.ToolSpec, raw json.RawMessage) (Args, error) {
	decoded := make(map[string]interface{})
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null")) {
		if err := json.Unmarshal(trimmed, &decoded); err != nil {
			return nil, fmt.Errorf("%w: arguments must be a JSON object: %v", ErrInvalidArguments, err)
		}
	}

	args := make(Args, len(spec.Params))
	for _, p := range spec.Params {
		v, present := decoded[p.Name]
		if !present || v == nil {
			if p.Required && !(present && p.Nullable) {
				return nil, fmt.Errorf("%w: %q is required", ErrInvalidArguments, p.Name)
			}
			continue
		}

		if err := checkType(p, v); err != nil {
			return nil, err
		}
		args[p.Name] = v
	}
	return args, nil
}

func checkType(p entities.ParamSpec, v interface{}) error {
	switch p.Type {
	case entities.ParamString:
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("%w: %q must be a string", ErrInvalidArguments, p.Name)
		}
		if len(p.Enum) > 0 && !contains(p.Enum, s) {
			return fmt.Errorf("%w: %q must be one of %v", ErrInvalidArguments, p.Name, p.Enum)
		}
	case entities.ParamNumber:
		if _, ok := v.(float64); !ok {
			return fmt.Errorf("%w: %q must be a number", ErrInvalidArguments, p.Name)
		}
	case entities.ParamInteger:
		f, ok := v.(float64)
		if !ok || f != math.Trunc(f) {
			return fmt.Errorf("%w: %q must be an integer", ErrInvalidArguments, p.Name)
		}
	case entities.ParamBoolean:
		if _, ok := v.(bool); !ok {
			return fmt.Errorf("%w: %q must be a boolean", ErrInvalidArguments, p.Name)
		}
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
