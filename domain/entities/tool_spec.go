package entities

// ParamType is the JSON type of a tool parameter
type ParamType string

const (
	ParamString  ParamType = "string"
	ParamNumber  ParamType = "number"
	ParamInteger ParamType = "integer"
	ParamBoolean ParamType = "boolean"
)

// ParamSpec describes one tool parameter
type ParamSpec struct {
	Name        string
	Type        ParamType
	Description string
	Required    bool
	Nullable    bool
	Enum        []string
}

// ToolSpec is the contract a tool publishes to the decision-maker
type ToolSpec struct {
	Name        string
	Description string
	Params      []ParamSpec
}

// JSONSchema - renders the parameters as a JSON Schema object
func (s ToolSpec) JSONSchema() map[string]interface{} {
	properties := make(map[string]interface{}, len(s.Params))
	required := make([]string, 0)

	for _, p := range s.Params {
		prop := map[string]interface{}{
			"description": p.Description,
		}
		if p.Nullable {
			prop["type"] = []string{string(p.Type), "null"}
		} else {
			prop["type"] = string(p.Type)
		}
		if len(p.Enum) > 0 {
			enum := make([]interface{}, 0, len(p.Enum)+1)
			for _, e := range p.Enum {
				enum = append(enum, e)
			}
			if p.Nullable {
				enum = append(enum, nil)
			}
			prop["enum"] = enum
		}
		properties[p.Name] = prop
		if p.Required {
			required = append(required, p.Name)
		}
	}

	return map[string]interface{}{
		"type":       "object",
		"properties": properties,
		"required":   required,
	}
}
