package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONSchema(t *testing.T) {
	spec := ToolSpec{
		Name: "click",
		Params: []ParamSpec{
			{Name: "selector", Type: ParamString, Description: "target", Required: true},
			{Name: "by", Type: ParamString, Nullable: true, Enum: []string{"css", "text"}},
			{Name: "timeout", Type: ParamNumber},
		},
	}

	schema := spec.JSONSchema()
	assert.Equal(t, "object", schema["type"])
	assert.Equal(t, []string{"selector"}, schema["required"])

	props, ok := schema["properties"].(map[string]interface{})
	require.True(t, ok)
	require.Len(t, props, 3)

	selector := props["selector"].(map[string]interface{})
	assert.Equal(t, "string", selector["type"])
	assert.Equal(t, "target", selector["description"])

	by := props["by"].(map[string]interface{})
	assert.Equal(t, []string{"string", "null"}, by["type"])
	assert.Equal(t, []interface{}{"css", "text", nil}, by["enum"])

	timeout := props["timeout"].(map[string]interface{})
	assert.Equal(t, "number", timeout["type"])
	assert.NotContains(t, timeout, "enum")
}

func TestJSONSchemaWithoutParams(t *testing.T) {
	schema := ToolSpec{Name: "take_screenshot"}.JSONSchema()
	assert.Empty(t, schema["properties"])
	assert.Equal(t, []string{}, schema["required"])
}

func TestToolResultString(t *testing.T) {
	assert.Equal(t, "SUCCESS: clicked 3", Success("click", "clicked %d", 3).String())
	assert.Equal(t, "FAILURE: no such element", Failure("click", "no such element").String())
}
