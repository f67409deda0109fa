package entities

import (
	"encoding/json"
	"fmt"
)

// ToolInvocation represents a single tool call the decision-maker wants to perform
type ToolInvocation struct {
	ID        string          `json:"id,omitempty"`
	Tool      string          `json:"tool"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// ToolResult represents the outcome of a tool call. It is always returned,
// failures included, so the decision-maker can act on the message alone.
type ToolResult struct {
	OK      bool   `json:"ok"`
	Tool    string `json:"tool"`
	Message string `json:"message"`
}

// Success - builds a successful result
func Success(tool, format string, args ...interface{}) ToolResult {
	return ToolResult{OK: true, Tool: tool, Message: fmt.Sprintf(format, args...)}
}

// Failure - builds a failed result
func Failure(tool, format string, args ...interface{}) ToolResult {
	return ToolResult{OK: false, Tool: tool, Message: fmt.Sprintf(format, args...)}
}

// String renders the result the way it is handed back to the decision-maker.
func (r ToolResult) String() string {
	if r.OK {
		return "SUCCESS: " + r.Message
	}
	return "FAILURE: " + r.Message
}
