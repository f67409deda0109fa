package ai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"signup_automation/domain/entities"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

var clickSpec = entities.ToolSpec{
	Name:        "click",
	Description: "Click an element",
	Params: []entities.ParamSpec{
		{Name: "selector", Type: entities.ParamString, Required: true},
	},
}

func TestNewOpenAIClientRequiresKey(t *testing.T) {
	_, err := NewOpenAIClient(OpenAIOptions{}, quietLogger())
	assert.ErrorContains(t, err, "OPENAI_API_KEY")
}

func TestBuildMessagesReplaysHistory(t *testing.T) {
	state := entities.TaskState{
		Task:  "sign up",
		Round: 3,
		History: []entities.Step{
			{
				Round:     1,
				Call:      entities.ToolInvocation{ID: "call_abc", Tool: "navigate", Arguments: json.RawMessage(`{"url":"https://demo.example.com/"}`)},
				Reasoning: "open the site",
				Result:    entities.Success("navigate", "navigated"),
			},
			{
				Round:  2,
				Call:   entities.ToolInvocation{Tool: "take_screenshot"},
				Result: entities.Failure("take_screenshot", "disk full"),
			},
		},
	}

	messages := buildMessages(state)
	require.Len(t, messages, 6)

	assert.Equal(t, openai.ChatMessageRoleSystem, messages[0].Role)
	assert.Equal(t, "sign up", messages[1].Content)

	assert.Equal(t, openai.ChatMessageRoleAssistant, messages[2].Role)
	assert.Equal(t, "open the site", messages[2].Content)
	require.Len(t, messages[2].ToolCalls, 1)
	assert.Equal(t, "call_abc", messages[2].ToolCalls[0].ID)
	assert.Equal(t, "navigate", messages[2].ToolCalls[0].Function.Name)

	assert.Equal(t, openai.ChatMessageRoleTool, messages[3].Role)
	assert.Equal(t, "call_abc", messages[3].ToolCallID)
	assert.Equal(t, "SUCCESS: navigated", messages[3].Content)

	assert.Equal(t, "call_2", messages[4].ToolCalls[0].ID)
	assert.Equal(t, "{}", messages[4].ToolCalls[0].Function.Arguments)
	assert.Equal(t, "call_2", messages[5].ToolCallID)
	assert.Equal(t, "FAILURE: disk full", messages[5].Content)
}

func TestBuildTools(t *testing.T) {
	tools := buildTools([]entities.ToolSpec{clickSpec})
	require.Len(t, tools, 1)
	assert.Equal(t, openai.ToolTypeFunction, tools[0].Type)
	assert.Equal(t, "click", tools[0].Function.Name)
	assert.Equal(t, clickSpec.JSONSchema(), tools[0].Function.Parameters)
}

func TestExtractJSONFromMarkdown(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "fenced", in: "```json\n{\"name\":\"click\"}\n```", want: `{"name":"click"}`},
		{name: "embedded", in: `I will click now: {"name":"click"} ok`, want: `{"name":"click"}`},
		{name: "plain text", in: "The account was created.", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractJSONFromMarkdown(tt.in))
		})
	}
}

func TestParseInlineToolCall(t *testing.T) {
	catalog := []entities.ToolSpec{clickSpec}

	call, ok := parseInlineToolCall("```json\n{\"name\":\"click\",\"arguments\":{\"selector\":\"Sign Up\"}}\n```", 4, catalog)
	require.True(t, ok)
	assert.Equal(t, "click", call.Tool)
	assert.Equal(t, "inline_4", call.ID)
	assert.JSONEq(t, `{"selector":"Sign Up"}`, string(call.Arguments))

	_, ok = parseInlineToolCall(`{"status":"done"}`, 4, catalog)
	assert.False(t, ok)

	_, ok = parseInlineToolCall(`Account created with {"name": "Jane Doe", "email": "jane@example.com"}`, 4, catalog)
	assert.False(t, ok)

	_, ok = parseInlineToolCall(`{"name":"click","arguments":{}}`, 4, nil)
	assert.False(t, ok)
}

func TestDecideSummaryQuotingJSONCompletes(t *testing.T) {
	var seen openai.ChatCompletionRequest
	summary := `Signed up. Submitted values: {"name": "Jane Doe", "email": "jane@example.com"}`
	srv := completionServer(t, map[string]interface{}{
		"role":    "assistant",
		"content": summary,
	}, &seen)

	decision, err := newTestClient(t, srv).Decide(context.Background(), entities.TaskState{
		Task:  "sign up",
		Tools: []entities.ToolSpec{clickSpec},
		Round: 7,
	})
	require.NoError(t, err)
	assert.True(t, decision.Done)
	assert.Nil(t, decision.Call)
	assert.Equal(t, summary, decision.Summary)
}

// completionServer answers every chat completion with the given message
func completionServer(t *testing.T, message map[string]interface{}, seen *openai.ChatCompletionRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(seen))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 1,
			"model":   "gpt-4o",
			"choices": []interface{}{map[string]interface{}{
				"index":         0,
				"message":       message,
				"finish_reason": "stop",
			}},
			"usage": map[string]interface{}{"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(t *testing.T, srv *httptest.Server) *OpenAIClient {
	t.Helper()
	c, err := NewOpenAIClient(OpenAIOptions{APIKey: "sk-test", Model: "gpt-4o", BaseURL: srv.URL + "/v1"}, quietLogger())
	require.NoError(t, err)
	return c
}

func TestDecideToolCall(t *testing.T) {
	var seen openai.ChatCompletionRequest
	srv := completionServer(t, map[string]interface{}{
		"role":    "assistant",
		"content": "",
		"tool_calls": []interface{}{
			map[string]interface{}{
				"id":   "call_1",
				"type": "function",
				"function": map[string]interface{}{
					"name":      "click",
					"arguments": `{"selector":"Sign Up","by":"text"}`,
				},
			},
			map[string]interface{}{
				"id":   "call_2",
				"type": "function",
				"function": map[string]interface{}{
					"name":      "take_screenshot",
					"arguments": `{}`,
				},
			},
		},
	}, &seen)

	decision, err := newTestClient(t, srv).Decide(context.Background(), entities.TaskState{
		Task:  "sign up",
		Tools: []entities.ToolSpec{clickSpec},
		Round: 1,
	})
	require.NoError(t, err)

	require.NotNil(t, decision.Call)
	assert.False(t, decision.Done)
	assert.Equal(t, "call_1", decision.Call.ID)
	assert.Equal(t, "click", decision.Call.Tool)
	assert.JSONEq(t, `{"selector":"Sign Up","by":"text"}`, string(decision.Call.Arguments))

	assert.Equal(t, "gpt-4o", seen.Model)
	require.Len(t, seen.Tools, 1)
	assert.Equal(t, "click", seen.Tools[0].Function.Name)
	require.Len(t, seen.Messages, 2)
}

func TestDecideCompletion(t *testing.T) {
	var seen openai.ChatCompletionRequest
	srv := completionServer(t, map[string]interface{}{
		"role":    "assistant",
		"content": "  The account was created and a confirmation is shown.  ",
	}, &seen)

	decision, err := newTestClient(t, srv).Decide(context.Background(), entities.TaskState{Task: "sign up", Round: 9})
	require.NoError(t, err)
	assert.True(t, decision.Done)
	assert.Nil(t, decision.Call)
	assert.Equal(t, "The account was created and a confirmation is shown.", decision.Summary)
}

func TestDecideAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"error":{"message":"bad key","type":"invalid_request_error"}}`)
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv).Decide(context.Background(), entities.TaskState{Task: "sign up"})
	assert.ErrorContains(t, err, "chat completion failed")
}
