package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"signup_automation/domain/entities"
	"signup_automation/domain/interfaces"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"
)

const systemPrompt = "You are an autonomous agent that controls a web browser through tools. " +
	"Call one tool at a time and base every decision on the results you received. " +
	"Tool results begin with SUCCESS or FAILURE; on FAILURE choose another approach instead of repeating the same call. " +
	"When the task is finished or cannot progress, answer with a plain-text summary and no tool call."

// OpenAIOptions configure the chat-completions client
type OpenAIOptions struct {
	APIKey      string
	Model       string
	BaseURL     string
	Temperature float32
}

// OpenAIClient decides the next action with OpenAI tool calling
type OpenAIClient struct {
	client      *openai.Client
	model       string
	temperature float32
	logger      *logrus.Logger
}

func NewOpenAIClient(opts OpenAIOptions, logger *logrus.Logger) (*OpenAIClient, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY environment variable is not set")
	}
	if opts.Model == "" {
		opts.Model = openai.GPT4o
	}

	cfg := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = opts.BaseURL
	}

	return &OpenAIClient{
		client:      openai.NewClientWithConfig(cfg),
		model:       opts.Model,
		temperature: opts.Temperature,
		logger:      logger,
	}, nil
}

// Decide sends the task, the tool catalog and the whole history and maps the
// reply to a decision. A reply without a tool call ends the task.
func (c *OpenAIClient) Decide(ctx context.Context, state entities.TaskState) (entities.Decision, error) {
	req := openai.ChatCompletionRequest{
		Model:             c.model,
		Messages:          buildMessages(state),
		Tools:             buildTools(state.Tools),
		ToolChoice:        "auto",
		ParallelToolCalls: false,
		Temperature:       c.temperature,
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return entities.Decision{}, fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return entities.Decision{}, errors.New("no response from API")
	}

	msg := resp.Choices[0].Message
	c.logger.WithFields(logrus.Fields{
		"component":  "ai",
		"round":      state.Round,
		"tool_calls": len(msg.ToolCalls),
		"tokens":     resp.Usage.TotalTokens,
	}).Debug("model replied")

	if len(msg.ToolCalls) > 0 {
		// Tools run strictly one at a time; extra calls are dropped and the
		// model sees only the first one in the history.
		tc := msg.ToolCalls[0]
		return entities.Decision{
			Call: &entities.ToolInvocation{
				ID:        tc.ID,
				Tool:      tc.Function.Name,
				Arguments: json.RawMessage(tc.Function.Arguments),
			},
			Reasoning: msg.Content,
		}, nil
	}

	if call, ok := parseInlineToolCall(msg.Content, state.Round, state.Tools); ok {
		return entities.Decision{Call: call}, nil
	}

	return entities.Decision{Done: true, Summary: strings.TrimSpace(msg.Content)}, nil
}

func buildTools(specs []entities.ToolSpec) []openai.Tool {
	tools := make([]openai.Tool, 0, len(specs))
	for _, spec := range specs {
		tools = append(tools, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        spec.Name,
				Description: spec.Description,
				Parameters:  spec.JSONSchema(),
			},
		})
	}
	return tools
}

// buildMessages replays the history as assistant tool calls and tool replies
func buildMessages(state entities.TaskState) []openai.ChatCompletionMessage {
	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
		{Role: openai.ChatMessageRoleUser, Content: state.Task},
	}

	for _, step := range state.History {
		id := step.Call.ID
		if id == "" {
			id = fmt.Sprintf("call_%d", step.Round)
		}
		args := string(step.Call.Arguments)
		if strings.TrimSpace(args) == "" {
			args = "{}"
		}

		messages = append(messages,
			openai.ChatCompletionMessage{
				Role:    openai.ChatMessageRoleAssistant,
				Content: step.Reasoning,
				ToolCalls: []openai.ToolCall{{
					ID:   id,
					Type: openai.ToolTypeFunction,
					Function: openai.FunctionCall{
						Name:      step.Call.Tool,
						Arguments: args,
					},
				}},
			},
			openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				Content:    step.Result.String(),
				ToolCallID: id,
			},
		)
	}
	return messages
}

// parseInlineToolCall accepts {"name": ..., "arguments": {...}} written as text,
// which some OpenAI-compatible servers return instead of a tool call. Only
// names from the catalog count, so a summary quoting JSON still ends the task.
func parseInlineToolCall(content string, round int, catalog []entities.ToolSpec) (*entities.ToolInvocation, bool) {
	cleaned := extractJSONFromMarkdown(content)
	if cleaned == "" {
		return nil, false
	}

	var inline struct {
		Name      string          `json:"name"`
		Arguments json.RawMessage `json:"arguments"`
	}
	if err := json.Unmarshal([]byte(cleaned), &inline); err != nil || !inCatalog(catalog, inline.Name) {
		return nil, false
	}
	return &entities.ToolInvocation{
		ID:        fmt.Sprintf("inline_%d", round),
		Tool:      inline.Name,
		Arguments: inline.Arguments,
	}, true
}

func inCatalog(catalog []entities.ToolSpec, name string) bool {
	for _, spec := range catalog {
		if name != "" && spec.Name == name {
			return true
		}
	}
	return false
}

// extractJSONFromMarkdown - strips a ``` fence, or cuts the outermost {...}
func extractJSONFromMarkdown(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```") {
		lines := strings.Split(text, "\n")
		var jsonLines []string
		inCodeBlock := false

		for _, line := range lines {
			trimmed := strings.TrimSpace(line)
			if strings.HasPrefix(trimmed, "```") {
				if !inCodeBlock {
					inCodeBlock = true
					continue
				}
				break
			}
			if inCodeBlock {
				jsonLines = append(jsonLines, line)
			}
		}

		if len(jsonLines) > 0 {
			return strings.Join(jsonLines, "\n")
		}
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end <= start {
		return ""
	}
	return text[start : end+1]
}

var _ interfaces.DecisionMaker = (*OpenAIClient)(nil)
