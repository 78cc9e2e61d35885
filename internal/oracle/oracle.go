// Package oracle runs the language-model passes: English translation and
// short index summaries for stored lines, via the OpenAI chat-completions
// API with forced tool calls so the output shape is machine-checked.
package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
)

const translateSystemPrompt = "You are a classical philologist. Translate Greek technical prose accurately into clear English. " +
	"Preserve grammatical terminology and do not add commentary beyond the translation."

const translateUserPrompt = `Translate the following text from Aelius Herodianus (Περὶ καθολικῆς προσῳδίας) into English.

Rules:
- Output only the English translation (no preface, no notes).
- Keep any Greek words in Greek script when they are cited as examples.
- Preserve citations like (Il. 13, 1) verbatim.

Greek text:
%s
`

const summarySystemPrompt = "You are a classical philologist. Create a very short English label for an index."

const summaryUserPrompt = `Write a short index label (3–10 words) describing the topic of this passage.

Rules:
- Output only the label (no punctuation-heavy prose, no quotes, no extra lines).
- Prefer concrete keywords (e.g., headword, place/ethnic, accent rule, citation).
- Do not invent details not present in the text.

Greek text:
%s
`

// completer is the slice of the OpenAI client the oracle uses; tests
// substitute a canned implementation.
type completer interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Client calls the model for one kind of pass.
type Client struct {
	api    completer
	logger zerolog.Logger

	// Delay between consecutive requests, to stay polite with the API.
	Delay time.Duration
}

// NewClient builds a client from an API key.
func NewClient(apiKey string, logger zerolog.Logger) *Client {
	return &Client{
		api:    openai.NewClient(apiKey),
		logger: logger,
		Delay:  time.Second,
	}
}

// Translate translates one Greek passage, returning the English text and
// the tokens consumed.
func (c *Client) Translate(ctx context.Context, model, greekText string) (string, int, error) {
	return c.callTool(ctx, toolRequest{
		model:    model,
		system:   translateSystemPrompt,
		user:     fmt.Sprintf(translateUserPrompt, greekText),
		toolName: "translate_line",
		toolDesc: "Translate one Greek passage into English.",
		field:    "english_translation",
		creative: false,
	})
}

// Summarize produces a short index label for one Greek passage.
func (c *Client) Summarize(ctx context.Context, model, greekText string) (string, int, error) {
	return c.callTool(ctx, toolRequest{
		model:    model,
		system:   summarySystemPrompt,
		user:     fmt.Sprintf(summaryUserPrompt, greekText),
		toolName: "summarize_passage",
		toolDesc: "Produce a short index label for a passage.",
		field:    "summary",
		creative: true,
	})
}

type toolRequest struct {
	model    string
	system   string
	user     string
	toolName string
	toolDesc string
	field    string
	creative bool
}

func (c *Client) callTool(ctx context.Context, tr toolRequest) (string, int, error) {
	params := json.RawMessage(fmt.Sprintf(
		`{"type":"object","properties":{%q:{"type":"string"}},"required":[%q]}`,
		tr.field, tr.field))

	req := openai.ChatCompletionRequest{
		Model: tr.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: tr.system},
			{Role: openai.ChatMessageRoleUser, Content: tr.user},
		},
		Tools: []openai.Tool{{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        tr.toolName,
				Description: tr.toolDesc,
				Parameters:  params,
			},
		}},
		ToolChoice: openai.ToolChoice{
			Type:     openai.ToolTypeFunction,
			Function: openai.ToolFunction{Name: tr.toolName},
		},
	}
	if !tr.creative {
		req.Temperature = 0.2
	}

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", 0, fmt.Errorf("chat completion failed: %w", err)
	}

	value, err := toolArgument(resp, tr.field)
	if err != nil {
		return "", 0, err
	}
	return value, resp.Usage.TotalTokens, nil
}

// toolArgument pulls one string field out of the first tool call of a
// response.
func toolArgument(resp openai.ChatCompletionResponse, field string) (string, error) {
	if len(resp.Choices) == 0 || len(resp.Choices[0].Message.ToolCalls) == 0 {
		return "", fmt.Errorf("model returned no tool call")
	}

	var args map[string]string
	raw := resp.Choices[0].Message.ToolCalls[0].Function.Arguments
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return "", fmt.Errorf("failed to decode tool arguments: %w", err)
	}

	value := strings.TrimSpace(args[field])
	if value == "" {
		return "", fmt.Errorf("model returned an empty %s", field)
	}
	return value, nil
}

// pause sleeps for the configured delay, or returns early on cancellation.
func (c *Client) pause(ctx context.Context) error {
	if c.Delay <= 0 {
		return nil
	}
	select {
	case <-time.After(c.Delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
