package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	goopenai "github.com/sashabaranov/go-openai"

	"github.com/joseph-ayodele/bills-assistant/internal/llm"
)

var errNoChoices = errors.New("no choices in openai response")

// Summarize explains the bill, or answers question about it.
func (c *Client) Summarize(ctx context.Context, text, question string) (string, int, error) {
	resp, err := c.complete(ctx, "summary", goopenai.ChatCompletionRequest{
		Messages: toMessages(llm.BuildSummaryMessages(text, question)),
	})
	if err != nil {
		return "", 0, err
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), resp.Usage.TotalTokens, nil
}

// Chat continues a conversation whose system prompts are already in messages.
func (c *Client) Chat(ctx context.Context, messages []llm.Message) (string, int, error) {
	resp, err := c.complete(ctx, "chat", goopenai.ChatCompletionRequest{
		Messages: toMessages(messages),
	})
	if err != nil {
		return "", 0, err
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), resp.Usage.TotalTokens, nil
}

// ExtractItems forces a call of the extract_bill_items function and decodes
// its arguments.
func (c *Client) ExtractItems(ctx context.Context, text string) ([]llm.BillItem, error) {
	resp, err := c.complete(ctx, "items", goopenai.ChatCompletionRequest{
		Messages: toMessages(llm.BuildExtractionMessages(text)),
		Tools: []goopenai.Tool{{
			Type: goopenai.ToolTypeFunction,
			Function: &goopenai.FunctionDefinition{
				Name:        llm.ItemsFunctionName,
				Description: llm.ItemsFunctionDescription,
				Parameters:  llm.BuildBillItemsSchema(),
			},
		}},
		ToolChoice: goopenai.ToolChoice{
			Type:     goopenai.ToolTypeFunction,
			Function: goopenai.ToolFunction{Name: llm.ItemsFunctionName},
		},
	})
	if err != nil {
		return nil, err
	}

	args, err := functionArguments(resp.Choices[0].Message)
	if err != nil {
		c.logger.Error("llm.items.no_function_call", "error", err)
		return nil, err
	}
	items, err := llm.ParseItems([]byte(args), c.logger)
	if err != nil {
		c.logger.Error("llm.items.invalid", "error", err, "arguments", truncate(args, 2048))
		return nil, err
	}
	c.logger.Info("llm.items.ok", "items", len(items))
	return items, nil
}

// complete fills in model and temperature, sends the request and logs the
// outcome. A response without choices is an error.
func (c *Client) complete(ctx context.Context, op string, req goopenai.ChatCompletionRequest) (goopenai.ChatCompletionResponse, error) {
	rid := uuid.New().String()
	start := time.Now()
	req.Model = c.cfg.Model
	req.Temperature = c.cfg.Temperature

	c.logger.Info("llm."+op+".start",
		"req_id", rid,
		"model", req.Model,
		"temp", req.Temperature,
		"messages", len(req.Messages),
	)

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		c.logger.Error("llm."+op+".error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return resp, fmt.Errorf("openai %s: %w", op, err)
	}
	if len(resp.Choices) == 0 {
		c.logger.Error("llm."+op+".no_choices",
			"req_id", rid,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return resp, errNoChoices
	}

	c.logger.Info("llm."+op+".ok",
		"req_id", rid,
		"total_tokens", resp.Usage.TotalTokens,
		"finish_reason", resp.Choices[0].FinishReason,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return resp, nil
}

func functionArguments(msg goopenai.ChatCompletionMessage) (string, error) {
	for _, tc := range msg.ToolCalls {
		if tc.Function.Name == llm.ItemsFunctionName {
			return tc.Function.Arguments, nil
		}
	}
	if msg.FunctionCall != nil && msg.FunctionCall.Name == llm.ItemsFunctionName {
		return msg.FunctionCall.Arguments, nil
	}
	return "", fmt.Errorf("model did not call %s", llm.ItemsFunctionName)
}

func toMessages(in []llm.Message) []goopenai.ChatCompletionMessage {
	out := make([]goopenai.ChatCompletionMessage, 0, len(in))
	for _, m := range in {
		out = append(out, goopenai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}
	return out
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
