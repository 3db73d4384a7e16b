// Package openai implements agentruntime.LLMClient against any
// OpenAI-compatible Chat Completions + Function Calling endpoint,
// following the teacher's internal/llm/openai.Client almost verbatim for
// the request/response conversion, generalized to the
// agentruntime.Message/ToolDefinition shapes.
package openai

import (
	"context"
	"fmt"
	"net/http"
	"time"

	openailib "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/rca-orchestrator/orchestrator/internal/agentruntime"
)

// Client implements agentruntime.LLMClient using the OpenAI-compatible
// protocol — works against any endpoint exposing the Chat Completions API
// (litellm, vLLM, Azure, Gemini's OpenAI-compat surface, …).
type Client struct {
	log    *zap.Logger
	client *openailib.Client
	config *Config
}

// NewClient creates a Client from an explicit Config.
func NewClient(log *zap.Logger, config *Config) (*Client, error) {
	if config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	clientConfig := openailib.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}
	clientConfig.HTTPClient = &http.Client{Timeout: time.Duration(config.HTTPTimeout) * time.Second}

	return &Client{
		log:    log,
		client: openailib.NewClientWithConfig(clientConfig),
		config: config,
	}, nil
}

// NewClientFromEnv builds a Client using LLM_* environment variables.
func NewClientFromEnv(log *zap.Logger) (*Client, error) {
	cfg, err := NewConfigFromEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}
	return NewClient(log, cfg)
}

// CallWithTools sends messages with tool definitions for Function Calling
// and returns the model's reply, always in non-streaming mode (tool-call
// loops need the complete tool_calls list per turn, not token deltas).
func (c *Client) CallWithTools(ctx context.Context, messages []agentruntime.Message, tools []agentruntime.ToolDefinition) (agentruntime.Message, error) {
	if len(messages) == 0 {
		return agentruntime.Message{}, fmt.Errorf("no messages to send")
	}

	openaiMsgs := make([]openailib.ChatCompletionMessage, len(messages))
	for i, msg := range messages {
		openaiMsgs[i] = openailib.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		}
		if msg.Role == agentruntime.RoleTool && msg.ToolCallID != "" {
			openaiMsgs[i].ToolCallID = msg.ToolCallID
			if msg.Name != "" {
				openaiMsgs[i].Name = msg.Name
			}
		}
		if msg.Role == agentruntime.RoleAssistant && len(msg.ToolCalls) > 0 {
			openaiTCs := make([]openailib.ToolCall, len(msg.ToolCalls))
			for j, tc := range msg.ToolCalls {
				openaiTCs[j] = openailib.ToolCall{
					ID:   tc.ID,
					Type: openailib.ToolTypeFunction,
					Function: openailib.FunctionCall{
						Name:      tc.Name,
						Arguments: string(tc.Arguments),
					},
				}
			}
			openaiMsgs[i].ToolCalls = openaiTCs
		}
	}

	openaiTools := make([]openailib.Tool, len(tools))
	for i, t := range tools {
		openaiTools[i] = openailib.Tool{
			Type: openailib.ToolTypeFunction,
			Function: &openailib.FunctionDefinition{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			},
		}
	}

	req := openailib.ChatCompletionRequest{
		Model:    c.config.Model,
		Messages: openaiMsgs,
		Tools:    openaiTools,
	}
	if c.config.Temperature != nil {
		req.Temperature = *c.config.Temperature
	}
	if c.config.MaxTokens > 0 {
		req.MaxTokens = c.config.MaxTokens
	}

	var resp openailib.ChatCompletionResponse
	var lastErr error
	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		resp, lastErr = c.client.CreateChatCompletion(ctx, req)
		if lastErr == nil {
			break
		}
		if attempt < c.config.MaxRetries {
			wait := time.Duration(attempt+1) * time.Second
			c.log.Warn("LLM call failed, retrying",
				zap.Int("attempt", attempt+1), zap.Int("max_retries", c.config.MaxRetries),
				zap.Duration("wait", wait), zap.Error(lastErr))
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return agentruntime.Message{}, ctx.Err()
			}
		}
	}
	if lastErr != nil {
		return agentruntime.Message{}, fmt.Errorf("LLM call failed after %d retries: %w", c.config.MaxRetries, lastErr)
	}
	if len(resp.Choices) == 0 {
		return agentruntime.Message{}, fmt.Errorf("no choices returned from LLM")
	}

	choice := resp.Choices[0].Message
	result := agentruntime.Message{
		Role:    agentruntime.RoleAssistant,
		Content: choice.Content,
	}
	if len(choice.ToolCalls) > 0 {
		result.ToolCalls = make([]agentruntime.ToolCall, len(choice.ToolCalls))
		for i, tc := range choice.ToolCalls {
			result.ToolCalls[i] = agentruntime.ToolCall{
				ID:        tc.ID,
				Name:      tc.Function.Name,
				Arguments: []byte(tc.Function.Arguments),
			}
		}
	}
	return result, nil
}

// GetName returns the provider name/model identifier.
func (c *Client) GetName() string {
	return fmt.Sprintf("openai-compatible (%s)", c.config.Model)
}
