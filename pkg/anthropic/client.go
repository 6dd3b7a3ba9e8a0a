// Package anthropic streams chat completions from the Anthropic Messages API.
package anthropic

import (
	"context"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/ssestream"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Roles accepted by the API for conversation turns.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Client defines the Anthropic API operations used by the chat relay.
type Client interface {
	StreamMessage(ctx context.Context, req MessageRequest) MessageStream
}

// MessageStream yields text deltas of a streamed reply.
type MessageStream interface {
	Next() bool
	Text() string
	Usage() TokenUsage
	Err() error
	Close() error
}

// MessageRequest is our own request type for StreamMessage.
type MessageRequest struct {
	Model       string
	MaxTokens   int64
	Messages    []Message
	Temperature *float64
}

// Message represents a single conversational message.
type Message struct {
	Role    string // "user" or "assistant"
	Content string
}

// TokenUsage tracks token consumption.
type TokenUsage struct {
	InputTokens              int64
	OutputTokens             int64
	CacheCreationInputTokens int64
	CacheReadInputTokens     int64
}

// modelPricing holds per-million-token pricing for known models.
var modelPricing = map[string][2]float64{
	// model → {input $/MTok, output $/MTok}
	"claude-haiku-4-5-20251001":  {0.80, 4.00},
	"claude-sonnet-4-5-20250929": {3.00, 15.00},
	"claude-opus-4-6":            {15.00, 75.00},
}

// EstimateCost computes an estimated cost in USD from a TokenUsage and model ID.
// Returns 0 for unknown models.
func (u TokenUsage) EstimateCost(model string) float64 {
	pricing, ok := modelPricing[model]
	if !ok {
		return 0
	}
	inCost := (float64(u.InputTokens) / 1e6) * pricing[0]
	outCost := (float64(u.OutputTokens) / 1e6) * pricing[1]
	cacheWriteCost := (float64(u.CacheCreationInputTokens) / 1e6) * pricing[0] * 1.25
	cacheReadCost := (float64(u.CacheReadInputTokens) / 1e6) * pricing[0] * 0.1
	return inCost + outCost + cacheWriteCost + cacheReadCost
}

// LogCost logs token usage and estimated cost with structured zap fields.
func (u TokenUsage) LogCost(model string) {
	zap.L().Info("chat usage",
		zap.String("model", model),
		zap.Int64("input_tokens", u.InputTokens),
		zap.Int64("output_tokens", u.OutputTokens),
		zap.Int64("cache_write_tokens", u.CacheCreationInputTokens),
		zap.Int64("cache_read_tokens", u.CacheReadInputTokens),
		zap.Float64("estimated_cost_usd", u.EstimateCost(model)),
	)
}

// sdkClient implements Client using the official anthropic-sdk-go.
type sdkClient struct {
	client sdk.Client
}

// NewClient creates a new Anthropic client backed by the SDK.
func NewClient(apiKey string, opts ...option.RequestOption) Client {
	return &sdkClient{
		client: sdk.NewClient(append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)...),
	}
}

func (c *sdkClient) StreamMessage(ctx context.Context, req MessageRequest) MessageStream {
	params := sdk.MessageNewParams{
		Model:     sdk.Model(req.Model),
		MaxTokens: req.MaxTokens,
		Messages:  toSDKMessages(req.Messages),
	}
	if req.Temperature != nil {
		params.Temperature = sdk.Float(*req.Temperature)
	}

	return &sdkMessageStream{stream: c.client.Messages.NewStreaming(ctx, params)}
}

// sdkMessageStream wraps the SDK's SSE stream and keeps only text deltas.
type sdkMessageStream struct {
	stream *ssestream.Stream[sdk.MessageStreamEventUnion]
	text   string
	usage  TokenUsage
}

func (s *sdkMessageStream) Next() bool {
	for s.stream.Next() {
		switch ev := s.stream.Current().AsAny().(type) {
		case sdk.MessageStartEvent:
			s.usage.InputTokens = ev.Message.Usage.InputTokens
			s.usage.CacheCreationInputTokens = ev.Message.Usage.CacheCreationInputTokens
			s.usage.CacheReadInputTokens = ev.Message.Usage.CacheReadInputTokens
			s.usage.OutputTokens = ev.Message.Usage.OutputTokens
		case sdk.MessageDeltaEvent:
			s.usage.OutputTokens = ev.Usage.OutputTokens
		case sdk.ContentBlockDeltaEvent:
			if delta, ok := ev.Delta.AsAny().(sdk.TextDelta); ok && delta.Text != "" {
				s.text = delta.Text
				return true
			}
		}
	}
	return false
}

func (s *sdkMessageStream) Text() string { return s.text }

func (s *sdkMessageStream) Usage() TokenUsage { return s.usage }

func (s *sdkMessageStream) Err() error {
	if err := s.stream.Err(); err != nil {
		return eris.Wrap(err, "anthropic: stream message")
	}
	return nil
}

func (s *sdkMessageStream) Close() error {
	return s.stream.Close()
}

func toSDKMessages(msgs []Message) []sdk.MessageParam {
	out := make([]sdk.MessageParam, len(msgs))
	for i, m := range msgs {
		block := sdk.NewTextBlock(m.Content)
		switch m.Role {
		case RoleAssistant:
			out[i] = sdk.NewAssistantMessage(block)
		default:
			out[i] = sdk.NewUserMessage(block)
		}
	}
	return out
}
