package chat

import (
	"context"

	"github.com/sells-group/crm-assistant/pkg/anthropic"
	"github.com/sells-group/crm-assistant/pkg/gemini"
)

// Gemini adapts a Gemini client to Model.
type Gemini struct {
	client *gemini.Client
}

// NewGemini wraps client.
func NewGemini(client *gemini.Client) *Gemini {
	return &Gemini{client: client}
}

func (g *Gemini) Name() string { return "gemini" }

func (g *Gemini) Stream(ctx context.Context, turns []Turn, cfg GenerationConfig) (TextStream, error) {
	conv := make([]gemini.Turn, len(turns))
	for i, t := range turns {
		role := gemini.RoleUser
		if t.Role == RoleModel {
			role = gemini.RoleModel
		}
		conv[i] = gemini.Turn{Role: role, Text: t.Text}
	}
	return g.client.Stream(ctx, conv, gemini.Options{
		Temperature:     float32(cfg.Temperature),
		MaxOutputTokens: int32(cfg.MaxOutputTokens), //nolint:gosec
	}), nil
}

// Anthropic adapts an Anthropic client to Model.
type Anthropic struct {
	client anthropic.Client
	model  string
}

// NewAnthropic wraps client for model.
func NewAnthropic(client anthropic.Client, model string) *Anthropic {
	return &Anthropic{client: client, model: model}
}

func (a *Anthropic) Name() string { return "anthropic" }

func (a *Anthropic) Stream(ctx context.Context, turns []Turn, cfg GenerationConfig) (TextStream, error) {
	msgs := make([]anthropic.Message, len(turns))
	for i, t := range turns {
		role := anthropic.RoleUser
		if t.Role == RoleModel {
			role = anthropic.RoleAssistant
		}
		msgs[i] = anthropic.Message{Role: role, Content: t.Text}
	}
	temp := cfg.Temperature
	stream := a.client.StreamMessage(ctx, anthropic.MessageRequest{
		Model:       a.model,
		MaxTokens:   int64(cfg.MaxOutputTokens),
		Messages:    msgs,
		Temperature: &temp,
	})
	return &usageLogging{MessageStream: stream, model: a.model}, nil
}

// usageLogging reports token usage once the stream is closed.
type usageLogging struct {
	anthropic.MessageStream
	model string
}

func (u *usageLogging) Close() error {
	u.Usage().LogCost(u.model)
	return u.MessageStream.Close()
}
