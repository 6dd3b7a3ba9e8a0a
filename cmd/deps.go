package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/crm-assistant/internal/analysis"
	"github.com/sells-group/crm-assistant/internal/cache"
	"github.com/sells-group/crm-assistant/internal/chat"
	"github.com/sells-group/crm-assistant/internal/config"
	"github.com/sells-group/crm-assistant/pkg/anthropic"
	"github.com/sells-group/crm-assistant/pkg/gemini"
	"github.com/sells-group/crm-assistant/pkg/sankhya"
)

func secs(n int) time.Duration { return time.Duration(n) * time.Second }

// newSankhyaClient wires login, token cache and query client.
func newSankhyaClient(c config.SankhyaConfig) *sankhya.Client {
	login := sankhya.NewLogin(c.BaseURL, sankhya.Credentials{
		Token:    c.Token,
		AppKey:   c.AppKey,
		Username: c.Username,
		Password: c.Password,
	}, sankhya.WithLoginTimeout(secs(c.LoginTimeoutSecs)))

	return sankhya.NewClient(c.BaseURL, sankhya.NewTokenCache(login),
		sankhya.WithQueryTimeout(secs(c.QueryTimeoutSecs)),
		sankhya.WithRateLimit(c.RateLimit),
	)
}

// newAggregator opens the configured cache and builds the aggregator over
// it. The caller owns the returned cache.
func newAggregator(ctx context.Context, c *config.Config) (*analysis.Aggregator, *cache.ResultCache, error) {
	rc, err := cache.Open(ctx, c.Cache)
	if err != nil {
		return nil, nil, err
	}
	agg := analysis.New(newSankhyaClient(c.Sankhya), rc, analysis.WithTTL(cache.TTL(c.Cache)))
	return agg, rc, nil
}

// newModel builds the configured LLM provider.
func newModel(ctx context.Context, c *config.Config) (chat.Model, error) {
	switch c.LLM.Provider {
	case "gemini":
		client, err := gemini.NewClient(ctx, c.Gemini.Key, c.Gemini.Model)
		if err != nil {
			return nil, err
		}
		return chat.NewGemini(client), nil
	case "anthropic":
		return chat.NewAnthropic(anthropic.NewClient(c.Anthropic.Key), c.Anthropic.Model), nil
	default:
		return nil, eris.Errorf("unknown llm provider %q", c.LLM.Provider)
	}
}

// newRelay wraps m with the configured sampling and reply timeout.
func newRelay(m chat.Model, c config.LLMConfig) *chat.Relay {
	return chat.NewRelay(m, generationConfig(c), chat.WithReplyTimeout(secs(c.TimeoutSecs)))
}

func generationConfig(c config.LLMConfig) chat.GenerationConfig {
	gen := chat.GenerationConfig{Temperature: c.Temperature, MaxOutputTokens: c.MaxOutputTokens}
	if gen.MaxOutputTokens <= 0 {
		gen.MaxOutputTokens = chat.DefaultGenerationConfig().MaxOutputTokens
	}
	return gen
}
