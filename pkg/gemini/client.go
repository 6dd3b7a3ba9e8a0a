// Package gemini streams chat completions from the Google Gemini API.
package gemini

import (
	"context"
	"iter"

	"github.com/rotisserie/eris"
	"google.golang.org/genai"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

// Roles accepted by the API for conversation turns.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// Turn is one conversation message.
type Turn struct {
	Role string
	Text string
}

// Options tunes generation.
type Options struct {
	Temperature     float32
	MaxOutputTokens int32
}

// Streamer is the subset of *genai.Models used here.
type Streamer interface {
	GenerateContentStream(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) iter.Seq2[*genai.GenerateContentResponse, error]
}

// Client wraps the genai SDK for a single model.
type Client struct {
	models Streamer
	model  string
}

// NewClient creates a Gemini API client for model.
func NewClient(ctx context.Context, apiKey, model string) (*Client, error) {
	if apiKey == "" {
		return nil, eris.New("gemini: api key is required")
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, eris.Wrap(err, "gemini: create client")
	}
	return New(c.Models, model), nil
}

// New builds a client over an existing models service.
func New(models Streamer, model string) *Client {
	if model == "" {
		model = DefaultModel
	}
	return &Client{models: models, model: model}
}

// Model returns the model name requests are sent to.
func (c *Client) Model() string { return c.model }

// Stream starts a streaming generation over turns. The request is sent on the
// first call to Next.
func (c *Client) Stream(ctx context.Context, turns []Turn, opts Options) *Stream {
	contents := make([]*genai.Content, 0, len(turns))
	for _, t := range turns {
		role := genai.RoleUser
		if t.Role == RoleModel {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(t.Text, genai.Role(role)))
	}

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(opts.Temperature),
	}
	if opts.MaxOutputTokens > 0 {
		config.MaxOutputTokens = opts.MaxOutputTokens
	}

	next, stop := iter.Pull2(c.models.GenerateContentStream(ctx, c.model, contents, config))
	return &Stream{next: next, stop: stop}
}

// Stream yields text fragments as they arrive.
type Stream struct {
	next func() (*genai.GenerateContentResponse, error, bool)
	stop func()
	text string
	err  error
	done bool
}

// Next advances to the next non-empty fragment.
func (s *Stream) Next() bool {
	if s.done {
		return false
	}
	for {
		resp, err, ok := s.next()
		if !ok {
			s.done = true
			return false
		}
		if err != nil {
			s.err = eris.Wrap(err, "gemini: stream")
			s.done = true
			return false
		}
		if resp == nil {
			continue
		}
		if text := resp.Text(); text != "" {
			s.text = text
			return true
		}
	}
}

// Text returns the current fragment.
func (s *Stream) Text() string { return s.text }

// Err returns the error that ended the stream, if any.
func (s *Stream) Err() error { return s.err }

// Close releases the underlying iterator.
func (s *Stream) Close() error {
	s.done = true
	s.stop()
	return nil
}
