package chat

import (
	"context"
	"errors"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/crm-assistant/internal/monitoring"
)

// ErrStream marks a failure while producing a reply.
var ErrStream = eris.New("chat: stream failed")

// GenerationConfig tunes provider sampling.
type GenerationConfig struct {
	Temperature     float64
	MaxOutputTokens int
}

// DefaultGenerationConfig matches the assistant's production settings.
func DefaultGenerationConfig() GenerationConfig {
	return GenerationConfig{Temperature: 0.7, MaxOutputTokens: 1500}
}

// TextStream yields reply fragments in order.
type TextStream interface {
	Next() bool
	Text() string
	Err() error
	Close() error
}

// Model is an LLM provider able to stream a reply to a conversation.
type Model interface {
	Name() string
	Stream(ctx context.Context, turns []Turn, cfg GenerationConfig) (TextStream, error)
}

// Chunk is one element of a streamed reply. A chunk with Err set is the last
// one sent.
type Chunk struct {
	Text string
	Err  error
}

type streamError struct {
	cause error
}

func (e *streamError) Error() string   { return ErrStream.Error() + ": " + e.cause.Error() }
func (e *streamError) Unwrap() []error { return []error{ErrStream, e.cause} }

// Relay streams replies from a Model.
type Relay struct {
	model   Model
	gen     GenerationConfig
	timeout time.Duration
}

// RelayOption configures a Relay.
type RelayOption func(*Relay)

// WithReplyTimeout caps how long one reply may take end to end.
func WithReplyTimeout(d time.Duration) RelayOption {
	return func(r *Relay) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// NewRelay returns a relay over model.
func NewRelay(model Model, gen GenerationConfig, opts ...RelayOption) *Relay {
	r := &Relay{model: model, gen: gen, timeout: 2 * time.Minute}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Provider returns the name of the underlying model.
func (r *Relay) Provider() string { return r.model.Name() }

// StreamReply sends history plus the current message to the model and
// returns the reply as a channel of fragments. On the first exchange a
// non-empty contextText replaces message as the user turn. The channel is closed
// when the reply ends, when the model fails or the reply times out (after
// one error chunk), or when ctx is cancelled.
func (r *Relay) StreamReply(ctx context.Context, history []Message, message, contextText string) <-chan Chunk {
	out := make(chan Chunk)
	turns := BuildTurns(history, message, contextText)

	go func() {
		defer close(out)
		log := zap.L().With(zap.String("provider", r.model.Name()), zap.Int("turns", len(turns)))

		sctx, cancel := withTimeout(ctx, r.timeout)
		defer cancel()

		stream, err := r.model.Stream(sctx, turns, r.gen)
		if err != nil {
			r.fail(ctx, sctx, out, log, err)
			return
		}
		defer stream.Close() //nolint:errcheck

		for stream.Next() {
			select {
			case out <- Chunk{Text: stream.Text()}:
			case <-sctx.Done():
				r.fail(ctx, sctx, out, log, sctx.Err())
				return
			}
		}
		if err := stream.Err(); err != nil {
			r.fail(ctx, sctx, out, log, err)
			return
		}
		if sctx.Err() != nil {
			r.fail(ctx, sctx, out, log, sctx.Err())
			return
		}
		monitoring.ObserveStream(r.model.Name(), "ok")
	}()

	return out
}

// fail reports err as the last chunk unless the caller's ctx is gone. A
// reply deadline counts as a failure even when the provider only reports
// a cancellation.
func (r *Relay) fail(ctx, sctx context.Context, out chan<- Chunk, log *zap.Logger, err error) {
	if ctx.Err() != nil {
		log.Debug("chat: consumer went away")
		monitoring.ObserveStream(r.model.Name(), "canceled")
		return
	}
	if errors.Is(sctx.Err(), context.DeadlineExceeded) {
		err = eris.Wrap(context.DeadlineExceeded, "chat: reply timed out")
	} else if errors.Is(err, context.Canceled) {
		monitoring.ObserveStream(r.model.Name(), "canceled")
		return
	}
	log.Error("chat: stream failed", zap.Error(err))
	monitoring.ObserveStream(r.model.Name(), "error")
	select {
	case out <- Chunk{Err: &streamError{cause: err}}:
	case <-ctx.Done():
	}
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
