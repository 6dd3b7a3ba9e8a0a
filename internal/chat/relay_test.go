package chat

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedStream struct {
	parts  []string
	err    error
	idx    int
	closed atomic.Bool
}

func (s *scriptedStream) Next() bool {
	if s.idx >= len(s.parts) {
		return false
	}
	s.idx++
	return true
}

func (s *scriptedStream) Text() string { return s.parts[s.idx-1] }
func (s *scriptedStream) Err() error   { return s.err }
func (s *scriptedStream) Close() error {
	s.closed.Store(true)
	return nil
}

type fakeModel struct {
	stream  *scriptedStream
	openErr error
	turns   []Turn
	cfg     GenerationConfig
}

func (f *fakeModel) Name() string { return "fake" }

func (f *fakeModel) Stream(_ context.Context, turns []Turn, cfg GenerationConfig) (TextStream, error) {
	f.turns = turns
	f.cfg = cfg
	if f.openErr != nil {
		return nil, f.openErr
	}
	return f.stream, nil
}

func drain(t *testing.T, ch <-chan Chunk) []Chunk {
	t.Helper()
	var out []Chunk
	timeout := time.After(2 * time.Second)
	for {
		select {
		case c, ok := <-ch:
			if !ok {
				return out
			}
			out = append(out, c)
		case <-timeout:
			t.Fatal("relay did not close its channel")
			return nil
		}
	}
}

func TestStreamReply_ForwardsFragmentsInOrder(t *testing.T) {
	stream := &scriptedStream{parts: []string{"Olá", ", ", "Maria"}}
	model := &fakeModel{stream: stream}
	relay := NewRelay(model, DefaultGenerationConfig())

	chunks := drain(t, relay.StreamReply(context.Background(), nil, "pergunta", ""))

	require.Len(t, chunks, 3)
	for i, want := range []string{"Olá", ", ", "Maria"} {
		assert.Equal(t, want, chunks[i].Text)
		assert.NoError(t, chunks[i].Err)
	}
	assert.True(t, stream.closed.Load())
	require.Len(t, model.turns, 3)
	assert.Equal(t, "pergunta", model.turns[2].Text)
	assert.Equal(t, GenerationConfig{Temperature: 0.7, MaxOutputTokens: 1500}, model.cfg)
	assert.Equal(t, "fake", relay.Provider())
}

func TestStreamReply_MidStreamErrorIsLastChunk(t *testing.T) {
	cause := errors.New("upstream reset")
	relay := NewRelay(&fakeModel{stream: &scriptedStream{parts: []string{"parcial"}, err: cause}}, DefaultGenerationConfig())

	chunks := drain(t, relay.StreamReply(context.Background(), nil, "q", ""))

	require.Len(t, chunks, 2)
	assert.Equal(t, "parcial", chunks[0].Text)
	require.Error(t, chunks[1].Err)
	assert.ErrorIs(t, chunks[1].Err, ErrStream)
	assert.ErrorIs(t, chunks[1].Err, cause)
}

func TestStreamReply_OpenFailure(t *testing.T) {
	relay := NewRelay(&fakeModel{openErr: errors.New("bad key")}, DefaultGenerationConfig())

	chunks := drain(t, relay.StreamReply(context.Background(), nil, "q", ""))

	require.Len(t, chunks, 1)
	assert.ErrorIs(t, chunks[0].Err, ErrStream)
}

func TestStreamReply_StopsOnCancel(t *testing.T) {
	stream := &scriptedStream{parts: []string{"a", "b", "c"}}
	relay := NewRelay(&fakeModel{stream: stream}, DefaultGenerationConfig())
	ctx, cancel := context.WithCancel(context.Background())

	ch := relay.StreamReply(ctx, nil, "q", "")
	first := <-ch
	assert.Equal(t, "a", first.Text)
	cancel()

	// Fragments already in flight may still arrive; the channel must close.
	rest := drain(t, ch)
	assert.LessOrEqual(t, len(rest), 2)
	for _, c := range rest {
		assert.NoError(t, c.Err)
	}
	assert.Eventually(t, func() bool { return stream.closed.Load() }, time.Second, 10*time.Millisecond)
}

// stalledStream never yields; it ends only when its request context does.
type stalledStream struct {
	ctx    context.Context
	closed atomic.Bool
}

func (s *stalledStream) Next() bool {
	<-s.ctx.Done()
	return false
}

func (s *stalledStream) Text() string { return "" }
func (s *stalledStream) Err() error   { return s.ctx.Err() }
func (s *stalledStream) Close() error {
	s.closed.Store(true)
	return nil
}

type stalledModel struct {
	stream *stalledStream
}

func (m *stalledModel) Name() string { return "stalled" }

func (m *stalledModel) Stream(ctx context.Context, _ []Turn, _ GenerationConfig) (TextStream, error) {
	m.stream = &stalledStream{ctx: ctx}
	return m.stream, nil
}

func TestStreamReply_TimeoutEndsWithError(t *testing.T) {
	model := &stalledModel{}
	relay := NewRelay(model, DefaultGenerationConfig(), WithReplyTimeout(30*time.Millisecond))

	chunks := drain(t, relay.StreamReply(context.Background(), nil, "q", ""))

	require.Len(t, chunks, 1)
	assert.ErrorIs(t, chunks[0].Err, ErrStream)
	assert.ErrorIs(t, chunks[0].Err, context.DeadlineExceeded)
	assert.True(t, model.stream.closed.Load())
}

func TestStreamReply_CallerCancelBeforeTimeoutIsSilent(t *testing.T) {
	relay := NewRelay(&stalledModel{}, DefaultGenerationConfig(), WithReplyTimeout(time.Minute))
	ctx, cancel := context.WithCancel(context.Background())

	ch := relay.StreamReply(ctx, nil, "q", "")
	time.AfterFunc(20*time.Millisecond, cancel)

	assert.Empty(t, drain(t, ch))
}

func TestStreamReply_ContextReplacesFirstMessage(t *testing.T) {
	model := &fakeModel{stream: &scriptedStream{parts: []string{"ok"}}}
	relay := NewRelay(model, DefaultGenerationConfig())

	drain(t, relay.StreamReply(context.Background(), nil, "Quais leads?", "CONTEXTO\nQuais leads?"))

	require.Len(t, model.turns, 3)
	assert.Equal(t, "CONTEXTO\nQuais leads?", model.turns[2].Text)

	history := []Message{{Role: "user", Content: "oi"}, {Role: "assistant", Content: "olá"}}
	drain(t, relay.StreamReply(context.Background(), history, "e agora?", "CONTEXTO"))
	require.Len(t, model.turns, 5)
	assert.Equal(t, "e agora?", model.turns[4].Text)
}
