package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/crm-assistant/internal/model"
)

type failingBackend struct {
	getErr error
	setErr error
	data   []byte
}

func (f *failingBackend) Get(context.Context, string) ([]byte, bool, error) {
	if f.getErr != nil {
		return nil, false, f.getErr
	}
	return f.data, f.data != nil, nil
}

func (f *failingBackend) Set(context.Context, string, []byte, time.Duration) error {
	return f.setErr
}

func (f *failingBackend) Close() error { return nil }

func sampleAnalysis() *model.Analysis {
	a := model.EmptyAnalysis(model.DateRange{Start: "2024-01-01", End: "2024-03-31"})
	a.Leads = []model.Lead{{ID: "1", Name: "Acme", Value: 1500, StageID: "10", FunnelID: "1"}}
	a.Orders = []model.Order{{ID: "99", CustomerName: "Globex", Total: 1500, Date: "15/02/2024"}}
	a.GeneratedAt = time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC)
	return a
}

func TestKey(t *testing.T) {
	assert.Equal(t, "analise:42:2024-01-01:2024-03-31",
		Key(42, model.DateRange{Start: "2024-01-01", End: "2024-03-31"}))
}

func TestResultCache_RoundTrip(t *testing.T) {
	c := New(NewMemory(), "memory")
	ctx := context.Background()
	want := sampleAnalysis()

	require.NoError(t, c.Set(ctx, "k", want, time.Minute))

	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestResultCache_Miss(t *testing.T) {
	c := New(NewMemory(), "memory")
	got, err := c.Get(context.Background(), "absent")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestResultCache_ReadFailureIsMiss(t *testing.T) {
	c := New(&failingBackend{getErr: errors.New("connection refused")}, "fake")
	got, err := c.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestResultCache_UndecodableIsMiss(t *testing.T) {
	c := New(&failingBackend{data: []byte("{not json")}, "fake")
	got, err := c.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestResultCache_WriteFailurePropagates(t *testing.T) {
	cause := errors.New("READONLY replica")
	c := New(&failingBackend{setErr: cause}, "fake")

	err := c.Set(context.Background(), "k", sampleAnalysis(), time.Minute)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCache))
	assert.True(t, errors.Is(err, cause))
}

func TestResultCache_NormalizesNullCollections(t *testing.T) {
	c := New(&failingBackend{data: []byte(`{"leads":null,"filtro":{"dataInicio":"2024-01-01","dataFim":"2024-01-31"}}`)}, "fake")
	got, err := c.Get(context.Background(), "k")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.NotNil(t, got.Leads)
	assert.NotNil(t, got.LeadProducts)
	assert.Equal(t, "2024-01-31", got.Range.End)
}
