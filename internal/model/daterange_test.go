package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDateRange(t *testing.T) {
	t.Parallel()

	r, err := NewDateRange("2024-01-01", "2024-03-31")
	require.NoError(t, err)
	assert.Equal(t, "01/01/2024", r.SankhyaStart())
	assert.Equal(t, "31/03/2024", r.SankhyaEnd())

	_, err = NewDateRange("2024-01-01", "2024-01-01")
	assert.NoError(t, err, "single-day range is inclusive")

	_, err = NewDateRange("01/01/2024", "2024-03-31")
	assert.Error(t, err)

	_, err = NewDateRange("2024-01-01", "2024-02-30")
	assert.Error(t, err)

	_, err = NewDateRange("2024-03-31", "2024-01-01")
	assert.Error(t, err)
}

func TestDefaultDateRange(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, time.April, 10, 23, 30, 0, 0, time.Local)
	r := DefaultDateRange(now, 90)
	assert.Equal(t, "2024-01-11", r.Start)
	assert.Equal(t, "2024-04-10", r.End)

	assert.Equal(t, r, DefaultDateRange(now, 0))
}

func TestDateRange_Bounds(t *testing.T) {
	t.Parallel()

	s, e, err := DateRange{Start: "2024-01-01", End: "2024-01-31"}.Bounds()
	require.NoError(t, err)
	assert.Equal(t, time.January, s.Month())
	assert.Equal(t, 31, e.Day())

	_, _, err = DateRange{Start: "bad", End: "2024-01-31"}.Bounds()
	assert.Error(t, err)
	assert.Empty(t, DateRange{Start: "bad"}.SankhyaStart())
}
