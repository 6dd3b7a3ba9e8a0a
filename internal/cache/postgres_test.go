package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newMockPostgres creates a Postgres backend over pgxmock with a frozen clock.
func newMockPostgres(t *testing.T) (*Postgres, pgxmock.PgxPoolIface, time.Time) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	now := time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC)
	p := NewPostgresPool(mock)
	p.now = func() time.Time { return now }
	return p, mock, now
}

func TestPostgres_Migrate(t *testing.T) {
	p, mock, _ := newMockPostgres(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS analysis_cache`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, p.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_Get_Hit(t *testing.T) {
	p, mock, now := newMockPostgres(t)

	mock.ExpectQuery(`SELECT payload FROM analysis_cache WHERE key = \$1 AND expires_at > \$2`).
		WithArgs("analise:1:2024-01-01:2024-01-31", now).
		WillReturnRows(pgxmock.NewRows([]string{"payload"}).AddRow([]byte(`{"leads":[]}`)))

	data, ok, err := p.Get(context.Background(), "analise:1:2024-01-01:2024-01-31")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `{"leads":[]}`, string(data))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_Get_NotFound(t *testing.T) {
	p, mock, now := newMockPostgres(t)

	mock.ExpectQuery(`SELECT payload FROM analysis_cache`).
		WithArgs("missing", now).
		WillReturnError(pgx.ErrNoRows)

	data, ok, err := p.Get(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, data)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_Get_Error(t *testing.T) {
	p, mock, now := newMockPostgres(t)

	mock.ExpectQuery(`SELECT payload FROM analysis_cache`).
		WithArgs("k", now).
		WillReturnError(errors.New("conn lost"))

	_, _, err := p.Get(context.Background(), "k")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "postgres: get cached analysis")
}

func TestPostgres_Set_Upserts(t *testing.T) {
	p, mock, now := newMockPostgres(t)
	payload := []byte(`{"leads":[]}`)

	mock.ExpectExec(`INSERT INTO analysis_cache .* ON CONFLICT \(key\) DO UPDATE`).
		WithArgs("k", payload, now, now.Add(30*time.Minute)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, p.Set(context.Background(), "k", payload, 30*time.Minute))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_Set_ErrorThroughResultCache(t *testing.T) {
	p, mock, _ := newMockPostgres(t)

	mock.ExpectExec(`INSERT INTO analysis_cache`).
		WithArgs("k", pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(errors.New("disk full"))

	err := New(p, "postgres").Set(context.Background(), "k", sampleAnalysis(), time.Minute)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCache))
	assert.Contains(t, err.Error(), "disk full")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_DeleteExpired(t *testing.T) {
	p, mock, now := newMockPostgres(t)

	mock.ExpectExec(`DELETE FROM analysis_cache WHERE expires_at <= \$1`).
		WithArgs(now).
		WillReturnResult(pgxmock.NewResult("DELETE", 3))

	n, err := p.DeleteExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
