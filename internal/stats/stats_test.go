package stats

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPeriodBounds(t *testing.T) {
	// Wednesday afternoon.
	now := time.Date(2026, 9, 16, 15, 30, 0, 0, time.UTC)

	from, to := PeriodDay.Bounds(now)
	assert.Equal(t, time.Date(2026, 9, 16, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2026, 9, 17, 0, 0, 0, 0, time.UTC), to)

	from, to = PeriodWeek.Bounds(now)
	// Weeks start on Sunday.
	assert.Equal(t, time.Date(2026, 9, 13, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2026, 9, 20, 0, 0, 0, 0, time.UTC), to)

	from, to = PeriodMonth.Bounds(now)
	assert.Equal(t, time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC), to)
}

func TestPeriodValid(t *testing.T) {
	assert.True(t, PeriodDay.Valid())
	assert.True(t, PeriodWeek.Valid())
	assert.True(t, PeriodMonth.Valid())
	assert.False(t, Period("year").Valid())
	assert.False(t, Period("").Valid())
}

func TestSummarize(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	professionalID := uuid.New()
	now := time.Date(2026, 9, 16, 15, 30, 0, 0, time.UTC)
	from, to := PeriodWeek.Bounds(now)
	todayFrom, todayTo := PeriodDay.Bounds(now)

	mock.ExpectQuery("FROM appointments").
		WithArgs(professionalID, from, to, now, todayFrom, todayTo).
		WillReturnRows(pgxmock.NewRows([]string{
			"total", "scheduled", "confirmed", "completed", "cancelled", "no_show",
			"revenue_cents", "today_total", "today_upcoming",
		}).AddRow(int64(10), int64(3), int64(2), int64(3), int64(1), int64(1),
			int64(15000), int64(4), int64(2)))

	repo := NewRepositoryWithDB(mock)
	summary, err := repo.Summarize(context.Background(), professionalID, PeriodWeek, now)
	require.NoError(t, err)

	assert.Equal(t, PeriodWeek, summary.Period)
	assert.Equal(t, from, summary.From)
	assert.Equal(t, to, summary.To)
	assert.Equal(t, int64(10), summary.Total)
	assert.Equal(t, int64(3), summary.Completed)
	assert.Equal(t, int64(15000), summary.RevenueCents)
	assert.Equal(t, int64(2), summary.TodayUpcoming)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSummarize_UnknownPeriodFallsBackToDay(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	professionalID := uuid.New()
	now := time.Date(2026, 9, 16, 15, 30, 0, 0, time.UTC)
	from, to := PeriodDay.Bounds(now)

	mock.ExpectQuery("FROM appointments").
		WithArgs(professionalID, from, to, now, from, to).
		WillReturnRows(pgxmock.NewRows([]string{
			"total", "scheduled", "confirmed", "completed", "cancelled", "no_show",
			"revenue_cents", "today_total", "today_upcoming",
		}).AddRow(int64(0), int64(0), int64(0), int64(0), int64(0), int64(0),
			int64(0), int64(0), int64(0)))

	repo := NewRepositoryWithDB(mock)
	summary, err := repo.Summarize(context.Background(), professionalID, Period("fortnight"), now)
	require.NoError(t, err)
	assert.Equal(t, PeriodDay, summary.Period)
	assert.NoError(t, mock.ExpectationsWereMet())
}
