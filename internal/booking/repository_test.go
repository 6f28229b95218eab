package booking

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const appointmentCols = 13

func appointmentRows(a *Appointment) *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "professional_id", "service_id", "client_id", "client_name", "client_phone",
		"start_at", "end_at", "duration_min", "status", "notes", "created_at", "updated_at",
	}).AddRow(a.ID, a.ProfessionalID, a.ServiceID, a.ClientID, a.ClientName, a.ClientPhone,
		a.StartAt, a.EndAt, a.DurationMin, a.Status, a.Notes, a.CreatedAt, a.UpdatedAt)
}

func testAppointment() *Appointment {
	start := time.Date(2026, 9, 14, 10, 0, 0, 0, time.UTC)
	return &Appointment{
		ID:             uuid.New(),
		ProfessionalID: uuid.New(),
		ServiceID:      uuid.New(),
		ClientName:     "Maria Silva",
		ClientPhone:    "11987654321",
		StartAt:        start,
		EndAt:          start.Add(45 * time.Minute),
		DurationMin:    45,
		Status:         StatusScheduled,
		CreatedAt:      start.Add(-time.Hour),
		UpdatedAt:      start.Add(-time.Hour),
	}
}

func TestRepositoryCreate_LocksAndInserts(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	a := testAppointment()

	mock.ExpectBegin()
	mock.ExpectExec("pg_advisory_xact_lock").
		WithArgs(a.ProfessionalID).
		WillReturnResult(pgxmock.NewResult("SELECT", 1))
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(a.ProfessionalID, a.StartAt, a.EndAt, nil).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery("INSERT INTO appointments").
		WithArgs(a.ID, a.ProfessionalID, a.ServiceID, a.ClientID, a.ClientName, a.ClientPhone,
			a.StartAt, a.EndAt, a.DurationMin, a.Status, a.Notes).
		WillReturnRows(appointmentRows(a))
	mock.ExpectCommit()

	repo := NewRepositoryWithDB(mock)
	created, err := repo.Create(context.Background(), a)
	require.NoError(t, err)
	assert.Equal(t, a.ID, created.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryCreate_ConflictDetectedInTx(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	a := testAppointment()

	mock.ExpectBegin()
	mock.ExpectExec("pg_advisory_xact_lock").
		WithArgs(a.ProfessionalID).
		WillReturnResult(pgxmock.NewResult("SELECT", 1))
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(a.ProfessionalID, a.StartAt, a.EndAt, nil).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectRollback()

	repo := NewRepositoryWithDB(mock)
	_, err = repo.Create(context.Background(), a)
	require.Error(t, err)
	assert.Equal(t, KindConflict, KindOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryCreate_ExclusionConstraintMapsToConflict(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	a := testAppointment()

	mock.ExpectBegin()
	mock.ExpectExec("pg_advisory_xact_lock").
		WithArgs(a.ProfessionalID).
		WillReturnResult(pgxmock.NewResult("SELECT", 1))
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(a.ProfessionalID, a.StartAt, a.EndAt, nil).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
	// A concurrent writer on another connection can still hit the EXCLUDE
	// constraint; it must read as a conflict, not an internal error.
	mock.ExpectQuery("INSERT INTO appointments").
		WithArgs(a.ID, a.ProfessionalID, a.ServiceID, a.ClientID, a.ClientName, a.ClientPhone,
			a.StartAt, a.EndAt, a.DurationMin, a.Status, a.Notes).
		WillReturnError(&pgconn.PgError{Code: exclusionViolation})
	mock.ExpectRollback()

	repo := NewRepositoryWithDB(mock)
	_, err = repo.Create(context.Background(), a)
	require.Error(t, err)
	assert.Equal(t, KindConflict, KindOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryCreate_CheckFailureIsNotNoConflict(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	a := testAppointment()

	mock.ExpectBegin()
	mock.ExpectExec("pg_advisory_xact_lock").
		WithArgs(a.ProfessionalID).
		WillReturnResult(pgxmock.NewResult("SELECT", 1))
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(a.ProfessionalID, a.StartAt, a.EndAt, nil).
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	repo := NewRepositoryWithDB(mock)
	_, err = repo.Create(context.Background(), a)
	require.Error(t, err)
	assert.Equal(t, KindUnknown, KindOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryReschedule_ExcludesSelf(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	a := testAppointment()

	mock.ExpectBegin()
	mock.ExpectExec("pg_advisory_xact_lock").
		WithArgs(a.ProfessionalID).
		WillReturnResult(pgxmock.NewResult("SELECT", 1))
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(a.ProfessionalID, a.StartAt, a.EndAt, a.ID).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery("UPDATE appointments").
		WithArgs(a.ID, a.ProfessionalID, a.ServiceID, a.ClientName, a.ClientPhone,
			a.StartAt, a.EndAt, a.DurationMin, a.Notes).
		WillReturnRows(appointmentRows(a))
	mock.ExpectCommit()

	repo := NewRepositoryWithDB(mock)
	updated, err := repo.Reschedule(context.Background(), a)
	require.NoError(t, err)
	assert.Equal(t, a.ID, updated.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryGetByID_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := uuid.New()
	mock.ExpectQuery("SELECT (.+) FROM appointments WHERE id").
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows(make([]string, appointmentCols)))

	repo := NewRepositoryWithDB(mock)
	_, err = repo.GetByID(context.Background(), id)
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryUpdateStatus(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	a := testAppointment()
	a.Status = StatusCancelled

	mock.ExpectQuery("UPDATE appointments SET status").
		WithArgs(a.ID, StatusCancelled).
		WillReturnRows(appointmentRows(a))

	repo := NewRepositoryWithDB(mock)
	updated, err := repo.UpdateStatus(context.Background(), a.ID, StatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, updated.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}
