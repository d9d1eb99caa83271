package postgres

import (
	"context"
	"testing"
	"time"

	"donation-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerRepo_Record(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewLedgerRepo(mock)
	e := &domain.LedgerEntry{
		ID:             uuid.New(),
		GiverID:        uuid.New(),
		ReceiverID:     uuid.New(),
		Amount:         500,
		CorrelationKey: "req_1700000000000",
		CreatedAt:      time.Now().UTC().Truncate(time.Microsecond),
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO ledger_entries").
		WithArgs(e.ID, e.GiverID, e.ReceiverID, e.Amount, e.CorrelationKey, e.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Record(context.Background(), tx, e)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerRepo_SumByUser(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewLedgerRepo(mock)
	userID := uuid.New()

	mock.ExpectQuery("SELECT COALESCE.+ FROM ledger_entries WHERE receiver_id").
		WithArgs(userID).
		WillReturnRows(pgxmock.NewRows([]string{"coalesce"}).AddRow(int64(1250)))

	sum, err := repo.SumByUser(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, int64(1250), sum)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPointsRepo_Award_FirstTime(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPointsRepo(mock)
	a := &domain.PointsAward{
		ID:        uuid.New(),
		UserID:    uuid.New(),
		PaymentID: uuid.New(),
		Points:    10,
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO points_awards").
		WithArgs(a.ID, a.UserID, a.PaymentID, a.Points, a.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	awarded, err := repo.Award(context.Background(), tx, a)
	require.NoError(t, err)
	assert.True(t, awarded)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPointsRepo_Award_AlreadyAwarded(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPointsRepo(mock)
	a := &domain.PointsAward{
		ID:        uuid.New(),
		UserID:    uuid.New(),
		PaymentID: uuid.New(),
		Points:    10,
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO points_awards").
		WithArgs(a.ID, a.UserID, a.PaymentID, a.Points, a.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	awarded, err := repo.Award(context.Background(), tx, a)
	require.NoError(t, err)
	assert.False(t, awarded)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPointsRepo_TotalForUser(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPointsRepo(mock)
	userID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT COALESCE.+ FROM points_awards WHERE user_id").
		WithArgs(userID).
		WillReturnRows(pgxmock.NewRows([]string{"coalesce"}).AddRow(int64(120)))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	total, err := repo.TotalForUser(context.Background(), tx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(120), total)
	assert.NoError(t, mock.ExpectationsWereMet())
}
