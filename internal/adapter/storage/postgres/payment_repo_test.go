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

func newTestPayment(senderID uuid.UUID) *domain.Payment {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.Payment{
		ID:             uuid.New(),
		Provider:       domain.ProviderMpesa,
		Rail:           domain.RailPush,
		CorrelationKey: domain.BuildCorrelationKey(uuid.New(), now),
		ProviderRef:    "ws_CO_123456789",
		Amount:         500,
		Currency:       "KES",
		Status:         domain.PaymentStatusPending,
		SenderID:       senderID,
		CreatedAt:      now,
	}
}

func paymentColumnNames() []string {
	return []string{"id", "provider", "rail", "correlation_key", "provider_ref", "amount", "currency",
		"result_code", "result_desc", "status", "sender_id", "created_at", "settled_at"}
}

func paymentRow(p *domain.Payment) *pgxmock.Rows {
	return pgxmock.NewRows(paymentColumnNames()).AddRow(
		p.ID, p.Provider, p.Rail, p.CorrelationKey, p.ProviderRef,
		p.Amount, p.Currency, p.ResultCode, p.ResultDesc, p.Status,
		p.SenderID, p.CreatedAt, p.SettledAt,
	)
}

func TestPaymentRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPaymentRepo(mock)
	p := newTestPayment(uuid.New())

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO payments").
		WithArgs(p.ID, p.Provider, p.Rail, p.CorrelationKey, p.ProviderRef,
			p.Amount, p.Currency, p.ResultCode, p.ResultDesc, p.Status,
			p.SenderID, p.CreatedAt, p.SettledAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Create(context.Background(), tx, p)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepo_GetByCorrelationKey(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPaymentRepo(mock)
	p := newTestPayment(uuid.New())

	mock.ExpectQuery("SELECT .+ FROM payments WHERE correlation_key").
		WithArgs(p.CorrelationKey).
		WillReturnRows(paymentRow(p))

	result, err := repo.GetByCorrelationKey(context.Background(), p.CorrelationKey)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, p.ID, result.ID)
	assert.Equal(t, domain.PaymentStatusPending, result.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepo_GetByCorrelationKey_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPaymentRepo(mock)

	mock.ExpectQuery("SELECT .+ FROM payments WHERE correlation_key").
		WithArgs("missing_key").
		WillReturnRows(pgxmock.NewRows(paymentColumnNames()))

	result, err := repo.GetByCorrelationKey(context.Background(), "missing_key")
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepo_Transition_Applied(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPaymentRepo(mock)
	key := "req_1700000000000"

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE payments").
		WithArgs(domain.PaymentStatusCompleted, "0", "Success", key, domain.PaymentStatusPending).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	outcome, err := repo.Transition(context.Background(), tx, key,
		domain.PaymentStatusPending, domain.PaymentStatusCompleted, "0", "Success")
	require.NoError(t, err)
	assert.Equal(t, domain.TransitionApplied, outcome)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepo_Transition_NoOpOnRedelivery(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPaymentRepo(mock)
	key := "req_1700000000000"

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE payments").
		WithArgs(domain.PaymentStatusCompleted, "0", "Success", key, domain.PaymentStatusPending).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectQuery("SELECT status FROM payments").
		WithArgs(key).
		WillReturnRows(pgxmock.NewRows([]string{"status"}).AddRow(domain.PaymentStatusCompleted))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	outcome, err := repo.Transition(context.Background(), tx, key,
		domain.PaymentStatusPending, domain.PaymentStatusCompleted, "0", "Success")
	require.NoError(t, err)
	assert.Equal(t, domain.TransitionNoOp, outcome)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepo_Transition_ConflictOnOppositeTerminal(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPaymentRepo(mock)
	key := "req_1700000000000"

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE payments").
		WithArgs(domain.PaymentStatusFailed, "1032", "Request cancelled by user", key, domain.PaymentStatusPending).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectQuery("SELECT status FROM payments").
		WithArgs(key).
		WillReturnRows(pgxmock.NewRows([]string{"status"}).AddRow(domain.PaymentStatusCompleted))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	outcome, err := repo.Transition(context.Background(), tx, key,
		domain.PaymentStatusPending, domain.PaymentStatusFailed, "1032", "Request cancelled by user")
	require.NoError(t, err)
	assert.Equal(t, domain.TransitionConflict, outcome)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepo_Transition_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPaymentRepo(mock)
	key := "unknown_key"

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE payments").
		WithArgs(domain.PaymentStatusCompleted, "0", "Success", key, domain.PaymentStatusPending).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectQuery("SELECT status FROM payments").
		WithArgs(key).
		WillReturnRows(pgxmock.NewRows([]string{"status"}))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	outcome, err := repo.Transition(context.Background(), tx, key,
		domain.PaymentStatusPending, domain.PaymentStatusCompleted, "0", "Success")
	require.NoError(t, err)
	assert.Equal(t, domain.TransitionNotFound, outcome)
	assert.NoError(t, mock.ExpectationsWereMet())
}
