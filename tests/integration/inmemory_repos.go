package integration

import (
	"context"
	"fmt"
	"sync"
	"time"

	"donation-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
)

// memStore is a shared in-memory backing store for all repos. A single mutex
// stands in for per-statement atomicity; the CAS transitions under it give
// the concurrency tests the same winner-takes-all semantics as the SQL
// conditional UPDATE.
type memStore struct {
	mu            sync.Mutex
	payments      map[string]*domain.Payment  // by correlation key
	donations     map[string]*domain.Donation // by invoice
	wallets       map[uuid.UUID]*domain.Wallet
	ledger        []domain.LedgerEntry
	awards        map[uuid.UUID]*domain.PointsAward // by payment ID
	stats         map[uuid.UUID]*domain.UserStats
	notifications []domain.Notification
	quarantine    map[string]*domain.QuarantinedEvent // by correlation key
	conflicts     []domain.ReconciliationConflict
}

func newMemStore() *memStore {
	return &memStore{
		payments:   make(map[string]*domain.Payment),
		donations:  make(map[string]*domain.Donation),
		wallets:    make(map[uuid.UUID]*domain.Wallet),
		awards:     make(map[uuid.UUID]*domain.PointsAward),
		stats:      make(map[uuid.UUID]*domain.UserStats),
		quarantine: make(map[string]*domain.QuarantinedEvent),
	}
}

// memTransactor satisfies ports.DBTransactor with a throwaway pgxmock
// transaction per scope. The in-memory repos ignore the tx handle, so only
// the Begin/Commit/Rollback choreography needs to hold up.
type memTransactor struct{}

func (memTransactor) Begin(ctx context.Context) (pgx.Tx, error) {
	pool, err := pgxmock.NewPool()
	if err != nil {
		return nil, err
	}
	pool.MatchExpectationsInOrder(false)
	pool.ExpectBegin()
	pool.ExpectCommit()
	pool.ExpectRollback()
	return pool.Begin(ctx)
}

// --- PaymentRepository ---

type memPaymentRepo struct{ s *memStore }

func (r *memPaymentRepo) Create(_ context.Context, _ pgx.Tx, payment *domain.Payment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *payment
	r.s.payments[payment.CorrelationKey] = &cp
	return nil
}

func (r *memPaymentRepo) GetByCorrelationKey(_ context.Context, key string) (*domain.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.payments[key]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *memPaymentRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.payments {
		if p.ID == id {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memPaymentRepo) SetProviderRef(_ context.Context, correlationKey, providerRef string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if p, ok := r.s.payments[correlationKey]; ok {
		p.ProviderRef = providerRef
	}
	return nil
}

func (r *memPaymentRepo) Transition(_ context.Context, _ pgx.Tx, correlationKey string, from, to domain.PaymentStatus, resultCode, resultDesc string) (domain.TransitionOutcome, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.payments[correlationKey]
	if !ok {
		return domain.TransitionNotFound, nil
	}
	if p.Status != from {
		if p.Status == to {
			return domain.TransitionNoOp, nil
		}
		return domain.TransitionConflict, nil
	}
	p.Status = to
	p.ResultCode = &resultCode
	p.ResultDesc = &resultDesc
	now := time.Now()
	p.SettledAt = &now
	return domain.TransitionApplied, nil
}

// --- DonationRepository ---

type memDonationRepo struct{ s *memStore }

func (r *memDonationRepo) Create(_ context.Context, _ pgx.Tx, donation *domain.Donation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *donation
	r.s.donations[donation.Invoice] = &cp
	return nil
}

func (r *memDonationRepo) GetByInvoice(_ context.Context, invoice string) (*domain.Donation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d, ok := r.s.donations[invoice]
	if !ok {
		return nil, nil
	}
	cp := *d
	return &cp, nil
}

func (r *memDonationRepo) Transition(_ context.Context, _ pgx.Tx, invoice string, from, to domain.DonationStatus) (domain.TransitionOutcome, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d, ok := r.s.donations[invoice]
	if !ok {
		return domain.TransitionNotFound, nil
	}
	if d.Status != from {
		if d.Status == to {
			return domain.TransitionNoOp, nil
		}
		return domain.TransitionConflict, nil
	}
	d.Status = to
	return domain.TransitionApplied, nil
}

// --- WalletRepository ---

type memWalletRepo struct{ s *memStore }

func (r *memWalletRepo) Get(_ context.Context, userID uuid.UUID) (*domain.Wallet, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	w, ok := r.s.wallets[userID]
	if !ok {
		return nil, nil
	}
	cp := *w
	return &cp, nil
}

func (r *memWalletRepo) Credit(_ context.Context, _ pgx.Tx, userID uuid.UUID, delta int64) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	w, ok := r.s.wallets[userID]
	if !ok {
		w = &domain.Wallet{UserID: userID, CreatedAt: time.Now()}
		r.s.wallets[userID] = w
	}
	w.Balance += delta
	w.UpdatedAt = time.Now()
	return w.Balance, nil
}

// --- LedgerRepository ---

type memLedgerRepo struct{ s *memStore }

func (r *memLedgerRepo) Record(_ context.Context, _ pgx.Tx, entry *domain.LedgerEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	// Mirrors the primary key on id: rows arrive with their identity set.
	if entry.ID == uuid.Nil {
		return fmt.Errorf("ledger entry has nil id")
	}
	for _, e := range r.s.ledger {
		if e.ID == entry.ID {
			return fmt.Errorf("duplicate ledger entry id %s", entry.ID)
		}
	}
	cp := *entry
	r.s.ledger = append(r.s.ledger, cp)
	return nil
}

func (r *memLedgerRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]domain.LedgerEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.LedgerEntry
	for _, e := range r.s.ledger {
		if e.ReceiverID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *memLedgerRepo) SumByUser(_ context.Context, userID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var sum int64
	for _, e := range r.s.ledger {
		if e.ReceiverID == userID {
			sum += e.Amount
		}
		if e.GiverID == userID {
			sum -= e.Amount
		}
	}
	return sum, nil
}

// --- PointsRepository ---

type memPointsRepo struct{ s *memStore }

func (r *memPointsRepo) Award(_ context.Context, _ pgx.Tx, award *domain.PointsAward) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, exists := r.s.awards[award.PaymentID]; exists {
		return false, nil
	}
	cp := *award
	r.s.awards[award.PaymentID] = &cp
	return true, nil
}

func (r *memPointsRepo) TotalForUser(_ context.Context, _ pgx.Tx, userID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var total int64
	for _, a := range r.s.awards {
		if a.UserID == userID {
			total += a.Points
		}
	}
	return total, nil
}

// --- StatsRepository ---

type memStatsRepo struct{ s *memStore }

func (r *memStatsRepo) Get(_ context.Context, userID uuid.UUID) (*domain.UserStats, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	st, ok := r.s.stats[userID]
	if !ok {
		return nil, nil
	}
	cp := *st
	return &cp, nil
}

func (r *memStatsRepo) ensure(userID uuid.UUID) *domain.UserStats {
	st, ok := r.s.stats[userID]
	if !ok {
		st = &domain.UserStats{UserID: userID, Level: 1}
		r.s.stats[userID] = st
	}
	return st
}

func (r *memStatsRepo) IncrementCounters(_ context.Context, _ pgx.Tx, giverID, receiverID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.ensure(giverID).DonationsGiven++
	r.ensure(receiverID).DonationsReceived++
	return nil
}

func (r *memStatsRepo) SetPointsAndLevel(_ context.Context, _ pgx.Tx, userID uuid.UUID, totalPoints int64, level int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	st := r.ensure(userID)
	st.TotalPoints = totalPoints
	if level > st.Level {
		st.Level = level
	}
	st.UpdatedAt = time.Now()
	return nil
}

// --- NotificationRepository ---

type memNotificationRepo struct{ s *memStore }

func (r *memNotificationRepo) Create(_ context.Context, notification *domain.Notification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if notification.ID == uuid.Nil {
		return fmt.Errorf("notification has nil id")
	}
	cp := *notification
	r.s.notifications = append(r.s.notifications, cp)
	return nil
}

func (r *memNotificationRepo) ListByRecipient(_ context.Context, recipient uuid.UUID, limit int) ([]domain.Notification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Notification
	for _, n := range r.s.notifications {
		if n.Recipient == recipient {
			out = append(out, n)
			if limit > 0 && len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

// --- QuarantineRepository ---

type memQuarantineRepo struct{ s *memStore }

func (r *memQuarantineRepo) Add(_ context.Context, event *domain.QuarantinedEvent) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	// Mirrors ON CONFLICT DO NOTHING: one parked row per correlation key.
	if _, exists := r.s.quarantine[event.CorrelationKey]; exists {
		return nil
	}
	cp := *event
	r.s.quarantine[event.CorrelationKey] = &cp
	return nil
}

func (r *memQuarantineRepo) ListUnresolved(_ context.Context, limit int) ([]domain.QuarantinedEvent, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.QuarantinedEvent
	for _, q := range r.s.quarantine {
		if q.ResolvedAt == nil {
			out = append(out, *q)
			if limit > 0 && len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

func (r *memQuarantineRepo) MarkResolved(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, q := range r.s.quarantine {
		if q.ID == id {
			now := time.Now()
			q.ResolvedAt = &now
		}
	}
	return nil
}

func (r *memQuarantineRepo) IncrementAttempts(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, q := range r.s.quarantine {
		if q.ID == id {
			q.Attempts++
		}
	}
	return nil
}

// --- ConflictRepository ---

type memConflictRepo struct{ s *memStore }

func (r *memConflictRepo) Record(_ context.Context, conflict *domain.ReconciliationConflict) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.conflicts = append(r.s.conflicts, *conflict)
	return nil
}

func (r *memConflictRepo) ListUnreviewed(_ context.Context, limit int) ([]domain.ReconciliationConflict, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.ReconciliationConflict
	for _, c := range r.s.conflicts {
		if !c.Reviewed {
			out = append(out, c)
			if limit > 0 && len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}
