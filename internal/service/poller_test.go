package service

import (
	"context"
	"testing"
	"time"

	"donation-ledger/internal/core/domain"
	"donation-ledger/internal/core/ports"
	"donation-ledger/internal/core/ports/mocks"
	"donation-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func TestPoller_RunOnceFeedsEventsThroughEngine(t *testing.T) {
	ctrl := gomock.NewController(t)
	source := mocks.NewMockPollSource(ctrl)
	reconciler := mocks.NewMockReconciliationService(ctrl)
	quarRepo := mocks.NewMockQuarantineRepository(ctrl)

	events := []domain.SettlementEvent{
		{Source: domain.SourcePoll, CorrelationKey: "req_1", Outcome: domain.OutcomeSuccess},
		{Source: domain.SourcePoll, CorrelationKey: "req_2", Outcome: domain.OutcomeFailure},
	}
	source.EXPECT().ListRecent(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, since time.Time) ([]domain.SettlementEvent, error) {
			assert.WithinDuration(t, time.Now().Add(-30*time.Minute), since, 5*time.Second)
			return events, nil
		})
	reconciler.EXPECT().Reconcile(gomock.Any(), events[0]).Return(&ports.ReconcileResult{Disposition: ports.DispositionApplied}, nil)
	reconciler.EXPECT().Reconcile(gomock.Any(), events[1]).Return(&ports.ReconcileResult{Disposition: ports.DispositionDuplicate}, nil)
	quarRepo.EXPECT().ListUnresolved(gomock.Any(), quarantineBatchSize).Return(nil, nil)

	p := NewPoller([]ports.PollSource{source}, reconciler, quarRepo, 5*time.Minute, 30*time.Minute, zerolog.Nop())
	p.RunOnce(context.Background())
}

func TestPoller_UnavailableProviderSkipsCycle(t *testing.T) {
	ctrl := gomock.NewController(t)
	source := mocks.NewMockPollSource(ctrl)
	reconciler := mocks.NewMockReconciliationService(ctrl)
	quarRepo := mocks.NewMockQuarantineRepository(ctrl)

	source.EXPECT().ListRecent(gomock.Any(), gomock.Any()).
		Return(nil, apperror.ErrProviderUnavailable("till", assert.AnError))
	quarRepo.EXPECT().ListUnresolved(gomock.Any(), quarantineBatchSize).Return(nil, nil)

	p := NewPoller([]ports.PollSource{source}, reconciler, quarRepo, 5*time.Minute, 30*time.Minute, zerolog.Nop())
	p.RunOnce(context.Background())
}

func TestPoller_DrainResolvesQuarantinedEvent(t *testing.T) {
	ctrl := gomock.NewController(t)
	reconciler := mocks.NewMockReconciliationService(ctrl)
	quarRepo := mocks.NewMockQuarantineRepository(ctrl)

	parked := domain.QuarantinedEvent{
		ID:             uuid.New(),
		CorrelationKey: "req_1",
		Provider:       domain.ProviderMpesa,
		Source:         domain.SourceWebhook,
		Outcome:        domain.OutcomeSuccess,
	}
	quarRepo.EXPECT().ListUnresolved(gomock.Any(), quarantineBatchSize).Return([]domain.QuarantinedEvent{parked}, nil)
	reconciler.EXPECT().Reconcile(gomock.Any(), parked.Event()).
		Return(&ports.ReconcileResult{Disposition: ports.DispositionApplied, CorrelationKey: "req_1"}, nil)
	quarRepo.EXPECT().MarkResolved(gomock.Any(), parked.ID).Return(nil)

	p := NewPoller(nil, reconciler, quarRepo, 5*time.Minute, 30*time.Minute, zerolog.Nop())
	p.RunOnce(context.Background())
}

func TestPoller_DrainStillUnmatchedBumpsAttempts(t *testing.T) {
	ctrl := gomock.NewController(t)
	reconciler := mocks.NewMockReconciliationService(ctrl)
	quarRepo := mocks.NewMockQuarantineRepository(ctrl)

	parked := domain.QuarantinedEvent{
		ID:             uuid.New(),
		CorrelationKey: "req_orphan",
		Outcome:        domain.OutcomeSuccess,
		Attempts:       1,
	}
	quarRepo.EXPECT().ListUnresolved(gomock.Any(), quarantineBatchSize).Return([]domain.QuarantinedEvent{parked}, nil)
	reconciler.EXPECT().Reconcile(gomock.Any(), parked.Event()).
		Return(&ports.ReconcileResult{Disposition: ports.DispositionQuarantined, CorrelationKey: "req_orphan"}, nil)
	quarRepo.EXPECT().IncrementAttempts(gomock.Any(), parked.ID).Return(nil)

	p := NewPoller(nil, reconciler, quarRepo, 5*time.Minute, 30*time.Minute, zerolog.Nop())
	p.RunOnce(context.Background())
}

func TestPoller_DrainSkipsExhaustedEvents(t *testing.T) {
	ctrl := gomock.NewController(t)
	reconciler := mocks.NewMockReconciliationService(ctrl)
	quarRepo := mocks.NewMockQuarantineRepository(ctrl)

	parked := domain.QuarantinedEvent{
		ID:             uuid.New(),
		CorrelationKey: "req_dead",
		Outcome:        domain.OutcomeSuccess,
		Attempts:       maxQuarantineAttempts,
	}
	quarRepo.EXPECT().ListUnresolved(gomock.Any(), quarantineBatchSize).Return([]domain.QuarantinedEvent{parked}, nil)

	p := NewPoller(nil, reconciler, quarRepo, 5*time.Minute, 30*time.Minute, zerolog.Nop())
	p.RunOnce(context.Background())
}

func TestPoller_RunStopsOnContextCancel(t *testing.T) {
	ctrl := gomock.NewController(t)
	reconciler := mocks.NewMockReconciliationService(ctrl)
	quarRepo := mocks.NewMockQuarantineRepository(ctrl)

	p := NewPoller(nil, reconciler, quarRepo, time.Hour, time.Hour, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("poller did not stop after context cancellation")
	}
}
