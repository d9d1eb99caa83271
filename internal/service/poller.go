package service

import (
	"context"
	"errors"
	"time"

	"donation-ledger/internal/core/ports"
	"donation-ledger/pkg/apperror"

	"github.com/rs/zerolog"
)

// quarantineBatchSize bounds how many parked events one cycle drains.
const quarantineBatchSize = 100

// maxQuarantineAttempts bounds re-reconciliation of a parked event before it
// is left for operator review.
const maxQuarantineAttempts = 10

// Poller is the settlement backstop: on a fixed interval it asks every
// provider for its recent transactions and re-feeds quarantined events, so a
// lost webhook only delays a settlement instead of losing it. Safe to run
// alongside live webhooks; the engine's CAS makes re-application a no-op.
type Poller struct {
	sources    []ports.PollSource
	reconciler ports.ReconciliationService
	quarRepo   ports.QuarantineRepository
	interval   time.Duration
	window     time.Duration
	log        zerolog.Logger
}

// NewPoller creates the polling fallback scheduler.
func NewPoller(
	sources []ports.PollSource,
	reconciler ports.ReconciliationService,
	quarRepo ports.QuarantineRepository,
	interval time.Duration,
	window time.Duration,
	log zerolog.Logger,
) *Poller {
	return &Poller{
		sources:    sources,
		reconciler: reconciler,
		quarRepo:   quarRepo,
		interval:   interval,
		window:     window,
		log:        log,
	}
}

// Run blocks until ctx is cancelled, executing one cycle per interval.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.log.Info().Dur("interval", p.interval).Dur("window", p.window).Msg("poller started")
	for {
		select {
		case <-ctx.Done():
			p.log.Info().Msg("poller stopped")
			return
		case <-ticker.C:
			p.RunOnce(ctx)
		}
	}
}

// RunOnce executes a single poll cycle: provider windows first, then the
// quarantine drain.
func (p *Poller) RunOnce(ctx context.Context) {
	since := time.Now().Add(-p.window)

	for _, src := range p.sources {
		p.pollSource(ctx, src, since)
	}
	p.drainQuarantine(ctx)
}

// pollSource fetches one provider's window and feeds every event through the
// engine. An unavailable provider skips the cycle; the next tick retries.
func (p *Poller) pollSource(ctx context.Context, src ports.PollSource, since time.Time) {
	events, err := src.ListRecent(ctx, since)
	if err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) && appErr.Code == "PRV_001" {
			p.log.Warn().Err(err).Msg("provider unavailable, skipping poll cycle")
			return
		}
		p.log.Error().Err(err).Msg("poll fetch failed")
		return
	}

	for _, event := range events {
		if _, err := p.reconciler.Reconcile(ctx, event); err != nil {
			p.log.Error().Err(err).
				Str("correlation_key", event.CorrelationKey).
				Msg("poll reconcile failed")
		}
	}
}

// drainQuarantine re-feeds parked events whose pending pair may have been
// committed since delivery.
func (p *Poller) drainQuarantine(ctx context.Context) {
	parked, err := p.quarRepo.ListUnresolved(ctx, quarantineBatchSize)
	if err != nil {
		p.log.Error().Err(err).Msg("list quarantined events failed")
		return
	}

	for _, q := range parked {
		if q.Attempts >= maxQuarantineAttempts {
			continue
		}

		result, err := p.reconciler.Reconcile(ctx, q.Event())
		if err != nil {
			p.log.Error().Err(err).Str("correlation_key", q.CorrelationKey).Msg("quarantine reconcile failed")
			continue
		}

		// Still no matching pair: bump the attempt counter and keep it parked.
		if result.Disposition == ports.DispositionQuarantined {
			if err := p.quarRepo.IncrementAttempts(ctx, q.ID); err != nil {
				p.log.Error().Err(err).Str("correlation_key", q.CorrelationKey).Msg("increment quarantine attempts failed")
			}
			continue
		}

		if err := p.quarRepo.MarkResolved(ctx, q.ID); err != nil {
			p.log.Error().Err(err).Str("correlation_key", q.CorrelationKey).Msg("mark quarantine resolved failed")
			continue
		}
		p.log.Info().
			Str("correlation_key", q.CorrelationKey).
			Str("disposition", string(result.Disposition)).
			Msg("quarantined event resolved")
	}
}
