package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/moneta-app/moneta-backend/internal/core/domain"
	portsrepo "github.com/moneta-app/moneta-backend/internal/core/ports/repositories"
	portssvc "github.com/moneta-app/moneta-backend/internal/core/ports/services"
)

// ReconciliationScheduler replays postponed ledger events once their blocking
// rates become known. All replay work runs on exactly one background worker
// consuming a FIFO queue of plain-data tasks, so replays are never concurrent
// with each other and a postponed event is consumed at most once.
type ReconciliationScheduler struct {
	ledgerRepo portsrepo.LedgerRepositoryFacade
	logger     *slog.Logger

	// Wired via AttachReplayers after construction; the resolver and the
	// recorders depend on the scheduler's Enqueue, so they are built second.
	resolver    portssvc.RateResolverSvcFacade
	mutationSvc portssvc.MutationReplaySvc
	exchangeSvc portssvc.ExchangeReplaySvc

	tasks chan portssvc.ReconcileTask
	wg    sync.WaitGroup
}

// NewReconciliationScheduler creates the scheduler with a bounded task queue.
// AttachReplayers must be called before Start.
func NewReconciliationScheduler(ledgerRepo portsrepo.LedgerRepositoryFacade, queueSize int, logger *slog.Logger) *ReconciliationScheduler {
	return &ReconciliationScheduler{
		ledgerRepo: ledgerRepo,
		logger:     logger.With(slog.String("component", "reconciliation")),
		tasks:      make(chan portssvc.ReconcileTask, queueSize),
	}
}

var _ portssvc.ReconciliationSvcFacade = (*ReconciliationScheduler)(nil)

// AttachReplayers wires the services constructed after the scheduler.
func (s *ReconciliationScheduler) AttachReplayers(
	resolver portssvc.RateResolverSvcFacade,
	mutationSvc portssvc.MutationReplaySvc,
	exchangeSvc portssvc.ExchangeReplaySvc,
) {
	s.resolver = resolver
	s.mutationSvc = mutationSvc
	s.exchangeSvc = exchangeSvc
}

// Start spawns the single worker goroutine.
func (s *ReconciliationScheduler) Start() {
	s.wg.Add(1)
	go s.run()
}

// Drain closes the queue and waits until the worker has finished every
// remaining task. In-flight tasks always run to completion.
func (s *ReconciliationScheduler) Drain() {
	close(s.tasks)
	s.wg.Wait()
}

// Enqueue implements portssvc.ReconciliationSvc. It never blocks the caller:
// resolution must not wait on reconciliation, so when the queue is full the
// task is dropped and logged (a later resolution re-enqueues the same fact).
func (s *ReconciliationScheduler) Enqueue(task portssvc.ReconcileTask) {
	select {
	case s.tasks <- task:
	default:
		s.logger.Error("Reconciliation queue full, dropping task",
			slog.String("day", task.Day.String()),
			slog.String("pair", task.Pair.String()))
	}
}

// RefreshPostponed implements portssvc.ReconciliationSvc. It derives the
// postponing reasons from the ledger and re-resolves the daily-fixing leg of
// every affected unit; successful resolutions schedule the replay tasks
// through the normal path.
func (s *ReconciliationScheduler) RefreshPostponed(ctx context.Context) error {
	reasons, err := s.ledgerRepo.ListPostponingReasons(ctx)
	if err != nil {
		return fmt.Errorf("failed to list postponing reasons: %w", err)
	}

	for _, reason := range reasons {
		for _, unit := range reason.Units {
			if unit.IsDailyFixingPivot() {
				continue
			}
			if rate := s.resolver.Resolve(ctx, reason.Day, domain.DailyFixingPivot, unit); rate == nil {
				s.logger.Info("Postponing reason still unresolved",
					slog.String("day", reason.Day.String()),
					slog.String("unit", unit.String()))
			}
		}
	}
	return nil
}

func (s *ReconciliationScheduler) run() {
	defer s.wg.Done()
	for task := range s.tasks {
		s.process(context.Background(), task)
	}
}

// process replays every postponed event the task's newly priced pair can
// unblock. Individual replay failures are logged with the event's identity
// and never abort the batch; an event whose own pair still cannot be priced
// simply stays postponed.
func (s *ReconciliationScheduler) process(ctx context.Context, task portssvc.ReconcileTask) {
	mutations, err := s.ledgerRepo.ListPostponedMutations(ctx, task.Day, task.Pair.From, task.Pair.To)
	if err != nil {
		s.logger.Error("Failed to list postponed mutations",
			slog.String("day", task.Day.String()),
			slog.String("pair", task.Pair.String()),
			slog.String("error", err.Error()))
	}
	for _, pm := range mutations {
		err := s.mutationSvc.ReplayPostponed(ctx, pm, task.Pair, task.Rate)
		switch {
		case err == nil:
		case errors.Is(err, portssvc.ErrRateStillUnknown):
			s.logger.Debug("Postponed mutation still blocked",
				slog.String("postponed_id", pm.PostponedID),
				slog.String("pair", pm.Pair().String()))
		default:
			s.logger.Error("Failed to replay postponed mutation",
				slog.String("postponed_id", pm.PostponedID),
				slog.String("account_id", pm.AccountID),
				slog.String("day", pm.Day.String()),
				slog.String("pair", pm.Pair().String()),
				slog.String("error", err.Error()))
		}
	}

	exchanges, err := s.ledgerRepo.ListPostponedExchanges(ctx, task.Day, task.Pair.From, task.Pair.To)
	if err != nil {
		s.logger.Error("Failed to list postponed exchanges",
			slog.String("day", task.Day.String()),
			slog.String("pair", task.Pair.String()),
			slog.String("error", err.Error()))
	}
	for _, pe := range exchanges {
		err := s.exchangeSvc.ReplayPostponed(ctx, pe, task.Pair, task.Rate)
		switch {
		case err == nil:
		case errors.Is(err, portssvc.ErrRateStillUnknown):
			s.logger.Debug("Postponed exchange still blocked",
				slog.String("postponed_id", pe.PostponedID))
		default:
			s.logger.Error("Failed to replay postponed exchange",
				slog.String("postponed_id", pe.PostponedID),
				slog.String("buy_account_id", pe.BuyAccountID),
				slog.String("sell_account_id", pe.SellAccountID),
				slog.String("day", pe.Day.String()),
				slog.String("error", err.Error()))
		}
	}
}
