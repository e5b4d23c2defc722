package services

import (
	"log/slog"

	"github.com/moneta-app/moneta-backend/internal/adapters/ratesource"
	portsrepo "github.com/moneta-app/moneta-backend/internal/core/ports/repositories"
	portssvc "github.com/moneta-app/moneta-backend/internal/core/ports/services"
)

// NewServiceContainer wires the full service graph. The reconciliation
// scheduler, resolver and recorders form a cycle (the scheduler replays
// events through the recorders, which resolve rates, which enqueue to the
// scheduler), so the scheduler is built first and its replayers are attached
// after the recorders exist. Call Reconciler.Start() once wiring is done and
// Reconciler.Drain() on shutdown.
func NewServiceContainer(
	repos *portsrepo.RepositoryProvider,
	dailySource ratesource.Source,
	liveSource ratesource.Source,
	reconcileQueueSize int,
	logger *slog.Logger,
) *portssvc.ServiceContainer {
	scheduler := NewReconciliationScheduler(repos.LedgerRepo, reconcileQueueSize, logger)

	resolver := NewRateResolutionService(repos.RateRepo, dailySource, liveSource, scheduler, logger)

	mutation := NewMutationService(repos.AccountRepo, repos.SubjectRepo, repos.LedgerRepo, resolver)
	exchange := NewExchangeService(repos.AccountRepo, repos.SubjectRepo, repos.LedgerRepo, resolver)

	scheduler.AttachReplayers(resolver, mutation, exchange)

	return &portssvc.ServiceContainer{
		Account:      NewAccountService(repos.AccountRepo, repos.LedgerRepo),
		Subject:      NewSubjectService(repos.SubjectRepo),
		RateResolver: resolver,
		Reconciler:   scheduler,
		Mutation:     mutation,
		Exchange:     exchange,
	}
}
