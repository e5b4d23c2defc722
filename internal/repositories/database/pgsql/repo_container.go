package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/moneta-app/moneta-backend/internal/core/ports/repositories"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		AccountRepo: newPgxAccountRepository(dbPool),
		SubjectRepo: newPgxSubjectRepository(dbPool),
		RateRepo:    newPgxRateRepository(dbPool),
		LedgerRepo:  newPgxLedgerRepository(dbPool),
	}
}
