package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/moneta-app/moneta-backend/internal/core/domain"
	portsrepo "github.com/moneta-app/moneta-backend/internal/core/ports/repositories"
)

// systemAgent is recorded as the author of rows written by the resolution
// engine rather than by a user request.
const systemAgent = "system"

type PgxRateRepository struct {
	BaseRepository
}

// newPgxRateRepository creates a new repository for conversion rate facts.
func newPgxRateRepository(pool *pgxpool.Pool) portsrepo.RateRepositoryFacade {
	return &PgxRateRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure implementation matches interface
var _ portsrepo.RateRepositoryFacade = (*PgxRateRepository)(nil)

// GetRate retrieves the confirmed rate for (day, from, to). A miss is not an
// error.
func (r *PgxRateRepository) GetRate(ctx context.Context, day domain.Day, from, to domain.CurrencyUnit) (*decimal.Decimal, error) {
	query := `
		SELECT rate
		FROM conversion_rates
		WHERE day = $1 AND from_unit = $2 AND to_unit = $3;
	`
	var rate decimal.Decimal
	err := r.Pool.QueryRow(ctx, query, day.Time(), from.String(), to.String()).Scan(&rate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get rate %s/%s for %s: %w", from, to, day, err)
	}
	return &rate, nil
}

// GetLatestRate retrieves the most recently confirmed rate for (from, to).
func (r *PgxRateRepository) GetLatestRate(ctx context.Context, from, to domain.CurrencyUnit) (*decimal.Decimal, error) {
	query := `
		SELECT rate
		FROM conversion_rates
		WHERE from_unit = $1 AND to_unit = $2
		ORDER BY day DESC
		LIMIT 1;
	`
	var rate decimal.Decimal
	err := r.Pool.QueryRow(ctx, query, from.String(), to.String()).Scan(&rate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest rate %s/%s: %w", from, to, err)
	}
	return &rate, nil
}

// IsStale reports whether no rate towards the given unit has been recorded
// for today.
func (r *PgxRateRepository) IsStale(ctx context.Context, to domain.CurrencyUnit) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM conversion_rates
			WHERE to_unit = $1 AND day = $2
		);
	`
	var exists bool
	err := r.Pool.QueryRow(ctx, query, to.String(), domain.Today().Time()).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check rate staleness for %s: %w", to, err)
	}
	return !exists, nil
}

// AddRate persists a confirmed rate fact. Rates are immutable: a conflicting
// insert is skipped, and false reports that the fact was already there.
func (r *PgxRateRepository) AddRate(ctx context.Context, day domain.Day, from, to domain.CurrencyUnit, rate decimal.Decimal) (bool, error) {
	query := `
		INSERT INTO conversion_rates (rate_id, day, from_unit, to_unit, rate, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $6, $7)
		ON CONFLICT (day, from_unit, to_unit) DO NOTHING;
	`
	now := time.Now()
	tag, err := r.Pool.Exec(ctx, query,
		uuid.NewString(),
		day.Time(),
		from.String(),
		to.String(),
		rate,
		now,
		systemAgent,
	)
	if err != nil {
		return false, fmt.Errorf("failed to add rate %s/%s for %s: %w", from, to, day, err)
	}
	return tag.RowsAffected() == 1, nil
}
