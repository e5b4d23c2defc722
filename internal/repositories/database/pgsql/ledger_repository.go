package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/moneta-app/moneta-backend/internal/apperrors"
	"github.com/moneta-app/moneta-backend/internal/core/domain"
	portsrepo "github.com/moneta-app/moneta-backend/internal/core/ports/repositories"
	"github.com/moneta-app/moneta-backend/internal/models"
	"github.com/moneta-app/moneta-backend/internal/utils/mapping"
	"github.com/moneta-app/moneta-backend/internal/utils/pagination"
)

// PgxLedgerRepository persists booked mutations and exchanges together with
// the two postponed-event streams.
type PgxLedgerRepository struct {
	BaseRepository
}

// newPgxLedgerRepository creates a new repository for the ledger streams.
func newPgxLedgerRepository(pool *pgxpool.Pool) portsrepo.LedgerRepositoryWithTx {
	return &PgxLedgerRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure implementation matches interface
var _ portsrepo.LedgerRepositoryWithTx = (*PgxLedgerRepository)(nil)

// applyBalanceChange adjusts one account balance inside a transaction. The
// UPDATE itself takes the row lock, so concurrent bookings serialize here.
func (r *PgxLedgerRepository) applyBalanceChange(ctx context.Context, tx pgx.Tx, accountID string, change decimal.Decimal, agent string, now time.Time) error {
	query := `
		UPDATE accounts
		SET balance = balance + $2, last_updated_at = $3, last_updated_by = $4
		WHERE account_id = $1;
	`
	tag, err := tx.Exec(ctx, query, accountID, change, now, agent)
	if err != nil {
		return fmt.Errorf("failed to update balance of account %s: %w", accountID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// insertMutation writes one mutation row inside the given transaction.
func (r *PgxLedgerRepository) insertMutation(ctx context.Context, tx pgx.Tx, modelMut models.Mutation) error {
	query := `
		INSERT INTO mutations (
			mutation_id, account_id, subject_id, direction, amount, unit, quantity,
			agent, happened_at, applied_rate, counter_unit,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15);
	`
	_, err := tx.Exec(ctx, query,
		modelMut.MutationID,
		modelMut.AccountID,
		modelMut.SubjectID,
		modelMut.Direction,
		modelMut.Amount,
		modelMut.Unit,
		modelMut.Quantity,
		modelMut.Agent,
		modelMut.HappenedAt,
		modelMut.AppliedRate,
		modelMut.CounterUnit,
		modelMut.CreatedAt,
		modelMut.CreatedBy,
		modelMut.LastUpdatedAt,
		modelMut.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to insert mutation %s: %w", modelMut.MutationID, err)
	}
	return nil
}

// SaveMutation books a mutation and applies its signed balance change to the
// account inside one database transaction.
func (r *PgxLedgerRepository) SaveMutation(ctx context.Context, mutation domain.Mutation, balanceChange decimal.Decimal) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	modelMut := mapping.ToModelMutation(mutation)
	if err := r.insertMutation(ctx, tx, modelMut); err != nil {
		return err
	}

	if err := r.applyBalanceChange(ctx, tx, modelMut.AccountID, balanceChange, modelMut.CreatedBy, modelMut.CreatedAt); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

// ReplayMutation books a replayed mutation and deletes its postponed record
// in one transaction. A postponed record that is already gone means an
// earlier task consumed the event; the booking is rolled back and
// ErrNotFound returned, keeping the replay at-most-once.
func (r *PgxLedgerRepository) ReplayMutation(ctx context.Context, mutation domain.Mutation, balanceChange decimal.Decimal, postponedID string) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	modelMut := mapping.ToModelMutation(mutation)
	if err := r.insertMutation(ctx, tx, modelMut); err != nil {
		return err
	}

	if err := r.applyBalanceChange(ctx, tx, modelMut.AccountID, balanceChange, modelMut.CreatedBy, modelMut.CreatedAt); err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, `DELETE FROM postponed_mutations WHERE postponed_id = $1;`, postponedID)
	if err != nil {
		return fmt.Errorf("failed to delete postponed mutation %s: %w", postponedID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return r.Commit(ctx, tx)
}

// ListMutationsByAccount retrieves a paginated list of mutations for an
// account using token-based pagination on (happened_at, created_at).
func (r *PgxLedgerRepository) ListMutationsByAccount(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.Mutation, *string, error) {
	if limit <= 0 {
		limit = 50
	}
	fetchLimit := limit + 1

	baseQuery := `
		SELECT mutation_id, account_id, subject_id, direction, amount, unit, quantity,
		       agent, happened_at, applied_rate, counter_unit,
		       created_at, created_by, last_updated_at, last_updated_by
		FROM mutations
		WHERE account_id = $1
	`
	orderByClause := `ORDER BY happened_at DESC, created_at DESC`

	args := []interface{}{accountID}
	query := baseQuery
	if nextToken != nil && *nextToken != "" {
		lastHappenedAt, lastCreatedAt, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}
		query += ` AND (happened_at, created_at) < ($2, $3) `
		args = append(args, lastHappenedAt, lastCreatedAt)
	}
	query += orderByClause + ` LIMIT $` + strconv.Itoa(len(args)+1) + `;`
	args = append(args, fetchLimit)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query mutations for account %s: %w", accountID, err)
	}
	defer rows.Close()

	modelMuts, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Mutation, error) {
		var m models.Mutation
		err := row.Scan(
			&m.MutationID,
			&m.AccountID,
			&m.SubjectID,
			&m.Direction,
			&m.Amount,
			&m.Unit,
			&m.Quantity,
			&m.Agent,
			&m.HappenedAt,
			&m.AppliedRate,
			&m.CounterUnit,
			&m.CreatedAt,
			&m.CreatedBy,
			&m.LastUpdatedAt,
			&m.LastUpdatedBy,
		)
		return m, err
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to scan mutations for account %s: %w", accountID, err)
	}

	var nextTokenVal *string
	if len(modelMuts) > limit {
		last := modelMuts[limit-1]
		token := pagination.EncodeToken(last.HappenedAt, last.CreatedAt)
		nextTokenVal = &token
		modelMuts = modelMuts[:limit]
	}

	return mapping.ToDomainMutationSlice(modelMuts), nextTokenVal, nil
}

// insertExchange writes one exchange row and applies both balance changes
// inside the given transaction: the buy account is credited, the sell
// account debited.
func (r *PgxLedgerRepository) insertExchange(ctx context.Context, tx pgx.Tx, modelExch models.Exchange) error {
	query := `
		INSERT INTO exchanges (
			exchange_id, buy_account_id, sell_account_id, buy_amount, sell_amount, rate,
			agent, happened_at, created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	_, err := tx.Exec(ctx, query,
		modelExch.ExchangeID,
		modelExch.BuyAccountID,
		modelExch.SellAccountID,
		modelExch.BuyAmount,
		modelExch.SellAmount,
		modelExch.Rate,
		modelExch.Agent,
		modelExch.HappenedAt,
		modelExch.CreatedAt,
		modelExch.CreatedBy,
		modelExch.LastUpdatedAt,
		modelExch.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to insert exchange %s: %w", modelExch.ExchangeID, err)
	}

	if err := r.applyBalanceChange(ctx, tx, modelExch.BuyAccountID, modelExch.BuyAmount, modelExch.CreatedBy, modelExch.CreatedAt); err != nil {
		return err
	}
	return r.applyBalanceChange(ctx, tx, modelExch.SellAccountID, modelExch.SellAmount.Neg(), modelExch.CreatedBy, modelExch.CreatedAt)
}

// SaveExchange books an exchange and applies both balance changes inside one
// database transaction.
func (r *PgxLedgerRepository) SaveExchange(ctx context.Context, exchange domain.Exchange) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if err := r.insertExchange(ctx, tx, mapping.ToModelExchange(exchange)); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

// ReplayExchange books a replayed exchange and clears the relevant flag of
// its postponed record in one transaction. A flag that is already cleared
// means an earlier task consumed the event; the booking is rolled back and
// ErrNotFound returned, keeping the replay at-most-once.
func (r *PgxLedgerRepository) ReplayExchange(ctx context.Context, exchange domain.Exchange, postponedID string) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if err := r.insertExchange(ctx, tx, mapping.ToModelExchange(exchange)); err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, `UPDATE postponed_exchanges SET relevant = FALSE WHERE postponed_id = $1 AND relevant;`, postponedID)
	if err != nil {
		return fmt.Errorf("failed to mark postponed exchange %s processed: %w", postponedID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return r.Commit(ctx, tx)
}

// SavePostponedMutation parks a mutation until its blocking rate is known.
func (r *PgxLedgerRepository) SavePostponedMutation(ctx context.Context, pm domain.PostponedMutation) error {
	modelPM := mapping.ToModelPostponedMutation(pm)
	query := `
		INSERT INTO postponed_mutations (
			postponed_id, account_id, subject_id, direction, amount, unit, conversion_unit,
			custom_rate, quantity, agent, happened_at, day,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16);
	`
	_, err := r.Pool.Exec(ctx, query,
		modelPM.PostponedID,
		modelPM.AccountID,
		modelPM.SubjectID,
		modelPM.Direction,
		modelPM.Amount,
		modelPM.Unit,
		modelPM.ConversionUnit,
		modelPM.CustomRate,
		modelPM.Quantity,
		modelPM.Agent,
		modelPM.HappenedAt,
		modelPM.Day,
		modelPM.CreatedAt,
		modelPM.CreatedBy,
		modelPM.LastUpdatedAt,
		modelPM.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to insert postponed mutation %s: %w", modelPM.PostponedID, err)
	}
	return nil
}

// SavePostponedExchange parks an exchange until its blocking rate is known.
func (r *PgxLedgerRepository) SavePostponedExchange(ctx context.Context, pe domain.PostponedExchange) error {
	modelPE := mapping.ToModelPostponedExchange(pe)
	query := `
		INSERT INTO postponed_exchanges (
			postponed_id, buy_account_id, sell_account_id, buy_amount, custom_rate,
			agent, happened_at, day, relevant,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
	`
	_, err := r.Pool.Exec(ctx, query,
		modelPE.PostponedID,
		modelPE.BuyAccountID,
		modelPE.SellAccountID,
		modelPE.BuyAmount,
		modelPE.CustomRate,
		modelPE.Agent,
		modelPE.HappenedAt,
		modelPE.Day,
		modelPE.Relevant,
		modelPE.CreatedAt,
		modelPE.CreatedBy,
		modelPE.LastUpdatedAt,
		modelPE.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to insert postponed exchange %s: %w", modelPE.PostponedID, err)
	}
	return nil
}

// ListPostponedMutations retrieves pending postponed mutations for the given
// day that reference either unit, in either field.
func (r *PgxLedgerRepository) ListPostponedMutations(ctx context.Context, day domain.Day, unitA, unitB domain.CurrencyUnit) ([]domain.PostponedMutation, error) {
	query := `
		SELECT postponed_id, account_id, subject_id, direction, amount, unit, conversion_unit,
		       custom_rate, quantity, agent, happened_at, day,
		       created_at, created_by, last_updated_at, last_updated_by
		FROM postponed_mutations
		WHERE day = $1
		  AND (unit = ANY($2) OR conversion_unit = ANY($2))
		ORDER BY created_at;
	`
	units := []string{unitA.String(), unitB.String()}
	rows, err := r.Pool.Query(ctx, query, day.Time(), units)
	if err != nil {
		return nil, fmt.Errorf("failed to query postponed mutations for %s: %w", day, err)
	}
	defer rows.Close()

	modelPMs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.PostponedMutation, error) {
		var m models.PostponedMutation
		err := row.Scan(
			&m.PostponedID,
			&m.AccountID,
			&m.SubjectID,
			&m.Direction,
			&m.Amount,
			&m.Unit,
			&m.ConversionUnit,
			&m.CustomRate,
			&m.Quantity,
			&m.Agent,
			&m.HappenedAt,
			&m.Day,
			&m.CreatedAt,
			&m.CreatedBy,
			&m.LastUpdatedAt,
			&m.LastUpdatedBy,
		)
		return m, err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return []domain.PostponedMutation{}, nil
		}
		return nil, fmt.Errorf("failed to scan postponed mutations: %w", err)
	}

	return mapping.ToDomainPostponedMutationSlice(modelPMs), nil
}

// ListPostponedExchanges retrieves still-relevant postponed exchanges for the
// given day where either involved account holds one of the units.
func (r *PgxLedgerRepository) ListPostponedExchanges(ctx context.Context, day domain.Day, unitA, unitB domain.CurrencyUnit) ([]domain.PostponedExchange, error) {
	query := `
		SELECT pe.postponed_id, pe.buy_account_id, pe.sell_account_id, pe.buy_amount, pe.custom_rate,
		       pe.agent, pe.happened_at, pe.day, pe.relevant,
		       pe.created_at, pe.created_by, pe.last_updated_at, pe.last_updated_by
		FROM postponed_exchanges pe
		JOIN accounts buy ON buy.account_id = pe.buy_account_id
		JOIN accounts sell ON sell.account_id = pe.sell_account_id
		WHERE pe.relevant AND pe.day = $1
		  AND (buy.unit = ANY($2) OR sell.unit = ANY($2))
		ORDER BY pe.created_at;
	`
	units := []string{unitA.String(), unitB.String()}
	rows, err := r.Pool.Query(ctx, query, day.Time(), units)
	if err != nil {
		return nil, fmt.Errorf("failed to query postponed exchanges for %s: %w", day, err)
	}
	defer rows.Close()

	modelPEs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.PostponedExchange, error) {
		var m models.PostponedExchange
		err := row.Scan(
			&m.PostponedID,
			&m.BuyAccountID,
			&m.SellAccountID,
			&m.BuyAmount,
			&m.CustomRate,
			&m.Agent,
			&m.HappenedAt,
			&m.Day,
			&m.Relevant,
			&m.CreatedAt,
			&m.CreatedBy,
			&m.LastUpdatedAt,
			&m.LastUpdatedBy,
		)
		return m, err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return []domain.PostponedExchange{}, nil
		}
		return nil, fmt.Errorf("failed to scan postponed exchanges: %w", err)
	}

	return mapping.ToDomainPostponedExchangeSlice(modelPEs), nil
}

// ListPostponingReasons derives, per day, the distinct currency units that
// still have at least one postponed event referencing them.
func (r *PgxLedgerRepository) ListPostponingReasons(ctx context.Context) ([]domain.PostponingReasons, error) {
	query := `
		SELECT day, array_agg(DISTINCT unit ORDER BY unit) AS units
		FROM (
			SELECT day, unit FROM postponed_mutations
			UNION
			SELECT day, conversion_unit AS unit FROM postponed_mutations
			UNION
			SELECT pe.day, buy.unit
			FROM postponed_exchanges pe
			JOIN accounts buy ON buy.account_id = pe.buy_account_id
			WHERE pe.relevant
			UNION
			SELECT pe.day, sell.unit
			FROM postponed_exchanges pe
			JOIN accounts sell ON sell.account_id = pe.sell_account_id
			WHERE pe.relevant
		) blocked
		GROUP BY day
		ORDER BY day;
	`
	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query postponing reasons: %w", err)
	}
	defer rows.Close()

	var reasons []domain.PostponingReasons
	for rows.Next() {
		var day time.Time
		var units []string
		if err := rows.Scan(&day, &units); err != nil {
			return nil, fmt.Errorf("failed to scan postponing reason: %w", err)
		}
		domainUnits := make([]domain.CurrencyUnit, len(units))
		for i, u := range units {
			domainUnits[i] = domain.CurrencyUnit(u)
		}
		reasons = append(reasons, domain.PostponingReasons{
			Day:   domain.DayOf(day),
			Units: domainUnits,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating postponing reasons: %w", err)
	}
	return reasons, nil
}
