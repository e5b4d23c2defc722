package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/moneta-app/moneta-backend/internal/apperrors"
	"github.com/moneta-app/moneta-backend/internal/core/domain"
	portsrepo "github.com/moneta-app/moneta-backend/internal/core/ports/repositories"
	"github.com/moneta-app/moneta-backend/internal/models"
	"github.com/moneta-app/moneta-backend/internal/utils/mapping"
)

const subjectColumns = `subject_id, code, name, reserved, created_at, created_by, last_updated_at, last_updated_by`

type PgxSubjectRepository struct {
	BaseRepository
}

// newPgxSubjectRepository creates a new repository for subject data.
func newPgxSubjectRepository(pool *pgxpool.Pool) portsrepo.SubjectRepositoryFacade {
	return &PgxSubjectRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure implementation matches interface
var _ portsrepo.SubjectRepositoryFacade = (*PgxSubjectRepository)(nil)

func scanSubject(row pgx.Row) (models.Subject, error) {
	var s models.Subject
	err := row.Scan(
		&s.SubjectID,
		&s.Code,
		&s.Name,
		&s.Reserved,
		&s.CreatedAt,
		&s.CreatedBy,
		&s.LastUpdatedAt,
		&s.LastUpdatedBy,
	)
	return s, err
}

// SaveSubject persists a new subject.
func (r *PgxSubjectRepository) SaveSubject(ctx context.Context, subject domain.Subject) error {
	modelSubj := mapping.ToModelSubject(subject)

	query := `
		INSERT INTO subjects (` + subjectColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	_, err := r.Pool.Exec(ctx, query,
		modelSubj.SubjectID,
		modelSubj.Code,
		modelSubj.Name,
		modelSubj.Reserved,
		modelSubj.CreatedAt,
		modelSubj.CreatedBy,
		modelSubj.LastUpdatedAt,
		modelSubj.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to save subject %s: %w", modelSubj.Code, err)
	}
	return nil
}

// FindSubjectByCode retrieves a subject by its unique code.
func (r *PgxSubjectRepository) FindSubjectByCode(ctx context.Context, code string) (*domain.Subject, error) {
	query := `SELECT ` + subjectColumns + ` FROM subjects WHERE code = $1;`

	modelSubj, err := scanSubject(r.Pool.QueryRow(ctx, query, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find subject by code %s: %w", code, err)
	}

	domainSubj := mapping.ToDomainSubject(modelSubj)
	return &domainSubj, nil
}

// ListSubjects retrieves all subjects.
func (r *PgxSubjectRepository) ListSubjects(ctx context.Context) ([]domain.Subject, error) {
	query := `SELECT ` + subjectColumns + ` FROM subjects ORDER BY code;`

	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query subjects: %w", err)
	}
	defer rows.Close()

	modelSubjects, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Subject, error) {
		return scanSubject(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan subjects: %w", err)
	}

	return mapping.ToDomainSubjectSlice(modelSubjects), nil
}
