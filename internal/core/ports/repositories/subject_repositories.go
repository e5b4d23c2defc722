package repositories

import (
	"context"

	"github.com/moneta-app/moneta-backend/internal/core/domain"
)

// SubjectReader defines read operations for subject data
type SubjectReader interface {
	// FindSubjectByCode retrieves a subject by its unique code.
	FindSubjectByCode(ctx context.Context, code string) (*domain.Subject, error)

	// ListSubjects retrieves all subjects.
	ListSubjects(ctx context.Context) ([]domain.Subject, error)
}

// SubjectWriter defines write operations for subject data
type SubjectWriter interface {
	// SaveSubject persists a new subject.
	SaveSubject(ctx context.Context, subject domain.Subject) error
}

// SubjectRepositoryFacade combines all subject-related repository interfaces
type SubjectRepositoryFacade interface {
	SubjectReader
	SubjectWriter
}
