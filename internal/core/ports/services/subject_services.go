package services

import (
	"context"

	"github.com/moneta-app/moneta-backend/internal/core/domain"
	"github.com/moneta-app/moneta-backend/internal/dto"
)

// SubjectReaderSvc defines read operations for subject data
type SubjectReaderSvc interface {
	// ListSubjects retrieves all subjects.
	ListSubjects(ctx context.Context) ([]domain.Subject, error)
}

// SubjectWriterSvc defines write operations for subject data
type SubjectWriterSvc interface {
	// CreateSubject persists a new non-reserved subject.
	CreateSubject(ctx context.Context, req dto.CreateSubjectRequest, agent string) (*domain.Subject, error)
}

// SubjectSvcFacade combines all subject-related service interfaces
type SubjectSvcFacade interface {
	SubjectReaderSvc
	SubjectWriterSvc
}
