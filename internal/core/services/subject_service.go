package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/moneta-app/moneta-backend/internal/apperrors"
	"github.com/moneta-app/moneta-backend/internal/core/domain"
	portsrepo "github.com/moneta-app/moneta-backend/internal/core/ports/repositories"
	portssvc "github.com/moneta-app/moneta-backend/internal/core/ports/services"
	"github.com/moneta-app/moneta-backend/internal/dto"
)

// subjectService implements portssvc.SubjectSvcFacade.
type subjectService struct {
	subjectRepo portsrepo.SubjectRepositoryFacade
}

// NewSubjectService creates a new subject service.
func NewSubjectService(subjectRepo portsrepo.SubjectRepositoryFacade) portssvc.SubjectSvcFacade {
	return &subjectService{subjectRepo: subjectRepo}
}

var _ portssvc.SubjectSvcFacade = (*subjectService)(nil)

func (s *subjectService) CreateSubject(ctx context.Context, req dto.CreateSubjectRequest, agent string) (*domain.Subject, error) {
	code := strings.ToUpper(req.Code)
	if code == domain.SubjectConversionDifference {
		return nil, fmt.Errorf("%w: subject code '%s' is reserved", apperrors.ErrValidation, code)
	}

	if _, err := s.subjectRepo.FindSubjectByCode(ctx, code); err == nil {
		return nil, fmt.Errorf("%w: subject code '%s' already exists", apperrors.ErrDuplicate, code)
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to check subject code '%s': %w", code, err)
	}

	subject := domain.Subject{
		SubjectID:   uuid.NewString(),
		Code:        code,
		Name:        req.Name,
		Reserved:    false,
		AuditFields: newAudit(agent, time.Now()),
	}
	if err := s.subjectRepo.SaveSubject(ctx, subject); err != nil {
		return nil, fmt.Errorf("failed to save subject: %w", err)
	}
	return &subject, nil
}

func (s *subjectService) ListSubjects(ctx context.Context) ([]domain.Subject, error) {
	subjects, err := s.subjectRepo.ListSubjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list subjects: %w", err)
	}
	return subjects, nil
}
