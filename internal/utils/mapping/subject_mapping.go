package mapping

import (
	"github.com/moneta-app/moneta-backend/internal/core/domain"
	"github.com/moneta-app/moneta-backend/internal/models"
)

// ToModelSubject converts a domain Subject to a model Subject
func ToModelSubject(d domain.Subject) models.Subject {
	return models.Subject{
		SubjectID:   d.SubjectID,
		Code:        d.Code,
		Name:        d.Name,
		Reserved:    d.Reserved,
		AuditFields: ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainSubject converts a model Subject to a domain Subject
func ToDomainSubject(m models.Subject) domain.Subject {
	return domain.Subject{
		SubjectID:   m.SubjectID,
		Code:        m.Code,
		Name:        m.Name,
		Reserved:    m.Reserved,
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainSubjectSlice converts a slice of model Subjects to a slice of domain Subjects
func ToDomainSubjectSlice(ms []models.Subject) []domain.Subject {
	ds := make([]domain.Subject, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainSubject(m)
	}
	return ds
}
