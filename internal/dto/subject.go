package dto

import (
	"github.com/moneta-app/moneta-backend/internal/core/domain"
)

// CreateSubjectRequest defines the data needed to create a new subject.
type CreateSubjectRequest struct {
	Code string `json:"code" binding:"required,uppercase"`
	Name string `json:"name" binding:"required"`
}

// SubjectResponse defines the data returned for a subject.
type SubjectResponse struct {
	SubjectID string `json:"subjectID"`
	Code      string `json:"code"`
	Name      string `json:"name"`
	Reserved  bool   `json:"reserved"`
}

// ToSubjectResponse converts a domain.Subject to SubjectResponse DTO
func ToSubjectResponse(subject *domain.Subject) SubjectResponse {
	return SubjectResponse{
		SubjectID: subject.SubjectID,
		Code:      subject.Code,
		Name:      subject.Name,
		Reserved:  subject.Reserved,
	}
}

// ToListSubjectResponse converts a slice of domain.Subject to DTOs
func ToListSubjectResponse(subjects []domain.Subject) []SubjectResponse {
	res := make([]SubjectResponse, len(subjects))
	for i, subject := range subjects {
		res[i] = ToSubjectResponse(&subject)
	}
	return res
}
