package mapping

import (
	"github.com/moneta-app/moneta-backend/internal/core/domain"
	"github.com/moneta-app/moneta-backend/internal/models"
)

// ToModelMutation converts a domain Mutation to a model Mutation
func ToModelMutation(d domain.Mutation) models.Mutation {
	var counterUnit *string
	if d.CounterUnit != nil {
		s := d.CounterUnit.String()
		counterUnit = &s
	}
	return models.Mutation{
		MutationID:  d.MutationID,
		AccountID:   d.AccountID,
		SubjectID:   d.SubjectID,
		Direction:   string(d.Direction),
		Amount:      d.Amount,
		Unit:        d.Unit.String(),
		Quantity:    d.Quantity,
		Agent:       d.Agent,
		HappenedAt:  d.HappenedAt,
		AppliedRate: d.AppliedRate,
		CounterUnit: counterUnit,
		AuditFields: ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainMutation converts a model Mutation to a domain Mutation
func ToDomainMutation(m models.Mutation) domain.Mutation {
	var counterUnit *domain.CurrencyUnit
	if m.CounterUnit != nil {
		u := domain.CurrencyUnit(*m.CounterUnit)
		counterUnit = &u
	}
	return domain.Mutation{
		MutationID:  m.MutationID,
		AccountID:   m.AccountID,
		SubjectID:   m.SubjectID,
		Direction:   domain.Direction(m.Direction),
		Amount:      m.Amount,
		Unit:        domain.CurrencyUnit(m.Unit),
		Quantity:    m.Quantity,
		Agent:       m.Agent,
		HappenedAt:  m.HappenedAt,
		AppliedRate: m.AppliedRate,
		CounterUnit: counterUnit,
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainMutationSlice converts a slice of model Mutations to a slice of domain Mutations
func ToDomainMutationSlice(ms []models.Mutation) []domain.Mutation {
	ds := make([]domain.Mutation, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainMutation(m)
	}
	return ds
}

// ToModelPostponedMutation converts a domain PostponedMutation to its model
func ToModelPostponedMutation(d domain.PostponedMutation) models.PostponedMutation {
	return models.PostponedMutation{
		PostponedID:    d.PostponedID,
		AccountID:      d.AccountID,
		SubjectID:      d.SubjectID,
		Direction:      string(d.Direction),
		Amount:         d.Amount,
		Unit:           d.Unit.String(),
		ConversionUnit: d.ConversionUnit.String(),
		CustomRate:     d.CustomRate,
		Quantity:       d.Quantity,
		Agent:          d.Agent,
		HappenedAt:     d.HappenedAt,
		Day:            d.Day.Time(),
		AuditFields:    ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainPostponedMutation converts a model PostponedMutation to its domain form
func ToDomainPostponedMutation(m models.PostponedMutation) domain.PostponedMutation {
	return domain.PostponedMutation{
		PostponedID:    m.PostponedID,
		AccountID:      m.AccountID,
		SubjectID:      m.SubjectID,
		Direction:      domain.Direction(m.Direction),
		Amount:         m.Amount,
		Unit:           domain.CurrencyUnit(m.Unit),
		ConversionUnit: domain.CurrencyUnit(m.ConversionUnit),
		CustomRate:     m.CustomRate,
		Quantity:       m.Quantity,
		Agent:          m.Agent,
		HappenedAt:     m.HappenedAt,
		Day:            domain.DayOf(m.Day),
		AuditFields:    ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainPostponedMutationSlice converts a slice of model PostponedMutations
func ToDomainPostponedMutationSlice(ms []models.PostponedMutation) []domain.PostponedMutation {
	ds := make([]domain.PostponedMutation, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainPostponedMutation(m)
	}
	return ds
}
