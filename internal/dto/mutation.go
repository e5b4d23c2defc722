package dto

import (
	"time"

	"github.com/moneta-app/moneta-backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateMutationRequest defines the data needed to record a funds mutation.
// Unit is the event's native currency; when it differs from the account's
// currency the amount is converted at the custom rate (if supplied) or the
// natural rate resolved by the engine.
type CreateMutationRequest struct {
	AccountID   string           `json:"accountID" binding:"required"`
	SubjectCode string           `json:"subjectCode" binding:"required"`
	Direction   domain.Direction `json:"direction" binding:"required,oneof=BENEFIT LOSS"`
	Amount      decimal.Decimal  `json:"amount" binding:"required"`
	Unit        string           `json:"unit" binding:"required,currency_code"`
	Quantity    *decimal.Decimal `json:"quantity"`   // Optional, defaults to 1
	CustomRate  *decimal.Decimal `json:"customRate"` // Optional user-supplied non-market rate
	HappenedAt  time.Time        `json:"happenedAt" binding:"required"`
}

// RecordMutationResult reports the outcome of recording a mutation: either a
// booked mutation, or a postponed record when no conversion rate was known.
type RecordMutationResult struct {
	Mutation  *domain.Mutation
	Postponed *domain.PostponedMutation
}

// Deferred reports whether the event was parked instead of booked.
func (r RecordMutationResult) Deferred() bool {
	return r.Postponed != nil
}

// MutationResponse defines the data returned after recording a mutation.
type MutationResponse struct {
	MutationID  string           `json:"mutationID,omitempty"`
	PostponedID string           `json:"postponedID,omitempty"`
	Deferred    bool             `json:"deferred"`
	Amount      decimal.Decimal  `json:"amount"`
	Unit        string           `json:"unit"`
	AppliedRate *decimal.Decimal `json:"appliedRate,omitempty"`
}

// ListMutationsParams defines query parameters for listing account mutations.
type ListMutationsParams struct {
	Limit     int     `form:"limit,default=20"`
	NextToken *string `form:"nextToken"`
}

// MutationItemResponse defines the data returned for a booked mutation in
// account listings.
type MutationItemResponse struct {
	MutationID  string           `json:"mutationID"`
	AccountID   string           `json:"accountID"`
	SubjectID   string           `json:"subjectID"`
	Direction   domain.Direction `json:"direction"`
	Amount      decimal.Decimal  `json:"amount"`
	Unit        string           `json:"unit"`
	Quantity    decimal.Decimal  `json:"quantity"`
	HappenedAt  time.Time        `json:"happenedAt"`
	AppliedRate *decimal.Decimal `json:"appliedRate,omitempty"`
	CounterUnit *string          `json:"counterUnit,omitempty"`
}

// ListMutationsResponse wraps a page of mutations with the continuation token.
type ListMutationsResponse struct {
	Mutations []MutationItemResponse `json:"mutations"`
	NextToken *string                `json:"nextToken,omitempty"`
}

// ToListMutationsResponse converts a page of domain mutations to its API shape.
func ToListMutationsResponse(mutations []domain.Mutation, nextToken *string) ListMutationsResponse {
	items := make([]MutationItemResponse, len(mutations))
	for i, m := range mutations {
		items[i] = MutationItemResponse{
			MutationID:  m.MutationID,
			AccountID:   m.AccountID,
			SubjectID:   m.SubjectID,
			Direction:   m.Direction,
			Amount:      m.Amount,
			Unit:        m.Unit.String(),
			Quantity:    m.Quantity,
			HappenedAt:  m.HappenedAt,
			AppliedRate: m.AppliedRate,
		}
		if m.CounterUnit != nil {
			cu := m.CounterUnit.String()
			items[i].CounterUnit = &cu
		}
	}
	return ListMutationsResponse{Mutations: items, NextToken: nextToken}
}

// ToMutationResponse converts a RecordMutationResult to its API shape.
func ToMutationResponse(res *RecordMutationResult) MutationResponse {
	if res.Deferred() {
		return MutationResponse{
			PostponedID: res.Postponed.PostponedID,
			Deferred:    true,
			Amount:      res.Postponed.Amount,
			Unit:        res.Postponed.Unit.String(),
		}
	}
	return MutationResponse{
		MutationID:  res.Mutation.MutationID,
		Amount:      res.Mutation.Amount,
		Unit:        res.Mutation.Unit.String(),
		AppliedRate: res.Mutation.AppliedRate,
	}
}
