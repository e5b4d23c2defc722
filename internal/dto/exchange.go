package dto

import (
	"time"

	"github.com/moneta-app/moneta-backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateExchangeRequest defines the data needed to record a currency
// exchange: BuyAmount enters the buy account; the sell amount is derived
// from the rate between the two account currencies.
type CreateExchangeRequest struct {
	BuyAccountID  string           `json:"buyAccountID" binding:"required"`
	SellAccountID string           `json:"sellAccountID" binding:"required"`
	BuyAmount     decimal.Decimal  `json:"buyAmount" binding:"required"`
	CustomRate    *decimal.Decimal `json:"customRate"` // Optional user-supplied non-market rate
	HappenedAt    time.Time        `json:"happenedAt" binding:"required"`
}

// RecordExchangeResult reports the outcome of recording an exchange: either
// a booked exchange, or a postponed record when no conversion rate was known.
type RecordExchangeResult struct {
	Exchange  *domain.Exchange
	Postponed *domain.PostponedExchange
}

// Deferred reports whether the event was parked instead of booked.
func (r RecordExchangeResult) Deferred() bool {
	return r.Postponed != nil
}

// ExchangeResponse defines the data returned after recording an exchange.
type ExchangeResponse struct {
	ExchangeID  string           `json:"exchangeID,omitempty"`
	PostponedID string           `json:"postponedID,omitempty"`
	Deferred    bool             `json:"deferred"`
	BuyAmount   decimal.Decimal  `json:"buyAmount"`
	SellAmount  *decimal.Decimal `json:"sellAmount,omitempty"`
	Rate        *decimal.Decimal `json:"rate,omitempty"`
}

// ToExchangeResponse converts a RecordExchangeResult to its API shape.
func ToExchangeResponse(res *RecordExchangeResult) ExchangeResponse {
	if res.Deferred() {
		return ExchangeResponse{
			PostponedID: res.Postponed.PostponedID,
			Deferred:    true,
			BuyAmount:   res.Postponed.BuyAmount,
		}
	}
	return ExchangeResponse{
		ExchangeID: res.Exchange.ExchangeID,
		BuyAmount:  res.Exchange.BuyAmount,
		SellAmount: &res.Exchange.SellAmount,
		Rate:       &res.Exchange.Rate,
	}
}
