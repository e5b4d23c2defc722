package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Exchange is a booked currency exchange between two accounts: SellAmount
// left the sell account's currency and BuyAmount entered the buy account's.
// Rate is sell-unit to buy-unit: BuyAmount = SellAmount * Rate.
type Exchange struct {
	ExchangeID    string          `json:"exchangeID"` // Primary Key (e.g., UUID)
	BuyAccountID  string          `json:"buyAccountID"`
	SellAccountID string          `json:"sellAccountID"`
	BuyAmount     decimal.Decimal `json:"buyAmount"`  // Positive, in buy account's unit
	SellAmount    decimal.Decimal `json:"sellAmount"` // Positive, in sell account's unit
	Rate          decimal.Decimal `json:"rate"`
	Agent         string          `json:"agent"`
	HappenedAt    time.Time       `json:"happenedAt"`
	AuditFields
}

// PostponedExchange is a currency exchange that could not be booked because
// no rate between the two account currencies was known. Relevant stays true
// while the exchange is pending; reconciliation clears it after replay.
type PostponedExchange struct {
	PostponedID   string           `json:"postponedID"` // Primary Key (e.g., UUID)
	BuyAccountID  string           `json:"buyAccountID"`
	SellAccountID string           `json:"sellAccountID"`
	BuyAmount     decimal.Decimal  `json:"buyAmount"` // Positive, in buy account's unit
	CustomRate    *decimal.Decimal `json:"customRate,omitempty"`
	Agent         string           `json:"agent"`
	HappenedAt    time.Time        `json:"happenedAt"`
	Day           Day              `json:"day"`      // Bucketing key for reconciliation
	Relevant      bool             `json:"relevant"` // Still pending
	AuditFields
}
