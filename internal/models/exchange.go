package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Exchange represents a booked currency exchange row.
type Exchange struct {
	ExchangeID    string          `db:"exchange_id"`
	BuyAccountID  string          `db:"buy_account_id"`
	SellAccountID string          `db:"sell_account_id"`
	BuyAmount     decimal.Decimal `db:"buy_amount"`
	SellAmount    decimal.Decimal `db:"sell_amount"`
	Rate          decimal.Decimal `db:"rate"`
	Agent         string          `db:"agent"`
	HappenedAt    time.Time       `db:"happened_at"`
	AuditFields
}

// PostponedExchange represents a parked currency exchange row.
type PostponedExchange struct {
	PostponedID   string           `db:"postponed_id"`
	BuyAccountID  string           `db:"buy_account_id"`
	SellAccountID string           `db:"sell_account_id"`
	BuyAmount     decimal.Decimal  `db:"buy_amount"`
	CustomRate    *decimal.Decimal `db:"custom_rate"`
	Agent         string           `db:"agent"`
	HappenedAt    time.Time        `db:"happened_at"`
	Day           time.Time        `db:"day"`
	Relevant      bool             `db:"relevant"`
	AuditFields
}
