package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ConversionRate represents a confirmed conversion rate row. Day is stored
// as a DATE column and scanned as midnight UTC.
type ConversionRate struct {
	RateID   string          `db:"rate_id"`
	Day      time.Time       `db:"day"`
	FromUnit string          `db:"from_unit"`
	ToUnit   string          `db:"to_unit"`
	Rate     decimal.Decimal `db:"rate"`
	AuditFields
}
