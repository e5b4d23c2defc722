package models

import (
	"github.com/shopspring/decimal"
)

// Account represents a financial account row.
type Account struct {
	AccountID   string          `db:"account_id"`
	Name        string          `db:"name"`
	Unit        string          `db:"unit"`
	Balance     decimal.Decimal `db:"balance"`
	Description string          `db:"description"`
	IsActive    bool            `db:"is_active"`
	AuditFields
}
