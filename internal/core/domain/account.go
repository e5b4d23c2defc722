package domain

import (
	"github.com/shopspring/decimal"
)

// Account represents a balance account holding funds in a single currency.
// This is the primary representation used by services.
type Account struct {
	AccountID   string          `json:"accountID"`   // Primary Key (e.g., UUID)
	Name        string          `json:"name"`        // User-defined name
	Unit        CurrencyUnit    `json:"unit"`        // Currency the balance is held in (NON-NULL)
	Balance     decimal.Decimal `json:"balance"`     // Persisted account balance
	Description string          `json:"description"` // Nullable user description
	IsActive    bool            `json:"isActive"`    // Soft delete or status flag
	AuditFields
}
