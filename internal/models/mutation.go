package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Mutation represents a booked funds mutation row.
type Mutation struct {
	MutationID  string           `db:"mutation_id"`
	AccountID   string           `db:"account_id"`
	SubjectID   string           `db:"subject_id"`
	Direction   string           `db:"direction"`
	Amount      decimal.Decimal  `db:"amount"`
	Unit        string           `db:"unit"`
	Quantity    decimal.Decimal  `db:"quantity"`
	Agent       string           `db:"agent"`
	HappenedAt  time.Time        `db:"happened_at"`
	AppliedRate *decimal.Decimal `db:"applied_rate"`
	CounterUnit *string          `db:"counter_unit"`
	AuditFields
}

// PostponedMutation represents a parked funds mutation row.
type PostponedMutation struct {
	PostponedID    string           `db:"postponed_id"`
	AccountID      string           `db:"account_id"`
	SubjectID      string           `db:"subject_id"`
	Direction      string           `db:"direction"`
	Amount         decimal.Decimal  `db:"amount"`
	Unit           string           `db:"unit"`
	ConversionUnit string           `db:"conversion_unit"`
	CustomRate     *decimal.Decimal `db:"custom_rate"`
	Quantity       decimal.Decimal  `db:"quantity"`
	Agent          string           `db:"agent"`
	HappenedAt     time.Time        `db:"happened_at"`
	Day            time.Time        `db:"day"`
	AuditFields
}
