package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Direction indicates whether a mutation increases (BENEFIT) or decreases
// (LOSS) the account balance. Amounts are always positive; the direction
// carries the sign.
type Direction string

const (
	Benefit Direction = "BENEFIT"
	Loss    Direction = "LOSS"
)

// Signed applies the direction to a positive amount.
func (d Direction) Signed(amount decimal.Decimal) decimal.Decimal {
	if d == Loss {
		return amount.Neg()
	}
	return amount
}

// Opposite returns the flipped direction.
func (d Direction) Opposite() Direction {
	if d == Benefit {
		return Loss
	}
	return Benefit
}

// Mutation is a booked funds mutation against one account. When the event's
// native currency differed from the account currency, AppliedRate and
// CounterUnit record the conversion that produced Amount.
type Mutation struct {
	MutationID  string           `json:"mutationID"` // Primary Key (e.g., UUID)
	AccountID   string           `json:"accountID"`  // FK -> accounts.account_id
	SubjectID   string           `json:"subjectID"`  // FK -> subjects.subject_id
	Direction   Direction        `json:"direction"`
	Amount      decimal.Decimal  `json:"amount"` // Positive, in the account's unit
	Unit        CurrencyUnit     `json:"unit"`   // Account unit at booking time
	Quantity    decimal.Decimal  `json:"quantity"`
	Agent       string           `json:"agent"` // Who performed the mutation
	HappenedAt  time.Time        `json:"happenedAt"`
	AppliedRate *decimal.Decimal `json:"appliedRate,omitempty"` // Conversion rate used, if any
	CounterUnit *CurrencyUnit    `json:"counterUnit,omitempty"` // Native currency of the event, if converted
	AuditFields
}

// PostponedMutation is a funds mutation that could not be booked because no
// conversion rate between its unit and the account's unit was known. It lives
// only until the blocking rate is learned, at which point reconciliation
// replays it through the mutation recorder and removes it.
type PostponedMutation struct {
	PostponedID    string           `json:"postponedID"` // Primary Key (e.g., UUID)
	AccountID      string           `json:"accountID"`
	SubjectID      string           `json:"subjectID"`
	Direction      Direction        `json:"direction"`
	Amount         decimal.Decimal  `json:"amount"`               // Positive, in Unit
	Unit           CurrencyUnit     `json:"unit"`                 // Native currency of the event
	ConversionUnit CurrencyUnit     `json:"conversionUnit"`       // The other side of the pending conversion
	CustomRate     *decimal.Decimal `json:"customRate,omitempty"` // User-supplied non-market rate, if any
	Quantity       decimal.Decimal  `json:"quantity"`
	Agent          string           `json:"agent"`
	HappenedAt     time.Time        `json:"happenedAt"`
	Day            Day              `json:"day"` // Bucketing key for reconciliation
	AuditFields
}

// Pair returns the conversion pair the mutation is blocked on.
func (p PostponedMutation) Pair() ConversionPair {
	return ConversionPair{From: p.Unit, To: p.ConversionUnit}
}
