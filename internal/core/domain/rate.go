package domain

import "github.com/shopspring/decimal"

// ConversionPair is an ordered (from, to) pair of currency units. A rate r
// for the pair means amountInTo = amountInFrom * r.
type ConversionPair struct {
	From CurrencyUnit `json:"from"`
	To   CurrencyUnit `json:"to"`
}

// NewConversionPair builds a pair from two unit codes.
func NewConversionPair(from, to CurrencyUnit) ConversionPair {
	return ConversionPair{From: from, To: to}
}

// Reversed returns the pair with from and to swapped.
func (p ConversionPair) Reversed() ConversionPair {
	return ConversionPair{From: p.To, To: p.From}
}

// Contains reports whether u is either side of the pair.
func (p ConversionPair) Contains(u CurrencyUnit) bool {
	return p.From == u || p.To == u
}

// Other returns the side of the pair that is not u. It returns u itself when
// u is not part of the pair.
func (p ConversionPair) Other(u CurrencyUnit) CurrencyUnit {
	switch u {
	case p.From:
		return p.To
	case p.To:
		return p.From
	}
	return u
}

func (p ConversionPair) String() string {
	return p.From.String() + "/" + p.To.String()
}

// ConversionRate is a confirmed (day, pair, rate) fact. Rates are immutable
// once persisted; the rate repository enforces uniqueness per (day, pair).
type ConversionRate struct {
	RateID string          `json:"rateID"` // Primary Key (UUID)
	Day    Day             `json:"day"`
	Pair   ConversionPair  `json:"pair"`
	Rate   decimal.Decimal `json:"rate"`
	AuditFields
}
