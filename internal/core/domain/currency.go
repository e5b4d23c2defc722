package domain

import "regexp"

// CurrencyUnit is an ISO-4217-like currency identifier (e.g. "USD", "BTC").
type CurrencyUnit string

var currencyUnitRe = regexp.MustCompile(`^[A-Z]{3,4}$`)

// Valid reports whether u is a well-formed currency code: 3-4 uppercase letters.
func (u CurrencyUnit) Valid() bool {
	return currencyUnitRe.MatchString(string(u))
}

// The two pivot units of the rate resolution engine. Every other unit is
// "arbitrary" and is priced through the daily-fixing pivot.
const (
	// DailyFixingPivot (P1) is priced by a single-authority daily fixing:
	// one complete rate table per day.
	DailyFixingPivot CurrencyUnit = "RUB"

	// LiveQuotePivot (P2) is priced by redundant live-quote endpoints for
	// the current day and a historical feed for past days.
	LiveQuotePivot CurrencyUnit = "BTC"
)

// IsDailyFixingPivot reports whether u is the daily-fixing pivot (P1).
func (u CurrencyUnit) IsDailyFixingPivot() bool {
	return u == DailyFixingPivot
}

// IsLiveQuotePivot reports whether u is the live-quote pivot (P2).
func (u CurrencyUnit) IsLiveQuotePivot() bool {
	return u == LiveQuotePivot
}

// IsPivot reports whether u is either pivot unit.
func (u CurrencyUnit) IsPivot() bool {
	return u.IsDailyFixingPivot() || u.IsLiveQuotePivot()
}

// Scale returns the number of decimal places amounts in this unit are booked at.
func (u CurrencyUnit) Scale() int32 {
	if u.IsLiveQuotePivot() {
		return 8
	}
	return 2
}

func (u CurrencyUnit) String() string {
	return string(u)
}
