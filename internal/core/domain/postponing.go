package domain

// PostponingReasons groups, for one day, every currency unit referenced by at
// least one still-pending postponed event. It is a derived, transient view
// used to decide which rates to proactively re-resolve; nothing persists it.
type PostponingReasons struct {
	Day   Day
	Units []CurrencyUnit
}
