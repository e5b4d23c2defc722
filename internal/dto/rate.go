package dto

import (
	"regexp"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// RateResponse defines the data returned for a rate resolution query.
type RateResponse struct {
	Day   string           `json:"day"`
	From  string           `json:"from"`
	To    string           `json:"to"`
	Rate  *decimal.Decimal `json:"rate,omitempty"`
	Known bool             `json:"known"`
}

var currencyCodeRe = regexp.MustCompile(`^[A-Z]{3,4}$`)

// CurrencyCodeValidator is registered with the gin binding engine under the
// "currency_code" tag: 3-4 uppercase letters, ISO-4217-like.
func CurrencyCodeValidator(fl validator.FieldLevel) bool {
	return currencyCodeRe.MatchString(fl.Field().String())
}
