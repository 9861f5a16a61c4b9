package domain

import (
	"strings"

	"github.com/Rhymond/go-money"
)

// SupportedCurrencies is the fixed set a profile may be denominated in.
var SupportedCurrencies = []string{"USD", "EUR", "GBP", "JPY", "AUD", "CAD", "CHF", "CNY", "INR", "BRL"}

// IsSupportedCurrency reports whether code is in SupportedCurrencies.
func IsSupportedCurrency(code string) bool {
	code = strings.ToUpper(strings.TrimSpace(code))
	for _, c := range SupportedCurrencies {
		if c == code {
			return money.GetCurrency(code) != nil
		}
	}
	return false
}

// FormatAmount renders amount in the currency's own notation, e.g. "$1,200.00".
func FormatAmount(amount float64, code string) string {
	return money.NewFromFloat(amount, strings.ToUpper(code)).Display()
}
