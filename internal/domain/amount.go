package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidAmount is returned when an amount string cannot be read as a number.
var ErrInvalidAmount = errors.New("invalid amount")

var currencySymbols = []string{"$", "€", "£", "¥"}

// ParseAmount converts a receipt amount such as "$12.50" into a decimal.
// A single leading currency symbol and surrounding whitespace are ignored.
func ParseAmount(s string) (decimal.Decimal, error) {
	v := strings.TrimSpace(s)
	for _, sym := range currencySymbols {
		if strings.HasPrefix(v, sym) {
			v = strings.TrimSpace(strings.TrimPrefix(v, sym))
			break
		}
	}
	if v == "" {
		return decimal.Zero, fmt.Errorf("ParseAmount: %q: %w", s, ErrInvalidAmount)
	}

	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, fmt.Errorf("ParseAmount: %q: %w", s, ErrInvalidAmount)
	}
	return d, nil
}

// FormatAmount renders a decimal with two fractional digits.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}
