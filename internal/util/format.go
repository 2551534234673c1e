package util

import (
	"strings"

	"github.com/shopspring/decimal"
)

const moneyPlaces = 2

// FormatMoney renders value with two decimals, grouping the integer part in
// thousands.
func FormatMoney(value decimal.Decimal, thousand, decimalSeparator string) string {
	fixed := value.Abs().StringFixed(moneyPlaces)
	integer, fraction, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	if value.Round(moneyPlaces).IsNegative() {
		b.WriteString("-")
	}

	// for each 3 digits put the thousand separator
	for i, digit := range integer {
		if i > 0 && (len(integer)-i)%3 == 0 {
			b.WriteString(thousand)
		}
		b.WriteRune(digit)
	}

	b.WriteString(decimalSeparator)
	b.WriteString(fraction)

	return b.String()
}
