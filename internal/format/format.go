// Package format turns raw amounts and dates into display strings.
package format

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	dateLayout     = "02/01/2006"
	dateTimeLayout = "02/01/2006 15:04"
)

// Currency renders an amount with two decimals, a dollar sign and thousands
// separators, e.g. "$1,234.56" or "-$5.00".
func Currency(v decimal.Decimal) string {
	sign := ""
	if v.IsNegative() {
		sign = "-"
		v = v.Neg()
	}
	fixed := v.StringFixed(2)
	intPart, frac, _ := strings.Cut(fixed, ".")
	return sign + "$" + groupThousands(intPart) + "." + frac
}

// Date renders a calendar date the way the backoffice shows it (dd/mm/yyyy).
// The zero time renders as an empty string.
func Date(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

// DateTime is Date plus hours and minutes.
func DateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateTimeLayout)
}

// Quantity renders an integer count with thousands separators.
func Quantity(n int) string {
	if n < 0 {
		return "-" + groupThousands(strconv.Itoa(-n))
	}
	return groupThousands(strconv.Itoa(n))
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
