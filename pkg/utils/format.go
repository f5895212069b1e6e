// Package utils provides shared utility functions.
package utils

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Unset markers mirrored from the protocol so this package stays free of
// internal imports.
const (
	unsetFloat = math.MaxFloat64
	unsetInt   = math.MaxInt32
	unsetLong  = math.MaxInt64
)

var unsetDecimal = decimal.RequireFromString("170141183460469231731687303715884105727")

// Placeholder is printed for values the gateway did not send.
const Placeholder = "-"

// FormatMoney formats an amount with thousands separators, two decimals and an
// optional currency suffix.
func FormatMoney(amount float64, currency string) string {
	if amount == unsetFloat || math.IsNaN(amount) {
		return Placeholder
	}
	negative := amount < 0
	if negative {
		amount = -amount
	}

	str := fmt.Sprintf("%.2f", amount)
	parts := strings.Split(str, ".")
	result := groupThousands(parts[0]) + "." + parts[1]
	if negative {
		result = "-" + result
	}
	if currency != "" {
		result += " " + currency
	}
	return result
}

// groupThousands inserts commas every three digits from the right.
func groupThousands(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}

	var b strings.Builder
	head := n % 3
	if head > 0 {
		b.WriteString(s[:head])
	}
	for i := head; i < n; i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// FormatPercent formats a percentage with sign.
func FormatPercent(value float64) string {
	sign := ""
	if value > 0 {
		sign = "+"
	}
	return fmt.Sprintf("%s%.2f%%", sign, value)
}

// FormatPnL formats P&L with an explicit sign.
func FormatPnL(pnl float64) string {
	formatted := FormatMoney(pnl, "")
	if pnl > 0 && pnl != unsetFloat {
		return "+" + formatted
	}
	return formatted
}

// FormatPrice formats a price, keeping four decimals below 10.
func FormatPrice(price float64) string {
	switch {
	case price == unsetFloat || math.IsNaN(price):
		return Placeholder
	case math.IsInf(price, 1):
		return "Infinity"
	case math.Abs(price) >= 10:
		return fmt.Sprintf("%.2f", price)
	}
	return fmt.Sprintf("%.4f", price)
}

// FormatQuantity formats a decimal quantity.
func FormatQuantity(qty decimal.Decimal) string {
	if qty.Equal(unsetDecimal) {
		return Placeholder
	}
	return qty.String()
}

// FormatInt formats an integer field.
func FormatInt(v int64) string {
	if v == unsetInt || v == unsetLong {
		return Placeholder
	}
	return fmt.Sprintf("%d", v)
}

// FormatCompact formats a number in compact form (K/M/B).
func FormatCompact(amount float64) string {
	abs := math.Abs(amount)
	switch {
	case abs >= 1e9:
		return fmt.Sprintf("%.2fB", amount/1e9)
	case abs >= 1e6:
		return fmt.Sprintf("%.2fM", amount/1e6)
	case abs >= 1e3:
		return fmt.Sprintf("%.2fK", amount/1e3)
	}
	return fmt.Sprintf("%.2f", amount)
}

// TruncateString truncates a string to max length with ellipsis.
func TruncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
