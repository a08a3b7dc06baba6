package utils

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// FormatCurrencyINR formats a decimal amount as Indian Rupees for emails.
// Example: 1500.5 -> "₹1500.50"
func FormatCurrencyINR(amount decimal.Decimal) string {
	return fmt.Sprintf("₹%s", amount.StringFixed(2))
}
