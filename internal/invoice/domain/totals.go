package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ComputeTotals derives the monetary summary for the given items and
// jurisdiction. It is pure and never fails: a quantity or price that does
// not parse contributes zero, so live totals always render mid-edit.
// An empty or unknown jurisdiction yields a zero tax rate.
func ComputeTotals(items []LineItem, jurisdiction string, rates RateTable) Totals {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(lineAmount(item))
	}

	rate := decimal.Zero
	if jurisdiction = strings.TrimSpace(jurisdiction); jurisdiction != "" && rates != nil {
		if found, ok := rates.Lookup(jurisdiction); ok {
			rate = found
		}
	}

	taxAmount := subtotal.Mul(rate)
	return Totals{
		Subtotal:  subtotal,
		TaxRate:   rate,
		TaxAmount: taxAmount,
		Total:     subtotal.Add(taxAmount),
	}
}

func lineAmount(item LineItem) decimal.Decimal {
	return numericOrZero(item.Quantity).Mul(numericOrZero(item.Price))
}

// numericOrZero coerces raw editor input to a decimal, defaulting to zero.
// This prefilter belongs to the calculator only; the validator judges the
// raw value instead of defaulting it.
func numericOrZero(raw string) decimal.Decimal {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero
	}
	return value
}
