// Package domain defines the invoice data model and its derivation rules.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// RateTable is the jurisdiction tax lookup collaborator. Absence of a
// jurisdiction key means zero tax, never an error.
type RateTable interface {
	Lookup(jurisdiction string) (decimal.Decimal, bool)
}

// LineItem is one billable row of a draft invoice. Quantity and Price hold
// the raw text as entered so a partially filled row round-trips unchanged;
// parsing happens in the calculator and the validator, with different rules.
type LineItem struct {
	ID          snowflake.ID `json:"id"`
	Description string       `json:"description"`
	Quantity    string       `json:"quantity"`
	Price       string       `json:"price"`
}

// NewLineItem returns a line item with the canonical defaults for a fresh row.
func NewLineItem(id snowflake.ID) LineItem {
	return LineItem{
		ID:       id,
		Quantity: "1",
		Price:    "0",
	}
}

// Invoice is the mutable draft document being edited.
type Invoice struct {
	InvoiceNumber   string     `json:"invoice_number"`
	FromName        string     `json:"from_name"`
	FromAddress     string     `json:"from_address"`
	ToName          string     `json:"to_name"`
	ToAddress       string     `json:"to_address"`
	InvoiceDate     *time.Time `json:"invoice_date"`
	DueDate         *time.Time `json:"due_date"`
	Items           []LineItem `json:"items"`
	TaxJurisdiction string     `json:"tax_jurisdiction"`
	Notes           string     `json:"notes"`
}

// Clone returns a deep copy so callers never share the items slice.
func (inv Invoice) Clone() Invoice {
	out := inv
	if inv.InvoiceDate != nil {
		d := *inv.InvoiceDate
		out.InvoiceDate = &d
	}
	if inv.DueDate != nil {
		d := *inv.DueDate
		out.DueDate = &d
	}
	out.Items = make([]LineItem, len(inv.Items))
	copy(out.Items, inv.Items)
	return out
}

// Totals is the pure derivation of an invoice's monetary summary. Values
// keep full precision; rounding happens only at display.
type Totals struct {
	Subtotal  decimal.Decimal `json:"subtotal"`
	TaxRate   decimal.Decimal `json:"tax_rate"`
	TaxAmount decimal.Decimal `json:"tax_amount"`
	Total     decimal.Decimal `json:"total"`
}

// ValidatedLineItem is a line item snapshot with parsed numeric fields.
type ValidatedLineItem struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	Amount      decimal.Decimal `json:"amount"`
}

// ValidatedInvoice is an immutable snapshot that passed every field rule.
// It is safe to hand to export collaborators as a fully populated record.
type ValidatedInvoice struct {
	InvoiceNumber   string              `json:"invoice_number"`
	FromName        string              `json:"from_name"`
	FromAddress     string              `json:"from_address"`
	ToName          string              `json:"to_name"`
	ToAddress       string              `json:"to_address"`
	InvoiceDate     time.Time           `json:"invoice_date"`
	DueDate         time.Time           `json:"due_date"`
	Items           []ValidatedLineItem `json:"items"`
	TaxJurisdiction string              `json:"tax_jurisdiction,omitempty"`
	Notes           string              `json:"notes,omitempty"`
	Totals          Totals              `json:"totals"`
	ValidatedAt     time.Time           `json:"validated_at"`
}
