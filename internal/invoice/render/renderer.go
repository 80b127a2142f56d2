// Package render turns validated invoices into export documents. It only
// consumes fully populated snapshots; rounding to display currency happens
// here, never in the engine.
package render

import (
	"time"

	"github.com/shopspring/decimal"
	invoicedomain "github.com/smallbiznis/invoicedesk/internal/invoice/domain"
)

// RenderInput is the deterministic input used for invoice rendering.
type RenderInput struct {
	Invoice InvoiceView
	Items   []LineItemView
	Totals  TotalsView
}

type InvoiceView struct {
	Number          string
	FromName        string
	FromAddress     string
	ToName          string
	ToAddress       string
	InvoiceDate     time.Time
	DueDate         time.Time
	TaxJurisdiction string
	Notes           string
}

type LineItemView struct {
	Description string
	Quantity    decimal.Decimal
	Price       decimal.Decimal
	Amount      decimal.Decimal
}

type TotalsView struct {
	Subtotal  decimal.Decimal
	TaxRate   decimal.Decimal
	TaxAmount decimal.Decimal
	Total     decimal.Decimal
	HasTax    bool
}

// NewRenderInput maps a validated snapshot into the renderer's view model.
func NewRenderInput(snapshot *invoicedomain.ValidatedInvoice) RenderInput {
	items := make([]LineItemView, 0, len(snapshot.Items))
	for _, item := range snapshot.Items {
		items = append(items, LineItemView{
			Description: item.Description,
			Quantity:    item.Quantity,
			Price:       item.Price,
			Amount:      item.Amount,
		})
	}
	return RenderInput{
		Invoice: InvoiceView{
			Number:          snapshot.InvoiceNumber,
			FromName:        snapshot.FromName,
			FromAddress:     snapshot.FromAddress,
			ToName:          snapshot.ToName,
			ToAddress:       snapshot.ToAddress,
			InvoiceDate:     snapshot.InvoiceDate,
			DueDate:         snapshot.DueDate,
			TaxJurisdiction: snapshot.TaxJurisdiction,
			Notes:           snapshot.Notes,
		},
		Items: items,
		Totals: TotalsView{
			Subtotal:  snapshot.Totals.Subtotal,
			TaxRate:   snapshot.Totals.TaxRate,
			TaxAmount: snapshot.Totals.TaxAmount,
			Total:     snapshot.Totals.Total,
			HasTax:    !snapshot.Totals.TaxRate.IsZero(),
		},
	}
}

type Renderer interface {
	RenderHTML(input RenderInput) (string, error)
}
