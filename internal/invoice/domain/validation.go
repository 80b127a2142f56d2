package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Validation error codes. Every violation is recoverable and user-facing.
var (
	ErrRequiredFieldMissing = errors.New("required_field_missing")
	ErrInvalidRange         = errors.New("invalid_range")
	ErrEmptyCollection      = errors.New("empty_collection")
)

// FieldError is one violation on a single field path.
type FieldError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// FieldErrors maps field paths (e.g. "from_name", "items[2].quantity") to
// their violations. Validation collects every failing field; submission is
// all-or-nothing.
type FieldErrors map[string]FieldError

func (fe FieldErrors) Error() string {
	paths := make([]string, 0, len(fe))
	for path := range fe {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return fmt.Sprintf("validation failed: %s", strings.Join(paths, ", "))
}

func (fe FieldErrors) add(path, message string, code error) {
	fe[path] = FieldError{Code: code.Error(), Message: message}
}

// Validate checks every field rule against the raw draft. On success it
// returns an immutable snapshot with totals computed at validation time;
// on failure it returns the full set of field errors. Validating the same
// invoice twice yields the same result.
func Validate(inv Invoice, rates RateTable, now time.Time) (*ValidatedInvoice, FieldErrors) {
	errs := FieldErrors{}

	requireText(errs, "invoice_number", inv.InvoiceNumber, "invoice number is required")
	requireText(errs, "from_name", inv.FromName, "sender name is required")
	requireText(errs, "from_address", inv.FromAddress, "sender address is required")
	requireText(errs, "to_name", inv.ToName, "recipient name is required")
	requireText(errs, "to_address", inv.ToAddress, "recipient address is required")

	if inv.InvoiceDate == nil {
		errs.add("invoice_date", "invoice date is required", ErrRequiredFieldMissing)
	}
	if inv.DueDate == nil {
		errs.add("due_date", "due date is required", ErrRequiredFieldMissing)
	}

	items := make([]ValidatedLineItem, 0, len(inv.Items))
	if len(inv.Items) == 0 {
		errs.add("items", "at least one line item is required", ErrEmptyCollection)
	}
	for i, item := range inv.Items {
		items = append(items, validateItem(errs, i, item))
	}

	if len(errs) > 0 {
		return nil, errs
	}

	totals := ComputeTotals(inv.Items, inv.TaxJurisdiction, rates)
	return &ValidatedInvoice{
		InvoiceNumber:   strings.TrimSpace(inv.InvoiceNumber),
		FromName:        strings.TrimSpace(inv.FromName),
		FromAddress:     strings.TrimSpace(inv.FromAddress),
		ToName:          strings.TrimSpace(inv.ToName),
		ToAddress:       strings.TrimSpace(inv.ToAddress),
		InvoiceDate:     *inv.InvoiceDate,
		DueDate:         *inv.DueDate,
		Items:           items,
		TaxJurisdiction: strings.TrimSpace(inv.TaxJurisdiction),
		Notes:           inv.Notes,
		Totals:          totals,
		ValidatedAt:     now,
	}, nil
}

func requireText(errs FieldErrors, path, value, message string) {
	if strings.TrimSpace(value) == "" {
		errs.add(path, message, ErrRequiredFieldMissing)
	}
}

func validateItem(errs FieldErrors, index int, item LineItem) ValidatedLineItem {
	out := ValidatedLineItem{Description: strings.TrimSpace(item.Description)}

	if out.Description == "" {
		errs.add(itemPath(index, "description"), "description is required", ErrRequiredFieldMissing)
	}

	quantity, err := decimal.NewFromString(strings.TrimSpace(item.Quantity))
	if err != nil || quantity.LessThanOrEqual(decimal.Zero) {
		errs.add(itemPath(index, "quantity"), "quantity must be a number greater than zero", ErrInvalidRange)
	} else {
		out.Quantity = quantity
	}

	price, err := decimal.NewFromString(strings.TrimSpace(item.Price))
	if err != nil || price.IsNegative() {
		errs.add(itemPath(index, "price"), "price must be a number of at least zero", ErrInvalidRange)
	} else {
		out.Price = price
	}

	out.Amount = out.Quantity.Mul(out.Price)
	return out
}

func itemPath(index int, field string) string {
	return fmt.Sprintf("items[%d].%s", index, field)
}
