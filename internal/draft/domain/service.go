// Package domain defines the draft editing-session contract.
package domain

import (
	"context"
	"errors"
	"time"

	invoicedomain "github.com/smallbiznis/invoicedesk/internal/invoice/domain"
)

// DraftView is the state returned to the presentation layer after every
// read or mutation: the current draft plus freshly derived totals.
type DraftView struct {
	ID        string                  `json:"id"`
	Invoice   invoicedomain.Invoice   `json:"invoice"`
	Totals    invoicedomain.Totals    `json:"totals"`
	CreatedAt time.Time               `json:"created_at"`
	UpdatedAt time.Time               `json:"updated_at"`
}

// UpdateInvoiceRequest patches top-level invoice fields. Nil means
// unchanged.
type UpdateInvoiceRequest struct {
	ID              string
	InvoiceNumber   *string
	FromName        *string
	FromAddress     *string
	ToName          *string
	ToAddress       *string
	InvoiceDate     *time.Time
	DueDate         *time.Time
	TaxJurisdiction *string
	Notes           *string
}

// UpdateItemRequest patches one line item, addressed by its stable row id.
type UpdateItemRequest struct {
	ID          string
	ItemID      string
	Description *string
	Quantity    *string
	Price       *string
}

// SubmitResult is the outcome of a submission attempt: exactly one of
// Invoice or FieldErrors is set.
type SubmitResult struct {
	Invoice     *invoicedomain.ValidatedInvoice `json:"invoice,omitempty"`
	FieldErrors invoicedomain.FieldErrors       `json:"field_errors,omitempty"`
}

type Service interface {
	Create(ctx context.Context) (DraftView, error)
	Get(ctx context.Context, id string) (DraftView, error)
	UpdateInvoice(ctx context.Context, req UpdateInvoiceRequest) (DraftView, error)
	AppendItem(ctx context.Context, id string) (DraftView, error)
	RemoveItemAt(ctx context.Context, id string, index int) (DraftView, error)
	RemoveItemByID(ctx context.Context, id, itemID string) (DraftView, error)
	UpdateItem(ctx context.Context, req UpdateItemRequest) (DraftView, error)
	Totals(ctx context.Context, id string) (invoicedomain.Totals, error)
	Submit(ctx context.Context, id string) (SubmitResult, error)
	Discard(ctx context.Context, id string) error
}

var (
	ErrInvalidDraftID  = errors.New("invalid_draft_id")
	ErrDraftNotFound   = errors.New("draft_not_found")
	ErrInvalidItemID   = errors.New("invalid_item_id")
	ErrItemNotFound    = errors.New("item_not_found")
	ErrIndexOutOfRange = errors.New("index_out_of_range")
)
