package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/invoicedesk/internal/clock"
	draftdomain "github.com/smallbiznis/invoicedesk/internal/draft/domain"
	"github.com/smallbiznis/invoicedesk/internal/events"
	invoicedomain "github.com/smallbiznis/invoicedesk/internal/invoice/domain"
	"github.com/smallbiznis/invoicedesk/internal/observability/metrics"
	taxdomain "github.com/smallbiznis/invoicedesk/internal/taxrate/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var errSessionMissing = errors.New("session_missing")

type Service struct {
	log   *zap.Logger
	clock clock.Clock

	genID  *snowflake.Node
	store  *Store
	taxSvc taxdomain.Service
	outbox *events.Outbox
}

type ServiceParam struct {
	fx.In

	Log    *zap.Logger
	Clock  clock.Clock
	GenID  *snowflake.Node
	Store  *Store
	TaxSvc taxdomain.Service
	Outbox *events.Outbox `optional:"true"`
}

func NewService(p ServiceParam) draftdomain.Service {
	return &Service{
		log:    p.Log.Named("draft.service"),
		clock:  p.Clock,
		genID:  p.GenID,
		store:  p.Store,
		taxSvc: p.TaxSvc,
		outbox: p.Outbox,
	}
}

func (s *Service) Create(ctx context.Context) (draftdomain.DraftView, error) {
	now := s.clock.Now()
	id := s.genID.Generate()

	snap := s.store.put(&session{
		id: id,
		invoice: invoicedomain.Invoice{
			InvoiceNumber: fmt.Sprintf("INV-%s", id),
			Items:         []invoicedomain.LineItem{invoicedomain.NewLineItem(s.genID.Generate())},
		},
		createdAt: now,
		updatedAt: now,
	})
	metrics.Submission().SetActiveDrafts(s.store.Len())
	s.publishSubmission(ctx, id, events.EventDraftCreated, events.SubmissionPayload{
		DraftID: id.String(),
	}.ToMap())

	s.log.Info("draft created", zap.String("draft_id", id.String()))
	return s.view(ctx, snap)
}

func (s *Service) Get(ctx context.Context, id string) (draftdomain.DraftView, error) {
	draftID, err := parseDraftID(id)
	if err != nil {
		return draftdomain.DraftView{}, err
	}
	snap, ok := s.store.get(draftID)
	if !ok {
		return draftdomain.DraftView{}, draftdomain.ErrDraftNotFound
	}
	return s.view(ctx, snap)
}

func (s *Service) UpdateInvoice(ctx context.Context, req draftdomain.UpdateInvoiceRequest) (draftdomain.DraftView, error) {
	return s.mutate(ctx, req.ID, func(sess *session) error {
		inv := &sess.invoice
		applyString(&inv.InvoiceNumber, req.InvoiceNumber)
		applyString(&inv.FromName, req.FromName)
		applyString(&inv.FromAddress, req.FromAddress)
		applyString(&inv.ToName, req.ToName)
		applyString(&inv.ToAddress, req.ToAddress)
		applyString(&inv.Notes, req.Notes)
		if req.TaxJurisdiction != nil {
			inv.TaxJurisdiction = strings.TrimSpace(*req.TaxJurisdiction)
		}
		if req.InvoiceDate != nil {
			d := *req.InvoiceDate
			inv.InvoiceDate = &d
		}
		if req.DueDate != nil {
			d := *req.DueDate
			inv.DueDate = &d
		}
		return nil
	})
}

func (s *Service) AppendItem(ctx context.Context, id string) (draftdomain.DraftView, error) {
	return s.mutate(ctx, id, func(sess *session) error {
		sess.invoice.Items = append(sess.invoice.Items, invoicedomain.NewLineItem(s.genID.Generate()))
		return nil
	})
}

func (s *Service) RemoveItemAt(ctx context.Context, id string, index int) (draftdomain.DraftView, error) {
	return s.mutate(ctx, id, func(sess *session) error {
		items := sess.invoice.Items
		if index < 0 || index >= len(items) {
			return draftdomain.ErrIndexOutOfRange
		}
		sess.invoice.Items = append(items[:index], items[index+1:]...)
		return nil
	})
}

func (s *Service) RemoveItemByID(ctx context.Context, id, itemID string) (draftdomain.DraftView, error) {
	rowID, err := snowflake.ParseString(strings.TrimSpace(itemID))
	if err != nil {
		return draftdomain.DraftView{}, draftdomain.ErrInvalidItemID
	}
	return s.mutate(ctx, id, func(sess *session) error {
		for i, item := range sess.invoice.Items {
			if item.ID == rowID {
				sess.invoice.Items = append(sess.invoice.Items[:i], sess.invoice.Items[i+1:]...)
				return nil
			}
		}
		return draftdomain.ErrItemNotFound
	})
}

func (s *Service) UpdateItem(ctx context.Context, req draftdomain.UpdateItemRequest) (draftdomain.DraftView, error) {
	rowID, err := snowflake.ParseString(strings.TrimSpace(req.ItemID))
	if err != nil {
		return draftdomain.DraftView{}, draftdomain.ErrInvalidItemID
	}
	return s.mutate(ctx, req.ID, func(sess *session) error {
		for i := range sess.invoice.Items {
			if sess.invoice.Items[i].ID != rowID {
				continue
			}
			item := &sess.invoice.Items[i]
			applyString(&item.Description, req.Description)
			applyString(&item.Quantity, req.Quantity)
			applyString(&item.Price, req.Price)
			return nil
		}
		return draftdomain.ErrItemNotFound
	})
}

func (s *Service) Totals(ctx context.Context, id string) (invoicedomain.Totals, error) {
	view, err := s.Get(ctx, id)
	if err != nil {
		return invoicedomain.Totals{}, err
	}
	return view.Totals, nil
}

func (s *Service) Submit(ctx context.Context, id string) (draftdomain.SubmitResult, error) {
	draftID, err := parseDraftID(id)
	if err != nil {
		return draftdomain.SubmitResult{}, err
	}
	snap, ok := s.store.get(draftID)
	if !ok {
		return draftdomain.SubmitResult{}, draftdomain.ErrDraftNotFound
	}

	table, err := s.taxSvc.Table(ctx)
	if err != nil {
		return draftdomain.SubmitResult{}, err
	}

	now := s.clock.Now()
	validated, fieldErrs := invoicedomain.Validate(snap.invoice, table, now)
	if fieldErrs != nil {
		metrics.Submission().RecordSubmission("rejected", len(fieldErrs))
		s.publishSubmission(ctx, draftID, events.EventInvoiceRejected, events.SubmissionPayload{
			DraftID:         draftID.String(),
			FieldErrorCount: len(fieldErrs),
		}.ToMap())
		s.log.Info("draft rejected",
			zap.String("draft_id", id),
			zap.Int("field_errors", len(fieldErrs)),
		)
		return draftdomain.SubmitResult{FieldErrors: fieldErrs}, nil
	}

	metrics.Submission().RecordSubmission("validated", 0)
	s.publishSubmission(ctx, draftID, events.EventInvoiceValidated, events.SubmissionPayload{
		DraftID:       draftID.String(),
		InvoiceNumber: validated.InvoiceNumber,
		Total:         validated.Totals.Total.String(),
	}.ToMap())
	s.log.Info("draft validated",
		zap.String("draft_id", id),
		zap.String("total", validated.Totals.Total.String()),
	)
	return draftdomain.SubmitResult{Invoice: validated}, nil
}

func (s *Service) Discard(ctx context.Context, id string) error {
	draftID, err := parseDraftID(id)
	if err != nil {
		return err
	}
	if !s.store.delete(draftID) {
		return draftdomain.ErrDraftNotFound
	}
	metrics.Submission().SetActiveDrafts(s.store.Len())
	s.publishSubmission(ctx, draftID, events.EventDraftDiscarded, events.SubmissionPayload{
		DraftID: draftID.String(),
	}.ToMap())
	s.log.Info("draft discarded", zap.String("draft_id", id))
	return nil
}

func (s *Service) mutate(ctx context.Context, id string, fn func(*session) error) (draftdomain.DraftView, error) {
	draftID, err := parseDraftID(id)
	if err != nil {
		return draftdomain.DraftView{}, err
	}
	snap, err := s.store.mutate(draftID, s.clock.Now(), fn)
	if err != nil {
		if errors.Is(err, errSessionMissing) {
			return draftdomain.DraftView{}, draftdomain.ErrDraftNotFound
		}
		return draftdomain.DraftView{}, err
	}
	return s.view(ctx, snap)
}

// view derives totals from the snapshot's items and jurisdiction. Totals
// are recomputed here on every call, never stored.
func (s *Service) view(ctx context.Context, snap snapshot) (draftdomain.DraftView, error) {
	table, err := s.taxSvc.Table(ctx)
	if err != nil {
		return draftdomain.DraftView{}, err
	}
	return draftdomain.DraftView{
		ID:        snap.id.String(),
		Invoice:   snap.invoice,
		Totals:    invoicedomain.ComputeTotals(snap.invoice.Items, snap.invoice.TaxJurisdiction, table),
		CreatedAt: snap.createdAt,
		UpdatedAt: snap.updatedAt,
	}, nil
}

func (s *Service) publishSubmission(ctx context.Context, draftID snowflake.ID, eventType string, payload map[string]any) {
	if s.outbox == nil {
		return
	}
	if err := s.outbox.Publish(ctx, events.Event{
		DraftID: draftID,
		Type:    eventType,
		Payload: payload,
	}); err != nil {
		s.log.Warn("submission event publish failed", zap.Error(err))
	}
}

func parseDraftID(raw string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil {
		return 0, draftdomain.ErrInvalidDraftID
	}
	return id, nil
}

func applyString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
