package service

import (
	"context"
	"reflect"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/invoicedesk/internal/clock"
	draftdomain "github.com/smallbiznis/invoicedesk/internal/draft/domain"
	taxdomain "github.com/smallbiznis/invoicedesk/internal/taxrate/domain"
	"go.uber.org/zap"
)

type staticTaxService struct {
	table taxdomain.Table
}

func (s staticTaxService) List(ctx context.Context) ([]taxdomain.TaxRate, error) {
	return nil, nil
}

func (s staticTaxService) Table(ctx context.Context) (taxdomain.Table, error) {
	return s.table, nil
}

func newDraftTestService(t *testing.T) draftdomain.Service {
	t.Helper()
	node, err := snowflake.NewNode(2)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}
	table := taxdomain.NewTable([]taxdomain.TaxRate{
		{ID: 1, Code: "CA", Rate: decimal.RequireFromString("0.0725"), IsEnabled: true},
	})
	return NewService(ServiceParam{
		Log:    zap.NewNop(),
		Clock:  clock.Fixed{At: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)},
		GenID:  node,
		Store:  NewStore(),
		TaxSvc: staticTaxService{table: table},
	})
}

func strptr(s string) *string { return &s }

// seedDraft fills a fresh draft with the two-line California scenario and
// returns the resulting view.
func seedDraft(t *testing.T, svc draftdomain.Service) draftdomain.DraftView {
	t.Helper()
	ctx := context.Background()

	view, err := svc.Create(ctx)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	invoiceDate := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	dueDate := time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC)
	view, err = svc.UpdateInvoice(ctx, draftdomain.UpdateInvoiceRequest{
		ID:              view.ID,
		FromName:        strptr("Acme Studio"),
		FromAddress:     strptr("1 Main St"),
		ToName:          strptr("Globex"),
		ToAddress:       strptr("2 Oak Ave"),
		InvoiceDate:     &invoiceDate,
		DueDate:         &dueDate,
		TaxJurisdiction: strptr("CA"),
	})
	if err != nil {
		t.Fatalf("update invoice: %v", err)
	}

	view, err = svc.UpdateItem(ctx, draftdomain.UpdateItemRequest{
		ID:          view.ID,
		ItemID:      view.Invoice.Items[0].ID.String(),
		Description: strptr("Design work"),
		Quantity:    strptr("2"),
		Price:       strptr("150.00"),
	})
	if err != nil {
		t.Fatalf("update item: %v", err)
	}

	view, err = svc.AppendItem(ctx, view.ID)
	if err != nil {
		t.Fatalf("append item: %v", err)
	}
	view, err = svc.UpdateItem(ctx, draftdomain.UpdateItemRequest{
		ID:          view.ID,
		ItemID:      view.Invoice.Items[1].ID.String(),
		Description: strptr("Hosting"),
		Quantity:    strptr("1"),
		Price:       strptr("50.00"),
	})
	if err != nil {
		t.Fatalf("update item: %v", err)
	}
	return view
}

func TestCreateDefaults(t *testing.T) {
	svc := newDraftTestService(t)

	view, err := svc.Create(context.Background())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if view.ID == "" {
		t.Fatal("expected draft id")
	}
	if len(view.Invoice.Items) != 1 {
		t.Fatalf("expected one starter item, got %d", len(view.Invoice.Items))
	}

	item := view.Invoice.Items[0]
	if item.ID == 0 {
		t.Fatal("expected row id on starter item")
	}
	if item.Description != "" || item.Quantity != "1" || item.Price != "0" {
		t.Fatalf("unexpected defaults: %+v", item)
	}
	if !view.Totals.Total.IsZero() {
		t.Fatalf("expected zero total, got %s", view.Totals.Total)
	}
}

func TestTotalsRecomputeOnEveryView(t *testing.T) {
	svc := newDraftTestService(t)
	view := seedDraft(t, svc)

	if want := decimal.RequireFromString("350"); !view.Totals.Subtotal.Equal(want) {
		t.Fatalf("subtotal = %s, want %s", view.Totals.Subtotal, want)
	}
	if want := decimal.RequireFromString("25.375"); !view.Totals.TaxAmount.Equal(want) {
		t.Fatalf("tax = %s, want %s", view.Totals.TaxAmount, want)
	}
	if want := decimal.RequireFromString("375.375"); !view.Totals.Total.Equal(want) {
		t.Fatalf("total = %s, want %s", view.Totals.Total, want)
	}

	totals, err := svc.Totals(context.Background(), view.ID)
	if err != nil {
		t.Fatalf("totals: %v", err)
	}
	if !totals.Total.Equal(view.Totals.Total) {
		t.Fatalf("totals endpoint disagrees: %s vs %s", totals.Total, view.Totals.Total)
	}
}

func TestAppendThenRemoveByIDRestoresState(t *testing.T) {
	svc := newDraftTestService(t)
	view := seedDraft(t, svc)
	ctx := context.Background()

	before := view.Invoice.Items
	beforeTotal := view.Totals.Total

	view, err := svc.AppendItem(ctx, view.ID)
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if len(view.Invoice.Items) != len(before)+1 {
		t.Fatalf("expected %d items after append, got %d", len(before)+1, len(view.Invoice.Items))
	}
	appended := view.Invoice.Items[len(view.Invoice.Items)-1]

	view, err = svc.RemoveItemByID(ctx, view.ID, appended.ID.String())
	if err != nil {
		t.Fatalf("remove by id: %v", err)
	}
	if !reflect.DeepEqual(view.Invoice.Items, before) {
		t.Fatalf("items not restored:\n got %+v\nwant %+v", view.Invoice.Items, before)
	}
	if !view.Totals.Total.Equal(beforeTotal) {
		t.Fatalf("total = %s, want %s", view.Totals.Total, beforeTotal)
	}
}

func TestRemoveItemAt(t *testing.T) {
	svc := newDraftTestService(t)
	view := seedDraft(t, svc)
	ctx := context.Background()

	if _, err := svc.RemoveItemAt(ctx, view.ID, 2); err != draftdomain.ErrIndexOutOfRange {
		t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
	}
	if _, err := svc.RemoveItemAt(ctx, view.ID, -1); err != draftdomain.ErrIndexOutOfRange {
		t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
	}

	view, err := svc.RemoveItemAt(ctx, view.ID, 0)
	if err != nil {
		t.Fatalf("remove at: %v", err)
	}
	if len(view.Invoice.Items) != 1 {
		t.Fatalf("expected one item, got %d", len(view.Invoice.Items))
	}
	if view.Invoice.Items[0].Description != "Hosting" {
		t.Fatalf("removed wrong row, remaining %+v", view.Invoice.Items[0])
	}

	// Removing the last row is allowed; the minimum-items rule only
	// applies at submission.
	view, err = svc.RemoveItemAt(ctx, view.ID, 0)
	if err != nil {
		t.Fatalf("remove last: %v", err)
	}
	if len(view.Invoice.Items) != 0 {
		t.Fatalf("expected empty items, got %d", len(view.Invoice.Items))
	}
}

func TestRemoveItemByIDErrors(t *testing.T) {
	svc := newDraftTestService(t)
	view := seedDraft(t, svc)
	ctx := context.Background()

	if _, err := svc.RemoveItemByID(ctx, view.ID, "not-a-row-id"); err != draftdomain.ErrInvalidItemID {
		t.Fatalf("expected ErrInvalidItemID, got %v", err)
	}
	if _, err := svc.RemoveItemByID(ctx, view.ID, "12345"); err != draftdomain.ErrItemNotFound {
		t.Fatalf("expected ErrItemNotFound, got %v", err)
	}
}

func TestGetErrors(t *testing.T) {
	svc := newDraftTestService(t)
	ctx := context.Background()

	if _, err := svc.Get(ctx, "not-an-id"); err != draftdomain.ErrInvalidDraftID {
		t.Fatalf("expected ErrInvalidDraftID, got %v", err)
	}
	if _, err := svc.Get(ctx, "98765"); err != draftdomain.ErrDraftNotFound {
		t.Fatalf("expected ErrDraftNotFound, got %v", err)
	}
}

func TestSubmitValidated(t *testing.T) {
	svc := newDraftTestService(t)
	view := seedDraft(t, svc)

	result, err := svc.Submit(context.Background(), view.ID)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.FieldErrors != nil {
		t.Fatalf("unexpected field errors: %v", result.FieldErrors)
	}
	if result.Invoice == nil {
		t.Fatal("expected validated invoice")
	}
	if want := decimal.RequireFromString("375.375"); !result.Invoice.Totals.Total.Equal(want) {
		t.Fatalf("total = %s, want %s", result.Invoice.Totals.Total, want)
	}
	if got := result.Invoice.Totals.TaxAmount.StringFixed(2); got != "25.38" {
		t.Fatalf("display tax = %s, want 25.38", got)
	}
}

func TestSubmitRejectedKeepsDraftEditable(t *testing.T) {
	svc := newDraftTestService(t)
	ctx := context.Background()

	view, err := svc.Create(ctx)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	result, err := svc.Submit(ctx, view.ID)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.Invoice != nil {
		t.Fatal("expected rejection")
	}
	if len(result.FieldErrors) == 0 {
		t.Fatal("expected field errors")
	}
	if fe, ok := result.FieldErrors["from_name"]; !ok || fe.Code != "required_field_missing" {
		t.Fatalf("expected required_field_missing on from_name, got %v", result.FieldErrors)
	}

	// Rejection does not consume the draft.
	if _, err := svc.Get(ctx, view.ID); err != nil {
		t.Fatalf("get after rejection: %v", err)
	}
}

func TestDiscard(t *testing.T) {
	svc := newDraftTestService(t)
	ctx := context.Background()

	view, err := svc.Create(ctx)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.Discard(ctx, view.ID); err != nil {
		t.Fatalf("discard: %v", err)
	}
	if err := svc.Discard(ctx, view.ID); err != draftdomain.ErrDraftNotFound {
		t.Fatalf("expected ErrDraftNotFound, got %v", err)
	}
	if _, err := svc.Get(ctx, view.ID); err != draftdomain.ErrDraftNotFound {
		t.Fatalf("expected ErrDraftNotFound, got %v", err)
	}
}

func TestConcurrentEditAndRead(t *testing.T) {
	svc := newDraftTestService(t)
	view := seedDraft(t, svc)
	ctx := context.Background()
	itemID := view.Invoice.Items[0].ID.String()

	// Handlers serve the same draft concurrently; views must copy session
	// state under the store lock instead of reading it live.
	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			quantity := strconv.Itoa(i + 1)
			if _, err := svc.UpdateItem(ctx, draftdomain.UpdateItemRequest{
				ID:       view.ID,
				ItemID:   itemID,
				Quantity: &quantity,
			}); err != nil {
				t.Errorf("update item: %v", err)
				return
			}
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			if _, err := svc.Get(ctx, view.ID); err != nil {
				t.Errorf("get: %v", err)
				return
			}
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			if _, err := svc.Submit(ctx, view.ID); err != nil {
				t.Errorf("submit: %v", err)
				return
			}
		}
	}()
	wg.Wait()

	final, err := svc.Get(ctx, view.ID)
	if err != nil {
		t.Fatalf("get after concurrent edits: %v", err)
	}
	if got := final.Invoice.Items[0].Quantity; got != "200" {
		t.Fatalf("quantity = %s, want 200", got)
	}
}

func TestStorePurgeIdle(t *testing.T) {
	store := NewStore()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	store.put(&session{id: 1, updatedAt: base.Add(-45 * time.Minute)})
	store.put(&session{id: 2, updatedAt: base.Add(-5 * time.Minute)})

	removed := store.PurgeIdle(base, 30*time.Minute)
	if removed != 1 {
		t.Fatalf("purged %d, want 1", removed)
	}
	if store.Len() != 1 {
		t.Fatalf("len = %d, want 1", store.Len())
	}
	if _, ok := store.get(2); !ok {
		t.Fatal("fresh session was purged")
	}
}
