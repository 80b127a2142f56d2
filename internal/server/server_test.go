package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/invoicedesk/internal/clock"
	draftservice "github.com/smallbiznis/invoicedesk/internal/draft/service"
	"github.com/smallbiznis/invoicedesk/internal/invoice/render"
	taxdomain "github.com/smallbiznis/invoicedesk/internal/taxrate/domain"
	"go.uber.org/zap"
)

type fakeTaxService struct {
	rates []taxdomain.TaxRate
}

func (f fakeTaxService) List(ctx context.Context) ([]taxdomain.TaxRate, error) {
	return f.rates, nil
}

func (f fakeTaxService) Table(ctx context.Context) (taxdomain.Table, error) {
	return taxdomain.NewTable(f.rates), nil
}

func newTestServer(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	node, err := snowflake.NewNode(5)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}
	taxSvc := fakeTaxService{rates: []taxdomain.TaxRate{
		{ID: 1, Code: "CA", Name: "California Sales Tax", Rate: decimal.RequireFromString("0.0725"), IsEnabled: true},
	}}
	draftSvc := draftservice.NewService(draftservice.ServiceParam{
		Log:    zap.NewNop(),
		Clock:  clock.Fixed{At: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)},
		GenID:  node,
		Store:  draftservice.NewStore(),
		TaxSvc: taxSvc,
	})

	engine := gin.New()
	srv := &Server{
		log:      zap.NewNop(),
		engine:   engine,
		draftSvc: draftSvc,
		taxSvc:   taxSvc,
		renderer: render.NewRenderer(),
	}
	srv.RegisterRoutes()
	return engine
}

func doRequest(t *testing.T, engine *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var envelope struct {
		Data map[string]any `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v\n%s", err, rec.Body.String())
	}
	return envelope.Data
}

// createDraft opens a session and returns its id plus the starter item id.
func createDraft(t *testing.T, engine *gin.Engine) (string, string) {
	t.Helper()
	rec := doRequest(t, engine, http.MethodPost, "/api/drafts", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("create draft status = %d: %s", rec.Code, rec.Body.String())
	}
	data := decodeData(t, rec)
	id, _ := data["id"].(string)
	invoice, _ := data["invoice"].(map[string]any)
	items, _ := invoice["items"].([]any)
	if id == "" || len(items) != 1 {
		t.Fatalf("unexpected create payload: %s", rec.Body.String())
	}
	first, _ := items[0].(map[string]any)
	itemID, _ := first["id"].(string)
	return id, itemID
}

func TestHealthz(t *testing.T) {
	engine := newTestServer(t)
	rec := doRequest(t, engine, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestListTaxRates(t *testing.T) {
	engine := newTestServer(t)
	rec := doRequest(t, engine, http.MethodGet, "/api/tax_rates", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"CA"`) {
		t.Fatalf("expected CA in response: %s", rec.Body.String())
	}
}

func TestDraftLifecycle(t *testing.T) {
	engine := newTestServer(t)
	id, itemID := createDraft(t, engine)

	rec := doRequest(t, engine, http.MethodPatch, "/api/drafts/"+id, `{
		"from_name": "Acme Studio",
		"from_address": "1 Main St",
		"to_name": "Globex",
		"to_address": "2 Oak Ave",
		"invoice_date": "2024-05-01",
		"due_date": "2024-05-31",
		"tax_jurisdiction": "CA"
	}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("update draft status = %d: %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, engine, http.MethodPatch, "/api/drafts/"+id+"/items/"+itemID, `{
		"description": "Design work",
		"quantity": "2",
		"price": "150.00"
	}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("update item status = %d: %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, engine, http.MethodPost, "/api/drafts/"+id+"/items", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("append item status = %d: %s", rec.Code, rec.Body.String())
	}
	data := decodeData(t, rec)
	invoice, _ := data["invoice"].(map[string]any)
	items, _ := invoice["items"].([]any)
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	second, _ := items[1].(map[string]any)
	secondID, _ := second["id"].(string)

	rec = doRequest(t, engine, http.MethodPatch, "/api/drafts/"+id+"/items/"+secondID, `{
		"description": "Hosting",
		"quantity": "1",
		"price": "50.00"
	}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("update item status = %d: %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, engine, http.MethodGet, "/api/drafts/"+id+"/totals", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("totals status = %d: %s", rec.Code, rec.Body.String())
	}
	totals := decodeData(t, rec)
	if totals["subtotal"] != "350" {
		t.Fatalf("subtotal = %v, want 350", totals["subtotal"])
	}
	if totals["tax_amount"] != "25.375" {
		t.Fatalf("tax_amount = %v, want 25.375", totals["tax_amount"])
	}
	if totals["total"] != "375.375" {
		t.Fatalf("total = %v, want 375.375", totals["total"])
	}

	rec = doRequest(t, engine, http.MethodPost, "/api/drafts/"+id+"/submit", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("submit status = %d: %s", rec.Code, rec.Body.String())
	}
	validated := decodeData(t, rec)
	if number, _ := validated["invoice_number"].(string); number == "" {
		t.Fatalf("missing invoice number: %s", rec.Body.String())
	}

	rec = doRequest(t, engine, http.MethodDelete, "/api/drafts/"+id, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("discard status = %d: %s", rec.Code, rec.Body.String())
	}
	rec = doRequest(t, engine, http.MethodGet, "/api/drafts/"+id, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status after discard = %d", rec.Code)
	}
}

func TestSubmitRejectedReturns422(t *testing.T) {
	engine := newTestServer(t)
	id, _ := createDraft(t, engine)

	rec := doRequest(t, engine, http.MethodPost, "/api/drafts/"+id+"/submit", "")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var envelope struct {
		Errors map[string]struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode errors: %v", err)
	}
	fe, ok := envelope.Errors["from_name"]
	if !ok || fe.Code != "required_field_missing" {
		t.Fatalf("expected required_field_missing on from_name: %s", rec.Body.String())
	}
}

func TestRemoveItemByIndex(t *testing.T) {
	engine := newTestServer(t)
	id, _ := createDraft(t, engine)

	rec := doRequest(t, engine, http.MethodDelete, "/api/drafts/"+id+"/items?index=5", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("out-of-range status = %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "index_out_of_range") {
		t.Fatalf("expected index_out_of_range: %s", rec.Body.String())
	}

	rec = doRequest(t, engine, http.MethodDelete, "/api/drafts/"+id+"/items?index=abc", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad index status = %d", rec.Code)
	}

	rec = doRequest(t, engine, http.MethodDelete, "/api/drafts/"+id+"/items?index=0", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("remove status = %d: %s", rec.Code, rec.Body.String())
	}
}

func TestDraftErrors(t *testing.T) {
	engine := newTestServer(t)

	rec := doRequest(t, engine, http.MethodGet, "/api/drafts/not-an-id", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid id status = %d", rec.Code)
	}

	rec = doRequest(t, engine, http.MethodGet, "/api/drafts/12345", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown id status = %d", rec.Code)
	}

	id, _ := createDraft(t, engine)
	rec = doRequest(t, engine, http.MethodPatch, "/api/drafts/"+id, `{bad json`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("malformed body status = %d", rec.Code)
	}
	rec = doRequest(t, engine, http.MethodPatch, "/api/drafts/"+id, `{"invoice_date": "05/01/2024"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad date status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "invalid_date") {
		t.Fatalf("expected invalid_date: %s", rec.Body.String())
	}
}

func TestRenderDraft(t *testing.T) {
	engine := newTestServer(t)
	id, itemID := createDraft(t, engine)

	doRequest(t, engine, http.MethodPatch, "/api/drafts/"+id, `{
		"from_name": "Acme Studio",
		"from_address": "1 Main St",
		"to_name": "Globex",
		"to_address": "2 Oak Ave",
		"invoice_date": "2024-05-01",
		"due_date": "2024-05-31",
		"tax_jurisdiction": "CA"
	}`)
	doRequest(t, engine, http.MethodPatch, "/api/drafts/"+id+"/items/"+itemID, `{
		"description": "Design work",
		"quantity": "2",
		"price": "150.00"
	}`)

	rec := doRequest(t, engine, http.MethodPost, "/api/drafts/"+id+"/render", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("render status = %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("content type = %s", ct)
	}
	if !strings.Contains(rec.Body.String(), "$300.00") {
		t.Fatal("rendered document missing line amount")
	}
}
