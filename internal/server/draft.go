package server

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	draftdomain "github.com/smallbiznis/invoicedesk/internal/draft/domain"
)

type updateDraftRequest struct {
	InvoiceNumber   *string `json:"invoice_number"`
	FromName        *string `json:"from_name"`
	FromAddress     *string `json:"from_address"`
	ToName          *string `json:"to_name"`
	ToAddress       *string `json:"to_address"`
	InvoiceDate     *string `json:"invoice_date"`
	DueDate         *string `json:"due_date"`
	TaxJurisdiction *string `json:"tax_jurisdiction"`
	Notes           *string `json:"notes"`
}

type updateItemRequest struct {
	Description *string `json:"description"`
	Quantity    *string `json:"quantity"`
	Price       *string `json:"price"`
}

// @Summary      Create Draft
// @Description  Open a new invoice editing session
// @Tags         drafts
// @Accept       json
// @Produce      json
// @Success      200  {object}  draftdomain.DraftView
// @Router       /drafts [post]
func (s *Server) CreateDraft(c *gin.Context) {
	resp, err := s.draftSvc.Create(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Get Draft
// @Description  Fetch a draft with current totals
// @Tags         drafts
// @Accept       json
// @Produce      json
// @Param        id   path      string  true  "Draft ID"
// @Success      200  {object}  draftdomain.DraftView
// @Router       /drafts/{id} [get]
func (s *Server) GetDraft(c *gin.Context) {
	resp, err := s.draftSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Update Draft
// @Description  Patch invoice fields; totals recompute on every change
// @Tags         drafts
// @Accept       json
// @Produce      json
// @Param        id      path  string              true  "Draft ID"
// @Param        request body  updateDraftRequest  true  "Update Draft Request"
// @Success      200  {object}  draftdomain.DraftView
// @Router       /drafts/{id} [patch]
func (s *Server) UpdateDraft(c *gin.Context) {
	var req updateDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	invoiceDate, err := parseOptionalDate(req.InvoiceDate)
	if err != nil {
		AbortWithError(c, newValidationError("invoice_date", "invalid_date", "invoice_date must be YYYY-MM-DD"))
		return
	}
	dueDate, err := parseOptionalDate(req.DueDate)
	if err != nil {
		AbortWithError(c, newValidationError("due_date", "invalid_date", "due_date must be YYYY-MM-DD"))
		return
	}

	resp, err := s.draftSvc.UpdateInvoice(c.Request.Context(), draftdomain.UpdateInvoiceRequest{
		ID:              c.Param("id"),
		InvoiceNumber:   req.InvoiceNumber,
		FromName:        req.FromName,
		FromAddress:     req.FromAddress,
		ToName:          req.ToName,
		ToAddress:       req.ToAddress,
		InvoiceDate:     invoiceDate,
		DueDate:         dueDate,
		TaxJurisdiction: req.TaxJurisdiction,
		Notes:           req.Notes,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Discard Draft
// @Description  Drop an editing session without submitting
// @Tags         drafts
// @Produce      json
// @Param        id   path      string  true  "Draft ID"
// @Success      200  {object}  map[string]string
// @Router       /drafts/{id} [delete]
func (s *Server) DiscardDraft(c *gin.Context) {
	if err := s.draftSvc.Discard(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// @Summary      Get Totals
// @Description  Derive subtotal, tax, and total for the current draft
// @Tags         drafts
// @Produce      json
// @Param        id   path      string  true  "Draft ID"
// @Success      200  {object}  invoicedomain.Totals
// @Router       /drafts/{id}/totals [get]
func (s *Server) GetTotals(c *gin.Context) {
	resp, err := s.draftSvc.Totals(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Append Item
// @Description  Add a line item with row defaults to the end of the list
// @Tags         drafts
// @Produce      json
// @Param        id   path      string  true  "Draft ID"
// @Success      200  {object}  draftdomain.DraftView
// @Router       /drafts/{id}/items [post]
func (s *Server) AppendItem(c *gin.Context) {
	resp, err := s.draftSvc.AppendItem(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Remove Item By Position
// @Description  Remove the line item at a positional index
// @Tags         drafts
// @Produce      json
// @Param        id     path   string  true  "Draft ID"
// @Param        index  query  int     true  "Item index"
// @Success      200  {object}  draftdomain.DraftView
// @Router       /drafts/{id}/items [delete]
func (s *Server) RemoveItemAt(c *gin.Context) {
	raw := strings.TrimSpace(c.Query("index"))
	index, err := strconv.Atoi(raw)
	if err != nil {
		AbortWithError(c, newValidationError("index", "invalid_index", "index must be an integer"))
		return
	}

	resp, err := s.draftSvc.RemoveItemAt(c.Request.Context(), c.Param("id"), index)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Remove Item
// @Description  Remove a line item by its stable row id
// @Tags         drafts
// @Produce      json
// @Param        id       path  string  true  "Draft ID"
// @Param        item_id  path  string  true  "Item ID"
// @Success      200  {object}  draftdomain.DraftView
// @Router       /drafts/{id}/items/{item_id} [delete]
func (s *Server) RemoveItem(c *gin.Context) {
	resp, err := s.draftSvc.RemoveItemByID(c.Request.Context(), c.Param("id"), c.Param("item_id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Update Item
// @Description  Patch one line item's fields
// @Tags         drafts
// @Accept       json
// @Produce      json
// @Param        id       path  string             true  "Draft ID"
// @Param        item_id  path  string             true  "Item ID"
// @Param        request  body  updateItemRequest  true  "Update Item Request"
// @Success      200  {object}  draftdomain.DraftView
// @Router       /drafts/{id}/items/{item_id} [patch]
func (s *Server) UpdateItem(c *gin.Context) {
	var req updateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.draftSvc.UpdateItem(c.Request.Context(), draftdomain.UpdateItemRequest{
		ID:          c.Param("id"),
		ItemID:      c.Param("item_id"),
		Description: req.Description,
		Quantity:    req.Quantity,
		Price:       req.Price,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func parseOptionalDate(raw *string) (*time.Time, error) {
	if raw == nil {
		return nil, nil
	}
	value := strings.TrimSpace(*raw)
	if value == "" {
		return nil, nil
	}
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, err
	}
	parsed = parsed.UTC()
	return &parsed, nil
}
