package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/invoicedesk/internal/invoice/render"
)

// @Summary      Submit Draft
// @Description  Validate the draft; returns a validated invoice or field errors
// @Tags         drafts
// @Produce      json
// @Param        id   path      string  true  "Draft ID"
// @Success      200  {object}  draftdomain.SubmitResult
// @Failure      422  {object}  map[string]invoicedomain.FieldErrors
// @Router       /drafts/{id}/submit [post]
func (s *Server) SubmitDraft(c *gin.Context) {
	result, err := s.draftSvc.Submit(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if result.FieldErrors != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": result.FieldErrors})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": result.Invoice})
}

// @Summary      Render Draft
// @Description  Validate the draft and render the invoice document as HTML
// @Tags         drafts
// @Produce      html
// @Param        id   path      string  true  "Draft ID"
// @Success      200  {string}  string
// @Failure      422  {object}  map[string]invoicedomain.FieldErrors
// @Router       /drafts/{id}/render [post]
func (s *Server) RenderDraft(c *gin.Context) {
	result, err := s.draftSvc.Submit(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if result.FieldErrors != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": result.FieldErrors})
		return
	}

	html, err := s.renderer.RenderHTML(render.NewRenderInput(result.Invoice))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}
