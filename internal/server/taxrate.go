package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// @Summary      List Tax Rates
// @Description  List the jurisdictions known to the rate table
// @Tags         tax_rates
// @Produce      json
// @Success      200  {object}  []taxdomain.TaxRate
// @Router       /tax_rates [get]
func (s *Server) ListTaxRates(c *gin.Context) {
	resp, err := s.taxSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}
