package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	draftdomain "github.com/smallbiznis/invoicedesk/internal/draft/domain"
	invoicedomain "github.com/smallbiznis/invoicedesk/internal/invoice/domain"
)

// ErrNotFound is the catch-all for unknown resources.
var ErrNotFound = errors.New("not_found")

type apiError struct {
	status  int
	code    string
	field   string
	message string
}

func (e *apiError) Error() string { return e.code }

func newValidationError(field, code, message string) error {
	return &apiError{
		status:  http.StatusBadRequest,
		code:    code,
		field:   field,
		message: message,
	}
}

func invalidRequestError() error {
	return &apiError{
		status:  http.StatusBadRequest,
		code:    "invalid_request",
		message: "request body could not be parsed",
	}
}

// AbortWithError translates domain errors into the API error envelope.
func AbortWithError(c *gin.Context, err error) {
	var api *apiError
	if errors.As(err, &api) {
		body := gin.H{"code": api.code, "message": api.message}
		if api.field != "" {
			body["field"] = api.field
		}
		c.AbortWithStatusJSON(api.status, gin.H{"error": body})
		return
	}

	var fieldErrs invoicedomain.FieldErrors
	if errors.As(err, &fieldErrs) {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"errors": fieldErrs})
		return
	}

	status := http.StatusInternalServerError
	code := "internal_error"
	switch {
	case errors.Is(err, draftdomain.ErrDraftNotFound),
		errors.Is(err, draftdomain.ErrItemNotFound),
		errors.Is(err, ErrNotFound):
		status = http.StatusNotFound
		code = err.Error()
	case errors.Is(err, draftdomain.ErrInvalidDraftID),
		errors.Is(err, draftdomain.ErrInvalidItemID),
		errors.Is(err, draftdomain.ErrIndexOutOfRange):
		status = http.StatusBadRequest
		code = err.Error()
	}

	c.AbortWithStatusJSON(status, gin.H{"error": gin.H{"code": code}})
}
