package events

// Submission event types recorded at the engine boundary.
const (
	EventDraftCreated     = "draft.created"
	EventDraftDiscarded   = "draft.discarded"
	EventInvoiceValidated = "invoice.validated"
	EventInvoiceRejected  = "invoice.rejected"
)

// SubmissionPayload captures the minimal data recorded for a submission
// attempt.
type SubmissionPayload struct {
	DraftID         string `json:"draft_id"`
	InvoiceNumber   string `json:"invoice_number,omitempty"`
	Total           string `json:"total,omitempty"`
	FieldErrorCount int    `json:"field_error_count,omitempty"`
}

// ToMap converts a payload into an outbox-friendly map.
func (p SubmissionPayload) ToMap() map[string]any {
	payload := map[string]any{
		"draft_id": p.DraftID,
	}
	if p.InvoiceNumber != "" {
		payload["invoice_number"] = p.InvoiceNumber
	}
	if p.Total != "" {
		payload["total"] = p.Total
	}
	if p.FieldErrorCount > 0 {
		payload["field_error_count"] = p.FieldErrorCount
	}
	return payload
}
