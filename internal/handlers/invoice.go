package handlers

import (
	"net/http"

	"github.com/clinicdesk/crm/auth"
	"github.com/clinicdesk/crm/httpx"
	"github.com/clinicdesk/crm/internal/invoicing"
	"github.com/clinicdesk/crm/internal/services"
	"github.com/clinicdesk/crm/validation"
)

type InvoiceHandler struct {
	invoice *services.InvoiceService
}

func NewInvoiceHandler(invoice *services.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoice: invoice}
}

type submitPayload struct {
	PatientID uint                   `json:"patient_id"`
	Title     string                 `json:"title,omitempty"`
	Draft     invoicing.DraftPayload `json:"draft"`
}

// Preview validates a draft and returns its derived totals without
// persisting anything. The same draft payload later goes to Submit.
func (h *InvoiceHandler) Preview(w http.ResponseWriter, r *http.Request) {
	var in invoicing.DraftPayload
	if err := httpx.Decode(r, &in); err != nil {
		httpx.JSONErrorMessage(w, http.StatusBadRequest, "invalid_json", "malformed request body")
		return
	}

	summary, err := h.invoice.Preview(r.Context(), in)
	if err != nil {
		billingError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

// Submit validates the draft and persists it as an unpaid invoice
// consultation. A validation failure persists nothing.
func (h *InvoiceHandler) Submit(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var in submitPayload
	if err := httpx.Decode(r, &in); err != nil {
		httpx.JSONErrorMessage(w, http.StatusBadRequest, "invalid_json", "malformed request body")
		return
	}
	if in.PatientID == 0 {
		httpx.JSONError(w, http.StatusUnprocessableEntity, "validation_failed",
			validation.Violations{"patient_id": "required"})
		return
	}

	cons, err := h.invoice.Submit(r.Context(), in.PatientID, userID, in.Title, in.Draft)
	if err != nil {
		billingError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, cons)
}

// Pay transitions an unpaid invoice to paid.
func (h *InvoiceHandler) Pay(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	cons, err := h.invoice.MarkPaid(r.Context(), id)
	if err != nil {
		billingError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, cons)
}
