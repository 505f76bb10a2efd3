package handlers

import (
	"net/http"
	"strconv"

	"github.com/clinicdesk/crm/httpx"
	"github.com/clinicdesk/crm/internal/services"
)

type SummaryHandler struct {
	invoice *services.InvoiceService
}

func NewSummaryHandler(invoice *services.InvoiceService) *SummaryHandler {
	return &SummaryHandler{invoice: invoice}
}

// Revenue returns the paid/unpaid/complimentary revenue buckets over all
// active invoices, optionally scoped to one patient.
func (h *SummaryHandler) Revenue(w http.ResponseWriter, r *http.Request) {
	var patientID uint
	if pid := r.URL.Query().Get("patient_id"); pid != "" {
		id, err := strconv.ParseUint(pid, 10, 64)
		if err != nil {
			httpx.JSONErrorMessage(w, http.StatusBadRequest, "invalid_patient_id", "patient_id must be numeric")
			return
		}
		patientID = uint(id)
	}

	summary, err := h.invoice.RevenueBuckets(r.Context(), patientID)
	if err != nil {
		notFoundOrError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{
		"gross":         summary.Gross.StringFixed(2),
		"paid":          summary.Paid.StringFixed(2),
		"unpaid":        summary.Unpaid.StringFixed(2),
		"complimentary": summary.Complimentary.StringFixed(2),
	})
}
