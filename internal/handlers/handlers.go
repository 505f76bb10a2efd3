// Package handlers implements the JSON HTTP API.
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"gorm.io/gorm"

	"github.com/clinicdesk/crm/httpx"
	"github.com/clinicdesk/crm/i18n"
	"github.com/clinicdesk/crm/internal/invoicing"
	"github.com/clinicdesk/crm/internal/services"
)

// pathID parses the {id} path segment. Writes a 404 and returns false on
// garbage ids.
func pathID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	raw := r.PathValue("id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		http.NotFound(w, r)
		return 0, false
	}
	return uint(id), true
}

// notFoundOrError writes 404 for missing records and 500 for anything else.
func notFoundOrError(w http.ResponseWriter, err error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		httpx.JSONErrorMessage(w, http.StatusNotFound, "not_found", "record not found")
		return
	}
	httpx.JSONErrorMessage(w, http.StatusInternalServerError, "internal_error", "unexpected error")
}

// billingError translates invoice domain errors into localized 422
// responses; unknown errors fall through to notFoundOrError.
func billingError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, services.ErrNotInvoice) {
		httpx.JSONErrorMessage(w, http.StatusConflict, "consultation_not_invoice", "consultation carries no invoice")
		return
	}
	code := ""
	switch {
	case errors.Is(err, invoicing.ErrMissingPaymentMethod),
		errors.Is(err, invoicing.ErrNoLineItems),
		errors.Is(err, invoicing.ErrNoInstallments),
		errors.Is(err, invoicing.ErrIncompleteAllocation),
		errors.Is(err, invoicing.ErrAlreadyPaid),
		errors.Is(err, invoicing.ErrArchivedReadOnly),
		errors.Is(err, invoicing.ErrComplimentaryPaid):
		code = err.Error()
	}
	if code == "" {
		notFoundOrError(w, err)
		return
	}
	lang := i18n.Lang(r.Context())
	httpx.JSONErrorMessage(w, http.StatusUnprocessableEntity, code, i18n.T(lang, code))
}
