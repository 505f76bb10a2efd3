package handlers

import (
	"net/http"

	"github.com/clinicdesk/crm/auth"
	"github.com/clinicdesk/crm/httpx"
	"github.com/clinicdesk/crm/internal/presence"
)

// PresenceHandler exposes the editing-claim tracker. Routes are only
// registered when Redis is configured.
type PresenceHandler struct {
	tracker *presence.Tracker
}

func NewPresenceHandler(tracker *presence.Tracker) *PresenceHandler {
	return &PresenceHandler{tracker: tracker}
}

// Claim takes (or renews) the editing claim on a patient record.
func (h *PresenceHandler) Claim(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	userID, _ := auth.UserIDFromContext(r.Context())

	got, holder, err := h.tracker.Claim(r.Context(), "patient", id, userID)
	if err != nil {
		httpx.JSONErrorMessage(w, http.StatusServiceUnavailable, "presence_unavailable", "presence tracker unreachable")
		return
	}
	if !got {
		httpx.JSON(w, http.StatusConflict, map[string]any{
			"claimed": false,
			"holder":  holder,
		})
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"claimed": true, "holder": userID})
}

// Release drops the caller's claim. Releasing a claim held by someone
// else is a no-op.
func (h *PresenceHandler) Release(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	userID, _ := auth.UserIDFromContext(r.Context())

	if err := h.tracker.Release(r.Context(), "patient", id, userID); err != nil {
		httpx.JSONErrorMessage(w, http.StatusServiceUnavailable, "presence_unavailable", "presence tracker unreachable")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "released"})
}

// Holder reports who currently holds the claim; zero means nobody.
func (h *PresenceHandler) Holder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	holder, err := h.tracker.Holder(r.Context(), "patient", id)
	if err != nil {
		httpx.JSONErrorMessage(w, http.StatusServiceUnavailable, "presence_unavailable", "presence tracker unreachable")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"holder": holder})
}
