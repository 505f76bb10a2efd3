package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/clinicdesk/crm/auth"
	"github.com/clinicdesk/crm/httpx"
	"github.com/clinicdesk/crm/i18n"
	"github.com/clinicdesk/crm/internal/models"
	"github.com/clinicdesk/crm/internal/services"
	"github.com/clinicdesk/crm/validation"
)

type MessageHandler struct {
	messages *services.MessageService
}

func NewMessageHandler(messages *services.MessageService) *MessageHandler {
	return &MessageHandler{messages: messages}
}

type messagePayload struct {
	PatientID uint   `json:"patient_id"`
	Channel   string `json:"channel"`
	Subject   string `json:"subject,omitempty"`
	Body      string `json:"body"`
}

// Send queues a message to a patient and attempts delivery. The response
// carries the delivery status; a provider failure is reported on the
// message row, not as a request error.
func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var in messagePayload
	if err := httpx.Decode(r, &in); err != nil {
		httpx.JSONErrorMessage(w, http.StatusBadRequest, "invalid_json", "malformed request body")
		return
	}

	v := make(validation.Violations)
	if in.PatientID == 0 {
		v["patient_id"] = "required"
	}
	validation.OneOf("channel", in.Channel, []string{string(models.ChannelEmail), string(models.ChannelWhatsApp)}, v)
	validation.Required("body", in.Body, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusUnprocessableEntity, "validation_failed", v)
		return
	}

	msg, err := h.messages.Send(r.Context(), in.PatientID, userID, models.MessageChannel(in.Channel), in.Subject, in.Body)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrChannelNotConfigured):
			lang := i18n.Lang(r.Context())
			httpx.JSONErrorMessage(w, http.StatusConflict, "channel_not_configured", i18n.T(lang, "channel_not_configured"))
		case errors.Is(err, services.ErrNoRecipientAddress):
			httpx.JSONErrorMessage(w, http.StatusUnprocessableEntity, "no_recipient_address", "patient has no address for this channel")
		default:
			notFoundOrError(w, err)
		}
		return
	}
	httpx.JSON(w, http.StatusCreated, msg)
}

// History lists a patient's outbound messages, newest first.
func (h *MessageHandler) History(w http.ResponseWriter, r *http.Request) {
	pid := r.URL.Query().Get("patient_id")
	id, err := strconv.ParseUint(pid, 10, 64)
	if err != nil || id == 0 {
		httpx.JSONErrorMessage(w, http.StatusBadRequest, "invalid_patient_id", "patient_id must be numeric")
		return
	}

	msgs, err := h.messages.History(r.Context(), uint(id))
	if err != nil {
		notFoundOrError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"messages": msgs})
}
