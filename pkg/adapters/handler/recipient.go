package handler

import (
	"net/http"

	"github.com/wadjakorntonsri/gift-bundle/pkg/core/domain"
	"github.com/wadjakorntonsri/gift-bundle/pkg/logging"
	"github.com/wadjakorntonsri/gift-bundle/pkg/ports"
)

// RecipientHandler serves the unauthenticated link routes.
type RecipientHandler struct {
	service ports.ResponseService
	logger  logging.Logger
}

func NewRecipientHandler(service ports.ResponseService, logger logging.Logger) *RecipientHandler {
	return &RecipientHandler{service: service, logger: logger}
}

// SubmitResponseRequest payload
type SubmitResponseRequest struct {
	Tag     string  `json:"tag"`
	Message *string `json:"message,omitempty"`
}

type submitResponse struct {
	Response        *domain.Response `json:"response"`
	BundleCompleted bool             `json:"bundle_completed"`
}

func (h *RecipientHandler) View(w http.ResponseWriter, r *http.Request) {
	bundle, err := h.service.LoadForRecipient(r.Context(), r.PathValue("link"))
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bundle)
}

func (h *RecipientHandler) Respond(w http.ResponseWriter, r *http.Request) {
	var req SubmitResponseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	bundle, err := h.service.ResolveLink(r.Context(), r.PathValue("link"))
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	tag, err := domain.ParseResponseTag(req.Tag)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}

	response, err := h.service.SubmitResponse(r.Context(), r.PathValue("giftID"), bundle.ID, tag, req.Message)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}

	// The response is stored; a failed completion check is retried by the next submission.
	completed, err := h.service.CheckCompletion(r.Context(), bundle.ID)
	if err != nil {
		h.logger.Error("completion check failed", err, map[string]interface{}{"bundle_id": bundle.ID})
	}

	writeJSON(w, http.StatusCreated, submitResponse{Response: response, BundleCompleted: completed})
}
