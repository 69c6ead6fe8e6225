package handler

import (
	"net/http"
	"strconv"

	"github.com/wadjakorntonsri/gift-bundle/pkg/core/domain"
	"github.com/wadjakorntonsri/gift-bundle/pkg/logging"
	"github.com/wadjakorntonsri/gift-bundle/pkg/ports"
)

type BundleHandler struct {
	service ports.BundleService
	logger  logging.Logger
}

func NewBundleHandler(service ports.BundleService, logger logging.Logger) *BundleHandler {
	return &BundleHandler{service: service, logger: logger}
}

// CreateBundleRequest payload
type CreateBundleRequest struct {
	Name       string            `json:"name"`
	DesignType string            `json:"design_type"`
	Gifts      []domain.GiftEdit `json:"gifts"`
}

// UpdateGiftsRequest payload
type UpdateGiftsRequest struct {
	Gifts []domain.GiftEdit `json:"gifts"`
}

// UpdateBundleRequest payload
type UpdateBundleRequest struct {
	Name       string `json:"name"`
	DesignType string `json:"design_type"`
}

// PublishRequest payload
type PublishRequest struct {
	DeliveryCharacterType string `json:"delivery_character_type"`
}

type listResponse struct {
	Data  []domain.BundleSummary `json:"data"`
	Total int64                  `json:"total"`
	Page  int                    `json:"page"`
	Limit int                    `json:"limit"`
}

func (h *BundleHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		writeError(w, h.logger, r, domain.ErrInvalidJwt)
		return
	}

	var req CreateBundleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	design, err := domain.ParseDesignType(req.DesignType)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}

	bundle, err := h.service.Create(r.Context(), user.ID, req.Name, design, req.Gifts)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, bundle)
}

func (h *BundleHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		writeError(w, h.logger, r, domain.ErrInvalidJwt)
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}

	bundles, total, err := h.service.List(r.Context(), user.ID, page, limit)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Data: bundles, Total: total, Page: page, Limit: limit})
}

func (h *BundleHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		writeError(w, h.logger, r, domain.ErrInvalidJwt)
		return
	}

	bundle, err := h.service.Get(r.Context(), r.PathValue("id"), user.ID)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bundle)
}

func (h *BundleHandler) UpdateGifts(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		writeError(w, h.logger, r, domain.ErrInvalidJwt)
		return
	}

	var req UpdateGiftsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, r, err)
		return
	}

	bundle, err := h.service.Update(r.Context(), r.PathValue("id"), user.ID, req.Gifts)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bundle)
}

func (h *BundleHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		writeError(w, h.logger, r, domain.ErrInvalidJwt)
		return
	}

	var req UpdateBundleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	design, err := domain.ParseDesignType(req.DesignType)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}

	bundle, err := h.service.UpdateInfo(r.Context(), r.PathValue("id"), user.ID, req.Name, design)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bundle)
}

func (h *BundleHandler) Publish(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		writeError(w, h.logger, r, domain.ErrInvalidJwt)
		return
	}

	var req PublishRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	character, err := domain.ParseDeliveryCharacterType(req.DeliveryCharacterType)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}

	bundle, err := h.service.Publish(r.Context(), r.PathValue("id"), user.ID, character)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bundle)
}
