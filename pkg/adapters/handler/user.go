package handler

import (
	"net/http"

	"github.com/wadjakorntonsri/gift-bundle/pkg/core/domain"
	"github.com/wadjakorntonsri/gift-bundle/pkg/logging"
	"github.com/wadjakorntonsri/gift-bundle/pkg/ports"
)

type UserHandler struct {
	users   ports.UserService
	uploads ports.UploadService
	logger  logging.Logger
}

func NewUserHandler(users ports.UserService, uploads ports.UploadService, logger logging.Logger) *UserHandler {
	return &UserHandler{users: users, uploads: uploads, logger: logger}
}

// UploadRequest payload
type UploadRequest struct {
	FileExtension string `json:"file_extension"`
}

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		writeError(w, h.logger, r, domain.ErrInvalidJwt)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		writeError(w, h.logger, r, domain.ErrInvalidJwt)
		return
	}
	if err := h.users.Withdraw(r.Context(), user.ID); err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *UserHandler) IssueUpload(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		writeError(w, h.logger, r, domain.ErrInvalidJwt)
		return
	}

	var req UploadRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, r, err)
		return
	}

	upload, err := h.uploads.IssueUploadURL(r.Context(), user.ID, req.FileExtension)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, upload)
}
