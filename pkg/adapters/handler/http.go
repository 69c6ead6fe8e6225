package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/wadjakorntonsri/gift-bundle/pkg/core/domain"
	"github.com/wadjakorntonsri/gift-bundle/pkg/logging"
	"github.com/wadjakorntonsri/gift-bundle/pkg/metrics"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

type errorResponse struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return domain.ErrInvalidRequest.Enrich(err.Error())
	}
	return nil
}

// statusFor maps an error kind to its HTTP status.
func statusFor(de *domain.Error) int {
	switch de.Kind {
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindStateConflict:
		if errors.Is(de, domain.ErrAlreadyAnswered) {
			return http.StatusConflict
		}
		return http.StatusBadRequest
	case domain.KindAccessDenied:
		return http.StatusForbidden
	case domain.KindUnauthorized:
		return http.StatusUnauthorized
	case domain.KindExternalDependency:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err as {"code","error"}. Anything outside the domain
// taxonomy is logged and reported as a generic internal error.
func writeError(w http.ResponseWriter, logger logging.Logger, r *http.Request, err error) {
	logger = logger.WithContext(map[string]interface{}{
		"method": r.Method,
		"path":   r.URL.Path,
	})

	de, ok := domain.AsError(err)
	if !ok || de.Kind == domain.KindUnexpected {
		metrics.RequestErrors.WithLabelValues(domain.KindUnexpected.String()).Inc()
		logger.Error("request failed", err, nil)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Code: "INTERNAL_ERROR", Error: "internal server error"})
		return
	}

	metrics.RequestErrors.WithLabelValues(de.Kind.String()).Inc()
	status := statusFor(de)
	if status == http.StatusBadGateway {
		logger.Warn("upstream failure", map[string]interface{}{"error": err.Error()})
	}
	writeJSON(w, status, errorResponse{Code: de.Code, Error: de.Message})
}
