package httpx

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/Keiter0309/EcomGrove/internal/domain"
)

// apiResponse is the payload shape for every endpoint: a status code, a
// human-readable message and, on success, the resulting data. Errors carry
// the machine-readable kind in Error.
type apiResponse struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Error      string `json:"error,omitempty"`
	Data       any    `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func respond(w http.ResponseWriter, code int, message string, data any) {
	writeJSON(w, code, apiResponse{StatusCode: code, Message: message, Data: data})
}

func respondError(w http.ResponseWriter, log *zap.Logger, err error) {
	code := domain.ErrorCode(err)
	status := httpStatus(code)
	if code == domain.EINTERNAL {
		log.Error("request failed", zap.Error(err))
	}
	writeJSON(w, status, apiResponse{
		StatusCode: status,
		Message:    domain.ErrorMessage(err),
		Error:      code,
	})
}

func httpStatus(code string) int {
	switch code {
	case domain.ENOTFOUND:
		return http.StatusNotFound
	case domain.EFORBIDDEN:
		return http.StatusForbidden
	case domain.EINVALID, domain.EEMPTYCART, domain.EINSUFFICIENTSTOCK:
		return http.StatusBadRequest
	case domain.ECONFLICT, domain.EINVALIDTRANSITION:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
