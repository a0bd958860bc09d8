package api

import (
	"net/http"

	jsoniter "github.com/json-iterator/go"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/bookshop/internal/domain"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrorResponse — тело ответа об ошибке.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.WithError(err).Warn("failed to encode response")
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{Error: message, Code: code})
}

// respondDomainError отображает доменные ошибки на HTTP-статусы:
// not found 404, ошибки валидации 400, конфликты 409, остальное 500.
func respondDomainError(w http.ResponseWriter, err error) {
	status, code := domainErrorStatus(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		log.WithError(err).Error("internal error")
		message = "internal server error"
	}
	respondError(w, status, code, message)
}

func domainErrorStatus(err error) (int, string) {
	switch {
	case domain.IsNotFound(err):
		return http.StatusNotFound, "not_found"
	case domain.IsInvalidArgument(err):
		return http.StatusBadRequest, "invalid_argument"
	case domain.IsConflict(err):
		return http.StatusConflict, "conflict"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
