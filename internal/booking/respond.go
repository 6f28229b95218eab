package booking

import (
	"encoding/json"
	"net/http"

	"github.com/agendafacil/agendafacil/pkg/logging"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeDomainError maps a workflow error to an HTTP status. Unclassified
// errors are logged and masked as a generic internal failure.
func writeDomainError(w http.ResponseWriter, logger *logging.Logger, err error) {
	switch KindOf(err) {
	case KindValidation:
		writeError(w, http.StatusBadRequest, err.Error())
	case KindNotFound:
		writeError(w, http.StatusNotFound, err.Error())
	case KindConflict:
		writeError(w, http.StatusConflict, err.Error())
	case KindAuthorization:
		writeError(w, http.StatusForbidden, err.Error())
	case KindPolicy:
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		if logger != nil {
			logger.Error("internal error", "error", err)
		}
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
