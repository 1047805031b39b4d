package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"civicsense/internal/bootstrap/logging"
	"civicsense/internal/domain/issue"
	"civicsense/internal/errs"
	"civicsense/internal/ports"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError maps the error taxonomy onto HTTP status codes. Storage failures
// are logged and answered with a generic message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ports.ErrUnauthenticated):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing or invalid token", Kind: "unauthenticated"})
	case errors.Is(err, ports.ErrForbidden):
		writeJSON(w, http.StatusForbidden, errorResponse{Error: "forbidden", Kind: "forbidden"})
	case errors.Is(err, issue.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "issue not found", Kind: "not_found"})
	case errors.Is(err, issue.ErrValidation):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), Kind: "validation"})
	default:
		logging.Error(r.Context(), "request failed",
			slog.String("path", r.URL.Path),
			slog.String("kind", issue.Classify(err)),
			slog.Any("err", errs.Loggable(err)),
		)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error, try again later", Kind: "storage"})
	}
}

func decodeJSON(r *http.Request, dst any) error {
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return errs.Mark(errs.Wrap(err, "decode request body"), issue.ErrValidation)
	}
	return nil
}
