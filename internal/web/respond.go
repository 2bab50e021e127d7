package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/vbonduro/stayhaven/internal/domain"
)

// maxBodyBytes bounds every JSON request body.
const maxBodyBytes = 1 << 20

// errorBody is the shape of every non-2xx response.
type errorBody struct {
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Message: msg})
}

// writeError maps err onto a status code and client-safe body. Errors
// outside the domain taxonomy are logged and reported as a bare 500.
func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var (
		verr *domain.ValidationError
		rerr *domain.RuleError
		cerr *domain.ConflictError
		nerr *domain.NotFoundError
	)
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorBody{Message: verr.Message, Errors: verr.Fields})
	case errors.Is(err, domain.ErrUnauthenticated):
		writeMessage(w, http.StatusUnauthorized, "Authentication required")
	case errors.Is(err, domain.ErrInvalidCredentials):
		writeMessage(w, http.StatusUnauthorized, "The provided credentials were invalid.")
	case errors.Is(err, domain.ErrForbidden):
		writeMessage(w, http.StatusForbidden, "Forbidden")
	case errors.As(err, &rerr):
		writeMessage(w, http.StatusForbidden, rerr.Message)
	case errors.As(err, &nerr):
		writeMessage(w, http.StatusNotFound, nerr.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeMessage(w, http.StatusNotFound, "Resource couldn't be found")
	case errors.As(err, &cerr):
		writeJSON(w, http.StatusConflict, errorBody{Message: cerr.Message, Errors: cerr.Fields})
	default:
		logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", requestID(r.Context()),
			"error", err,
		)
		writeMessage(w, http.StatusInternalServerError, "Internal Server Error")
	}
}

// decodeJSON reads a single JSON object from the request body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return badRequest("body", "Request body is required")
		}
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return badRequest("body", fmt.Sprintf("Request body must not exceed %d bytes", maxErr.Limit))
		}
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return badRequest(typeErr.Field, fmt.Sprintf("%s has the wrong type", typeErr.Field))
		}
		return badRequest("body", "Request body must be valid JSON")
	}
	return nil
}

// parseID reads a positive integer path parameter. A malformed id cannot
// name an existing resource, so it is reported as that resource missing.
func parseID(r *http.Request, name, resource string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id < 1 {
		return 0, domain.NotFound(resource)
	}
	return id, nil
}

func badRequest(field, msg string) error {
	var v domain.Validation
	v.Add(field, msg)
	return v.Err()
}
