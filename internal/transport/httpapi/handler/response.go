package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/homebooks/ledger/internal/shared/errors"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// respondWithJSON sends a JSON response
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, apperrors.ErrCodeInternal, "failed to encode response")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// respondWithError sends an error response
func respondWithError(w http.ResponseWriter, status int, code, message string) {
	respondWithJSON(w, status, ErrorResponse{Error: message, Code: code})
}

// respondAppError maps an error to its HTTP status. Server-side failures
// only expose the outer message, never the wrapped cause.
func respondAppError(w http.ResponseWriter, err error) {
	code := apperrors.CodeOf(err)
	status := apperrors.HTTPStatus(code)

	message := "internal server error"
	if appErr := apperrors.GetAppError(err); appErr != nil {
		if status >= http.StatusInternalServerError {
			message = appErr.Message
		} else {
			message = strings.Replace(err.Error(), appErr.Code+": ", "", 1)
		}
	}

	respondWithError(w, status, code, message)
}

// respondBadRequest sends a 400 with the BAD_REQUEST code
func respondBadRequest(w http.ResponseWriter, message string) {
	respondWithError(w, http.StatusBadRequest, apperrors.ErrCodeBadRequest, message)
}

// respondDecodeError reports a body that could not be decoded. Domain
// validation raised by custom unmarshalers keeps its own code.
func respondDecodeError(w http.ResponseWriter, err error) {
	if apperrors.IsAppError(err) {
		respondAppError(w, err)
		return
	}
	respondBadRequest(w, "invalid request body")
}

// decodeJSON decodes a request body, rejecting unknown fields. Numbers are
// kept as json.Number so integer fields can refuse fractional input.
func decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	dec.UseNumber()
	return dec.Decode(dst)
}

// idParam parses a positive int64 path parameter
func idParam(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// queryInt parses an optional integer query parameter
func queryInt(r *http.Request, name string, def int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

// minorUnits reads an integral json.Number. Fractions, exponents and
// out-of-range values are refused.
func minorUnits(n json.Number) (int64, bool) {
	if strings.ContainsAny(n.String(), ".eE") {
		return 0, false
	}
	v, err := n.Int64()
	if err != nil {
		return 0, false
	}
	return v, true
}

// NotFound answers unknown routes with the JSON error shape
func NotFound(w http.ResponseWriter, r *http.Request) {
	respondWithError(w, http.StatusNotFound, apperrors.ErrCodeNotFound, "route not found")
}

// MethodNotAllowed answers known routes called with the wrong method
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	respondWithError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
}
