package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/purunsolnp/sonagi-stock/internal/models"
)

// ErrorResponse is the standard error format for REST API responses.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// QuotaErrorResponse is returned with 429 when the monthly AI limit blocks a call.
type QuotaErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
	Usage int    `json:"usage"`
	Limit int    `json:"limit"`
}

// Error codes carried in ErrorResponse.Code.
const (
	CodeValidation    = "validation_error"
	CodeNotFound      = "not_found"
	CodeDuplicate     = "duplicate"
	CodeBusy          = "busy"
	CodeForbidden     = "forbidden"
	CodeQuotaExceeded = "quota_exceeded"
	CodeProvider      = "provider_error"
	CodeInternal      = "internal_error"
)

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// WriteError writes a JSON error response.
func WriteError(w http.ResponseWriter, statusCode int, message string) {
	WriteJSON(w, statusCode, ErrorResponse{Error: message})
}

// WriteErrorWithCode writes a JSON error response with an error code.
func WriteErrorWithCode(w http.ResponseWriter, statusCode int, message, code string) {
	WriteJSON(w, statusCode, ErrorResponse{Error: message, Code: code})
}

// writeServiceError maps service errors onto HTTP statuses. Unclassified
// errors are logged and reported as 500 without their detail.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var quotaErr *models.QuotaExceededError
	switch {
	case errors.As(err, &quotaErr):
		WriteJSON(w, http.StatusTooManyRequests, QuotaErrorResponse{
			Error: quotaErr.Error(),
			Code:  CodeQuotaExceeded,
			Usage: quotaErr.Usage,
			Limit: quotaErr.Limit,
		})
	case errors.Is(err, models.ErrValidation):
		WriteErrorWithCode(w, http.StatusBadRequest, err.Error(), CodeValidation)
	case errors.Is(err, models.ErrNotFound):
		WriteErrorWithCode(w, http.StatusNotFound, err.Error(), CodeNotFound)
	case errors.Is(err, models.ErrDuplicate):
		WriteErrorWithCode(w, http.StatusConflict, err.Error(), CodeDuplicate)
	case errors.Is(err, models.ErrBusy):
		WriteErrorWithCode(w, http.StatusConflict, err.Error(), CodeBusy)
	case errors.Is(err, models.ErrForbidden):
		WriteErrorWithCode(w, http.StatusForbidden, err.Error(), CodeForbidden)
	case errors.Is(err, models.ErrProvider):
		s.logger.Warn().Err(err).Str("path", r.URL.Path).Msg("AI provider failure")
		WriteErrorWithCode(w, http.StatusBadGateway, err.Error(), CodeProvider)
	default:
		s.logger.Error().Err(err).Str("path", r.URL.Path).Msg("Request failed")
		WriteErrorWithCode(w, http.StatusInternalServerError, "internal server error", CodeInternal)
	}
}

// RequireMethod validates the HTTP method and returns true if it matches.
// If it doesn't match, it writes a 405 response and returns false.
func RequireMethod(w http.ResponseWriter, r *http.Request, methods ...string) bool {
	for _, m := range methods {
		if r.Method == m {
			return true
		}
	}
	w.Header().Set("Allow", strings.Join(methods, ", "))
	WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	return false
}

// DecodeJSON reads and decodes JSON from the request body into v.
// Returns false and writes a 400 error if decoding fails.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if r.Body == nil {
		WriteError(w, http.StatusBadRequest, "Request body is required")
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB limit
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		WriteErrorWithCode(w, http.StatusBadRequest, "Invalid JSON: "+err.Error(), CodeValidation)
		return false
	}
	return true
}

// pathSegments splits the path after prefix into its non-empty parts.
func pathSegments(r *http.Request, prefix string) []string {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, prefix), "/")
	if rest == "" {
		return nil
	}
	return strings.Split(rest, "/")
}

// queryInt reads a positive integer query parameter, or def.
func queryInt(r *http.Request, name string, def int) int {
	if v, err := strconv.Atoi(r.URL.Query().Get(name)); err == nil && v > 0 {
		return v
	}
	return def
}
