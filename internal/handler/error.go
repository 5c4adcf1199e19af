// Package handler holds shared HTTP response helpers used by all route
// handlers.
package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/rosswilson/skylark/internal/domain"
)

// ErrorCodeToHTTPStatus maps domain error codes to HTTP status codes.
func ErrorCodeToHTTPStatus(code string) int {
	switch code {
	case domain.EINVALID:
		return http.StatusBadRequest
	case domain.EUNAUTHORIZED:
		return http.StatusUnauthorized
	case domain.EPAYMENT:
		return http.StatusPaymentRequired
	case domain.EFORBIDDEN:
		return http.StatusForbidden
	case domain.ENOTFOUND:
		return http.StatusNotFound
	case domain.ECONFLICT:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

type errorBody struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

// ErrorResponse writes err as an HTTP response. JSON clients get a
// structured error envelope; everyone else gets plain text. Internal error
// details are logged but never sent to the client.
func ErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	code := domain.ErrorCode(err)
	status := ErrorCodeToHTTPStatus(code)
	message := domain.ErrorMessage(err)

	if status == http.StatusInternalServerError {
		slog.Error("internal error", "method", r.Method, "path", r.URL.Path, "error", err)
	}

	if acceptsJSON(r) {
		JSON(w, status, errorEnvelope{Error: errorBody{Code: code, Message: message}})
		return
	}
	http.Error(w, message, status)
}

// ValidationErrorResponse writes a field-level validation failure. Non
// validation errors fall back to ErrorResponse.
func ValidationErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	fields := domain.GetValidationFields(err)
	if fields == nil {
		ErrorResponse(w, r, err)
		return
	}

	if acceptsJSON(r) {
		JSON(w, http.StatusBadRequest, errorEnvelope{Error: errorBody{
			Code:    domain.EINVALID,
			Message: "Validation failed",
			Fields:  fields,
		}})
		return
	}
	http.Error(w, err.Error(), http.StatusBadRequest)
}

// NotFoundResponse writes a generic 404.
func NotFoundResponse(w http.ResponseWriter, r *http.Request) {
	ErrorResponse(w, r, domain.Errorf(domain.ENOTFOUND, "", "The requested resource was not found."))
}

// UnauthorizedResponse writes a generic 401.
func UnauthorizedResponse(w http.ResponseWriter, r *http.Request) {
	ErrorResponse(w, r, domain.Errorf(domain.EUNAUTHORIZED, "", "Authentication required."))
}

// InternalErrorResponse writes a generic 500, logging the underlying error.
func InternalErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	ErrorResponse(w, r, domain.Internal(err, "", "internal error"))
}

// acceptsJSON reports whether the client wants a JSON response, based on
// the Accept header, the request Content-Type, or a .json path suffix.
func acceptsJSON(r *http.Request) bool {
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		return true
	}
	return strings.HasSuffix(r.URL.Path, ".json")
}
