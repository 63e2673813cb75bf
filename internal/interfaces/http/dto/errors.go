package dto

import "net/http"

// domainErrorHTTPStatus maps domain error codes to HTTP status codes.
// Codes not listed here fall back to 500.
var domainErrorHTTPStatus = map[string]int{
	// Resource errors
	"NOT_FOUND":            http.StatusNotFound,
	"ALREADY_EXISTS":       http.StatusConflict,
	"CONFLICT":             http.StatusConflict,
	"CONCURRENCY_CONFLICT": http.StatusConflict,

	// Input errors
	"INVALID_INPUT":          http.StatusBadRequest,
	"VALIDATION_ERROR":       http.StatusBadRequest,
	"INVALID_CONTACT":        http.StatusBadRequest,
	"INVALID_PRICE":          http.StatusBadRequest,
	"INVALID_MARGINS":        http.StatusBadRequest,
	"INVALID_INVOICE_NUMBER": http.StatusBadRequest,
	"UNKNOWN_SCHEMA":         http.StatusBadRequest,
	"INVALID_PAPER_SIZE":     http.StatusBadRequest,
	"INVALID_HTML":           http.StatusBadRequest,
	"INVALID_USERNAME":       http.StatusBadRequest,
	"INVALID_PASSWORD":       http.StatusBadRequest,
	"INVALID_EMAIL":          http.StatusBadRequest,
	"INVALID_DISPLAY_NAME":   http.StatusBadRequest,
	"INVALID_ROLE":           http.StatusBadRequest,

	// Lifecycle errors
	"INVALID_STATE":         http.StatusUnprocessableEntity,
	"TERMINAL_STATUS":       http.StatusUnprocessableEntity,
	"ALREADY_ACTIVE":        http.StatusUnprocessableEntity,
	"ALREADY_DEACTIVATED":   http.StatusUnprocessableEntity,
	"NOT_LOCKED":            http.StatusUnprocessableEntity,
	"USER_DEACTIVATED":      http.StatusUnprocessableEntity,
	"VEHICLE_NOT_AVAILABLE": http.StatusConflict,
	"ALREADY_CONVERTED":     http.StatusUnprocessableEntity,

	// Auth errors
	"UNAUTHORIZED":        http.StatusUnauthorized,
	"FORBIDDEN":           http.StatusForbidden,
	"INVALID_CREDENTIALS": http.StatusUnauthorized,
	"TOKEN_EXPIRED":       http.StatusUnauthorized,
	"TOKEN_INVALID":       http.StatusUnauthorized,
	"ACCOUNT_LOCKED":      http.StatusForbidden,
	"ACCOUNT_DEACTIVATED": http.StatusForbidden,
	"ACCOUNT_INACTIVE":    http.StatusForbidden,

	// Infrastructure errors
	"UNAVAILABLE":      http.StatusServiceUnavailable,
	"RENDER_TIMEOUT":   http.StatusServiceUnavailable,
	"RENDER_FAILED":    http.StatusInternalServerError,
	"BINARY_NOT_FOUND": http.StatusServiceUnavailable,
	"STORAGE_FAILED":   http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status code for a domain error code.
// Returns 500 Internal Server Error if the error code is not mapped.
func GetHTTPStatus(code string) int {
	if status, ok := domainErrorHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
