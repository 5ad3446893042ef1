package dto

import "net/http"

// General error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
)

// Validation and input error codes
const (
	// ErrCodeValidation is the base code for validation errors
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidInput is used for invalid input data
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	// ErrCodeInvalidJSON is used when JSON parsing fails
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"
)

// Resource error codes
const (
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "ERR_NOT_FOUND"
	// ErrCodeAlreadyExists is used when trying to create a duplicate resource
	ErrCodeAlreadyExists = "ERR_ALREADY_EXISTS"
	// ErrCodeConflict is used for general resource conflicts
	ErrCodeConflict = "ERR_CONFLICT"
)

// domainErrorHTTPStatus maps domain error codes to HTTP status codes.
// Codes not listed fall back to 422 for business rule violations via
// GetHTTPStatus's default.
var domainErrorHTTPStatus = map[string]int{
	// Missing resources
	"NOT_FOUND":                http.StatusNotFound,
	"REPRESENTATIVE_NOT_FOUND": http.StatusNotFound,
	"INVOICE_NOT_FOUND":        http.StatusNotFound,
	"PAYMENT_NOT_FOUND":        http.StatusNotFound,
	"ALLOCATION_NOT_FOUND":     http.StatusNotFound,

	// Malformed or invalid input
	"INVALID_INPUT":          http.StatusBadRequest,
	"INVALID_AMOUNT":         http.StatusBadRequest,
	"INVALID_STATUS":         http.StatusBadRequest,
	"INVALID_CODE":           http.StatusBadRequest,
	"INVALID_NAME":           http.StatusBadRequest,
	"INVALID_INVOICE_NUMBER": http.StatusBadRequest,
	"INVALID_PAYMENT_NUMBER": http.StatusBadRequest,
	"INVALID_PAYMENT_METHOD": http.StatusBadRequest,
	"INVALID_PAYMENT_DATE":   http.StatusBadRequest,
	"INVALID_ISSUE_DATE":     http.StatusBadRequest,
	"INVALID_DUE_DATE":       http.StatusBadRequest,
	"INVALID_REPRESENTATIVE": http.StatusBadRequest,
	"INVALID_REASON":         http.StatusBadRequest,
	"INVALID_POLICY":         http.StatusBadRequest,

	// Conflicting state
	"ALREADY_EXISTS":          http.StatusConflict,
	"DUPLICATE_CODE":          http.StatusConflict,
	"CONCURRENCY_CONFLICT":    http.StatusConflict,
	"CONCURRENT_MODIFICATION": http.StatusConflict,
	"ALLOCATION_IN_PROGRESS":  http.StatusConflict,

	// Business rule violations
	"INVALID_STATE":       http.StatusUnprocessableEntity,
	"INVALID_PAYMENT":     http.StatusUnprocessableEntity,
	"INVALID_INVOICE":     http.StatusUnprocessableEntity,
	"INVALID_ALLOCATIONS": http.StatusUnprocessableEntity,
	"EXCEEDS_OUTSTANDING": http.StatusUnprocessableEntity,
	"EXCEEDS_UNALLOCATED": http.StatusUnprocessableEntity,
	"EXCEEDS_PAID":        http.StatusUnprocessableEntity,
	"ALREADY_ALLOCATED":   http.StatusUnprocessableEntity,
	"HAS_ALLOCATIONS":     http.StatusUnprocessableEntity,

	// Storage failures
	"PERSISTENCE_FAILURE": http.StatusInternalServerError,

	// Transport-level codes
	ErrCodeUnknown:      http.StatusInternalServerError,
	ErrCodeInternal:     http.StatusInternalServerError,
	ErrCodeValidation:   http.StatusBadRequest,
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,
	ErrCodeInvalidJSON:  http.StatusBadRequest,
	ErrCodeNotFound:     http.StatusNotFound,
	ErrCodeAlreadyExists: http.StatusConflict,
	ErrCodeConflict:     http.StatusConflict,
}

// GetHTTPStatus returns the HTTP status code for a domain error code.
// Unknown codes are treated as business rule violations.
func GetHTTPStatus(code string) int {
	if status, ok := domainErrorHTTPStatus[code]; ok {
		return status
	}
	return http.StatusUnprocessableEntity
}
