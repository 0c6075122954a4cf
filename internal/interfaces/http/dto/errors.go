package dto

import "net/http"

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
)

// Validation error codes
const (
	// ErrCodeValidation is the base code for validation errors
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeValidationFormat is used when a field has invalid format
	ErrCodeValidationFormat = "ERR_VALIDATION_FORMAT"
)

// Authentication error codes
const (
	// ErrCodeUnauthorized is used when authentication is required but missing/invalid
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	// ErrCodeForbidden is used when the user lacks permission
	ErrCodeForbidden = "ERR_FORBIDDEN"
	// ErrCodeTokenExpired is used when the auth token has expired
	ErrCodeTokenExpired = "ERR_TOKEN_EXPIRED"
	// ErrCodeTokenInvalid is used when the auth token is invalid
	ErrCodeTokenInvalid = "ERR_TOKEN_INVALID"
)

// Resource error codes
const (
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "ERR_NOT_FOUND"
	// ErrCodeConflict is used for general resource conflicts
	ErrCodeConflict = "ERR_CONFLICT"
)

// Settlement error codes. These all map to 409 because the resource
// exists but is in a state that conflicts with the request; clients
// resolve them by waiting or by changing the target.
const (
	// ErrCodeSettlementInProgress is used when another settlement run holds the stage lock
	ErrCodeSettlementInProgress = "ERR_SETTLEMENT_IN_PROGRESS"
	// ErrCodeIncompleteConsensus is used when groups lack an accepted ranking
	ErrCodeIncompleteConsensus = "ERR_INCOMPLETE_CONSENSUS"
	// ErrCodeAlreadySettled is used when the stage already has an active settlement
	ErrCodeAlreadySettled = "ERR_ALREADY_SETTLED"
	// ErrCodeAlreadyReversed is used when the settlement was already reversed
	ErrCodeAlreadyReversed = "ERR_ALREADY_REVERSED"
	// ErrCodeStageSettling is used when a write is rejected because the stage is settling
	ErrCodeStageSettling = "ERR_STAGE_SETTLING"
)

// Business rule error codes
const (
	// ErrCodeInvalidState is used when an operation is invalid for current state
	ErrCodeInvalidState = "ERR_INVALID_STATE"
	// ErrCodeInvalidVoter is used when the voter is not eligible for the proposal
	ErrCodeInvalidVoter = "ERR_INVALID_VOTER"
)

// Input error codes
const (
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidJSON is used when JSON parsing fails
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"
	// ErrCodeRequestTooLarge is used when the request body exceeds the limit
	ErrCodeRequestTooLarge = "ERR_REQUEST_TOO_LARGE"
)

// Connection limit error codes
const (
	// ErrCodeMaxConnections is used when the SSE connection limit is reached
	ErrCodeMaxConnections = "ERR_MAX_CONNECTIONS"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	// General errors
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	// Validation errors -> 400 Bad Request
	ErrCodeValidation:       http.StatusBadRequest,
	ErrCodeValidationFormat: http.StatusBadRequest,

	// Auth errors
	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeTokenInvalid: http.StatusUnauthorized,

	// Resource errors
	ErrCodeNotFound: http.StatusNotFound,
	ErrCodeConflict: http.StatusConflict,

	// Settlement state conflicts -> 409 Conflict
	ErrCodeSettlementInProgress: http.StatusConflict,
	ErrCodeIncompleteConsensus:  http.StatusConflict,
	ErrCodeAlreadySettled:       http.StatusConflict,
	ErrCodeAlreadyReversed:      http.StatusConflict,
	ErrCodeStageSettling:        http.StatusConflict,

	// Business rule errors -> 422 Unprocessable Entity
	ErrCodeInvalidState: http.StatusUnprocessableEntity,
	ErrCodeInvalidVoter: http.StatusUnprocessableEntity,

	// Input errors -> 400 Bad Request
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeInvalidJSON:     http.StatusBadRequest,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,

	// Connection limits -> 503 Service Unavailable
	ErrCodeMaxConnections: http.StatusServiceUnavailable,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping maps domain error codes to transport codes
var DomainErrorCodeMapping = map[string]string{
	"NOT_FOUND":              ErrCodeNotFound,
	"VALIDATION_ERROR":       ErrCodeValidation,
	"UNAUTHORIZED":           ErrCodeUnauthorized,
	"FORBIDDEN":              ErrCodeForbidden,
	"INVALID_STATE":          ErrCodeInvalidState,
	"SETTLEMENT_IN_PROGRESS": ErrCodeSettlementInProgress,
	"INCOMPLETE_CONSENSUS":   ErrCodeIncompleteConsensus,
	"ALREADY_SETTLED":        ErrCodeAlreadySettled,
	"ALREADY_REVERSED":       ErrCodeAlreadyReversed,
	"INVALID_VOTER":          ErrCodeInvalidVoter,
	"STAGE_SETTLING":         ErrCodeStageSettling,
	"INTERNAL_ERROR":         ErrCodeInternal,
}

// NormalizeErrorCode converts a domain error code to the transport format
// If the code is already in the transport format or unknown, returns it as-is
func NormalizeErrorCode(code string) string {
	if newCode, ok := DomainErrorCodeMapping[code]; ok {
		return newCode
	}
	return code
}

// NewErrorResponseWithRequestID creates an error response carrying the request ID
func NewErrorResponseWithRequestID(code, message, requestID string) Response {
	return Response{
		Success: false,
		Error: &ErrorInfo{
			Code:      code,
			Message:   message,
			RequestID: requestID,
		},
	}
}
