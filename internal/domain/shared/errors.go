package shared

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound             = NewDomainError("NOT_FOUND", "Resource not found")
	ErrValidation           = NewDomainError("VALIDATION_ERROR", "Invalid input provided")
	ErrUnauthorized         = NewDomainError("UNAUTHORIZED", "Not authorized to perform this action")
	ErrForbidden            = NewDomainError("FORBIDDEN", "Access to this resource is forbidden")
	ErrInvalidState         = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
	ErrSettlementInProgress = NewDomainError("SETTLEMENT_IN_PROGRESS", "Settlement is already running for this stage")
	ErrIncompleteConsensus  = NewDomainError("INCOMPLETE_CONSENSUS", "One or more groups have no accepted ranking")
	ErrAlreadySettled       = NewDomainError("ALREADY_SETTLED", "Stage has already been settled")
	ErrAlreadyReversed      = NewDomainError("ALREADY_REVERSED", "Settlement has already been reversed")
	ErrInvalidVoter         = NewDomainError("INVALID_VOTER", "Voter is not eligible to vote on this proposal")
	ErrStageSettling        = NewDomainError("STAGE_SETTLING", "Stage is settling, try again shortly")
	ErrInternal             = NewDomainError("INTERNAL_ERROR", "Internal error")
)
