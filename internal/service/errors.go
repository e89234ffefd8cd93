package service

// Error codes returned by service operations.
const (
	ErrCodeNotFound   = "NOT_FOUND"
	ErrCodeConflict   = "CONFLICT"
	ErrCodeValidation = "VALIDATION"
	ErrCodeUpstream   = "UPSTREAM"
	ErrCodeInternal   = "INTERNAL"
)

// ServiceError represents a business logic error with a code for HTTP mapping.
type ServiceError struct {
	Code    string
	Message string
}

func (e *ServiceError) Error() string {
	return e.Message
}

func NewNotFoundError(message string) *ServiceError {
	return &ServiceError{Code: ErrCodeNotFound, Message: message}
}

func NewConflictError(message string) *ServiceError {
	return &ServiceError{Code: ErrCodeConflict, Message: message}
}

func NewValidationError(message string) *ServiceError {
	return &ServiceError{Code: ErrCodeValidation, Message: message}
}

func NewUpstreamError(message string) *ServiceError {
	return &ServiceError{Code: ErrCodeUpstream, Message: message}
}

func NewInternalError(message string) *ServiceError {
	return &ServiceError{Code: ErrCodeInternal, Message: message}
}
