package domain

import "fmt"

// DomainError represents a domain-specific error with a code and message
type DomainError struct {
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Error codes
const (
	ErrCodeNotFound        = "NOT_FOUND"
	ErrCodeValidation      = "VALIDATION_ERROR"
	ErrCodeUnauthorized    = "UNAUTHORIZED"
	ErrCodeWebhookDelivery = "WEBHOOK_DELIVERY_FAILED"
	ErrCodeProvider        = "PROVIDER_ERROR"
	ErrCodeStorage         = "STORAGE_ERROR"
	ErrCodeInternal        = "INTERNAL_ERROR"
)

// Error constructors

// NewNotFoundError creates a new not found error
func NewNotFoundError(resource string) error {
	return &DomainError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s not found", resource),
	}
}

// NewValidationError creates a new validation error
func NewValidationError(msg string) error {
	return &DomainError{
		Code:    ErrCodeValidation,
		Message: msg,
	}
}

// NewUnauthorizedError creates a new unauthorized error
func NewUnauthorizedError(msg string) error {
	if msg == "" {
		msg = "Authentication required"
	}
	return &DomainError{
		Code:    ErrCodeUnauthorized,
		Message: msg,
	}
}

// NewWebhookDeliveryError creates an error for a failed outbound webhook delivery
func NewWebhookDeliveryError(status int, body string) error {
	return &DomainError{
		Code:    ErrCodeWebhookDelivery,
		Message: fmt.Sprintf("webhook delivery failed with status %d: %s", status, body),
	}
}

// NewProviderError creates an error for an upstream provider failure
func NewProviderError(provider string, err error) error {
	return &DomainError{
		Code:    ErrCodeProvider,
		Message: fmt.Sprintf("%s request failed", provider),
		Err:     err,
	}
}

// NewStorageError creates an error for a datastore write/read failure
func NewStorageError(err error) error {
	return &DomainError{
		Code:    ErrCodeStorage,
		Message: "datastore operation failed",
		Err:     err,
	}
}

// NewInternalError creates a new internal error
func NewInternalError(err error) error {
	return &DomainError{
		Code:    ErrCodeInternal,
		Message: "An internal error occurred",
		Err:     err,
	}
}

// Helper functions to check error types

func hasCode(err error, code string) bool {
	if de, ok := err.(*DomainError); ok {
		return de.Code == code
	}
	return false
}

// IsNotFound checks if the error is a not found error
func IsNotFound(err error) bool { return hasCode(err, ErrCodeNotFound) }

// IsValidation checks if the error is a validation error
func IsValidation(err error) bool { return hasCode(err, ErrCodeValidation) }

// IsUnauthorized checks if the error is an unauthorized error
func IsUnauthorized(err error) bool { return hasCode(err, ErrCodeUnauthorized) }

// IsWebhookDelivery checks if the error is a webhook delivery failure
func IsWebhookDelivery(err error) bool { return hasCode(err, ErrCodeWebhookDelivery) }

// IsProvider checks if the error is an upstream provider failure
func IsProvider(err error) bool { return hasCode(err, ErrCodeProvider) }

// IsStorage checks if the error is a datastore failure
func IsStorage(err error) bool { return hasCode(err, ErrCodeStorage) }

// GetErrorCode extracts the error code from a domain error
func GetErrorCode(err error) string {
	if de, ok := err.(*DomainError); ok {
		return de.Code
	}
	return ErrCodeInternal
}
