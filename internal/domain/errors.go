package domain

import (
	"errors"
	"fmt"
)

// ErrorCode represents a machine-readable error code
type ErrorCode string

const (
	// Lookup failures (NOT_FOUND_*) - detected before any gateway call
	ErrorCodeInvoiceNotFound     ErrorCode = "NOT_FOUND_INVOICE"
	ErrorCodeContactNotFound     ErrorCode = "NOT_FOUND_CONTACT"
	ErrorCodeSalespersonNotFound ErrorCode = "NOT_FOUND_SALESPERSON"
	ErrorCodeCredentialNotFound  ErrorCode = "NOT_FOUND_MERCHANT_CREDENTIAL"
	ErrorCodeTxnNotFound         ErrorCode = "NOT_FOUND_TRANSACTION"
	ErrorCodeProfileNotFound     ErrorCode = "NOT_FOUND_PAYMENT_PROFILE"

	// State conflicts (CONFLICT_*)
	ErrorCodeAlreadyPaid    ErrorCode = "CONFLICT_ALREADY_PAID"
	ErrorCodeAmountExceeds  ErrorCode = "CONFLICT_AMOUNT_EXCEEDS_TRANSACTION"

	// Input validation (VALIDATION_*)
	ErrorCodeValidationFailed        ErrorCode = "VALIDATION_FAILED"
	ErrorCodePaymentMethodMissing    ErrorCode = "VALIDATION_PAYMENT_METHOD_MISSING"
	ErrorCodePaymentMethodUnknown    ErrorCode = "VALIDATION_PAYMENT_METHOD_UNKNOWN"
	ErrorCodeValidationAmountInvalid ErrorCode = "VALIDATION_AMOUNT_INVALID"

	// Gateway outcomes (GATEWAY_*)
	ErrorCodeGatewayDeclined  ErrorCode = "GATEWAY_DECLINED"
	ErrorCodeGatewayError     ErrorCode = "GATEWAY_ERROR"
	ErrorCodeGatewayTransport ErrorCode = "GATEWAY_TRANSPORT"

	// Credential storage (CREDENTIAL_*)
	ErrorCodeCredentialFormat ErrorCode = "CREDENTIAL_FORMAT_UNSUPPORTED"

	// Internal (INTERNAL_*)
	ErrorCodeInternalError ErrorCode = "INTERNAL_ERROR"
	ErrorCodeDatabaseError ErrorCode = "INTERNAL_DATABASE_ERROR"
)

// DomainError represents a structured domain error with error code and context
type DomainError struct {
	Err     error
	Details map[string]interface{}
	Code    ErrorCode
	Message string
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *DomainError) Unwrap() error {
	return e.Err
}

// WithDetail returns a copy of the error with the detail field added. The
// receiver is left untouched so the shared error instances stay immutable;
// identity checks go through GetErrorCode / IsDomainError, not pointer
// comparison.
func (e *DomainError) WithDetail(key string, value interface{}) *DomainError {
	details := make(map[string]interface{}, len(e.Details)+1)
	for k, v := range e.Details {
		details[k] = v
	}
	details[key] = value
	return &DomainError{
		Err:     e.Err,
		Details: details,
		Code:    e.Code,
		Message: e.Message,
	}
}

// NewDomainError creates a new domain error
func NewDomainError(code ErrorCode, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// WrapError wraps an existing error with a domain error code
func WrapError(code ErrorCode, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Err:     err,
	}
}

// GatewayFailure creates a domain error carrying the gateway's own code and
// message so callers can surface them verbatim.
func GatewayFailure(code ErrorCode, gatewayCode, gatewayMessage string) *DomainError {
	e := NewDomainError(code, gatewayMessage)
	e.Details["gateway_code"] = gatewayCode
	return e
}

// GetErrorCode extracts the error code from an error, returns empty string if not a DomainError
func GetErrorCode(err error) ErrorCode {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return ""
}

// IsDomainError checks if an error is a DomainError with the given code
func IsDomainError(err error, code ErrorCode) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}

// IsNotFoundError checks if an error represents a "not found" condition
func IsNotFoundError(err error) bool {
	code := GetErrorCode(err)
	return code == ErrorCodeInvoiceNotFound ||
		code == ErrorCodeContactNotFound ||
		code == ErrorCodeSalespersonNotFound ||
		code == ErrorCodeCredentialNotFound ||
		code == ErrorCodeTxnNotFound ||
		code == ErrorCodeProfileNotFound
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	code := GetErrorCode(err)
	return code == ErrorCodeValidationFailed ||
		code == ErrorCodePaymentMethodMissing ||
		code == ErrorCodePaymentMethodUnknown ||
		code == ErrorCodeValidationAmountInvalid
}

// IsRetryable reports whether the failure class is eligible for caller-driven
// retry. Only transport failures qualify; declines and gateway errors are
// terminal for the attempt.
func IsRetryable(err error) bool {
	return GetErrorCode(err) == ErrorCodeGatewayTransport
}

// Structured error instances
var (
	ErrInvoiceNotFound     = NewDomainError(ErrorCodeInvoiceNotFound, "invoice not found")
	ErrContactNotFound     = NewDomainError(ErrorCodeContactNotFound, "invoice contact not found")
	ErrSalespersonNotFound = NewDomainError(ErrorCodeSalespersonNotFound, "invoice sales person not found")
	ErrCredentialNotFound  = NewDomainError(ErrorCodeCredentialNotFound, "merchant details not found")
	ErrTxnNotFound         = NewDomainError(ErrorCodeTxnNotFound, "transaction not found")
	ErrProfileNotFound     = NewDomainError(ErrorCodeProfileNotFound, "payment profile details not found")

	ErrAlreadyPaid   = NewDomainError(ErrorCodeAlreadyPaid, "invoice already paid")
	ErrAmountExceeds = NewDomainError(ErrorCodeAmountExceeds, "amount exceeds transaction")

	ErrPaymentMethodMissing = NewDomainError(ErrorCodePaymentMethodMissing, "please provide payment method type")
	ErrPaymentMethodUnknown = NewDomainError(ErrorCodePaymentMethodUnknown, "unrecognized payment method type")

	ErrCredentialFormat = NewDomainError(ErrorCodeCredentialFormat, "unsupported stored credential format version")

	ErrInternalError = NewDomainError(ErrorCodeInternalError, "internal error")
	ErrDatabaseError = NewDomainError(ErrorCodeDatabaseError, "database error")
)
