package common

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an AppError. Every component boundary maps the failures it
// sees onto one of these.
type Kind string

const (
	KindInputValidation     Kind = "INPUT_VALIDATION"
	KindUpstreamService     Kind = "UPSTREAM_SERVICE"
	KindResponseShape       Kind = "RESPONSE_SHAPE"
	KindStorageProvisioning Kind = "STORAGE_PROVISIONING"
	KindStorageWrite        Kind = "STORAGE_WRITE"
	KindInternal            Kind = "INTERNAL"
)

// Fine-grained codes carried alongside a Kind.
const (
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeUnsupportedMime    = "UNSUPPORTED_MIME"
	CodePayloadTooLarge    = "PAYLOAD_TOO_LARGE"
	CodeInvalidPayload     = "INVALID_PAYLOAD"
	CodeContentMismatch    = "CONTENT_MISMATCH"
	CodeUnknownModel       = "UNKNOWN_MODEL"
	CodeInvalidFieldValue  = "INVALID_FIELD_VALUE"
	CodeMethodNotAllowed   = "METHOD_NOT_ALLOWED"
	CodeNotFound           = "NOT_FOUND"
	CodeOriginNotAllowed   = "ORIGIN_NOT_ALLOWED"
	CodeProviderNotAllowed = "PROVIDER_NOT_ALLOWED"
	CodeUpstreamFailed     = "UPSTREAM_FAILED"
	CodeMalformedResponse  = "MALFORMED_RESPONSE"
	CodeUnknownPlaceholder = "UNKNOWN_PLACEHOLDER"
	CodeTemplateOrder      = "TEMPLATE_ORDER"
	CodeManualProvisioning = "MANUAL_PROVISIONING_REQUIRED"
	CodeProvisionFailed    = "PROVISION_FAILED"
	CodeConnectionFailed   = "CONNECTION_FAILED"
	CodeWriteFailed        = "WRITE_FAILED"
	CodeInternal           = "INTERNAL"
)

// AppError represents application-specific errors
type AppError struct {
	Kind    Kind
	Code    string
	Message string
	// Hint is actionable guidance safe to show to the caller (e.g. DDL to run by hand).
	Hint    string
	Details []ValidationError
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Retryable reports whether the caller may simply re-invoke the operation.
func (e *AppError) Retryable() bool {
	return e.Kind == KindUpstreamService
}

// HTTPStatus maps the error onto a response status.
func (e *AppError) HTTPStatus() int {
	switch e.Kind {
	case KindInputValidation:
		switch e.Code {
		case CodePayloadTooLarge:
			return http.StatusRequestEntityTooLarge
		case CodeMethodNotAllowed:
			return http.StatusMethodNotAllowed
		case CodeNotFound:
			return http.StatusNotFound
		case CodeOriginNotAllowed:
			return http.StatusForbidden
		}
		return http.StatusBadRequest
	case KindUpstreamService:
		return http.StatusServiceUnavailable
	case KindResponseShape:
		return http.StatusBadGateway
	case KindStorageProvisioning, KindStorageWrite:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Common application errors
var (
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrInternal     = errors.New("internal error")
	ErrDatabase     = errors.New("database error")
	ErrValidation   = errors.New("validation failed")
)

// Error constructors
func NewAppError(kind Kind, code, message string, cause error) *AppError {
	return &AppError{
		Kind:    kind,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func InputError(code, message string, cause error) *AppError {
	return NewAppError(KindInputValidation, code, message, cause)
}

func UpstreamError(message string, cause error) *AppError {
	return NewAppError(KindUpstreamService, CodeUpstreamFailed, message, cause)
}

func ShapeError(code, message string, cause error) *AppError {
	return NewAppError(KindResponseShape, code, message, cause)
}

func ProvisioningError(code, message, hint string, cause error) *AppError {
	e := NewAppError(KindStorageProvisioning, code, message, cause)
	e.Hint = hint
	return e
}

func WriteError(code, message string, cause error) *AppError {
	return NewAppError(KindStorageWrite, code, message, cause)
}

// WithDetails attaches field-level validation failures.
func (e *AppError) WithDetails(details []ValidationError) *AppError {
	e.Details = details
	return e
}

// AsAppError extracts an AppError from err, wrapping anything unclassified as
// an internal fault.
func AsAppError(err error) *AppError {
	if err == nil {
		return nil
	}
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	return NewAppError(KindInternal, CodeInternal, "unclassified failure", err)
}

// IsKind reports whether err carries an AppError of the given kind.
func IsKind(err error, kind Kind) bool {
	var ae *AppError
	return errors.As(err, &ae) && ae.Kind == kind
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
