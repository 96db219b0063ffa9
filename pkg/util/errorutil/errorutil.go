package errorutil

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"
)

// Sentinels for the complaint error taxonomy. DomainError values built by the
// constructors below unwrap to one of these so callers can use errors.Is.
var (
	ErrStoreUnavailable    = errors.New("complaint store unavailable")
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrUnassignedComplaint = errors.New("complaint has no responder")
	ErrMalformedRecord     = errors.New("malformed complaint record")
	ErrComplaintClosed     = errors.New("complaint is closed")
	ErrNotFound            = errors.New("not found")
	ErrValidation          = errors.New("validation failed")
	ErrConcurrentUpdate    = errors.New("complaint modified concurrently")
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return &DomainError{
		Code:       "VALIDATION_FAILED",
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
		Details:    details,
		Err:        ErrValidation,
	}
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
		Err:        ErrNotFound,
	}
}

func NewUnauthorized(message string) error {
	return NewDomainError("UNAUTHORIZED", message, http.StatusUnauthorized, nil)
}

func NewForbidden(message string) error {
	return NewDomainError("FORBIDDEN", message, http.StatusForbidden, nil)
}

// NewStoreUnavailable wraps a collaborator failure. The cause is kept for
// logging but never rendered to clients.
func NewStoreUnavailable(cause error) error {
	return &DomainError{
		Code:       "STORE_UNAVAILABLE",
		Message:    "Error fetching complaints",
		HTTPStatus: http.StatusServiceUnavailable,
		Err:        fmt.Errorf("%w: %w", ErrStoreUnavailable, cause),
	}
}

// NewInvalidTransition reports a status change that breaks forward ordering.
func NewInvalidTransition(from, to string) error {
	return &DomainError{
		Code:       "INVALID_TRANSITION",
		Message:    fmt.Sprintf("cannot move complaint from %q to %q", from, to),
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"from": from, "to": to},
		Err:        ErrInvalidTransition,
	}
}

// NewUnassignedComplaint reports an attempt to start work without a responder.
func NewUnassignedComplaint(complaintID string) error {
	return &DomainError{
		Code:       "UNASSIGNED_COMPLAINT",
		Message:    "complaint must be assigned before work starts",
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"complaint_id": complaintID},
		Err:        ErrUnassignedComplaint,
	}
}

// NewMalformedRecord reports a stored record that misses required fields.
func NewMalformedRecord(complaintID, reason string) error {
	return &DomainError{
		Code:       "MALFORMED_RECORD",
		Message:    reason,
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    map[string]any{"complaint_id": complaintID},
		Err:        ErrMalformedRecord,
	}
}

// NewComplaintClosed reports a write against a frozen complaint.
func NewComplaintClosed(complaintID string) error {
	return &DomainError{
		Code:       "COMPLAINT_CLOSED",
		Message:    "closed complaints cannot be modified",
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"complaint_id": complaintID},
		Err:        ErrComplaintClosed,
	}
}

// NewConcurrentUpdate reports a write based on a stale read of the complaint.
func NewConcurrentUpdate(complaintID string) error {
	return &DomainError{
		Code:       "CONCURRENT_UPDATE",
		Message:    "complaint was modified by another request",
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"complaint_id": complaintID},
		Err:        ErrConcurrentUpdate,
	}
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return NewNotFound("resource", nil).(*DomainError)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return NewStoreUnavailable(err).(*DomainError)
	}
	return NewInternalError(err).(*DomainError)
}

// MapError converts an error into its DomainError form.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	return ToDomainError(err)
}

// StoreError maps a repository failure. Missing rows become NOT_FOUND for
// the named resource, a lost version check becomes CONCURRENT_UPDATE and
// everything else is a store outage.
func StoreError(err error, resource string, details map[string]any) error {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, ErrNotFound) {
		return NewNotFound(resource, details)
	}
	if errors.Is(err, ErrConcurrentUpdate) {
		id, _ := details["complaint_id"].(string)
		return NewConcurrentUpdate(id)
	}
	return NewStoreUnavailable(err)
}
