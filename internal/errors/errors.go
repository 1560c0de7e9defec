package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind is the structured category every application error reports.
type Kind string

const (
	KindValidation        Kind = "VALIDATION_ERROR"
	KindNotFound          Kind = "NOT_FOUND"
	KindInsufficientStock Kind = "INSUFFICIENT_STOCK"
	KindConflict          Kind = "CONFLICT"
	KindForbidden         Kind = "FORBIDDEN"
	KindUnauthorized      Kind = "UNAUTHORIZED"
	KindDeadlock          Kind = "DEADLOCK"
	KindInternal          Kind = "INTERNAL_ERROR"
)

type ValidationDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ValidationError struct {
	Message string
	Details []ValidationDetail
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(message string, details ...ValidationDetail) *ValidationError {
	return &ValidationError{
		Message: message,
		Details: details,
	}
}

func IsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if stderrors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string {
	return e.Message
}

func NewNotFoundError(message string) *NotFoundError {
	return &NotFoundError{Message: message}
}

func IsNotFoundError(err error) (*NotFoundError, bool) {
	var nf *NotFoundError
	if stderrors.As(err, &nf) {
		return nf, true
	}
	return nil, false
}

// InsufficientStockError reports a mutation rejected because the product's
// stock would fall below zero.
type InsufficientStockError struct {
	Message   string
	ProductID string
	Stock     int
	Candidate int
}

func (e *InsufficientStockError) Error() string {
	return e.Message
}

func NewInsufficientStockError(productID string, stock, candidate int) *InsufficientStockError {
	return &InsufficientStockError{
		Message:   fmt.Sprintf("insufficient stock for product %s: stock %d would become %d", productID, stock, candidate),
		ProductID: productID,
		Stock:     stock,
		Candidate: candidate,
	}
}

func IsInsufficientStockError(err error) (*InsufficientStockError, bool) {
	var ie *InsufficientStockError
	if stderrors.As(err, &ie) {
		return ie, true
	}
	return nil, false
}

type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

func NewConflictError(message string) *ConflictError {
	return &ConflictError{Message: message}
}

func IsConflictError(err error) (*ConflictError, bool) {
	var ce *ConflictError
	if stderrors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

type ForbiddenError struct {
	Message string
}

func (e *ForbiddenError) Error() string {
	return e.Message
}

func NewForbiddenError(message string) *ForbiddenError {
	return &ForbiddenError{Message: message}
}

func IsForbiddenError(err error) (*ForbiddenError, bool) {
	var fe *ForbiddenError
	if stderrors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

type UnauthorizedError struct {
	Message string
}

func (e *UnauthorizedError) Error() string {
	return e.Message
}

func NewUnauthorizedError(message string) *UnauthorizedError {
	return &UnauthorizedError{Message: message}
}

func IsUnauthorizedError(err error) (*UnauthorizedError, bool) {
	var ue *UnauthorizedError
	if stderrors.As(err, &ue) {
		return ue, true
	}
	return nil, false
}

// DeadlockError is returned once every retry of a transaction lost a lock
// race. Callers may retry the whole operation.
type DeadlockError struct {
	Message string
}

func (e *DeadlockError) Error() string {
	return e.Message
}

func NewDeadlockError(message string) *DeadlockError {
	return &DeadlockError{Message: message}
}

func IsDeadlockError(err error) (*DeadlockError, bool) {
	var de *DeadlockError
	if stderrors.As(err, &de) {
		return de, true
	}
	return nil, false
}

type InternalError struct {
	Message string
	Cause   error
}

func (e *InternalError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *InternalError) Unwrap() error {
	return e.Cause
}

func NewInternalError(message string, cause error) *InternalError {
	return &InternalError{
		Message: message,
		Cause:   cause,
	}
}

// KindOf classifies err. Anything that is not one of the typed errors above
// is a system failure.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return ""
	case isType[*ValidationError](err):
		return KindValidation
	case isType[*NotFoundError](err):
		return KindNotFound
	case isType[*InsufficientStockError](err):
		return KindInsufficientStock
	case isType[*ConflictError](err):
		return KindConflict
	case isType[*ForbiddenError](err):
		return KindForbidden
	case isType[*UnauthorizedError](err):
		return KindUnauthorized
	case isType[*DeadlockError](err):
		return KindDeadlock
	default:
		return KindInternal
	}
}

func isType[T error](err error) bool {
	var target T
	return stderrors.As(err, &target)
}
