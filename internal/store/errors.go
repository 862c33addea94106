package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in the store.
	// This is a generic version of the entity-specific not found errors
	// (e.g., ErrAccountNotFound, ErrVerseSetNotFound).
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when an operation would create a duplicate
	// of a unique entity (e.g., an account with the same email).
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidEntity is returned when an entity fails validation before
	// being stored. Check the wrapped error for specific validation details.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrTransactionFailed is returned when a database transaction fails
	// to commit or when an operation within a transaction fails.
	ErrTransactionFailed = errors.New("transaction failed")

	// Entity-specific "not found" errors

	ErrAccountNotFound   = fmt.Errorf("%w: account", ErrNotFound)
	ErrVersionNotFound   = fmt.Errorf("%w: text version", ErrNotFound)
	ErrVerseNotFound     = fmt.Errorf("%w: verse", ErrNotFound)
	ErrVerseSetNotFound  = fmt.Errorf("%w: verse set", ErrNotFound)
	ErrStatusNotFound    = fmt.Errorf("%w: user verse status", ErrNotFound)
	ErrEventNotFound     = fmt.Errorf("%w: event", ErrNotFound)
	ErrGroupNotFound     = fmt.Errorf("%w: group", ErrNotFound)
	ErrCommentNotFound   = fmt.Errorf("%w: comment", ErrNotFound)
	ErrPageNotFound      = fmt.Errorf("%w: page", ErrNotFound)
	ErrDriveNotFound     = fmt.Errorf("%w: donation drive", ErrNotFound)
	ErrPaymentNotFound   = fmt.Errorf("%w: payment", ErrNotFound)
	ErrIdentityNotFound  = fmt.Errorf("%w: identity", ErrNotFound)
	ErrMembershipMissing = fmt.Errorf("%w: membership", ErrNotFound)

	// Entity-specific "duplicate" errors

	// ErrEmailExists indicates that an account with the given email already exists.
	ErrEmailExists = fmt.Errorf("%w: email", ErrDuplicate)

	// ErrUsernameExists indicates that the username is taken (case-insensitively).
	ErrUsernameExists = fmt.Errorf("%w: username", ErrDuplicate)

	// ErrSlugExists indicates that a slug or page URL is already in use.
	ErrSlugExists = fmt.Errorf("%w: slug", ErrDuplicate)

	// ErrTxnExists indicates that a payment with the same transaction id was recorded.
	ErrTxnExists = fmt.Errorf("%w: payment transaction", ErrDuplicate)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
// All entity-specific errors wrap ErrNotFound.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateError checks if the error is any kind of "duplicate" error.
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}

// StoreError is a custom error type for store-specific errors with additional context.
type StoreError struct {
	Entity    string // The entity type (e.g., "account", "page")
	Operation string // The operation that failed (e.g., "create", "update")
	Message   string // Error message
	Err       error  // Original error
}

// Error implements the error interface for StoreError.
func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s operation on %s failed: %s: %v", e.Operation, e.Entity, e.Message, e.Err)
	}
	return fmt.Sprintf("%s operation on %s failed: %s", e.Operation, e.Entity, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError with the given entity, operation, message, and wrapped error.
func NewStoreError(entity, operation, message string, err error) *StoreError {
	return &StoreError{
		Entity:    entity,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
