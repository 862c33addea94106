package service

import "errors"

// Common service errors - sentinel errors used across service implementations.
// These errors represent common conditions that callers may want to check for with errors.Is().
//
// Error handling principles:
// 1. Service methods return sentinel errors for expected error conditions
// 2. Store and domain errors are wrapped with %w so callers can still match them
// 3. The API layer maps service errors to appropriate HTTP status codes
var (
	// ErrNotOwned indicates a resource belongs to a different account than the one making the request.
	// API layer should map this to HTTP 403 Forbidden.
	ErrNotOwned = errors.New("resource is owned by another account")

	// ErrForbidden indicates the caller lacks the role required for the operation.
	ErrForbidden = errors.New("operation not permitted")

	// ErrNotMember indicates the caller must belong to the group first.
	ErrNotMember = errors.New("not a member of the group")

	// ErrInvalidCredentials is returned by Login for an unknown account or wrong password.
	// The two cases are deliberately indistinguishable.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrAccountInactive is returned when a deactivated account tries to sign in.
	ErrAccountInactive = errors.New("account is inactive")

	// ErrCommentingDisabled is returned when the author has commenting turned off.
	ErrCommentingDisabled = errors.New("commenting is disabled for this account")

	// ErrCreatorCannotLeave is returned when a group creator tries to leave it.
	ErrCreatorCannotLeave = errors.New("group creator cannot leave the group")

	// ErrNotInvited is returned when joining a closed group without an invitation.
	ErrNotInvited = errors.New("group requires an invitation")

	// ErrNoVerses is returned when a reference or set resolves to no verses.
	ErrNoVerses = errors.New("no verses found")

	// ErrIPNNotVerified is returned when PayPal does not confirm a notification.
	ErrIPNNotVerified = errors.New("payment notification not verified")

	// ErrIPNVerifyFailed is returned when PayPal could not be asked to verify a
	// notification. Callers should let PayPal retry.
	ErrIPNVerifyFailed = errors.New("payment notification verification unavailable")
)
