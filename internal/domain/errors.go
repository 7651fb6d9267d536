/**
 * @description
 * Sentinel errors shared across the integration-service. Handlers map these
 * onto HTTP status codes; services and stores wrap them with context using
 * fmt.Errorf("...: %w", err) so callers can still match with errors.Is.
 */
package domain

import "errors"

var (
	// ErrAuthentication is returned when the caller's identity is missing or invalid.
	ErrAuthentication = errors.New("authentication required")

	// ErrAuthorization is returned when the caller is not a registered reviewer.
	ErrAuthorization = errors.New("caller is not a registered reviewer")

	// ErrPermissionDenied is returned when a reviewer lacks the capability flag
	// for the requested claim type.
	ErrPermissionDenied = errors.New("permission denied for this verification type")

	// ErrScope is returned when the target athlete belongs to a different
	// institution than the reviewer.
	ErrScope = errors.New("athlete does not belong to your institution")

	// ErrNotFound is returned when a referenced entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrValidation is returned for malformed or missing required fields.
	ErrValidation = errors.New("invalid request")

	// ErrSignature is returned when a webhook signature fails the HMAC check.
	ErrSignature = errors.New("webhook signature mismatch")

	// ErrConflict is returned when an operation collides with existing state,
	// e.g. connecting an account that already has an active link.
	ErrConflict = errors.New("conflict with existing state")
)
