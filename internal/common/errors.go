// Package common defines sentinel errors shared by the catalog layers.
// Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Validation errors for user-supplied module data.
	ErrValidation = errors.New("validation error")

	// ErrLocalStorage marks failures of the on-device store. These are fatal for
	// the operation that hit them.
	ErrLocalStorage = errors.New("local storage unavailable")

	// Remote store errors. Both are non-fatal: the record stays local and is
	// reported as pending sync.
	ErrRemoteUnavailable   = errors.New("remote store unavailable")
	ErrRemoteMisconfigured = errors.New("remote store misconfigured")

	// ErrRemoteDisabled is reported when no remote store is configured.
	ErrRemoteDisabled = errors.New("remote store disabled")
)
