// Package common defines shared constants and sentinel errors used across
// the CyberWise core layers. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Repository-level errors. Absent and unreadable stores both collapse
	// into ErrorNotFound; callers treat either as "no data found".
	ErrorNotFound = errors.New("not found")

	// Service-level errors.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("invalid username or password")

	// Session errors. Operations that need a logged-in account return
	// ErrorNoActiveAccount; it is recoverable, never fatal.
	ErrorNoActiveAccount = errors.New("no active account")

	// Crypto errors (seal/open failure, e.g. wrong or regenerated key).
	ErrorCryptoFailure = errors.New("crypto failure")

	// Vault errors.
	ErrorEntryNotFound = errors.New("vault entry not found")
)
