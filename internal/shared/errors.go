package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate indicates a uniqueness violation.
	ErrDuplicate = errors.New("duplicate entry")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountDisabled indicates the profile is flagged disabled.
	ErrAccountDisabled = errors.New("account disabled")
	// ErrProfileNotFound indicates a valid identity without a profile row.
	ErrProfileNotFound = errors.New("profile not found")
	// ErrSessionInvalid indicates a missing, expired or revoked session token.
	ErrSessionInvalid = errors.New("session invalid")
	// ErrForbidden indicates a valid session without the required capability.
	ErrForbidden = errors.New("forbidden")
	// ErrCSRFTokenMissing occurs when the CSRF token is missing.
	ErrCSRFTokenMissing = errors.New("csrf token missing")
	// ErrCSRFTokenMismatch occurs when CSRF tokens do not match.
	ErrCSRFTokenMismatch = errors.New("csrf token mismatch")
)
