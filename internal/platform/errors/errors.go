package apperrors

import "errors"

var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrNotFound      = errors.New("not found")
	ErrNotConnected  = errors.New("platform is not connected")
	ErrNotConfigured = errors.New("not configured")

	// Soft errors: the request was understood and nothing changed.
	ErrAlreadyConnected  = errors.New("platform already connected")
	ErrConnectionPending = errors.New("platform connection already in progress")
)

// IsSoft reports whether err only informs the caller that the request was a no-op.
func IsSoft(err error) bool {
	return errors.Is(err, ErrAlreadyConnected) || errors.Is(err, ErrConnectionPending)
}
