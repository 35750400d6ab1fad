package services

import "errors"

// Precondition failures reported by the draw engine. None of them mutate state.
var (
	ErrUnknownTier      = errors.New("unknown prize tier")
	ErrAlreadyDrawn     = errors.New("winners for this tier have already been drawn")
	ErrInsufficientPool = errors.New("not enough names left in the pool for this tier")
	ErrDrawInProgress   = errors.New("another draw is already in progress")
	ErrNotInProgress    = errors.New("no draw is in progress for this tier")
	ErrEmptyRoster      = errors.New("roster contains no names")
)

// ErrInvalidCredentials is returned by the auth service for any failed login
var ErrInvalidCredentials = errors.New("invalid username or password")

// reason returns a short metric label for a precondition error
func reason(err error) string {
	switch {
	case errors.Is(err, ErrUnknownTier):
		return "unknown_tier"
	case errors.Is(err, ErrAlreadyDrawn):
		return "already_drawn"
	case errors.Is(err, ErrInsufficientPool):
		return "insufficient_pool"
	case errors.Is(err, ErrDrawInProgress):
		return "draw_in_progress"
	case errors.Is(err, ErrNotInProgress):
		return "not_in_progress"
	case errors.Is(err, ErrEmptyRoster):
		return "empty_roster"
	default:
		return "other"
	}
}
