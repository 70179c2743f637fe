package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrDependencyUnavailable = errors.New("dependency unavailable")

	ErrProviderUnavailable = errors.New("match data provider unavailable")
	ErrProviderRateLimited = errors.New("match data provider rate limited")
	ErrMalformedPayload    = errors.New("malformed match payload")
	ErrPersistenceConflict = errors.New("persistence conflict")
)
