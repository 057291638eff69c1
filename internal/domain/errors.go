package domain

import "errors"

var (
	// ErrEnvironment is returned when the browser or its driver cannot be started
	ErrEnvironment = errors.New("browser environment unavailable")

	// ErrFetchTimeout is returned when the weather page does not load within the configured bound
	ErrFetchTimeout = errors.New("weather page did not load in time")

	// ErrElementNotFound is returned when the page loaded but no weather condition element was found
	ErrElementNotFound = errors.New("weather condition element not found")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrRateLimited is returned when rate limit is exceeded
	ErrRateLimited = errors.New("rate limit exceeded")
)

// IsPageFailure reports whether err is one of the failures that degrade into a
// negative result instead of aborting the run.
func IsPageFailure(err error) bool {
	return errors.Is(err, ErrFetchTimeout) ||
		errors.Is(err, ErrElementNotFound) ||
		errors.Is(err, ErrRateLimited)
}
