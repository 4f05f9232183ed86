package sportsdata

import (
	"errors"
	"fmt"
)

// StatRow is one player season-stat row as returned by the provider. Rows
// are kept loosely typed; numbers decode as json.Number so they round-trip
// unchanged.
type StatRow map[string]interface{}

// StatsFetchError reports a failed season-stats fetch: a non-2xx status,
// a transport failure or timeout, or an open circuit breaker.
type StatsFetchError struct {
	Season     string
	StatusCode int
	Err        error
}

func (e *StatsFetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch season stats %s: unexpected status %d", e.Season, e.StatusCode)
	}
	return fmt.Sprintf("fetch season stats %s: %v", e.Season, e.Err)
}

func (e *StatsFetchError) Unwrap() error {
	return e.Err
}

// IsStatsFetchError reports whether err is (or wraps) a StatsFetchError.
func IsStatsFetchError(err error) bool {
	var target *StatsFetchError
	return errors.As(err, &target)
}
