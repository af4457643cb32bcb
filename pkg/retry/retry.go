// Package retry provides simple retry wrappers for functions that return an error
package retry

import (
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
)

// ErrAbort should be returned when an error occurs on which retrying should be aborted
var ErrAbort = errors.New("retrying aborted")

// Times retries the given function until it succeeds, returns ErrAbort or the
// given number of attempts have been made.
func Times(times int, f func() error) error {
	var lastErr error

	for i := 0; i < times; i++ {
		if i > 0 {
			log.Debugf("retrying, attempt %d of %d - last error: %v", i+1, times, lastErr)
		}

		lastErr = f()

		if lastErr == nil {
			return nil
		}

		if errors.Is(lastErr, ErrAbort) {
			log.Tracef("retry.Times: aborted after %d attempts", i+1)
			return lastErr
		}
	}

	return fmt.Errorf("retry limit exceeded after %d attempts: %w", times, lastErr)
}
