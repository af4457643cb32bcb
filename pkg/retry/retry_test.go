package retry

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTimesSucceedsEventually(t *testing.T) {
	calls := 0
	err := Times(3, func() error {
		calls++
		if calls < 3 {
			return errors.New("not yet")
		}
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 3, calls)
}

func TestTimesGivesUp(t *testing.T) {
	calls := 0
	err := Times(3, func() error {
		calls++
		return errors.New("nope")
	})
	require.Error(t, err)
	require.Equal(t, 3, calls)
}

func TestTimesAborts(t *testing.T) {
	calls := 0
	err := Times(5, func() error {
		calls++
		return fmt.Errorf("fatal: %w", ErrAbort)
	})
	require.ErrorIs(t, err, ErrAbort)
	require.Equal(t, 1, calls)
}
