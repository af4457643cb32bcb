package shell

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplit(t *testing.T) {
	t.Run("plain arguments", func(t *testing.T) {
		out, err := Split("-m 4G -smp 4")
		require.NoError(t, err)
		require.Equal(t, []string{"-m", "4G", "-smp", "4"}, out)
	})

	t.Run("double quoted segment", func(t *testing.T) {
		out, err := Split(`-name "arch test vm"`)
		require.NoError(t, err)
		require.Equal(t, []string{"-name", "arch test vm"}, out)
	})

	t.Run("single quoted segment", func(t *testing.T) {
		out, err := Split(`-append 'quiet splash'`)
		require.NoError(t, err)
		require.Equal(t, []string{"-append", "quiet splash"}, out)
	})

	t.Run("escaped space", func(t *testing.T) {
		out, err := Split(`a\ b c`)
		require.NoError(t, err)
		require.Equal(t, []string{"a b", "c"}, out)
	})

	t.Run("repeated spaces", func(t *testing.T) {
		out, err := Split("a  b")
		require.NoError(t, err)
		require.Equal(t, []string{"a", "b"}, out)
	})

	t.Run("empty input", func(t *testing.T) {
		out, err := Split("")
		require.NoError(t, err)
		require.Empty(t, out)
	})

	t.Run("mismatched quotes", func(t *testing.T) {
		_, err := Split(`-name "unterminated`)
		require.ErrorIs(t, err, ErrMismatchedQuotes)
	})

	t.Run("trailing backslash", func(t *testing.T) {
		_, err := Split(`foo\`)
		require.ErrorIs(t, err, ErrTrailingBackslash)
	})
}
