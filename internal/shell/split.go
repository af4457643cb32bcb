// Package shell deals with breaking shell-like quoted strings into argument
// vectors.
package shell

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMismatchedQuotes is returned when the input string has mismatched quotes.
	ErrMismatchedQuotes = errors.New("mismatched quotes")

	// ErrTrailingBackslash is returned when the input string ends with a trailing backslash.
	ErrTrailingBackslash = errors.New("trailing backslash")
)

// Split splits the input string into segments respecting shell-like quoting.
// Variables and command substitutions are not handled.
func Split(input string) ([]string, error) { //nolint:cyclop
	var segments []string
	var currentSegment strings.Builder
	var inDoubleQuotes, inSingleQuotes, isEscaped bool

	for i := 0; i < len(input); i++ {
		currentChar := input[i]

		if isEscaped {
			currentSegment.WriteByte(currentChar)
			isEscaped = false
			continue
		}

		switch {
		case currentChar == '\\' && !inSingleQuotes:
			isEscaped = true
		case currentChar == '"' && !inSingleQuotes:
			inDoubleQuotes = !inDoubleQuotes
		case currentChar == '\'' && !inDoubleQuotes:
			inSingleQuotes = !inSingleQuotes
		case currentChar == ' ' && !inDoubleQuotes && !inSingleQuotes:
			// Space outside quotes; delimiter for a new segment
			if currentSegment.Len() > 0 {
				segments = append(segments, currentSegment.String())
				currentSegment.Reset()
			}
		default:
			currentSegment.WriteByte(currentChar)
		}
	}

	if inDoubleQuotes || inSingleQuotes {
		return nil, fmt.Errorf("split `%q`: %w", input, ErrMismatchedQuotes)
	}

	if isEscaped {
		return nil, fmt.Errorf("split `%q`: %w", input, ErrTrailingBackslash)
	}

	if currentSegment.Len() > 0 {
		segments = append(segments, currentSegment.String())
	}

	return segments, nil
}
