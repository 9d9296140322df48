package agent

import (
	"errors"
	"fmt"
)

// ErrNoJSON is returned when no balanced JSON literal is present in the text.
var ErrNoJSON = errors.New("no JSON literal found")

// ExtractArray returns the first balanced JSON array literal found in free
// text. Agent responses wrap their payload in prose, so this scans for the
// first '[' and returns the substring up to its matching ']', tracking string
// literals and escapes so brackets inside strings do not terminate the scan.
func ExtractArray(text string) (string, error) {
	return extractBalanced(text, '[', ']')
}

// ExtractObject returns the first balanced JSON object literal found in free
// text, with the same contract as ExtractArray.
func ExtractObject(text string) (string, error) {
	return extractBalanced(text, '{', '}')
}

func extractBalanced(text string, open, close byte) (string, error) {
	start := -1
	depth := 0
	inString := false
	escaped := false

	for i := 0; i < len(text); i++ {
		ch := text[i]

		if start >= 0 && inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}

		switch ch {
		case open:
			if start < 0 {
				start = i
			}
			depth++
		case close:
			if start < 0 {
				continue
			}
			depth--
			if depth == 0 {
				return text[start : i+1], nil
			}
		case '"':
			if start >= 0 {
				inString = true
			}
		}
	}

	if start >= 0 {
		return "", fmt.Errorf("%w: unbalanced %q literal", ErrNoJSON, string(open))
	}
	return "", ErrNoJSON
}
