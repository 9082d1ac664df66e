package args

import (
	"errors"
	"strings"
	"unicode"
)

// ErrUnmatchedQuote is reported when a source ends inside a quoted span. The
// partial token is still returned.
var ErrUnmatchedQuote = errors.New("unmatched quote")

// Tokenize splits text into tokens. Whitespace separates tokens except inside a
// double-quoted span, where it is kept as is, newlines included. Quote characters
// are removed. Lines whose first non-blank character is # are comments unless
// they continue a quoted span.
func Tokenize(text string) ([]string, error) {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return scan(strings.Split(text, "\n"), "\n")
}

// TokenizeLines tokenizes the lines of an argument file. Comment lines are
// dropped and the rest are joined with a single space, so a quoted span broken
// over several lines yields one token with a space at each break.
func TokenizeLines(lines []string) ([]string, error) {
	trimmed := make([]string, len(lines))
	for i, line := range lines {
		trimmed[i] = strings.TrimRight(line, "\r")
	}
	return scan(trimmed, " ")
}

func isComment(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), "#")
}

// scan tokenizes lines joined by sep, skipping comment lines that start
// outside a quoted span.
func scan(lines []string, sep string) ([]string, error) {
	var (
		tokens   []string
		current  strings.Builder
		inQuotes bool
	)

	flush := func() {
		if current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}
	}
	feed := func(s string) {
		for _, r := range s {
			switch {
			case r == '"':
				inQuotes = !inQuotes
			case unicode.IsSpace(r) && !inQuotes:
				flush()
			default:
				current.WriteRune(r)
			}
		}
	}

	first := true
	for _, line := range lines {
		if !inQuotes && isComment(line) {
			continue
		}
		if !first {
			feed(sep)
		}
		first = false
		feed(line)
	}
	flush()

	if inQuotes {
		return tokens, ErrUnmatchedQuote
	}
	return tokens, nil
}
