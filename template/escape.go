package template

import "strings"

const (
	// Open marks the start of a tag.
	Open = "${["
	// Close marks the end of a tag.
	Close = "]}"

	escapeChar = '\\'
)

// Escape inserts a backslash before every occurrence of [Open] that is not
// already escaped. An occurrence is escaped when an odd number of
// backslashes immediately precedes it.
//
// Escape is idempotent.
func Escape(s string) string {
	if !strings.Contains(s, Open) {
		return s
	}

	var buf strings.Builder

	buf.Grow(len(s) + 4)

	for i := 0; i < len(s); {
		if strings.HasPrefix(s[i:], Open) && backslashesBefore(s, i)%2 == 0 {
			buf.WriteByte(escapeChar)
		}

		buf.WriteByte(s[i])
		i++
	}

	return buf.String()
}

// Unescape removes one escaping backslash from every escaped occurrence of
// [Open]. A backslash that is itself escaped (preceded by an odd number of
// backslashes) is kept.
func Unescape(s string) string {
	if !strings.Contains(s, `\`+Open) {
		return s
	}

	var buf strings.Builder

	buf.Grow(len(s))

	for i := 0; i < len(s); i++ {
		if s[i] == escapeChar &&
			strings.HasPrefix(s[i+1:], Open) &&
			backslashesBefore(s, i)%2 == 0 {
			continue // drop the escaping backslash
		}

		buf.WriteByte(s[i])
	}

	return buf.String()
}

// IsEscaped reports whether the [Open] sequence starting at index i of s is
// escaped.
func IsEscaped(s string, i int) bool {
	return backslashesBefore(s, i)%2 == 1
}

// backslashesBefore counts the run of backslashes immediately preceding
// index i of s.
func backslashesBefore(s string, i int) int {
	n := 0
	for j := i - 1; j >= 0 && s[j] == escapeChar; j-- {
		n++
	}

	return n
}
