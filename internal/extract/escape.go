// internal/extract/escape.go
package extract

import (
	"strconv"
	"strings"
)

// Escape makes an arbitrary string safe to splice into a CSS selector so the
// result matches only literal occurrences of the input. It follows the CSSOM
// serialization rules for identifiers: a leading digit (or a digit after a
// leading hyphen) becomes a code-point escape, a lone hyphen is
// backslash-escaped, NUL becomes U+FFFD, control characters become code-point
// escapes, and any other character outside [-_a-zA-Z0-9] or U+0080+ gets a
// backslash prefix. Empty input yields the empty string.
func Escape(raw string) string {
	if raw == "" {
		return ""
	}

	runes := []rune(raw)
	var sb strings.Builder
	for i, r := range runes {
		switch {
		case r == 0:
			sb.WriteRune('�')
		case (r >= 0x01 && r <= 0x1f) || r == 0x7f:
			writeCodePointEscape(&sb, r)
		case i == 0 && r >= '0' && r <= '9':
			writeCodePointEscape(&sb, r)
		case i == 1 && r >= '0' && r <= '9' && runes[0] == '-':
			writeCodePointEscape(&sb, r)
		case i == 0 && r == '-' && len(runes) == 1:
			sb.WriteString(`\-`)
		case r >= 0x80 || r == '-' || r == '_' ||
			(r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
			sb.WriteRune(r)
		default:
			sb.WriteByte('\\')
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// writeCodePointEscape emits `\<hex> ` with the trailing space terminator.
func writeCodePointEscape(sb *strings.Builder, r rune) {
	sb.WriteByte('\\')
	sb.WriteString(strconv.FormatInt(int64(r), 16))
	sb.WriteByte(' ')
}
