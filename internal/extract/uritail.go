// internal/extract/uritail.go
package extract

import "strings"

// URITail reduces a long href/src value to a short, human-recognizable
// trailing fragment: the query string and fragment are dropped, the last
// non-empty path segment is taken, and the result is capped at max bytes
// keeping the suffix. Long dynamic URIs thereby still contribute a short,
// stable fragment for suffix-match ($=) selectors.
func URITail(value string, max int) string {
	tail := value
	if i := strings.IndexAny(tail, "?#"); i >= 0 {
		tail = tail[:i]
	}
	tail = strings.TrimRight(tail, "/")
	if i := strings.LastIndexByte(tail, '/'); i >= 0 {
		tail = tail[i+1:]
	}
	if max > 0 && len(tail) > max {
		tail = tail[len(tail)-max:]
	}
	return tail
}
