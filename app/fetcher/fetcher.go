package fetcher

import (
	"context"
	"strings"
)

// Fetcher returns the raw feed document found at url.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// looksLikeXML reports whether text is a bare XML document rather than
// the visible text of a page that merely renders one.
func looksLikeXML(text string) bool {
	return strings.HasPrefix(strings.TrimSpace(text), "<")
}
