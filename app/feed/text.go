package feed

import (
	"net/url"
	"path"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Excerpt returns at most n runes of the visible text of an HTML fragment.
func Excerpt(fragment string, n int) string {
	text := fragment
	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment)); err == nil {
		text = doc.Text()
	}
	text = strings.Join(strings.Fields(text), " ")

	r := []rune(text)
	if len(r) <= n {
		return text
	}
	if n <= 3 {
		return string(r[:n])
	}
	return strings.TrimSpace(string(r[:n-3])) + "..."
}

// Slug derives the routing key the site uses for a post: the last path
// segment of its link, falling back to the guid.
func Slug(item CacheItem) string {
	if u, err := url.Parse(item.Link); err == nil && item.Link != "" {
		if base := path.Base(strings.TrimRight(u.Path, "/")); base != "." && base != "/" && base != "" {
			if s := slugify(base); s != "" {
				return s
			}
		}
	}
	return slugify(item.GUID)
}

func slugify(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(folded) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimRight(b.String(), "-")
}
