package feed

import (
	"cmp"
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
)

const DefaultAuthor = "Anonymous"

type Mapper struct {
	defaultAuthor string
	now           func() time.Time
}

func NewMapper(defaultAuthor string) *Mapper {
	return &Mapper{
		defaultAuthor: cmp.Or(strings.TrimSpace(defaultAuthor), DefaultAuthor),
		now:           time.Now,
	}
}

func (m *Mapper) Run(raw RawItem) (CacheItem, error) {
	link := strings.TrimSpace(raw.Text("link"))
	description := strings.TrimSpace(raw.Text("description"))

	pubDate, err := m.pubDate(raw)
	if err != nil {
		return CacheItem{}, NewSyncError(KindInvalidDate, err)
	}

	return CacheItem{
		Title:       strings.TrimSpace(raw.Text("title")),
		PubDate:     pubDate,
		Link:        link,
		GUID:        cmp.Or(strings.TrimSpace(raw.Text("guid")), link),
		Author:      m.author(raw),
		Thumbnail:   "",
		Description: description,
		Content:     cmp.Or(raw.Text("content:encoded"), description),
		Enclosure:   m.enclosure(raw),
		Categories:  m.categories(raw),
	}, nil
}

func (m *Mapper) RunAll(raws []RawItem) ([]CacheItem, error) {
	items := make([]CacheItem, 0, len(raws))
	for i, raw := range raws {
		item, err := m.Run(raw)
		if err != nil {
			return nil, NewSyncError(KindInvalidDate, fmt.Errorf("feed item %d: %w", i, err))
		}
		items = append(items, item)
	}
	return items, nil
}

func (m *Mapper) pubDate(raw RawItem) (string, error) {
	value := strings.TrimSpace(raw.Text("pubDate"))
	if value == "" {
		return FormatPubDate(m.now()), nil
	}
	return NormalizePubDate(value)
}

func (m *Mapper) author(raw RawItem) string {
	return cmp.Or(
		strings.TrimSpace(raw.Text("author")),
		strings.TrimSpace(raw.Text("dc:creator")),
		m.defaultAuthor,
	)
}

func (m *Mapper) enclosure(raw RawItem) Enclosure {
	node, ok := raw.First("enclosure")
	if !ok || !node.IsObject() {
		return Enclosure{}
	}
	return Enclosure{
		Link: strings.TrimSpace(node.Attr("url", "href")),
		Type: strings.TrimSpace(node.Attr("type")),
	}
}

func (m *Mapper) categories(raw RawItem) []string {
	return lo.FilterMap(raw["category"], func(node RawNode, _ int) (string, bool) {
		category := strings.TrimSpace(node.Text.String())
		return category, category != ""
	})
}
