// Package store holds a read-only, in-memory view of the cache file for
// the HTTP surface. It is loaded once and never mutated afterwards.
package store

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/lysyi3m/feed-sync/app/cache"
	"github.com/lysyi3m/feed-sync/app/feed"
)

type Entry struct {
	Slug string
	Item feed.CacheItem
}

type Store struct {
	entries  []Entry
	bySlug   map[string]int
	loadedAt time.Time
}

func Open(cacheFile *cache.File) (*Store, error) {
	file, _, err := cacheFile.Load()
	if err != nil {
		return nil, err
	}

	s := New(file.Items)
	slog.Info("Cache loaded for serving", "path", cacheFile.Path(), "items", s.Len())

	return s, nil
}

// New indexes items by slug. Colliding slugs are suffixed -2, -3, ...
// in item order.
func New(items []feed.CacheItem) *Store {
	s := &Store{
		entries:  make([]Entry, 0, len(items)),
		bySlug:   make(map[string]int, len(items)),
		loadedAt: time.Now(),
	}

	for _, item := range items {
		base := feed.Slug(item)
		if base == "" {
			base = "post"
		}

		slug := base
		for n := 2; ; n++ {
			if _, taken := s.bySlug[slug]; !taken {
				break
			}
			slug = fmt.Sprintf("%s-%d", base, n)
		}

		s.bySlug[slug] = len(s.entries)
		s.entries = append(s.entries, Entry{Slug: slug, Item: item})
	}

	return s
}

func (s *Store) Len() int {
	return len(s.entries)
}

func (s *Store) LoadedAt() time.Time {
	return s.loadedAt
}

// Page returns up to limit entries starting at offset. A non-positive
// limit means no limit.
func (s *Store) Page(offset, limit int) []Entry {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(s.entries) {
		return []Entry{}
	}

	end := len(s.entries)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}

	page := make([]Entry, end-offset)
	copy(page, s.entries[offset:end])
	return page
}

func (s *Store) Get(slug string) (Entry, bool) {
	i, ok := s.bySlug[slug]
	if !ok {
		return Entry{}, false
	}
	return s.entries[i], true
}

func (s *Store) Items() []feed.CacheItem {
	items := make([]feed.CacheItem, len(s.entries))
	for i, entry := range s.entries {
		items[i] = entry.Item
	}
	return items
}
