package feed

import (
	"cmp"
	"slices"
	"time"

	"github.com/samber/lo"
	"github.com/tomakado/containers/set"
)

type Merger struct{}

func NewMerger() *Merger {
	return &Merger{}
}

// Run adds incoming items whose guid is not yet known. Existing items are
// never changed or removed. The result is ordered newest first, guid
// ascending on equal timestamps.
func (m *Merger) Run(existing, incoming []CacheItem) ([]CacheItem, int) {
	known := set.New(lo.Map(existing, func(item CacheItem, _ int) string {
		return item.GUID
	})...)

	added := lo.Filter(lo.UniqBy(incoming, func(item CacheItem) string {
		return item.GUID
	}), func(item CacheItem, _ int) bool {
		return !known.Contains(item.GUID)
	})

	merged := make([]CacheItem, 0, len(existing)+len(added))
	merged = append(merged, existing...)
	merged = append(merged, added...)

	SortItems(merged)

	return merged, len(added)
}

func SortItems(items []CacheItem) {
	times := make(map[string]time.Time, len(items))
	for _, item := range items {
		if t, err := ParsePubDate(item.PubDate); err == nil {
			times[item.GUID] = t
		}
	}

	slices.SortStableFunc(items, func(a, b CacheItem) int {
		if c := times[b.GUID].Compare(times[a.GUID]); c != 0 {
			return c
		}
		return cmp.Compare(a.GUID, b.GUID)
	})
}
