package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/lysyi3m/feed-sync/app/cache"
	"github.com/lysyi3m/feed-sync/app/feed"
)

func sampleItems() []feed.CacheItem {
	return []feed.CacheItem{
		{GUID: "3", PubDate: "2024-03-01 00:00:00", Link: "https://blog.example.com/posts/hello"},
		{GUID: "2", PubDate: "2024-02-01 00:00:00", Link: "https://blog.example.com/archive/hello"},
		{GUID: "1", PubDate: "2024-01-01 00:00:00", Link: "https://blog.example.com/first-post"},
		{GUID: "!!!", PubDate: "2023-01-01 00:00:00"},
	}
}

func TestNew_Slugs(t *testing.T) {
	s := New(sampleItems())

	if s.Len() != 4 {
		t.Fatalf("Expected 4 entries, got %d", s.Len())
	}

	expected := []string{"hello", "hello-2", "first-post", "post"}
	for i, entry := range s.Page(0, 0) {
		if entry.Slug != expected[i] {
			t.Errorf("Entry %d: expected slug '%s', got '%s'", i, expected[i], entry.Slug)
		}
	}

	entry, ok := s.Get("hello-2")
	if !ok {
		t.Fatal("Expected hello-2 to resolve")
	}
	if entry.Item.GUID != "2" {
		t.Errorf("Expected guid '2', got '%s'", entry.Item.GUID)
	}

	if _, ok := s.Get("missing"); ok {
		t.Error("Expected unknown slug to miss")
	}
}

func TestStore_Page(t *testing.T) {
	s := New(sampleItems())

	tests := []struct {
		offset, limit int
		expected      int
	}{
		{0, 0, 4},
		{0, 2, 2},
		{3, 2, 1},
		{4, 2, 0},
		{10, 0, 0},
		{-1, 1, 1},
	}

	for _, tt := range tests {
		page := s.Page(tt.offset, tt.limit)
		if page == nil {
			t.Errorf("Page(%d, %d) returned nil", tt.offset, tt.limit)
		}
		if len(page) != tt.expected {
			t.Errorf("Page(%d, %d): expected %d entries, got %d", tt.offset, tt.limit, tt.expected, len(page))
		}
	}
}

func TestStore_Items_PreservesOrder(t *testing.T) {
	items := New(sampleItems()).Items()
	if len(items) != 4 || items[0].GUID != "3" || items[3].GUID != "!!!" {
		t.Errorf("Unexpected items: %+v", items)
	}
}

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feed-cache.json")
	data, err := cache.Encode(sampleItems())
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("Failed to write cache: %v", err)
	}

	s, err := Open(cache.NewFile(path, feed.NewValidator()))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if s.Len() != 4 {
		t.Errorf("Expected 4 entries, got %d", s.Len())
	}
	if s.LoadedAt().IsZero() {
		t.Error("Expected load time to be set")
	}

	if _, err := Open(cache.NewFile(filepath.Join(t.TempDir(), "absent.json"), feed.NewValidator())); err == nil {
		t.Error("Expected error for missing cache")
	}
}
