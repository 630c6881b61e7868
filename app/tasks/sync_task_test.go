package tasks

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/lysyi3m/feed-sync/app/cache"
	"github.com/lysyi3m/feed-sync/app/feed"
)

type stubFetcher struct {
	document string
	err      error
	calls    int
}

func (f *stubFetcher) Fetch(_ context.Context, _ string) (string, error) {
	f.calls++
	return f.document, f.err
}

const existingCache = `{
  "items": [
    {
      "title": "A",
      "pubDate": "2024-01-01 00:00:00",
      "link": "https://blog.example.com/a",
      "guid": "a",
      "author": "Anonymous",
      "thumbnail": "",
      "description": "first",
      "content": "first",
      "enclosure": {
        "link": "",
        "type": ""
      },
      "categories": []
    }
  ]
}
`

const twoItemFeed = `<?xml version="1.0"?>
<rss version="2.0">
  <channel>
    <title>Blog</title>
    <item>
      <title>A (edited)</title>
      <link>https://blog.example.com/a</link>
      <guid>a</guid>
      <pubDate>2024-01-01T00:00:00Z</pubDate>
    </item>
    <item>
      <title>B</title>
      <link>https://blog.example.com/b</link>
      <guid>b</guid>
      <pubDate>2024-02-01T00:00:00Z</pubDate>
      <description><![CDATA[<p>second</p>]]></description>
    </item>
  </channel>
</rss>`

func setupCache(t *testing.T, content string) *cache.File {
	t.Helper()
	path := filepath.Join(t.TempDir(), "feed-cache.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write cache: %v", err)
	}
	return cache.NewFile(path, feed.NewValidator())
}

func testSource() *feed.Source {
	return &feed.Source{URL: "https://blog.example.com/rss.xml", Author: feed.DefaultAuthor}
}

func TestSyncTask_Execute_MergesNewItems(t *testing.T) {
	cacheFile := setupCache(t, existingCache)
	fetcher := &stubFetcher{document: twoItemFeed}

	task := NewSyncTask(testSource(), cacheFile, fetcher, feed.NewValidator(), false)
	if err := Run(context.Background(), task); err != nil {
		t.Fatalf("Sync failed: %v", err)
	}

	if task.Result.Added != 1 {
		t.Errorf("Expected 1 added item, got %d", task.Result.Added)
	}
	if !task.Result.Written {
		t.Error("Expected cache to be written")
	}

	file, _, err := cacheFile.Load()
	if err != nil {
		t.Fatalf("Written cache failed validation: %v", err)
	}
	if len(file.Items) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(file.Items))
	}
	if file.Items[0].GUID != "b" || file.Items[1].GUID != "a" {
		t.Errorf("Expected order [b a], got [%s %s]", file.Items[0].GUID, file.Items[1].GUID)
	}
	if file.Items[1].Title != "A" {
		t.Errorf("Expected existing item to stay unchanged, got title '%s'", file.Items[1].Title)
	}
	if file.Items[0].Description != "<p>second</p>" || file.Items[0].Content != "<p>second</p>" {
		t.Errorf("Unexpected new item body: %+v", file.Items[0])
	}
	if file.Items[0].Author != feed.DefaultAuthor {
		t.Errorf("Expected default author, got '%s'", file.Items[0].Author)
	}
}

func TestSyncTask_Execute_NoChanges(t *testing.T) {
	feedWithOnlyA := `<rss version="2.0"><channel><item><guid>a</guid><pubDate>2024-01-01T00:00:00Z</pubDate></item></channel></rss>`
	cacheFile := setupCache(t, existingCache)

	task := NewSyncTask(testSource(), cacheFile, &stubFetcher{document: feedWithOnlyA}, feed.NewValidator(), false)
	if err := Run(context.Background(), task); err != nil {
		t.Fatalf("Sync failed: %v", err)
	}

	if task.Result.Added != 0 {
		t.Errorf("Expected nothing added, got %d", task.Result.Added)
	}
	if task.Result.Written {
		t.Error("Expected unchanged cache not to be rewritten")
	}

	data, _ := os.ReadFile(cacheFile.Path())
	if string(data) != existingCache {
		t.Error("Expected cache bytes to be untouched")
	}
}

func TestSyncTask_Execute_DryRun(t *testing.T) {
	cacheFile := setupCache(t, existingCache)

	task := NewSyncTask(testSource(), cacheFile, &stubFetcher{document: twoItemFeed}, feed.NewValidator(), true)
	if err := Run(context.Background(), task); err != nil {
		t.Fatalf("Dry run failed: %v", err)
	}

	if !task.Result.Changed {
		t.Error("Expected dry run to report a change")
	}
	if task.Result.Written {
		t.Error("Expected dry run not to write")
	}

	data, _ := os.ReadFile(cacheFile.Path())
	if string(data) != existingCache {
		t.Error("Expected cache file to be untouched by dry run")
	}
}

func TestSyncTask_Execute_Failures(t *testing.T) {
	tests := []struct {
		name        string
		cache       string
		fetcher     *stubFetcher
		kind        feed.ErrorKind
		expectFetch bool
	}{
		{
			name:    "invalid existing cache",
			cache:   `{"items": "nope"}`,
			fetcher: &stubFetcher{document: twoItemFeed},
			kind:    feed.KindInvalidCache,
		},
		{
			name:        "fetch failure",
			cache:       existingCache,
			fetcher:     &stubFetcher{err: errors.New("navigation timed out")},
			kind:        feed.KindFetchFailed,
			expectFetch: true,
		},
		{
			name:        "parse failure",
			cache:       existingCache,
			fetcher:     &stubFetcher{document: "<html><body>Just a moment...</body></html>"},
			kind:        feed.KindParseFailed,
			expectFetch: true,
		},
		{
			name:  "invalid date",
			cache: existingCache,
			fetcher: &stubFetcher{document: `<rss version="2.0"><channel>
<item><guid>c</guid><pubDate>not a date</pubDate></item>
</channel></rss>`},
			kind:        feed.KindInvalidDate,
			expectFetch: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cacheFile := setupCache(t, tt.cache)

			task := NewSyncTask(testSource(), cacheFile, tt.fetcher, feed.NewValidator(), false)
			err := Run(context.Background(), task)
			if err == nil {
				t.Fatal("Expected error")
			}
			if !feed.IsKind(err, tt.kind) {
				t.Errorf("Expected %q error, got %v", tt.kind, err)
			}

			if tt.expectFetch && tt.fetcher.calls != 1 {
				t.Errorf("Expected 1 fetch, got %d", tt.fetcher.calls)
			}
			if !tt.expectFetch && tt.fetcher.calls != 0 {
				t.Errorf("Expected no fetch, got %d", tt.fetcher.calls)
			}

			data, _ := os.ReadFile(cacheFile.Path())
			if string(data) != tt.cache {
				t.Error("Expected cache file to be untouched after failure")
			}
		})
	}
}

func TestSyncTask_Execute_Cancelled(t *testing.T) {
	cacheFile := setupCache(t, existingCache)
	fetcher := &stubFetcher{document: twoItemFeed}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	task := NewSyncTask(testSource(), cacheFile, fetcher, feed.NewValidator(), false)
	if err := Run(ctx, task); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if fetcher.calls != 0 {
		t.Error("Expected no fetch after cancellation")
	}
}

func TestCheckTask_Execute(t *testing.T) {
	task := NewCheckTask(setupCache(t, existingCache))
	if err := Run(context.Background(), task); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if task.Items != 1 {
		t.Errorf("Expected 1 item, got %d", task.Items)
	}
	if task.GetType() != TaskTypeCheckCache {
		t.Errorf("Unexpected task type: %s", task.GetType())
	}

	bad := NewCheckTask(setupCache(t, `{"items": [{"guid": "a"}]}`))
	if err := Run(context.Background(), bad); !feed.IsKind(err, feed.KindInvalidCache) {
		t.Errorf("Expected invalid cache error, got %v", err)
	}
}
