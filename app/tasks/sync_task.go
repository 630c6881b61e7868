package tasks

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/lysyi3m/feed-sync/app/cache"
	"github.com/lysyi3m/feed-sync/app/feed"
	"github.com/lysyi3m/feed-sync/app/fetcher"
)

type SyncResult struct {
	Existing int
	Fetched  int
	Added    int
	Total    int
	Written  bool
	Changed  bool
}

type SyncTask struct {
	Task
	Source    *feed.Source
	cacheFile *cache.File
	fetcher   fetcher.Fetcher
	parser    *feed.Parser
	mapper    *feed.Mapper
	merger    *feed.Merger
	validator *feed.Validator
	dryRun    bool

	Result SyncResult
}

func NewSyncTask(source *feed.Source, cacheFile *cache.File, f fetcher.Fetcher, validator *feed.Validator, dryRun bool) *SyncTask {
	return &SyncTask{
		Task:      NewTask(TaskTypeSyncFeed),
		Source:    source,
		cacheFile: cacheFile,
		fetcher:   f,
		parser:    feed.NewParser(),
		mapper:    feed.NewMapper(source.Author),
		merger:    feed.NewMerger(),
		validator: validator,
		dryRun:    dryRun,
	}
}

// Execute runs load, fetch, parse, map, merge and write in order. Any
// failure aborts the run before the cache file is touched.
func (t *SyncTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	existing, current, err := t.cacheFile.Load()
	if err != nil {
		return err
	}
	t.Result.Existing = len(existing.Items)
	slog.Info("Existing cache loaded", "path", t.cacheFile.Path(), "items", t.Result.Existing)

	document, err := t.fetcher.Fetch(ctx, t.Source.URL)
	if err != nil {
		return feed.NewSyncError(feed.KindFetchFailed, err)
	}

	_, rawItems, err := t.parser.Run([]byte(document))
	if err != nil {
		return err
	}
	t.Result.Fetched = len(rawItems)
	slog.Info("Feed parsed", "items", t.Result.Fetched)

	incoming, err := t.mapper.RunAll(rawItems)
	if err != nil {
		return err
	}

	merged, added := t.merger.Run(existing.Items, incoming)
	t.Result.Added = added
	t.Result.Total = len(merged)
	slog.Info("Items merged", "added", added, "total", len(merged))

	if err := t.validator.ValidateItems(merged, "merged cache"); err != nil {
		return feed.NewSyncError(feed.KindInvalidOutput, err)
	}

	if t.dryRun {
		return t.reportDryRun(merged, current)
	}

	written, err := t.cacheFile.Write(merged, current)
	if err != nil {
		return err
	}
	t.Result.Written = written
	t.Result.Changed = written

	if written {
		slog.Info("Cache written", "path", t.cacheFile.Path(), "items", len(merged), "added", added)
	} else {
		slog.Info("Cache already up to date", "path", t.cacheFile.Path())
	}

	slog.Info("Task completed",
		"type", string(t.GetType()),
		"duration", t.GetDuration(),
		"fetched", t.Result.Fetched,
		"added", t.Result.Added)

	return nil
}

func (t *SyncTask) reportDryRun(merged []feed.CacheItem, current []byte) error {
	data, err := cache.Encode(merged)
	if err != nil {
		return feed.NewSyncError(feed.KindWriteFailed, fmt.Errorf("dry run: %w", err))
	}
	t.Result.Changed = !bytes.Equal(data, current)

	slog.Info("Dry run, cache not written", "path", t.cacheFile.Path(), "would_change", t.Result.Changed, "added", t.Result.Added)
	return nil
}
