package tasks

import (
	"context"
	"log/slog"

	"github.com/lysyi3m/feed-sync/app/cache"
)

type CheckTask struct {
	Task
	cacheFile *cache.File
	Items     int
}

func NewCheckTask(cacheFile *cache.File) *CheckTask {
	return &CheckTask{
		Task:      NewTask(TaskTypeCheckCache),
		cacheFile: cacheFile,
	}
}

func (t *CheckTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	file, _, err := t.cacheFile.Load()
	if err != nil {
		return err
	}
	t.Items = len(file.Items)

	slog.Info("Cache is valid",
		"path", t.cacheFile.Path(),
		"items", t.Items,
		"duration", t.GetDuration())

	return nil
}
