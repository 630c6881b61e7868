// Package cache reads and writes the JSON snapshot of the blog feed.
package cache

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/lysyi3m/feed-sync/app/feed"
)

type File struct {
	path      string
	validator *feed.Validator
}

func NewFile(path string, validator *feed.Validator) *File {
	return &File{
		path:      path,
		validator: validator,
	}
}

func (f *File) Path() string {
	return f.path
}

// Load reads and validates the cache file. The raw bytes are returned so
// the caller can detect an unchanged result before writing.
func (f *File) Load() (*feed.CacheFile, []byte, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, nil, feed.NewSyncError(feed.KindInvalidCache, fmt.Errorf("failed to read %s: %w", f.path, err))
	}

	file, err := f.validator.ValidateDocument(data, f.path)
	if err != nil {
		return nil, nil, feed.NewSyncError(feed.KindInvalidCache, err)
	}

	return file, data, nil
}

// Write persists items unless the encoded output equals current. It
// reports whether the file was written.
func (f *File) Write(items []feed.CacheItem, current []byte) (bool, error) {
	data, err := Encode(items)
	if err != nil {
		return false, feed.NewSyncError(feed.KindWriteFailed, err)
	}

	if bytes.Equal(data, current) {
		return false, nil
	}

	if err := os.WriteFile(f.path, data, 0o644); err != nil {
		return false, feed.NewSyncError(feed.KindWriteFailed, fmt.Errorf("failed to write %s: %w", f.path, err))
	}

	return true, nil
}

// Encode renders items as a two-space indented document with a trailing
// newline. HTML characters are written as-is.
func Encode(items []feed.CacheItem) ([]byte, error) {
	normalized := make([]feed.CacheItem, len(items))
	for i, item := range items {
		if item.Categories == nil {
			item.Categories = []string{}
		}
		normalized[i] = item
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")

	if err := enc.Encode(feed.CacheFile{Items: normalized}); err != nil {
		return nil, fmt.Errorf("failed to encode cache: %w", err)
	}

	return buf.Bytes(), nil
}
