package api

import (
	"github.com/lysyi3m/feed-sync/app/feed"
	"github.com/lysyi3m/feed-sync/app/store"
)

const excerptLength = 280

type GeneratorInterface interface {
	Run(source *feed.Source, items []feed.CacheItem) (string, error)
}

var _ GeneratorInterface = (*feed.Generator)(nil)

type Handler struct {
	store     *store.Store
	source    *feed.Source
	generator GeneratorInterface
}

type PostSummary struct {
	Slug       string   `json:"slug"`
	Title      string   `json:"title"`
	PubDate    string   `json:"pubDate"`
	Link       string   `json:"link"`
	GUID       string   `json:"guid"`
	Author     string   `json:"author"`
	Thumbnail  string   `json:"thumbnail"`
	Categories []string `json:"categories"`
	Excerpt    string   `json:"excerpt"`
}

type Post struct {
	feed.CacheItem
	Slug string `json:"slug"`
}
