package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lysyi3m/feed-sync/app/feed"
	"github.com/lysyi3m/feed-sync/app/store"
)

func NewHandler(s *store.Store, source *feed.Source, generator GeneratorInterface) *Handler {
	return &Handler{
		store:     s,
		source:    source,
		generator: generator,
	}
}

func (h *Handler) ListPosts(c *gin.Context) {
	offset, err := queryInt(c, "offset", 0)
	if err != nil || offset < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "offset must be a non-negative integer"})
		return
	}

	limit, err := queryInt(c, "limit", 0)
	if err != nil || limit < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
		return
	}

	entries := h.store.Page(offset, limit)
	posts := make([]PostSummary, 0, len(entries))
	for _, entry := range entries {
		posts = append(posts, summarize(entry))
	}

	c.JSON(http.StatusOK, gin.H{
		"posts":  posts,
		"total":  h.store.Len(),
		"offset": offset,
	})
}

func (h *Handler) GetPost(c *gin.Context) {
	slug := c.Param("slug")

	entry, ok := h.store.Get(slug)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	c.JSON(http.StatusOK, Post{CacheItem: entry.Item, Slug: entry.Slug})
}

func (h *Handler) GetFeed(c *gin.Context) {
	rss, err := h.generator.Run(h.source, h.store.Items())
	if err != nil {
		slog.Error("RSS generation error", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Header("Content-Type", "application/rss+xml; charset=utf-8")
	c.Header("X-Feed-Items", strconv.Itoa(h.store.Len()))
	c.String(http.StatusOK, rss)
}

func (h *Handler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"items":     h.store.Len(),
		"loaded_at": h.store.LoadedAt().UTC().Format(time.RFC3339),
	})
}

func summarize(entry store.Entry) PostSummary {
	item := entry.Item
	categories := item.Categories
	if categories == nil {
		categories = []string{}
	}

	return PostSummary{
		Slug:       entry.Slug,
		Title:      item.Title,
		PubDate:    item.PubDate,
		Link:       item.Link,
		GUID:       item.GUID,
		Author:     item.Author,
		Thumbnail:  item.Thumbnail,
		Categories: categories,
		Excerpt:    feed.Excerpt(item.Description, excerptLength),
	}
}

func queryInt(c *gin.Context, key string, fallback int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}
