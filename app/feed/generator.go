package feed

import (
	"bytes"
	"cmp"
	"encoding/xml"
	"fmt"
	"html"
	"time"
)

type Generator struct {
	version string
}

func NewGenerator(version string) *Generator {
	return &Generator{version: version}
}

// Run renders cached items as an RSS 2.0 document.
func (g *Generator) Run(source *Source, items []CacheItem) (string, error) {
	var buf bytes.Buffer

	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	buf.WriteString("\n")
	buf.WriteString(`<rss version="2.0" xmlns:content="http://purl.org/rss/1.0/modules/content/" xmlns:dc="http://purl.org/dc/elements/1.1/">`)
	buf.WriteString("\n  <channel>\n")

	g.writeElement(&buf, "title", cmp.Or(source.Title, source.Author), 4)
	g.writeElement(&buf, "link", cmp.Or(source.Link, source.URL), 4)
	g.writeElement(&buf, "description", fmt.Sprintf("Cached posts from %s", source.URL), 4)

	if len(items) > 0 {
		if t, err := ParsePubDate(items[0].PubDate); err == nil {
			g.writeElement(&buf, "lastBuildDate", t.Format(time.RFC1123Z), 4)
		}
	}
	g.writeElement(&buf, "generator", fmt.Sprintf("feed-sync/%s", g.version), 4)

	for _, item := range items {
		if err := g.writeItem(&buf, item); err != nil {
			return "", err
		}
	}

	buf.WriteString("  </channel>\n</rss>\n")

	return buf.String(), nil
}

func (g *Generator) writeItem(buf *bytes.Buffer, item CacheItem) error {
	published, err := ParsePubDate(item.PubDate)
	if err != nil {
		return fmt.Errorf("item %q: %w", item.GUID, err)
	}

	buf.WriteString("    <item>\n")

	if item.GUID != "" {
		buf.WriteString(fmt.Sprintf("      <guid isPermaLink=\"%t\">", item.GUID == item.Link && g.isURL(item.GUID)))
		xml.EscapeText(buf, []byte(item.GUID))
		buf.WriteString("</guid>\n")
	}

	g.writeElement(buf, "title", item.Title, 6)
	g.writeElement(buf, "link", item.Link, 6)
	g.writeElement(buf, "description", item.Description, 6)

	if item.Content != "" && item.Content != item.Description {
		buf.WriteString("      <content:encoded><![CDATA[")
		buf.WriteString(item.Content)
		buf.WriteString("]]></content:encoded>\n")
	}

	g.writeElement(buf, "pubDate", published.Format(time.RFC1123Z), 6)
	g.writeElement(buf, "dc:creator", item.Author, 6)

	for _, category := range item.Categories {
		g.writeElement(buf, "category", category, 6)
	}

	if item.Enclosure.Link != "" {
		buf.WriteString(fmt.Sprintf("      <enclosure url=\"%s\" length=\"0\" type=\"%s\" />\n",
			html.EscapeString(item.Enclosure.Link),
			html.EscapeString(item.Enclosure.Type)))
	}

	buf.WriteString("    </item>\n")
	return nil
}

func (g *Generator) writeElement(buf *bytes.Buffer, tag, content string, indent int) {
	if content == "" {
		return
	}

	for i := 0; i < indent; i++ {
		buf.WriteByte(' ')
	}

	buf.WriteString("<")
	buf.WriteString(tag)
	buf.WriteString(">")
	xml.EscapeText(buf, []byte(content))
	buf.WriteString("</")
	buf.WriteString(tag)
	buf.WriteString(">\n")
}

func (g *Generator) isURL(s string) bool {
	return (len(s) > 7 && s[:7] == "http://") || (len(s) > 8 && s[:8] == "https://")
}
