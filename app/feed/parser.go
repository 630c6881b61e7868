package feed

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/mmcdole/gofeed"
	"github.com/mmcdole/gofeed/rss"
	"golang.org/x/text/encoding/ianaindex"
)

const snippetLength = 100

var (
	cdataPrefix     = []byte("<![CDATA[")
	declEncodingRe  = regexp.MustCompile(`^\s*<\?xml[^>]*encoding=["']([A-Za-z0-9._:-]+)["']`)
	errNoRSSChannel = errors.New("document has no rss.channel element")
)

type Parser struct {
	rssParser *rss.Parser
}

func NewParser() *Parser {
	return &Parser{
		rssParser: &rss.Parser{},
	}
}

func (p *Parser) Run(data []byte) (*Metadata, []RawItem, error) {
	switch gofeed.DetectFeedType(bytes.NewReader(data)) {
	case gofeed.FeedTypeAtom:
		return nil, nil, NewSyncError(KindParseFailed, errors.New("atom feeds are not supported"))
	case gofeed.FeedTypeJSON:
		return nil, nil, NewSyncError(KindParseFailed, errors.New("JSON feeds are not supported"))
	}

	data, err := toUTF8(data)
	if err != nil {
		return nil, nil, NewSyncError(KindParseFailed, err)
	}

	items, err := p.decodeItems(data)
	if err != nil {
		slog.Error("Feed document rejected", "snippet", snippet(data, snippetLength), "error", err)
		return nil, nil, NewSyncError(KindParseFailed, err)
	}

	return p.readMetadata(data), items, nil
}

type fieldState struct {
	name     string
	attrs    map[string]string
	text     strings.Builder
	cdata    strings.Builder
	hasCData bool
}

func (f *fieldState) node() RawNode {
	node := RawNode{
		Text:  TextNode{Kind: TextPlain, Value: strings.TrimSpace(f.text.String())},
		Attrs: f.attrs,
	}
	if f.hasCData {
		node.Text = TextNode{Kind: TextCData, Value: f.cdata.String()}
	}
	return node
}

// decodeItems walks raw tokens so that namespace prefixes stay intact and
// CDATA sections can be told apart from plain character data by looking at
// the source bytes each token was read from.
func (p *Parser) decodeItems(data []byte) ([]RawItem, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Strict = false
	dec.Entity = xml.HTMLEntity
	dec.CharsetReader = func(_ string, input io.Reader) (io.Reader, error) {
		return input, nil // already converted by toUTF8
	}

	var (
		items      []RawItem
		stack      []string
		rssDepth   = -1
		sawChannel bool
		current    RawItem
		field      *fieldState
	)

scan:
	for {
		offset := dec.InputOffset()
		tok, err := dec.RawToken()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if rssDepth < 0 {
				return nil, fmt.Errorf("malformed XML: %w", err)
			}
			return nil, fmt.Errorf("malformed XML inside rss element: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			name := qualifiedName(t.Name)
			stack = append(stack, name)
			depth := len(stack)

			switch {
			case rssDepth < 0:
				if name == "rss" {
					rssDepth = depth
				}
			case depth == rssDepth+1 && name == "channel":
				sawChannel = true
			case current == nil && depth == rssDepth+2 && name == "item" && stack[rssDepth] == "channel":
				current = RawItem{}
			case current != nil && depth == rssDepth+3:
				field = &fieldState{name: name, attrs: attrMap(t.Attr)}
			}

		case xml.EndElement:
			depth := len(stack)
			if depth == 0 {
				continue
			}
			stack = stack[:depth-1]

			switch {
			case rssDepth < 0:
			case field != nil && depth == rssDepth+3:
				current[field.name] = append(current[field.name], field.node())
				field = nil
			case current != nil && depth == rssDepth+2:
				items = append(items, current)
				current = nil
			case depth == rssDepth:
				break scan
			}

		case xml.CharData:
			if field == nil || len(stack) != rssDepth+3 {
				continue
			}
			if bytes.HasPrefix(data[offset:], cdataPrefix) {
				field.hasCData = true
				field.cdata.Write(t)
			} else {
				field.text.Write(t)
			}
		}
	}

	if rssDepth < 0 || !sawChannel {
		return nil, errNoRSSChannel
	}

	if items == nil {
		items = []RawItem{}
	}
	return items, nil
}

func (p *Parser) readMetadata(data []byte) *Metadata {
	metadata := &Metadata{}

	parsed, err := p.rssParser.Parse(bytes.NewReader(data))
	if err != nil {
		slog.Debug("Channel metadata unavailable", "error", err)
		return metadata
	}

	metadata.Title = strings.TrimSpace(parsed.Title)
	metadata.Link = strings.TrimSpace(parsed.Link)
	metadata.Description = strings.TrimSpace(parsed.Description)
	metadata.LastBuildDate = strings.TrimSpace(parsed.LastBuildDate)

	slog.Debug("Channel metadata", "title", metadata.Title, "link", metadata.Link, "last_build_date", metadata.LastBuildDate)

	return metadata
}

func qualifiedName(name xml.Name) string {
	if name.Space == "" {
		return name.Local
	}
	return name.Space + ":" + name.Local
}

func attrMap(attrs []xml.Attr) map[string]string {
	if len(attrs) == 0 {
		return nil
	}
	m := make(map[string]string, len(attrs))
	for _, attr := range attrs {
		m[qualifiedName(attr.Name)] = attr.Value
	}
	return m
}

// toUTF8 re-encodes documents whose XML declaration names a non UTF-8 charset.
func toUTF8(data []byte) ([]byte, error) {
	match := declEncodingRe.FindSubmatch(data)
	if match == nil {
		return data, nil
	}

	label := strings.ToLower(string(match[1]))
	if label == "utf-8" || label == "utf8" {
		return data, nil
	}

	enc, err := ianaindex.IANA.Encoding(label)
	if err != nil || enc == nil {
		return nil, fmt.Errorf("unsupported document encoding %q", label)
	}

	converted, err := io.ReadAll(enc.NewDecoder().Reader(bytes.NewReader(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s document: %w", label, err)
	}
	return converted, nil
}

func snippet(data []byte, n int) string {
	runes := []rune(string(data))
	if len(runes) <= n {
		return string(runes)
	}
	return string(runes[:n])
}
