package feed

// Cache types

type Enclosure struct {
	Link string `json:"link"`
	Type string `json:"type"`
}

type CacheItem struct {
	Title       string    `json:"title"`
	PubDate     string    `json:"pubDate" validate:"pubdate"`
	Link        string    `json:"link"`
	GUID        string    `json:"guid"`
	Author      string    `json:"author"`
	Thumbnail   string    `json:"thumbnail"` // populated outside of the sync pipeline
	Description string    `json:"description"`
	Content     string    `json:"content"`
	Enclosure   Enclosure `json:"enclosure"`
	Categories  []string  `json:"categories"`
}

type CacheFile struct {
	Items []CacheItem `json:"items"`
}

// Raw feed types

type TextKind int

const (
	TextAbsent TextKind = iota
	TextPlain
	TextCData
)

// TextNode is the text carried by one XML element. When an element holds
// both plain text and CDATA sections, the CDATA wins.
type TextNode struct {
	Kind  TextKind
	Value string
}

func (n TextNode) String() string {
	switch n.Kind {
	case TextPlain, TextCData:
		return n.Value
	default:
		return ""
	}
}

type RawNode struct {
	Text  TextNode
	Attrs map[string]string
}

// IsObject reports whether the node would not reduce to a bare string:
// it carries attributes or CDATA.
func (n RawNode) IsObject() bool {
	return len(n.Attrs) > 0 || n.Text.Kind == TextCData
}

func (n RawNode) Attr(names ...string) string {
	for _, name := range names {
		if v, ok := n.Attrs[name]; ok && v != "" {
			return v
		}
	}
	return ""
}

// RawItem maps a prefixed tag name ("title", "content:encoded") to the
// occurrences of that tag, in document order.
type RawItem map[string][]RawNode

func (r RawItem) First(tag string) (RawNode, bool) {
	nodes := r[tag]
	if len(nodes) == 0 {
		return RawNode{}, false
	}
	return nodes[0], true
}

func (r RawItem) Text(tag string) string {
	node, ok := r.First(tag)
	if !ok {
		return ""
	}
	return node.Text.String()
}

type Metadata struct {
	Title         string
	Link          string
	Description   string
	LastBuildDate string
}
