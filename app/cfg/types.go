package cfg

type Cfg struct {
	// Cache and source
	CachePath  string
	SourceFile string
	FeedURL    string
	Author     string

	// Fetching
	Fetcher    string
	BrowserBin string
	NoSandbox  bool
	Timeout    int
	UserAgent  string

	// Modes
	Check  bool
	DryRun bool
	Serve  bool
	Port   string

	// Application metadata
	Debug   bool
	Version string
}
