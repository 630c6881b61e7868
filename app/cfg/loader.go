package cfg

import (
	"cmp"
	"errors"
	"fmt"
	"os"

	"github.com/jessevdk/go-flags"
)

const (
	FetcherBrowser = "browser"
	FetcherHTTP    = "http"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Cache and source
	CachePath  string `long:"cache" env:"CACHE_PATH" default:"data/feed-cache.json" description:"Path to the JSON feed cache"`
	SourceFile string `long:"source" env:"SOURCE_FILE" default:"source.yml" description:"YAML file describing the feed source"`
	FeedURL    string `long:"feed-url" env:"FEED_URL" description:"Feed URL (overrides the source file)"`
	Author     string `long:"author" env:"DEFAULT_AUTHOR" description:"Fallback author name (overrides the source file)"`

	// Fetching
	Fetcher    string `long:"fetcher" env:"FETCHER" default:"browser" choice:"browser" choice:"http" description:"How to retrieve the feed"`
	BrowserBin string `long:"browser-bin" env:"BROWSER_BIN" description:"Chromium binary to launch (downloaded when empty)"`
	NoSandbox  bool   `long:"no-sandbox" env:"BROWSER_NO_SANDBOX" description:"Disable the Chromium sandbox"`
	Timeout    int    `long:"timeout" env:"FETCH_TIMEOUT" default:"0" description:"Navigation timeout in seconds (0 uses the source setting)"`
	UserAgent  string `long:"user-agent" env:"USER_AGENT" description:"User agent override"`

	// Modes
	Check  bool   `long:"check" description:"Validate the cache file and exit"`
	DryRun bool   `long:"dry-run" env:"DRY_RUN" description:"Run the sync without writing the cache"`
	Serve  bool   `long:"serve" description:"Serve the cache over HTTP"`
	Port   string `long:"port" env:"PORT" default:"8080" description:"HTTP server port for --serve"`

	Debug bool `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

// Load parses args and the environment. It returns nil, nil when help
// was requested.
func Load(args []string) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.HelpFlag|flags.PassDoubleDash)

	if _, err := parser.ParseArgs(args); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			fmt.Fprintln(os.Stdout, flagsErr.Message)
			return nil, nil
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		CachePath:  raw.CachePath,
		SourceFile: raw.SourceFile,
		FeedURL:    raw.FeedURL,
		Author:     raw.Author,
		Fetcher:    raw.Fetcher,
		BrowserBin: raw.BrowserBin,
		NoSandbox:  raw.NoSandbox,
		Timeout:    raw.Timeout,
		UserAgent:  raw.UserAgent,
		Check:      raw.Check,
		DryRun:     raw.DryRun,
		Serve:      raw.Serve,
		Port:       raw.Port,
		Debug:      raw.Debug,
		Version:    GetVersion(),
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func validate(cfg *Cfg) error {
	if cfg.CachePath == "" {
		return fmt.Errorf("cache path is required")
	}
	if cfg.Timeout < 0 {
		return fmt.Errorf("timeout must be non-negative")
	}
	if cfg.Check && cfg.Serve {
		return fmt.Errorf("--check and --serve are mutually exclusive")
	}
	return nil
}
