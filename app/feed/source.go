package feed

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const DefaultTimeout = 60 // seconds

type Source struct {
	URL     string `yaml:"url"`
	Author  string `yaml:"author"`
	Title   string `yaml:"title"`
	Link    string `yaml:"link"`
	Timeout int    `yaml:"timeout"` // seconds
}

func (s *Source) GetTimeout() time.Duration {
	if s.Timeout <= 0 {
		return DefaultTimeout * time.Second
	}
	return time.Duration(s.Timeout) * time.Second
}

// SourceOverrides carries command-line values that win over the file.
type SourceOverrides struct {
	URL     string
	Author  string
	Timeout int
}

// LoadSource reads the YAML source settings at path. A missing file is
// tolerated when the overrides supply the feed URL.
func LoadSource(path string, overrides SourceOverrides) (*Source, error) {
	source, err := parseSource(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) || overrides.URL == "" {
			return nil, err
		}
		slog.Debug("Source file not found, using command-line settings", "path", path)
		source = &Source{}
	}

	if overrides.URL != "" {
		source.URL = overrides.URL
	}
	if overrides.Author != "" {
		source.Author = overrides.Author
	}
	if overrides.Timeout != 0 {
		source.Timeout = overrides.Timeout
	}

	if source.Author == "" {
		source.Author = DefaultAuthor
	}
	if source.Timeout == 0 {
		source.Timeout = DefaultTimeout
	}

	if err := validateSource(source); err != nil {
		return nil, fmt.Errorf("invalid source %s: %w", path, err)
	}

	return source, nil
}

func parseSource(path string) (*Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var source Source
	if err := yaml.Unmarshal(data, &source); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	return &source, nil
}

func validateSource(source *Source) error {
	if source.URL == "" {
		return fmt.Errorf("feed URL is required")
	}

	u, err := url.Parse(source.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("feed URL must be an absolute http(s) URL: %s", source.URL)
	}

	if source.Timeout < 0 {
		return fmt.Errorf("timeout must be non-negative")
	}

	return nil
}
