package feed

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// PubDateLayout is the canonical UTC form of CacheItem.PubDate.
const PubDateLayout = "2006-01-02 15:04:05"

var (
	pubDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}$`)
	namedZoneRe    = regexp.MustCompile(`(\d{1,2}:\d{2}(?::\d{2})?(?:\s*[AaPp][Mm])?)\s+\(?([A-Za-z]+)\)?$`)
)

// RFC 822 zone names. Any other name after the time is rejected rather
// than read as UTC.
var namedZones = map[string]string{
	"UT":  "+0000",
	"UTC": "+0000",
	"GMT": "+0000",
	"Z":   "+0000",
	"EST": "-0500",
	"EDT": "-0400",
	"CST": "-0600",
	"CDT": "-0500",
	"MST": "-0700",
	"MDT": "-0600",
	"PST": "-0800",
	"PDT": "-0700",
}

func FormatPubDate(t time.Time) string {
	return t.UTC().Format(PubDateLayout)
}

func ParsePubDate(value string) (time.Time, error) {
	t, err := time.ParseInLocation(PubDateLayout, value, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid pubDate %q: %w", value, err)
	}
	return t, nil
}

// NormalizePubDate parses a feed date in any of the common RSS/ISO forms.
// Dates without a zone are taken as UTC.
func NormalizePubDate(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty date")
	}

	raw, err := numericZone(raw)
	if err != nil {
		return "", err
	}

	t, err := dateparse.ParseIn(raw, time.UTC)
	if err != nil {
		return "", fmt.Errorf("unparsable date %q: %w", raw, err)
	}
	return FormatPubDate(t), nil
}

// numericZone replaces a trailing zone name with its numeric offset.
func numericZone(raw string) (string, error) {
	match := namedZoneRe.FindStringSubmatchIndex(raw)
	if match == nil {
		return raw, nil
	}

	name := strings.ToUpper(raw[match[4]:match[5]])
	if name == "AM" || name == "PM" {
		return raw, nil
	}
	offset, ok := namedZones[name]
	if !ok {
		return "", fmt.Errorf("unknown time zone %q in date %q", name, raw)
	}
	return raw[:match[3]] + " " + offset, nil
}
