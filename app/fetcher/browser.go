package fetcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

var _ Fetcher = (*BrowserFetcher)(nil)

const (
	visibleTextJS = `() => document.body ? document.body.innerText : ''`
	pageSourceJS  = `() => document.documentElement ? document.documentElement.outerHTML : ''`
)

type BrowserOptions struct {
	Bin       string
	NoSandbox bool
	UserAgent string
	Timeout   time.Duration
}

// BrowserFetcher loads the feed in a headless Chromium page patched to
// look like ordinary browsing. Each call owns its own browser process.
type BrowserFetcher struct {
	opts BrowserOptions
}

func NewBrowserFetcher(opts BrowserOptions) *BrowserFetcher {
	return &BrowserFetcher{opts: opts}
}

func (f *BrowserFetcher) Fetch(ctx context.Context, url string) (string, error) {
	l := launcher.New().
		Context(ctx).
		Headless(true).
		NoSandbox(f.opts.NoSandbox)
	if f.opts.Bin != "" {
		l = l.Bin(f.opts.Bin)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return "", fmt.Errorf("failed to launch browser: %w", err)
	}
	defer l.Cleanup()
	defer l.Kill()

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return "", fmt.Errorf("failed to connect to browser: %w", err)
	}
	defer func() {
		if err := browser.Close(); err != nil {
			slog.Debug("Browser close failed", "error", err)
		}
	}()

	page, err := stealth.Page(browser)
	if err != nil {
		return "", fmt.Errorf("failed to open stealth page: %w", err)
	}

	if f.opts.UserAgent != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: f.opts.UserAgent}); err != nil {
			return "", fmt.Errorf("failed to set user agent: %w", err)
		}
	}

	page = page.Timeout(f.opts.Timeout)
	defer page.CancelTimeout()

	status, err := f.navigate(page, url)
	if err != nil {
		return "", err
	}

	slog.Info("Feed response received", "url", url, "status", status)

	if status != 200 {
		return "", fmt.Errorf("unexpected HTTP status %d for %s", status, url)
	}

	text, err := f.readDocument(page)
	if err != nil {
		return "", err
	}

	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("empty response from %s", url)
	}

	return text, nil
}

// navigate loads url, waits for the network to go idle and returns the
// status of the main document response.
func (f *BrowserFetcher) navigate(page *rod.Page, url string) (int, error) {
	var (
		status   int
		received bool
	)

	waitResponse := page.EachEvent(func(e *proto.NetworkResponseReceived) bool {
		if e.Type != proto.NetworkResourceTypeDocument || e.Response == nil {
			return false
		}
		status = e.Response.Status
		received = true
		return true
	})
	waitIdle := page.WaitNavigation(proto.PageLifecycleEventNameNetworkIdle)

	slog.Info("Navigating to feed", "url", url, "timeout", f.opts.Timeout)

	if err := page.Navigate(url); err != nil {
		return 0, f.navigationError(page, url, err)
	}

	waitResponse()
	waitIdle()

	if err := page.GetContext().Err(); err != nil {
		return 0, f.navigationError(page, url, err)
	}

	if !received {
		return 0, fmt.Errorf("no response received for %s", url)
	}

	return status, nil
}

func (f *BrowserFetcher) navigationError(page *rod.Page, url string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(page.GetContext().Err(), context.DeadlineExceeded) {
		return fmt.Errorf("navigation to %s timed out after %s", url, f.opts.Timeout)
	}
	return fmt.Errorf("navigation to %s failed: %w", url, err)
}

// readDocument prefers the visible text, which is the raw XML when the
// browser shows the feed as plain text, and falls back to the page source
// when the feed is wrapped in viewer markup. Both reads are single
// evaluations so a document without body or html elements does not wait
// for the page timeout.
func (f *BrowserFetcher) readDocument(page *rod.Page) (string, error) {
	text, err := evalString(page, visibleTextJS)
	if err != nil {
		return "", fmt.Errorf("failed to read page text: %w", err)
	}

	return pickDocument(text, func() (string, error) {
		source, err := evalString(page, pageSourceJS)
		if err != nil {
			return "", fmt.Errorf("failed to read page source: %w", err)
		}
		return source, nil
	})
}

func evalString(page *rod.Page, js string) (string, error) {
	res, err := page.Eval(js)
	if err != nil {
		return "", err
	}
	return res.Value.Str(), nil
}

func pickDocument(text string, source func() (string, error)) (string, error) {
	if looksLikeXML(text) {
		return text, nil
	}

	slog.Debug("Visible text is not XML, reading page source")

	return source()
}
