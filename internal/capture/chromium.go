package capture

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
)

// Default render parameters. The viewport only needs to be large enough for
// the agenda page to lay out its session list.
const (
	DefaultWidth        = 1280
	DefaultHeight       = 2000
	DefaultTimeoutSec   = 30
	DefaultWaitSelector = ".session"
)

// RenderOptions defines parameters for a Chromium-based page render.
type RenderOptions struct {
	// Page is a saved agenda file path or an http(s)/file URL.
	Page string

	// OutputPath, when set, receives a copy of the rendered HTML.
	OutputPath string

	// WaitSelector must be present in the DOM before the page is read.
	// Defaults to DefaultWaitSelector.
	WaitSelector string

	// Width and Height are the viewport dimensions in pixels. If zero,
	// DefaultWidth / DefaultHeight are used.
	Width  int
	Height int

	// Timeout bounds the entire render. If zero, DefaultTimeoutSec is used.
	Timeout time.Duration
}

// PageURL turns a local path into a file:// URL and leaves URLs alone.
func PageURL(page string) (string, error) {
	if page == "" {
		return "", fmt.Errorf("capture: page is required")
	}
	if u, err := url.Parse(page); err == nil {
		switch strings.ToLower(u.Scheme) {
		case "http", "https", "file":
			return page, nil
		}
	}
	abs, err := filepath.Abs(page)
	if err != nil {
		return "", fmt.Errorf("capture: resolve %s: %w", page, err)
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String(), nil
}

// RenderHTML loads the page in headless Chromium via chromedp, lets its
// scripts populate the session list, and returns the resulting document.
// Saved agenda pages often only contain a script shell until they run.
func RenderHTML(parentCtx context.Context, opts RenderOptions) ([]byte, error) {
	target, err := PageURL(opts.Page)
	if err != nil {
		return nil, err
	}
	if opts.WaitSelector == "" {
		opts.WaitSelector = DefaultWaitSelector
	}
	if opts.Width <= 0 {
		opts.Width = DefaultWidth
	}
	if opts.Height <= 0 {
		opts.Height = DefaultHeight
	}
	if opts.Timeout <= 0 {
		opts.Timeout = time.Duration(DefaultTimeoutSec) * time.Second
	}

	ctx, cancel := chromedp.NewContext(parentCtx)
	defer cancel()

	ctx, timeoutCancel := context.WithTimeout(ctx, opts.Timeout)
	defer timeoutCancel()

	var html string
	tasks := chromedp.Tasks{
		chromedp.EmulateViewport(int64(opts.Width), int64(opts.Height)),
		chromedp.Navigate(target),
		chromedp.WaitReady(opts.WaitSelector, chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	}
	if err := chromedp.Run(ctx, tasks); err != nil {
		return nil, fmt.Errorf("capture: chromedp run failed: %w", err)
	}

	out := []byte(html)
	if opts.OutputPath != "" {
		if err := os.WriteFile(opts.OutputPath, out, 0o644); err != nil {
			return nil, fmt.Errorf("capture: failed to write HTML: %w", err)
		}
	}
	return out, nil
}
