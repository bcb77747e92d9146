// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package download

import (
	"context"
	"time"

	"github.com/chromedp/chromedp"
)

// Browser renders a venue or paper page and returns its HTML and title.
// Venue sites are JS-heavy, so plain HTTP fetches often see an empty
// shell; the production implementation drives a headless Chrome. Tests
// substitute a canned implementation so nothing downstream depends on
// live page structure.
type Browser interface {
	Render(ctx context.Context, pageURL string) (html, title string, err error)
}

// ChromeBrowser renders pages with a shared headless Chrome process.
type ChromeBrowser struct {
	allocCtx    context.Context
	allocCancel context.CancelFunc

	// SettleDelay is how long to wait after navigation for scripts to
	// populate the page.
	SettleDelay time.Duration
}

// NewChromeBrowser starts a Chrome allocator. Call Close when done.
func NewChromeBrowser(headless bool) *ChromeBrowser {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)
	return &ChromeBrowser{
		allocCtx:    allocCtx,
		allocCancel: cancel,
		SettleDelay: 2 * time.Second,
	}
}

// Render opens the page in a fresh tab and returns the rendered document.
func (b *ChromeBrowser) Render(ctx context.Context, pageURL string) (string, string, error) {
	tabCtx, cancel := chromedp.NewContext(b.allocCtx)
	defer cancel()

	if deadline, ok := ctx.Deadline(); ok {
		var dcancel context.CancelFunc
		tabCtx, dcancel = context.WithDeadline(tabCtx, deadline)
		defer dcancel()
	}

	var html, title string
	err := chromedp.Run(tabCtx,
		chromedp.Navigate(pageURL),
		chromedp.Sleep(b.SettleDelay),
		chromedp.Title(&title),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", "", err
	}
	return html, title, nil
}

// Close shuts down the Chrome process.
func (b *ChromeBrowser) Close() {
	b.allocCancel()
}
