package pagesource

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/anushkayadav0901/SypherFinal/internal/domain"
)

const defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Browser captures pages through a headless Chrome instance so dynamically
// rendered content is visible to the extractor. Prefer Fetcher for static
// documents; this exists for pages that assemble their DOM client-side.
type Browser struct {
	timeout   time.Duration
	userAgent string
}

// NewBrowser applies a per-page timeout.
func NewBrowser(timeout time.Duration) *Browser {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Browser{timeout: timeout, userAgent: defaultUserAgent}
}

// Page navigates to the URL and captures title, rendered text and the full
// DOM snapshot.
func (b *Browser) Page(ctx context.Context, url string) (domain.PageData, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.UserAgent(b.userAgent),
		chromedp.Flag("headless", true),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	tabCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()
	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, b.timeout)
	defer cancelTimeout()

	var title, text, dom string
	err := chromedp.Run(tabCtx,
		chromedp.Navigate(url),
		chromedp.Title(&title),
		chromedp.Evaluate(`document.body ? document.body.innerText : ""`, &text),
		chromedp.OuterHTML("html", &dom),
	)
	if err != nil {
		return domain.PageData{}, fmt.Errorf("pagesource: browser capture %s: %w", url, err)
	}
	return domain.PageData{URL: url, Title: title, BodyText: text, DOM: dom}, nil
}
