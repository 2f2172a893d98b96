// Package pagesource implements the page source collaborators that feed raw
// page data into the engine: a plain HTTP fetcher and a headless-browser
// capture for pages that only render with JavaScript.
package pagesource

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/anushkayadav0901/SypherFinal/internal/domain"
)

const maxBodyBytes = 2 << 20

// Fetcher retrieves pages with net/http and derives title and body text from
// the parsed document. The raw HTML is carried along as the DOM snapshot so
// the extractor can produce form/link/script signals server-side.
type Fetcher struct {
	client *http.Client
}

// NewFetcher uses a 10 second timeout, following redirects.
func NewFetcher() *Fetcher {
	return &Fetcher{client: &http.Client{Timeout: 10 * time.Second}}
}

// Page fetches the URL and assembles PageData.
func (f *Fetcher) Page(ctx context.Context, url string) (domain.PageData, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return domain.PageData{}, fmt.Errorf("pagesource: request %s: %w", url, err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return domain.PageData{}, fmt.Errorf("pagesource: fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return domain.PageData{}, fmt.Errorf("pagesource: read %s: %w", url, err)
	}
	html := string(raw)

	page := domain.PageData{
		URL: resp.Request.URL.String(),
		DOM: html,
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		// Unparseable body still scores on URL signals alone.
		return page, nil
	}
	page.Title = strings.TrimSpace(doc.Find("title").First().Text())
	page.BodyText = strings.TrimSpace(doc.Find("body").Text())
	return page, nil
}
