// Package extract turns raw page data into structured signals. Extractors
// are pure and never fail: malformed URLs produce an empty-domain signal and
// an unparseable DOM snapshot simply yields no DOM-derived signals, so
// scoring always completes.
package extract

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/publicsuffix"

	"github.com/anushkayadav0901/SypherFinal/internal/domain"
)

// Context markers distinguishing page-level signals from DOM-derived ones.
const (
	ContextPageURL    = "page"
	ContextInvalidURL = "invalid-url"
)

const maxScriptBytes = 4096

// Signals extracts every signal from a page. The page URL always yields a
// domain signal (empty value when the URL does not parse) and a link signal
// carrying the full URL for transport checks. DOM signals are produced only
// when a snapshot is present, which keeps the extractor usable on fetched
// HTML outside a browser.
func Signals(page domain.PageData) []domain.Signal {
	sigs := make([]domain.Signal, 0, 8)

	host, ok := hostname(page.URL)
	if ok {
		sigs = append(sigs, domain.Signal{
			Kind:    domain.SignalDomain,
			Value:   host,
			Context: RegistrableDomain(host),
		})
		sigs = append(sigs, domain.Signal{
			Kind:    domain.SignalLink,
			Value:   page.URL,
			Context: ContextPageURL,
		})
	} else {
		// Fail closed: scoring proceeds without domain checks.
		sigs = append(sigs, domain.Signal{
			Kind:    domain.SignalDomain,
			Value:   "",
			Context: ContextInvalidURL,
		})
	}

	if t := strings.TrimSpace(page.Title); t != "" {
		sigs = append(sigs, domain.Signal{Kind: domain.SignalTitle, Value: t})
	}
	if page.BodyText != "" {
		sigs = append(sigs, domain.Signal{Kind: domain.SignalText, Value: page.BodyText})
	}
	if page.DOM != "" {
		sigs = append(sigs, domSignals(page.DOM)...)
	}
	return sigs
}

func hostname(raw string) (string, bool) {
	if raw == "" {
		return "", false
	}
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return "", false
	}
	return strings.ToLower(u.Hostname()), true
}

// RegistrableDomain reduces a hostname to its eTLD+1, falling back to the
// host itself when the public suffix list has no answer.
func RegistrableDomain(host string) string {
	registrable, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}
	return registrable
}

func domSignals(html string) []domain.Signal {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}
	var sigs []domain.Signal

	doc.Find("form").Each(func(_ int, form *goquery.Selection) {
		var names []string
		form.Find("input, textarea, select").Each(func(_ int, in *goquery.Selection) {
			for _, attr := range []string{"name", "type", "placeholder"} {
				if v, ok := in.Attr(attr); ok && v != "" {
					names = append(names, v)
				}
			}
		})
		action, _ := form.Attr("action")
		sigs = append(sigs, domain.Signal{
			Kind:    domain.SignalForm,
			Value:   strings.Join(names, " "),
			Context: action,
		})
	})

	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		if href == "" {
			return
		}
		sigs = append(sigs, domain.Signal{
			Kind:    domain.SignalLink,
			Value:   href,
			Context: strings.TrimSpace(a.Text()),
		})
	})

	doc.Find("script").Each(func(_ int, sc *goquery.Selection) {
		if src, ok := sc.Attr("src"); ok && src != "" {
			sigs = append(sigs, domain.Signal{Kind: domain.SignalScript, Value: src, Context: "src"})
			return
		}
		body := sc.Text()
		if body == "" {
			return
		}
		if len(body) > maxScriptBytes {
			body = body[:maxScriptBytes]
		}
		sigs = append(sigs, domain.Signal{Kind: domain.SignalScript, Value: body, Context: "inline"})
	})

	return sigs
}
