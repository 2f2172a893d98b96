// Package heuristics holds the auxiliary domain detectors: URL-shortener
// matching, suspicious-pattern matching and typosquatting distance checks.
// Each check is independent and returns at most one finding.
package heuristics

import (
	"regexp"
	"strings"
	"time"

	"golang.org/x/net/idna"

	"github.com/anushkayadav0901/SypherFinal/internal/domain"
)

var (
	ipv4Pattern     = regexp.MustCompile(`^\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}$`)
	longDigitRun    = regexp.MustCompile(`[0-9]{5,}`)
	typosquatWeight = 40
)

// Checker evaluates hostnames against configured domain lists. Construct one
// per catalog; it holds no mutable state and is safe for concurrent use.
type Checker struct {
	shorteners     []string
	brands         []string
	disallowedTLDs []string
}

// New builds a checker from explicit lists. The brand list order is
// significant: the first brand within typosquat distance wins.
func New(shorteners, brands, disallowedTLDs []string) *Checker {
	return &Checker{
		shorteners:     shorteners,
		brands:         brands,
		disallowedTLDs: disallowedTLDs,
	}
}

// Normalize lowercases a hostname and converts unicode labels to their ASCII
// (punycode) form. Normalization failure fails closed to the lowercased
// input so matching still runs.
func Normalize(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	ascii, err := idna.Lookup.ToASCII(host)
	if err != nil {
		return host
	}
	return ascii
}

// Check runs all three detectors against a hostname and returns their
// findings in fixed order: shortener, suspicious pattern, typosquat.
func (c *Checker) Check(host string, now time.Time) []domain.Finding {
	if host == "" {
		return nil
	}
	host = Normalize(host)
	var out []domain.Finding
	if f := c.ShortenerMatch(host, now); f != nil {
		out = append(out, *f)
	}
	if f := c.SuspiciousPattern(host, now); f != nil {
		out = append(out, *f)
	}
	if f := c.Typosquat(host, now); f != nil {
		out = append(out, *f)
	}
	return out
}

// ShortenerMatch reports a high-severity finding when the host contains any
// configured shortener domain.
func (c *Checker) ShortenerMatch(host string, now time.Time) *domain.Finding {
	for _, s := range c.shorteners {
		if strings.Contains(host, s) {
			return &domain.Finding{
				RuleID:       "domain.shortener",
				Category:     domain.CategoryDomainRisk,
				Severity:     domain.SeverityHigh,
				Weight:       30,
				Description:  "Shortened URL domain detected",
				MatchedValue: s,
				Timestamp:    now,
			}
		}
	}
	return nil
}

// SuspiciousPattern reports a medium-severity finding when the host looks
// machine-generated: an IPv4 literal, a long digit run, three or more
// hyphen-separated segments, or a disallowed TLD.
func (c *Checker) SuspiciousPattern(host string, now time.Time) *domain.Finding {
	reason := ""
	switch {
	case ipv4Pattern.MatchString(host):
		reason = "IP address literal host"
	case longDigitRun.MatchString(host):
		reason = "long numeric run in domain"
	case strings.Count(host, "-") >= 2:
		reason = "multiple hyphenated segments"
	case c.hasDisallowedTLD(host):
		reason = "disallowed top-level domain"
	}
	if reason == "" {
		return nil
	}
	return &domain.Finding{
		RuleID:       "domain.suspicious",
		Category:     domain.CategoryDomainRisk,
		Severity:     domain.SeverityMedium,
		Weight:       25,
		Description:  "Domain shows suspicious characteristics: " + reason,
		MatchedValue: host,
		Timestamp:    now,
	}
}

func (c *Checker) hasDisallowedTLD(host string) bool {
	for _, tld := range c.disallowedTLDs {
		if strings.HasSuffix(host, "."+tld) {
			return true
		}
	}
	return false
}

// Typosquat reports a high-severity finding when the host is within edit
// distance 2 of a known brand domain without being that domain. The first
// brand within threshold in list order wins, not necessarily the closest;
// the deterministic tie-break keeps results reproducible.
func (c *Checker) Typosquat(host string, now time.Time) *domain.Finding {
	for _, brand := range c.brands {
		if host == brand {
			return nil
		}
		if Distance(host, brand) <= 2 {
			return &domain.Finding{
				RuleID:       "domain.typosquat",
				Category:     domain.CategoryTyposquat,
				Severity:     domain.SeverityHigh,
				Weight:       typosquatWeight,
				Description:  "Domain resembles well-known brand " + brand,
				MatchedValue: brand,
				Timestamp:    now,
			}
		}
	}
	return nil
}

// Distance computes the Levenshtein edit distance between two strings over
// unicode code points.
func Distance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}
	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		cur[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j-1]+cost, min(cur[j-1]+1, prev[j]+1))
		}
		prev, cur = cur, prev
	}
	return prev[len(rb)]
}
