package catalog

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/anushkayadav0901/SypherFinal/internal/domain"
)

// Rule is one detection rule. Exactly one of Keywords, Pattern or Domains is
// set; Kinds limits which signal kinds the rule applies to. Weight is an
// additive input to the scorer, not a final score.
type Rule struct {
	ID          string
	Category    domain.Category
	Severity    domain.Severity
	Weight      int
	Description string
	Kinds       []domain.SignalKind

	Keywords []string       // case-insensitive substring match
	Pattern  *regexp.Regexp // regex test against the value
	Domains  []string       // substring containment against a hostname

	// Except suppresses a match when the value contains any of these.
	// Used to exempt localhost from the insecure-transport rule.
	Except []string
}

func (r Rule) appliesTo(kind domain.SignalKind) bool {
	for _, k := range r.Kinds {
		if k == kind {
			return true
		}
	}
	return false
}

// match tests a lowercased value and returns the matched fragment.
func (r Rule) match(value string) (string, bool) {
	for _, ex := range r.Except {
		if strings.Contains(value, ex) {
			return "", false
		}
	}
	switch {
	case len(r.Keywords) > 0:
		for _, kw := range r.Keywords {
			if strings.Contains(value, kw) {
				return kw, true
			}
		}
	case r.Pattern != nil:
		if m := r.Pattern.FindString(value); m != "" {
			return m, true
		}
	case len(r.Domains) > 0:
		for _, d := range r.Domains {
			if strings.Contains(value, d) {
				return d, true
			}
		}
	}
	return "", false
}

// Catalog is an ordered, immutable collection of rules plus the auxiliary
// domain lists consumed by the heuristics package. Build a new Catalog to
// change rules; never mutate one that is in use.
type Catalog struct {
	rules      []Rule
	byCategory map[domain.Category][]Rule

	shorteners     []string
	brands         []string
	disallowedTLDs []string
}

// Config carries everything needed to build a Catalog.
type Config struct {
	Rules          []Rule
	Shorteners     []string
	Brands         []string
	DisallowedTLDs []string
}

// New validates and freezes a catalog. Rule order is preserved; it decides
// first-match semantics and typosquat tie-breaks.
func New(cfg Config) (*Catalog, error) {
	byCat := make(map[domain.Category][]Rule)
	seen := make(map[string]bool, len(cfg.Rules))
	for _, r := range cfg.Rules {
		if r.ID == "" {
			return nil, fmt.Errorf("catalog: rule with empty id")
		}
		if seen[r.ID] {
			return nil, fmt.Errorf("catalog: duplicate rule id %q", r.ID)
		}
		seen[r.ID] = true
		if r.Weight < 0 || r.Weight > 100 {
			return nil, fmt.Errorf("catalog: rule %q weight %d out of range", r.ID, r.Weight)
		}
		n := 0
		if len(r.Keywords) > 0 {
			n++
		}
		if r.Pattern != nil {
			n++
		}
		if len(r.Domains) > 0 {
			n++
		}
		if n != 1 {
			return nil, fmt.Errorf("catalog: rule %q must have exactly one pattern kind", r.ID)
		}
		byCat[r.Category] = append(byCat[r.Category], r)
	}
	return &Catalog{
		rules:          cfg.Rules,
		byCategory:     byCat,
		shorteners:     cfg.Shorteners,
		brands:         cfg.Brands,
		disallowedTLDs: cfg.DisallowedTLDs,
	}, nil
}

// Rules returns the rules in a category, in catalog order.
func (c *Catalog) Rules(cat domain.Category) []Rule {
	rs := c.byCategory[cat]
	out := make([]Rule, len(rs))
	copy(out, rs)
	return out
}

// Len returns the total rule count.
func (c *Catalog) Len() int { return len(c.rules) }

// Shorteners is the high-risk URL-shortener domain list.
func (c *Catalog) Shorteners() []string { return c.shorteners }

// Brands is the well-known brand domain list used for typosquat checks.
func (c *Catalog) Brands() []string { return c.brands }

// DisallowedTLDs is the suspicious TLD list, entries without a leading dot.
func (c *Catalog) DisallowedTLDs() []string { return c.disallowedTLDs }

// Match evaluates a signal against every applicable rule and returns at most
// one finding per category: once a category has matched this signal, later
// rules in that category are skipped. Matching is case-insensitive; values
// that fail to normalize are matched as-is.
func (c *Catalog) Match(sig domain.Signal, now time.Time) []domain.Finding {
	value := lowerSafe(sig.Value)
	var out []domain.Finding
	matched := make(map[domain.Category]bool)
	for _, r := range c.rules {
		if matched[r.Category] || !r.appliesTo(sig.Kind) {
			continue
		}
		frag, ok := r.match(value)
		if !ok {
			continue
		}
		matched[r.Category] = true
		out = append(out, domain.Finding{
			RuleID:       r.ID,
			Category:     r.Category,
			Severity:     r.Severity,
			Weight:       r.Weight,
			Description:  r.Description,
			MatchedValue: frag,
			Timestamp:    now,
		})
	}
	return out
}

// lowerSafe lowercases s, falling back to the original on invalid input.
// strings.ToLower never fails on invalid UTF-8 (bad bytes pass through), so
// the fallback only guards future normalization steps.
func lowerSafe(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s)
}
