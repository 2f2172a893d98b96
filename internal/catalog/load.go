package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"sync/atomic"

	"github.com/anushkayadav0901/SypherFinal/internal/domain"
)

// ruleFile is the on-disk schema for a replacement catalog.
type ruleFile struct {
	Rules []struct {
		ID          string   `json:"id"`
		Category    string   `json:"category"`
		Severity    string   `json:"severity"`
		Weight      int      `json:"weight"`
		Description string   `json:"description"`
		Kinds       []string `json:"kinds"`
		Keywords    []string `json:"keywords,omitempty"`
		Pattern     string   `json:"pattern,omitempty"`
		Domains     []string `json:"domains,omitempty"`
		Except      []string `json:"except,omitempty"`
	} `json:"rules"`
	Shorteners     []string `json:"shorteners"`
	Brands         []string `json:"brands"`
	DisallowedTLDs []string `json:"disallowedTLDs"`
}

// LoadFile builds a catalog from a JSON rule file. The result is a fresh
// immutable catalog; swap it into a Provider to take effect.
func LoadFile(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	var f ruleFile
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("catalog: parse %s: %w", path, err)
	}
	cfg := Config{
		Shorteners:     f.Shorteners,
		Brands:         f.Brands,
		DisallowedTLDs: f.DisallowedTLDs,
	}
	for _, r := range f.Rules {
		rule := Rule{
			ID:          r.ID,
			Category:    domain.Category(r.Category),
			Severity:    domain.Severity(r.Severity),
			Weight:      r.Weight,
			Description: r.Description,
			Keywords:    r.Keywords,
			Domains:     r.Domains,
			Except:      r.Except,
		}
		for _, k := range r.Kinds {
			rule.Kinds = append(rule.Kinds, domain.SignalKind(k))
		}
		if r.Pattern != "" {
			p, err := regexp.Compile(r.Pattern)
			if err != nil {
				return nil, fmt.Errorf("catalog: rule %q pattern: %w", r.ID, err)
			}
			rule.Pattern = p
		}
		cfg.Rules = append(cfg.Rules, rule)
	}
	return New(cfg)
}

// Provider hands out the current catalog snapshot. Scoring operations take a
// snapshot once and use it throughout, so a concurrent Swap never mutates a
// catalog that is mid-evaluation.
type Provider struct {
	cur atomic.Pointer[Catalog]
}

// NewProvider starts with the given catalog.
func NewProvider(c *Catalog) *Provider {
	p := &Provider{}
	p.cur.Store(c)
	return p
}

// Current returns the active catalog.
func (p *Provider) Current() *Catalog { return p.cur.Load() }

// Swap replaces the active catalog for subsequent scoring operations.
func (p *Provider) Swap(c *Catalog) { p.cur.Store(c) }
