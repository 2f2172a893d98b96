// Package scorer applies the rule catalog and domain heuristics to extracted
// signals, producing a bounded, explainable risk score.
package scorer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/anushkayadav0901/SypherFinal/internal/catalog"
	"github.com/anushkayadav0901/SypherFinal/internal/domain"
	"github.com/anushkayadav0901/SypherFinal/internal/extract"
	"github.com/anushkayadav0901/SypherFinal/internal/heuristics"
	"github.com/anushkayadav0901/SypherFinal/internal/ports"
)

// Scorer is stateless apart from its injected collaborators and is safe for
// concurrent use. Scoring is deterministic for a fixed (signals, catalog,
// clock) triple.
type Scorer struct {
	catalogs *catalog.Provider
	settings ports.SettingsReader
	log      *slog.Logger
	now      func() time.Time
}

// New wires a scorer. The domain heuristics are derived from the catalog
// snapshot on every scoring operation so a catalog reload updates both the
// rules and the domain lists together. A nil clock defaults to time.Now.
func New(catalogs *catalog.Provider, settings ports.SettingsReader, log *slog.Logger) *Scorer {
	return &Scorer{
		catalogs: catalogs,
		settings: settings,
		log:      log,
		now:      time.Now,
	}
}

// WithClock overrides the timestamp source. Tests use this to get
// reproducible findings.
func (s *Scorer) WithClock(now func() time.Time) *Scorer {
	s.now = now
	return s
}

// Score extracts signals from a page and evaluates them. When real-time
// scanning is disabled it short-circuits to a zero result without touching
// the catalog; that is the documented fast path, not an error.
func (s *Scorer) Score(ctx context.Context, page domain.PageData) domain.ScoreResult {
	if !s.settings.Current().RealTimeScanning {
		return domain.ScoreResult{Score: 0, Findings: []domain.Finding{}}
	}
	return s.ScoreSignals(ctx, extract.Signals(page))
}

// ScoreSignals evaluates pre-extracted signals. Every signal is matched
// against the catalog; domain signals additionally run through the
// heuristics. One bad signal contributes nothing rather than aborting the
// whole result.
func (s *Scorer) ScoreSignals(ctx context.Context, sigs []domain.Signal) domain.ScoreResult {
	cat := s.catalogs.Current()
	checks := heuristics.New(cat.Shorteners(), cat.Brands(), cat.DisallowedTLDs())
	now := s.now().UTC()

	findings := make([]domain.Finding, 0, 4)
	for _, sig := range sigs {
		findings = append(findings, cat.Match(sig, now)...)
		if sig.Kind == domain.SignalDomain && sig.Value != "" {
			findings = append(findings, checks.Check(sig.Value, now)...)
		}
	}

	total := 0
	for _, f := range findings {
		total += f.Weight
	}
	domain.SortFindings(findings)

	res := domain.ScoreResult{Score: domain.ClampScore(total), Findings: findings}
	if res.Score > 0 {
		s.log.DebugContext(ctx, "page scored",
			slog.Int("score", res.Score),
			slog.Int("findings", len(res.Findings)))
	}
	return res
}

// AnalyzeText scores free text outside a page context, per keyword rather
// than per category: each distinct keyword hit adds its group's weight. The
// threat list preserves first-hit order with duplicates removed.
func (s *Scorer) AnalyzeText(ctx context.Context, text string) domain.TextAnalysis {
	lower := strings.ToLower(text)
	score := 0
	var threats []string
	seen := make(map[string]bool)
	for _, group := range catalog.TextKeywordGroups() {
		for _, kw := range group.Keywords {
			if !strings.Contains(lower, kw) {
				continue
			}
			score += group.Weight
			if !seen[kw] {
				seen[kw] = true
				threats = append(threats, kw)
			}
		}
	}

	level := "low"
	switch {
	case score > 50:
		level = "high"
	case score > 25:
		level = "medium"
	}
	return domain.TextAnalysis{
		RiskLevel: level,
		RiskScore: domain.ClampScore(score),
		Threats:   threats,
		Analysis:  describeLevel(level, len(threats)),
	}
}

func describeLevel(level string, hits int) string {
	switch level {
	case "high":
		return fmt.Sprintf("HIGH RISK: Multiple threat indicators detected. Contains %d suspicious terms.", hits)
	case "medium":
		return "MEDIUM RISK: Some concerning patterns found. Monitor closely."
	default:
		return "LOW RISK: No significant threats detected. Content appears safe."
	}
}
