package domain

import (
	"sort"
	"time"
)

// Core domain models shared by the engine packages. Wire shapes for the
// export report live in internal/export; keep these decoupled where helpful.

// Severity buckets a finding for triage. Ordering is critical > high >
// medium > low.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

var severityRank = map[Severity]int{
	SeverityLow:      1,
	SeverityMedium:   2,
	SeverityHigh:     3,
	SeverityCritical: 4,
}

// Rank returns the ordering weight of a severity. Unknown severities rank
// below low so malformed data never outranks real findings.
func (s Severity) Rank() int { return severityRank[s] }

// Category classifies what a rule or heuristic detects.
type Category string

const (
	CategoryPhishing       Category = "phishing"
	CategoryGambling       Category = "gambling"
	CategoryInsecure       Category = "insecure"
	CategoryMalware        Category = "malware"
	CategoryDataCollection Category = "data_collection"
	CategoryTyposquat      Category = "typosquat"
	CategoryDomainRisk     Category = "domain_risk"
)

// SignalKind identifies where on a page an observation came from.
type SignalKind string

const (
	SignalDomain SignalKind = "domain"
	SignalTitle  SignalKind = "title"
	SignalText   SignalKind = "text"
	SignalForm   SignalKind = "form"
	SignalLink   SignalKind = "link"
	SignalScript SignalKind = "script"
)

// Signal is one observation extracted from raw page data. Immutable once
// produced.
type Signal struct {
	Kind    SignalKind `json:"kind"`
	Value   string     `json:"value"`
	Context string     `json:"context,omitempty"`
}

// Finding is the output of scoring one signal against one rule.
type Finding struct {
	RuleID       string    `json:"ruleId"`
	Category     Category  `json:"category"`
	Severity     Severity  `json:"severity"`
	Weight       int       `json:"weight"`
	Description  string    `json:"description"`
	MatchedValue string    `json:"matchedValue,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// ScoreResult is the outcome of scoring a page. Score is always in [0, 100]
// and findings are ordered by descending severity, stable on insertion order.
type ScoreResult struct {
	Score    int       `json:"score"`
	Findings []Finding `json:"findings"`
}

// ClampScore bounds a raw weight sum to [0, 100]. Clamping happens at
// aggregation boundaries only, never per rule.
func ClampScore(n int) int {
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}

// SortFindings orders findings by descending severity, preserving insertion
// order for equal severities.
func SortFindings(fs []Finding) {
	sort.SliceStable(fs, func(i, j int) bool {
		return fs[i].Severity.Rank() > fs[j].Severity.Rank()
	})
}

// RiskBand maps a score to the band a UI collaborator would badge it with.
func RiskBand(score int) string {
	switch {
	case score > 70:
		return "high"
	case score > 30:
		return "medium"
	default:
		return "low"
	}
}

// NotifyWorthy reports whether a score crosses the notification threshold.
// The engine never notifies anyone itself; collaborators decide.
func NotifyWorthy(score int) bool { return score > 70 }

// LedgerKind names one of the persisted history stores. The values double as
// storage keys and must not change.
type LedgerKind string

const (
	KindThreats  LedgerKind = "threatHistory"
	KindEvidence LedgerKind = "evidenceList"
	KindAnalyses LedgerKind = "analysisHistory"
)

// LedgerEntry is one persisted record in a ledger. Entries are insertion
// ordered with strictly increasing ids per kind.
type LedgerEntry struct {
	ID         int64     `json:"id"`
	SubjectURL string    `json:"url"`
	Category   Category  `json:"category,omitempty"`
	Evidence   string    `json:"evidence,omitempty"`
	Findings   []Finding `json:"findings,omitempty"`
	Score      int       `json:"score"`
	CreatedAt  time.Time `json:"createdAt"`
}

// PageData is the raw input supplied by a page source collaborator: a live
// tab, a fetched document, or a test fixture. DOM is an optional HTML
// snapshot; without it only URL/title/text signals are produced.
type PageData struct {
	URL      string `json:"url"`
	Title    string `json:"title"`
	BodyText string `json:"bodyText"`
	DOM      string `json:"dom,omitempty"`
}

// TextAnalysis is the result of scoring free text outside of a page context.
type TextAnalysis struct {
	RiskLevel string   `json:"riskLevel"`
	RiskScore int      `json:"riskScore"`
	Threats   []string `json:"threats"`
	Analysis  string   `json:"analysis"`
}
