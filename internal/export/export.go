// Package export builds the JSON report consumed by downstream tooling. The
// field set and names are a compatibility contract with existing report
// consumers; do not rename them.
package export

import (
	"context"
	"encoding/json"
	"time"

	"github.com/anushkayadav0901/SypherFinal/internal/domain"
	"github.com/anushkayadav0901/SypherFinal/internal/ports"
)

// Report is the on-the-wire export document.
type Report struct {
	Generated string               `json:"generated"`
	Evidence  []domain.LedgerEntry `json:"evidence"`
	Threats   []domain.LedgerEntry `json:"threats"`
	Summary   Summary              `json:"summary"`
}

// Summary totals the report.
type Summary struct {
	TotalEvidence int `json:"totalEvidence"`
	TotalThreats  int `json:"totalThreats"`
	RiskScore     int `json:"riskScore"`
}

// Build snapshots both ledgers and the current aggregate score.
func Build(ctx context.Context, ldg ports.Ledger, now time.Time) (Report, error) {
	evidence, err := ldg.List(ctx, domain.KindEvidence)
	if err != nil {
		return Report{}, err
	}
	threats, err := ldg.List(ctx, domain.KindThreats)
	if err != nil {
		return Report{}, err
	}
	score, err := ldg.AggregateScore(ctx, domain.KindEvidence, domain.KindThreats)
	if err != nil {
		return Report{}, err
	}
	if evidence == nil {
		evidence = []domain.LedgerEntry{}
	}
	if threats == nil {
		threats = []domain.LedgerEntry{}
	}
	return Report{
		Generated: now.UTC().Format(time.RFC3339),
		Evidence:  evidence,
		Threats:   threats,
		Summary: Summary{
			TotalEvidence: len(evidence),
			TotalThreats:  len(threats),
			RiskScore:     score,
		},
	}, nil
}

// Bytes renders the report with two-space indentation, matching the format
// existing consumers parse.
func (r Report) Bytes() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}
