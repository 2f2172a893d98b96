// Package commands provides the engine's single "one entry point, many
// operations" surface: a tagged command type dispatched through a lookup
// table keyed on the action name, one typed handler per variant.
package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/anushkayadav0901/SypherFinal/internal/domain"
	"github.com/anushkayadav0901/SypherFinal/internal/export"
	"github.com/anushkayadav0901/SypherFinal/internal/ports"
	"github.com/anushkayadav0901/SypherFinal/internal/settings"
)

// Name discriminates command variants.
type Name string

const (
	AnalyzePage        Name = "analyzePage"
	AnalyzeText        Name = "analyzeText"
	ReportThreat       Name = "reportThreat"
	AddEvidence        Name = "addEvidence"
	GetEvidence        Name = "getEvidence"
	GetThreatHistory   Name = "getThreatHistory"
	ClearThreatHistory Name = "clearThreatHistory"
	GetScore           Name = "getScore"
	UpdateSettings     Name = "updateSettings"
	ExportReport       Name = "exportReport"
)

// Command is one request: the action name plus a variant-specific payload.
type Command struct {
	Action  Name            `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// ErrUnknownCommand is returned for an action with no registered handler.
var ErrUnknownCommand = errors.New("unknown command")

// Handler executes one command variant.
type Handler func(ctx context.Context, payload json.RawMessage) (any, error)

// Deps are the collaborators handlers close over.
type Deps struct {
	Scorer   ports.Scorer
	Ledger   ports.Ledger
	Settings *settings.Service
	Now      func() time.Time
}

// Dispatcher routes commands to their handlers.
type Dispatcher struct {
	handlers map[Name]Handler
}

// NewDispatcher registers the full handler table.
func NewDispatcher(d Deps) *Dispatcher {
	if d.Now == nil {
		d.Now = time.Now
	}
	return &Dispatcher{handlers: map[Name]Handler{
		AnalyzePage:        d.analyzePage,
		AnalyzeText:        d.analyzeText,
		ReportThreat:       d.reportThreat,
		AddEvidence:        d.addEvidence,
		GetEvidence:        d.getEvidence,
		GetThreatHistory:   d.getThreatHistory,
		ClearThreatHistory: d.clearThreatHistory,
		GetScore:           d.getScore,
		UpdateSettings:     d.updateSettings,
		ExportReport:       d.exportReport,
	}}
}

// Dispatch runs a command, returning the handler's typed result or a typed
// error. Unknown actions fail with ErrUnknownCommand.
func (dp *Dispatcher) Dispatch(ctx context.Context, cmd Command) (any, error) {
	h, ok := dp.handlers[cmd.Action]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, cmd.Action)
	}
	return h(ctx, cmd.Payload)
}

// AnalyzeResult is the response for page analysis commands.
type AnalyzeResult struct {
	Score    int              `json:"score"`
	Findings []domain.Finding `json:"findings"`
	Band     string           `json:"band"`
	Notify   bool             `json:"notify"`
}

func (d Deps) analyzePage(ctx context.Context, payload json.RawMessage) (any, error) {
	var page domain.PageData
	if err := decode(payload, &page); err != nil {
		return nil, err
	}
	res := d.Scorer.Score(ctx, page)

	// Every scan is recorded in the threat history, zero scores included,
	// so the ledger reflects the full scan timeline.
	if _, err := d.Ledger.Append(ctx, domain.KindThreats, domain.LedgerEntry{
		SubjectURL: page.URL,
		Findings:   res.Findings,
		Score:      res.Score,
		CreatedAt:  d.Now().UTC(),
	}); err != nil {
		return nil, err
	}
	if _, err := d.Ledger.Append(ctx, domain.KindAnalyses, domain.LedgerEntry{
		SubjectURL: page.URL,
		Score:      res.Score,
		CreatedAt:  d.Now().UTC(),
	}); err != nil {
		return nil, err
	}
	notify := d.Settings.Current().NotificationsEnabled && domain.NotifyWorthy(res.Score)
	return AnalyzeResult{
		Score:    res.Score,
		Findings: res.Findings,
		Band:     domain.RiskBand(res.Score),
		Notify:   notify,
	}, nil
}

func (d Deps) analyzeText(ctx context.Context, payload json.RawMessage) (any, error) {
	var req struct {
		Text string `json:"text"`
		URL  string `json:"url,omitempty"`
	}
	if err := decode(payload, &req); err != nil {
		return nil, err
	}
	res := d.Scorer.AnalyzeText(ctx, req.Text)

	// High-risk text is captured as evidence automatically.
	if res.RiskScore > 50 {
		if _, err := d.Ledger.Append(ctx, domain.KindEvidence, domain.LedgerEntry{
			SubjectURL: req.URL,
			Category:   domain.CategoryPhishing,
			Evidence:   truncate(req.Text, 200),
			Score:      res.RiskScore,
			CreatedAt:  d.Now().UTC(),
		}); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func (d Deps) reportThreat(ctx context.Context, payload json.RawMessage) (any, error) {
	var entry domain.LedgerEntry
	if err := decode(payload, &entry); err != nil {
		return nil, err
	}
	id, err := d.Ledger.Append(ctx, domain.KindThreats, entry)
	if err != nil {
		return nil, err
	}
	return map[string]int64{"threatId": id}, nil
}

func (d Deps) addEvidence(ctx context.Context, payload json.RawMessage) (any, error) {
	var entry domain.LedgerEntry
	if err := decode(payload, &entry); err != nil {
		return nil, err
	}
	id, err := d.Ledger.Append(ctx, domain.KindEvidence, entry)
	if err != nil {
		return nil, err
	}
	return map[string]int64{"evidenceId": id}, nil
}

func (d Deps) getEvidence(ctx context.Context, _ json.RawMessage) (any, error) {
	return d.Ledger.List(ctx, domain.KindEvidence)
}

func (d Deps) getThreatHistory(ctx context.Context, _ json.RawMessage) (any, error) {
	return d.Ledger.List(ctx, domain.KindThreats)
}

func (d Deps) clearThreatHistory(ctx context.Context, _ json.RawMessage) (any, error) {
	if err := d.Ledger.Clear(ctx, domain.KindThreats); err != nil {
		return nil, err
	}
	return map[string]bool{"success": true}, nil
}

func (d Deps) getScore(ctx context.Context, _ json.RawMessage) (any, error) {
	score, err := d.Ledger.AggregateScore(ctx, domain.KindEvidence, domain.KindThreats)
	if err != nil {
		return nil, err
	}
	return map[string]int{"score": score}, nil
}

func (d Deps) updateSettings(ctx context.Context, payload json.RawMessage) (any, error) {
	var patch domain.SettingsPatch
	if err := decode(payload, &patch); err != nil {
		return nil, err
	}
	return d.Settings.Update(ctx, patch)
}

func (d Deps) exportReport(ctx context.Context, _ json.RawMessage) (any, error) {
	return export.Build(ctx, d.Ledger, d.Now())
}

func decode(payload json.RawMessage, v any) error {
	if len(payload) == 0 {
		return errors.New("missing payload")
	}
	if err := json.Unmarshal(payload, v); err != nil {
		return fmt.Errorf("invalid payload: %w", err)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
