package httpadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/anushkayadav0901/SypherFinal/internal/adapters/memstore"
	"github.com/anushkayadav0901/SypherFinal/internal/catalog"
	"github.com/anushkayadav0901/SypherFinal/internal/commands"
	"github.com/anushkayadav0901/SypherFinal/internal/domain"
	"github.com/anushkayadav0901/SypherFinal/internal/export"
	"github.com/anushkayadav0901/SypherFinal/internal/ledger"
	"github.com/anushkayadav0901/SypherFinal/internal/scorer"
	"github.com/anushkayadav0901/SypherFinal/internal/settings"
)

// newTestServer wires the full engine over an in-memory store, the same
// shape main assembles in production.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := memstore.New()
	svc := settings.Load(context.Background(), store, log)
	ldg := ledger.New(store, log)
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	sc := scorer.New(catalog.NewProvider(catalog.Default()), svc, log).
		WithClock(func() time.Time { return fixed })
	dp := commands.NewDispatcher(commands.Deps{
		Scorer:   sc,
		Ledger:   ldg,
		Settings: svc,
		Now:      func() time.Time { return fixed },
	})
	srv := httptest.NewServer(New(sc, ldg, svc, dp, log).Routes())
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(raw))
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatal(err)
	}
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var body map[string]string
	decodeBody(t, resp, &body)
	if body["status"] != "ok" {
		t.Fatalf("body = %v", body)
	}
}

func TestAnalyzeEndToEnd(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/v1/analyze", domain.PageData{
		URL:   "http://bit.ly/abc",
		Title: "You are a WINNER! Claim your prize",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var res commands.AnalyzeResult
	decodeBody(t, resp, &res)
	if res.Score != 75 || res.Band != "high" || !res.Notify {
		t.Fatalf("got %+v", res)
	}

	// The scan shows up in the threat history.
	resp, err := http.Get(srv.URL + "/v1/threats")
	if err != nil {
		t.Fatal(err)
	}
	var threats []domain.LedgerEntry
	decodeBody(t, resp, &threats)
	if len(threats) != 1 || threats[0].Score != 75 || threats[0].ID != 1 {
		t.Fatalf("threats = %+v", threats)
	}
}

func TestAnalyzeTextEndpoint(t *testing.T) {
	srv := newTestServer(t)
	resp := postJSON(t, srv.URL+"/v1/analyze/text", map[string]string{
		"text": "play casino and poker tonight",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var res domain.TextAnalysis
	decodeBody(t, resp, &res)
	if res.RiskScore != 40 || res.RiskLevel != "medium" {
		t.Fatalf("got %+v", res)
	}
}

func TestClearThreats(t *testing.T) {
	srv := newTestServer(t)
	postJSON(t, srv.URL+"/v1/analyze", domain.PageData{URL: "http://bit.ly/x", Title: "winner"}).Body.Close()

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/v1/threats", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	var ok map[string]bool
	decodeBody(t, resp, &ok)
	if !ok["success"] {
		t.Fatalf("body = %v", ok)
	}

	resp, err = http.Get(srv.URL + "/v1/threats")
	if err != nil {
		t.Fatal(err)
	}
	var threats []domain.LedgerEntry
	decodeBody(t, resp, &threats)
	if len(threats) != 0 {
		t.Fatalf("threats after clear = %+v", threats)
	}
}

func TestEvidenceEndpoints(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/v1/evidence", domain.LedgerEntry{
		Evidence: "screenshot of popup", Category: domain.CategoryGambling,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var created map[string]int64
	decodeBody(t, resp, &created)
	if created["evidenceId"] != 1 {
		t.Fatalf("body = %v", created)
	}

	resp, err := http.Get(srv.URL + "/v1/evidence")
	if err != nil {
		t.Fatal(err)
	}
	var entries []domain.LedgerEntry
	decodeBody(t, resp, &entries)
	if len(entries) != 1 || entries[0].Evidence != "screenshot of popup" {
		t.Fatalf("entries = %+v", entries)
	}
}

func TestScoreEndpoint(t *testing.T) {
	srv := newTestServer(t)
	postJSON(t, srv.URL+"/v1/analyze", domain.PageData{
		URL: "http://bit.ly/abc", Title: "You are a WINNER! Claim your prize",
	}).Body.Close()

	resp, err := http.Get(srv.URL + "/v1/score")
	if err != nil {
		t.Fatal(err)
	}
	var body struct {
		Score int    `json:"score"`
		Band  string `json:"band"`
	}
	decodeBody(t, resp, &body)
	if body.Score != 75 || body.Band != "high" {
		t.Fatalf("body = %+v", body)
	}
}

func TestSettingsEndpoints(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/v1/settings")
	if err != nil {
		t.Fatal(err)
	}
	var current domain.Settings
	decodeBody(t, resp, &current)
	if current != domain.DefaultSettings() {
		t.Fatalf("settings = %+v", current)
	}

	raw, _ := json.Marshal(map[string]bool{"realTimeScanning": false})
	req, err := http.NewRequest(http.MethodPatch, srv.URL+"/v1/settings", bytes.NewReader(raw))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	var updated domain.Settings
	decodeBody(t, resp, &updated)
	if updated.RealTimeScanning || !updated.NotificationsEnabled {
		t.Fatalf("updated = %+v", updated)
	}

	// Scanning disabled: analysis returns a zero result.
	resp = postJSON(t, srv.URL+"/v1/analyze", domain.PageData{URL: "http://bit.ly/abc", Title: "winner"})
	var res commands.AnalyzeResult
	decodeBody(t, resp, &res)
	if res.Score != 0 {
		t.Fatalf("scan with scanning disabled scored %d", res.Score)
	}
}

func TestExportEndpoint(t *testing.T) {
	srv := newTestServer(t)
	postJSON(t, srv.URL+"/v1/analyze", domain.PageData{
		URL: "http://bit.ly/abc", Title: "You are a WINNER! Claim your prize",
	}).Body.Close()

	resp, err := http.Get(srv.URL + "/v1/export")
	if err != nil {
		t.Fatal(err)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Errorf("content type = %q", ct)
	}
	var report export.Report
	decodeBody(t, resp, &report)
	if report.Summary.TotalThreats != 1 || report.Summary.RiskScore != 75 {
		t.Fatalf("report = %+v", report.Summary)
	}
	if report.Evidence == nil || report.Threats == nil {
		t.Fatal("export arrays must never be null")
	}
}

func TestCommandEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/v1/commands", commands.Command{
		Action:  commands.AnalyzeText,
		Payload: json.RawMessage(`{"text":"casino"}`),
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var res domain.TextAnalysis
	decodeBody(t, resp, &res)
	if res.RiskScore != 20 {
		t.Fatalf("got %+v", res)
	}
}

func TestCommandUnknownActionIs400(t *testing.T) {
	srv := newTestServer(t)
	resp := postJSON(t, srv.URL+"/v1/commands", commands.Command{Action: "explode"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	var body map[string]string
	decodeBody(t, resp, &body)
	if body["error"] == "" {
		t.Fatal("missing error message")
	}
}

func TestInvalidBodyIs400(t *testing.T) {
	srv := newTestServer(t)
	resp, err := http.Post(srv.URL+"/v1/analyze", "application/json", bytes.NewReader([]byte("{broken")))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}
