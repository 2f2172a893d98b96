package periodic

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/anushkayadav0901/SypherFinal/internal/adapters/memstore"
	"github.com/anushkayadav0901/SypherFinal/internal/catalog"
	"github.com/anushkayadav0901/SypherFinal/internal/domain"
	"github.com/anushkayadav0901/SypherFinal/internal/ledger"
	"github.com/anushkayadav0901/SypherFinal/internal/scorer"
	"github.com/anushkayadav0901/SypherFinal/internal/settings"
)

func TestRecentDistinctURLs(t *testing.T) {
	entries := []domain.LedgerEntry{
		{SubjectURL: "https://a.com"},
		{SubjectURL: "https://b.com"},
		{SubjectURL: ""},
		{SubjectURL: "https://a.com"},
		{SubjectURL: "https://c.com"},
	}
	got := recentDistinctURLs(entries, 10)
	want := []string{"https://c.com", "https://a.com", "https://b.com"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}

	got = recentDistinctURLs(entries, 2)
	if !reflect.DeepEqual(got, []string{"https://c.com", "https://a.com"}) {
		t.Fatalf("limit not honored: %v", got)
	}

	if got := recentDistinctURLs(nil, 5); len(got) != 0 {
		t.Fatalf("empty input produced %v", got)
	}
}

// stubPages serves canned pages and fails everything else.
type stubPages struct {
	mu    sync.Mutex
	pages map[string]domain.PageData
	calls []string
}

func (s *stubPages) Page(ctx context.Context, url string) (domain.PageData, error) {
	s.mu.Lock()
	s.calls = append(s.calls, url)
	s.mu.Unlock()
	p, ok := s.pages[url]
	if !ok {
		return domain.PageData{}, errors.New("unreachable")
	}
	return p, nil
}

func TestRescanJob(t *testing.T) {
	log := discard()
	store := memstore.New()
	ctx := context.Background()
	svc := settings.Load(ctx, store, log)
	ldg := ledger.New(store, log)
	sc := scorer.New(catalog.NewProvider(catalog.Default()), svc, log).
		WithClock(func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) })

	for _, u := range []string{"https://ok.example", "https://down.example"} {
		if _, err := ldg.Append(ctx, domain.KindThreats, domain.LedgerEntry{SubjectURL: u, Score: 40}); err != nil {
			t.Fatal(err)
		}
	}
	pages := &stubPages{pages: map[string]domain.PageData{
		"https://ok.example": {URL: "https://ok.example", Title: "casino night"},
	}}

	if err := RescanJob(sc, ldg, pages, log)(ctx); err != nil {
		t.Fatal(err)
	}

	// Both URLs were tried; the unreachable one was skipped, not fatal.
	if len(pages.calls) != 2 {
		t.Fatalf("fetched %v, want both urls", pages.calls)
	}
	analyses, err := ldg.List(ctx, domain.KindAnalyses)
	if err != nil {
		t.Fatal(err)
	}
	if len(analyses) != 1 {
		t.Fatalf("analyses = %+v, want one fresh entry", analyses)
	}
	if analyses[0].SubjectURL != "https://ok.example" || analyses[0].Score != 50 {
		t.Fatalf("rescan entry = %+v, want gambling score 50", analyses[0])
	}
}

func TestTrimJob(t *testing.T) {
	log := discard()
	store := memstore.New()
	ctx := context.Background()
	ldg := ledger.New(store, log)
	for i := 0; i < ledger.CapThreats+7; i++ {
		if _, err := ldg.Append(ctx, domain.KindThreats, domain.LedgerEntry{
			SubjectURL: fmt.Sprintf("https://a.com/%d", i), Score: 1,
		}); err != nil {
			t.Fatal(err)
		}
	}
	if err := TrimJob(ldg)(ctx); err != nil {
		t.Fatal(err)
	}
	got, err := ldg.List(ctx, domain.KindThreats)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != ledger.CapThreats {
		t.Fatalf("got %d entries, want %d", len(got), ledger.CapThreats)
	}
}

func TestRefreshJobNoPathIsNoOp(t *testing.T) {
	p := catalog.NewProvider(catalog.Default())
	before := p.Current()
	if err := RefreshJob(p, "", discard())(context.Background()); err != nil {
		t.Fatal(err)
	}
	if p.Current() != before {
		t.Fatal("no-op refresh swapped the catalog")
	}
}

func TestRefreshJobBadFileKeepsCatalog(t *testing.T) {
	p := catalog.NewProvider(catalog.Default())
	before := p.Current()
	if err := RefreshJob(p, "/nonexistent/rules.json", discard())(context.Background()); err == nil {
		t.Fatal("expected error for missing file")
	}
	if p.Current() != before {
		t.Fatal("failed refresh swapped the catalog")
	}
}
