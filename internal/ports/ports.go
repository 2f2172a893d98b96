package ports

import (
	"context"

	"github.com/anushkayadav0901/SypherFinal/internal/domain"
)

// KVStore is the persistent key-value collaborator the ledger and settings
// write through. Missing keys are simply absent from the returned map, never
// an error. Implementations must be safe for concurrent use.
type KVStore interface {
	Get(ctx context.Context, keys ...string) (map[string][]byte, error)
	Set(ctx context.Context, values map[string][]byte) error
}

// Scorer evaluates pages and free text against the active rule catalog.
type Scorer interface {
	Score(ctx context.Context, page domain.PageData) domain.ScoreResult
	AnalyzeText(ctx context.Context, text string) domain.TextAnalysis
}

// Ledger is the append-only, capacity-bounded history store.
type Ledger interface {
	Append(ctx context.Context, kind domain.LedgerKind, entry domain.LedgerEntry) (int64, error)
	List(ctx context.Context, kind domain.LedgerKind) ([]domain.LedgerEntry, error)
	Clear(ctx context.Context, kind domain.LedgerKind) error
	AggregateScore(ctx context.Context, kinds ...domain.LedgerKind) (int, error)
}

// SettingsReader exposes the current settings snapshot to components that
// gate behavior on them.
type SettingsReader interface {
	Current() domain.Settings
}

// PageSource supplies raw page data for a URL: a live browser tab, a fetched
// document, or a fixture.
type PageSource interface {
	Page(ctx context.Context, url string) (domain.PageData, error)
}
