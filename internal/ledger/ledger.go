// Package ledger implements the append-only, capacity-bounded history store
// for findings and user-collected evidence. The ledger owns its entries;
// callers always receive copies, so capacity eviction can never invalidate a
// reference held outside.
package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/anushkayadav0901/SypherFinal/internal/domain"
	"github.com/anushkayadav0901/SypherFinal/internal/ports"
)

// Per-kind retention caps. Zero means uncapped.
const (
	CapThreats  = 100
	CapAnalyses = 50
)

var capacities = map[domain.LedgerKind]int{
	domain.KindThreats:  CapThreats,
	domain.KindAnalyses: CapAnalyses,
	domain.KindEvidence: 0,
}

// Aggregate contribution for evidence entries that carry no score of their
// own, keyed by category.
var categoryFallbackWeight = map[domain.Category]int{
	domain.CategoryDataCollection: 10,
	domain.CategoryMalware:        15,
	domain.CategoryPhishing:       10,
}

const defaultFallbackWeight = 5

// ErrUnknownKind is returned for a ledger kind without a configured store.
var ErrUnknownKind = fmt.Errorf("ledger: unknown kind")

// Ledger serializes all mutation per kind so capacity eviction and id
// assignment stay consistent under concurrent appends. Persistence goes
// through the KV store port; a failed write rolls the in-memory state back
// and surfaces the error.
type Ledger struct {
	store ports.KVStore
	log   *slog.Logger
	kinds map[domain.LedgerKind]*kindState
}

type kindState struct {
	mu      sync.Mutex
	loaded  bool
	entries []domain.LedgerEntry
	lastID  int64
	cap     int
}

// New builds a ledger over the given store. State is loaded lazily per kind
// on first use; a failed or malformed read degrades to empty.
func New(store ports.KVStore, log *slog.Logger) *Ledger {
	kinds := make(map[domain.LedgerKind]*kindState, len(capacities))
	for kind, c := range capacities {
		kinds[kind] = &kindState{cap: c}
	}
	return &Ledger{store: store, log: log, kinds: kinds}
}

// Append assigns the next id, enforces the kind's capacity and persists the
// result. It returns the assigned id. The append either fully succeeds or
// leaves the ledger untouched.
func (l *Ledger) Append(ctx context.Context, kind domain.LedgerKind, entry domain.LedgerEntry) (int64, error) {
	st, ok := l.kinds[kind]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	l.ensureLoaded(ctx, kind, st)

	st.lastID++
	entry.ID = st.lastID
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	next := append(append([]domain.LedgerEntry(nil), st.entries...), entry)
	next = l.trim(kind, st.cap, next)

	if err := l.persist(ctx, kind, next); err != nil {
		st.lastID-- // roll back id assignment
		return 0, err
	}
	st.entries = next
	return entry.ID, nil
}

// List returns a copy of the kind's entries in insertion order.
func (l *Ledger) List(ctx context.Context, kind domain.LedgerKind) ([]domain.LedgerEntry, error) {
	st, ok := l.kinds[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	l.ensureLoaded(ctx, kind, st)

	out := make([]domain.LedgerEntry, len(st.entries))
	copy(out, st.entries)
	return out, nil
}

// Clear resets a kind's store. Clearing an already empty ledger is a no-op.
func (l *Ledger) Clear(ctx context.Context, kind domain.LedgerKind) error {
	st, ok := l.kinds[kind]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	st.mu.Lock()
	defer st.mu.Unlock()

	if err := l.persist(ctx, kind, []domain.LedgerEntry{}); err != nil {
		return err
	}
	st.loaded = true
	st.entries = nil
	return nil
}

// AggregateScore sums a bounded contribution per entry across the given
// kinds and clamps at the aggregate boundary. Entries without a score of
// their own contribute a fixed per-category weight.
func (l *Ledger) AggregateScore(ctx context.Context, kinds ...domain.LedgerKind) (int, error) {
	total := 0
	for _, kind := range kinds {
		entries, err := l.List(ctx, kind)
		if err != nil {
			return 0, err
		}
		for _, e := range entries {
			total += entryContribution(e)
		}
	}
	return domain.ClampScore(total), nil
}

func entryContribution(e domain.LedgerEntry) int {
	if e.Score > 0 {
		return e.Score
	}
	// Only evidence items without a score of their own fall back to a
	// per-category weight; a clean scan record contributes nothing.
	if e.Evidence == "" {
		return 0
	}
	if w, ok := categoryFallbackWeight[e.Category]; ok {
		return w
	}
	return defaultFallbackWeight
}

// Trim re-enforces every capacity. The periodic trim job calls this; it also
// corrects any store state written by older builds with different caps.
func (l *Ledger) Trim(ctx context.Context) error {
	for kind, st := range l.kinds {
		if st.cap == 0 {
			continue
		}
		st.mu.Lock()
		l.ensureLoaded(ctx, kind, st)
		if len(st.entries) > st.cap {
			next := l.trim(kind, st.cap, append([]domain.LedgerEntry(nil), st.entries...))
			if err := l.persist(ctx, kind, next); err != nil {
				st.mu.Unlock()
				return err
			}
			st.entries = next
		}
		st.mu.Unlock()
	}
	return nil
}

// trim evicts oldest entries until the slice fits the cap. The second pass
// is the capacity invariant backstop: it should be unreachable, and is
// logged and force-corrected if ever hit.
func (l *Ledger) trim(kind domain.LedgerKind, max int, entries []domain.LedgerEntry) []domain.LedgerEntry {
	if max == 0 || len(entries) <= max {
		return entries
	}
	entries = entries[len(entries)-max:]
	if len(entries) > max {
		l.log.Error("ledger capacity invariant violated, force trimming",
			slog.String("kind", string(kind)),
			slog.Int("size", len(entries)),
			slog.Int("cap", max))
		entries = entries[len(entries)-max:]
	}
	return entries
}

func (l *Ledger) ensureLoaded(ctx context.Context, kind domain.LedgerKind, st *kindState) {
	if st.loaded {
		return
	}
	st.loaded = true

	vals, err := l.store.Get(ctx, string(kind))
	if err != nil {
		// Degrade to empty; the next successful append rewrites the key.
		l.log.Warn("ledger read failed, starting empty",
			slog.String("kind", string(kind)), slog.Any("error", err))
		return
	}
	raw, ok := vals[string(kind)]
	if !ok || len(raw) == 0 {
		return
	}
	var entries []domain.LedgerEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		l.log.Warn("ledger state malformed, starting empty",
			slog.String("kind", string(kind)), slog.Any("error", err))
		return
	}
	entries = l.trim(kind, st.cap, entries)
	st.entries = entries
	for _, e := range entries {
		if e.ID > st.lastID {
			st.lastID = e.ID
		}
	}
}

func (l *Ledger) persist(ctx context.Context, kind domain.LedgerKind, entries []domain.LedgerEntry) error {
	raw, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("ledger: encode %s: %w", kind, err)
	}
	if err := l.store.Set(ctx, map[string][]byte{string(kind): raw}); err != nil {
		return fmt.Errorf("ledger: store unavailable for %s: %w", kind, err)
	}
	return nil
}
