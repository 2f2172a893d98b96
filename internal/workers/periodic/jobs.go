package periodic

import (
	"context"
	"log/slog"
	"time"

	"github.com/anushkayadav0901/SypherFinal/internal/catalog"
	"github.com/anushkayadav0901/SypherFinal/internal/domain"
	"github.com/anushkayadav0901/SypherFinal/internal/ports"
)

// rescanLimit bounds how many recent distinct URLs a rescan pass revisits.
const rescanLimit = 10

// RescanJob revisits the most recently scanned URLs and appends fresh
// analysis entries. Pages that fail to fetch are skipped; a rescan pass
// never fails the job for a single bad page.
func RescanJob(scorer ports.Scorer, ldg ports.Ledger, pages ports.PageSource, log *slog.Logger) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		threats, err := ldg.List(ctx, domain.KindThreats)
		if err != nil {
			return err
		}
		urls := recentDistinctURLs(threats, rescanLimit)
		for _, u := range urls {
			page, err := pages.Page(ctx, u)
			if err != nil {
				log.Warn("rescan fetch failed", slog.String("url", u), slog.Any("error", err))
				continue
			}
			res := scorer.Score(ctx, page)
			if _, err := ldg.Append(ctx, domain.KindAnalyses, domain.LedgerEntry{
				SubjectURL: u,
				Score:      res.Score,
				CreatedAt:  time.Now().UTC(),
			}); err != nil {
				return err
			}
		}
		return nil
	}
}

// recentDistinctURLs walks newest-first collecting unique subject URLs.
func recentDistinctURLs(entries []domain.LedgerEntry, limit int) []string {
	seen := make(map[string]bool)
	var out []string
	for i := len(entries) - 1; i >= 0 && len(out) < limit; i-- {
		u := entries[i].SubjectURL
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		out = append(out, u)
	}
	return out
}

// TrimJob re-enforces every ledger capacity.
func TrimJob(ldg interface {
	Trim(ctx context.Context) error
}) func(ctx context.Context) error {
	return ldg.Trim
}

// RefreshJob reloads the rule catalog from a file and swaps it into the
// provider. With no path configured it is a no-op placeholder for a future
// remote feed.
func RefreshJob(provider *catalog.Provider, path string, log *slog.Logger) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if path == "" {
			log.Debug("catalog refresh skipped, no catalog file configured")
			return nil
		}
		cat, err := catalog.LoadFile(path)
		if err != nil {
			return err
		}
		provider.Swap(cat)
		log.Info("rule catalog reloaded", slog.Int("rules", cat.Len()))
		return nil
	}
}
