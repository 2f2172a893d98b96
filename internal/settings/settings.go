// Package settings manages the persisted engine configuration: loaded once
// at startup, replace-merged on partial updates, written back after every
// change.
package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/anushkayadav0901/SypherFinal/internal/domain"
	"github.com/anushkayadav0901/SypherFinal/internal/ports"
)

// Key is the fixed storage key settings persist under.
const Key = "settings"

// Service holds the current settings snapshot. Reads are cheap and
// lock-free for callers going through Current; updates serialize.
type Service struct {
	store ports.KVStore
	log   *slog.Logger

	mu  sync.RWMutex
	cur domain.Settings
}

// Load reads persisted settings, overlaying them on the defaults. A missing
// key, failed read or schema mismatch all degrade to defaults rather than
// failing startup.
func Load(ctx context.Context, store ports.KVStore, log *slog.Logger) *Service {
	s := &Service{store: store, log: log, cur: domain.DefaultSettings()}

	vals, err := store.Get(ctx, Key)
	if err != nil {
		log.Warn("settings read failed, using defaults", slog.Any("error", err))
		return s
	}
	raw, ok := vals[Key]
	if !ok || len(raw) == 0 {
		return s
	}
	merged := domain.DefaultSettings()
	if err := json.Unmarshal(raw, &merged); err != nil {
		log.Warn("settings blob malformed, using defaults", slog.Any("error", err))
		return s
	}
	s.cur = merged
	return s
}

// Current returns the active settings snapshot.
func (s *Service) Current() domain.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur
}

// Update merges a partial patch over the current settings and persists the
// result. On a store failure the previous settings stay active and the
// error is returned.
func (s *Service) Update(ctx context.Context, patch domain.SettingsPatch) (domain.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.cur.Apply(patch)
	raw, err := json.Marshal(next)
	if err != nil {
		return s.cur, fmt.Errorf("settings: encode: %w", err)
	}
	if err := s.store.Set(ctx, map[string][]byte{Key: raw}); err != nil {
		return s.cur, fmt.Errorf("settings: store unavailable: %w", err)
	}
	s.cur = next
	return next, nil
}
