package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/valpere/trojalunch/internal/menu"
	"github.com/valpere/trojalunch/internal/store"
)

// Refresh fetches every configured place and replaces the persisted
// snapshot. A non-forced call inside the staleness window does nothing and
// reports false. One place failing never aborts the others: the place stays
// in the snapshot with whatever menus its fetch produced. Menus for the
// current date are translated eagerly; other dates wait for first read.
// At most one refresh runs at a time.
func (a *App) Refresh(ctx context.Context, force bool) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !force {
		if age := a.cacheAge(); age < a.cfg.RefreshInterval {
			a.logger.Info("cache is fresh, skipping refresh", "age", age)
			return false, nil
		}
	}

	logger := a.logger.With("run_id", uuid.NewString())
	logger.Info("refreshing places", "count", len(a.fetchers), "forced", force)

	today := menu.Day(a.cfg.Now())
	snap := &store.Snapshot{}

	for _, f := range a.fetchers {
		state := store.PlaceState{
			Name:  f.Name(),
			TabID: f.TabID(),
			URL:   f.URL(),
		}

		logger.Info("fetching data", "place", f.Name())

		fetchCtx, cancel := context.WithTimeout(ctx, a.cfg.SourceTimeout)
		result, err := f.FetchMenus(fetchCtx)
		cancel()

		if err != nil {
			logger.Error("error when fetching data", "place", f.Name(), "error", err)
		}
		if result != nil {
			state.Menus = result.Menus
			for _, skip := range result.Skipped {
				logger.Warn("skipped item", "place", skip.Source, "item", skip.Item, "reason", skip.Reason)
			}
		}

		for i := range state.Menus {
			if state.Menus[i].Date.Equal(today) && !state.Menus[i].IsTranslated {
				state.Menus[i].Translate(ctx, a.translator, logger)
			}
		}

		snap.Places = append(snap.Places, state)
	}

	snap.LastUpdate = a.cfg.Now()

	if err := a.store.SaveSnapshot(ctx, snap); err != nil {
		return false, fmt.Errorf("failed to persist snapshot: %w", err)
	}
	a.snapshot.Store(snap)

	logger.Info("refresh complete", "places", len(snap.Places))
	return true, nil
}

// cacheAge is the time since the last successful refresh; with no snapshot
// the cache counts as infinitely stale.
func (a *App) cacheAge() time.Duration {
	snap := a.snapshot.Load()
	if snap == nil {
		return time.Duration(1<<63 - 1)
	}
	return a.cfg.Now().Sub(snap.LastUpdate)
}
