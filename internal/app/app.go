// Package app holds the application context: the configured places, the
// durable cache, the translator and the policies (staleness gate, clock,
// randomness) tying them together.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/valpere/trojalunch/internal/menu"
	"github.com/valpere/trojalunch/internal/place"
	"github.com/valpere/trojalunch/internal/store"
)

// Fallback dish of the day when no place has any dishes today.
const (
	FallbackPlace = "The Restaurant at the End of the Universe"
	FallbackDish  = "Ameglian Major Cow"
)

// Rand is the injectable randomness source behind dish-of-the-day
// selection; tests supply a fixed sequence.
type Rand interface {
	Intn(n int) int
}

type Config struct {
	// RefreshInterval is the staleness gate: a non-forced refresh younger
	// than this is a no-op.
	RefreshInterval time.Duration
	// SourceTimeout bounds each place's fetch so one stuck source cannot
	// block the others indefinitely.
	SourceTimeout time.Duration
	// Rand defaults to a fixed-seed PRNG matching the deployed behavior.
	Rand Rand
	// Now defaults to the Europe/Prague wall clock.
	Now func() time.Time
}

type App struct {
	fetchers   []place.Fetcher
	store      *store.Store
	translator menu.Translator
	logger     *slog.Logger
	cfg        Config

	mu       sync.Mutex
	snapshot atomic.Pointer[store.Snapshot]
}

// New builds the application context and warms it from any persisted
// snapshot. A corrupt or absent snapshot is a cold start, not an error.
func New(fetchers []place.Fetcher, st *store.Store, tr menu.Translator, logger *slog.Logger, cfg Config) (*App, error) {
	if len(fetchers) == 0 {
		return nil, fmt.Errorf("no places configured")
	}
	if cfg.RefreshInterval <= 0 {
		cfg.RefreshInterval = 23 * time.Hour
	}
	if cfg.SourceTimeout <= 0 {
		cfg.SourceTimeout = 60 * time.Second
	}
	if cfg.Rand == nil {
		cfg.Rand = rand.New(rand.NewSource(42))
	}
	if cfg.Now == nil {
		cfg.Now = pragueNow
	}

	a := &App{
		fetchers:   fetchers,
		store:      st,
		translator: tr,
		logger:     logger,
		cfg:        cfg,
	}

	snap, err := st.LoadSnapshot(context.Background())
	switch {
	case err == nil:
		a.snapshot.Store(snap)
	case errors.Is(err, store.ErrNoSnapshot):
		// cold start
	default:
		logger.Warn("ignoring unreadable snapshot, starting cold", "error", err)
	}

	return a, nil
}

// Reset drops the in-memory snapshot. Test isolation only; the persisted
// state is untouched.
func (a *App) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.snapshot.Store(nil)
}

// OverviewEntry is one place's projection for a single day.
type OverviewEntry struct {
	Place  string      `json:"place"`
	TabID  string      `json:"tab_id"`
	URL    string      `json:"url"`
	Soups  []menu.Dish `json:"soups"`
	Dishes []menu.Dish `json:"dishes"`
}

// OverviewForDay assembles the per-place listing for one date, in
// configuration order. A place with no menu for the date contributes an
// entry with empty lists; it is never omitted. Menus not yet translated are
// translated lazily here.
func (a *App) OverviewForDay(ctx context.Context, date time.Time) []OverviewEntry {
	date = menu.Day(date)
	snap := a.snapshot.Load()

	entries := make([]OverviewEntry, 0, len(a.fetchers))

	if snap == nil {
		for _, f := range a.fetchers {
			entries = append(entries, emptyEntry(f.Name(), f.TabID(), f.URL()))
		}
		return entries
	}

	for pi := range snap.Places {
		p := &snap.Places[pi]
		entry := emptyEntry(p.Name, p.TabID, p.URL)

		for mi := range p.Menus {
			if !p.Menus[mi].Date.Equal(date) {
				continue
			}
			if !p.Menus[mi].IsTranslated {
				a.translateLazily(ctx, snap, &p.Menus[mi])
			}
			entry.Soups = p.Menus[mi].Soups
			entry.Dishes = p.Menus[mi].Dishes
			break
		}

		entries = append(entries, entry)
	}

	return entries
}

// translateLazily runs the translation pass on a menu read before its eager
// translation happened (any date other than fetch-day today) and writes the
// updated snapshot back so the work is not repeated after a restart.
func (a *App) translateLazily(ctx context.Context, snap *store.Snapshot, m *menu.Menu) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if m.IsTranslated {
		return
	}
	m.Translate(ctx, a.translator, a.logger)

	// A refresh may have replaced the snapshot since the caller loaded it;
	// persisting the superseded one would roll the cache back.
	if a.snapshot.Load() != snap {
		return
	}
	if err := a.store.SaveSnapshot(ctx, snap); err != nil {
		a.logger.Error("failed to persist lazily translated menu", "place", m.Place, "error", err)
	}
}

// GenerateDishOfTheDay picks a random dish from a random place with dishes
// today, persists it and returns it. With nothing on offer anywhere it
// returns the fixed fallback pair.
func (a *App) GenerateDishOfTheDay(ctx context.Context) (*store.DishOfTheDay, error) {
	overview := a.OverviewForDay(ctx, a.cfg.Now())

	var candidates []OverviewEntry
	for _, e := range overview {
		if len(e.Dishes) > 0 {
			candidates = append(candidates, e)
		}
	}

	dotd := &store.DishOfTheDay{GeneratedAt: a.cfg.Now()}

	if len(candidates) == 0 {
		dotd.Place = FallbackPlace
		dotd.Dish = FallbackDish
	} else {
		entry := candidates[a.cfg.Rand.Intn(len(candidates))]
		dish := entry.Dishes[a.cfg.Rand.Intn(len(entry.Dishes))]

		name := dish.NameEn
		if name == "" {
			name = dish.Name
		}

		dotd.Place = entry.Place
		dotd.Dish = name
	}

	if err := a.store.SaveDishOfTheDay(ctx, dotd); err != nil {
		return nil, fmt.Errorf("failed to persist dish of the day: %w", err)
	}

	a.logger.Info("generated dish of the day", "dish", dotd.Dish, "place", dotd.Place)
	return dotd, nil
}

// DishOfTheDay returns the cached selection, generating one only when
// nothing has been generated yet.
func (a *App) DishOfTheDay(ctx context.Context) (*store.DishOfTheDay, error) {
	dotd, ok, err := a.store.DishOfTheDay(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read dish of the day: %w", err)
	}
	if ok {
		return dotd, nil
	}

	a.logger.Warn("dish of the day was not generated, generating now")
	return a.GenerateDishOfTheDay(ctx)
}

// Places returns the raw current place state for diagnostics.
func (a *App) Places() []store.PlaceState {
	snap := a.snapshot.Load()
	if snap == nil {
		return nil
	}
	return snap.Places
}

// LastUpdate reports when the current snapshot was fetched.
func (a *App) LastUpdate() (time.Time, bool) {
	snap := a.snapshot.Load()
	if snap == nil {
		return time.Time{}, false
	}
	return snap.LastUpdate, true
}

func emptyEntry(name, tabID, url string) OverviewEntry {
	return OverviewEntry{
		Place:  name,
		TabID:  tabID,
		URL:    url,
		Soups:  []menu.Dish{},
		Dishes: []menu.Dish{},
	}
}

var prague = func() *time.Location {
	loc, err := time.LoadLocation("Europe/Prague")
	if err != nil {
		return time.UTC
	}
	return loc
}()

func pragueNow() time.Time {
	return time.Now().In(prague)
}
