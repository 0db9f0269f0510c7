package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/valpere/trojalunch/internal/menu"
	"github.com/valpere/trojalunch/internal/place"
	"github.com/valpere/trojalunch/internal/store"
)

var testNow = time.Date(2024, time.March, 11, 12, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return testNow }

type stubFetcher struct {
	name  string
	tabID string
	menus []menu.Menu
	err   error
	calls int
}

func (f *stubFetcher) Name() string  { return f.name }
func (f *stubFetcher) TabID() string { return f.tabID }
func (f *stubFetcher) URL() string   { return "https://example.com/" + f.tabID }

func (f *stubFetcher) FetchMenus(ctx context.Context) (*menu.FetchResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	menus := make([]menu.Menu, len(f.menus))
	copy(menus, f.menus)
	return &menu.FetchResult{Menus: menus}, nil
}

type countingTranslator struct {
	calls int
}

func (tr *countingTranslator) Translate(ctx context.Context, text string) (string, error) {
	tr.calls++
	return "EN " + text, nil
}

// seqRand replays a fixed sequence so selection outcomes are exact.
type seqRand struct {
	seq []int
	i   int
}

func (r *seqRand) Intn(n int) int {
	if len(r.seq) == 0 {
		return 0
	}
	v := r.seq[r.i%len(r.seq)] % n
	r.i++
	return v
}

func dayMenu(placeName string, date time.Time, dishes ...string) menu.Menu {
	m := menu.Menu{Place: placeName, Date: menu.Day(date)}
	for _, name := range dishes {
		m.Dishes = append(m.Dishes, menu.NewDish(name, menu.KindMain, ""))
	}
	return m
}

func newTestApp(t *testing.T, fetchers []place.Fetcher, tr menu.Translator, rnd Rand) (*App, *store.Store) {
	t.Helper()

	st, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	a, err := New(fetchers, st, tr, logger, Config{
		Rand: rnd,
		Now:  fixedNow,
	})
	if err != nil {
		t.Fatalf("failed to create app: %v", err)
	}
	return a, st
}

func threeFetchers() (*stubFetcher, *stubFetcher, *stubFetcher) {
	menza := &stubFetcher{name: "Menza Troja", tabID: "menza",
		menus: []menu.Menu{dayMenu("Menza Troja", testNow, "Svíčková", "Guláš")}}
	bufet := &stubFetcher{name: "Bufet Troja", tabID: "bufet",
		menus: []menu.Menu{dayMenu("Bufet Troja", testNow)}}
	castle := &stubFetcher{name: "Castle Restaurant", tabID: "castle",
		menus: []menu.Menu{dayMenu("Castle Restaurant", testNow, "Květák")}}
	return menza, bufet, castle
}

func TestOverviewForDay_ColdCacheListsEveryPlace(t *testing.T) {
	menza, bufet, castle := threeFetchers()
	a, _ := newTestApp(t, []place.Fetcher{menza, bufet, castle}, &countingTranslator{}, nil)

	overview := a.OverviewForDay(context.Background(), testNow)

	if len(overview) != 3 {
		t.Fatalf("expected an entry per configured place, got %d", len(overview))
	}
	for _, e := range overview {
		if e.Soups == nil || e.Dishes == nil {
			t.Errorf("expected empty lists, not nil: %+v", e)
		}
		if len(e.Soups) != 0 || len(e.Dishes) != 0 {
			t.Errorf("cold cache must yield empty menus: %+v", e)
		}
	}
}

func TestOverviewForDay_UnknownDateYieldsEmptyEntries(t *testing.T) {
	menza, bufet, castle := threeFetchers()
	a, _ := newTestApp(t, []place.Fetcher{menza, bufet, castle}, &countingTranslator{}, nil)

	if _, err := a.Refresh(context.Background(), true); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	overview := a.OverviewForDay(context.Background(), testNow.AddDate(0, 0, 14))

	if len(overview) != 3 {
		t.Fatalf("expected an entry per configured place, got %d", len(overview))
	}
	for _, e := range overview {
		if len(e.Soups) != 0 || len(e.Dishes) != 0 {
			t.Errorf("expected empty lists for a date nobody publishes: %+v", e)
		}
	}
}

func TestOverviewForDay_ConfigurationOrder(t *testing.T) {
	menza, bufet, castle := threeFetchers()
	a, _ := newTestApp(t, []place.Fetcher{menza, bufet, castle}, &countingTranslator{}, nil)

	if _, err := a.Refresh(context.Background(), true); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	overview := a.OverviewForDay(context.Background(), testNow)

	want := []string{"Menza Troja", "Bufet Troja", "Castle Restaurant"}
	for i, name := range want {
		if overview[i].Place != name {
			t.Errorf("position %d: expected %s, got %s", i, name, overview[i].Place)
		}
	}
}

func TestRefresh_StalenessGate(t *testing.T) {
	menza, bufet, castle := threeFetchers()
	a, _ := newTestApp(t, []place.Fetcher{menza, bufet, castle}, &countingTranslator{}, nil)

	ctx := context.Background()

	refreshed, err := a.Refresh(ctx, false)
	if err != nil {
		t.Fatalf("first Refresh failed: %v", err)
	}
	if !refreshed {
		t.Fatal("cold cache must refresh")
	}

	refreshed, err = a.Refresh(ctx, false)
	if err != nil {
		t.Fatalf("second Refresh failed: %v", err)
	}
	if refreshed {
		t.Error("refresh within the staleness window must be a no-op")
	}
	if menza.calls != 1 {
		t.Errorf("expected the fetch work done at most once, got %d calls", menza.calls)
	}

	refreshed, err = a.Refresh(ctx, true)
	if err != nil {
		t.Fatalf("forced Refresh failed: %v", err)
	}
	if !refreshed {
		t.Error("forced refresh must always run")
	}
	if menza.calls != 2 {
		t.Errorf("expected forced refresh to fetch again, got %d calls", menza.calls)
	}
}

func TestRefresh_SourceFailureDoesNotAbortSiblings(t *testing.T) {
	menza, bufet, castle := threeFetchers()
	bufet.err = errors.New("bulletin unreachable")

	a, _ := newTestApp(t, []place.Fetcher{menza, bufet, castle}, &countingTranslator{}, nil)

	if _, err := a.Refresh(context.Background(), true); err != nil {
		t.Fatalf("Refresh must contain source failures, got %v", err)
	}

	places := a.Places()
	if len(places) != 3 {
		t.Fatalf("failed place must stay in the result set, got %d places", len(places))
	}
	if len(places[1].Menus) != 0 {
		t.Errorf("failed place should have no menus, got %+v", places[1].Menus)
	}
	if len(places[0].Menus) != 1 || len(places[2].Menus) != 1 {
		t.Errorf("sibling places affected by the failure: %+v", places)
	}
}

func TestRefresh_EagerTranslationForTodayOnly(t *testing.T) {
	tomorrow := testNow.AddDate(0, 0, 1)
	menza := &stubFetcher{name: "Menza Troja", tabID: "menza", menus: []menu.Menu{
		dayMenu("Menza Troja", testNow, "Svíčková"),
		dayMenu("Menza Troja", tomorrow, "Guláš"),
	}}

	tr := &countingTranslator{}
	a, _ := newTestApp(t, []place.Fetcher{menza}, tr, nil)

	if _, err := a.Refresh(context.Background(), true); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	menus := a.Places()[0].Menus
	if !menus[0].IsTranslated {
		t.Error("today's menu must be translated eagerly")
	}
	if menus[0].Dishes[0].NameEn != "EN Svíčková" {
		t.Errorf("unexpected eager translation: %q", menus[0].Dishes[0].NameEn)
	}
	if menus[1].IsTranslated {
		t.Error("other days must wait for first read")
	}
	if tr.calls != 1 {
		t.Errorf("expected exactly today's dish translated, got %d calls", tr.calls)
	}
}

func TestOverviewForDay_LazyTranslationOnFirstRead(t *testing.T) {
	tomorrow := testNow.AddDate(0, 0, 1)
	menza := &stubFetcher{name: "Menza Troja", tabID: "menza", menus: []menu.Menu{
		dayMenu("Menza Troja", tomorrow, "Guláš"),
	}}

	tr := &countingTranslator{}
	a, _ := newTestApp(t, []place.Fetcher{menza}, tr, nil)

	ctx := context.Background()
	if _, err := a.Refresh(ctx, true); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if tr.calls != 0 {
		t.Fatalf("nothing published for today, expected no eager translation, got %d", tr.calls)
	}

	overview := a.OverviewForDay(ctx, tomorrow)
	if overview[0].Dishes[0].NameEn != "EN Guláš" {
		t.Errorf("expected lazy translation at read time, got %q", overview[0].Dishes[0].NameEn)
	}
	if tr.calls != 1 {
		t.Errorf("expected 1 translation call, got %d", tr.calls)
	}

	// Second read must reuse the already-translated menu.
	a.OverviewForDay(ctx, tomorrow)
	if tr.calls != 1 {
		t.Errorf("second read must not translate again, got %d calls", tr.calls)
	}
}

func TestGenerateDishOfTheDay_ExactSelection(t *testing.T) {
	menza, bufet, castle := threeFetchers()
	rnd := &seqRand{seq: []int{1, 0}}

	a, _ := newTestApp(t, []place.Fetcher{menza, bufet, castle}, &countingTranslator{}, rnd)

	ctx := context.Background()
	if _, err := a.Refresh(ctx, true); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	dotd, err := a.GenerateDishOfTheDay(ctx)
	if err != nil {
		t.Fatalf("GenerateDishOfTheDay failed: %v", err)
	}

	// Candidates with dishes are [Menza Troja, Castle Restaurant]; the
	// sequence picks index 1 then dish 0.
	if dotd.Place != "Castle Restaurant" {
		t.Errorf("expected Castle Restaurant, got %s", dotd.Place)
	}
	if dotd.Dish != "EN Květák" {
		t.Errorf("expected the translated name preferred, got %q", dotd.Dish)
	}
}

func TestDishOfTheDay_CachedUntilRegenerated(t *testing.T) {
	menza, bufet, castle := threeFetchers()
	rnd := &seqRand{seq: []int{0, 0, 1, 0}}

	a, _ := newTestApp(t, []place.Fetcher{menza, bufet, castle}, &countingTranslator{}, rnd)

	ctx := context.Background()
	if _, err := a.Refresh(ctx, true); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	first, err := a.DishOfTheDay(ctx)
	if err != nil {
		t.Fatalf("DishOfTheDay failed: %v", err)
	}

	second, err := a.DishOfTheDay(ctx)
	if err != nil {
		t.Fatalf("DishOfTheDay failed: %v", err)
	}

	if first.Place != second.Place || first.Dish != second.Dish {
		t.Errorf("selection must be cached between calls: %+v vs %+v", first, second)
	}

	regenerated, err := a.GenerateDishOfTheDay(ctx)
	if err != nil {
		t.Fatalf("GenerateDishOfTheDay failed: %v", err)
	}
	if regenerated.Place == first.Place && regenerated.Dish == first.Dish {
		t.Log("regeneration may repeat the same dish; asserting persistence only")
	}

	after, err := a.DishOfTheDay(ctx)
	if err != nil {
		t.Fatalf("DishOfTheDay failed: %v", err)
	}
	if after.Place != regenerated.Place || after.Dish != regenerated.Dish {
		t.Errorf("cached value must follow regeneration: %+v vs %+v", after, regenerated)
	}
}

func TestGenerateDishOfTheDay_FallbackWhenNothingOnOffer(t *testing.T) {
	menza := &stubFetcher{name: "Menza Troja", tabID: "menza",
		menus: []menu.Menu{dayMenu("Menza Troja", testNow)}}
	bufet := &stubFetcher{name: "Bufet Troja", tabID: "bufet"}

	a, _ := newTestApp(t, []place.Fetcher{menza, bufet}, &countingTranslator{}, &seqRand{})

	ctx := context.Background()
	if _, err := a.Refresh(ctx, true); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	dotd, err := a.GenerateDishOfTheDay(ctx)
	if err != nil {
		t.Fatalf("GenerateDishOfTheDay failed: %v", err)
	}

	if dotd.Place != FallbackPlace || dotd.Dish != FallbackDish {
		t.Errorf("expected the fixed fallback pair, got %+v", dotd)
	}
}

func TestApp_WarmStartFromPersistedSnapshot(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	st, err := store.New(dbPath)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	menza, bufet, castle := threeFetchers()
	fetchers := []place.Fetcher{menza, bufet, castle}

	a, err := New(fetchers, st, &countingTranslator{}, logger, Config{Now: fixedNow})
	if err != nil {
		t.Fatalf("failed to create app: %v", err)
	}
	if _, err := a.Refresh(context.Background(), true); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	st.Close()

	st2, err := store.New(dbPath)
	if err != nil {
		t.Fatalf("failed to reopen store: %v", err)
	}
	defer st2.Close()

	warm, err := New(fetchers, st2, &countingTranslator{}, logger, Config{Now: fixedNow})
	if err != nil {
		t.Fatalf("failed to create warm app: %v", err)
	}

	if len(warm.Places()) != 3 {
		t.Errorf("expected snapshot restored across restart, got %+v", warm.Places())
	}
	if _, ok := warm.LastUpdate(); !ok {
		t.Error("expected last update restored across restart")
	}

	// The restored snapshot is fresh, so the gate holds.
	refreshed, err := warm.Refresh(context.Background(), false)
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if refreshed {
		t.Error("warm start within the staleness window must not refetch")
	}
}

func TestReset_DropsInMemoryState(t *testing.T) {
	menza, bufet, castle := threeFetchers()
	a, _ := newTestApp(t, []place.Fetcher{menza, bufet, castle}, &countingTranslator{}, nil)

	if _, err := a.Refresh(context.Background(), true); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if a.Places() == nil {
		t.Fatal("expected snapshot after refresh")
	}

	a.Reset()

	if a.Places() != nil {
		t.Error("Reset must drop the in-memory snapshot")
	}
}
