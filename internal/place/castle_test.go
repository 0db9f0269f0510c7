package place

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"
)

func castleSection(header string, rows ...string) string {
	var b strings.Builder
	b.WriteString(`<div class="food-sub-section"><h3>` + header + `</h3>`)
	for _, row := range rows {
		b.WriteString(`<div class="row"><div class="col align-self-center flex-grow-1 order-2 order-xs-4">` + row + `</div></div>`)
	}
	b.WriteString(`</div>`)
	return b.String()
}

func castlePage(sections ...string) string {
	return `<html><body><div class="food-section">` + strings.Join(sections, "") + `</div></body></html>`
}

func TestCastleRestaurant_FetchMenus(t *testing.T) {
	page := castlePage(
		castleSection("Pondělí 11.3.2024",
			"Dršťková polévka - 1,7 135 Kč",
			"Kuřecí steak s rýží - 1, 3, 7 189 Kč",
			"Smažený květák 165 Kč",
		),
	)

	server := serveBody(t, "text/html", page)
	defer server.Close()

	p := NewCastleRestaurant(server.URL, testLogger())

	result, err := p.FetchMenus(context.Background())
	if err != nil {
		t.Fatalf("FetchMenus failed: %v", err)
	}

	if len(result.Menus) != 1 {
		t.Fatalf("expected 1 menu, got %d", len(result.Menus))
	}

	m := result.Menus[0]
	if want := time.Date(2024, time.March, 11, 0, 0, 0, 0, time.UTC); !m.Date.Equal(want) {
		t.Errorf("expected date %v, got %v", want, m.Date)
	}
	if len(m.Soups) != 1 {
		t.Fatalf("expected first row as soup, got %+v", m.Soups)
	}
	if m.Soups[0].Name != "Dršťková polévka" || m.Soups[0].Price != "135" {
		t.Errorf("allergen suffix or price not handled: %+v", m.Soups[0])
	}
	if len(m.Dishes) != 2 {
		t.Fatalf("expected 2 mains, got %+v", m.Dishes)
	}
	if m.Dishes[0].Name != "Kuřecí steak s rýží" || m.Dishes[0].Price != "189" {
		t.Errorf("unexpected dish: %+v", m.Dishes[0])
	}
	if m.Dishes[1].Name != "Smažený květák" || m.Dishes[1].Price != "165" {
		t.Errorf("unexpected dish: %+v", m.Dishes[1])
	}
}

// A section whose header fails strict date parsing is dropped without
// touching its neighbours.
func TestCastleRestaurant_BadHeaderSkipsOnlyThatSection(t *testing.T) {
	page := castlePage(
		castleSection("Pondělí 11.3.2024", "Polévka 30 Kč", "Jídlo jedna 150 Kč"),
		castleSection("Svátek", "Polévka 30 Kč"),
		castleSection("Středa 13.3.2024", "Polévka 30 Kč", "Jídlo dvě 160 Kč"),
	)

	server := serveBody(t, "text/html", page)
	defer server.Close()

	p := NewCastleRestaurant(server.URL, testLogger())

	result, err := p.FetchMenus(context.Background())
	if err != nil {
		t.Fatalf("FetchMenus failed: %v", err)
	}

	if len(result.Menus) != 2 {
		t.Fatalf("expected 2 menus around the bad section, got %d", len(result.Menus))
	}
	if !result.Menus[0].Date.Equal(time.Date(2024, time.March, 11, 0, 0, 0, 0, time.UTC)) ||
		!result.Menus[1].Date.Equal(time.Date(2024, time.March, 13, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("adjacent sections affected: %+v", result.Menus)
	}

	found := false
	for _, skip := range result.Skipped {
		if skip.Reason == "unparsable header date" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected the bad header recorded as a skip, got %+v", result.Skipped)
	}
}

func TestCastleRestaurant_RowWithoutPriceIsSkipped(t *testing.T) {
	page := castlePage(
		castleSection("Pondělí 11.3.2024",
			"Polévka 30 Kč",
			"Denní nabídka dle tabule",
			"Jídlo dne 150 Kč",
		),
	)

	server := serveBody(t, "text/html", page)
	defer server.Close()

	p := NewCastleRestaurant(server.URL, testLogger())

	result, err := p.FetchMenus(context.Background())
	if err != nil {
		t.Fatalf("FetchMenus failed: %v", err)
	}

	m := result.Menus[0]
	if len(m.Dishes) != 1 || m.Dishes[0].Name != "Jídlo dne" {
		t.Errorf("expected priceless row skipped, got %+v", m.Dishes)
	}
	if len(result.Skipped) != 1 {
		t.Errorf("expected 1 skip record, got %+v", result.Skipped)
	}
}

func TestCastleRestaurant_AtMostFiveSections(t *testing.T) {
	var sections []string
	for i := 1; i <= 7; i++ {
		sections = append(sections,
			castleSection(fmt.Sprintf("%d.3.2024", 10+i), "Polévka 30 Kč", "Jídlo 150 Kč"))
	}

	server := serveBody(t, "text/html", castlePage(sections...))
	defer server.Close()

	p := NewCastleRestaurant(server.URL, testLogger())

	result, err := p.FetchMenus(context.Background())
	if err != nil {
		t.Fatalf("FetchMenus failed: %v", err)
	}

	if len(result.Menus) != 5 {
		t.Errorf("expected the day window bounded at 5, got %d", len(result.Menus))
	}
}
