package menu

import (
	"context"
	"log/slog"
	"time"
)

// DishKind distinguishes soups from main dishes.
type DishKind string

const (
	KindSoup DishKind = "soup"
	KindMain DishKind = "main"
)

type Dish struct {
	Name   string   `json:"name"`
	NameEn string   `json:"name_en"`
	Kind   DishKind `json:"kind"`
	Price  string   `json:"price,omitempty"`
}

// NewDish returns a dish whose translated name defaults to the original
// name until a translation pass replaces it.
func NewDish(name string, kind DishKind, price string) Dish {
	return Dish{
		Name:   name,
		NameEn: name,
		Kind:   kind,
		Price:  price,
	}
}

// Menu is one place's listing for one calendar date.
type Menu struct {
	Place        string    `json:"place"`
	Date         time.Time `json:"date"`
	Soups        []Dish    `json:"soups"`
	Dishes       []Dish    `json:"dishes"`
	IsTranslated bool      `json:"is_translated"`
}

// SkippedItem records a single item or section that failed to parse and was
// dropped without aborting the rest of the extraction.
type SkippedItem struct {
	Source string `json:"source"`
	Item   string `json:"item"`
	Reason string `json:"reason"`
}

// FetchResult is the outcome of one source fetch: the menus that parsed plus
// a record of everything that was skipped, so callers and tests can observe
// partial failures directly.
type FetchResult struct {
	Menus   []Menu        `json:"menus"`
	Skipped []SkippedItem `json:"skipped,omitempty"`
}

func (r *FetchResult) AddSkip(source, item, reason string) {
	r.Skipped = append(r.Skipped, SkippedItem{Source: source, Item: item, Reason: reason})
}

// Translator is the one-string translation contract the menu layer depends on.
type Translator interface {
	Translate(ctx context.Context, text string) (string, error)
}

// Translate attempts to translate every soup and dish name independently.
// Individual failures are logged and leave the original name in place;
// IsTranslated is set once the pass completes regardless of how many
// names actually translated.
func (m *Menu) Translate(ctx context.Context, tr Translator, logger *slog.Logger) {
	logger.Info("translating menu", "place", m.Place, "date", m.Date.Format("2006-01-02"))

	for i := range m.Soups {
		translateDish(ctx, tr, &m.Soups[i], logger)
	}
	for i := range m.Dishes {
		translateDish(ctx, tr, &m.Dishes[i], logger)
	}

	m.IsTranslated = true
}

func translateDish(ctx context.Context, tr Translator, d *Dish, logger *slog.Logger) {
	translated, err := tr.Translate(ctx, d.Name)
	if err != nil {
		logger.Error("cannot translate dish", "name", d.Name, "error", err)
		return
	}
	if translated != "" {
		d.NameEn = translated
	}
}

// Day truncates a timestamp to its calendar date in UTC so menu dates
// compare with ==.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
