package place

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/valpere/trojalunch/internal/dates"
	"github.com/valpere/trojalunch/internal/menu"
)

const (
	castleSectionSel = "div.food-sub-section"
	castleRowSel     = "div.col.align-self-center.flex-grow-1.order-2.order-xs-4"
	castleMaxDays    = 5
)

var (
	castleAllergenRe = regexp.MustCompile(`\s*[-–—]{0,1}\s*(\d\w{0,1},{0,1}\s*){1,9}\s*$`)
	castleRowRe      = regexp.MustCompile(`^(.*\S)\s+(\d+)\s*Kč$`)
)

// CastleRestaurant scrapes the restaurant's weekly lunch page. Day sections
// are keyed by CSS class; within a section the first row is the soup and the
// remaining rows are mains, each ending in "<price> Kč" after the allergen
// suffix is removed.
type CastleRestaurant struct {
	name   string
	tabID  string
	url    string
	client *http.Client
	logger *slog.Logger
}

func NewCastleRestaurant(url string, logger *slog.Logger) *CastleRestaurant {
	return &CastleRestaurant{
		name:   "Castle Restaurant",
		tabID:  "castle",
		url:    url,
		client: defaultClient(),
		logger: logger,
	}
}

func (p *CastleRestaurant) Name() string  { return p.name }
func (p *CastleRestaurant) TabID() string { return p.tabID }
func (p *CastleRestaurant) URL() string   { return p.url }

func (p *CastleRestaurant) FetchMenus(ctx context.Context) (*menu.FetchResult, error) {
	body, err := fetchBody(ctx, p.client, p.url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch page: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}

	return p.parseDocument(doc), nil
}

func (p *CastleRestaurant) parseDocument(doc *goquery.Document) *menu.FetchResult {
	result := &menu.FetchResult{}
	seen := map[time.Time]bool{}

	sections := doc.Find(castleSectionSel)
	if n := sections.Length(); n > castleMaxDays {
		sections = sections.Slice(0, castleMaxDays)
	}

	sections.Each(func(_ int, section *goquery.Selection) {
		header := strings.TrimSpace(section.Find("h3").First().Text())

		date, err := dates.ParseStrict(header)
		if err != nil {
			p.logger.Warn("skipping day section with bad header", "header", header, "error", err)
			result.AddSkip(p.name, header, "unparsable header date")
			return
		}
		if seen[date] {
			result.AddSkip(p.name, header, "duplicate date")
			return
		}
		seen[date] = true

		m := menu.Menu{Place: p.name, Date: date}

		section.Find(castleRowSel).Each(func(i int, row *goquery.Selection) {
			text := strings.TrimSpace(row.Text())

			match := castleRowRe.FindStringSubmatch(text)
			if match == nil {
				p.logger.Warn("skipping row without price", "row", text, "date", header)
				result.AddSkip(p.name, text, "row does not match name-price pattern")
				return
			}

			// Allergen numbers sit between the name and the price.
			name := strings.TrimSpace(castleAllergenRe.ReplaceAllString(match[1], ""))
			price := match[2]
			if i == 0 {
				m.Soups = append(m.Soups, menu.NewDish(name, menu.KindSoup, price))
				return
			}
			m.Dishes = append(m.Dishes, menu.NewDish(name, menu.KindMain, price))
		})

		result.Menus = append(result.Menus, m)
	})

	return result
}
