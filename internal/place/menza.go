package place

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/valpere/trojalunch/internal/dates"
	"github.com/valpere/trojalunch/internal/menu"
)

// holidayMarker flags feed entries that stand in for a closed day
// ("Státní svátek" and similar); they are not dishes.
const holidayMarker = "svátek"

// MenzaTroja reads the canteen's RSS feed. Each item is one day; the item
// body carries one or two nested <ul> lists with the soup and the dishes.
type MenzaTroja struct {
	name   string
	tabID  string
	url    string
	client *http.Client
	logger *slog.Logger
}

func NewMenzaTroja(url string, logger *slog.Logger) *MenzaTroja {
	return &MenzaTroja{
		name:   "Menza Troja",
		tabID:  "menza",
		url:    url,
		client: defaultClient(),
		logger: logger,
	}
}

func (p *MenzaTroja) Name() string  { return p.name }
func (p *MenzaTroja) TabID() string { return p.tabID }
func (p *MenzaTroja) URL() string   { return p.url }

func (p *MenzaTroja) FetchMenus(ctx context.Context) (*menu.FetchResult, error) {
	body, err := fetchBody(ctx, p.client, p.url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}

	feed, err := gofeed.NewParser().ParseString(string(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	result := &menu.FetchResult{}
	seen := map[time.Time]bool{}

	for _, item := range feed.Items {
		date, err := dates.ParseCzech(item.Title)
		if err != nil {
			p.logger.Warn("skipping feed item with unparsable title", "title", item.Title, "error", err)
			result.AddSkip(p.name, item.Title, "unparsable date in title")
			continue
		}

		if seen[date] {
			result.AddSkip(p.name, item.Title, "duplicate date")
			continue
		}

		m, err := p.parseItem(item, date)
		if err != nil {
			p.logger.Warn("skipping feed item", "title", item.Title, "error", err)
			result.AddSkip(p.name, item.Title, err.Error())
			continue
		}

		seen[date] = true
		result.Menus = append(result.Menus, *m)
	}

	return result, nil
}

func (p *MenzaTroja) parseItem(item *gofeed.Item, date time.Time) (*menu.Menu, error) {
	// The feed escapes the item markup a second time.
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html.UnescapeString(item.Description)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse item body: %w", err)
	}

	lists := doc.Find("ul")

	var soups []menu.Dish
	var dishList *goquery.Selection

	switch lists.Length() {
	case 0:
		return nil, fmt.Errorf("no dish lists in item body")
	case 1:
		p.logger.Warn("no soup found or something is broken", "title", item.Title)
		dishList = lists.Eq(0)
	default:
		soupName := strings.TrimSpace(lists.Eq(0).Find("li").First().Text())
		if soupName != "" {
			soups = append(soups, menu.NewDish(soupName, menu.KindSoup, ""))
		}
		dishList = lists.Eq(1)
	}

	var dishes []menu.Dish
	dishList.Find("li").Each(func(_ int, li *goquery.Selection) {
		name := strings.TrimSpace(li.Text())
		if name == "" {
			return
		}
		if strings.Contains(strings.ToLower(name), holidayMarker) {
			return
		}
		dishes = append(dishes, menu.NewDish(name, menu.KindMain, ""))
	})

	return &menu.Menu{
		Place:  p.name,
		Date:   date,
		Soups:  soups,
		Dishes: dishes,
	}, nil
}
