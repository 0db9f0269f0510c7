package place

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"

	"github.com/valpere/trojalunch/internal/dates"
	"github.com/valpere/trojalunch/internal/menu"
)

var (
	bufetDateRe  = regexp.MustCompile(`\d{1,2}\.\s*\d{1,2}\.\s*\d{4}`)
	bufetFoodRe  = regexp.MustCompile(`^\s*\d{2,4}\s*g\s+(.+)$`)
	bufetPriceRe = regexp.MustCompile(`\s*(\d+(?:[.,]\d+)?)\s*(?:Kč|,-)\s*$`)
)

const (
	soupMarker      = "polévka"
	bufetTerminator = "dále nabízíme"
)

// BufetTroja reads the buffet's PDF bulletin. The extraction is a state
// machine over layout-preserved text lines: a date line opens a new day,
// soup and gram-quantity lines fill it, and the "also available" footer
// ends the scan.
type BufetTroja struct {
	name   string
	tabID  string
	url    string
	client *http.Client
	logger *slog.Logger
}

func NewBufetTroja(url string, logger *slog.Logger) *BufetTroja {
	return &BufetTroja{
		name:   "Bufet Troja",
		tabID:  "bufet",
		url:    url,
		client: defaultClient(),
		logger: logger,
	}
}

func (p *BufetTroja) Name() string  { return p.name }
func (p *BufetTroja) TabID() string { return p.tabID }
func (p *BufetTroja) URL() string   { return p.url }

func (p *BufetTroja) FetchMenus(ctx context.Context) (*menu.FetchResult, error) {
	body, err := fetchBody(ctx, p.client, p.url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch bulletin: %w", err)
	}

	lines, err := extractLines(body)
	if err != nil {
		return nil, fmt.Errorf("failed to extract bulletin text: %w", err)
	}

	return p.parseLines(lines), nil
}

// extractLines writes the PDF to a scratch file, extracts its text rows in
// layout order and removes the file whatever happens.
func extractLines(body []byte) ([]string, error) {
	tmp, err := os.CreateTemp("", "bufet-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(body); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("failed to close temp file: %w", err)
	}

	f, reader, err := pdf.Open(tmp.Name())
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}
	defer f.Close()

	var lines []string
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		rows, err := page.GetTextByRow()
		if err != nil {
			return nil, fmt.Errorf("failed to read page %d: %w", i, err)
		}

		for _, row := range rows {
			var parts []string
			for _, text := range row.Content {
				parts = append(parts, text.S)
			}
			line := strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
			if line != "" {
				lines = append(lines, line)
			}
		}
	}

	return lines, nil
}

// parseLines runs the line state machine. The menu being accumulated is
// flushed when the next date line starts, and once more after the last line,
// so a bulletin without a trailing footer still yields its final day.
func (p *BufetTroja) parseLines(lines []string) *menu.FetchResult {
	result := &menu.FetchResult{}
	seen := map[time.Time]bool{}

	var current *menu.Menu
	flush := func() {
		if current != nil {
			result.Menus = append(result.Menus, *current)
			current = nil
		}
	}

	for _, line := range lines {
		lower := strings.ToLower(line)

		if strings.Contains(lower, bufetTerminator) {
			break
		}

		switch {
		case bufetDateRe.MatchString(line):
			flush()

			date, err := dates.ParseNumeric(line)
			if err != nil {
				p.logger.Warn("skipping bulletin day with bad date line", "line", line, "error", err)
				result.AddSkip(p.name, line, "unparsable date line")
				continue
			}
			if seen[date] {
				result.AddSkip(p.name, line, "duplicate date")
				continue
			}

			seen[date] = true
			current = &menu.Menu{Place: p.name, Date: date}

		case current != nil && strings.Contains(lower, soupMarker):
			name, price := splitPrice(line)
			if name != "" {
				current.Soups = append(current.Soups, menu.NewDish(name, menu.KindSoup, price))
			}

		case current != nil && bufetFoodRe.MatchString(line):
			name, price := splitPrice(bufetFoodRe.FindStringSubmatch(line)[1])
			if name != "" {
				current.Dishes = append(current.Dishes, menu.NewDish(name, menu.KindMain, price))
			}
		}
	}

	flush()
	return result
}

// splitPrice strips an optional trailing price ("135 Kč", "42,-") off a
// dish line and returns both halves.
func splitPrice(line string) (name, price string) {
	line = strings.TrimSpace(line)
	if m := bufetPriceRe.FindStringSubmatch(line); m != nil {
		return strings.TrimSpace(strings.TrimSuffix(line, m[0])), m[1]
	}
	return line, ""
}
