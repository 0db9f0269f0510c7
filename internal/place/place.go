// Package place implements the upstream menu sources. Each source publishes
// a short rolling window of daily menus in its own transport and format; the
// extractors normalize all of them into menu.FetchResult.
package place

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/valpere/trojalunch/internal/menu"
)

// Fetcher is the single capability every source provides.
type Fetcher interface {
	Name() string
	TabID() string
	URL() string
	FetchMenus(ctx context.Context) (*menu.FetchResult, error)
}

func defaultClient() *http.Client {
	return &http.Client{Timeout: 30 * time.Second}
}

// fetchBody reads an upstream document wholesale into memory. The sources
// are small (a feed, a one-page PDF, a menu page), so no streaming.
func fetchBody(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}
	return body, nil
}
