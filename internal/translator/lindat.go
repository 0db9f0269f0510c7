package translator

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultLindatURL is the public CUBBITT endpoint.
const DefaultLindatURL = "https://lindat.mff.cuni.cz/services/translation/api/v2/languages/"

// LindatService translates through the LINDAT/CUBBITT machine-translation
// service. The API takes a form-encoded language pair and input text and
// answers with the bare translated text as the response body.
type LindatService struct {
	baseURL string
	client  *http.Client
}

func NewLindatService(baseURL string) *LindatService {
	if baseURL == "" {
		baseURL = DefaultLindatURL
	}
	return &LindatService{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *LindatService) Name() string {
	return "lindat"
}

func (s *LindatService) Translate(ctx context.Context, req Request) (*Result, error) {
	result := &Result{ServiceName: s.Name()}
	start := time.Now()
	defer func() { result.Latency = time.Since(start) }()

	form := url.Values{
		"src":        {req.SourceLang},
		"tgt":        {req.TargetLang},
		"input_text": {req.Text},
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		result.Error = fmt.Sprintf("failed to create request: %v", err)
		return result, err
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		result.Error = fmt.Sprintf("request failed: %v", err)
		return result, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		result.Error = fmt.Sprintf("failed to read response: %v", err)
		return result, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		result.Error = fmt.Sprintf("API error: status %d", resp.StatusCode)
		return result, fmt.Errorf("API error: status %d", resp.StatusCode)
	}

	result.TranslatedText = strings.TrimSpace(string(body))
	return result, nil
}
