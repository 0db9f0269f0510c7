package translator

import (
	"context"
	"time"
)

// Memory is the translation-memory slice of the store.
type Memory interface {
	GetCachedTranslation(ctx context.Context, text, sourceLang, targetLang string) (string, bool, error)
	SaveTranslation(ctx context.Context, text, sourceLang, targetLang, translated, service string) error
}

// CachedService consults the translation memory before calling the wrapped
// service and records successful translations into it. Memory errors are
// ignored so a broken cache never blocks a translation.
type CachedService struct {
	svc    Service
	memory Memory
}

func NewCachedService(svc Service, memory Memory) *CachedService {
	return &CachedService{svc: svc, memory: memory}
}

func (s *CachedService) Name() string {
	return s.svc.Name()
}

func (s *CachedService) Translate(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()

	if cached, found, err := s.memory.GetCachedTranslation(ctx, req.Text, req.SourceLang, req.TargetLang); err == nil && found {
		return &Result{
			ServiceName:    s.svc.Name(),
			TranslatedText: cached,
			Latency:        time.Since(start),
		}, nil
	}

	result, err := s.svc.Translate(ctx, req)
	if err != nil {
		return result, err
	}

	if result.TranslatedText != "" {
		_ = s.memory.SaveTranslation(ctx, req.Text, req.SourceLang, req.TargetLang,
			result.TranslatedText, s.svc.Name())
	}

	return result, nil
}
