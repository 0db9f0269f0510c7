package translator

import (
	"context"
	"time"
)

type Request struct {
	Text       string `json:"text"`
	SourceLang string `json:"source_lang"`
	TargetLang string `json:"target_lang"`
}

type Result struct {
	ServiceName    string        `json:"service_name"`
	TranslatedText string        `json:"translated_text"`
	Latency        time.Duration `json:"latency"`
	Error          string        `json:"error,omitempty"`
}

type Service interface {
	Name() string
	Translate(ctx context.Context, req Request) (*Result, error)
}

// Dishes binds a Service and a fixed language pair into the one-string
// contract the menu layer uses (menu.Translator).
type Dishes struct {
	svc        Service
	sourceLang string
	targetLang string
}

func ForDishes(svc Service, sourceLang, targetLang string) *Dishes {
	return &Dishes{svc: svc, sourceLang: sourceLang, targetLang: targetLang}
}

func (d *Dishes) Translate(ctx context.Context, text string) (string, error) {
	res, err := d.svc.Translate(ctx, Request{
		Text:       text,
		SourceLang: d.sourceLang,
		TargetLang: d.targetLang,
	})
	if err != nil {
		return "", err
	}
	return res.TranslatedText, nil
}
