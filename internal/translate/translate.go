// Package translate turns subtitle text into a target language through one
// of several hosted providers.
package translate

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/fmueller/vidsub/internal/config"
	"github.com/fmueller/vidsub/internal/language"
)

// Translator is a single translation backend.
type Translator interface {
	Name() string
	Translate(ctx context.Context, text, target string) (string, error)
}

// New builds the provider named in cfg. apiKey is ignored by providers that
// do not need one.
func New(cfg config.TranslationConfig, apiKey string, httpClient *http.Client) (Translator, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", config.ProviderGoogle:
		return NewGoogle(cfg.BaseURL, httpClient), nil
	case config.ProviderOpenAI:
		return NewOpenAI(cfg, apiKey)
	case config.ProviderAnthropic:
		return NewAnthropic(cfg, apiKey)
	default:
		return nil, fmt.Errorf("unsupported translation provider %q", cfg.Provider)
	}
}

func systemPrompt(target string) string {
	name := target
	if sel, err := language.Resolve(target); err == nil && sel.Translates() {
		name = sel.DisplayName
	}
	return fmt.Sprintf(
		"You translate video subtitles. Translate the user's text into %s (%s). "+
			"Reply with the translation only, without quotes, notes or explanations. "+
			"Keep line breaks as they are.",
		name, target,
	)
}
