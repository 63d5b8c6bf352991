package translate

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

// SegmentTranslator translates one subtitle segment at a time and never fails:
// provider errors and empty replies degrade to an empty string so that the
// subtitle block is still written.
type SegmentTranslator struct {
	Provider Translator
	Logger   *zap.Logger
}

func NewSegmentTranslator(provider Translator, logger *zap.Logger) *SegmentTranslator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SegmentTranslator{Provider: provider, Logger: logger}
}

func (s *SegmentTranslator) Translate(ctx context.Context, text, target string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}

	logger := s.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	translated, err := s.Provider.Translate(ctx, text, target)
	if err != nil {
		logger.Warn("translation failed",
			zap.String("provider", s.Provider.Name()),
			zap.String("target", target),
			zap.String("text", text),
			zap.Error(err),
		)
		return ""
	}
	if strings.TrimSpace(translated) == "" {
		logger.Warn("translation returned no text",
			zap.String("provider", s.Provider.Name()),
			zap.String("target", target),
			zap.String("text", text),
		)
		return ""
	}

	return translated
}
