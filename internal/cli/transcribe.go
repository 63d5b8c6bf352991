package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fmueller/vidsub/internal/config"
	"github.com/fmueller/vidsub/internal/download"
	"github.com/fmueller/vidsub/internal/language"
	"github.com/fmueller/vidsub/internal/pipeline"
	"github.com/fmueller/vidsub/internal/translate"
	"github.com/fmueller/vidsub/internal/whisper"
	"go.uber.org/zap"
)

func (a *appState) runFolder(ctx context.Context, folder string) error {
	reporter := pipeline.NewConsoleReporter(a.outWriter(), a.colorEnabled())
	if strings.TrimSpace(folder) == "" {
		reporter.NoFolder()
		return pipeline.ErrNoFolder
	}
	if err := ensureFolder(folder); err != nil {
		return err
	}

	target, err := a.resolveTarget()
	if err != nil {
		return err
	}

	p, err := a.newPipeline(ctx, target, reporter)
	if err != nil {
		return err
	}

	started := time.Now()
	summary, err := p.Run(ctx, folder, target.Code)
	a.log().Info("run finished",
		zap.Int("files", summary.Files),
		zap.Int("segments", summary.Segments),
		zap.Int("failed", len(summary.Failed)),
		zap.Duration("elapsed", time.Since(started)),
	)
	return err
}

func ensureFolder(folder string) error {
	info, err := os.Stat(folder)
	if err != nil {
		return fmt.Errorf("folder not found: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a folder", folder)
	}
	return nil
}

// resolveTarget turns --to or --pick into a selection. It runs before any
// engine work so that a typo fails fast.
func (a *appState) resolveTarget() (language.Selection, error) {
	if a.pick {
		pickFn := a.pickFn
		if pickFn == nil {
			return language.Selection{}, errors.New("language picker unavailable")
		}
		options := append([]language.Selection{language.None}, language.Catalog()...)
		return pickFn(options, language.Default())
	}
	return language.Resolve(a.target)
}

func (a *appState) newPipeline(ctx context.Context, target language.Selection, reporter pipeline.Reporter) (*pipeline.Pipeline, error) {
	engine, err := a.sharedEngine(ctx)
	if err != nil {
		return nil, err
	}

	opts := pipeline.Options{
		Engine:         &spinnerEngine{inner: engine, enabled: a.progressEnabled(), logger: a.log()},
		Reporter:       reporter,
		Logger:         a.log(),
		ModelPath:      a.modelPath,
		SourceLanguage: a.language,
		KeepGoing:      a.keepGoing,
	}

	if target.Translates() {
		translatorFn := a.translatorFn
		if translatorFn == nil {
			translatorFn = a.buildTranslator
		}
		provider, err := translatorFn()
		if err != nil {
			return nil, err
		}
		a.log().Info("translating subtitles", zap.String("target", target.Code), zap.String("provider", provider.Name()))
		opts.Translator = translate.NewSegmentTranslator(provider, a.log())
	}

	return pipeline.New(opts)
}

// sharedEngine builds the engine on first use and reuses it for every file.
func (a *appState) sharedEngine(ctx context.Context) (whisper.Engine, error) {
	if a.engine != nil {
		return a.engine, nil
	}

	engineFn := a.engineFn
	if engineFn == nil {
		engineFn = a.buildEngine
	}
	engine, modelPath, err := engineFn(ctx)
	if err != nil {
		return nil, err
	}

	a.engine = engine
	a.modelPath = modelPath
	return engine, nil
}

func (a *appState) buildEngine(ctx context.Context) (whisper.Engine, string, error) {
	switch a.engineName {
	case config.EngineOpenAI:
		keyEnv := a.cfg.Transcription.APIKeyEnv
		engine, err := whisper.NewAPIEngine(whisper.APIConfig{
			APIKey:  a.env(keyEnv),
			BaseURL: a.cfg.Transcription.BaseURL,
			Model:   a.cfg.Transcription.Model,
		}, a.log())
		if err != nil {
			return nil, "", fmt.Errorf("%w (set %s)", err, keyEnv)
		}
		return engine, "", nil

	case config.EngineBundled, "":
		engine, err := whisper.NewBundledEngine(a.log(), whisper.SilenceGate{
			Enabled:       a.silenceGate,
			ThresholdDBFS: a.silenceDBFS,
		})
		if err != nil {
			return nil, "", err
		}
		model, err := a.ensureModelAvailable(ctx)
		if err != nil {
			return nil, "", err
		}
		return engine, model.Path, nil

	default:
		return nil, "", fmt.Errorf("unsupported engine %q; use bundled or openai", a.engineName)
	}
}

func (a *appState) buildTranslator() (translate.Translator, error) {
	cfg := config.TranslationConfig{
		Provider:  a.translator,
		Model:     a.translatorModel,
		BaseURL:   a.cfg.Translation.BaseURL,
		APIKeyEnv: a.cfg.Translation.APIKeyEnv,
	}
	if !strings.EqualFold(cfg.Provider, a.cfg.Translation.Provider) {
		cfg.BaseURL = ""
		cfg.APIKeyEnv = config.DefaultAPIKeyEnv(strings.ToLower(cfg.Provider))
	}

	provider, err := translate.New(cfg, a.env(cfg.APIKeyEnv), nil)
	if err != nil {
		if cfg.APIKeyEnv != "" {
			return nil, fmt.Errorf("%w (set %s)", err, cfg.APIKeyEnv)
		}
		return nil, err
	}
	return provider, nil
}

func (a *appState) ensureModelAvailable(ctx context.Context) (whisper.ResolvedModel, error) {
	modelDir, err := a.modelStorageDir()
	if err != nil {
		return whisper.ResolvedModel{}, err
	}

	resolved, err := whisper.ResolveModel(a.model, modelDir)
	if err != nil {
		return whisper.ResolvedModel{}, err
	}

	if !resolved.NeedsDownload {
		return resolved, nil
	}

	if !a.autoDownload {
		return whisper.ResolvedModel{}, fmt.Errorf("model %q is missing at %s; run `vidsub setup --model %s` or use --auto-download=true", resolved.Name, resolved.Path, resolved.Name)
	}

	a.log().Info("model not found, downloading", zap.String("model", resolved.Name), zap.String("destination", resolved.Path))
	if err := download.DownloadFile(ctx, download.Options{
		URL:            resolved.URL,
		Destination:    resolved.Path,
		ExpectedSHA256: resolved.SHA256,
		NoProgress:     a.noProgress,
		Logger:         a.log(),
	}); err != nil {
		return whisper.ResolvedModel{}, fmt.Errorf("download model %q: %w", resolved.Name, err)
	}

	resolved.NeedsDownload = false
	return resolved, nil
}

// spinnerEngine shows a spinner on stderr while the wrapped engine works.
type spinnerEngine struct {
	inner   whisper.Engine
	enabled bool
	logger  *zap.Logger
}

func (s *spinnerEngine) Transcribe(ctx context.Context, req whisper.Request) (*whisper.Transcription, error) {
	stop := startSpinner(s.enabled, "Transcribing "+filepath.Base(req.MediaPath))
	started := time.Now()

	transcription, err := s.inner.Transcribe(ctx, req)
	stop()
	if err != nil {
		s.logger.Warn("transcription failed", zap.String("file", req.MediaPath), zap.Duration("elapsed", time.Since(started)), zap.Error(err))
		return nil, err
	}
	s.logger.Debug("transcription finished", zap.String("file", req.MediaPath), zap.Duration("elapsed", time.Since(started)))
	return transcription, nil
}
