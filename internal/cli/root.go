package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fmueller/vidsub/internal/config"
	"github.com/fmueller/vidsub/internal/language"
	"github.com/fmueller/vidsub/internal/logging"
	"github.com/fmueller/vidsub/internal/picker"
	"github.com/fmueller/vidsub/internal/platform"
	"github.com/fmueller/vidsub/internal/translate"
	"github.com/fmueller/vidsub/internal/version"
	"github.com/fmueller/vidsub/internal/watch"
	"github.com/fmueller/vidsub/internal/whisper"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/spf13/cobra"
)

type appState struct {
	verbose    bool
	jsonLogs   bool
	noProgress bool
	noColor    bool
	configPath string

	engineName   string
	model        string
	modelDir     string
	language     string
	autoDownload bool
	silenceGate  bool
	silenceDBFS  float64

	target          string
	pick            bool
	keepGoing       bool
	translator      string
	translatorModel string
	settle          time.Duration

	cfg    config.Config
	logger *zap.Logger
	out    io.Writer
	getenv func(string) string

	engine    whisper.Engine
	modelPath string

	engineFn     func(ctx context.Context) (whisper.Engine, string, error)
	translatorFn func() (translate.Translator, error)
	pickFn       func(options []language.Selection, initial language.Selection) (language.Selection, error)
}

func newAppState() *appState {
	cfg := config.Default()
	app := &appState{
		cfg:          cfg,
		engineName:   cfg.Engine,
		model:        whisper.DefaultModel,
		language:     cfg.Language,
		autoDownload: true,
		silenceGate:  cfg.SilenceGateEnabled(),
		silenceDBFS:  cfg.SilenceThresholdDBFS,
		target:       "none",
		translator:   cfg.Translation.Provider,
		settle:       watch.DefaultSettle,
		out:          os.Stdout,
		getenv:       os.Getenv,
	}
	app.engineFn = app.buildEngine
	app.translatorFn = app.buildTranslator
	app.pickFn = picker.Pick
	return app
}

func NewRootCmd() *cobra.Command {
	app := newAppState()

	cmd := &cobra.Command{
		Use:   "vidsub [folder]",
		Short: "Generate .srt subtitles for every .mp4 video in a folder",
		Long: "vidsub transcribes each .mp4 file in a folder with whisper and writes a\n" +
			"<name>.srt subtitle file next to it, optionally translated with --to or --pick.",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version.Resolve(),
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return app.prepare(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			app.out = cmd.OutOrStdout()
			folder := ""
			if len(args) == 1 {
				folder = args[0]
			}
			return app.runFolder(cmd.Context(), folder)
		},
	}

	cmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")

	bindLoggingFlags(cmd, app)
	bindProgressFlags(cmd, app)
	bindEngineFlags(cmd, app)
	bindModelFlags(cmd, app)
	bindLanguageAndModelDownloadFlags(cmd, app)
	bindSilenceFlags(cmd, app)
	bindTranslationFlags(cmd, app)
	cmd.Flags().BoolVar(&app.keepGoing, "keep-going", app.keepGoing, "Continue with the next video when one fails")

	cmd.AddCommand(newWatchCmd(app))
	cmd.AddCommand(newLanguagesCmd(app))
	cmd.AddCommand(newSetupCmd(app))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func bindLoggingFlags(cmd *cobra.Command, app *appState) {
	cmd.Flags().BoolVar(&app.verbose, "verbose", app.verbose, "Enable verbose logs")
	cmd.Flags().BoolVar(&app.jsonLogs, "json", app.jsonLogs, "Enable JSON logging")
	cmd.Flags().StringVar(&app.configPath, "config", app.configPath, "Path to config file (default <config dir>/vidsub/config.yaml)")
}

func bindProgressFlags(cmd *cobra.Command, app *appState) {
	cmd.Flags().BoolVar(&app.noProgress, "no-progress", app.noProgress, "Disable progress indicators")
	cmd.Flags().BoolVar(&app.noColor, "no-color", app.noColor, "Disable colored output")
}

func bindEngineFlags(cmd *cobra.Command, app *appState) {
	cmd.Flags().StringVar(&app.engineName, "engine", app.engineName, "Transcription engine: bundled|openai")
}

func bindModelFlags(cmd *cobra.Command, app *appState) {
	cmd.Flags().StringVar(&app.model, "model", app.model, "Model name or model file path")
	cmd.Flags().StringVar(&app.modelDir, "model-dir", app.modelDir, "Directory where models are stored")
}

func bindLanguageAndModelDownloadFlags(cmd *cobra.Command, app *appState) {
	cmd.Flags().StringVar(&app.language, "language", app.language, "Spoken language code (auto|en|de|...) for transcription")
	cmd.Flags().BoolVar(&app.autoDownload, "auto-download", app.autoDownload, "Automatically download missing models")
}

func bindSilenceFlags(cmd *cobra.Command, app *appState) {
	cmd.Flags().BoolVar(&app.silenceGate, "silence-gate", app.silenceGate, "Skip transcription of near-silent audio")
	cmd.Flags().Float64Var(&app.silenceDBFS, "silence-threshold-dbfs", app.silenceDBFS, "Silence gate threshold in dBFS")
}

func bindTranslationFlags(cmd *cobra.Command, app *appState) {
	cmd.Flags().StringVar(&app.target, "to", app.target, "Translate subtitles to this language (name or code, \"none\" keeps the original)")
	cmd.Flags().BoolVar(&app.pick, "pick", app.pick, "Choose the target language interactively")
	cmd.Flags().StringVar(&app.translator, "translator", app.translator, "Translation provider: google|openai|anthropic")
	cmd.Flags().StringVar(&app.translatorModel, "translator-model", app.translatorModel, "Model used by the openai and anthropic translators")
	cmd.MarkFlagsMutuallyExclusive("to", "pick")
}

func (a *appState) prepare(cmd *cobra.Command) error {
	logger, err := logging.New(logging.Options{Verbose: a.verbose, JSON: a.jsonLogs})
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}
	a.logger = logger

	path, err := platform.ResolveConfigPath(a.configPath)
	if err != nil {
		return err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	a.applyConfig(cmd, cfg)
	a.language = sanitizeLanguage(a.language)

	a.log().Debug("configuration loaded", zap.String("path", path), zap.String("engine", a.engineName), zap.String("translator", a.translator))
	return nil
}

// applyConfig copies file settings into every option the user did not set
// on the command line.
func (a *appState) applyConfig(cmd *cobra.Command, cfg config.Config) {
	a.cfg = cfg
	changed := func(name string) bool {
		return cmd.Flags().Changed(name)
	}

	if !changed("engine") {
		a.engineName = cfg.Engine
	}
	if !changed("model") && cfg.Model != "" {
		a.model = cfg.Model
	}
	if !changed("model-dir") && cfg.ModelDir != "" {
		a.modelDir = cfg.ModelDir
	}
	if !changed("language") {
		a.language = cfg.Language
	}
	if !changed("silence-gate") {
		a.silenceGate = cfg.SilenceGateEnabled()
	}
	if !changed("silence-threshold-dbfs") {
		a.silenceDBFS = cfg.SilenceThresholdDBFS
	}
	if !changed("translator") {
		a.translator = cfg.Translation.Provider
	}
	if !changed("translator-model") && cfg.Translation.Model != "" {
		a.translatorModel = cfg.Translation.Model
	}
}

func (a *appState) modelStorageDir() (string, error) {
	dir, err := platform.ResolveModelDir(a.modelDir)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create model directory %s: %w", dir, err)
	}
	return dir, nil
}

func (a *appState) log() *zap.Logger {
	if a.logger == nil {
		return zap.NewNop()
	}
	return a.logger
}

func (a *appState) progressEnabled() bool {
	if a.noProgress {
		return false
	}
	return term.IsTerminal(int(os.Stderr.Fd()))
}

func (a *appState) colorEnabled() bool {
	if a.noColor {
		return false
	}
	if f, ok := a.outWriter().(*os.File); ok {
		return term.IsTerminal(int(f.Fd()))
	}
	return false
}

func (a *appState) outWriter() io.Writer {
	if a.out == nil {
		return os.Stdout
	}
	return a.out
}

func (a *appState) env(key string) string {
	if key == "" {
		return ""
	}
	if a.getenv == nil {
		return os.Getenv(key)
	}
	return a.getenv(key)
}

func sanitizeLanguage(input string) string {
	trimmed := strings.TrimSpace(strings.ToLower(input))
	if trimmed == "" {
		return "auto"
	}
	return trimmed
}
