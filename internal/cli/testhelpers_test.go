package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fmueller/vidsub/internal/language"
	"github.com/fmueller/vidsub/internal/translate"
	"github.com/fmueller/vidsub/internal/whisper"
	"github.com/stretchr/testify/require"
)

func runCommand(t *testing.T, args []string) (stdout string, stderr string, err error) {
	t.Helper()

	cmd := NewRootCmd()
	outBuf := new(bytes.Buffer)
	errBuf := new(bytes.Buffer)

	cmd.SetOut(outBuf)
	cmd.SetErr(errBuf)
	cmd.SetArgs(args)

	err = cmd.Execute()
	return outBuf.String(), errBuf.String(), err
}

// missingConfig points --config at a file that does not exist so tests never
// read the developer's own configuration.
func missingConfig(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "config.yaml")
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func writeVideos(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("video"), 0o644))
	}
}

type fakeEngine struct {
	segments []whisper.Segment
	err      error
	calls    int
}

func (f *fakeEngine) Transcribe(_ context.Context, _ whisper.Request) (*whisper.Transcription, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &whisper.Transcription{
		Info:     whisper.Info{Language: "en", Probability: 0.91},
		Segments: whisper.SliceSegments(f.segments),
	}, nil
}

type prefixTranslator struct{}

func (prefixTranslator) Name() string { return "prefix" }

func (prefixTranslator) Translate(_ context.Context, text, target string) (string, error) {
	return target + ":" + text, nil
}

func newTestApp(t *testing.T, engine *fakeEngine) (*appState, *bytes.Buffer) {
	t.Helper()

	out := new(bytes.Buffer)
	app := newAppState()
	app.out = out
	app.noProgress = true
	app.getenv = func(string) string { return "" }
	app.engineFn = func(context.Context) (whisper.Engine, string, error) {
		return engine, "/models/ggml-small.bin", nil
	}
	app.translatorFn = func() (translate.Translator, error) {
		return prefixTranslator{}, nil
	}
	app.pickFn = func([]language.Selection, language.Selection) (language.Selection, error) {
		t.Fatal("picker should not be shown")
		return language.Selection{}, nil
	}
	return app, out
}
