package cli

import (
	"bytes"
	"testing"

	"github.com/fmueller/vidsub/internal/config"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

func TestRootCommandRegistersFlags(t *testing.T) {
	t.Parallel()

	cmd := NewRootCmd()

	for _, name := range []string{
		"to", "pick", "keep-going", "engine", "model", "model-dir", "language",
		"auto-download", "translator", "translator-model", "config", "silence-gate",
		"silence-threshold-dbfs", "verbose", "json", "no-progress", "no-color",
	} {
		require.NotNilf(t, cmd.Flags().Lookup(name), "flag %s", name)
	}
	require.Equal(t, "none", cmd.Flags().Lookup("to").DefValue)
	require.Equal(t, "false", cmd.Flags().Lookup("keep-going").DefValue)
	require.Equal(t, "bundled", cmd.Flags().Lookup("engine").DefValue)
	require.Equal(t, "google", cmd.Flags().Lookup("translator").DefValue)
	require.Equal(t, "true", cmd.Flags().Lookup("auto-download").DefValue)
	require.Equal(t, "-65", cmd.Flags().Lookup("silence-threshold-dbfs").DefValue)
}

func TestRootHelpParsesSuccessfully(t *testing.T) {
	t.Parallel()

	cmd := NewRootCmd()
	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs([]string{"--help"})

	err := cmd.Execute()
	require.NoError(t, err)
	require.Contains(t, out.String(), "watch")
	require.Contains(t, out.String(), "languages")
	require.Contains(t, out.String(), "setup")
	require.Contains(t, out.String(), "--keep-going")
}

func TestSubcommandHelpParsesSuccessfully(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		args     []string
		contains string
	}{
		{name: "watch", args: []string{"watch", "--help"}, contains: "subtitle new .mp4 videos"},
		{name: "languages", args: []string{"languages", "--help"}, contains: "List the languages"},
		{name: "setup", args: []string{"setup", "--help"}, contains: "Download and verify the whisper model"},
		{name: "version", args: []string{"version", "--help"}, contains: "Print the version number"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			stdout, _, err := runCommand(t, tt.args)
			require.NoError(t, err)
			require.Contains(t, stdout, tt.contains)
		})
	}
}

func TestApplyConfigKeepsExplicitFlags(t *testing.T) {
	t.Parallel()

	app := newAppState()
	cmd := &cobra.Command{Use: "test"}
	bindEngineFlags(cmd, app)
	bindModelFlags(cmd, app)
	bindTranslationFlags(cmd, app)
	require.NoError(t, cmd.ParseFlags([]string{"--model", "tiny", "--translator", "anthropic"}))

	cfg := config.Default()
	cfg.Engine = config.EngineOpenAI
	cfg.Model = "medium"
	cfg.ModelDir = "/srv/models"
	cfg.Translation.Model = "gpt-4o"
	app.applyConfig(cmd, cfg)

	require.Equal(t, "tiny", app.model)
	require.Equal(t, "anthropic", app.translator)
	require.Equal(t, config.EngineOpenAI, app.engineName)
	require.Equal(t, "/srv/models", app.modelDir)
	require.Equal(t, "gpt-4o", app.translatorModel)
}

func TestSanitizeLanguage(t *testing.T) {
	t.Parallel()

	require.Equal(t, "auto", sanitizeLanguage("  "))
	require.Equal(t, "de", sanitizeLanguage(" DE "))
}
