package cli

import (
	"context"

	"github.com/fmueller/vidsub/internal/pipeline"
	"github.com/fmueller/vidsub/internal/watch"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newWatchCmd(app *appState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch <folder>",
		Short: "Watch a folder and subtitle new .mp4 videos as they arrive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app.out = cmd.OutOrStdout()
			return app.runWatch(cmd.Context(), args[0])
		},
	}

	bindLoggingFlags(cmd, app)
	bindProgressFlags(cmd, app)
	bindEngineFlags(cmd, app)
	bindModelFlags(cmd, app)
	bindLanguageAndModelDownloadFlags(cmd, app)
	bindSilenceFlags(cmd, app)
	bindTranslationFlags(cmd, app)
	cmd.Flags().DurationVar(&app.settle, "settle", app.settle, "How long a new file must stay unchanged before it is processed")

	return cmd
}

func (a *appState) runWatch(ctx context.Context, folder string) error {
	if err := ensureFolder(folder); err != nil {
		return err
	}

	target, err := a.resolveTarget()
	if err != nil {
		return err
	}

	reporter := pipeline.NewConsoleReporter(a.outWriter(), a.colorEnabled())
	p, err := a.newPipeline(ctx, target, reporter)
	if err != nil {
		return err
	}

	handler := func(ctx context.Context, path string) error {
		segments, err := p.ProcessFile(ctx, path, target.Code)
		if err != nil {
			reporter.FileFailed(path, err)
			return err
		}
		a.log().Info("subtitle written", zap.String("file", path), zap.Int("segments", segments))
		return nil
	}

	w, err := watch.New(folder, handler, watch.Options{Settle: a.settle, Logger: a.log()})
	if err != nil {
		return err
	}
	return w.Run(ctx)
}
