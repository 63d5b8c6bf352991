package cli

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunWatchStopsWithContext(t *testing.T) {
	t.Parallel()

	engine := &fakeEngine{}
	app, _ := newTestApp(t, engine)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, app.runWatch(ctx, t.TempDir()))
	require.Zero(t, engine.calls)
}

func TestRunWatchRejectsMissingFolder(t *testing.T) {
	t.Parallel()

	app, _ := newTestApp(t, &fakeEngine{})
	err := app.runWatch(context.Background(), filepath.Join(t.TempDir(), "missing"))
	require.ErrorContains(t, err, "folder not found")
}
