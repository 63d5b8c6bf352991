package main

import (
	"errors"
	"testing"

	"github.com/fmueller/vidsub/internal/cli"
	"github.com/stretchr/testify/require"
)

func TestShouldPrintUsageHint(t *testing.T) {
	t.Parallel()

	require.True(t, shouldPrintUsageHint(errors.New("unknown flag: --oops")))
	require.True(t, shouldPrintUsageHint(errors.New("accepts 1 arg(s), received 0")))
	require.True(t, shouldPrintUsageHint(errors.New("no folder selected")))
	require.True(t, shouldPrintUsageHint(errors.New("if any flags in the group [to pick] are set none of the others can be; [pick to] were all set")))
	require.False(t, shouldPrintUsageHint(errors.New("download model \"small\": context deadline exceeded")))
	require.False(t, shouldPrintUsageHint(nil))
}

func TestHelpHintTarget(t *testing.T) {
	t.Parallel()

	root := cli.NewRootCmd()
	require.Equal(t, "vidsub", helpHintTarget(root, []string{"--badflag"}))
	require.Equal(t, "vidsub", helpHintTarget(root, []string{"videos"}))
	require.Equal(t, "vidsub watch", helpHintTarget(root, []string{"watch"}))
	require.Equal(t, "vidsub watch", helpHintTarget(root, []string{"watch", "--to", "fr"}))
}
