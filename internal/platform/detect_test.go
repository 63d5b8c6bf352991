package platform

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultModelDirFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		goos string
		home string
		xdg  string
		want string
	}{
		{name: "linux with xdg", goos: "linux", home: "/home/dev", xdg: "/tmp/xdg-data", want: "/tmp/xdg-data/vidsub/models"},
		{name: "linux without xdg", goos: "linux", home: "/home/dev", want: "/home/dev/.local/share/vidsub/models"},
		{name: "macos", goos: "darwin", home: "/Users/dev", want: "/Users/dev/Library/Application Support/vidsub/models"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir, err := DefaultModelDirFor(tt.goos, tt.home, tt.xdg)
			require.NoError(t, err)
			require.Equal(t, tt.want, dir)
		})
	}
}

func TestDefaultModelDirForUnsupportedOS(t *testing.T) {
	t.Parallel()

	_, err := DefaultModelDirFor("windows", "/Users/dev", "")
	require.Error(t, err)

	_, err = DefaultModelDirFor("linux", "", "")
	require.Error(t, err)
}

func TestDefaultConfigPathFor(t *testing.T) {
	t.Parallel()

	path, err := DefaultConfigPathFor("linux", "/home/dev", "")
	require.NoError(t, err)
	require.Equal(t, "/home/dev/.config/vidsub/config.yaml", path)

	path, err = DefaultConfigPathFor("linux", "/home/dev", "/etc/xdg")
	require.NoError(t, err)
	require.Equal(t, "/etc/xdg/vidsub/config.yaml", path)

	path, err = DefaultConfigPathFor("darwin", "/Users/dev", "")
	require.NoError(t, err)
	require.Equal(t, "/Users/dev/Library/Preferences/vidsub/config.yaml", path)
}

func TestResolveOverridesAreCleaned(t *testing.T) {
	t.Parallel()

	dir, err := ResolveModelDir("/tmp/models/../models/")
	require.NoError(t, err)
	require.Equal(t, "/tmp/models", dir)

	path, err := ResolveConfigPath("./conf/vidsub.yaml")
	require.NoError(t, err)
	require.Equal(t, "conf/vidsub.yaml", path)
}

func TestNormalizeArch(t *testing.T) {
	t.Parallel()

	require.Equal(t, "amd64", NormalizeArch("x86_64"))
	require.Equal(t, "arm64", NormalizeArch("aarch64"))
	require.Equal(t, "riscv64", NormalizeArch("riscv64"))
}
