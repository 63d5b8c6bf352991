package language

import (
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  Selection
	}{
		{input: "", want: None},
		{input: "none", want: None},
		{input: " None ", want: None},
		{input: "fr", want: Selection{DisplayName: "French", Code: "fr"}},
		{input: "FR", want: Selection{DisplayName: "French", Code: "fr"}},
		{input: "French", want: Selection{DisplayName: "French", Code: "fr"}},
		{input: "german", want: Selection{DisplayName: "German", Code: "de"}},
		{input: "fr-CA", want: Selection{DisplayName: "French", Code: "fr"}},
		{input: "zh-cn", want: Selection{DisplayName: "Chinese (Simplified)", Code: "zh-CN"}},
		{input: "Chinese (Traditional)", want: Selection{DisplayName: "Chinese (Traditional)", Code: "zh-TW"}},
	}

	for _, tt := range tests {
		got, err := Resolve(tt.input)
		require.NoErrorf(t, err, "input %q", tt.input)
		require.Equalf(t, tt.want, got, "input %q", tt.input)
	}
}

func TestResolveUnknown(t *testing.T) {
	t.Parallel()

	_, err := Resolve("Klingon")
	require.ErrorIs(t, err, ErrUnknownLanguage)
	require.Contains(t, err.Error(), "Klingon")
}

func TestCatalogIsSortedByDisplayName(t *testing.T) {
	t.Parallel()

	cat := Catalog()
	require.Len(t, cat, len(codes))
	require.True(t, slices.IsSortedFunc(cat, func(a, b Selection) int {
		return strings.Compare(a.DisplayName, b.DisplayName)
	}))

	cat[0] = Selection{}
	require.NotEqual(t, Selection{}, Catalog()[0])
}

func TestDefaultIsEnglish(t *testing.T) {
	t.Parallel()

	require.Equal(t, Selection{DisplayName: "English", Code: "en"}, Default())
	require.True(t, Default().Translates())
	require.False(t, None.Translates())
}

func TestNativeName(t *testing.T) {
	t.Parallel()

	require.Equal(t, "français", Selection{Code: "fr"}.NativeName())
	require.Empty(t, None.NativeName())
}
