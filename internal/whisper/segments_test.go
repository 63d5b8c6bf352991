package whisper

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSliceSegmentsYieldsInOrderOnce(t *testing.T) {
	t.Parallel()

	seq := SliceSegments([]Segment{{Index: 1, Text: "a"}, {Index: 2, Text: "b"}, {Index: 3, Text: "c"}})

	var got []int
	for seg, err := range seq {
		require.NoError(t, err)
		got = append(got, seg.Index)
	}
	require.Equal(t, []int{1, 2, 3}, got)

	var errs []error
	for _, err := range seq {
		errs = append(errs, err)
	}
	require.Len(t, errs, 1)
	require.ErrorIs(t, errs[0], ErrSegmentsConsumed)
}

func TestSliceSegmentsEarlyStopDoesNotRewind(t *testing.T) {
	t.Parallel()

	seq := SliceSegments([]Segment{{Index: 1}, {Index: 2}})
	for range seq {
		break
	}

	for _, err := range seq {
		require.ErrorIs(t, err, ErrSegmentsConsumed)
	}
}
