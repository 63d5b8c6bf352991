package whisper

import (
	"errors"
	"iter"
	"sync/atomic"
)

var ErrSegmentsConsumed = errors.New("segment sequence already consumed")

// OnceSegments wraps seq so that only the first range over it yields
// segments; later ranges yield ErrSegmentsConsumed.
func OnceSegments(seq iter.Seq2[Segment, error]) iter.Seq2[Segment, error] {
	var used atomic.Bool
	return func(yield func(Segment, error) bool) {
		if used.Swap(true) {
			yield(Segment{}, ErrSegmentsConsumed)
			return
		}
		seq(yield)
	}
}

// SliceSegments exposes already decoded segments as a one-shot sequence.
func SliceSegments(segments []Segment) iter.Seq2[Segment, error] {
	return OnceSegments(func(yield func(Segment, error) bool) {
		for _, seg := range segments {
			if !yield(seg, nil) {
				return
			}
		}
	})
}
