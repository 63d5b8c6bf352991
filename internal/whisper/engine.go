package whisper

import (
	"context"
	"iter"
)

// Request describes one transcription call.
type Request struct {
	MediaPath string
	ModelPath string
	Language  string
	BeamSize  int
}

// Segment is a timed span of recognized speech. Start and End are seconds.
type Segment struct {
	Index int
	Start float64
	End   float64
	Text  string
}

// Info reports the language the engine detected and its confidence. Silent
// is set when the audio was skipped as near-silent; no language is detected
// then.
type Info struct {
	Language    string
	Probability float64
	Silent      bool
}

// Transcription pairs the detected language with a forward-only segment
// sequence. Segments may be ranged over once.
type Transcription struct {
	Info     Info
	Segments iter.Seq2[Segment, error]
}

type Engine interface {
	Transcribe(ctx context.Context, req Request) (*Transcription, error)
}
