// Package audio measures the loudness of WAV files produced by ffmpeg before
// they are handed to the speech engine.
package audio

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/go-audio/wav"
)

var (
	ErrUnsupportedWAV = errors.New("unsupported wav format")
	ErrInvalidWAV     = errors.New("invalid wav file")
)

const wavFormatPCM = 1

type SilenceMetrics struct {
	RMSdBFS  float64
	PeakdBFS float64
	Samples  int64
}

// IsSilentWAV reports whether the file stays below thresholdDBFS RMS, with
// peaks allowed 6 dB above that.
func IsSilentWAV(path string, thresholdDBFS float64) (bool, SilenceMetrics, error) {
	metrics, err := MeasureWAV(path)
	if err != nil {
		return false, SilenceMetrics{}, err
	}

	if metrics.Samples == 0 || (math.IsInf(metrics.RMSdBFS, -1) && math.IsInf(metrics.PeakdBFS, -1)) {
		return true, metrics, nil
	}

	return metrics.RMSdBFS <= thresholdDBFS && metrics.PeakdBFS <= thresholdDBFS+6, metrics, nil
}

func MeasureWAV(path string) (SilenceMetrics, error) {
	f, err := os.Open(path)
	if err != nil {
		return SilenceMetrics{}, fmt.Errorf("open wav: %w", err)
	}
	defer f.Close()

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		return SilenceMetrics{}, ErrInvalidWAV
	}
	if decoder.WavAudioFormat != wavFormatPCM {
		return SilenceMetrics{}, ErrUnsupportedWAV
	}

	var offset, fullScale float64
	switch decoder.BitDepth {
	case 8:
		offset, fullScale = 128, 128
	case 16, 24, 32:
		fullScale = float64(int64(1) << (decoder.BitDepth - 1))
	default:
		return SilenceMetrics{}, ErrUnsupportedWAV
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return SilenceMetrics{}, fmt.Errorf("decode wav: %w", err)
	}

	if len(buf.Data) == 0 {
		return SilenceMetrics{RMSdBFS: math.Inf(-1), PeakdBFS: math.Inf(-1)}, nil
	}

	var peak, sumSquares float64
	for _, sample := range buf.Data {
		value := (float64(sample) - offset) / fullScale
		if abs := math.Abs(value); abs > peak {
			peak = abs
		}
		sumSquares += value * value
	}

	samples := int64(len(buf.Data))
	return SilenceMetrics{
		RMSdBFS:  amplitudeToDBFS(math.Sqrt(sumSquares / float64(samples))),
		PeakdBFS: amplitudeToDBFS(peak),
		Samples:  samples,
	}, nil
}

func amplitudeToDBFS(amplitude float64) float64 {
	if amplitude <= 0 {
		return math.Inf(-1)
	}
	return 20 * math.Log10(amplitude)
}
