package srt

import (
	"fmt"
	"math"
)

// FormatTimestamp renders seconds as HH:MM:SS,mmm. Milliseconds are truncated.
// The value is snapped to whole microseconds first so that decimal inputs such
// as 3661.234 are not pulled down a millisecond by float representation error.
func FormatTimestamp(seconds float64) string {
	micros := int64(math.Round(seconds * 1e6))
	millis := micros / 1000

	hours := millis / 3_600_000
	millis %= 3_600_000
	minutes := millis / 60_000
	millis %= 60_000
	secs := millis / 1000
	millis %= 1000

	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, secs, millis)
}
