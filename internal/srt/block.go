package srt

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/fmueller/vidsub/internal/whisper"
)

const Extension = ".srt"

func Block(seg whisper.Segment, text string) string {
	return fmt.Sprintf("%d\n%s --> %s\n%s\n\n", seg.Index, FormatTimestamp(seg.Start), FormatTimestamp(seg.End), text)
}

func WriteBlock(w io.Writer, seg whisper.Segment, text string) error {
	if _, err := io.WriteString(w, Block(seg, text)); err != nil {
		return fmt.Errorf("write subtitle block %d: %w", seg.Index, err)
	}
	return nil
}

// OutputPath maps a video path to its sibling subtitle path.
func OutputPath(videoPath string) string {
	dir := filepath.Dir(videoPath)
	base := filepath.Base(videoPath)
	return filepath.Join(dir, strings.TrimSuffix(base, filepath.Ext(base))+Extension)
}
