package pipeline

import (
	"io"

	"github.com/fatih/color"
	"github.com/fmueller/vidsub/internal/whisper"
)

// Reporter receives progress events. Implementations must not block.
type Reporter interface {
	NoFolder()
	FolderSelected(folder string, files int)
	FileStarted(path string)
	LanguageDetected(path string, info whisper.Info)
	SegmentWritten(seg whisper.Segment, written string)
	FileFailed(path string, err error)
	Finished(summary Summary)
}

type nopReporter struct{}

func (nopReporter) NoFolder()                              {}
func (nopReporter) FolderSelected(string, int)             {}
func (nopReporter) FileStarted(string)                     {}
func (nopReporter) LanguageDetected(string, whisper.Info)  {}
func (nopReporter) SegmentWritten(whisper.Segment, string) {}
func (nopReporter) FileFailed(string, error)               {}
func (nopReporter) Finished(Summary)                       {}

// NopReporter discards every event.
func NopReporter() Reporter {
	return nopReporter{}
}

// ConsoleReporter prints colour-coded progress lines.
type ConsoleReporter struct {
	out     io.Writer
	success *color.Color
	failure *color.Color
	file    *color.Color
	segment *color.Color
}

func NewConsoleReporter(out io.Writer, colorEnabled bool) *ConsoleReporter {
	r := &ConsoleReporter{
		out:     out,
		success: color.New(color.Bold, color.FgGreen),
		failure: color.New(color.Bold, color.FgRed),
		file:    color.New(color.Bold, color.FgMagenta),
		segment: color.New(color.Bold, color.FgWhite),
	}
	for _, c := range []*color.Color{r.success, r.failure, r.file, r.segment} {
		if colorEnabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return r
}

func (r *ConsoleReporter) NoFolder() {
	_, _ = r.failure.Fprintln(r.out, "No folder selected.")
}

func (r *ConsoleReporter) FolderSelected(folder string, files int) {
	_, _ = r.success.Fprintf(r.out, "Selected Folder: %s (%d video files)\n", folder, files)
}

func (r *ConsoleReporter) FileStarted(path string) {
	_, _ = r.file.Fprintf(r.out, "Processing file: %s\n", path)
}

func (r *ConsoleReporter) LanguageDetected(_ string, info whisper.Info) {
	if info.Silent {
		_, _ = r.failure.Fprintln(r.out, "No speech detected: audio is silent")
		return
	}
	_, _ = r.success.Fprintf(r.out, "Detected language '%s' with probability %f\n", info.Language, info.Probability)
}

// SegmentWritten echoes the recognized text, not the translation.
func (r *ConsoleReporter) SegmentWritten(seg whisper.Segment, _ string) {
	_, _ = r.segment.Fprintf(r.out, "[%.2fs -> %.2fs] %s\n", seg.Start, seg.End, seg.Text)
}

func (r *ConsoleReporter) FileFailed(path string, err error) {
	_, _ = r.failure.Fprintf(r.out, "Failed: %s: %v\n", path, err)
}

func (r *ConsoleReporter) Finished(summary Summary) {
	if len(summary.Failed) > 0 {
		_, _ = r.failure.Fprintf(r.out, "%d of %d files failed\n", len(summary.Failed), summary.Files+len(summary.Failed))
	}
	_, _ = r.success.Fprintf(r.out, "ALL .srt files generated: %d files, %d segments\n", summary.Files, summary.Segments)
}
