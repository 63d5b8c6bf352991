// Package pipeline turns a folder of videos into subtitle files.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/fmueller/vidsub/internal/srt"
	"github.com/fmueller/vidsub/internal/whisper"
	"go.uber.org/zap"
)

// BeamSize is the decoding beam width requested for every file.
const BeamSize = 5

var ErrNoFolder = errors.New("no folder selected")

// SegmentTranslator translates a single segment. It reports failures by
// returning an empty string.
type SegmentTranslator interface {
	Translate(ctx context.Context, text, target string) string
}

type Options struct {
	Engine     whisper.Engine
	Translator SegmentTranslator
	Reporter   Reporter
	Logger     *zap.Logger

	ModelPath      string
	SourceLanguage string

	// KeepGoing continues with the next file when one fails and returns
	// the joined errors at the end.
	KeepGoing bool
}

type Summary struct {
	Files    int
	Segments int
	Failed   []string
}

type Pipeline struct {
	opts Options
}

func New(opts Options) (*Pipeline, error) {
	if opts.Engine == nil {
		return nil, errors.New("transcription engine is required")
	}
	if opts.Reporter == nil {
		opts.Reporter = NopReporter()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Pipeline{opts: opts}, nil
}

// Run subtitles every video in folder, in name order. An empty target writes
// the recognized text as is.
func (p *Pipeline) Run(ctx context.Context, folder, target string) (Summary, error) {
	if strings.TrimSpace(folder) == "" {
		p.opts.Reporter.NoFolder()
		return Summary{}, ErrNoFolder
	}
	if target != "" && p.opts.Translator == nil {
		return Summary{}, errors.New("a translator is required when a target language is set")
	}

	files, err := Discover(folder)
	if err != nil {
		return Summary{}, err
	}
	p.opts.Reporter.FolderSelected(folder, len(files))
	p.opts.Logger.Debug("discovered videos", zap.String("folder", folder), zap.Int("count", len(files)))

	var (
		summary Summary
		errs    []error
	)
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		segments, err := p.ProcessFile(ctx, path, target)
		summary.Segments += segments
		if err != nil {
			if !p.opts.KeepGoing || ctx.Err() != nil {
				return summary, err
			}
			p.opts.Logger.Error("file failed", zap.String("file", path), zap.Error(err))
			p.opts.Reporter.FileFailed(path, err)
			summary.Failed = append(summary.Failed, path)
			errs = append(errs, err)
			continue
		}
		summary.Files++
	}

	p.opts.Reporter.Finished(summary)
	return summary, errors.Join(errs...)
}

// ProcessFile transcribes one video and writes its subtitle file next to it.
// It returns the number of blocks written, also on failure.
func (p *Pipeline) ProcessFile(ctx context.Context, path, target string) (written int, err error) {
	p.opts.Reporter.FileStarted(path)

	transcription, err := p.opts.Engine.Transcribe(ctx, whisper.Request{
		MediaPath: path,
		ModelPath: p.opts.ModelPath,
		Language:  p.opts.SourceLanguage,
		BeamSize:  BeamSize,
	})
	if err != nil {
		return 0, fmt.Errorf("transcribe %s: %w", path, err)
	}
	p.opts.Reporter.LanguageDetected(path, transcription.Info)

	outPath := srt.OutputPath(path)
	out, err := os.Create(outPath)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", outPath, err)
	}
	defer func() {
		if closeErr := out.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close %s: %w", outPath, closeErr))
		}
	}()

	for seg, segErr := range transcription.Segments {
		if segErr != nil {
			return written, fmt.Errorf("transcribe %s: %w", path, segErr)
		}

		text := seg.Text
		if target != "" {
			text = p.opts.Translator.Translate(ctx, seg.Text, target)
		}

		if err := srt.WriteBlock(out, seg, text); err != nil {
			return written, fmt.Errorf("%s: %w", outPath, err)
		}
		written++
		p.opts.Reporter.SegmentWritten(seg, text)
	}

	p.opts.Logger.Debug("subtitle written", zap.String("file", outPath), zap.Int("segments", written))
	return written, nil
}
