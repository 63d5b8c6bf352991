package whisper

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"runtime"
	"strconv"
	"strings"

	"github.com/fmueller/vidsub/internal/audio"
	"github.com/fmueller/vidsub/internal/platform"
	"go.uber.org/zap"
)

const (
	whisperPathEnv = "VIDSUB_WHISPER_PATH"
	ffmpegPathEnv  = "VIDSUB_FFMPEG_PATH"

	DefaultBeamSize = 5
)

var detectedLanguagePattern = regexp.MustCompile(`auto-detected language:\s*([a-zA-Z-]+)\s*\(p\s*=\s*([0-9.]+)\)`)

// BundledEngine runs the whisper-cli binary shipped next to vidsub. Video input
// is converted to 16 kHz mono WAV with ffmpeg first.
type BundledEngine struct {
	Executable string
	FFmpeg     string
	Silence    SilenceGate
	Logger     *zap.Logger
}

type SilenceGate struct {
	Enabled       bool
	ThresholdDBFS float64
}

func NewBundledEngine(logger *zap.Logger, gate SilenceGate) (*BundledEngine, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	ffmpeg, err := resolveFFmpeg()
	if err != nil {
		return nil, err
	}

	if override := strings.TrimSpace(os.Getenv(whisperPathEnv)); override != "" {
		if err := ensureExecutable(override); err != nil {
			return nil, fmt.Errorf("%s is not executable: %w", whisperPathEnv, err)
		}
		return &BundledEngine{Executable: override, FFmpeg: ffmpeg, Silence: gate, Logger: logger}, nil
	}

	self, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("resolve vidsub executable path: %w", err)
	}

	whisperExe, err := ResolveBundledEnginePath(self)
	if err != nil {
		return nil, err
	}

	return &BundledEngine{Executable: whisperExe, FFmpeg: ffmpeg, Silence: gate, Logger: logger}, nil
}

func ResolveBundledEnginePath(selfExecutable string) (string, error) {
	for _, candidate := range EnginePathCandidates(selfExecutable) {
		if err := ensureExecutable(candidate); err == nil {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("bundled whisper engine not found near %s; expected at ../libexec/whisper/%s or set %s", selfExecutable, engineBinaryName(), whisperPathEnv)
}

func EnginePathCandidates(selfExecutable string) []string {
	binDir := filepath.Dir(selfExecutable)
	engineName := engineBinaryName()
	rt := platform.CurrentRuntime()

	return []string{
		filepath.Join(binDir, "..", "libexec", "whisper", engineName),
		filepath.Join(binDir, "libexec", "whisper", engineName),
		filepath.Join(binDir, "packaging", "whisper", rt.OS+"_"+rt.Arch, engineName),
		filepath.Join(binDir, engineName),
	}
}

// Transcribe decodes the whole file before returning; whisper-cli only emits
// its JSON once decoding has finished.
func (b *BundledEngine) Transcribe(ctx context.Context, req Request) (*Transcription, error) {
	if strings.TrimSpace(req.MediaPath) == "" {
		return nil, errors.New("media path is required")
	}
	if strings.TrimSpace(req.ModelPath) == "" {
		return nil, errors.New("model path is required")
	}
	if err := ensureExecutable(b.Executable); err != nil {
		return nil, fmt.Errorf("bundled whisper engine missing or not executable: %w", err)
	}

	workDir, err := os.MkdirTemp("", "vidsub-*")
	if err != nil {
		return nil, fmt.Errorf("create work directory: %w", err)
	}
	defer os.RemoveAll(workDir)

	wavPath := req.MediaPath
	if !strings.EqualFold(filepath.Ext(req.MediaPath), ".wav") {
		wavPath = filepath.Join(workDir, "audio.wav")
		if err := b.extractAudio(ctx, req.MediaPath, wavPath); err != nil {
			return nil, err
		}
	}

	if b.Silence.Enabled {
		silent, metrics, err := audio.IsSilentWAV(wavPath, b.Silence.ThresholdDBFS)
		switch {
		case err != nil:
			b.log().Warn("silence gate analysis failed; continuing transcription", zap.String("audio", wavPath), zap.Error(err))
		case silent:
			b.log().Info("audio considered silent; skipping transcription",
				zap.String("media", req.MediaPath),
				zap.Float64("rms_dbfs", metrics.RMSdBFS),
				zap.Float64("peak_dbfs", metrics.PeakdBFS),
			)
			return &Transcription{Info: silentInfo(req.Language), Segments: SliceSegments(nil)}, nil
		}
	}

	outBase := filepath.Join(workDir, "transcript")
	args := b.buildArgs(req, wavPath, outBase)

	cmd := exec.CommandContext(ctx, b.Executable, args...)
	var stderr bytes.Buffer
	cmd.Stdout = io.Discard
	cmd.Stderr = &stderr

	b.log().Debug("running whisper engine", zap.String("engine", b.Executable), zap.Strings("args", args))
	if err := cmd.Run(); err != nil {
		errText := strings.TrimSpace(stderr.String())
		if isMissingSharedLibraryError(errText) {
			return nil, fmt.Errorf("bundled whisper engine at %s is missing required shared libraries (%s); rebuild whisper-cli with BUILD_SHARED_LIBS=OFF", b.Executable, errText)
		}
		if isIllegalInstructionError(errText) || isIllegalInstructionError(err.Error()) {
			return nil, fmt.Errorf("bundled whisper engine crashed with an illegal CPU instruction; set %s to a whisper-cli binary built for your CPU", whisperPathEnv)
		}
		return nil, fmt.Errorf("whisper transcribe failed: %w (%s)", err, lastLine(errText))
	}

	content, err := os.ReadFile(outBase + ".json")
	if err != nil {
		return nil, fmt.Errorf("read whisper output: %w", err)
	}

	segments, detected, err := parseCLIOutput(content)
	if err != nil {
		return nil, err
	}

	return &Transcription{
		Info:     detectInfo(req.Language, detected, stderr.String()),
		Segments: SliceSegments(segments),
	}, nil
}

func (b *BundledEngine) buildArgs(req Request, wavPath, outBase string) []string {
	beam := req.BeamSize
	if beam <= 0 {
		beam = DefaultBeamSize
	}

	lang := strings.TrimSpace(req.Language)
	if lang == "" {
		lang = "auto"
	}

	return []string{
		"-m", req.ModelPath,
		"-f", wavPath,
		"-bs", strconv.Itoa(beam),
		"-l", lang,
		"-oj",
		"-of", outBase,
	}
}

func (b *BundledEngine) extractAudio(ctx context.Context, mediaPath, wavPath string) error {
	args := []string{
		"-nostdin",
		"-i", mediaPath,
		"-vn",
		"-ar", "16000",
		"-ac", "1",
		"-c:a", "pcm_s16le",
		"-y",
		wavPath,
	}

	cmd := exec.CommandContext(ctx, b.FFmpeg, args...)
	var stderr bytes.Buffer
	cmd.Stdout = io.Discard
	cmd.Stderr = &stderr

	b.log().Debug("extracting audio", zap.String("ffmpeg", b.FFmpeg), zap.String("media", mediaPath))
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg extract audio from %s: %w (%s)", mediaPath, err, lastLine(strings.TrimSpace(stderr.String())))
	}
	return nil
}

func (b *BundledEngine) log() *zap.Logger {
	if b.Logger == nil {
		return zap.NewNop()
	}
	return b.Logger
}

type cliOutput struct {
	Result struct {
		Language string `json:"language"`
	} `json:"result"`
	Transcription []struct {
		Offsets struct {
			From int64 `json:"from"`
			To   int64 `json:"to"`
		} `json:"offsets"`
		Text string `json:"text"`
	} `json:"transcription"`
}

func parseCLIOutput(content []byte) ([]Segment, string, error) {
	var out cliOutput
	if err := json.Unmarshal(content, &out); err != nil {
		return nil, "", fmt.Errorf("decode whisper output: %w", err)
	}

	segments := make([]Segment, 0, len(out.Transcription))
	for i, item := range out.Transcription {
		segments = append(segments, Segment{
			Index: i + 1,
			Start: float64(item.Offsets.From) / 1000,
			End:   float64(item.Offsets.To) / 1000,
			Text:  item.Text,
		})
	}

	return segments, out.Result.Language, nil
}

// detectInfo prefers the probability whisper-cli prints during auto
// detection. A forced language is reported with probability 1.
func detectInfo(requested, fromJSON, stderr string) Info {
	requested = strings.TrimSpace(requested)
	if requested != "" && requested != "auto" {
		return Info{Language: requested, Probability: 1}
	}

	if match := detectedLanguagePattern.FindStringSubmatch(stderr); len(match) == 3 {
		p, err := strconv.ParseFloat(match[2], 64)
		if err == nil {
			return Info{Language: match[1], Probability: p}
		}
	}

	return Info{Language: fromJSON}
}

// silentInfo keeps a forced language but never reports "auto" as detected.
func silentInfo(requested string) Info {
	requested = strings.TrimSpace(requested)
	if requested == "auto" {
		requested = ""
	}
	return Info{Language: requested, Silent: true}
}

func resolveFFmpeg() (string, error) {
	if override := strings.TrimSpace(os.Getenv(ffmpegPathEnv)); override != "" {
		if err := ensureExecutable(override); err != nil {
			return "", fmt.Errorf("%s is not executable: %w", ffmpegPathEnv, err)
		}
		return override, nil
	}

	path, err := exec.LookPath("ffmpeg")
	if err != nil {
		return "", fmt.Errorf("ffmpeg not found in PATH; install it or set %s: %w", ffmpegPathEnv, err)
	}
	return path, nil
}

func lastLine(text string) string {
	if idx := strings.LastIndexByte(text, '\n'); idx >= 0 {
		return strings.TrimSpace(text[idx+1:])
	}
	return text
}

func engineBinaryName() string {
	if runtime.GOOS == "windows" {
		return "whisper-cli.exe"
	}
	return "whisper-cli"
}

func ensureExecutable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	if runtime.GOOS != "windows" && info.Mode()&0o111 == 0 {
		return fmt.Errorf("%s is not executable", path)
	}
	return nil
}

func isMissingSharedLibraryError(stderr string) bool {
	value := strings.ToLower(strings.TrimSpace(stderr))
	if value == "" {
		return false
	}

	for _, pattern := range []string{
		"error while loading shared libraries",
		"cannot open shared object file",
		"dyld: library not loaded",
		"image not found",
	} {
		if strings.Contains(value, pattern) {
			return true
		}
	}
	return false
}

func isIllegalInstructionError(stderr string) bool {
	return strings.Contains(strings.ToLower(stderr), "illegal instruction")
}
