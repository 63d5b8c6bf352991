package whisper

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

const DefaultAPIModel = "whisper-1"

type APIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// APIEngine transcribes through the OpenAI audio transcription endpoint. The
// service does not report a detection confidence, so Info.Probability is 0.
type APIEngine struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

func NewAPIEngine(cfg APIConfig, logger *zap.Logger) (*APIEngine, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("OpenAI API key not provided")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = DefaultAPIModel
	}

	return &APIEngine{
		client: openai.NewClientWithConfig(clientConfig),
		model:  model,
		logger: logger,
	}, nil
}

// Transcribe uploads the media file as is; beam width is not configurable on
// the hosted API and is ignored.
func (e *APIEngine) Transcribe(ctx context.Context, req Request) (*Transcription, error) {
	if strings.TrimSpace(req.MediaPath) == "" {
		return nil, errors.New("media path is required")
	}

	audioReq := openai.AudioRequest{
		Model:    e.model,
		FilePath: req.MediaPath,
		Format:   openai.AudioResponseFormatVerboseJSON,
	}
	if lang := strings.TrimSpace(req.Language); lang != "" && lang != "auto" {
		audioReq.Language = lang
	}

	e.logger.Debug("uploading media for transcription", zap.String("media", req.MediaPath), zap.String("model", e.model))
	resp, err := e.client.CreateTranscription(ctx, audioReq)
	if err != nil {
		return nil, fmt.Errorf("transcription API error: %w", err)
	}

	segments := make([]Segment, 0, len(resp.Segments))
	for i, seg := range resp.Segments {
		segments = append(segments, Segment{
			Index: i + 1,
			Start: seg.Start,
			End:   seg.End,
			Text:  seg.Text,
		})
	}

	info := Info{Language: resp.Language}
	if audioReq.Language != "" {
		info = Info{Language: audioReq.Language, Probability: 1}
	}

	return &Transcription{Info: info, Segments: SliceSegments(segments)}, nil
}
