package whisper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const verboseTranscription = `{
  "task": "transcribe",
  "language": "english",
  "duration": 4.25,
  "text": "Hello there. General Kenobi.",
  "segments": [
    {"id": 0, "seek": 0, "start": 0.0, "end": 1.5, "text": " Hello there.", "tokens": [1], "temperature": 0, "avg_logprob": -0.1, "compression_ratio": 1.0, "no_speech_prob": 0.01},
    {"id": 1, "seek": 0, "start": 1.5, "end": 4.25, "text": " General Kenobi.", "tokens": [2], "temperature": 0, "avg_logprob": -0.1, "compression_ratio": 1.0, "no_speech_prob": 0.01}
  ]
}`

func TestNewAPIEngineRequiresKey(t *testing.T) {
	t.Parallel()

	_, err := NewAPIEngine(APIConfig{}, nil)
	require.Error(t, err)
}

func TestAPIEngineTranscribe(t *testing.T) {
	t.Parallel()

	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(verboseTranscription))
	}))
	defer server.Close()

	media := filepath.Join(t.TempDir(), "talk.mp4")
	require.NoError(t, os.WriteFile(media, []byte("fake video"), 0o644))

	engine, err := NewAPIEngine(APIConfig{APIKey: "sk-test", BaseURL: server.URL + "/v1"}, nil)
	require.NoError(t, err)

	result, err := engine.Transcribe(context.Background(), Request{MediaPath: media, BeamSize: DefaultBeamSize})
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(gotPath, "/audio/transcriptions"), gotPath)
	require.Equal(t, "english", result.Info.Language)

	var texts []string
	for seg, err := range result.Segments {
		require.NoError(t, err)
		texts = append(texts, seg.Text)
	}
	require.Equal(t, []string{" Hello there.", " General Kenobi."}, texts)
}

func TestAPIEngineTranscribePropagatesServerError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error": {"message": "bad file", "type": "invalid_request_error"}}`))
	}))
	defer server.Close()

	media := filepath.Join(t.TempDir(), "talk.mp4")
	require.NoError(t, os.WriteFile(media, []byte("fake video"), 0o644))

	engine, err := NewAPIEngine(APIConfig{APIKey: "sk-test", BaseURL: server.URL + "/v1"}, nil)
	require.NoError(t, err)

	_, err = engine.Transcribe(context.Background(), Request{MediaPath: media})
	require.Error(t, err)
	require.Contains(t, err.Error(), "transcription API error")
}
