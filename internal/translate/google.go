package translate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultGoogleBaseURL = "https://translate.googleapis.com"

// Google talks to the keyless web translation endpoint.
type Google struct {
	baseURL string
	client  *http.Client
}

func NewGoogle(baseURL string, client *http.Client) *Google {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultGoogleBaseURL
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Google{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

func (g *Google) Name() string {
	return "google"
}

func (g *Google) Translate(ctx context.Context, text, target string) (string, error) {
	query := url.Values{}
	query.Set("client", "gtx")
	query.Set("sl", "auto")
	query.Set("tl", target)
	query.Set("dt", "t")
	query.Set("q", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/translate_a/single?"+query.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("build translation request: %w", err)
	}
	req.Header.Set("User-Agent", "vidsub/1")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("translation request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read translation response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("translation request failed: status %d", resp.StatusCode)
	}

	return parseGoogleResponse(body)
}

// parseGoogleResponse joins the translated chunks of a response shaped like
// [[["Bonjour","Hello",...],["le monde","world",...]],null,"en",...].
func parseGoogleResponse(body []byte) (string, error) {
	var top []json.RawMessage
	if err := json.Unmarshal(body, &top); err != nil {
		return "", fmt.Errorf("decode translation response: %w", err)
	}
	if len(top) == 0 {
		return "", errors.New("decode translation response: empty payload")
	}

	var chunks []json.RawMessage
	if err := json.Unmarshal(top[0], &chunks); err != nil {
		return "", fmt.Errorf("decode translation chunks: %w", err)
	}

	var b strings.Builder
	for _, raw := range chunks {
		var chunk []json.RawMessage
		if err := json.Unmarshal(raw, &chunk); err != nil || len(chunk) == 0 {
			continue
		}
		var part string
		if err := json.Unmarshal(chunk[0], &part); err != nil {
			continue
		}
		b.WriteString(part)
	}

	return b.String(), nil
}
