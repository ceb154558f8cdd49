// Package genai is a thin client for the Gemini generateContent API. The
// rest of the system consumes it through plain generate functions, so any
// upstream can be swapped in.
package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"
)

// ErrGeneration covers any upstream failure: transport, non-200 status, or
// an unusable response body. The caller does not retry.
var ErrGeneration = errors.New("text generation failed")

const defaultEndpoint = "https://generativelanguage.googleapis.com/v1beta"

var fenceRe = regexp.MustCompile("(?s)^```(?:\\w*)?\\s*\n?(.*?)\n?\\s*```$")

// Client calls one Gemini model.
type Client struct {
	endpoint string
	apiKey   string
	model    string
	http     *http.Client
}

// NewClient builds a client. endpoint is overridable for tests; empty
// selects the public API.
func NewClient(apiKey, model, endpoint string, timeout time.Duration) *Client {
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		endpoint: strings.TrimSuffix(endpoint, "/"),
		apiKey:   apiKey,
		model:    model,
		http:     &http.Client{Timeout: timeout},
	}
}

type generateRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature      float64 `json:"temperature"`
	ResponseMIMEType string  `json:"responseMimeType,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// GenerateText returns plain text for the prompt.
func (c *Client) GenerateText(ctx context.Context, prompt string, temperature float64) (string, error) {
	text, err := c.generate(ctx, prompt, &generationConfig{Temperature: temperature})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// GenerateJSON asks for a JSON response and strips a markdown fence if the
// model wrapped its output in one.
func (c *Client) GenerateJSON(ctx context.Context, prompt string, temperature float64) (string, error) {
	text, err := c.generate(ctx, prompt, &generationConfig{
		Temperature:      temperature,
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return "", err
	}
	return StripFence(text), nil
}

// StripFence removes a surrounding markdown code fence, if present.
func StripFence(text string) string {
	text = strings.TrimSpace(text)
	if m := fenceRe.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return text
}

func (c *Client) generate(ctx context.Context, prompt string, cfg *generationConfig) (string, error) {
	body, err := json.Marshal(generateRequest{
		Contents:         []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: cfg,
	})
	if err != nil {
		return "", fmt.Errorf("%w: encode request: %v", ErrGeneration, err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.endpoint, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("%w: status %d: %s", ErrGeneration, resp.StatusCode, snippet)
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", ErrGeneration, err)
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%w: empty response", ErrGeneration)
	}
	return out.Candidates[0].Content.Parts[0].Text, nil
}
