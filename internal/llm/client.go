// Package llm provides the model completion collaborator. Every stage
// talks to the model through Client and treats an empty or unparseable
// response as an expected outcome, surfaced via ErrEmptyResponse.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// DefaultModel is the Gemini model used unless configured otherwise.
const DefaultModel = "gemini-2.0-flash"

// ErrEmptyResponse marks a completion that came back empty or could not
// be parsed into the requested shape. It is transient: callers retry
// within their stage budget rather than failing the job.
var ErrEmptyResponse = errors.New("empty model response")

// IsEmpty reports whether err is an empty/unparseable completion.
func IsEmpty(err error) bool {
	return errors.Is(err, ErrEmptyResponse)
}

// Client is an abstraction over model providers. Complete sends a
// system and user prompt and decodes the JSON response into out.
type Client interface {
	Complete(ctx context.Context, system, user string, out any) error
	Close() error
}

// GeminiClient implements Client for Google Gemini.
type GeminiClient struct {
	client *genai.Client
	model  string
}

// NewGeminiClient creates a Gemini-backed client. An empty model name
// uses DefaultModel.
func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if model == "" {
		model = DefaultModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{client: client, model: model}, nil
}

// Complete generates a JSON completion and decodes it into out.
func (c *GeminiClient) Complete(ctx context.Context, system, user string, out any) error {
	model := c.client.GenerativeModel(c.model)
	model.SetTemperature(0.1) // Low temperature for consistent output
	model.ResponseMIMEType = "application/json"
	if system != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	}

	resp, err := model.GenerateContent(ctx, genai.Text(user))
	if err != nil {
		return fmt.Errorf("failed to generate content: %w", err)
	}

	text, err := extractText(resp)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrEmptyResponse, err)
	}

	return DecodeInto(text, out)
}

// Close releases resources held by the client.
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// DecodeInto strips markdown fences and unmarshals a model response.
// A response that does not parse is reported as ErrEmptyResponse.
func DecodeInto(text string, out any) error {
	cleaned := cleanJSONBlock(text)
	if cleaned == "" {
		return ErrEmptyResponse
	}
	if err := json.Unmarshal([]byte(cleaned), out); err != nil {
		return fmt.Errorf("%w: %v", ErrEmptyResponse, err)
	}
	return nil
}

// extractText collects the text parts of the first candidate.
func extractText(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("no content in response")
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("no text parts in response")
	}

	return strings.Join(parts, ""), nil
}

// cleanJSONBlock removes markdown code block wrappers from JSON.
func cleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}
