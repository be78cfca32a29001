// Package genai is the Gemini REST backend behind content generation. It
// implements the generation interfaces consumed by the pipeline and the
// deck editor. Every call is single-shot; callers decide whether to
// re-trigger a failed operation.
package genai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"smart-lesson/internal/models"
)

const (
	baseURL = "https://generativelanguage.googleapis.com/v1beta"

	// Text and JSON generation use the low-latency flash-lite tier; image
	// generation and multimodal input need the bigger models.
	textModel       = "gemini-flash-lite-latest"
	imageModel      = "gemini-2.5-flash-image"
	multimodalModel = "gemini-2.5-flash"
)

// Client calls the Gemini generateContent REST API.
type Client struct {
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a Gemini client.
func NewClient(apiKey string) *Client {
	return &Client{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type content struct {
	Parts []part `json:"parts"`
}

type generationConfig struct {
	ResponseMimeType string       `json:"responseMimeType,omitempty"`
	ImageConfig      *imageConfig `json:"imageConfig,omitempty"`
}

type imageConfig struct {
	AspectRatio string `json:"aspectRatio"`
}

type generateRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// generateContent performs one generateContent call and returns the first
// candidate's parts.
func (c *Client) generateContent(ctx context.Context, model string, req generateRequest) ([]part, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", baseURL, model, c.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var result generateResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		if result.Error != nil {
			return nil, fmt.Errorf("gemini API error %d: %s", result.Error.Code, result.Error.Message)
		}
		return nil, fmt.Errorf("gemini API error %d: %s", resp.StatusCode, string(respBody))
	}
	if len(result.Candidates) == 0 {
		return nil, fmt.Errorf("gemini returned no candidates")
	}
	return result.Candidates[0].Content.Parts, nil
}

// generateText runs a plain text prompt and returns the trimmed response.
func (c *Client) generateText(ctx context.Context, model, prompt string) (string, error) {
	parts, err := c.generateContent(ctx, model, generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", err
	}
	return joinText(parts), nil
}

// generateJSON runs a prompt in JSON mode and unmarshals the response into
// out.
func (c *Client) generateJSON(ctx context.Context, prompt string, out interface{}) error {
	parts, err := c.generateContent(ctx, textModel, generateRequest{
		Contents:         []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: &generationConfig{ResponseMimeType: "application/json"},
	})
	if err != nil {
		return err
	}
	text := joinText(parts)
	if err := json.Unmarshal([]byte(text), out); err != nil {
		return fmt.Errorf("parse generated JSON: %w", err)
	}
	return nil
}

func joinText(parts []part) string {
	var b strings.Builder
	for _, p := range parts {
		b.WriteString(p.Text)
	}
	return strings.TrimSpace(b.String())
}

// GenerateImage renders an image for the prompt and returns it as a data
// URI.
func (c *Client) GenerateImage(ctx context.Context, prompt, aspectRatio string) (string, error) {
	if aspectRatio == "" {
		aspectRatio = "16:9"
	}
	parts, err := c.generateContent(ctx, imageModel, generateRequest{
		Contents:         []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: &generationConfig{ImageConfig: &imageConfig{AspectRatio: aspectRatio}},
	})
	if err != nil {
		return "", err
	}
	for _, p := range parts {
		if p.InlineData != nil {
			mime := p.InlineData.MimeType
			if mime == "" {
				mime = "image/png"
			}
			return fmt.Sprintf("data:%s;base64,%s", mime, p.InlineData.Data), nil
		}
	}
	return "", fmt.Errorf("no image generated")
}

// TranscribeAudio transcribes a recording verbatim. Arabic, English, and
// mixed speech are all expected.
func (c *Client) TranscribeAudio(ctx context.Context, audio []byte, mimeType string) (string, error) {
	parts, err := c.generateContent(ctx, multimodalModel, generateRequest{
		Contents: []content{{Parts: []part{
			{Text: "Transcribe the following audio recording verbatim. It may contain Arabic or English or both. Do not summarize, just output the spoken text."},
			{InlineData: &inlineData{MimeType: mimeType, Data: base64.StdEncoding.EncodeToString(audio)}},
		}}},
	})
	if err != nil {
		return "", err
	}
	return joinText(parts), nil
}

// ExtractText performs OCR on an image, preserving layout and line breaks.
func (c *Client) ExtractText(ctx context.Context, image []byte, mimeType string) (string, error) {
	if mimeType == "" {
		mimeType = "image/png"
	}
	parts, err := c.generateContent(ctx, multimodalModel, generateRequest{
		Contents: []content{{Parts: []part{
			{Text: "OCR Task: Extract all text from this image exactly as it appears. The text may be in Arabic or English. Preserve the original layout and line breaks where possible. Do not provide any description or summary, just the raw text."},
			{InlineData: &inlineData{MimeType: mimeType, Data: base64.StdEncoding.EncodeToString(image)}},
		}}},
	})
	if err != nil {
		return "", err
	}
	return joinText(parts), nil
}

// AnalyzeImage answers a free-form question about an image.
func (c *Client) AnalyzeImage(ctx context.Context, image []byte, mimeType, prompt string) (string, error) {
	parts, err := c.generateContent(ctx, multimodalModel, generateRequest{
		Contents: []content{{Parts: []part{
			{Text: prompt},
			{InlineData: &inlineData{MimeType: mimeType, Data: base64.StdEncoding.EncodeToString(image)}},
		}}},
	})
	if err != nil {
		return "", err
	}
	return joinText(parts), nil
}

// RefineText rewrites a lesson-plan text segment per the instruction and
// returns only the rewritten text.
func (c *Client) RefineText(ctx context.Context, text, instruction string, gctx models.GenerationContext, subject string) (string, error) {
	return c.generateText(ctx, textModel, refinePrompt(text, instruction, gctx, subject))
}
