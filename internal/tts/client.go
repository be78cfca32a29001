// Package tts synthesizes the spoken announcements of the live lesson view
// and the alert tone played when a timed step expires.
package tts

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Client calls the Google Cloud Text-to-Speech REST API and caches results
// on disk keyed by a hash of the text and language.
type Client struct {
	apiKey     string
	cacheDir   string
	mu         sync.Mutex
	httpClient *http.Client
}

// NewClient creates a TTS client. Synthesis is disabled when apiKey is
// empty; Speak then returns an error and callers fall back to the alert
// tone alone.
func NewClient(apiKey, cacheDir string) *Client {
	os.MkdirAll(cacheDir, 0o755)
	return &Client{
		apiKey:   apiKey,
		cacheDir: cacheDir,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *Client) cacheKey(text, lang string) string {
	h := sha256.Sum256([]byte(lang + ":" + text))
	return hex.EncodeToString(h[:16])
}

// voiceFor maps the lesson language to a Cloud TTS voice locale.
func voiceFor(lang string) string {
	if lang == "ar" {
		return "ar-XA"
	}
	return "en-US"
}

// Speak returns MP3 audio for the given announcement, from cache when
// possible.
func (c *Client) Speak(text, lang string) ([]byte, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("TTS disabled: no API key")
	}

	key := c.cacheKey(text, lang)
	cachePath := filepath.Join(c.cacheDir, key+".mp3")
	if data, err := os.ReadFile(cachePath); err == nil {
		return data, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if data, err := os.ReadFile(cachePath); err == nil {
		return data, nil
	}

	data, err := c.synthesize(text, lang)
	if err != nil {
		return nil, err
	}
	os.WriteFile(cachePath, data, 0o644)
	return data, nil
}

func (c *Client) synthesize(text, lang string) ([]byte, error) {
	url := "https://texttospeech.googleapis.com/v1/text:synthesize?key=" + c.apiKey

	reqBody := map[string]interface{}{
		"input": map[string]string{
			"text": text,
		},
		"voice": map[string]interface{}{
			"languageCode": voiceFor(lang),
			"ssmlGender":   "FEMALE",
		},
		"audioConfig": map[string]string{
			"audioEncoding": "MP3",
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	resp, err := c.httpClient.Post(url, "application/json", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("TTS request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("TTS API error %d: %s", resp.StatusCode, string(body))
	}

	var result struct {
		AudioContent string `json:"audioContent"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	audio, err := base64.StdEncoding.DecodeString(result.AudioContent)
	if err != nil {
		return nil, fmt.Errorf("decode audio: %w", err)
	}

	return audio, nil
}
