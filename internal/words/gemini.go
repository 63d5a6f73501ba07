package words

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"
)

const (
	geminiEndpoint = "https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent"

	// The free tier rate-limits aggressively; space requests out.
	minRequestInterval = time.Second
)

var errGeminiUnavailable = errors.New("gemini api key not configured")

// GeminiClient generates words through the Gemini REST API. It is safe for
// concurrent use; requests are spaced at least a second apart.
type GeminiClient struct {
	apiKey string
	model  string
	http   *http.Client

	mu          sync.Mutex
	lastRequest time.Time
}

func NewGeminiClient(apiKey, model string) *GeminiClient {
	if model == "" {
		model = "gemini-1.5-flash"
	}
	return &GeminiClient{
		apiKey: apiKey,
		model:  model,
		http:   &http.Client{Timeout: 10 * time.Second},
	}
}

// Available reports whether the client is configured with an API key.
func (c *GeminiClient) Available() bool {
	return c != nil && c.apiKey != ""
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// GenerateWord asks the model for one common Spanish noun in the given
// category (any category when empty), expecting a bare JSON object back.
func (c *GeminiClient) GenerateWord(ctx context.Context, category string) (Word, error) {
	if !c.Available() {
		return Word{}, errGeminiUnavailable
	}
	c.waitForRateLimit()

	prompt := "Genera una palabra común en español para un juego de adivinanzas. " +
		"Responde únicamente con JSON, sin markdown: {\"word\": \"...\", \"category\": \"...\"}."
	if category != "" {
		prompt += " La categoría debe ser: " + category + "."
	} else {
		prompt += " Elige una categoría entre: " + strings.Join(Categories(), ", ") + "."
	}

	body, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	})
	if err != nil {
		return Word{}, err
	}

	url := fmt.Sprintf(geminiEndpoint, c.model) + "?key=" + c.apiKey
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Word{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Word{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Word{}, fmt.Errorf("gemini request failed: %s", resp.Status)
	}

	var decoded geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return Word{}, err
	}
	if len(decoded.Candidates) == 0 || len(decoded.Candidates[0].Content.Parts) == 0 {
		return Word{}, errors.New("gemini returned no candidates")
	}

	return parseGeneratedWord(decoded.Candidates[0].Content.Parts[0].Text)
}

// parseGeneratedWord extracts the {word, category} object from the model
// output, tolerating markdown code fences around it.
func parseGeneratedWord(text string) (Word, error) {
	text = strings.TrimSpace(text)
	if start := strings.Index(text, "{"); start >= 0 {
		if end := strings.LastIndex(text, "}"); end > start {
			text = text[start : end+1]
		}
	}

	var w Word
	if err := json.Unmarshal([]byte(text), &w); err != nil {
		return Word{}, fmt.Errorf("unparseable gemini output: %w", err)
	}
	w.Word = strings.TrimSpace(w.Word)
	w.Category = strings.TrimSpace(w.Category)
	if w.Word == "" {
		return Word{}, errors.New("gemini returned an empty word")
	}
	return w, nil
}

func (c *GeminiClient) waitForRateLimit() {
	c.mu.Lock()
	wait := minRequestInterval - time.Since(c.lastRequest)
	if wait > 0 {
		c.lastRequest = c.lastRequest.Add(minRequestInterval)
	} else {
		c.lastRequest = time.Now()
	}
	c.mu.Unlock()

	if wait > 0 {
		time.Sleep(wait)
	}
}
