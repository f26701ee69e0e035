package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
)

const (
	geminiEmbeddingAPI = "https://generativelanguage.googleapis.com/v1beta/models/gemini-embedding-001:embedContent"

	defaultGeminiModel = "gemini-1.5-flash"
	embeddingDims      = 768

	maxRetries     = 3
	initialBackoff = time.Second
)

// GeminiClient generates narrative text through the Gemini API and embeds
// text through the embedding endpoint. It satisfies both Generator and
// Embedder so one configured backend covers generation and indexing.
type GeminiClient struct {
	client      *genai.Client
	apiKey      string
	model       string
	temperature float32
	httpClient  *http.Client
}

// NewGeminiClient creates a Gemini-backed narrative and embedding client
func NewGeminiClient(client *genai.Client, apiKey string) *GeminiClient {
	return &GeminiClient{
		client:      client,
		apiKey:      apiKey,
		model:       defaultGeminiModel,
		temperature: 0.1,
		httpClient:  &http.Client{Timeout: 120 * time.Second},
	}
}

// Name returns the generation model identifier
func (c *GeminiClient) Name() string {
	return c.model
}

// Generate produces text from a system/user prompt pair, retrying transient
// failures with exponential backoff
func (c *GeminiClient) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	model := c.client.GenerativeModel(c.model)
	model.SetTemperature(c.temperature)
	if systemPrompt != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(systemPrompt)}}
	}

	var lastErr error
	backoff := initialBackoff
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(backoff)
			backoff *= 2
		}

		resp, err := model.GenerateContent(ctx, genai.Text(userPrompt))
		if err != nil {
			lastErr = err
			continue
		}

		text := collectText(resp)
		if text != "" {
			return text, nil
		}
		lastErr = fmt.Errorf("%w: empty response", ErrGenerationFailed)
	}

	return "", fmt.Errorf("generation failed after %d attempts: %w", maxRetries, lastErr)
}

func collectText(resp *genai.GenerateContentResponse) string {
	var b strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				b.WriteString(string(text))
			}
		}
	}
	return b.String()
}

// Dimensions returns the fixed embedding dimensionality
func (c *GeminiClient) Dimensions() int {
	return embeddingDims
}

type geminiEmbeddingRequest struct {
	Model                string             `json:"model"`
	Content              geminiContentInput `json:"content"`
	TaskType             string             `json:"task_type,omitempty"`
	OutputDimensionality int                `json:"output_dimensionality,omitempty"`
}

type geminiContentInput struct {
	Parts []geminiPartInput `json:"parts"`
}

type geminiPartInput struct {
	Text string `json:"text"`
}

type geminiEmbeddingResponse struct {
	Embedding struct {
		Values []float64 `json:"values"`
	} `json:"embedding"`
}

// Embed generates a 768-dimensional L2-normalized embedding. The same task
// type is used for documents and queries so both live in one embedding space.
func (c *GeminiClient) Embed(ctx context.Context, text string) ([]float64, error) {
	reqBody := geminiEmbeddingRequest{
		Model: "models/gemini-embedding-001",
		Content: geminiContentInput{
			Parts: []geminiPartInput{{Text: text}},
		},
		TaskType:             "SEMANTIC_SIMILARITY",
		OutputDimensionality: embeddingDims,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	var lastErr error
	backoff := initialBackoff
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(backoff)
			backoff *= 2
		}

		req, err := http.NewRequestWithContext(ctx, "POST", geminiEmbeddingAPI, bytes.NewBuffer(jsonData))
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("x-goog-api-key", c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			// Bad requests and auth failures will not heal on retry
			if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnauthorized {
				return nil, fmt.Errorf("embedding API error: %d - %s", resp.StatusCode, string(body))
			}
			lastErr = fmt.Errorf("embedding API error: %d", resp.StatusCode)
			continue
		}

		var apiResp geminiEmbeddingResponse
		err = json.NewDecoder(resp.Body).Decode(&apiResp)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("failed to decode response: %w", err)
			continue
		}

		if len(apiResp.Embedding.Values) == 0 {
			lastErr = ErrEmbeddingFailed
			continue
		}

		embedding := apiResp.Embedding.Values
		normalizeVector(embedding)
		return embedding, nil
	}

	return nil, fmt.Errorf("embedding failed after %d attempts: %w", maxRetries, lastErr)
}

// normalizeVector scales a vector to unit L2 norm in place
func normalizeVector(v []float64) {
	var sumSq float64
	for _, x := range v {
		sumSq += x * x
	}
	if sumSq == 0 {
		return
	}

	norm := math.Sqrt(sumSq)
	for i := range v {
		v[i] /= norm
	}
}
