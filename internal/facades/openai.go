package facades

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/sbilibin2017/filekit/internal/logger"
)

const (
	openaiDefaultBaseURL = "https://api.openai.com/v1"
	openaiBatchSize      = 2048
	openaiMaxRetries     = 3
)

// OpenAIFacade calls the OpenAI embeddings and chat completions endpoints.
type OpenAIFacade struct {
	apiKey         string
	baseURL        string
	embeddingModel string
	chatModel      string
	client         *http.Client
	initialDelay   time.Duration
}

// NewOpenAIFacade creates a facade. An empty baseURL selects the public API.
func NewOpenAIFacade(apiKey, baseURL, embeddingModel, chatModel string, timeout time.Duration) *OpenAIFacade {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = openaiDefaultBaseURL
	}
	return &OpenAIFacade{
		apiKey:         apiKey,
		baseURL:        baseURL,
		embeddingModel: embeddingModel,
		chatModel:      chatModel,
		client:         &http.Client{Timeout: timeout},
		initialDelay:   time.Second,
	}
}

type embeddingRequest struct {
	Input []string `json:"input"`
	Model string   `json:"model"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type openaiError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// EmbedTexts returns one embedding per text, in input order.
func (f *OpenAIFacade) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, errors.New("no texts provided")
	}

	var all [][]float32
	for start := 0; start < len(texts); start += openaiBatchSize {
		end := min(start+openaiBatchSize, len(texts))

		var resp embeddingResponse
		err := f.post(ctx, "/embeddings", embeddingRequest{Input: texts[start:end], Model: f.embeddingModel}, &resp)
		if err != nil {
			logger.Log.Errorw("embedding request failed", "batch_start", start, "batch_end", end, "error", err)
			return nil, err
		}
		if len(resp.Data) != end-start {
			return nil, fmt.Errorf("expected %d embeddings, got %d", end-start, len(resp.Data))
		}

		batch := make([][]float32, len(resp.Data))
		for _, d := range resp.Data {
			if d.Index < 0 || d.Index >= len(batch) {
				return nil, fmt.Errorf("invalid embedding index: %d", d.Index)
			}
			batch[d.Index] = d.Embedding
		}
		all = append(all, batch...)
	}
	return all, nil
}

// Complete sends a system and user message and returns the assistant reply.
func (f *OpenAIFacade) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	messages := make([]chatMessage, 0, 2)
	if strings.TrimSpace(systemPrompt) != "" {
		messages = append(messages, chatMessage{Role: "system", Content: systemPrompt})
	}
	messages = append(messages, chatMessage{Role: "user", Content: userPrompt})

	var resp chatResponse
	if err := f.post(ctx, "/chat/completions", chatRequest{Model: f.chatModel, Messages: messages}, &resp); err != nil {
		logger.Log.Errorw("chat completion failed", "model", f.chatModel, "error", err)
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// post sends a JSON request, retrying 429 and 5xx answers with exponential backoff.
func (f *OpenAIFacade) post(ctx context.Context, path string, payload, out any) error {
	if f.apiKey == "" {
		return errors.New("OPENAI_API_KEY not set")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < openaiMaxRetries; attempt++ {
		if attempt > 0 {
			delay := time.Duration(math.Pow(2, float64(attempt-1))) * f.initialDelay
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.baseURL+path, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+f.apiKey)
		req.Header.Set("Content-Type", "application/json")

		resp, err := f.client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("HTTP request failed: %w", err)
			continue
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("failed to read response body: %w", err)
			continue
		}

		if resp.StatusCode != http.StatusOK {
			var apiErr openaiError
			if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error.Message != "" {
				lastErr = fmt.Errorf("OpenAI API error (%d): %s", resp.StatusCode, apiErr.Error.Message)
			} else {
				lastErr = fmt.Errorf("OpenAI API error (%d): %s", resp.StatusCode, string(respBody))
			}
			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
				continue
			}
			return lastErr
		}

		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
		return nil
	}

	return fmt.Errorf("max retries (%d) exceeded: %w", openaiMaxRetries, lastErr)
}
