// Package llm provides the Ollama language-model adapter.
// It implements ports.LLMService.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/nmrocha/munirag-go/internal/domain/entities"
	"github.com/nmrocha/munirag-go/internal/logger"
)

// OllamaAdapter implements ports.LLMService using the Ollama generate API.
// The call is synchronous and can run for minutes; the orchestrator bounds
// how many run concurrently.
type OllamaAdapter struct {
	baseURL    string
	model      string
	client     *http.Client
	maxRetries int
}

// NewOllamaAdapter creates a new Ollama LLM adapter. maxRetries bounds
// how often a failed call is retried before the error is surfaced.
func NewOllamaAdapter(baseURL, model string, timeout time.Duration, maxRetries int) *OllamaAdapter {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if model == "" {
		model = "llama2:latest"
	}
	if timeout <= 0 {
		timeout = 300 * time.Second
	}
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &OllamaAdapter{
		baseURL:    baseURL,
		model:      model,
		client:     &http.Client{Timeout: timeout},
		maxRetries: maxRetries,
	}
}

// ollamaGenerateRequest is the Ollama generate API request.
type ollamaGenerateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

// ollamaGenerateResponse is the Ollama generate API response.
type ollamaGenerateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// Generate produces a completion for the prompt. Transport failures are
// classified as entities.ErrModelUnavailable or entities.ErrModelTimeout
// and retried at most maxRetries times; timeouts are never retried.
func (a *OllamaAdapter) Generate(ctx context.Context, prompt string) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= a.maxRetries; attempt++ {
		if attempt > 0 {
			logger.Warn("retrying language-model call (attempt %d): %v", attempt+1, lastErr)
		}
		answer, err := a.generateOnce(ctx, prompt)
		if err == nil {
			return answer, nil
		}
		lastErr = err
		if errors.Is(err, entities.ErrModelTimeout) || ctx.Err() != nil {
			break
		}
	}
	return "", lastErr
}

func (a *OllamaAdapter) generateOnce(ctx context.Context, prompt string) (string, error) {
	reqBody := ollamaGenerateRequest{
		Model:  a.model,
		Prompt: prompt,
		Stream: false,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", a.baseURL+"/api/generate", bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := a.client.Do(req)
	if err != nil {
		return "", classifyTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", entities.ErrModelUnavailable, resp.StatusCode)
	}

	var genResp ollamaGenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return "", fmt.Errorf("%w: decoding response: %v", entities.ErrModelUnavailable, err)
	}

	logger.Debug("language model answered in %s", time.Since(start))
	return genResp.Response, nil
}

// classifyTransportError maps client errors onto the domain taxonomy so
// a timeout is never conflated with an unreachable backend.
func classifyTransportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", entities.ErrModelTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", entities.ErrModelTimeout, err)
	}
	return fmt.Errorf("%w: %v", entities.ErrModelUnavailable, err)
}
