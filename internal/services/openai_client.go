package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"gorm.io/datatypes"

	"github.com/yungbote/labelsense-backend/internal/logger"
	"github.com/yungbote/labelsense-backend/internal/types"
)

// AnalysisRequest is the normalized request handed to the generation
// gateway on a cache miss.
type AnalysisRequest struct {
	Modality types.ScanModality
	// Input is the normalized textual form of the scan input. For image
	// scans it carries the base64-encoded payload.
	Input string
	// ProductName is set on the shared catalog path.
	ProductName string
}

// AnalysisResult is the opaque generation artifact plus the display name
// extracted from it for logging.
type AnalysisResult struct {
	Payload     datatypes.JSON
	DisplayName string
}

// AIClient is the external, non-deterministic, costly generation call. It is
// invoked at most once per resolved cache miss; retries below are transient
// HTTP retries inside a single logical call.
type AIClient interface {
	GenerateProductAnalysis(ctx context.Context, req AnalysisRequest) (*AnalysisResult, error)
}

type openAIClient struct {
	log        *logger.Logger
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client

	maxRetries int
}

func NewOpenAIClient(log *logger.Logger) (AIClient, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("missing OPENAI_API_KEY")
	}

	baseURL := os.Getenv("OPENAI_BASE_URL")
	if baseURL == "" {
		baseURL = "https://api.openai.com"
	}

	model := os.Getenv("OPENAI_MODEL")
	if model == "" {
		model = "gpt-5.2"
	}

	// IMPORTANT: default timeout higher for production generation workloads
	timeoutSec := 180
	if v := os.Getenv("OPENAI_TIMEOUT_SECONDS"); v != "" {
		if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && parsed > 0 {
			timeoutSec = parsed
		}
	}

	maxRetries := 4
	if v := os.Getenv("OPENAI_MAX_RETRIES"); v != "" {
		if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && parsed >= 0 {
			maxRetries = parsed
		}
	}

	return &openAIClient{
		log:        log.With("service", "OpenAIClient"),
		baseURL:    baseURL,
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: time.Duration(timeoutSec) * time.Second},
		maxRetries: maxRetries,
	}, nil
}

type openAIHTTPError struct {
	StatusCode int
	Body       string
}

func (e *openAIHTTPError) Error() string {
	return fmt.Sprintf("openai http %d: %s", e.StatusCode, e.Body)
}

func isRetryableHTTP(code int) bool {
	if code == 408 || code == 429 {
		return true
	}
	if code >= 500 && code <= 599 {
		return true
	}
	return false
}

func isRetryableErr(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return true
		}
	}
	var httpErr *openAIHTTPError
	if errors.As(err, &httpErr) {
		return isRetryableHTTP(httpErr.StatusCode)
	}
	return false
}

func jitterSleep(base time.Duration) time.Duration {
	// +/- 20%
	if base <= 0 {
		return 0
	}
	j := 0.2
	delta := base.Seconds() * j
	low := base.Seconds() - delta
	high := base.Seconds() + delta
	if low < 0 {
		low = 0
	}
	v := low + rand.Float64()*(high-low)
	return time.Duration(v * float64(time.Second))
}

func (c *openAIClient) doOnce(ctx context.Context, method, path string, body any) (*http.Response, []byte, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, err
	}

	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return resp, nil, readErr
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp, raw, &openAIHTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	return resp, raw, nil
}

func (c *openAIClient) do(ctx context.Context, method, path string, body any, out any) error {
	// exponential backoff: 1s, 2s, 4s, 8s (cap ~10s)
	backoff := 1 * time.Second

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		resp, raw, err := c.doOnce(ctx, method, path, body)
		if err == nil {
			if out == nil {
				return nil
			}
			if uErr := json.Unmarshal(raw, out); uErr != nil {
				return fmt.Errorf("openai decode error: %w; raw=%s", uErr, string(raw))
			}
			return nil
		}

		if !isRetryableErr(err) {
			return err
		}
		if attempt == c.maxRetries {
			return err
		}

		// Respect Retry-After when present
		sleepFor := backoff
		if resp != nil {
			ra := strings.TrimSpace(resp.Header.Get("Retry-After"))
			if ra != "" {
				if secs, parseErr := strconv.Atoi(ra); parseErr == nil && secs > 0 {
					sleepFor = time.Duration(secs) * time.Second
				}
			}
		}
		if sleepFor > 10*time.Second {
			sleepFor = 10 * time.Second
		}
		sleepFor = jitterSleep(sleepFor)

		c.log.Warn("OpenAI request retrying",
			"path", path,
			"attempt", attempt+1,
			"max_retries", c.maxRetries,
			"sleep", sleepFor.String(),
			"error", err.Error(),
		)

		time.Sleep(sleepFor)
		backoff *= 2
	}

	return fmt.Errorf("unreachable retry loop")
}

// ---- Responses JSON (Structured Outputs via text.format json_schema) ----

type responsesRequest struct {
	Model string `json:"model"`
	Input []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"input"`
	Text struct {
		Format map[string]any `json:"format"`
	} `json:"text"`
	Temperature float64 `json:"temperature,omitempty"`
}

type responsesResponse struct {
	Output []struct {
		Type    string `json:"type"`
		Role    string `json:"role,omitempty"`
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text,omitempty"`
		} `json:"content,omitempty"`
	} `json:"output"`
	Refusal string `json:"refusal,omitempty"`
}

const analysisSystemPrompt = `You are a consumer product analyst. Given a product reference, produce a structured safety and ingredient analysis.`

func analysisSchema() map[string]any {
	return map[string]any{
		"type": "json_schema",
		"name": "product_analysis",
		"schema": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"display_name": map[string]any{"type": "string"},
				"summary":      map[string]any{"type": "string"},
				"ingredients": map[string]any{
					"type":  "array",
					"items": map[string]any{"type": "string"},
				},
				"concerns": map[string]any{
					"type":  "array",
					"items": map[string]any{"type": "string"},
				},
			},
			"required":             []string{"display_name", "summary"},
			"additionalProperties": true,
		},
	}
}

func (c *openAIClient) GenerateProductAnalysis(ctx context.Context, req AnalysisRequest) (*AnalysisResult, error) {
	userPrompt := fmt.Sprintf("Modality: %s\nInput: %s", req.Modality, req.Input)
	if req.ProductName != "" {
		userPrompt = fmt.Sprintf("Product: %s\n%s", req.ProductName, userPrompt)
	}

	body := responsesRequest{Model: c.model}
	body.Input = []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}{
		{Role: "system", Content: analysisSystemPrompt},
		{Role: "user", Content: userPrompt},
	}
	body.Text.Format = analysisSchema()

	var resp responsesResponse
	if err := c.do(ctx, "POST", "/v1/responses", body, &resp); err != nil {
		return nil, err
	}

	var text string
	for _, out := range resp.Output {
		for _, content := range out.Content {
			if content.Text != "" {
				text = content.Text
			}
		}
	}
	if text == "" {
		return nil, fmt.Errorf("openai returned no output text (refusal=%q)", resp.Refusal)
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		return nil, fmt.Errorf("openai analysis decode error: %w", err)
	}
	displayName, _ := payload["display_name"].(string)

	return &AnalysisResult{
		Payload:     datatypes.JSON(text),
		DisplayName: displayName,
	}, nil
}
