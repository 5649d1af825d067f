// Package genai assesses applications by asking a generative model service for
// a result in the same shape the local engine produces.
package genai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"visa-workers/internal/assessment"
	"visa-workers/internal/assessor"
	httpclient "visa-workers/internal/common/http"
	"visa-workers/internal/common/logger"
	"visa-workers/internal/models"
)

const generatePath = "/api/ai/generate"

var (
	ErrTimeout         = assessor.ErrTimeout
	ErrFailed          = assessor.ErrFailed
	ErrInvalidResponse = assessor.ErrInvalidResponse
)

type Config struct {
	BaseURL     string
	APIKey      string
	Timeout     time.Duration
	MaxRetries  int
	MaxTokens   int
	Temperature float64
}

type Assessor struct {
	config *Config
	client *httpclient.Client
	logger logger.Logger
}

var _ assessor.Assessor = (*Assessor)(nil)

func New(config *Config, client *httpclient.Client, log logger.Logger) *Assessor {
	if client == nil {
		client = httpclient.NewClient(0)
	}
	return &Assessor{
		config: config,
		client: client,
		logger: log.With(map[string]interface{}{"assessor": assessor.NameGenAI}),
	}
}

func (a *Assessor) Name() string { return assessor.NameGenAI }

type generateRequest struct {
	Prompt      string                 `json:"prompt"`
	Context     map[string]interface{} `json:"context"`
	MaxTokens   int                    `json:"max_tokens"`
	Temperature float64                `json:"temperature"`
}

type generateResponse struct {
	Text string `json:"text"`
}

// Assess validates the input locally, then asks the model. Requests with missing
// documents or a malformed profile never reach the network.
func (a *Assessor) Assess(ctx context.Context, input models.AnalysisInput) (*models.AnalysisResult, error) {
	docs, err := assessment.ValidateDocuments(input.Documents)
	if err != nil {
		return nil, err
	}

	profile, err := assessment.ParseProfile(input.Profile)
	if err != nil {
		return nil, err
	}

	if a.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.config.Timeout)
		defer cancel()
	}

	text, err := a.generate(ctx, generateRequest{
		Prompt: buildPrompt(profile, docs),
		Context: map[string]interface{}{
			"profile":   profile,
			"documents": input.Documents,
		},
		MaxTokens:   a.config.MaxTokens,
		Temperature: a.config.Temperature,
	})
	if err != nil {
		return nil, err
	}

	result, err := parseResult(text, profile)
	if err != nil {
		a.logger.Warn("model returned an unusable result", map[string]interface{}{
			"error":      err.Error(),
			"textLength": len(text),
		})
		return nil, err
	}
	return result, nil
}

func (a *Assessor) generate(ctx context.Context, payload generateRequest) (string, error) {
	url := strings.TrimRight(a.config.BaseURL, "/") + generatePath

	headers := map[string]string{}
	if a.config.APIKey != "" {
		headers["Authorization"] = "Bearer " + a.config.APIKey
	}

	var lastErr error
	for attempt := 0; attempt <= a.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(100*(1<<(attempt-1))) * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return "", contextError(ctx, lastErr)
			}
		}

		resp, err := a.client.PostJSON(ctx, url, payload, headers)
		if err != nil {
			if ctx.Err() != nil {
				return "", contextError(ctx, err)
			}
			lastErr = err
			continue
		}

		if resp.StatusCode == http.StatusOK {
			var out generateResponse
			if err := json.Unmarshal(resp.Body, &out); err != nil {
				return "", fmt.Errorf("%w: decode error: %v", ErrInvalidResponse, err)
			}
			return out.Text, nil
		}

		lastErr = fmt.Errorf("status %d", resp.StatusCode)
		if !retryableStatus(resp.StatusCode) {
			break
		}

		a.logger.Warn("generate request failed", map[string]interface{}{
			"attempt": attempt + 1,
			"status":  resp.StatusCode,
		})
	}

	return "", fmt.Errorf("%w: %v", ErrFailed, lastErr)
}

func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}

func contextError(ctx context.Context, cause error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		if cause != nil {
			return fmt.Errorf("%w: %v", ErrTimeout, cause)
		}
		return ErrTimeout
	}
	return fmt.Errorf("%w: %v", ErrFailed, ctx.Err())
}
