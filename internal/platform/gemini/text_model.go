package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/cheerforge/cheerforge/internal/config"
	"github.com/cheerforge/cheerforge/internal/generation"
	"google.golang.org/genai"
)

// contentFunc performs a single GenerateContent round trip.
type contentFunc func(ctx context.Context, prompt string) (*genai.GenerateContentResponse, error)

// TextModel implements generation.TextModel using the Gemini API.
// It is safe for concurrent use.
type TextModel struct {
	logger     *slog.Logger
	model      string
	maxRetries int
	baseDelay  time.Duration
	generate   contentFunc
}

var _ generation.TextModel = (*TextModel)(nil)

// NewTextModel validates cfg and creates a Gemini client for cfg.TextModel.
func NewTextModel(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig) (*TextModel, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if err := validateConfig(ctx, logger, cfg); err != nil {
		return nil, err
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v", generation.ErrInvalidConfig, err)
	}

	model := cfg.TextModel
	generate := func(ctx context.Context, prompt string) (*genai.GenerateContentResponse, error) {
		return client.Models.GenerateContent(ctx, model, genai.Text(prompt), &genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
		})
	}

	logger.InfoContext(ctx, "Gemini text model initialized", "model", model)
	return newTextModel(logger, cfg, generate), nil
}

func newTextModel(logger *slog.Logger, cfg config.LLMConfig, generate contentFunc) *TextModel {
	maxRetries, delaySeconds := retrySettings(cfg)
	return &TextModel{
		logger:     logger.With("component", "gemini", "model", cfg.TextModel),
		model:      cfg.TextModel,
		maxRetries: maxRetries,
		baseDelay:  time.Duration(delaySeconds) * time.Second,
		generate:   generate,
	}
}

// Name implements generation.TextModel.
func (m *TextModel) Name() string {
	return m.model
}

// GenerateText sends prompt to Gemini, retrying transient failures with
// exponential backoff and jitter. Safety blocks and empty answers are
// permanent and returned immediately.
func (m *TextModel) GenerateText(ctx context.Context, prompt string) (string, error) {
	if prompt == "" {
		return "", ErrEmptyPrompt
	}

	for attempt := 0; ; attempt++ {
		attemptNum := attempt + 1
		m.logger.DebugContext(ctx, "Making Gemini API call",
			"attempt", attemptNum,
			"max_attempts", m.maxRetries+1)

		resp, err := m.generate(ctx, prompt)
		if err == nil {
			text, extractErr := responseText(resp)
			if extractErr == nil {
				m.logger.DebugContext(ctx, "Gemini API call successful",
					"attempt", attemptNum,
					"response_length", len(text))
				return text, nil
			}
			m.logger.WarnContext(ctx, "Permanent error occurred, not retrying",
				"attempt", attemptNum,
				"error", extractErr)
			return "", extractErr
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}

		m.logger.ErrorContext(ctx, "Gemini API call failed",
			"attempt", attemptNum,
			"error", err)

		if attempt >= m.maxRetries {
			m.logger.WarnContext(ctx, "Maximum retry attempts reached",
				"max_retries", m.maxRetries)
			return "", fmt.Errorf("%w: exceeded maximum retry attempts (%d): %v",
				generation.ErrTransientFailure, m.maxRetries, err)
		}

		delay := backoff(m.baseDelay, attempt)
		m.logger.InfoContext(ctx, "Retrying after delay",
			"attempt", attemptNum,
			"delay", delay)

		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			m.logger.WarnContext(ctx, "API call cancelled during retry delay",
				"attempt", attemptNum,
				"ctx_err", ctx.Err())
			return "", fmt.Errorf("%w: %w", generation.ErrTransientFailure, ctx.Err())
		}
	}
}

// backoff returns base * 2^attempt scaled by a jitter factor in [0.5, 1.0).
func backoff(base time.Duration, attempt int) time.Duration {
	exp := float64(base) * math.Pow(2, float64(attempt))
	jitter := 0.5 + rand.Float64()*0.5
	return time.Duration(exp * jitter)
}

// responseText joins the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", fmt.Errorf("%w: nil response", generation.ErrInvalidResponse)
	}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("%w: prompt blocked: %s", generation.ErrContentBlocked, resp.PromptFeedback.BlockReason)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return "", fmt.Errorf("%w: no content generated", generation.ErrInvalidResponse)
	}

	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety {
		return "", fmt.Errorf("%w: content blocked by safety filters", generation.ErrContentBlocked)
	}
	if candidate.Content == nil {
		return "", fmt.Errorf("%w: empty content in response", generation.ErrInvalidResponse)
	}

	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		if part != nil && !part.Thought {
			sb.WriteString(part.Text)
		}
	}
	if strings.TrimSpace(sb.String()) == "" {
		return "", fmt.Errorf("%w: empty text in response", generation.ErrInvalidResponse)
	}
	return sb.String(), nil
}
