package gemini

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cheerforge/cheerforge/internal/config"
	"github.com/cheerforge/cheerforge/internal/generation"
)

// Retry defaults used when the configuration carries out-of-range values.
const (
	defaultMaxRetries        = 3
	defaultRetryDelaySeconds = 2
)

// validateConfig checks that the API key and model name are set. Out-of-range
// retry settings are not fatal; they are logged and replaced with defaults
// when the model is built.
func validateConfig(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig) error {
	if cfg.GeminiAPIKey == "" {
		return fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}
	if cfg.TextModel == "" {
		return fmt.Errorf("%w: text model name cannot be empty", generation.ErrInvalidConfig)
	}

	if cfg.MaxRetries < 0 {
		logger.WarnContext(ctx, "Invalid MaxRetries value",
			"value", cfg.MaxRetries,
			"action", "using default value")
	}
	if cfg.RetryDelaySeconds < 1 {
		logger.WarnContext(ctx, "Invalid RetryDelaySeconds value",
			"value", cfg.RetryDelaySeconds,
			"action", "using default value")
	}
	return nil
}

// retrySettings returns the effective retry count and base delay.
func retrySettings(cfg config.LLMConfig) (int, int) {
	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = defaultMaxRetries
	}
	delay := cfg.RetryDelaySeconds
	if delay < 1 {
		delay = defaultRetryDelaySeconds
	}
	return maxRetries, delay
}
