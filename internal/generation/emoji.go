package generation

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cheerforge/cheerforge/internal/domain"
)

const (
	emojiProgress = 30

	// emojiCaptionRunes is how much of the prompt is printed under the face.
	emojiCaptionRunes = 10
)

// EmojiGenerator renders a simple captioned emoji. It has no model backend
// and always waits the simulated latency before drawing.
type EmojiGenerator struct {
	renderer ImageRenderer
	cfg      Config
	logger   *slog.Logger
}

// NewEmojiGenerator creates an emoji recipe.
func NewEmojiGenerator(renderer ImageRenderer, cfg Config, logger *slog.Logger) *EmojiGenerator {
	return &EmojiGenerator{
		renderer: renderer,
		cfg:      cfg,
		logger:   logger.With("recipe", domain.KindEmoji),
	}
}

// Generate implements Generator.
func (g *EmojiGenerator) Generate(ctx context.Context, req Request, progress ProgressFunc) (*Result, error) {
	report(progress, emojiProgress)

	if err := sleepCtx(ctx, g.cfg.SimulatedLatency); err != nil {
		return nil, err
	}

	if g.renderer == nil {
		return nil, fmt.Errorf("%w: no image renderer configured", ErrInvalidConfig)
	}
	path, err := g.renderer.RenderEmoji(ctx, req.TaskID, truncateRunes(req.Prompt, emojiCaptionRunes))
	if err != nil {
		return nil, fmt.Errorf("%w: render emoji: %w", ErrGenerationFailed, err)
	}

	g.logger.DebugContext(ctx, "emoji rendered", "task_id", req.TaskID, "path", path)

	return &Result{
		OutputRef: path,
		Payload: EmojiPayload{
			Type:       domain.KindEmoji,
			ImagePath:  path,
			Prompt:     req.Prompt,
			Parameters: req.Parameters,
		},
	}, nil
}
