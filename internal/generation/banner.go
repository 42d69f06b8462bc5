package generation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cheerforge/cheerforge/internal/domain"
)

// Banner progress milestones
const (
	bannerProgressDesign   = 30
	bannerProgressRender   = 60
	bannerProgressRendered = 90
)

// BannerGenerator asks the text model for a banner design and renders it.
type BannerGenerator struct {
	model    TextModel
	renderer ImageRenderer
	prompts  *Prompts
	cfg      Config
	logger   *slog.Logger
}

// NewBannerGenerator creates a banner recipe. model may be nil.
func NewBannerGenerator(
	model TextModel,
	renderer ImageRenderer,
	prompts *Prompts,
	cfg Config,
	logger *slog.Logger,
) *BannerGenerator {
	return &BannerGenerator{
		model:    model,
		renderer: renderer,
		prompts:  prompts,
		cfg:      cfg,
		logger:   logger.With("recipe", domain.KindBanner),
	}
}

// Generate implements Generator.
func (g *BannerGenerator) Generate(ctx context.Context, req Request, progress ProgressFunc) (*Result, error) {
	report(progress, bannerProgressDesign)

	design, err := g.design(ctx, req)
	if err != nil {
		return nil, err
	}

	report(progress, bannerProgressRender)

	if g.renderer == nil {
		return nil, fmt.Errorf("%w: no image renderer configured", ErrInvalidConfig)
	}
	path, err := g.renderer.RenderBanner(ctx, req.TaskID, design, BannerOptionsFrom(req.Parameters))
	if err != nil {
		return nil, fmt.Errorf("%w: render banner: %w", ErrGenerationFailed, err)
	}

	report(progress, bannerProgressRendered)

	return &Result{
		OutputRef: path,
		Payload: BannerPayload{
			Type:       domain.KindBanner,
			Content:    design.MainTitle,
			Design:     design,
			ImagePath:  path,
			Parameters: req.Parameters,
		},
	}, nil
}

// design returns the model's design, or the default design in simulated mode
// or when the model answers with something that is not a usable design.
// Errors from the model call itself are returned.
func (g *BannerGenerator) design(ctx context.Context, req Request) (BannerDesign, error) {
	if g.model == nil {
		if err := sleepCtx(ctx, g.cfg.SimulatedLatency); err != nil {
			return BannerDesign{}, err
		}
		return DefaultBannerDesign(), nil
	}

	prompt, err := g.prompts.Banner(req)
	if err != nil {
		return BannerDesign{}, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}

	text, err := g.model.GenerateText(ctx, prompt)
	if err != nil {
		return BannerDesign{}, fmt.Errorf("generate banner design: %w", err)
	}

	design, err := parseBannerDesign(text)
	if err != nil {
		if !errors.Is(err, ErrInvalidResponse) {
			return BannerDesign{}, err
		}
		g.logger.WarnContext(ctx, "unusable banner design from model, using default design",
			"task_id", req.TaskID,
			"error", err)
		return DefaultBannerDesign(), nil
	}
	return design, nil
}

// sleepCtx pauses for d or until ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
