package generation

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cheerforge/cheerforge/internal/domain"
)

const (
	sloganProgress = 50

	// fallbackSloganRunes bounds the raw model text used when the response
	// is not the requested JSON.
	fallbackSloganRunes = 20
)

// SloganGenerator produces a set of cheering slogans.
type SloganGenerator struct {
	model   TextModel
	prompts *Prompts
	cfg     Config
	logger  *slog.Logger
}

// NewSloganGenerator creates a slogan recipe. model may be nil.
func NewSloganGenerator(model TextModel, prompts *Prompts, cfg Config, logger *slog.Logger) *SloganGenerator {
	return &SloganGenerator{
		model:   model,
		prompts: prompts,
		cfg:     cfg,
		logger:  logger.With("recipe", domain.KindSlogan),
	}
}

// Generate implements Generator.
func (g *SloganGenerator) Generate(ctx context.Context, req Request, progress ProgressFunc) (*Result, error) {
	report(progress, sloganProgress)

	slogans, err := g.slogans(ctx, req)
	if err != nil {
		return nil, err
	}

	return &Result{
		Payload: SloganPayload{
			Type:       domain.KindSlogan,
			Slogans:    slogans,
			Parameters: req.Parameters,
		},
	}, nil
}

func (g *SloganGenerator) slogans(ctx context.Context, req Request) ([]Slogan, error) {
	if g.model == nil {
		if err := sleepCtx(ctx, g.cfg.SimulatedLatency); err != nil {
			return nil, err
		}
		return DefaultSlogans(), nil
	}

	prompt, err := g.prompts.Slogan(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}

	text, err := g.model.GenerateText(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("generate slogans: %w", err)
	}

	slogans, err := parseSlogans(text)
	if err != nil {
		g.logger.WarnContext(ctx, "slogan response is not JSON, using raw text",
			"task_id", req.TaskID,
			"error", err)
		raw := truncateRunes(strings.TrimSpace(text), fallbackSloganRunes)
		if raw == "" {
			return nil, err
		}
		return []Slogan{{Type: "short", Text: raw}}, nil
	}
	return slogans, nil
}

func parseSlogans(text string) ([]Slogan, error) {
	raw, ok := extractJSONObject(text)
	if !ok {
		return nil, fmt.Errorf("%w: no JSON object in response", ErrInvalidResponse)
	}

	var body struct {
		Slogans []Slogan `json:"slogans"`
	}
	if err := json.Unmarshal([]byte(raw), &body); err != nil {
		return nil, fmt.Errorf("%w: failed to parse slogans: %v", ErrInvalidResponse, err)
	}

	slogans := make([]Slogan, 0, len(body.Slogans))
	for _, s := range body.Slogans {
		if strings.TrimSpace(s.Text) != "" {
			slogans = append(slogans, s)
		}
	}
	if len(slogans) == 0 {
		return nil, fmt.Errorf("%w: no slogans in response", ErrInvalidResponse)
	}
	return slogans, nil
}
