package generation

import (
	"context"

	"github.com/cheerforge/cheerforge/internal/domain"
)

// ProgressFunc receives intermediate progress milestones from a Generator.
// Values are percentages; callers are expected to ignore values that do not
// increase.
type ProgressFunc func(progress int)

// Request carries everything a Generator needs to produce content for one task.
type Request struct {
	TaskID     string
	Kind       domain.Kind
	Prompt     string
	Parameters map[string]any
}

// Result is the outcome of a successful generation.
type Result struct {
	// Payload is the kind-specific result, serialized to JSON by the caller.
	Payload any

	// OutputRef is the relative path of a generated artifact, if any.
	OutputRef string
}

// Generator defines the interface for producing content of a single kind.
// This interface serves as a boundary between the task engine and the
// external services that do the actual work.
//
// Implementations must be safe for concurrent use by multiple workers and must
// not share mutable state between invocations.
type Generator interface {
	// Generate produces content for req. The progress callback may be nil.
	Generate(ctx context.Context, req Request, progress ProgressFunc) (*Result, error)
}

// GeneratorFunc adapts an ordinary function to the Generator interface.
type GeneratorFunc func(ctx context.Context, req Request, progress ProgressFunc) (*Result, error)

// Generate calls f(ctx, req, progress).
func (f GeneratorFunc) Generate(ctx context.Context, req Request, progress ProgressFunc) (*Result, error) {
	return f(ctx, req, progress)
}

// TextModel is a language model that answers a prompt with text, typically JSON.
type TextModel interface {
	// GenerateText sends prompt to the model and returns the raw response text.
	GenerateText(ctx context.Context, prompt string) (string, error)

	// Name returns the model identifier for logging and status reporting.
	Name() string
}

// ImageRenderer draws raster artifacts and returns their relative paths.
type ImageRenderer interface {
	RenderBanner(ctx context.Context, taskID string, design BannerDesign, opts BannerOptions) (string, error)
	RenderEmoji(ctx context.Context, taskID string, caption string) (string, error)
}

func report(progress ProgressFunc, value int) {
	if progress != nil {
		progress(value)
	}
}
