package generation

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/cheerforge/cheerforge/internal/domain"
)

// Set binds one Generator to each supported kind.
type Set struct {
	Banner Generator
	Slogan Generator
	Emoji  Generator
}

// Config holds the settings shared by the built-in recipes.
type Config struct {
	// SimulatedLatency is how long a recipe pauses when it has no model to
	// call (and for emoji, which has no model at all).
	SimulatedLatency time.Duration
}

// NewSet wires the built-in banner, slogan and emoji recipes. model may be nil,
// in which case the recipes run in simulated mode.
func NewSet(model TextModel, renderer ImageRenderer, cfg Config, logger *slog.Logger) Set {
	prompts := MustLoadPrompts()
	return Set{
		Banner: NewBannerGenerator(model, renderer, prompts, cfg, logger),
		Slogan: NewSloganGenerator(model, prompts, cfg, logger),
		Emoji:  NewEmojiGenerator(renderer, cfg, logger),
	}
}

// For returns the generator bound to kind. Kinds outside the supported set,
// and supported kinds with no bound generator, yield ErrUnsupportedKind.
func (s Set) For(kind domain.Kind) (Generator, error) {
	var g Generator
	switch kind {
	case domain.KindBanner:
		g = s.Banner
	case domain.KindSlogan:
		g = s.Slogan
	case domain.KindEmoji:
		g = s.Emoji
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedKind, kind)
	}

	if g == nil {
		return nil, fmt.Errorf("%w: no generator bound for %q", ErrUnsupportedKind, kind)
	}
	return g, nil
}
