package mocks

import (
	"context"
	"fmt"
	"sync"

	"github.com/cheerforge/cheerforge/internal/generation"
)

// MockRenderer implements generation.ImageRenderer for testing
type MockRenderer struct {
	RenderBannerFn func(ctx context.Context, taskID string, design generation.BannerDesign, opts generation.BannerOptions) (string, error)
	RenderEmojiFn  func(ctx context.Context, taskID string, caption string) (string, error)

	mu       sync.Mutex
	Designs  []generation.BannerDesign
	Options  []generation.BannerOptions
	Captions []string
}

// RenderBanner implements the generation.ImageRenderer interface
func (m *MockRenderer) RenderBanner(
	ctx context.Context,
	taskID string,
	design generation.BannerDesign,
	opts generation.BannerOptions,
) (string, error) {
	m.mu.Lock()
	m.Designs = append(m.Designs, design)
	m.Options = append(m.Options, opts)
	m.mu.Unlock()

	if m.RenderBannerFn != nil {
		return m.RenderBannerFn(ctx, taskID, design, opts)
	}
	return fmt.Sprintf("generated/banners/%s.png", taskID), nil
}

// RenderEmoji implements the generation.ImageRenderer interface
func (m *MockRenderer) RenderEmoji(ctx context.Context, taskID string, caption string) (string, error) {
	m.mu.Lock()
	m.Captions = append(m.Captions, caption)
	m.mu.Unlock()

	if m.RenderEmojiFn != nil {
		return m.RenderEmojiFn(ctx, taskID, caption)
	}
	return fmt.Sprintf("generated/emojis/%s.png", taskID), nil
}
