package render

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/cheerforge/cheerforge/internal/config"
	"github.com/cheerforge/cheerforge/internal/generation"
	"github.com/disintegration/imaging"
)

// Output subdirectories, relative to the generated root.
const (
	BannerDir = "banners"
	EmojiDir  = "emojis"

	// refRoot prefixes every returned artifact reference.
	refRoot = "generated"
)

// ErrInvalidName is returned for task or element IDs that are not plain file names.
var ErrInvalidName = errors.New("invalid file name")

// Renderer implements generation.ImageRenderer on top of imaging.
type Renderer struct {
	generatedPath string
	assetsPath    string
	logger        *slog.Logger
}

var _ generation.ImageRenderer = (*Renderer)(nil)

// NewRenderer creates a Renderer writing under cfg.GeneratedPath and reading
// decorative elements from cfg.AssetsPath.
func NewRenderer(cfg config.StorageConfig, logger *slog.Logger) *Renderer {
	return &Renderer{
		generatedPath: cfg.GeneratedPath,
		assetsPath:    cfg.AssetsPath,
		logger:        logger.With("component", "renderer"),
	}
}

// save writes img to <generated>/<dir>/<taskID>.png and returns the artifact
// reference generated/<dir>/<taskID>.png.
func (r *Renderer) save(dir, taskID string, img image.Image) (string, error) {
	if err := checkName(taskID); err != nil {
		return "", err
	}

	outDir := filepath.Join(r.generatedPath, dir)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory %s: %w", outDir, err)
	}

	file := filepath.Join(outDir, taskID+".png")
	if err := imaging.Save(img, file); err != nil {
		return "", fmt.Errorf("failed to save image %s: %w", file, err)
	}
	return path.Join(refRoot, dir, taskID+".png"), nil
}

func checkName(name string) error {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) || filepath.Base(name) != name {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// parseHexColor parses "#RRGGBB" (or "RRGGBB"), returning fallback when s is
// not a valid color.
func parseHexColor(s string, fallback color.NRGBA) color.NRGBA {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return fallback
	}
	var rgb [3]uint8
	for i := range rgb {
		hi, ok1 := hexDigit(s[2*i])
		lo, ok2 := hexDigit(s[2*i+1])
		if !ok1 || !ok2 {
			return fallback
		}
		rgb[i] = hi<<4 | lo
	}
	return color.NRGBA{R: rgb[0], G: rgb[1], B: rgb[2], A: 255}
}

func hexDigit(c byte) (uint8, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

func checkContext(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("render cancelled: %w", err)
	}
	return nil
}
