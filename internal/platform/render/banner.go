package render

import (
	"context"
	"image"
	"image/color"
	"image/draw"
	"path/filepath"
	"sort"

	"github.com/cheerforge/cheerforge/internal/generation"
	"github.com/disintegration/imaging"
)

// Fallbacks for missing or malformed design values
var (
	defaultPrimary   = color.NRGBA{R: 0xFF, A: 0xFF}
	defaultSecondary = color.NRGBA{R: 0xFF, G: 0xD7, A: 0xFF}
	defaultText      = color.NRGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
)

const defaultElementSize = 80

// RenderBanner draws a vertical gradient from the primary to the secondary
// color, pastes the design's visual elements in zIndex order and writes the
// shadowed main title (and subtitle) on top.
func (r *Renderer) RenderBanner(
	ctx context.Context,
	taskID string,
	design generation.BannerDesign,
	opts generation.BannerOptions,
) (string, error) {
	if err := checkContext(ctx); err != nil {
		return "", err
	}

	opts = opts.Normalize()
	width, height, fontSize := opts.Width, opts.Height, opts.FontSize

	img := gradient(width, height,
		parseHexColor(design.Colors.Primary, defaultPrimary),
		parseHexColor(design.Colors.Secondary, defaultSecondary))

	img = r.pasteElements(ctx, img, design.VisualElements)

	if err := checkContext(ctx); err != nil {
		return "", err
	}

	textColor := parseHexColor(design.Colors.TextColor, defaultText)
	title := textImage(design.MainTitle, textColor, fontSize)
	titleAt := image.Pt(
		(width-title.Bounds().Dx())/2,
		titleY(design.Layout.MainTitlePosition, height, title.Bounds().Dy()),
	)
	img = drawShadowedText(img, design.MainTitle, textColor, fontSize, titleAt)

	if design.SubTitle != "" {
		subSize := fontSize / 2
		sub := textImage(design.SubTitle, textColor, subSize)
		subAt := image.Pt((width-sub.Bounds().Dx())/2, titleAt.Y+title.Bounds().Dy()+subSize/2)
		img = drawShadowedText(img, design.SubTitle, textColor, subSize, subAt)
	}

	ref, err := r.save(BannerDir, taskID, img)
	if err != nil {
		return "", err
	}
	r.logger.InfoContext(ctx, "banner rendered", "task_id", taskID, "path", ref)
	return ref, nil
}

func gradient(width, height int, from, to color.NRGBA) *image.NRGBA {
	img := imaging.New(width, height, from)
	for y := 0; y < height; y++ {
		t := float64(y) / float64(height)
		row := color.NRGBA{
			R: lerp(from.R, to.R, t),
			G: lerp(from.G, to.G, t),
			B: lerp(from.B, to.B, t),
			A: 0xFF,
		}
		draw.Draw(img, image.Rect(0, y, width, y+1), image.NewUniform(row), image.Point{}, draw.Src)
	}
	return img
}

func lerp(a, b uint8, t float64) uint8 {
	return uint8(float64(a)*(1-t) + float64(b)*t)
}

// pasteElements overlays <assets>/<id>.png for each element. Elements whose
// asset is missing or unreadable are skipped.
func (r *Renderer) pasteElements(ctx context.Context, img *image.NRGBA, elements []generation.VisualElement) *image.NRGBA {
	if r.assetsPath == "" || len(elements) == 0 {
		return img
	}

	ordered := append([]generation.VisualElement(nil), elements...)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].ZIndex < ordered[j].ZIndex })

	for _, el := range ordered {
		if err := checkName(el.ID); err != nil {
			r.logger.WarnContext(ctx, "skipping visual element", "element", el.ID, "error", err)
			continue
		}

		asset, err := imaging.Open(filepath.Join(r.assetsPath, el.ID+".png"))
		if err != nil {
			r.logger.WarnContext(ctx, "visual element not available", "element", el.ID, "error", err)
			continue
		}

		w, h := el.Size.Width, el.Size.Height
		if w <= 0 {
			w = defaultElementSize
		}
		if h <= 0 {
			h = defaultElementSize
		}
		// An element never needs to be larger than the canvas it sits on.
		w = min(w, img.Bounds().Dx())
		h = min(h, img.Bounds().Dy())
		asset = imaging.Resize(asset, w, h, imaging.Lanczos)
		img = imaging.Overlay(img, asset, image.Pt(el.Position.X, el.Position.Y), 1.0)
	}
	return img
}

func titleY(position string, canvasHeight, textHeight int) int {
	switch position {
	case "top":
		return canvasHeight / 8
	case "bottom":
		return canvasHeight - textHeight - canvasHeight/8
	default:
		return (canvasHeight - textHeight) / 2
	}
}
