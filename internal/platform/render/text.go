package render

import (
	"image"
	"image/color"

	"github.com/cheerforge/cheerforge/internal/generation"
	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// maxTextWidth bounds the scaled width of a rendered text line.
const maxTextWidth = 2 * generation.MaxBannerWidth

// textImage draws s on a transparent canvas and scales it so that the line
// height equals size pixels. Text that would scale wider than maxTextWidth
// is truncated.
func textImage(s string, c color.Color, size int) *image.NRGBA {
	face := basicfont.Face7x13
	metrics := face.Metrics()
	lineHeight := metrics.Height.Ceil()

	if size > 0 {
		advance := font.MeasureString(face, "M").Ceil()
		maxRunes := maxTextWidth * lineHeight / (size * advance)
		if r := []rune(s); len(r) > maxRunes {
			s = string(r[:maxRunes])
		}
	}

	width := font.MeasureString(face, s).Ceil()
	if width == 0 {
		return imaging.New(1, 1, color.Transparent)
	}

	img := imaging.New(width, lineHeight, color.Transparent)
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(0, metrics.Ascent.Ceil()),
	}
	d.DrawString(s)

	if size <= 0 || size == lineHeight {
		return img
	}
	return imaging.Resize(img, 0, size, imaging.NearestNeighbor)
}

// drawShadowedText overlays s at pt with a translucent black shadow offset
// by shadowOffset pixels.
func drawShadowedText(dst *image.NRGBA, s string, c color.Color, size int, pt image.Point) *image.NRGBA {
	shadow := textImage(s, color.NRGBA{A: 128}, size)
	dst = imaging.Overlay(dst, shadow, pt.Add(image.Pt(shadowOffset, shadowOffset)), 1.0)
	return imaging.Overlay(dst, textImage(s, c, size), pt, 1.0)
}

const shadowOffset = 3
