package render

import (
	"context"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
)

const (
	emojiSize     = 300
	emojiFontSize = 24
)

var (
	emojiFace = color.NRGBA{R: 0xFF, G: 0xFF, A: 0xFF}
	emojiInk  = color.NRGBA{A: 0xFF}
)

// RenderEmoji draws a smiling face with caption underneath.
func (r *Renderer) RenderEmoji(ctx context.Context, taskID string, caption string) (string, error) {
	if err := checkContext(ctx); err != nil {
		return "", err
	}

	img := imaging.New(emojiSize, emojiSize, emojiFace)
	fillCircle(img, image.Pt(75, 75), 25, emojiInk)
	fillCircle(img, image.Pt(225, 75), 25, emojiInk)
	smile(img, image.Pt(150, 187), 75, 37, 5, emojiInk)

	if caption != "" {
		img = imaging.Overlay(img, textImage(caption, emojiInk, emojiFontSize), image.Pt(50, 250), 1.0)
	}

	ref, err := r.save(EmojiDir, taskID, img)
	if err != nil {
		return "", err
	}
	r.logger.InfoContext(ctx, "emoji rendered", "task_id", taskID, "path", ref)
	return ref, nil
}

func fillCircle(img *image.NRGBA, center image.Point, radius int, c color.NRGBA) {
	for y := center.Y - radius; y <= center.Y+radius; y++ {
		for x := center.X - radius; x <= center.X+radius; x++ {
			dx, dy := x-center.X, y-center.Y
			if dx*dx+dy*dy <= radius*radius {
				img.SetNRGBA(x, y, c)
			}
		}
	}
}

// smile strokes the lower half of an ellipse.
func smile(img *image.NRGBA, center image.Point, rx, ry, thickness int, c color.NRGBA) {
	for deg := 0.0; deg <= 180; deg += 0.5 {
		rad := deg * math.Pi / 180
		x := center.X + int(float64(rx)*math.Cos(rad))
		y := center.Y + int(float64(ry)*math.Sin(rad))
		fillCircle(img, image.Pt(x, y), thickness/2, c)
	}
}
