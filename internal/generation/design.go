package generation

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// BannerDesign is the layout a banner is rendered from. The JSON field names
// match what the language model is asked to return.
type BannerDesign struct {
	MainTitle      string          `json:"mainTitle"`
	SubTitle       string          `json:"subTitle,omitempty"`
	VisualElements []VisualElement `json:"visualElements"`
	Layout         Layout          `json:"layout"`
	Colors         Palette         `json:"colors"`
	Effects        []Effect        `json:"effects,omitempty"`
}

// VisualElement places one decorative asset on the banner.
type VisualElement struct {
	ID       string `json:"id"`
	Position Point  `json:"position"`
	Size     Size   `json:"size"`
	ZIndex   int    `json:"zIndex"`
}

// Point is a pixel offset from the top-left corner.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Size is a width and height in pixels.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Layout describes the overall composition.
type Layout struct {
	Style             string `json:"style"`
	MainTitlePosition string `json:"mainTitlePosition"`
	Composition       string `json:"composition"`
}

// Palette holds hex colors such as "#FF0000".
type Palette struct {
	Primary     string `json:"primary"`
	Secondary   string `json:"secondary"`
	TextColor   string `json:"textColor"`
	EffectColor string `json:"effectColor"`
}

// Effect is a decorative effect applied to a target element.
type Effect struct {
	Type      string  `json:"type"`
	Target    string  `json:"target"`
	Intensity float64 `json:"intensity"`
}

// BannerOptions controls the raster output of a banner.
type BannerOptions struct {
	Width    int
	Height   int
	FontSize int
}

// Default banner dimensions
const (
	DefaultBannerWidth    = 800
	DefaultBannerHeight   = 300
	DefaultBannerFontSize = 48
)

// Upper bounds on caller-supplied banner dimensions. Larger values are
// clamped so that a single task cannot request an unbounded raster.
const (
	MaxBannerWidth    = 4096
	MaxBannerHeight   = 4096
	MaxBannerFontSize = 512
)

// Normalize replaces non-positive values with the defaults and clamps the
// rest to the Max* bounds.
func (o BannerOptions) Normalize() BannerOptions {
	return BannerOptions{
		Width:    clampDim(o.Width, DefaultBannerWidth, MaxBannerWidth),
		Height:   clampDim(o.Height, DefaultBannerHeight, MaxBannerHeight),
		FontSize: clampDim(o.FontSize, DefaultBannerFontSize, MaxBannerFontSize),
	}
}

func clampDim(v, def, max int) int {
	switch {
	case v <= 0:
		return def
	case v > max:
		return max
	}
	return v
}

// DefaultBannerDesign returns the design used in simulated mode and whenever a
// model response cannot be parsed.
func DefaultBannerDesign() BannerDesign {
	return BannerDesign{
		MainTitle: "Go for gold!",
		SubTitle:  "Fight for the dream",
		VisualElements: []VisualElement{
			{ID: "player-portrait", Position: Point{X: 50, Y: 100}, Size: Size{Width: 80, Height: 80}, ZIndex: 2},
			{ID: "ping-pong-ball", Position: Point{X: 650, Y: 120}, Size: Size{Width: 50, Height: 50}, ZIndex: 1},
			{ID: "star", Position: Point{X: 150, Y: 50}, Size: Size{Width: 30, Height: 30}, ZIndex: 1},
		},
		Layout: Layout{
			Style:             "centered",
			MainTitlePosition: "center",
			Composition:       "symmetric",
		},
		Colors: Palette{
			Primary:     "#FF0000",
			Secondary:   "#FFD700",
			TextColor:   "#FFFFFF",
			EffectColor: "#FFA500",
		},
		Effects: []Effect{
			{Type: "glow", Target: "mainTitle", Intensity: 0.8},
		},
	}
}

// BannerOptionsFrom reads width, height and fontSize from task parameters,
// falling back to the defaults for missing or non-positive values and
// clamping oversized ones.
func BannerOptionsFrom(params map[string]any) BannerOptions {
	return BannerOptions{
		Width:    intParam(params, "width", DefaultBannerWidth),
		Height:   intParam(params, "height", DefaultBannerHeight),
		FontSize: intParam(params, "fontSize", DefaultBannerFontSize),
	}.Normalize()
}

// parseBannerDesign extracts the outermost JSON object from a model response
// and decodes it as a design.
func parseBannerDesign(text string) (BannerDesign, error) {
	raw, ok := extractJSONObject(text)
	if !ok {
		return BannerDesign{}, fmt.Errorf("%w: no JSON object in response", ErrInvalidResponse)
	}

	var design BannerDesign
	if err := json.Unmarshal([]byte(raw), &design); err != nil {
		return BannerDesign{}, fmt.Errorf("%w: failed to parse banner design: %v", ErrInvalidResponse, err)
	}
	if strings.TrimSpace(design.MainTitle) == "" {
		return BannerDesign{}, fmt.Errorf("%w: banner design has no main title", ErrInvalidResponse)
	}
	return design, nil
}

// extractJSONObject returns the text between the first '{' and the last '}'.
func extractJSONObject(text string) (string, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}

func intParam(params map[string]any, key string, def int) int {
	var n int
	switch v := params[key].(type) {
	case int:
		n = v
	case int64:
		n = int(v)
	case float64:
		if v > math.MaxInt32 {
			v = math.MaxInt32
		}
		n = int(v)
	case json.Number:
		i, err := v.Int64()
		if err != nil {
			return def
		}
		n = int(i)
	default:
		return def
	}
	if n <= 0 {
		return def
	}
	return n
}

func truncateRunes(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
