package generation

import "github.com/cheerforge/cheerforge/internal/domain"

// BannerPayload is the result stored for a completed banner task.
type BannerPayload struct {
	Type       domain.Kind    `json:"type"`
	Content    string         `json:"content"`
	Design     BannerDesign   `json:"design_data"`
	ImagePath  string         `json:"image_path"`
	Parameters map[string]any `json:"parameters"`
}

// SloganPayload is the result stored for a completed slogan task.
type SloganPayload struct {
	Type       domain.Kind    `json:"type"`
	Slogans    []Slogan       `json:"slogans"`
	Parameters map[string]any `json:"parameters"`
}

// Slogan is one cheering line and how to present it.
type Slogan struct {
	Type        string       `json:"type"`
	Text        string       `json:"text"`
	VisualStyle *VisualStyle `json:"visualStyle,omitempty"`
	Description string       `json:"description,omitempty"`
}

// VisualStyle suggests how a slogan should be displayed.
type VisualStyle struct {
	PresentationType string   `json:"presentationType,omitempty"`
	BackgroundColor  string   `json:"backgroundColor,omitempty"`
	TextColor        string   `json:"textColor,omitempty"`
	FontSize         string   `json:"fontSize,omitempty"`
	FontWeight       string   `json:"fontWeight,omitempty"`
	Elements         []string `json:"elements,omitempty"`
	Layout           string   `json:"layout,omitempty"`
	Effects          []string `json:"effects,omitempty"`
}

// EmojiPayload is the result stored for a completed emoji task.
type EmojiPayload struct {
	Type       domain.Kind    `json:"type"`
	ImagePath  string         `json:"image_path"`
	Prompt     string         `json:"prompt"`
	Parameters map[string]any `json:"parameters"`
}

// DefaultSlogans returns the canned slogans used in simulated mode.
func DefaultSlogans() []Slogan {
	return []Slogan{
		{Type: "short", Text: "Victory is ours!"},
		{Type: "catchy", Text: "Sharp serve, fearless heart!"},
		{Type: "rhyming", Text: "Spin it, win it, every single minute!"},
		{Type: "inspiring", Text: "Never give up, charge ahead, we are with you!"},
		{Type: "blessing", Text: "May every rally shine and every match end in gold!"},
	}
}
