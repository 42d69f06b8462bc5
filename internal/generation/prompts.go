package generation

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"text/template"
)

//go:embed prompts/*.tmpl
var promptFS embed.FS

// Prompts holds the parsed prompt templates sent to the text model.
type Prompts struct {
	banner *template.Template
	slogan *template.Template
}

type promptData struct {
	Prompt         string
	ParametersJSON string
	Width          int
	Height         int
}

// LoadPrompts parses the embedded prompt templates.
func LoadPrompts() (*Prompts, error) {
	banner, err := template.ParseFS(promptFS, "prompts/banner.tmpl")
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse banner prompt: %v", ErrInvalidConfig, err)
	}
	slogan, err := template.ParseFS(promptFS, "prompts/slogan.tmpl")
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse slogan prompt: %v", ErrInvalidConfig, err)
	}
	return &Prompts{banner: banner, slogan: slogan}, nil
}

// MustLoadPrompts is like LoadPrompts but panics on error. The templates are
// compiled into the binary, so a failure here is a programming error.
func MustLoadPrompts() *Prompts {
	p, err := LoadPrompts()
	if err != nil {
		panic(err)
	}
	return p
}

// Banner renders the banner design prompt for req.
func (p *Prompts) Banner(req Request) (string, error) {
	opts := BannerOptionsFrom(req.Parameters)
	return execute(p.banner, promptData{
		Prompt:         req.Prompt,
		ParametersJSON: parametersJSON(req.Parameters),
		Width:          opts.Width,
		Height:         opts.Height,
	})
}

// Slogan renders the slogan prompt for req.
func (p *Prompts) Slogan(req Request) (string, error) {
	return execute(p.slogan, promptData{
		Prompt:         req.Prompt,
		ParametersJSON: parametersJSON(req.Parameters),
	})
}

func execute(t *template.Template, data promptData) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute prompt template %s: %w", t.Name(), err)
	}
	return buf.String(), nil
}

func parametersJSON(params map[string]any) string {
	if len(params) == 0 {
		return "{}"
	}
	data, err := json.Marshal(params)
	if err != nil {
		return "{}"
	}
	return string(data)
}
