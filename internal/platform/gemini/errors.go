package gemini

import "errors"

// ErrEmptyPrompt is returned when GenerateText is called with an empty prompt.
var ErrEmptyPrompt = errors.New("prompt cannot be empty")
