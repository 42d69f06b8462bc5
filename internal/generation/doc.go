// Package generation defines the content generators that workers invoke for
// each task kind. A Generator turns a prompt and its parameters into a
// kind-specific result payload, reporting intermediate progress as it goes.
//
// The recipes in this package (banner, slogan, emoji) depend on two narrow
// collaborators: a TextModel backed by an LLM such as Gemini, and an
// ImageRenderer that writes PNG artifacts. When no TextModel is configured
// the recipes run in simulated mode and produce canned designs and slogans.
package generation
