// Package gemini provides an implementation of the generation.TextModel
// interface backed by Google's Gemini API.
//
// This package is an infrastructure adapter: the generation recipes build
// prompts and interpret responses, while TextModel only moves text to and from
// the external service. It handles:
//
//   - configuration validation and client construction
//   - retries with exponential backoff and jitter for transient failures
//   - translating safety blocks and empty answers into generation errors
//
// The package depends on the google.golang.org/genai client library.
package gemini
