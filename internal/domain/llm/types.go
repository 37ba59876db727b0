// Package llm defines the provider boundary for generative calls plus the
// fallback dispatcher, quota breaker and structured-output normalizer that
// the pipeline builds on.
package llm

import "context"

// GenerateOptions tunes a single text generation call. Pointer fields are
// omitted from the provider request when nil.
type GenerateOptions struct {
	Temperature     *float32 `json:"temperature,omitempty"`
	MaxOutputTokens int32    `json:"max_output_tokens,omitempty"`
	// JSONResponse asks the provider to emit raw JSON without prose.
	JSONResponse bool `json:"json_response,omitempty"`
	// ResponseSchema constrains JSON output to a shape. Stripped on fallback.
	ResponseSchema map[string]any `json:"response_schema,omitempty"`
	// ThinkingBudget caps reasoning tokens on models that support it.
	// Stripped on fallback.
	ThinkingBudget *int32 `json:"thinking_budget,omitempty"`
	// SearchGrounding augments the request with live web search results.
	SearchGrounding bool `json:"search_grounding,omitempty"`
}

// GenerateRequest is one text generation exchange.
type GenerateRequest struct {
	Model   string
	Prompt  string
	Options GenerateOptions
}

// GenerateResult is the text returned by the provider.
type GenerateResult struct {
	Text      string
	ModelUsed string
}

// ImageRequest is one image rendering exchange.
type ImageRequest struct {
	Model       string
	Prompt      string
	AspectRatio string
	Resolution  string
}

// ImageResult carries rendered image bytes or a placeholder reference.
type ImageResult struct {
	// Data holds the rendered image bytes; empty for placeholders.
	Data     []byte
	MIMEType string
	// URL is set instead of Data when the result is a placeholder.
	URL         string
	Placeholder bool
	ModelUsed   string
	Resolution  string
}

// Provider is the generative API boundary. Implementations translate raw
// transport errors into classified domain errors; everything above this
// interface reasons about error kinds only.
type Provider interface {
	GenerateContent(ctx context.Context, req GenerateRequest) (*GenerateResult, error)
	GenerateImage(ctx context.Context, req ImageRequest) (*ImageResult, error)
}

// SupportedAspectRatios enumerates the ratios the image path accepts.
var SupportedAspectRatios = map[string]bool{
	"1:1":  true,
	"16:9": true,
	"9:16": true,
	"4:3":  true,
	"3:4":  true,
}
