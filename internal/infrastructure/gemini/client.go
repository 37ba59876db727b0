// Package gemini adapts the Google generative language REST API to the
// domain llm.Provider interface. Raw provider errors are translated into
// classified domain errors here; the string matching on error payloads
// lives only in this adapter.
package gemini

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"

	generrors "github.com/Johtaguerrero/artigogenio/internal/domain/errors"
	"github.com/Johtaguerrero/artigogenio/internal/domain/llm"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// Client calls the generative language API over REST.
type Client struct {
	httpClient *resty.Client
	apiKey     string
}

var _ llm.Provider = (*Client)(nil)

// NewClient creates a Gemini client. The API key is validated lazily:
// a missing key fails fast with a configuration error before any
// network call.
func NewClient(apiKey string, timeout time.Duration) *Client {
	return NewClientWithBaseURL(apiKey, defaultBaseURL, timeout)
}

// NewClientWithBaseURL is used by tests to point at a stub server.
func NewClientWithBaseURL(apiKey, baseURL string, timeout time.Duration) *Client {
	return &Client{
		httpClient: resty.New().
			SetBaseURL(baseURL).
			SetHeader("Content-Type", "application/json").
			SetTimeout(timeout),
		apiKey: apiKey,
	}
}

type generateContentRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
	Tools            []map[string]any  `json:"tools,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature      *float32        `json:"temperature,omitempty"`
	MaxOutputTokens  int32           `json:"maxOutputTokens,omitempty"`
	ResponseMIMEType string          `json:"responseMimeType,omitempty"`
	ResponseSchema   map[string]any  `json:"responseSchema,omitempty"`
	ThinkingConfig   *thinkingConfig `json:"thinkingConfig,omitempty"`
}

type thinkingConfig struct {
	ThinkingBudget int32 `json:"thinkingBudget"`
}

type generateContentResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// GenerateContent issues one text generation call.
func (c *Client) GenerateContent(ctx context.Context, req llm.GenerateRequest) (*llm.GenerateResult, error) {
	if err := c.requireKey(); err != nil {
		return nil, err
	}

	body := generateContentRequest{
		Contents: []content{{Parts: []part{{Text: req.Prompt}}}},
	}
	cfg := &generationConfig{
		Temperature:     req.Options.Temperature,
		MaxOutputTokens: req.Options.MaxOutputTokens,
	}
	if req.Options.JSONResponse {
		cfg.ResponseMIMEType = "application/json"
	}
	if req.Options.ResponseSchema != nil {
		cfg.ResponseSchema = req.Options.ResponseSchema
	}
	if req.Options.ThinkingBudget != nil {
		cfg.ThinkingConfig = &thinkingConfig{ThinkingBudget: *req.Options.ThinkingBudget}
	}
	body.GenerationConfig = cfg
	if req.Options.SearchGrounding {
		body.Tools = []map[string]any{{"google_search": map[string]any{}}}
	}

	var result generateContentResponse
	var errBody apiError
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParam("key", c.apiKey).
		SetBody(body).
		SetResult(&result).
		SetError(&errBody).
		Post(fmt.Sprintf("/models/%s:generateContent", req.Model))
	if err != nil {
		return nil, generrors.Wrap(generrors.KindTransport, "failed to reach generative API", err)
	}
	if resp.IsError() {
		return nil, classifyHTTPError(resp.StatusCode(), errBody)
	}

	text := extractText(result)
	if strings.TrimSpace(text) == "" {
		return nil, generrors.New(generrors.KindEmptyResponse, "empty model response")
	}
	return &llm.GenerateResult{Text: text, ModelUsed: req.Model}, nil
}

type predictRequest struct {
	Instances  []predictInstance `json:"instances"`
	Parameters predictParameters `json:"parameters"`
}

type predictInstance struct {
	Prompt string `json:"prompt"`
}

type predictParameters struct {
	SampleCount int    `json:"sampleCount"`
	AspectRatio string `json:"aspectRatio,omitempty"`
	SampleSize  string `json:"sampleImageSize,omitempty"`
}

type predictResponse struct {
	Predictions []struct {
		BytesBase64Encoded string `json:"bytesBase64Encoded"`
		MIMEType           string `json:"mimeType"`
	} `json:"predictions"`
}

// GenerateImage issues one image rendering call.
func (c *Client) GenerateImage(ctx context.Context, req llm.ImageRequest) (*llm.ImageResult, error) {
	if err := c.requireKey(); err != nil {
		return nil, err
	}

	var result predictResponse
	var errBody apiError
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParam("key", c.apiKey).
		SetBody(predictRequest{
			Instances: []predictInstance{{Prompt: req.Prompt}},
			Parameters: predictParameters{
				SampleCount: 1,
				AspectRatio: req.AspectRatio,
				SampleSize:  req.Resolution,
			},
		}).
		SetResult(&result).
		SetError(&errBody).
		Post(fmt.Sprintf("/models/%s:predict", req.Model))
	if err != nil {
		return nil, generrors.Wrap(generrors.KindTransport, "failed to reach image API", err)
	}
	if resp.IsError() {
		return nil, classifyHTTPError(resp.StatusCode(), errBody)
	}
	if len(result.Predictions) == 0 || result.Predictions[0].BytesBase64Encoded == "" {
		return nil, generrors.New(generrors.KindEmptyResponse, "image API returned no predictions")
	}

	data, err := base64.StdEncoding.DecodeString(result.Predictions[0].BytesBase64Encoded)
	if err != nil {
		return nil, generrors.Wrap(generrors.KindMalformedOutput, "image API returned invalid base64 payload", err)
	}
	mime := result.Predictions[0].MIMEType
	if mime == "" {
		mime = "image/png"
	}
	log.Debug().Str("model", req.Model).Str("aspect_ratio", req.AspectRatio).Int("bytes", len(data)).Msg("image rendered")
	return &llm.ImageResult{
		Data:       data,
		MIMEType:   mime,
		ModelUsed:  req.Model,
		Resolution: req.Resolution,
	}, nil
}

func (c *Client) requireKey() error {
	if strings.TrimSpace(c.apiKey) == "" {
		return generrors.New(generrors.KindConfiguration, "generative API key not configured")
	}
	return nil
}

func extractText(resp generateContentResponse) string {
	if len(resp.Candidates) == 0 {
		return ""
	}
	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	return b.String()
}

// classifyHTTPError maps the provider's status codes and error payloads
// onto the domain taxonomy.
func classifyHTTPError(status int, body apiError) error {
	msg := body.Error.Message
	switch {
	case status == 429:
		if strings.Contains(strings.ToLower(msg), "quota") || body.Error.Status == "RESOURCE_EXHAUSTED" {
			return generrors.New(generrors.KindQuotaExhausted, "generation quota exhausted")
		}
		return generrors.New(generrors.KindRateLimit, "rate limited by provider")
	case status == 404:
		return generrors.New(generrors.KindModelNotFound, "model not found")
	case status == 401 || status == 403:
		return generrors.New(generrors.KindCredentials, "generative API rejected the credentials")
	case status == 503 || status == 500 || status == 502 || status == 504:
		return generrors.New(generrors.KindUnavailable, "generative API temporarily unavailable")
	default:
		return generrors.New(generrors.KindInternal, fmt.Sprintf("generative API error (status %d)", status))
	}
}
