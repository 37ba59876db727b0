package llm_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	generrors "github.com/Johtaguerrero/artigogenio/internal/domain/errors"
	"github.com/Johtaguerrero/artigogenio/internal/domain/llm"
	"github.com/Johtaguerrero/artigogenio/internal/domain/retry"
)

// fakeProvider scripts per-model text responses and records every call.
type fakeProvider struct {
	textCalls  []llm.GenerateRequest
	imageCalls []llm.ImageRequest

	textFn  func(req llm.GenerateRequest) (*llm.GenerateResult, error)
	imageFn func(req llm.ImageRequest) (*llm.ImageResult, error)
}

func (f *fakeProvider) GenerateContent(_ context.Context, req llm.GenerateRequest) (*llm.GenerateResult, error) {
	f.textCalls = append(f.textCalls, req)
	return f.textFn(req)
}

func (f *fakeProvider) GenerateImage(_ context.Context, req llm.ImageRequest) (*llm.ImageResult, error) {
	f.imageCalls = append(f.imageCalls, req)
	return f.imageFn(req)
}

func (f *fakeProvider) callsFor(model string) int {
	n := 0
	for _, c := range f.textCalls {
		if c.Model == model {
			n++
		}
	}
	return n
}

func fastConfig() llm.DispatcherConfig {
	return llm.DispatcherConfig{
		TextModel:     "primary-model",
		FallbackModel: "fallback-model",
		ImageModel:    "image-model",
		TextPolicy:    retry.NoRetryPolicy(),
		ImagePolicy:   retry.NoRetryPolicy(),
	}
}

func TestDispatcher_Generate_QuotaTriggersFallbackWithoutRetry(t *testing.T) {
	provider := &fakeProvider{
		textFn: func(req llm.GenerateRequest) (*llm.GenerateResult, error) {
			if req.Model == "primary-model" {
				return nil, generrors.New(generrors.KindQuotaExhausted, "daily quota spent")
			}
			return &llm.GenerateResult{Text: "from fallback", ModelUsed: req.Model}, nil
		},
	}
	cfg := fastConfig()
	cfg.TextPolicy = retry.Policy{MaxRetries: 3, InitialDelay: 1} // retries allowed, quota must skip them
	d := llm.NewDispatcher(provider, cfg, nil, llm.NewQuotaBreaker())

	result, err := d.Generate(context.Background(), "write something", llm.GenerateOptions{})
	require.NoError(t, err)
	assert.Equal(t, "from fallback", result.Text)

	// Quota errors are fallback-worthy but not retryable: the preferred
	// model must be attempted exactly once.
	assert.Equal(t, 1, provider.callsFor("primary-model"))
	assert.Equal(t, 1, provider.callsFor("fallback-model"))
}

func TestDispatcher_Generate_FallbackStripsUnsupportedOptions(t *testing.T) {
	provider := &fakeProvider{
		textFn: func(req llm.GenerateRequest) (*llm.GenerateResult, error) {
			if req.Model == "primary-model" {
				return nil, generrors.New(generrors.KindModelNotFound, "no such model")
			}
			return &llm.GenerateResult{Text: "ok", ModelUsed: req.Model}, nil
		},
	}
	d := llm.NewDispatcher(provider, fastConfig(), nil, llm.NewQuotaBreaker())

	budget := int32(2048)
	opts := llm.GenerateOptions{
		ThinkingBudget: &budget,
		ResponseSchema: map[string]any{"type": "object"},
		JSONResponse:   true,
	}
	_, err := d.Generate(context.Background(), "prompt", opts)
	require.NoError(t, err)

	require.Len(t, provider.textCalls, 2)
	first, second := provider.textCalls[0], provider.textCalls[1]
	assert.NotNil(t, first.Options.ThinkingBudget)
	assert.NotNil(t, first.Options.ResponseSchema)
	assert.Nil(t, second.Options.ThinkingBudget)
	assert.Nil(t, second.Options.ResponseSchema)
	assert.True(t, second.Options.JSONResponse, "JSON mode survives the fallback")
}

func TestDispatcher_Generate_NonFallbackErrorPropagates(t *testing.T) {
	provider := &fakeProvider{
		textFn: func(req llm.GenerateRequest) (*llm.GenerateResult, error) {
			return nil, generrors.New(generrors.KindCredentials, "invalid key")
		},
	}
	d := llm.NewDispatcher(provider, fastConfig(), nil, llm.NewQuotaBreaker())

	_, err := d.Generate(context.Background(), "prompt", llm.GenerateOptions{})
	require.Error(t, err)
	assert.Equal(t, generrors.KindCredentials, generrors.KindOf(err))
	assert.Len(t, provider.textCalls, 1, "credential failures never reach the fallback")
}

func TestDispatcher_Generate_BlankTextIsEmptyResponse(t *testing.T) {
	provider := &fakeProvider{
		textFn: func(req llm.GenerateRequest) (*llm.GenerateResult, error) {
			return &llm.GenerateResult{Text: ""}, nil
		},
	}
	cfg := fastConfig()
	cfg.FallbackModel = ""
	d := llm.NewDispatcher(provider, cfg, nil, llm.NewQuotaBreaker())

	_, err := d.Generate(context.Background(), "prompt", llm.GenerateOptions{})
	require.Error(t, err)
	assert.Equal(t, generrors.KindEmptyResponse, generrors.KindOf(err))
}

func TestDispatcher_GenerateImage_QuotaTripsBreaker(t *testing.T) {
	provider := &fakeProvider{
		imageFn: func(req llm.ImageRequest) (*llm.ImageResult, error) {
			return nil, generrors.New(generrors.KindQuotaExhausted, "image quota spent")
		},
	}
	trips := 0
	breaker := llm.NewQuotaBreaker().OnTrip(func() { trips++ })
	d := llm.NewDispatcher(provider, fastConfig(), nil, breaker)

	first, err := d.GenerateImage(context.Background(), "a red barn", "16:9")
	require.NoError(t, err)
	assert.True(t, first.Placeholder)
	assert.True(t, breaker.Tripped())
	assert.Len(t, provider.imageCalls, 1)

	// With the breaker latched, no further provider calls happen.
	second, err := d.GenerateImage(context.Background(), "a blue barn", "1:1")
	require.NoError(t, err)
	assert.True(t, second.Placeholder)
	assert.Len(t, provider.imageCalls, 1)
	assert.Equal(t, 1, trips, "the hook fires once, not per short-circuited call")
}

func TestDispatcher_GenerateImage_NonQuotaErrorDoesNotTrip(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"unavailable backend", generrors.New(generrors.KindUnavailable, "backend down")},
		// A transient 429 exhausts the retry budget and surfaces; only
		// quota exhaustion may latch the session.
		{"rate limited", generrors.New(generrors.KindRateLimit, "slow down")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &fakeProvider{
				imageFn: func(req llm.ImageRequest) (*llm.ImageResult, error) {
					return nil, tt.err
				},
			}
			breaker := llm.NewQuotaBreaker()
			d := llm.NewDispatcher(provider, fastConfig(), nil, breaker)

			_, err := d.GenerateImage(context.Background(), "prompt", "16:9")
			require.Error(t, err)
			assert.Equal(t, generrors.KindOf(tt.err), generrors.KindOf(err))
			assert.False(t, breaker.Tripped())

			// The next call still reaches the provider.
			_, err = d.GenerateImage(context.Background(), "prompt", "16:9")
			require.Error(t, err)
			assert.Len(t, provider.imageCalls, 2)
		})
	}
}

func TestDispatcher_GenerateImage_RejectsUnknownRatio(t *testing.T) {
	d := llm.NewDispatcher(&fakeProvider{}, fastConfig(), nil, llm.NewQuotaBreaker())
	_, err := d.GenerateImage(context.Background(), "prompt", "21:9")
	require.Error(t, err)
	assert.Equal(t, generrors.KindValidation, generrors.KindOf(err))
}

func TestPlaceholderImage(t *testing.T) {
	result := llm.PlaceholderImage("Modern solar panel array on a farm roof at golden hour", "16:9")
	assert.True(t, result.Placeholder)
	assert.Equal(t, "placeholder", result.ModelUsed)
	assert.Contains(t, result.URL, "1280x720")
	assert.Contains(t, result.URL, "placehold.co")
	assert.Empty(t, result.Data)

	square := llm.PlaceholderImage("", "1:1")
	assert.Contains(t, square.URL, "1080x1080")
	assert.Contains(t, square.URL, "image+unavailable")
}
