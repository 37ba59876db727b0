package llm

import (
	"context"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	generrors "github.com/Johtaguerrero/artigogenio/internal/domain/errors"
	"github.com/Johtaguerrero/artigogenio/internal/domain/retry"
)

// DispatcherConfig tunes the two-tier model fallback.
type DispatcherConfig struct {
	TextModel     string
	FallbackModel string
	ImageModel    string
	TextPolicy    retry.Policy
	ImagePolicy   retry.Policy
}

// Dispatcher routes generation calls through retry, model fallback, rate
// limiting and the image quota breaker. The fallback is two-tier only:
// it bounds worst-case latency to primary budget + fallback budget.
type Dispatcher struct {
	provider Provider
	cfg      DispatcherConfig
	limiter  *rate.Limiter
	breaker  *QuotaBreaker
}

// NewDispatcher creates a dispatcher. limiter throttles every provider
// call; breaker guards the image path only.
func NewDispatcher(provider Provider, cfg DispatcherConfig, limiter *rate.Limiter, breaker *QuotaBreaker) *Dispatcher {
	return &Dispatcher{provider: provider, cfg: cfg, limiter: limiter, breaker: breaker}
}

// Generate runs a text generation against the preferred model with its
// retry budget, then once against the fallback model on a recoverable
// failure class. Options the fallback tier does not support are stripped
// before the second attempt. A fallback failure propagates as-is.
func (d *Dispatcher) Generate(ctx context.Context, prompt string, opts GenerateOptions) (*GenerateResult, error) {
	req := GenerateRequest{Model: d.cfg.TextModel, Prompt: prompt, Options: opts}

	result, err := retry.Do(ctx, d.cfg.TextPolicy, "generate:"+req.Model, func(ctx context.Context) (*GenerateResult, error) {
		return d.callText(ctx, req)
	})
	if err == nil {
		return result, nil
	}

	if d.cfg.FallbackModel == "" || d.cfg.FallbackModel == req.Model || !generrors.IsFallbackWorthy(err) {
		return nil, err
	}

	log.Warn().
		Err(err).
		Str("preferred", req.Model).
		Str("fallback", d.cfg.FallbackModel).
		Msg("preferred model failed, switching to fallback")

	fallbackReq := GenerateRequest{
		Model:   d.cfg.FallbackModel,
		Prompt:  req.Prompt,
		Options: stripUnsupported(req.Options),
	}
	return retry.Do(ctx, d.cfg.TextPolicy, "generate:"+fallbackReq.Model, func(ctx context.Context) (*GenerateResult, error) {
		return d.callText(ctx, fallbackReq)
	})
}

// GenerateImage renders one image. When the breaker has latched the call
// returns a placeholder before any network attempt; a quota-classified
// failure latches it.
func (d *Dispatcher) GenerateImage(ctx context.Context, prompt, aspectRatio string) (*ImageResult, error) {
	if !SupportedAspectRatios[aspectRatio] {
		return nil, generrors.New(generrors.KindValidation, "unsupported aspect ratio "+aspectRatio)
	}
	if d.breaker.Tripped() {
		return PlaceholderImage(prompt, aspectRatio), nil
	}

	req := ImageRequest{Model: d.cfg.ImageModel, Prompt: prompt, AspectRatio: aspectRatio}
	result, err := retry.Do(ctx, d.cfg.ImagePolicy, "image:"+req.Model, func(ctx context.Context) (*ImageResult, error) {
		if err := d.wait(ctx); err != nil {
			return nil, err
		}
		return d.provider.GenerateImage(ctx, req)
	})
	if err != nil {
		// Only real quota exhaustion latches the breaker. Transient
		// rate limiting already spent the retry budget above and
		// surfaces to the caller instead of poisoning the session.
		if generrors.KindOf(err) == generrors.KindQuotaExhausted {
			d.breaker.Trip()
			return PlaceholderImage(prompt, aspectRatio), nil
		}
		return nil, err
	}
	return result, nil
}

func (d *Dispatcher) callText(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	if err := d.wait(ctx); err != nil {
		return nil, err
	}
	result, err := d.provider.GenerateContent(ctx, req)
	if err != nil {
		return nil, err
	}
	if result == nil || result.Text == "" {
		return nil, generrors.New(generrors.KindEmptyResponse, "empty model response")
	}
	return result, nil
}

func (d *Dispatcher) wait(ctx context.Context) error {
	if d.limiter == nil {
		return nil
	}
	return d.limiter.Wait(ctx)
}

// stripUnsupported removes options the fallback model tier rejects.
func stripUnsupported(opts GenerateOptions) GenerateOptions {
	opts.ThinkingBudget = nil
	opts.ResponseSchema = nil
	return opts
}
