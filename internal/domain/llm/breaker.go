package llm

import (
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
)

// QuotaBreaker latches after one observed image-quota exhaustion and
// short-circuits every later image call for the rest of the session.
// Image quota windows run for tens of minutes, so fail-fast beats
// re-attempting. The breaker is injected, never a package singleton, so
// tests reset it by constructing a fresh one. Text generation has its
// own, shorter quota window and never consults this breaker.
type QuotaBreaker struct {
	mu      sync.Mutex
	tripped bool
	onTrip  func()
}

// NewQuotaBreaker returns a cleared breaker.
func NewQuotaBreaker() *QuotaBreaker {
	return &QuotaBreaker{}
}

// OnTrip registers a hook invoked once when the breaker latches.
// Used to feed trip counts into metrics without a package dependency.
func (b *QuotaBreaker) OnTrip(fn func()) *QuotaBreaker {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onTrip = fn
	return b
}

// Tripped reports whether the breaker has latched.
func (b *QuotaBreaker) Tripped() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.tripped
}

// Trip latches the breaker. There is no automatic reset; a new session
// starts with a fresh breaker.
func (b *QuotaBreaker) Trip() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.tripped {
		log.Warn().Msg("image quota exhausted, short-circuiting further image generation this session")
		b.tripped = true
		if b.onTrip != nil {
			b.onTrip()
		}
	}
}

// placeholderDimensions maps aspect ratios to placeholder sizes.
var placeholderDimensions = map[string]string{
	"1:1":  "1080x1080",
	"16:9": "1280x720",
	"9:16": "720x1280",
	"4:3":  "1200x900",
	"3:4":  "900x1200",
}

// PlaceholderImage builds a deterministic placeholder reference for a
// prompt, sized to the requested aspect ratio and annotated with the
// truncated prompt text.
func PlaceholderImage(prompt, aspectRatio string) *ImageResult {
	dims, ok := placeholderDimensions[aspectRatio]
	if !ok {
		dims = placeholderDimensions["16:9"]
	}
	label := strings.TrimSpace(prompt)
	if len(label) > 40 {
		label = label[:40]
	}
	if label == "" {
		label = "image unavailable"
	}
	return &ImageResult{
		URL:         fmt.Sprintf("https://placehold.co/%s?text=%s", dims, url.QueryEscape(label)),
		Placeholder: true,
		ModelUsed:   "placeholder",
	}
}
