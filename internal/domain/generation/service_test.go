package generation_test

import (
	"context"
	"encoding/base64"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	generrors "github.com/Johtaguerrero/artigogenio/internal/domain/errors"
	"github.com/Johtaguerrero/artigogenio/internal/domain/article"
	"github.com/Johtaguerrero/artigogenio/internal/domain/generation"
	"github.com/Johtaguerrero/artigogenio/internal/domain/htmlfrag"
	"github.com/Johtaguerrero/artigogenio/internal/domain/llm"
	"github.com/Johtaguerrero/artigogenio/internal/infrastructure/store"
	"github.com/Johtaguerrero/artigogenio/internal/infrastructure/wordpress"
)

type stubRenderer struct {
	result *llm.ImageResult
	err    error
	calls  int
}

func (r *stubRenderer) GenerateImage(context.Context, string, string) (*llm.ImageResult, error) {
	r.calls++
	return r.result, r.err
}

type stubVideos struct {
	asset *article.VideoAsset
	err   error
}

func (v *stubVideos) Resolve(context.Context, string) (*article.VideoAsset, error) {
	return v.asset, v.err
}

type stubPublisher struct {
	result   *wordpress.PublishResult
	err      error
	gotHero  []byte
	gotMIME  string
	statusIn string
}

func (p *stubPublisher) Publish(_ context.Context, a *article.Article, heroData []byte, heroMIME string) (*wordpress.PublishResult, error) {
	p.gotHero = heroData
	p.gotMIME = heroMIME
	p.statusIn = a.Technical.WordPressPayload.Status
	return p.result, p.err
}

func completedArticle(t *testing.T, st store.Store) *article.Article {
	t.Helper()
	a := article.New(article.GenerationRequest{
		Topic:         "Solar energy in Brazil",
		TargetKeyword: "solar energy brazil 2025",
		Language:      "en",
		WordCount:     article.WordCount1500,
	})
	a.Structure.Title = "Solar Energy Brazil 2025 Guide"
	a.HTMLContent = "<article><h1>T</h1><p>Lead.</p></article>"
	a.Media.ImageSpecs = []article.ImageSpec{
		{Role: article.RoleHero, AspectRatio: "16:9", Prompt: "solar farm"},
		{Role: article.RoleSocial, AspectRatio: "1:1", Prompt: "solar panel"},
	}
	a.Seo.Slug = "solar-energy-brazil-2025"
	a.Status = article.StatusCompleted
	require.NoError(t, st.SaveArticle(context.Background(), a))
	return a
}

func newService(renderer *stubRenderer, videos *stubVideos, st store.Store, pub *stubPublisher) *generation.Service {
	factory := func(wordpress.Credentials) generation.Publisher { return pub }
	return generation.NewService(nil, renderer, videos, st, factory, zerolog.Nop())
}

func TestService_RenderImage(t *testing.T) {
	ctx := context.Background()

	t.Run("renders one role and persists the data URL", func(t *testing.T) {
		st := store.NewMemory(0)
		a := completedArticle(t, st)
		renderer := &stubRenderer{result: &llm.ImageResult{Data: []byte{9, 9}, MIMEType: "image/png", ModelUsed: "img-model"}}
		svc := newService(renderer, nil, st, nil)

		got, err := svc.RenderImage(ctx, a.ID, article.RoleSocial)
		require.NoError(t, err)
		assert.Equal(t, 1, renderer.calls)

		spec := got.ImageByRole(article.RoleSocial)
		require.NotNil(t, spec)
		assert.Equal(t, base64.StdEncoding.EncodeToString([]byte{9, 9}), spec.RenderedData)
		assert.Contains(t, spec.RenderedURL, "data:image/png;base64,")
		assert.Equal(t, "img-model", spec.ModelUsed)

		stored, err := st.GetArticle(ctx, a.ID)
		require.NoError(t, err)
		assert.NotEmpty(t, stored.ImageByRole(article.RoleSocial).RenderedData)
	})

	t.Run("placeholder results keep only the URL", func(t *testing.T) {
		st := store.NewMemory(0)
		a := completedArticle(t, st)
		renderer := &stubRenderer{result: llm.PlaceholderImage("solar farm", "16:9")}
		svc := newService(renderer, nil, st, nil)

		got, err := svc.RenderImage(ctx, a.ID, article.RoleHero)
		require.NoError(t, err)
		spec := got.ImageByRole(article.RoleHero)
		assert.Empty(t, spec.RenderedData)
		assert.Contains(t, spec.RenderedURL, "placehold.co")
	})

	t.Run("unknown role is a validation error", func(t *testing.T) {
		st := store.NewMemory(0)
		a := completedArticle(t, st)
		svc := newService(&stubRenderer{}, nil, st, nil)

		_, err := svc.RenderImage(ctx, a.ID, article.RoleFeed)
		require.Error(t, err)
		assert.Equal(t, generrors.KindValidation, generrors.KindOf(err))
	})

	t.Run("missing article surfaces not found", func(t *testing.T) {
		svc := newService(&stubRenderer{}, nil, store.NewMemory(0), nil)
		_, err := svc.RenderImage(ctx, "nope", article.RoleHero)
		assert.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestService_AttachVideo(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory(0)
	a := completedArticle(t, st)
	videos := &stubVideos{asset: &article.VideoAsset{
		VideoID:     "dQw4w9WgXcQ",
		Title:       "Solar 101",
		EmbedMarkup: `<iframe src="https://www.youtube-nocookie.com/embed/dQw4w9WgXcQ"></iframe>`,
	}}
	svc := newService(nil, videos, st, nil)

	got, err := svc.AttachVideo(ctx, a.ID, "solar documentary")
	require.NoError(t, err)
	assert.Equal(t, 1, htmlfrag.CountOccurrences(got.HTMLContent, htmlfrag.VideoWrapperID))
	assert.Contains(t, got.Technical.SchemaJSONLD, "VideoObject")

	// Attaching again replaces, never duplicates.
	again, err := svc.AttachVideo(ctx, a.ID, "another documentary")
	require.NoError(t, err)
	assert.Equal(t, 1, htmlfrag.CountOccurrences(again.HTMLContent, htmlfrag.VideoWrapperID))
}

func TestService_Publish(t *testing.T) {
	ctx := context.Background()

	t.Run("publishes a completed article and marks it", func(t *testing.T) {
		st := store.NewMemory(0)
		a := completedArticle(t, st)
		heroData := []byte("hero-bytes")
		spec := a.ImageByRole(article.RoleHero)
		spec.RenderedData = base64.StdEncoding.EncodeToString(heroData)
		require.NoError(t, st.SaveArticle(ctx, a))
		require.NoError(t, st.SaveSettings(ctx, article.Settings{
			WordPressURL: "https://site", WordPressUser: "u", WordPressAppSecret: "p",
		}))

		pub := &stubPublisher{result: &wordpress.PublishResult{PostID: 321, Link: "https://site/?p=321"}}
		svc := newService(nil, nil, st, pub)

		got, result, err := svc.Publish(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, 321, result.PostID)
		assert.Equal(t, article.StatusPublished, got.Status)
		assert.Equal(t, 321, got.RemoteID)
		assert.NotNil(t, got.PublishedAt)
		assert.Equal(t, heroData, pub.gotHero, "decoded hero bytes reach the publisher")

		stored, err := st.GetArticle(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, article.StatusPublished, stored.Status)
	})

	t.Run("hero MIME follows the rendered data URL", func(t *testing.T) {
		st := store.NewMemory(0)
		a := completedArticle(t, st)
		heroData := []byte("webp-bytes")
		spec := a.ImageByRole(article.RoleHero)
		spec.RenderedData = base64.StdEncoding.EncodeToString(heroData)
		spec.RenderedURL = "data:image/webp;base64," + spec.RenderedData
		require.NoError(t, st.SaveArticle(ctx, a))

		pub := &stubPublisher{result: &wordpress.PublishResult{PostID: 7}}
		svc := newService(nil, nil, st, pub)

		_, _, err := svc.Publish(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, heroData, pub.gotHero)
		assert.Equal(t, "image/webp", pub.gotMIME)
	})

	t.Run("hero without a data URL falls back to png", func(t *testing.T) {
		st := store.NewMemory(0)
		a := completedArticle(t, st)
		spec := a.ImageByRole(article.RoleHero)
		spec.RenderedData = base64.StdEncoding.EncodeToString([]byte("raw"))
		spec.RenderedURL = ""
		require.NoError(t, st.SaveArticle(ctx, a))

		pub := &stubPublisher{result: &wordpress.PublishResult{PostID: 8}}
		svc := newService(nil, nil, st, pub)

		_, _, err := svc.Publish(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, "image/png", pub.gotMIME)
	})

	t.Run("rejects an article still generating", func(t *testing.T) {
		st := store.NewMemory(0)
		a := completedArticle(t, st)
		a.Status = article.StatusDraft
		require.NoError(t, st.SaveArticle(ctx, a))

		svc := newService(nil, nil, st, &stubPublisher{})
		_, _, err := svc.Publish(ctx, a.ID)
		require.Error(t, err)
		assert.Equal(t, generrors.KindValidation, generrors.KindOf(err))
	})

	t.Run("publisher failure leaves the article untouched", func(t *testing.T) {
		st := store.NewMemory(0)
		a := completedArticle(t, st)

		pub := &stubPublisher{err: generrors.New(generrors.KindCredentials, "rejected")}
		svc := newService(nil, nil, st, pub)
		_, _, err := svc.Publish(ctx, a.ID)
		require.Error(t, err)

		stored, err := st.GetArticle(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, article.StatusCompleted, stored.Status)
	})
}
