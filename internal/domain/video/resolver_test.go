package video_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	generrors "github.com/Johtaguerrero/artigogenio/internal/domain/errors"
	"github.com/Johtaguerrero/artigogenio/internal/domain/llm"
	"github.com/Johtaguerrero/artigogenio/internal/domain/video"
)

func TestExtractID(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		want    string
		wantErr bool
	}{
		{
			name: "standard watch URL",
			url:  "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
			want: "dQw4w9WgXcQ",
		},
		{
			name: "watch URL with extra params before v",
			url:  "https://www.youtube.com/watch?list=PL123&v=dQw4w9WgXcQ&t=42s",
			want: "dQw4w9WgXcQ",
		},
		{
			name: "short link",
			url:  "https://youtu.be/dQw4w9WgXcQ?si=share",
			want: "dQw4w9WgXcQ",
		},
		{
			name: "embed URL",
			url:  "https://www.youtube.com/embed/dQw4w9WgXcQ",
			want: "dQw4w9WgXcQ",
		},
		{
			name: "shorts URL",
			url:  "https://www.youtube.com/shorts/dQw4w9WgXcQ",
			want: "dQw4w9WgXcQ",
		},
		{
			name: "mobile host",
			url:  "https://m.youtube.com/watch?v=dQw4w9WgXcQ",
			want: "dQw4w9WgXcQ",
		},
		{
			name: "scheme-less watch URL",
			url:  "youtube.com/watch?v=dQw4w9WgXcQ",
			want: "dQw4w9WgXcQ",
		},
		{
			name:    "unrelated site",
			url:     "https://example.com/watch?v=dQw4w9WgXcQ",
			wantErr: true,
		},
		{
			name:    "lookalike host with a watch path",
			url:     "https://notyoutube.com/watch?v=dQw4w9WgXcQ",
			wantErr: true,
		},
		{
			name:    "youtube as a subdomain of another site",
			url:     "https://youtube.com.evil.example/watch?v=dQw4w9WgXcQ",
			wantErr: true,
		},
		{
			name:    "ID too short",
			url:     "https://youtu.be/short",
			wantErr: true,
		},
		{
			name:    "empty string",
			url:     "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := video.ExtractID(tt.url)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, generrors.KindValidation, generrors.KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEmbedMarkup(t *testing.T) {
	markup := video.EmbedMarkup("dQw4w9WgXcQ", `A "quoted" title`)
	assert.Contains(t, markup, "youtube-nocookie.com/embed/dQw4w9WgXcQ")
	assert.Contains(t, markup, `loading="lazy"`)
	assert.Contains(t, markup, "sandbox=")
	assert.NotContains(t, markup, `title="A "quoted" title"`, "title must be escaped")
}

func TestThumbnailURL(t *testing.T) {
	assert.Equal(t, "https://i.ytimg.com/vi/dQw4w9WgXcQ/maxresdefault.jpg", video.ThumbnailURL("dQw4w9WgXcQ"))
}

type scriptedGenerator struct {
	text string
	err  error
}

func (s scriptedGenerator) Generate(context.Context, string, llm.GenerateOptions) (*llm.GenerateResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &llm.GenerateResult{Text: s.text}, nil
}

func TestResolver_Resolve(t *testing.T) {
	t.Run("derives embed and thumbnail from the extracted ID", func(t *testing.T) {
		gen := scriptedGenerator{text: `{"title": "Solar 101", "channel": "EnergyNow", "url": "https://youtu.be/dQw4w9WgXcQ", "caption": "Intro to solar", "alt_text": "Solar panels"}`}
		asset, err := video.NewResolver(gen).Resolve(context.Background(), "solar energy basics")
		require.NoError(t, err)

		assert.Equal(t, "dQw4w9WgXcQ", asset.VideoID)
		assert.Equal(t, "https://www.youtube.com/watch?v=dQw4w9WgXcQ", asset.CanonicalURL)
		assert.Contains(t, asset.EmbedMarkup, "youtube-nocookie.com/embed/dQw4w9WgXcQ")
		assert.Equal(t, "https://i.ytimg.com/vi/dQw4w9WgXcQ/maxresdefault.jpg", asset.ThumbnailURL)
		assert.Equal(t, "Solar 101", asset.Title)
	})

	t.Run("missing URL fails with a missing-field error", func(t *testing.T) {
		gen := scriptedGenerator{text: `{"title": "Solar 101", "channel": "EnergyNow", "url": ""}`}
		_, err := video.NewResolver(gen).Resolve(context.Background(), "solar energy basics")
		require.Error(t, err)
		assert.Equal(t, generrors.KindMissingField, generrors.KindOf(err))
	})

	t.Run("hallucinated URL fails validation", func(t *testing.T) {
		gen := scriptedGenerator{text: `{"title": "Fake", "url": "https://example.com/video/123"}`}
		_, err := video.NewResolver(gen).Resolve(context.Background(), "solar energy basics")
		require.Error(t, err)
		assert.Equal(t, generrors.KindValidation, generrors.KindOf(err))
	})

	t.Run("empty query is rejected before any call", func(t *testing.T) {
		_, err := video.NewResolver(scriptedGenerator{}).Resolve(context.Background(), "  ")
		require.Error(t, err)
		assert.Equal(t, generrors.KindValidation, generrors.KindOf(err))
	})
}
