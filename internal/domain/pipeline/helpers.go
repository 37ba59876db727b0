package pipeline

import (
	"encoding/base64"
	"errors"
	"fmt"
	"html"
	"strings"

	generrors "github.com/Johtaguerrero/artigogenio/internal/domain/errors"
	"github.com/Johtaguerrero/artigogenio/internal/domain/article"
	"github.com/Johtaguerrero/artigogenio/internal/domain/llm"
	"github.com/Johtaguerrero/artigogenio/internal/domain/seo"
)

func asGenError(err error, target **generrors.GenError) bool {
	return errors.As(err, target)
}

// normalizeImageSpecs forces the fixed slot layout onto whatever the
// model returned: roles and ratios come from the slot table, prompts and
// copy come from the model when present, defaults otherwise.
func normalizeImageSpecs(specs []article.ImageSpec, title, keyword string) []article.ImageSpec {
	byRole := make(map[article.ImageRole]article.ImageSpec, len(specs))
	for _, s := range specs {
		byRole[s.Role] = s
	}

	out := make([]article.ImageSpec, 0, len(imageSlots))
	for i, slot := range imageSlots {
		spec, ok := byRole[slot.Role]
		if !ok && i < len(specs) {
			spec = specs[i]
		}
		spec.Role = slot.Role
		spec.AspectRatio = slot.Ratio
		if strings.TrimSpace(spec.Prompt) == "" {
			spec.Prompt = fmt.Sprintf("Photorealistic editorial photograph illustrating %s, natural light, high detail", title)
		}
		if strings.TrimSpace(spec.AltText) == "" {
			spec.AltText = title
		}
		if strings.TrimSpace(spec.Filename) == "" {
			spec.Filename = Slugify(fmt.Sprintf("%s-%s", keyword, slot.Role))
		} else {
			spec.Filename = Slugify(spec.Filename)
		}
		out = append(out, spec)
	}
	return out
}

func applyImageResult(spec *article.ImageSpec, result *llm.ImageResult) {
	spec.ModelUsed = result.ModelUsed
	spec.ResolutionUsed = result.Resolution
	if result.Placeholder {
		spec.RenderedURL = result.URL
		return
	}
	spec.RenderedData = base64.StdEncoding.EncodeToString(result.Data)
	spec.RenderedURL = fmt.Sprintf("data:%s;base64,%s", result.MIMEType, spec.RenderedData)
}

// enforceMetadata clamps a model response to the hard ceilings. Lists
// are padded or trimmed to their fixed cardinalities so downstream
// consumers never see a short list.
func enforceMetadata(meta article.SeoMetadata, keyword, title string, cfg Config) article.SeoMetadata {
	defaults := defaultMetadata(keyword, title, cfg)

	meta.TargetKeyword = keyword
	meta.SeoTitle = clamp(firstNonEmpty(meta.SeoTitle, defaults.SeoTitle), cfg.SeoTitleMax)
	meta.MetaDescription = enforceDescription(firstNonEmpty(meta.MetaDescription, defaults.MetaDescription), keyword, cfg)
	meta.ViralExcerpt = clamp(firstNonEmpty(meta.ViralExcerpt, defaults.ViralExcerpt), cfg.ExcerptMax)
	meta.Slug = firstNonEmpty(Slugify(meta.Slug), defaults.Slug)
	meta.RelatedKeyphrase = firstNonEmpty(meta.RelatedKeyphrase, defaults.RelatedKeyphrase)
	meta.Synonyms = fixCardinality(meta.Synonyms, defaults.Synonyms, cfg.SynonymCount)
	meta.Tags = fixCardinality(meta.Tags, defaults.Tags, cfg.TagCount)
	return meta
}

// defaultMetadata derives truncation-safe metadata purely from the
// keyword; used whenever the model fails so no field is ever blank.
func defaultMetadata(keyword, title string, cfg Config) article.SeoMetadata {
	cased := titleCase(keyword)
	synonyms := make([]string, 0, cfg.SynonymCount)
	for _, suffix := range []string{"guide", "tips", "explained", "overview", "basics", "trends"} {
		if len(synonyms) == cfg.SynonymCount {
			break
		}
		synonyms = append(synonyms, keyword+" "+suffix)
	}
	tags := make([]string, 0, cfg.TagCount)
	for _, w := range strings.Fields(keyword) {
		if len(tags) == cfg.TagCount {
			break
		}
		tags = append(tags, w)
	}
	for len(tags) < cfg.TagCount {
		tags = append(tags, fmt.Sprintf("%s %d", keyword, len(tags)+1))
	}

	return article.SeoMetadata{
		SeoTitle:         clamp(firstNonEmpty(title, cased), cfg.SeoTitleMax),
		MetaDescription:  enforceDescription(fmt.Sprintf("%s: a complete, practical guide with everything you need to know, updated and reviewed.", cased), keyword, cfg),
		Slug:             Slugify(keyword),
		TargetKeyword:    keyword,
		Synonyms:         synonyms,
		RelatedKeyphrase: keyword + " guide",
		Tags:             tags,
		ViralExcerpt:     clamp(fmt.Sprintf("Everything about %s in one place.", keyword), cfg.ExcerptMax),
	}
}

// enforceDescription guarantees the keyword sits inside the first
// MetaDescKeywordIn characters and the whole string fits MetaDescMax.
// The ceilings count characters, so both operate on runes.
func enforceDescription(desc, keyword string, cfg Config) string {
	runes := []rune(desc)
	window := cfg.MetaDescKeywordIn
	if window > len(runes) {
		window = len(runes)
	}
	if !strings.Contains(strings.ToLower(string(runes[:window])), strings.ToLower(keyword)) {
		desc = titleCase(keyword) + ": " + desc
	}
	return clamp(desc, cfg.MetaDescMax)
}

// clamp trims s to at most max characters, preferring a word boundary
// past the midpoint. Rune-based so accented text is never cut mid-rune.
func clamp(s string, max int) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	cut := runes[:max]
	for i := len(cut) - 1; i > max/2; i-- {
		if cut[i] == ' ' {
			cut = cut[:i]
			break
		}
	}
	return strings.TrimRight(string(cut), " ,.;:-")
}

func fixCardinality(values, defaults []string, n int) []string {
	out := make([]string, 0, n)
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			continue
		}
		out = append(out, v)
		if len(out) == n {
			return out
		}
	}
	for _, d := range defaults {
		if len(out) == n {
			break
		}
		out = append(out, d)
	}
	for len(out) < n {
		out = append(out, fmt.Sprintf("extra-%d", len(out)+1))
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func appendAuthorCredit(body string, author *article.Author) string {
	credit := fmt.Sprintf(`<div class="author-credit"><p><strong>%s</strong> - %s</p></div>`,
		html.EscapeString(author.Name), html.EscapeString(author.Bio))
	if i := strings.LastIndex(strings.ToLower(body), "</article>"); i >= 0 {
		return body[:i] + credit + "\n" + body[i:]
	}
	return body + "\n" + credit
}

func buildTechnical(a *article.Article, settings article.Settings, authorName string) (article.TechnicalSeo, error) {
	siteURL := firstNonEmpty(a.Request.SiteURL, settings.SiteURL, "https://example.com")
	return seo.Build(a, seo.SiteContext{
		SiteURL:          siteURL,
		OrganizationName: firstNonEmpty(settings.OrganizationName, hostOf(siteURL)),
		OrganizationLogo: settings.OrganizationLogo,
		AuthorName:       firstNonEmpty(authorName, settings.AdminName),
	})
}
