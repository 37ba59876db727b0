package pipeline

import (
	"fmt"
	"strings"

	"github.com/Johtaguerrero/artigogenio/internal/domain/article"
	"github.com/Johtaguerrero/artigogenio/internal/domain/htmlfrag"
)

func analysisPrompt(keyword, language string, serpTitles []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, `You are an SEO strategist. Analyze the competitive landscape for the keyword %q (content language: %s).`, keyword, language)
	if len(serpTitles) > 0 {
		b.WriteString("\nThese titles currently rank for the keyword:\n")
		for _, t := range serpTitles {
			fmt.Fprintf(&b, "- %s\n", t)
		}
	}
	b.WriteString(`
Respond with JSON only:
{"competitor_titles": [string], "content_gaps": [string], "paa_questions": [string], "lsi_keywords": [string], "strategy_summary": string}`)
	return b.String()
}

func structurePrompt(req article.GenerationRequest, analysis article.CompetitiveAnalysis, maxTitleWords int, correction string) string {
	var b strings.Builder
	fmt.Fprintf(&b, `Write the headline structure for an article about %q in %s.
Target keyword: %q.

Rules:
- "title" MUST contain the target keyword and MUST have at most %d words.
- "subtitle" expands the promise of the title.
- "lead" is one opening paragraph; the target keyword must appear within its first sentence.
`, req.Topic, req.Language, req.TargetKeyword, maxTitleWords)
	if analysis.StrategySummary != "" {
		fmt.Fprintf(&b, "\nCompetitive strategy to beat: %s\n", analysis.StrategySummary)
	}
	if len(analysis.ContentGaps) > 0 {
		fmt.Fprintf(&b, "Content gaps to exploit: %s\n", strings.Join(analysis.ContentGaps, "; "))
	}
	if correction != "" {
		fmt.Fprintf(&b, "\nYour previous attempt was rejected: %s\n", correction)
	}
	b.WriteString(`
Respond with JSON only: {"title": string, "subtitle": string, "lead": string}`)
	return b.String()
}

func bodyPrompt(req article.GenerationRequest, structure article.Structure, analysis article.CompetitiveAnalysis) string {
	var b strings.Builder
	fmt.Fprintf(&b, `Write the full HTML body of an article titled %q (subtitle: %q) in %s, around %s words, optimized for the keyword %q.

Structural rules:
- Wrap everything in exactly one <article> element. No <html>, <head> or <body> tags, no markdown.
- Start with an <h1> for the title, then the lead paragraph: %q
- Use <h2>/<h3> sections. Never nest <p> tags.
- End with exactly one <section class=%q> listing 3-5 external high-authority sources as links.
`, structure.Title, structure.Subtitle, req.Language, req.WordCount, req.TargetKeyword, structure.Lead, htmlfrag.ReferencesClass)

	opts := req.AdvancedOptions
	if opts.TableOfContents {
		b.WriteString("- Include one table of contents after the lead. Do not duplicate it.\n")
	}
	if opts.Glossary {
		b.WriteString("- Include a short glossary section of key terms.\n")
	}
	if opts.Tables {
		b.WriteString("- Include at least one comparison <table>.\n")
	}
	if opts.Lists {
		b.WriteString("- Use <ul>/<ol> lists where they aid scanning.\n")
	}
	if opts.SecureSources {
		b.WriteString("- Cite only https sources from recognized institutions.\n")
	}
	if len(analysis.PAAQuestions) > 0 {
		fmt.Fprintf(&b, "- Answer these reader questions in dedicated sections: %s\n", strings.Join(analysis.PAAQuestions, "; "))
	}
	if len(analysis.LSIKeywords) > 0 {
		fmt.Fprintf(&b, "- Weave in these related terms naturally: %s\n", strings.Join(analysis.LSIKeywords, ", "))
	}
	b.WriteString("\nRespond with the HTML only.")
	return b.String()
}

func mediaPrompt(structure article.Structure, keyword, language string) string {
	var b strings.Builder
	fmt.Fprintf(&b, `Plan the media for an article titled %q (keyword %q, language %s).

Produce:
- "video_search_query": one concise YouTube search query for a companion video.
- "image_specs": exactly %d entries, one per slot, in this order:
`, structure.Title, keyword, language, len(imageSlots))
	for _, slot := range imageSlots {
		fmt.Fprintf(&b, "  - role %q, aspect_ratio %q\n", slot.Role, slot.Ratio)
	}
	b.WriteString(`Each image spec: {"role": string, "aspect_ratio": string, "prompt": string (English, photorealistic style directives, no text in image), "alt_text": string, "title": string, "caption": string, "filename": string (SEO-safe slug, no extension)}.

Respond with JSON only: {"video_search_query": string, "image_specs": [...]}`)
	return b.String()
}

func metadataPrompt(req article.GenerationRequest, structure article.Structure, bodyExcerpt string, cfg Config) string {
	return fmt.Sprintf(`Produce the SEO metadata for an article titled %q about %q (language %s, target keyword %q).

Hard limits:
- "seo_title": at most %d characters, starting with or leading into the keyword.
- "meta_description": at most %d characters; the keyword must appear within the first %d characters.
- "viral_excerpt": at most %d characters.
- "synonyms": exactly %d entries. "tags": exactly %d entries.

Article opening for context:
%s

Respond with JSON only:
{"seo_title": string, "meta_description": string, "slug": string, "synonyms": [string], "related_keyphrase": string, "tags": [string], "lsi_keywords": [string], "opportunities": {"featured_snippet_hint": string, "paa_list": [string], "news_angle": string}, "viral_excerpt": string}`,
		structure.Title, req.Topic, req.Language, req.TargetKeyword,
		cfg.SeoTitleMax, cfg.MetaDescMax, cfg.MetaDescKeywordIn, cfg.ExcerptMax,
		cfg.SynonymCount, cfg.TagCount, bodyExcerpt)
}

// internalLinksBlock renders the discovered links as an HTML block ready
// for splicing.
func internalLinksBlock(links []SearchResult) string {
	if len(links) == 0 {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, `<section id=%q><h2>Read next</h2><ul>`, htmlfrag.InternalLinksID)
	for _, l := range links {
		fmt.Fprintf(&b, `<li><a href=%q>%s</a></li>`, l.URL, l.Title)
	}
	b.WriteString("</ul></section>")
	return b.String()
}
