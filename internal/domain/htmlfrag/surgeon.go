// Package htmlfrag performs string-level surgery on model-produced HTML
// fragments. The source is an untrusted generative model, so the
// operations here tolerate malformed markup instead of requiring a
// well-formed document: each mutation has a documented fallback order
// and degrades to appending rather than failing.
package htmlfrag

import (
	"regexp"
	"strings"
)

// VideoWrapperID marks an injected video block so re-injection can find
// and replace it.
const VideoWrapperID = "ag-video-embed"

// InternalLinksID marks the spliced internal-links block.
const InternalLinksID = "ag-internal-links"

// ReferencesClass is the class the body prompt mandates on the
// authority-references section.
const ReferencesClass = "authority-references"

var (
	codeFenceRe = regexp.MustCompile("(?m)^```[a-zA-Z]*\\s*$")
	// Page-level tags the model sometimes leaks around the article body.
	outerTagRe = regexp.MustCompile(`(?is)</?(html|head|body|!doctype)[^>]*>`)

	firstParagraphCloseRe = regexp.MustCompile(`(?is)</p>`)
	firstH1CloseRe        = regexp.MustCompile(`(?is)</h1>`)
	articleCloseRe        = regexp.MustCompile(`(?is)</article>`)

	// Strip patterns match the block and nothing around it, and the
	// insertions below add no separators. Whitespace the block did not
	// bring in stays untouched, so strip(inject(x)) == x and
	// inject(inject(x)) == inject(x) byte for byte at every anchor.
	videoBlockRe         = regexp.MustCompile(`(?is)<div[^>]*id="` + VideoWrapperID + `"[^>]*>.*?</div>`)
	referencesSectionRe  = regexp.MustCompile(`(?is)<section[^>]*class="[^"]*` + ReferencesClass + `[^"]*"[^>]*>.*?</section>`)
	internalLinksBlockRe = regexp.MustCompile(`(?is)<(?:div|section)[^>]*id="` + InternalLinksID + `"[^>]*>.*?</(?:div|section)>`)
)

// CleanBody strips markdown fences and leaked page-level tags from a
// generated HTML body.
func CleanBody(html string) string {
	cleaned := codeFenceRe.ReplaceAllString(html, "")
	cleaned = outerTagRe.ReplaceAllString(cleaned, "")
	return strings.TrimSpace(cleaned)
}

// SpliceInternalLinks inserts an internal-links block exactly once,
// regardless of whether the model already emitted one. Insertion order:
// right after the authority-references section if present, else right
// before the closing article tag, else appended at the end.
func SpliceInternalLinks(html, block string) string {
	if strings.TrimSpace(block) == "" {
		return html
	}
	html = internalLinksBlockRe.ReplaceAllString(html, "")

	if loc := referencesSectionRe.FindStringIndex(html); loc != nil {
		return html[:loc[1]] + block + html[loc[1]:]
	}
	if loc := articleCloseRe.FindStringIndex(html); loc != nil {
		return html[:loc[0]] + block + html[loc[0]:]
	}
	return html + block
}

// InjectVideo inserts embedMarkup wrapped in an identified block after
// the first paragraph close tag; if none, after the first H1 close tag;
// if neither, prepended to the fragment. A previously injected block is
// stripped first, so injection is idempotent across re-runs.
func InjectVideo(html, embedBlock string) string {
	if strings.TrimSpace(embedBlock) == "" {
		return html
	}
	html = StripVideo(html)
	block := `<div id="` + VideoWrapperID + `" class="video-embed">` + embedBlock + `</div>`

	if loc := firstParagraphCloseRe.FindStringIndex(html); loc != nil {
		return html[:loc[1]] + block + html[loc[1]:]
	}
	if loc := firstH1CloseRe.FindStringIndex(html); loc != nil {
		return html[:loc[1]] + block + html[loc[1]:]
	}
	return block + html
}

// StripVideo removes a previously injected video block, if any.
func StripVideo(html string) string {
	return videoBlockRe.ReplaceAllString(html, "")
}

// CountOccurrences reports how many times the identified wrapper appears.
// Used by validation and tests to assert idempotence.
func CountOccurrences(html, wrapperID string) int {
	return strings.Count(html, `id="`+wrapperID+`"`)
}
