package pipeline

import (
	"context"
	"fmt"
	"math/rand"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"

	generrors "github.com/Johtaguerrero/artigogenio/internal/domain/errors"
	"github.com/Johtaguerrero/artigogenio/internal/domain/article"
	"github.com/Johtaguerrero/artigogenio/internal/domain/htmlfrag"
	"github.com/Johtaguerrero/artigogenio/internal/domain/llm"
)

// Directory reads the settings and author records the pipeline needs
// for assembly.
type Directory interface {
	GetSettings(ctx context.Context) (article.Settings, error)
	GetAuthor(ctx context.Context, id string) (*article.Author, error)
}

// Pipeline runs the full generation sequence for one article.
type Pipeline struct {
	gen      Generator
	searcher LinkSearcher
	videos   VideoResolver
	store    Store
	dir      Directory
	cfg      Config
	log      zerolog.Logger
	observer Observer
}

// New creates a pipeline. searcher, videos and observer may be nil; the
// stages that depend on them degrade to their defaults.
func New(gen Generator, searcher LinkSearcher, videos VideoResolver, store Store, dir Directory, cfg Config, log zerolog.Logger, observer Observer) *Pipeline {
	return &Pipeline{
		gen:      gen,
		searcher: searcher,
		videos:   videos,
		store:    store,
		dir:      dir,
		cfg:      cfg,
		log:      log.With().Str("component", "pipeline").Logger(),
		observer: observer,
	}
}

// Run executes every stage in order. The article is persisted only
// after the final stage succeeds; a load-bearing failure leaves no
// partial state behind.
func (p *Pipeline) Run(ctx context.Context, req article.GenerationRequest) (*article.Article, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	a := article.New(req)
	p.log.Info().Str("article_id", a.ID).Str("keyword", req.TargetKeyword).Msg("starting generation run")

	a.Analysis = p.runAnalysis(ctx, req)

	structure, err := p.runStructure(ctx, req, a.Analysis)
	if err != nil {
		return nil, err
	}
	a.Structure = *structure

	body, err := p.runBody(ctx, req, a.Structure, a.Analysis)
	if err != nil {
		return nil, err
	}
	a.HTMLContent = body

	media, err := p.runMediaStrategy(ctx, a.Structure, req)
	if err != nil {
		return nil, err
	}
	a.Media = *media

	if p.cfg.EnableVideoLookup && p.videos != nil && media.VideoSearchQuery != "" {
		if asset, err := p.videos.Resolve(ctx, media.VideoSearchQuery); err != nil {
			p.log.Warn().Err(err).Msg("video lookup failed, continuing without video")
			p.observe(StageMedia+":video", false, 0)
		} else {
			a.Video = asset
		}
	}

	if p.cfg.EnableHeroRender {
		p.renderHero(ctx, a)
	}

	a.Seo = p.runMetadata(ctx, req, a.Structure, a.HTMLContent)

	if err := p.assemble(ctx, a); err != nil {
		return nil, err
	}

	a.Status = article.StatusCompleted
	a.Touch()
	if err := p.store.SaveArticle(ctx, a); err != nil {
		return nil, generrors.Wrap(generrors.KindInternal, "failed to persist article", err).WithStage(StagePersist)
	}
	p.log.Info().Str("article_id", a.ID).Msg("generation run completed")
	return a, nil
}

// runAnalysis is advisory: on any failure it degrades to an empty
// analysis instead of aborting the run.
func (p *Pipeline) runAnalysis(ctx context.Context, req article.GenerationRequest) article.CompetitiveAnalysis {
	start := time.Now()
	var serpTitles []string
	if p.searcher != nil {
		if results, err := p.searcher.Search(ctx, req.TargetKeyword, 10); err == nil {
			for _, r := range results {
				serpTitles = append(serpTitles, r.Title)
			}
		} else {
			p.log.Debug().Err(err).Msg("SERP enrichment unavailable")
		}
	}

	var analysis article.CompetitiveAnalysis
	result, err := p.gen.Generate(ctx, analysisPrompt(req.TargetKeyword, req.Language, serpTitles), llm.GenerateOptions{
		JSONResponse:    true,
		SearchGrounding: p.searcher == nil,
	})
	if err == nil {
		err = llm.DecodeStructured(result.Text, &analysis)
	}
	if err != nil {
		p.log.Warn().Err(err).Msg("competitive analysis failed, proceeding with empty analysis")
		p.observe(StageAnalysis, false, time.Since(start).Seconds())
		return article.CompetitiveAnalysis{}
	}
	p.observe(StageAnalysis, true, time.Since(start).Seconds())
	return analysis
}

func (p *Pipeline) runStructure(ctx context.Context, req article.GenerationRequest, analysis article.CompetitiveAnalysis) (*article.Structure, error) {
	start := time.Now()
	correction := ""
	for attempt := 0; attempt < 2; attempt++ {
		result, err := p.gen.Generate(ctx, structurePrompt(req, analysis, p.cfg.TitleMaxWords, correction), llm.GenerateOptions{JSONResponse: true})
		if err != nil {
			p.observe(StageStructure, false, time.Since(start).Seconds())
			return nil, wrapStage(err, StageStructure)
		}
		var s article.Structure
		if err := llm.DecodeStructured(result.Text, &s); err != nil {
			p.observe(StageStructure, false, time.Since(start).Seconds())
			return nil, wrapStage(err, StageStructure)
		}
		if reason := validateTitle(s.Title, req.TargetKeyword, p.cfg.TitleMaxWords); reason != "" {
			correction = reason
			continue
		}
		p.observe(StageStructure, true, time.Since(start).Seconds())
		return &s, nil
	}

	// Two model attempts violated the headline contract; fall back to a
	// deterministic keyword-derived title so the invariant always holds.
	p.log.Warn().Str("keyword", req.TargetKeyword).Msg("model could not satisfy title constraints, using keyword-derived title")
	s := &article.Structure{
		Title:    deterministicTitle(req.TargetKeyword, p.cfg.TitleMaxWords),
		Subtitle: req.Topic,
		Lead:     fmt.Sprintf("%s: everything you need to know about %s.", titleCase(req.TargetKeyword), req.Topic),
	}
	p.observe(StageStructure, true, time.Since(start).Seconds())
	return s, nil
}

func (p *Pipeline) runBody(ctx context.Context, req article.GenerationRequest, structure article.Structure, analysis article.CompetitiveAnalysis) (string, error) {
	start := time.Now()

	var links []SearchResult
	if p.cfg.EnableInternalLinks && p.searcher != nil && req.SiteURL != "" {
		links = p.discoverInternalLinks(ctx, req)
	}

	result, err := p.gen.Generate(ctx, bodyPrompt(req, structure, analysis), llm.GenerateOptions{})
	if err != nil {
		p.observe(StageBody, false, time.Since(start).Seconds())
		return "", wrapStage(err, StageBody)
	}

	body := htmlfrag.CleanBody(result.Text)
	if body == "" {
		p.observe(StageBody, false, time.Since(start).Seconds())
		return "", generrors.New(generrors.KindEmptyResponse, "empty model response").WithStage(StageBody)
	}
	if !strings.Contains(strings.ToLower(body), "<article") {
		body = "<article>\n" + body + "\n</article>"
	}

	// The splice is done here, not trusted to the model, so the block
	// appears exactly once regardless of model compliance.
	body = htmlfrag.SpliceInternalLinks(body, internalLinksBlock(links))

	p.observe(StageBody, true, time.Since(start).Seconds())
	return body, nil
}

// discoverInternalLinks is best-effort: candidates from a site-restricted
// search, deduplicated by URL and shuffled before truncation so no single
// search ordering dominates repeated runs.
func (p *Pipeline) discoverInternalLinks(ctx context.Context, req article.GenerationRequest) []SearchResult {
	domain := hostOf(req.SiteURL)
	if domain == "" {
		return nil
	}
	results, err := p.searcher.SiteSearch(ctx, domain, req.TargetKeyword, p.cfg.InternalLinkCount*3)
	if err != nil {
		p.log.Warn().Err(err).Str("domain", domain).Msg("internal link discovery failed, continuing without links")
		return nil
	}

	seen := make(map[string]bool, len(results))
	unique := results[:0]
	for _, r := range results {
		if r.URL == "" || r.Title == "" || seen[r.URL] {
			continue
		}
		seen[r.URL] = true
		unique = append(unique, r)
	}
	rand.Shuffle(len(unique), func(i, j int) { unique[i], unique[j] = unique[j], unique[i] })
	if len(unique) > p.cfg.InternalLinkCount {
		unique = unique[:p.cfg.InternalLinkCount]
	}
	return unique
}

func (p *Pipeline) runMediaStrategy(ctx context.Context, structure article.Structure, req article.GenerationRequest) (*article.MediaStrategy, error) {
	start := time.Now()
	result, err := p.gen.Generate(ctx, mediaPrompt(structure, req.TargetKeyword, req.Language), llm.GenerateOptions{JSONResponse: true})
	if err != nil {
		p.observe(StageMedia, false, time.Since(start).Seconds())
		return nil, wrapStage(err, StageMedia)
	}
	var media article.MediaStrategy
	if err := llm.DecodeStructured(result.Text, &media); err != nil {
		p.observe(StageMedia, false, time.Since(start).Seconds())
		return nil, wrapStage(err, StageMedia)
	}

	media.ImageSpecs = normalizeImageSpecs(media.ImageSpecs, structure.Title, req.TargetKeyword)
	p.observe(StageMedia, true, time.Since(start).Seconds())
	return &media, nil
}

// renderHero eagerly renders only the first image spec for immediate
// visual feedback; the remaining slots render on demand.
func (p *Pipeline) renderHero(ctx context.Context, a *article.Article) {
	start := time.Now()
	hero := a.ImageByRole(article.RoleHero)
	if hero == nil {
		return
	}
	result, err := p.gen.GenerateImage(ctx, hero.Prompt, hero.AspectRatio)
	if err != nil {
		p.log.Warn().Err(err).Msg("hero render failed, continuing without hero image")
		p.observe(StageHero, false, time.Since(start).Seconds())
		return
	}
	applyImageResult(hero, result)
	p.observe(StageHero, true, time.Since(start).Seconds())
}

// runMetadata never fails the run: on any error it falls back to
// deterministic, truncation-safe defaults derived purely from the
// keyword, and every successful response is clamped to the ceilings.
func (p *Pipeline) runMetadata(ctx context.Context, req article.GenerationRequest, structure article.Structure, body string) article.SeoMetadata {
	start := time.Now()
	excerpt := body
	if len(excerpt) > 1500 {
		excerpt = excerpt[:1500]
	}

	var meta article.SeoMetadata
	result, err := p.gen.Generate(ctx, metadataPrompt(req, structure, excerpt, p.cfg), llm.GenerateOptions{JSONResponse: true})
	if err == nil {
		err = llm.DecodeStructured(result.Text, &meta)
	}
	if err != nil {
		p.log.Warn().Err(err).Msg("metadata generation failed, using keyword-derived defaults")
		p.observe(StageMetadata, false, time.Since(start).Seconds())
		return defaultMetadata(req.TargetKeyword, structure.Title, p.cfg)
	}
	meta = enforceMetadata(meta, req.TargetKeyword, structure.Title, p.cfg)
	p.observe(StageMetadata, true, time.Since(start).Seconds())
	return meta
}

// assemble injects the video block and derives the technical SEO
// payload. Deterministic; the only external reads are settings/author.
func (p *Pipeline) assemble(ctx context.Context, a *article.Article) error {
	start := time.Now()
	if a.Video != nil && a.Video.EmbedMarkup != "" {
		a.HTMLContent = htmlfrag.InjectVideo(a.HTMLContent, a.Video.EmbedMarkup)
	}

	var settings article.Settings
	if p.dir != nil {
		if s, err := p.dir.GetSettings(ctx); err == nil {
			settings = s
		}
	}
	authorName := ""
	if p.dir != nil && a.Request.AuthorID != "" {
		if author, err := p.dir.GetAuthor(ctx, a.Request.AuthorID); err == nil && author != nil {
			authorName = author.Name
			if a.Request.AdvancedOptions.AuthorCredit {
				a.HTMLContent = appendAuthorCredit(a.HTMLContent, author)
			}
		}
	}

	tech, err := buildTechnical(a, settings, authorName)
	if err != nil {
		p.observe(StageAssembly, false, time.Since(start).Seconds())
		return generrors.Wrap(generrors.KindInternal, "failed to assemble technical SEO payload", err).WithStage(StageAssembly)
	}
	a.Technical = tech
	p.observe(StageAssembly, true, time.Since(start).Seconds())
	return nil
}

func (p *Pipeline) observe(stage string, success bool, seconds float64) {
	if p.observer != nil {
		p.observer.StageCompleted(stage, success, seconds)
	}
}

func validateRequest(req article.GenerationRequest) error {
	if strings.TrimSpace(req.Topic) == "" {
		return generrors.New(generrors.KindValidation, "topic is required")
	}
	if strings.TrimSpace(req.TargetKeyword) == "" {
		return generrors.New(generrors.KindValidation, "target keyword is required")
	}
	if strings.TrimSpace(req.Language) == "" {
		return generrors.New(generrors.KindValidation, "language is required")
	}
	switch req.WordCount {
	case article.WordCount800, article.WordCount1500, article.WordCount2500:
	default:
		return generrors.New(generrors.KindValidation, "unsupported word count target")
	}
	return nil
}

func validateTitle(title, keyword string, maxWords int) string {
	words := len(strings.Fields(title))
	if words == 0 {
		return "title was empty"
	}
	if words > maxWords {
		return fmt.Sprintf("title had %d words, the maximum is %d", words, maxWords)
	}
	if !strings.Contains(strings.ToLower(title), strings.ToLower(keyword)) {
		return fmt.Sprintf("title did not contain the target keyword %q", keyword)
	}
	return ""
}

func deterministicTitle(keyword string, maxWords int) string {
	words := strings.Fields(titleCase(keyword))
	if len(words) > maxWords {
		words = words[:maxWords]
	}
	return strings.Join(words, " ")
}

var nonSlugRe = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify produces an SEO-safe slug from free text.
func Slugify(text string) string {
	slug := nonSlugRe.ReplaceAllString(strings.ToLower(text), "-")
	return strings.Trim(slug, "-")
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		if len(w) > 0 {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

func hostOf(rawURL string) string {
	if !strings.Contains(rawURL, "://") {
		rawURL = "https://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

func wrapStage(err error, stage string) error {
	var ge *generrors.GenError
	if ok := asGenError(err, &ge); ok {
		return ge.WithStage(stage)
	}
	return generrors.Wrap(generrors.KindInternal, "stage failed", err).WithStage(stage)
}
