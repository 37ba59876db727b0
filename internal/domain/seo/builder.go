// Package seo derives the technical SEO payload - a schema.org JSON-LD
// graph plus the WordPress draft shape - from a completed article. Pure
// and deterministic: no network calls, no randomness.
package seo

import (
	"encoding/json"
	"strings"

	"github.com/Johtaguerrero/artigogenio/internal/domain/article"
)

// SiteContext is the publication-level data the graph needs.
type SiteContext struct {
	SiteURL          string
	OrganizationName string
	OrganizationLogo string
	AuthorName       string
}

// Build derives the technical SEO payload for an article. Video and FAQ
// nodes are added only when the corresponding data exists.
func Build(a *article.Article, site SiteContext) (article.TechnicalSeo, error) {
	graph := buildGraph(a, site)
	raw, err := json.Marshal(map[string]any{
		"@context": "https://schema.org",
		"@graph":   graph,
	})
	if err != nil {
		return article.TechnicalSeo{}, err
	}

	return article.TechnicalSeo{
		SchemaJSONLD:     string(raw),
		WordPressPayload: buildWordPressPayload(a),
	}, nil
}

func buildGraph(a *article.Article, site SiteContext) []map[string]any {
	siteURL := strings.TrimRight(site.SiteURL, "/")
	articleURL := siteURL + "/" + a.Seo.Slug
	orgID := siteURL + "/#organization"
	websiteID := siteURL + "/#website"
	imageID := articleURL + "/#primaryimage"

	org := map[string]any{
		"@type": "Organization",
		"@id":   orgID,
		"name":  site.OrganizationName,
		"url":   siteURL,
	}
	if site.OrganizationLogo != "" {
		org["logo"] = map[string]any{
			"@type": "ImageObject",
			"url":   site.OrganizationLogo,
		}
	}

	website := map[string]any{
		"@type":     "WebSite",
		"@id":       websiteID,
		"url":       siteURL,
		"name":      site.OrganizationName,
		"publisher": map[string]any{"@id": orgID},
	}

	graph := []map[string]any{org, website}

	heroURL := ""
	if hero := a.ImageByRole(article.RoleHero); hero != nil && hero.RenderedURL != "" {
		heroURL = hero.RenderedURL
		graph = append(graph, map[string]any{
			"@type":      "ImageObject",
			"@id":        imageID,
			"url":        heroURL,
			"caption":    hero.Caption,
			"inLanguage": a.Request.Language,
		})
	}

	graph = append(graph, map[string]any{
		"@type": "BreadcrumbList",
		"@id":   articleURL + "/#breadcrumb",
		"itemListElement": []map[string]any{
			{"@type": "ListItem", "position": 1, "name": "Home", "item": siteURL},
			{"@type": "ListItem", "position": 2, "name": a.Structure.Title, "item": articleURL},
		},
	})

	node := map[string]any{
		"@type":         "Article",
		"@id":           articleURL + "/#article",
		"headline":      a.Seo.SeoTitle,
		"description":   a.Seo.MetaDescription,
		"keywords":      strings.Join(a.Seo.Tags, ", "),
		"inLanguage":    a.Request.Language,
		"mainEntityOfPage": articleURL,
		"isPartOf":      map[string]any{"@id": websiteID},
		"publisher":     map[string]any{"@id": orgID},
		"datePublished": a.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		"dateModified":  a.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if site.AuthorName != "" {
		node["author"] = map[string]any{"@type": "Person", "name": site.AuthorName}
	}
	if heroURL != "" {
		node["image"] = map[string]any{"@id": imageID}
	}
	graph = append(graph, node)

	if a.Video != nil && a.Video.VideoID != "" {
		graph = append(graph, map[string]any{
			"@type":        "VideoObject",
			"@id":          articleURL + "/#video",
			"name":         a.Video.Title,
			"description":  a.Video.Caption,
			"thumbnailUrl": a.Video.ThumbnailURL,
			"embedUrl":     "https://www.youtube-nocookie.com/embed/" + a.Video.VideoID,
			"contentUrl":   a.Video.CanonicalURL,
		})
	}

	if len(a.Seo.Opportunities.PAAList) > 0 {
		faq := make([]map[string]any, 0, len(a.Seo.Opportunities.PAAList))
		for _, q := range a.Seo.Opportunities.PAAList {
			faq = append(faq, map[string]any{
				"@type":          "Question",
				"name":           q,
				"acceptedAnswer": map[string]any{"@type": "Answer", "text": ""},
			})
		}
		graph = append(graph, map[string]any{
			"@type":      "FAQPage",
			"@id":        articleURL + "/#faq",
			"mainEntity": faq,
		})
	}

	return graph
}

func buildWordPressPayload(a *article.Article) article.WordPressPayload {
	return article.WordPressPayload{
		Title:   a.Structure.Title,
		Content: a.HTMLContent,
		// Draft is a deliberate safety default; never auto-publish.
		Status:  "draft",
		Slug:    a.Seo.Slug,
		Excerpt: a.Seo.ViralExcerpt,
		Tags:    a.Seo.Tags,
		Meta: map[string]string{
			"_yoast_wpseo_title":    a.Seo.SeoTitle,
			"_yoast_wpseo_metadesc": a.Seo.MetaDescription,
			"_yoast_wpseo_focuskw":  a.Seo.TargetKeyword,
		},
	}
}
