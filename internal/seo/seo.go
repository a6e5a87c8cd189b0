// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package seo builds the JSON-LD structured data emitted alongside rendered
// pages. Field population is conditional on data presence: a product without
// a rating gets no aggregateRating block at all, not an empty one.
package seo

import (
	"encoding/json"
	"fmt"
	"html/template"
	"strings"

	"github.com/0xSimbaDev/affiliate-website-sub002/internal/model"
	"github.com/0xSimbaDev/affiliate-website-sub002/internal/page"
	"github.com/0xSimbaDev/affiliate-website-sub002/internal/store"
)

const schemaContext = "https://schema.org"

// Schema is one JSON-LD document.
type Schema map[string]any

// Render serializes schemas into script tags ready for a template. Schemas
// that fail to serialize are dropped; structured data is never worth
// faulting a page over.
func Render(schemas ...Schema) template.HTML {
	var sb strings.Builder
	for _, s := range schemas {
		if s == nil {
			continue
		}
		data, err := json.Marshal(s)
		if err != nil {
			continue
		}
		sb.WriteString(`<script type="application/ld+json">`)
		sb.Write(data)
		sb.WriteString("</script>\n")
	}
	return template.HTML(sb.String())
}

// BaseURL returns the canonical origin for a site, empty when the site has
// no mapped domain.
func BaseURL(site store.Site) string {
	if site.Domain == "" {
		return ""
	}
	return "https://" + site.Domain
}

// WebSite describes the site itself.
func WebSite(site store.Site) Schema {
	s := Schema{
		"@context": schemaContext,
		"@type":    "WebSite",
		"name":     site.Name,
	}
	if url := BaseURL(site); url != "" {
		s["url"] = url
	}
	if site.Tagline != "" {
		s["description"] = site.Tagline
	}
	if social := model.ParseSocialLinks(site.SocialLinks); len(social.URLs()) > 0 {
		s["sameAs"] = social.URLs()
	}
	return s
}

// Product describes a product with its offer and, when present, its review
// aggregate.
func Product(p store.Product, price model.Price, rating model.Rating, url string) Schema {
	s := Schema{
		"@context": schemaContext,
		"@type":    "Product",
		"name":     p.Name,
	}
	if p.Summary != "" {
		s["description"] = p.Summary
	}
	if p.FeaturedImage != "" {
		s["image"] = p.FeaturedImage
	}
	if url != "" {
		s["url"] = url
	}

	if price.Amount != nil {
		offer := Schema{
			"@type":         "Offer",
			"price":         fmt.Sprintf("%.2f", *price.Amount),
			"priceCurrency": price.Currency,
			"availability":  schemaContext + "/InStock",
		}
		if url != "" {
			offer["url"] = url
		}
		s["offers"] = offer
	}

	if rating.HasValue() {
		s["aggregateRating"] = Schema{
			"@type":       "AggregateRating",
			"ratingValue": *rating.Value,
			"reviewCount": rating.Count,
			"bestRating":  5,
		}
	}
	return s
}

// Review describes the site's own review of a product.
func Review(p store.Product, rating model.Rating, site store.Site) Schema {
	if !rating.HasValue() {
		return nil
	}
	return Schema{
		"@context": schemaContext,
		"@type":    "Review",
		"itemReviewed": Schema{
			"@type": "Product",
			"name":  p.Name,
		},
		"reviewRating": Schema{
			"@type":       "Rating",
			"ratingValue": *rating.Value,
			"bestRating":  5,
		},
		"author": Schema{
			"@type": "Organization",
			"name":  site.Name,
		},
	}
}

// Article describes an editorial page.
func Article(a store.Article, site store.Site, url string) Schema {
	s := Schema{
		"@context": schemaContext,
		"@type":    "Article",
		"headline": a.Title,
		"publisher": Schema{
			"@type": "Organization",
			"name":  site.Name,
		},
	}
	if a.Excerpt != "" {
		s["description"] = a.Excerpt
	}
	if a.FeaturedImage != "" {
		s["image"] = a.FeaturedImage
	}
	if url != "" {
		s["url"] = url
	}
	if a.PublishedAt.Valid {
		s["datePublished"] = a.PublishedAt.Time.Format("2006-01-02")
	}
	return s
}

// BreadcrumbList describes a breadcrumb trail. Returns nil for trails too
// short to matter.
func BreadcrumbList(crumbs []page.Breadcrumb, baseURL string) Schema {
	if len(crumbs) < 2 {
		return nil
	}
	items := make([]Schema, 0, len(crumbs))
	for i, crumb := range crumbs {
		items = append(items, Schema{
			"@type":    "ListItem",
			"position": i + 1,
			"name":     crumb.Label,
			"item":     baseURL + crumb.URL,
		})
	}
	return Schema{
		"@context":        schemaContext,
		"@type":           "BreadcrumbList",
		"itemListElement": items,
	}
}

// FAQPage describes a product's FAQ metadata. Returns nil when there are no
// usable items.
func FAQPage(items []model.FAQItem) Schema {
	if len(items) == 0 {
		return nil
	}
	entities := make([]Schema, 0, len(items))
	for _, item := range items {
		entities = append(entities, Schema{
			"@type": "Question",
			"name":  item.Question,
			"acceptedAnswer": Schema{
				"@type": "Answer",
				"text":  item.Answer,
			},
		})
	}
	return Schema{
		"@context":   schemaContext,
		"@type":      "FAQPage",
		"mainEntity": entities,
	}
}
