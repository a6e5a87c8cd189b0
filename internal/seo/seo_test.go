// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package seo

import (
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xSimbaDev/affiliate-website-sub002/internal/model"
	"github.com/0xSimbaDev/affiliate-website-sub002/internal/page"
	"github.com/0xSimbaDev/affiliate-website-sub002/internal/store"
)

func f(v float64) *float64 { return &v }

func TestProductSchemaWithRatingAndPrice(t *testing.T) {
	p := store.Product{Name: "Nimbus Pro", Summary: "Wireless headset", FeaturedImage: "/i/n.jpg"}
	price := model.Price{Amount: f(99.99), Currency: "USD"}
	rating := model.Rating{Value: f(4.5), Count: 128}

	s := Product(p, price, rating, "https://example.com/products/nimbus-pro")

	assert.Equal(t, "Product", s["@type"])
	assert.Equal(t, "Nimbus Pro", s["name"])

	offer, ok := s["offers"].(Schema)
	require.True(t, ok)
	assert.Equal(t, "99.99", offer["price"])
	assert.Equal(t, "USD", offer["priceCurrency"])

	agg, ok := s["aggregateRating"].(Schema)
	require.True(t, ok)
	assert.Equal(t, 4.5, agg["ratingValue"])
	assert.Equal(t, int64(128), agg["reviewCount"])
}

func TestProductSchemaOmitsRatingBlockEntirely(t *testing.T) {
	s := Product(store.Product{Name: "X"}, model.Price{}, model.Rating{}, "")

	_, hasRating := s["aggregateRating"]
	assert.False(t, hasRating, "no rating means no aggregateRating key at all")
	_, hasOffers := s["offers"]
	assert.False(t, hasOffers, "no price means no offers key")
}

func TestReviewSchemaNilWithoutRating(t *testing.T) {
	assert.Nil(t, Review(store.Product{Name: "X"}, model.Rating{}, store.Site{Name: "S"}))

	s := Review(store.Product{Name: "X"}, model.Rating{Value: f(4)}, store.Site{Name: "S"})
	require.NotNil(t, s)
	assert.Equal(t, "Review", s["@type"])
}

func TestArticleSchema(t *testing.T) {
	published := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	a := store.Article{
		Title:       "Best Headsets",
		Excerpt:     "Our picks",
		PublishedAt: sql.NullTime{Time: published, Valid: true},
	}

	s := Article(a, store.Site{Name: "The Gaming Hub Guide"}, "https://example.com/articles/best-headsets")

	assert.Equal(t, "Article", s["@type"])
	assert.Equal(t, "Best Headsets", s["headline"])
	assert.Equal(t, "2026-03-14", s["datePublished"])

	draft := Article(store.Article{Title: "Draft"}, store.Site{}, "")
	_, has := draft["datePublished"]
	assert.False(t, has)
}

func TestBreadcrumbList(t *testing.T) {
	crumbs := []page.Breadcrumb{
		{Label: "Home", URL: "/"},
		{Label: "Headsets", URL: "/category/headsets"},
		{Label: "Nimbus Pro", URL: "/products/nimbus-pro"},
	}

	s := BreadcrumbList(crumbs, "https://example.com")
	require.NotNil(t, s)

	items, ok := s["itemListElement"].([]Schema)
	require.True(t, ok)
	require.Len(t, items, 3)
	assert.Equal(t, 1, items[0]["position"])
	assert.Equal(t, "https://example.com/category/headsets", items[1]["item"])

	assert.Nil(t, BreadcrumbList(crumbs[:1], "https://example.com"))
}

func TestFAQPage(t *testing.T) {
	assert.Nil(t, FAQPage(nil))

	s := FAQPage([]model.FAQItem{{Question: "Q?", Answer: "A."}})
	require.NotNil(t, s)
	assert.Equal(t, "FAQPage", s["@type"])
}

func TestWebSiteSchema(t *testing.T) {
	site := store.Site{
		Name:        "The Gaming Hub Guide",
		Domain:      "thegaminghubguide.com",
		Tagline:     "Honest reviews",
		SocialLinks: `{"twitter":"https://twitter.com/x"}`,
	}

	s := WebSite(site)
	assert.Equal(t, "https://thegaminghubguide.com", s["url"])
	assert.Equal(t, "Honest reviews", s["description"])
	assert.NotEmpty(t, s["sameAs"])
}

func TestRender(t *testing.T) {
	html := string(Render(
		WebSite(store.Site{Name: "S", Domain: "s.com"}),
		nil,
		FAQPage(nil),
	))

	assert.Equal(t, 1, strings.Count(html, `<script type="application/ld+json">`))
	assert.Contains(t, html, `"WebSite"`)
}
