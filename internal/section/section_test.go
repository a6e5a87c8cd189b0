// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package section

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xSimbaDev/affiliate-website-sub002/internal/content"
	"github.com/0xSimbaDev/affiliate-website-sub002/internal/layout"
	"github.com/0xSimbaDev/affiliate-website-sub002/internal/model"
	"github.com/0xSimbaDev/affiliate-website-sub002/internal/page"
	"github.com/0xSimbaDev/affiliate-website-sub002/internal/store"
)

func productContext() *page.Context {
	return &page.Context{
		Site:    store.Site{ID: 1, Slug: "demo-gaming"},
		Product: &store.Product{ID: 1, Slug: "nimbus-pro", Name: "Nimbus Pro", FeaturedImage: "/i/hero.jpg"},
		Meta: model.Metadata{
			"pros":  []any{"Great battery"},
			"cons":  []any{"Bulky"},
			"specs": map[string]any{"weight": "310g"},
		},
		PriceDisplay:  "$99.99",
		RatingDisplay: "4.5/5",
		Breadcrumbs: []page.Breadcrumb{
			{Label: "Home", URL: "/"},
			{Label: "Nimbus Pro", URL: "/products/nimbus-pro"},
		},
		AffiliateLinks: []store.AffiliateLink{
			{ID: 1, Label: "Retailer B", URL: "https://b.example.com"},
			{ID: 2, Label: "Retailer A", URL: "https://a.example.com", IsPrimary: true},
		},
		Related:          []store.Product{{ID: 2}, {ID: 3}, {ID: 4}},
		FeaturedArticles: []store.Article{{ID: 1}, {ID: 2}},
		Blocks:           []content.Block{{Kind: content.KindHTML, HTML: "<p>review</p>"}},
	}
}

func refs(ids ...string) []layout.SectionRef {
	out := make([]layout.SectionRef, 0, len(ids))
	for _, id := range ids {
		out = append(out, layout.SectionRef{ID: id})
	}
	return out
}

func TestDispatchOrderAndUnknownIDs(t *testing.T) {
	r := NewRegistry()
	pc := productContext()

	sections := r.Dispatch(pc, refs("hero", "not-a-section", "pros-cons", "full-review"))

	require.Len(t, sections, 3, "unknown ids are skipped silently")
	assert.Equal(t, Hero, sections[0].ID)
	assert.Equal(t, ProsCons, sections[1].ID)
	assert.Equal(t, FullReview, sections[2].ID)
}

func TestNothingToShowRules(t *testing.T) {
	r := NewRegistry()

	t.Run("affiliate partners with no links", func(t *testing.T) {
		pc := productContext()
		pc.AffiliateLinks = nil
		assert.Empty(t, r.Dispatch(pc, refs("affiliate-partners")))
	})

	t.Run("sticky bar with no links", func(t *testing.T) {
		pc := productContext()
		pc.AffiliateLinks = nil
		assert.Empty(t, r.Dispatch(pc, refs("sticky-bar")))
	})

	t.Run("pros-cons with empty metadata", func(t *testing.T) {
		pc := productContext()
		pc.Meta = model.Metadata{}
		assert.Empty(t, r.Dispatch(pc, refs("pros-cons")))
	})

	t.Run("related with no products", func(t *testing.T) {
		pc := productContext()
		pc.Related = nil
		assert.Empty(t, r.Dispatch(pc, refs("related-products")))
	})

	t.Run("breadcrumb needs more than the home entry", func(t *testing.T) {
		pc := productContext()
		pc.Breadcrumbs = []page.Breadcrumb{{Label: "Home", URL: "/"}}
		assert.Empty(t, r.Dispatch(pc, refs("breadcrumb")))
	})
}

func TestGalleryRendersPlaceholderWithoutImages(t *testing.T) {
	r := NewRegistry()
	pc := productContext()
	pc.Gallery = nil

	sections := r.Dispatch(pc, refs("gallery"))
	require.Len(t, sections, 1)

	data, ok := sections[0].Data.(GalleryData)
	require.True(t, ok)
	assert.True(t, data.Placeholder)
	assert.Empty(t, data.Images)
}

func TestHeroPicksPrimaryLink(t *testing.T) {
	r := NewRegistry()
	sections := r.Dispatch(productContext(), refs("hero"))
	require.Len(t, sections, 1)

	data, ok := sections[0].Data.(HeroData)
	require.True(t, ok)
	require.NotNil(t, data.PrimaryLink)
	assert.Equal(t, "Retailer A", data.PrimaryLink.Label)
	assert.Equal(t, "/i/hero.jpg", data.Image)
	assert.Equal(t, "$99.99", data.PriceDisplay)
}

func TestRelatedProductsLimitProp(t *testing.T) {
	r := NewRegistry()
	pc := productContext()

	sections := r.Dispatch(pc, []layout.SectionRef{
		{ID: "related-products", Props: map[string]any{"limit": float64(2), "title": "You may also like"}},
	})
	require.Len(t, sections, 1)

	data, ok := sections[0].Data.(ProductListData)
	require.True(t, ok)
	assert.Len(t, data.Products, 2)
	assert.Equal(t, "You may also like", data.Title)
}

func TestFAQSection(t *testing.T) {
	r := NewRegistry()
	pc := productContext()
	pc.Meta["faq"] = []any{
		map[string]any{"question": "Is it wireless?", "answer": "Yes."},
		map[string]any{"question": "", "answer": "skipped"},
	}

	sections := r.Dispatch(pc, refs("faq"))
	require.Len(t, sections, 1)

	items, ok := sections[0].Data.([]model.FAQItem)
	require.True(t, ok)
	require.Len(t, items, 1)
	assert.Equal(t, "Is it wireless?", items[0].Question)
}

func TestRegisterOverridesRenderer(t *testing.T) {
	r := NewRegistry()
	r.Register(Hero, func(_ *page.Context, _ Props) (*Section, bool) {
		return &Section{ID: Hero, Template: "custom_hero"}, true
	})

	sections := r.Dispatch(productContext(), refs("hero"))
	require.Len(t, sections, 1)
	assert.Equal(t, "custom_hero", sections[0].Template)
}

func TestPropsAccessors(t *testing.T) {
	p := Props{"limit": float64(5), "title": "x", "zero": float64(0)}
	assert.Equal(t, int64(5), p.Int("limit", 1))
	assert.Equal(t, int64(1), p.Int("missing", 1))
	assert.Equal(t, int64(1), p.Int("zero", 1))
	assert.Equal(t, "x", p.String("title", "d"))
	assert.Equal(t, "d", p.String("missing", "d"))
}
