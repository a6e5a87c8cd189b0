// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package section renders the composable page regions a layout selects. The
// registry maps a closed set of section IDs to pure renderers; each renderer
// reads the shared page context and decides on its own whether it has
// anything to show.
package section

import (
	"github.com/0xSimbaDev/affiliate-website-sub002/internal/layout"
	"github.com/0xSimbaDev/affiliate-website-sub002/internal/page"
)

// ID names one section kind.
type ID string

// The closed set of section kinds. Niche configs referencing anything else
// are ignored at dispatch, which tolerates config/deploy skew.
const (
	Breadcrumb        ID = "breadcrumb"
	Hero              ID = "hero"
	AffiliatePartners ID = "affiliate-partners"
	ProsCons          ID = "pros-cons"
	FullReview        ID = "full-review"
	FeaturedArticles  ID = "featured-articles"
	RelatedProducts   ID = "related-products"
	StickyBar         ID = "sticky-bar"
	Specifications    ID = "specifications"
	Ingredients       ID = "ingredients"
	Gallery           ID = "gallery"
	FAQ               ID = "faq"
)

// Props is the free-form props bag a layout descriptor forwards to its
// renderer. Values come from JSON, so numbers are float64.
type Props map[string]any

// Int reads an integer prop, falling back to def.
func (p Props) Int(key string, def int64) int64 {
	if v, ok := p[key].(float64); ok && v > 0 {
		return int64(v)
	}
	return def
}

// String reads a string prop, falling back to def.
func (p Props) String(key, def string) string {
	if v, ok := p[key].(string); ok && v != "" {
		return v
	}
	return def
}

// Section is one rendered page region: a template name plus its payload.
type Section struct {
	ID       ID
	Template string
	Data     any
}

// RenderFunc renders one section kind from the shared page context. The bool
// is false when the section has nothing to show.
type RenderFunc func(pc *page.Context, props Props) (*Section, bool)

// Registry maps section IDs to renderers.
type Registry struct {
	renderers map[ID]RenderFunc
}

// NewRegistry returns a registry with every built-in renderer installed.
func NewRegistry() *Registry {
	r := &Registry{renderers: make(map[ID]RenderFunc)}
	r.Register(Breadcrumb, renderBreadcrumb)
	r.Register(Hero, renderHero)
	r.Register(AffiliatePartners, renderAffiliatePartners)
	r.Register(ProsCons, renderProsCons)
	r.Register(FullReview, renderFullReview)
	r.Register(FeaturedArticles, renderFeaturedArticles)
	r.Register(RelatedProducts, renderRelatedProducts)
	r.Register(StickyBar, renderStickyBar)
	r.Register(Specifications, renderSpecifications)
	r.Register(Ingredients, renderIngredients)
	r.Register(Gallery, renderGallery)
	r.Register(FAQ, renderFAQ)
	return r
}

// Register installs or replaces a renderer.
func (r *Registry) Register(id ID, fn RenderFunc) {
	r.renderers[id] = fn
}

// Dispatch renders a resolved section list in order. Unknown IDs are skipped
// silently, as are sections that report nothing to show.
func (r *Registry) Dispatch(pc *page.Context, refs []layout.SectionRef) []Section {
	var out []Section
	for _, ref := range refs {
		fn, ok := r.renderers[ID(ref.ID)]
		if !ok {
			continue
		}
		sec, ok := fn(pc, Props(ref.Props))
		if !ok || sec == nil {
			continue
		}
		out = append(out, *sec)
	}
	return out
}
