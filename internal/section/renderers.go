// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package section

import (
	"github.com/0xSimbaDev/affiliate-website-sub002/internal/page"
	"github.com/0xSimbaDev/affiliate-website-sub002/internal/store"
)

// HeroData is the hero section payload.
type HeroData struct {
	Product       *store.Product
	PriceDisplay  string
	RatingDisplay string
	Image         string
	PrimaryLink   *store.AffiliateLink
}

// ProsConsData is the pros/cons section payload.
type ProsConsData struct {
	Pros []string
	Cons []string
}

// ProductListData is shared by related-products and product-grid style
// sections.
type ProductListData struct {
	Title    string
	Products []store.Product
}

// ArticleListData is the featured-articles payload.
type ArticleListData struct {
	Title    string
	Articles []store.Article
}

// GalleryData is the gallery payload. Placeholder is set when the product
// has no images; the gallery shows a stand-in rather than vanishing.
type GalleryData struct {
	Images      []string
	Placeholder bool
}

func primaryLink(links []store.AffiliateLink) *store.AffiliateLink {
	for i := range links {
		if links[i].IsPrimary {
			return &links[i]
		}
	}
	if len(links) > 0 {
		return &links[0]
	}
	return nil
}

func renderBreadcrumb(pc *page.Context, _ Props) (*Section, bool) {
	if len(pc.Breadcrumbs) < 2 {
		return nil, false
	}
	return &Section{ID: Breadcrumb, Template: "section_breadcrumb", Data: pc.Breadcrumbs}, true
}

func renderHero(pc *page.Context, _ Props) (*Section, bool) {
	if pc.Product == nil {
		return nil, false
	}
	image := pc.Product.FeaturedImage
	if image == "" && len(pc.Gallery) > 0 {
		image = pc.Gallery[0]
	}
	return &Section{ID: Hero, Template: "section_hero", Data: HeroData{
		Product:       pc.Product,
		PriceDisplay:  pc.PriceDisplay,
		RatingDisplay: pc.RatingDisplay,
		Image:         image,
		PrimaryLink:   primaryLink(pc.AffiliateLinks),
	}}, true
}

func renderAffiliatePartners(pc *page.Context, _ Props) (*Section, bool) {
	if len(pc.AffiliateLinks) == 0 {
		return nil, false
	}
	return &Section{ID: AffiliatePartners, Template: "section_affiliate_partners", Data: pc.AffiliateLinks}, true
}

func renderProsCons(pc *page.Context, _ Props) (*Section, bool) {
	data := ProsConsData{
		Pros: pc.Meta.StringSlice("pros"),
		Cons: pc.Meta.StringSlice("cons"),
	}
	if len(data.Pros) == 0 && len(data.Cons) == 0 {
		return nil, false
	}
	return &Section{ID: ProsCons, Template: "section_pros_cons", Data: data}, true
}

func renderFullReview(pc *page.Context, _ Props) (*Section, bool) {
	if len(pc.Blocks) == 0 {
		return nil, false
	}
	return &Section{ID: FullReview, Template: "section_full_review", Data: pc.Blocks}, true
}

func renderFeaturedArticles(pc *page.Context, props Props) (*Section, bool) {
	articles := pc.FeaturedArticles
	if limit := props.Int("limit", int64(len(articles))); int64(len(articles)) > limit {
		articles = articles[:limit]
	}
	if len(articles) == 0 {
		return nil, false
	}
	return &Section{ID: FeaturedArticles, Template: "section_featured_articles", Data: ArticleListData{
		Title:    props.String("title", "Featured Articles"),
		Articles: articles,
	}}, true
}

func renderRelatedProducts(pc *page.Context, props Props) (*Section, bool) {
	products := pc.Related
	if limit := props.Int("limit", int64(len(products))); int64(len(products)) > limit {
		products = products[:limit]
	}
	if len(products) == 0 {
		return nil, false
	}
	return &Section{ID: RelatedProducts, Template: "section_related_products", Data: ProductListData{
		Title:    props.String("title", "Related Products"),
		Products: products,
	}}, true
}

func renderStickyBar(pc *page.Context, _ Props) (*Section, bool) {
	if pc.Product == nil {
		return nil, false
	}
	link := primaryLink(pc.AffiliateLinks)
	if link == nil {
		return nil, false
	}
	return &Section{ID: StickyBar, Template: "section_sticky_bar", Data: HeroData{
		Product:      pc.Product,
		PriceDisplay: pc.PriceDisplay,
		PrimaryLink:  link,
	}}, true
}

func renderSpecifications(pc *page.Context, _ Props) (*Section, bool) {
	specs := pc.Meta.StringMap("specs")
	if len(specs) == 0 {
		return nil, false
	}
	return &Section{ID: Specifications, Template: "section_specifications", Data: specs}, true
}

func renderIngredients(pc *page.Context, _ Props) (*Section, bool) {
	items := pc.Meta.StringSlice("ingredients")
	if len(items) == 0 {
		return nil, false
	}
	return &Section{ID: Ingredients, Template: "section_ingredients", Data: items}, true
}

func renderGallery(pc *page.Context, _ Props) (*Section, bool) {
	if pc.Product == nil {
		return nil, false
	}
	return &Section{ID: Gallery, Template: "section_gallery", Data: GalleryData{
		Images:      pc.Gallery,
		Placeholder: len(pc.Gallery) == 0,
	}}, true
}

func renderFAQ(pc *page.Context, _ Props) (*Section, bool) {
	items := pc.Meta.FAQItems()
	if len(items) == 0 {
		return nil, false
	}
	return &Section{ID: FAQ, Template: "section_faq", Data: items}, true
}
