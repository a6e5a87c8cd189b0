// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package content renders stored article and review bodies. A body is plain
// HTML (or markdown) interleaved with shortcode tokens; the renderer turns it
// into an ordered block sequence of sanitized HTML runs and resolved product
// blocks. A broken inline reference degrades to a visible placeholder and
// never faults the page.
package content

import (
	"bytes"
	"fmt"
	"html/template"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/0xSimbaDev/affiliate-website-sub002/internal/model"
	"github.com/0xSimbaDev/affiliate-website-sub002/internal/store"
)

// Kind discriminates the block variants a rendered body is made of.
type Kind string

const (
	KindHTML        Kind = "html"
	KindProduct     Kind = "product"
	KindProductGrid Kind = "product-grid"
	KindComparison  Kind = "comparison"
	KindPlaceholder Kind = "placeholder"
)

// Block is one renderable unit of a content body.
type Block struct {
	Kind Kind

	// HTML holds sanitized markup for KindHTML.
	HTML template.HTML

	// Product and Variant are set for KindProduct.
	Product *store.Product
	Variant string

	// Products is set for KindProductGrid and KindComparison.
	Products []store.Product
	Category string

	// Message is the visible text for KindPlaceholder.
	Message string
}

// Lookup carries the prefetched data shortcode resolution draws from. Blocks
// never query; a slug or grid absent here renders a placeholder.
type Lookup struct {
	Products map[string]store.Product
	Grids    map[string][]store.Product
}

// GridKey is how Lookup.Grids is keyed for a grid reference.
func GridKey(ref GridRef) string {
	return ref.Category + ":" + strconv.FormatInt(ref.Limit, 10)
}

// Renderer runs the content pipeline: markdown conversion, sanitization,
// heading anchors, optional auto-linking, then shortcode segmentation.
type Renderer struct {
	policy   *bluemonday.Policy
	markdown goldmark.Markdown
	autoLink bool
}

// NewRenderer builds a Renderer. autoLink enables the prose auto-linking
// pass site-wide.
func NewRenderer(autoLink bool) *Renderer {
	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("id").OnElements("h2", "h3", "h4")

	return &Renderer{
		policy:   policy,
		markdown: goldmark.New(goldmark.WithExtensions(extension.GFM)),
		autoLink: autoLink,
	}
}

// Render turns a stored body into its ordered block sequence.
func (r *Renderer) Render(body, format string, targets []LinkTarget, lookup Lookup) ([]Block, error) {
	prepared, err := r.prepare(body, format, targets)
	if err != nil {
		return nil, err
	}

	var blocks []Block
	for _, part := range segment(prepared) {
		if part.token == nil {
			if strings.TrimSpace(part.html) == "" {
				continue
			}
			blocks = append(blocks, Block{Kind: KindHTML, HTML: template.HTML(part.html)})
			continue
		}
		blocks = append(blocks, resolveToken(*part.token, lookup))
	}
	return blocks, nil
}

func (r *Renderer) prepare(body, format string, targets []LinkTarget) (string, error) {
	if format == model.BodyFormatMarkdown {
		var buf bytes.Buffer
		if err := r.markdown.Convert([]byte(body), &buf); err != nil {
			return "", fmt.Errorf("converting markdown: %w", err)
		}
		body = buf.String()
	}

	body = r.policy.Sanitize(body)
	body = InjectHeadingAnchors(body)
	if r.autoLink {
		body = AutoLink(body, targets)
	}
	return body, nil
}

func resolveToken(token rawToken, lookup Lookup) Block {
	switch token.kind {
	case "product":
		slug, variant, _ := strings.Cut(token.arg, ":")
		slug = strings.TrimSpace(slug)
		product, ok := lookup.Products[slug]
		if !ok {
			return placeholder("Product not found: " + slug)
		}
		return Block{Kind: KindProduct, Product: &product, Variant: strings.TrimSpace(variant)}

	case "products":
		ref := parseGridRef(token.arg)
		products := lookup.Grids[GridKey(ref)]
		if len(products) == 0 {
			return placeholder("No products found in: " + ref.Category)
		}
		return Block{Kind: KindProductGrid, Products: products, Category: ref.Category}

	case "comparison":
		slugs := strings.Split(token.arg, ",")
		var products []store.Product
		for _, slug := range slugs {
			if p, ok := lookup.Products[strings.TrimSpace(slug)]; ok {
				products = append(products, p)
			}
		}
		// A comparison needs at least two requested and two resolvable
		// products; a single-slug comparison is structurally broken.
		if len(slugs) < 2 || len(products) < 2 {
			return placeholder("Not enough products to compare")
		}
		return Block{Kind: KindComparison, Products: products}
	}

	return placeholder("Unknown shortcode: " + token.kind)
}

func placeholder(message string) Block {
	return Block{Kind: KindPlaceholder, Message: message}
}
