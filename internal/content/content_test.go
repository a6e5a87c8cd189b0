// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package content

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xSimbaDev/affiliate-website-sub002/internal/model"
	"github.com/0xSimbaDev/affiliate-website-sub002/internal/store"
)

func lookupWith(products ...store.Product) Lookup {
	l := Lookup{Products: make(map[string]store.Product), Grids: make(map[string][]store.Product)}
	for _, p := range products {
		l.Products[p.Slug] = p
	}
	return l
}

func TestRenderMissingProductPlaceholder(t *testing.T) {
	r := NewRenderer(false)

	blocks, err := r.Render("Check [product:sony-xm4] out", model.BodyFormatHTML, nil, lookupWith())
	require.NoError(t, err)
	require.Len(t, blocks, 3)

	assert.Equal(t, KindHTML, blocks[0].Kind)
	assert.Equal(t, "Check ", string(blocks[0].HTML))
	assert.Equal(t, KindPlaceholder, blocks[1].Kind)
	assert.Equal(t, "Product not found: sony-xm4", blocks[1].Message)
	assert.Equal(t, KindHTML, blocks[2].Kind)
	assert.Equal(t, " out", string(blocks[2].HTML))
}

func TestRenderProductAndVariant(t *testing.T) {
	r := NewRenderer(false)
	lookup := lookupWith(store.Product{ID: 1, Slug: "nimbus-pro", Name: "Nimbus Pro"})

	blocks, err := r.Render("[product:nimbus-pro:compact]", model.BodyFormatHTML, nil, lookup)
	require.NoError(t, err)
	require.Len(t, blocks, 1)

	assert.Equal(t, KindProduct, blocks[0].Kind)
	require.NotNil(t, blocks[0].Product)
	assert.Equal(t, "nimbus-pro", blocks[0].Product.Slug)
	assert.Equal(t, "compact", blocks[0].Variant)
}

func TestRenderComparison(t *testing.T) {
	r := NewRenderer(false)
	lookup := lookupWith(
		store.Product{ID: 1, Slug: "a", Name: "A"},
		store.Product{ID: 2, Slug: "b", Name: "B"},
	)

	t.Run("two resolvable products", func(t *testing.T) {
		blocks, err := r.Render("[comparison:a,b]", model.BodyFormatHTML, nil, lookup)
		require.NoError(t, err)
		require.Len(t, blocks, 1)
		assert.Equal(t, KindComparison, blocks[0].Kind)
		assert.Len(t, blocks[0].Products, 2)
	})

	t.Run("single slug is structurally broken even when it resolves", func(t *testing.T) {
		blocks, err := r.Render("[comparison:a]", model.BodyFormatHTML, nil, lookup)
		require.NoError(t, err)
		require.Len(t, blocks, 1)
		assert.Equal(t, KindPlaceholder, blocks[0].Kind)
		assert.Equal(t, "Not enough products to compare", blocks[0].Message)
	})

	t.Run("only one of three resolves", func(t *testing.T) {
		blocks, err := r.Render("[comparison:a,x,y]", model.BodyFormatHTML, nil, lookup)
		require.NoError(t, err)
		require.Len(t, blocks, 1)
		assert.Equal(t, KindPlaceholder, blocks[0].Kind)
	})
}

func TestRenderProductGrid(t *testing.T) {
	r := NewRenderer(false)
	lookup := lookupWith()
	lookup.Grids["headsets:3"] = []store.Product{{ID: 1, Slug: "a"}, {ID: 2, Slug: "b"}}

	blocks, err := r.Render("[products:headsets:3]", model.BodyFormatHTML, nil, lookup)
	require.NoError(t, err)
	require.Len(t, blocks, 1)
	assert.Equal(t, KindProductGrid, blocks[0].Kind)
	assert.Equal(t, "headsets", blocks[0].Category)
	assert.Len(t, blocks[0].Products, 2)

	blocks, err = r.Render("[products:empty:3]", model.BodyFormatHTML, nil, lookup)
	require.NoError(t, err)
	require.Len(t, blocks, 1)
	assert.Equal(t, KindPlaceholder, blocks[0].Kind)
}

func TestRenderSanitizesHTML(t *testing.T) {
	r := NewRenderer(false)

	blocks, err := r.Render(`<p onclick="evil()">hi</p><script>alert(1)</script>`,
		model.BodyFormatHTML, nil, lookupWith())
	require.NoError(t, err)
	require.Len(t, blocks, 1)

	html := string(blocks[0].HTML)
	assert.Contains(t, html, "<p>hi</p>")
	assert.NotContains(t, html, "script")
	assert.NotContains(t, html, "onclick")
}

func TestRenderMarkdownBody(t *testing.T) {
	r := NewRenderer(false)

	blocks, err := r.Render("## Verdict\n\nSolid choice.", model.BodyFormatMarkdown, nil, lookupWith())
	require.NoError(t, err)
	require.NotEmpty(t, blocks)

	html := string(blocks[0].HTML)
	assert.Contains(t, html, `<h2 id="verdict">`)
	assert.Contains(t, html, "Solid choice.")
}

func TestExtractRefs(t *testing.T) {
	body := `intro [product:alpha] mid [product:alpha:mini] [products:headsets:3]
		[comparison:alpha,beta , gamma] [products:headsets:3] outro`

	refs := ExtractRefs(body)

	assert.Equal(t, []string{"alpha", "beta", "gamma"}, refs.ProductSlugs)
	require.Len(t, refs.Grids, 1)
	assert.Equal(t, GridRef{Category: "headsets", Limit: 3}, refs.Grids[0])
}

func TestExtractRefsDefaultsGridLimit(t *testing.T) {
	refs := ExtractRefs("[products:headsets]")
	require.Len(t, refs.Grids, 1)
	assert.Equal(t, int64(DefaultGridLimit), refs.Grids[0].Limit)
}

func TestInjectHeadingAnchors(t *testing.T) {
	t.Run("adds ids to bare headings", func(t *testing.T) {
		out := InjectHeadingAnchors("<h2>Sound Quality</h2><h3>Battery Life</h3>")
		assert.Equal(t, `<h2 id="sound-quality">Sound Quality</h2><h3 id="battery-life">Battery Life</h3>`, out)
	})

	t.Run("keeps existing ids", func(t *testing.T) {
		in := `<h2 id="custom">Sound Quality</h2>`
		assert.Equal(t, in, InjectHeadingAnchors(in))
	})

	t.Run("dedupes repeated headings", func(t *testing.T) {
		out := InjectHeadingAnchors("<h2>Verdict</h2><h2>Verdict</h2>")
		assert.Contains(t, out, `id="verdict"`)
		assert.Contains(t, out, `id="verdict-2"`)
	})

	t.Run("strips inner tags when slugging", func(t *testing.T) {
		out := InjectHeadingAnchors("<h2>The <em>Best</em> Pick</h2>")
		assert.Contains(t, out, `id="the-best-pick"`)
	})

	t.Run("ignores h1", func(t *testing.T) {
		in := "<h1>Title</h1>"
		assert.Equal(t, in, InjectHeadingAnchors(in))
	})
}

func TestAutoLinkFirstOccurrenceOnly(t *testing.T) {
	in := "<p>Nimbus Pro is great. Nimbus Pro is light. Buy Nimbus Pro.</p>"
	out := AutoLink(in, []LinkTarget{{Name: "Nimbus Pro", URL: "/p/nimbus-pro"}})

	assert.Equal(t, 1, strings.Count(out, `<a href="/p/nimbus-pro">`))
	assert.True(t, strings.HasPrefix(out, `<p><a href="/p/nimbus-pro">Nimbus Pro</a> is great.`))
}

func TestAutoLinkSkipsExistingAnchors(t *testing.T) {
	in := `<p><a href="/x">Nimbus Pro</a> and more text here.</p>`
	out := AutoLink(in, []LinkTarget{{Name: "Nimbus Pro", URL: "/p/nimbus-pro"}})
	assert.Equal(t, in, out)
}

func TestAutoLinkSkipsShortcodeTokens(t *testing.T) {
	in := `<p>[product:nimbus-pro] is our pick.</p>`
	out := AutoLink(in, []LinkTarget{{Name: "nimbus-pro", URL: "/p/nimbus-pro"}})
	assert.Equal(t, in, out)
}

func TestAutoLinkLongestNameWins(t *testing.T) {
	in := "<p>The Nimbus Pro Wireless impressed us.</p>"
	out := AutoLink(in, []LinkTarget{
		{Name: "Nimbus Pro", URL: "/p/nimbus-pro"},
		{Name: "Nimbus Pro Wireless", URL: "/p/nimbus-pro-wireless"},
	})

	assert.Contains(t, out, `<a href="/p/nimbus-pro-wireless">Nimbus Pro Wireless</a>`)
	assert.NotContains(t, out, `href="/p/nimbus-pro"`)
}

func TestAutoLinkNeverRewritesTagAttributes(t *testing.T) {
	in := `<img alt="Nimbus Pro" src="/i.jpg"><p>Nimbus Pro shot.</p>`
	out := AutoLink(in, []LinkTarget{{Name: "Nimbus Pro", URL: "/p/nimbus-pro"}})

	assert.Contains(t, out, `<img alt="Nimbus Pro" src="/i.jpg">`)
	assert.Contains(t, out, `<p><a href="/p/nimbus-pro">Nimbus Pro</a> shot.</p>`)
}

func TestAutoLinkCaseInsensitiveMatchKeepsOriginalText(t *testing.T) {
	in := "<p>the nimbus pro rocks</p>"
	out := AutoLink(in, []LinkTarget{{Name: "Nimbus Pro", URL: "/p/nimbus-pro"}})
	assert.Contains(t, out, `<a href="/p/nimbus-pro">nimbus pro</a>`)
}

func TestAutoLinkNoTargets(t *testing.T) {
	in := "<p>plain</p>"
	assert.Equal(t, in, AutoLink(in, nil))
}
