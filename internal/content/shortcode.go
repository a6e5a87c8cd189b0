// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package content

import (
	"regexp"
	"strconv"
	"strings"
)

// Shortcode grammar embedded in stored content:
//
//	[product:slug]
//	[product:slug:variant]
//	[products:category-slug:limit]
//	[comparison:slug-a,slug-b,...]
//
// Anything else, including malformed tokens, stays in the surrounding HTML.
var shortcodeRe = regexp.MustCompile(`\[(product|products|comparison):([^\]]+)\]`)

// DefaultGridLimit caps a product grid when the shortcode names no limit.
const DefaultGridLimit = 6

type rawToken struct {
	kind string
	arg  string
}

// segment splits content into literal HTML runs and parsed shortcode tokens,
// preserving order.
type segmentPart struct {
	html  string
	token *rawToken
}

func segment(content string) []segmentPart {
	var parts []segmentPart
	last := 0
	for _, m := range shortcodeRe.FindAllStringSubmatchIndex(content, -1) {
		if m[0] > last {
			parts = append(parts, segmentPart{html: content[last:m[0]]})
		}
		parts = append(parts, segmentPart{token: &rawToken{
			kind: content[m[2]:m[3]],
			arg:  content[m[4]:m[5]],
		}})
		last = m[1]
	}
	if last < len(content) {
		parts = append(parts, segmentPart{html: content[last:]})
	}
	return parts
}

// GridRef identifies one [products:...] grid so its products can be
// prefetched before rendering.
type GridRef struct {
	Category string
	Limit    int64
}

// Refs lists everything a content body references through shortcodes.
type Refs struct {
	ProductSlugs []string
	Grids        []GridRef
}

// ExtractRefs scans a raw content body for shortcode references. Used to
// prefetch the lookup maps in one round trip each; resolution never issues
// fresh queries.
func ExtractRefs(body string) Refs {
	var refs Refs
	seenSlug := make(map[string]bool)
	seenGrid := make(map[string]bool)

	addSlug := func(slug string) {
		slug = strings.TrimSpace(slug)
		if slug == "" || seenSlug[slug] {
			return
		}
		seenSlug[slug] = true
		refs.ProductSlugs = append(refs.ProductSlugs, slug)
	}

	for _, part := range segment(body) {
		if part.token == nil {
			continue
		}
		switch part.token.kind {
		case "product":
			slug, _, _ := strings.Cut(part.token.arg, ":")
			addSlug(slug)
		case "comparison":
			for _, slug := range strings.Split(part.token.arg, ",") {
				addSlug(slug)
			}
		case "products":
			grid := parseGridRef(part.token.arg)
			key := grid.Category + ":" + strconv.FormatInt(grid.Limit, 10)
			if grid.Category != "" && !seenGrid[key] {
				seenGrid[key] = true
				refs.Grids = append(refs.Grids, grid)
			}
		}
	}
	return refs
}

func parseGridRef(arg string) GridRef {
	category, rest, _ := strings.Cut(arg, ":")
	grid := GridRef{Category: strings.TrimSpace(category), Limit: DefaultGridLimit}
	if n, err := strconv.ParseInt(strings.TrimSpace(rest), 10, 64); err == nil && n > 0 {
		grid.Limit = n
	}
	return grid
}
