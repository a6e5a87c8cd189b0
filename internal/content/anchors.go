// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package content

import (
	"fmt"
	"regexp"

	"github.com/0xSimbaDev/affiliate-website-sub002/internal/util"
)

var (
	headingRe = regexp.MustCompile(`(?is)<h([2-4])([^>]*)>(.*?)</h[2-4]>`)
	idAttrRe  = regexp.MustCompile(`(?i)\bid\s*=`)
	tagRe     = regexp.MustCompile(`<[^>]*>`)
)

// InjectHeadingAnchors adds a slug-derived id attribute to h2-h4 elements
// that have none, so in-page navigation can target them. Existing ids are
// left alone; duplicate heading texts get a numeric suffix.
func InjectHeadingAnchors(html string) string {
	seen := make(map[string]int)
	return headingRe.ReplaceAllStringFunc(html, func(m string) string {
		sub := headingRe.FindStringSubmatch(m)
		level, attrs, inner := sub[1], sub[2], sub[3]
		if idAttrRe.MatchString(attrs) {
			return m
		}

		id := util.Slugify(tagRe.ReplaceAllString(inner, ""))
		if id == "" {
			return m
		}
		seen[id]++
		if n := seen[id]; n > 1 {
			id = fmt.Sprintf("%s-%d", id, n)
		}

		return fmt.Sprintf(`<h%s%s id="%s">%s</h%s>`, level, attrs, id, inner, level)
	})
}
