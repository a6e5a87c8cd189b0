// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package content

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// LinkTarget is a known product or category name the auto-linker may wrap in
// an internal link.
type LinkTarget struct {
	Name string
	URL  string
}

// protectedRe matches the regions the auto-linker must never rewrite:
// existing anchor elements and shortcode tokens.
var protectedRe = regexp.MustCompile(`(?is)<a\b[^>]*>.*?</a>|\[(?:product|products|comparison):[^\]]+\]`)

// AutoLink wraps the first prose occurrence of each target name in a link.
// Rules: one link per distinct name, longer names are matched before shorter
// ones so "Nimbus Pro Wireless" beats "Nimbus Pro", and text already inside an
// anchor or a shortcode token is never rewritten.
func AutoLink(html string, targets []LinkTarget) string {
	if len(targets) == 0 {
		return html
	}

	sorted := make([]LinkTarget, 0, len(targets))
	seen := make(map[string]bool, len(targets))
	for _, t := range targets {
		name := strings.TrimSpace(t.Name)
		if name == "" || t.URL == "" || seen[strings.ToLower(name)] {
			continue
		}
		seen[strings.ToLower(name)] = true
		sorted = append(sorted, LinkTarget{Name: name, URL: t.URL})
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		if len(sorted[i].Name) != len(sorted[j].Name) {
			return len(sorted[i].Name) > len(sorted[j].Name)
		}
		return sorted[i].Name < sorted[j].Name
	})

	// Swap protected regions out for opaque markers so no target can match
	// inside them. Newly created links are protected the same way, which
	// keeps a shorter name from matching inside a longer name's new anchor.
	var stash []string
	protect := func(s string) string {
		stash = append(stash, s)
		return "\x00" + strconv.Itoa(len(stash)-1) + "\x00"
	}
	out := protectedRe.ReplaceAllStringFunc(html, protect)

	for _, target := range sorted {
		re, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(target.Name) + `\b`)
		if err != nil {
			continue
		}
		tags := tagRe.FindAllStringIndex(out, -1)
		for _, m := range re.FindAllStringIndex(out, -1) {
			if insideAny(tags, m[0]) {
				continue
			}
			link := `<a href="` + target.URL + `">` + out[m[0]:m[1]] + `</a>`
			out = out[:m[0]] + protect(link) + out[m[1]:]
			break
		}
	}

	for i := len(stash) - 1; i >= 0; i-- {
		out = strings.Replace(out, "\x00"+strconv.Itoa(i)+"\x00", stash[i], 1)
	}
	return out
}

func insideAny(ranges [][]int, pos int) bool {
	for _, r := range ranges {
		if pos >= r[0] && pos < r[1] {
			return true
		}
	}
	return false
}
