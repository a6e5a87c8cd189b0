// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "encoding/json"

// SocialLinks holds the per-site social profile URLs shown in the footer
// and emitted as sameAs entries in WebSite structured data.
type SocialLinks struct {
	Twitter   string `json:"twitter,omitempty"`
	Facebook  string `json:"facebook,omitempty"`
	Instagram string `json:"instagram,omitempty"`
	YouTube   string `json:"youtube,omitempty"`
}

// ParseSocialLinks decodes the stored JSON document. Invalid JSON yields an
// empty set: social links are decorative.
func ParseSocialLinks(raw string) SocialLinks {
	var links SocialLinks
	if raw == "" {
		return links
	}
	_ = json.Unmarshal([]byte(raw), &links)
	return links
}

// URLs returns the non-empty links in stable order.
func (s SocialLinks) URLs() []string {
	var out []string
	for _, u := range []string{s.Twitter, s.Facebook, s.Instagram, s.YouTube} {
		if u != "" {
			out = append(out, u)
		}
	}
	return out
}
