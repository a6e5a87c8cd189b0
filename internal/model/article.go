// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// Article statuses.
const (
	ArticleStatusDraft     = "draft"
	ArticleStatusPublished = "published"
	ArticleStatusArchived  = "archived"
)

// Article types.
const (
	ArticleTypeRoundup     = "roundup"
	ArticleTypeReview      = "review"
	ArticleTypeComparison  = "comparison"
	ArticleTypeBuyingGuide = "buying-guide"
	ArticleTypeHowTo       = "how-to"
)

// Article body formats.
const (
	BodyFormatHTML     = "html"
	BodyFormatMarkdown = "markdown"
)

// ArticleTypes lists all valid article type tags for form validation.
var ArticleTypes = []string{
	ArticleTypeRoundup,
	ArticleTypeReview,
	ArticleTypeComparison,
	ArticleTypeBuyingGuide,
	ArticleTypeHowTo,
}

// IsValidArticleType reports whether t is a known article type tag.
func IsValidArticleType(t string) bool {
	for _, known := range ArticleTypes {
		if t == known {
			return true
		}
	}
	return false
}
