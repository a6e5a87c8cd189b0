// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"log/slog"
	"net/mail"

	"github.com/0xSimbaDev/affiliate-website-sub002/internal/util"
)

// SlugExistsFunc checks whether a slug is already taken within its scope.
// Returns the count of matching rows.
type SlugExistsFunc func() (int64, error)

// ValidateSlugWithChecker validates a slug's format and uniqueness. Returns an
// error message, or empty string when valid.
func ValidateSlugWithChecker(slug string, checkExists SlugExistsFunc) string {
	if slug == "" {
		return "Slug is required"
	}
	if !util.IsValidSlug(slug) {
		return "Invalid slug format (use lowercase letters, numbers, and hyphens)"
	}
	exists, err := checkExists()
	if err != nil {
		slog.Error("database error checking slug", "error", err)
		return "Error checking slug"
	}
	if exists != 0 {
		return "Slug already exists"
	}
	return ""
}

// ValidateSlugForUpdate skips the uniqueness check when the slug is unchanged.
func ValidateSlugForUpdate(slug, currentSlug string, checkExists SlugExistsFunc) string {
	if slug == currentSlug {
		return ""
	}
	return ValidateSlugWithChecker(slug, checkExists)
}

// ValidateSlugFormat validates only the slug format, without a uniqueness
// check.
func ValidateSlugFormat(slug string) string {
	if slug == "" {
		return "Slug is required"
	}
	if !util.IsValidSlug(slug) {
		return "Invalid slug format"
	}
	return ""
}

// ValidateEmail validates an email address form field.
func ValidateEmail(email string) string {
	if email == "" {
		return "Email is required"
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return "Invalid email address"
	}
	return ""
}

// ValidateRequired checks that a field is non-empty.
func ValidateRequired(value, label string) string {
	if value == "" {
		return label + " is required"
	}
	return ""
}
