// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Product statuses.
const (
	ProductStatusDraft     = "draft"
	ProductStatusPublished = "published"
	ProductStatusArchived  = "archived"
)

// Metadata is the free-form per-product metadata bag. Its schema varies by
// niche: specs and benchmarks for gaming, ingredients for beauty, pros/cons
// everywhere. Sections consult it through Has/Get rather than assuming shape.
type Metadata map[string]any

// ParseMetadata decodes a stored JSON metadata bag. An empty or invalid
// document yields an empty bag rather than an error: metadata is decorative
// and must never fail a page.
func ParseMetadata(raw string) Metadata {
	if strings.TrimSpace(raw) == "" {
		return Metadata{}
	}
	var m Metadata
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return Metadata{}
	}
	return m
}

// Has reports whether the given key exists in the bag and holds a truthy
// value. Absent, null, empty-string, empty-slice and empty-map values all
// count as missing, so a layout condition field degrades gracefully for
// products without the niche-specific data.
func (m Metadata) Has(key string) bool {
	if m == nil {
		return false
	}
	v, ok := m[key]
	if !ok || v == nil {
		return false
	}
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val) != ""
	case bool:
		return val
	case float64:
		return val != 0
	case []any:
		return len(val) > 0
	case map[string]any:
		return len(val) > 0
	default:
		return true
	}
}

// StringSlice returns the metadata value under key as a string slice.
// Non-slice or non-string elements are skipped.
func (m Metadata) StringSlice(key string) []string {
	v, ok := m[key]
	if !ok {
		return nil
	}
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// StringMap returns the metadata value under key as a string-keyed map of
// display strings. Scalar values are stringified.
func (m Metadata) StringMap(key string) map[string]string {
	v, ok := m[key]
	if !ok {
		return nil
	}
	raw, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	out := make(map[string]string, len(raw))
	for k, item := range raw {
		switch val := item.(type) {
		case string:
			out[k] = val
		case float64:
			out[k] = trimFloat(val)
		case bool:
			out[k] = fmt.Sprintf("%t", val)
		}
	}
	return out
}

func trimFloat(f float64) string {
	s := fmt.Sprintf("%.2f", f)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

// Price holds the pricing fields of a product. Amount and Max are optional;
// Text overrides numeric display entirely when set ("From $49/month").
type Price struct {
	Amount   *float64
	Max      *float64
	Currency string
	Text     string
}

// currencySymbols maps ISO currency codes to display symbols.
var currencySymbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
}

// Display returns the human-readable price string: the free-form text when
// present, a range when Max is set, a single amount otherwise, and empty
// when no pricing exists at all.
func (p Price) Display() string {
	if p.Text != "" {
		return p.Text
	}
	if p.Amount == nil {
		return ""
	}
	sym := currencySymbols[p.Currency]
	if sym == "" {
		sym = p.Currency + " "
	}
	if p.Max != nil && *p.Max > *p.Amount {
		return fmt.Sprintf("%s%s – %s%s", sym, formatAmount(*p.Amount), sym, formatAmount(*p.Max))
	}
	return sym + formatAmount(*p.Amount)
}

func formatAmount(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.2f", v)
}

// Rating holds the review aggregate of a product.
type Rating struct {
	Value *float64
	Count int64
}

// Display returns "4.5/5" style text, or empty when no rating exists.
func (r Rating) Display() string {
	if r.Value == nil {
		return ""
	}
	return fmt.Sprintf("%s/5", trimFloat(*r.Value))
}

// HasValue reports whether a rating exists. Structured-data builders omit
// the aggregateRating block entirely when this is false.
func (r Rating) HasValue() bool {
	return r.Value != nil
}
