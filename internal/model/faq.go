// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// FAQItem is one question/answer pair from a product's metadata bag.
type FAQItem struct {
	Question string
	Answer   string
}

// FAQItems extracts the "faq" metadata list. Entries missing a question or
// answer are skipped.
func (m Metadata) FAQItems() []FAQItem {
	v, ok := m["faq"]
	if !ok {
		return nil
	}
	raw, ok := v.([]any)
	if !ok {
		return nil
	}
	items := make([]FAQItem, 0, len(raw))
	for _, entry := range raw {
		obj, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		q, _ := obj["question"].(string)
		a, _ := obj["answer"].(string)
		if q == "" || a == "" {
			continue
		}
		items = append(items, FAQItem{Question: q, Answer: a})
	}
	return items
}
