// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xSimbaDev/affiliate-website-sub002/internal/model"
)

func sectionIDs(refs []SectionRef) []string {
	ids := make([]string, 0, len(refs))
	for _, ref := range refs {
		ids = append(ids, ref.ID)
	}
	return ids
}

func TestParse(t *testing.T) {
	t.Run("empty means absent", func(t *testing.T) {
		for _, raw := range []string{"", "{}", "null"} {
			cfg, err := Parse(raw)
			require.NoError(t, err)
			assert.Nil(t, cfg)
		}
	})

	t.Run("invalid json errors", func(t *testing.T) {
		_, err := Parse("{not json")
		assert.Error(t, err)
	})

	t.Run("valid config", func(t *testing.T) {
		cfg, err := Parse(`{"zones":[{"id":"main","sections":[
			{"id":"hero"},
			{"id":"specifications","conditionField":"specs","props":{"columns":2}},
			{"id":"sticky-bar","enabled":false}
		]}]}`)
		require.NoError(t, err)
		require.NotNil(t, cfg)
		require.Len(t, cfg.Zones, 1)
		refs := cfg.Zones[0].Sections
		require.Len(t, refs, 3)
		assert.True(t, refs[0].IsEnabled())
		assert.Equal(t, "specs", refs[1].ConditionField)
		assert.Equal(t, float64(2), refs[1].Props["columns"])
		assert.False(t, refs[2].IsEnabled())
	})
}

func TestMergeNilNicheYieldsDefault(t *testing.T) {
	def := Default()
	merged := Merge(def, nil)
	assert.Equal(t, def, merged)

	// Mutating the result must not touch the default.
	merged.Zones[0].Sections[0].ID = "mutated"
	assert.Equal(t, "breadcrumb", Default().Zones[0].Sections[0].ID)
}

func TestMergeMentionedZoneReplacesOrder(t *testing.T) {
	niche := &Config{Zones: []Zone{{
		ID: "main",
		Sections: []SectionRef{
			{ID: "hero"},
			{ID: "specifications", ConditionField: "specs"},
			{ID: "full-review"},
		},
	}}}

	merged := Merge(Default(), niche)

	assert.Equal(t, []string{"hero", "specifications", "full-review"},
		sectionIDs(merged.ZoneSections("main")))
	// Unmentioned zone inherits the default.
	assert.Equal(t, []string{"sticky-bar"}, sectionIDs(merged.ZoneSections("overlay")))
}

func TestMergeEnabledFalseRemovesSection(t *testing.T) {
	off := false
	niche := &Config{Zones: []Zone{{
		ID: "overlay",
		Sections: []SectionRef{
			{ID: "sticky-bar", Enabled: &off},
		},
	}}}

	merged := Merge(Default(), niche)
	assert.Empty(t, merged.ZoneSections("overlay"))
}

func TestMergeInheritsDefaultPropsAndCondition(t *testing.T) {
	def := Config{Zones: []Zone{{
		ID: "main",
		Sections: []SectionRef{
			{ID: "related-products", Props: map[string]any{"limit": float64(4)}},
			{ID: "gallery", ConditionField: "images"},
		},
	}}}
	niche := &Config{Zones: []Zone{{
		ID: "main",
		Sections: []SectionRef{
			{ID: "gallery"},
			{ID: "related-products"},
		},
	}}}

	merged := Merge(def, niche)
	refs := merged.ZoneSections("main")
	require.Len(t, refs, 2)
	assert.Equal(t, "images", refs[0].ConditionField)
	assert.Equal(t, float64(4), refs[1].Props["limit"])

	// A niche ref with its own props keeps them.
	niche.Zones[0].Sections[1].Props = map[string]any{"limit": float64(8)}
	merged = Merge(def, niche)
	assert.Equal(t, float64(8), merged.ZoneSections("main")[1].Props["limit"])
}

func TestMergeNicheOnlyZoneAppended(t *testing.T) {
	niche := &Config{Zones: []Zone{{
		ID:       "sidebar",
		Sections: []SectionRef{{ID: "faq", ConditionField: "faq"}},
	}}}

	merged := Merge(Default(), niche)
	require.Len(t, merged.Zones, 3)
	assert.Equal(t, "sidebar", merged.Zones[2].ID)
	assert.Equal(t, []string{"faq"}, sectionIDs(merged.ZoneSections("sidebar")))
}

func TestResolveConditionField(t *testing.T) {
	cfg := Config{Zones: []Zone{{
		ID: "main",
		Sections: []SectionRef{
			{ID: "hero"},
			{ID: "specifications", ConditionField: "specs"},
			{ID: "ingredients", ConditionField: "ingredients"},
		},
	}}}

	tests := []struct {
		name string
		meta model.Metadata
		want []string
	}{
		{
			name: "present truthy key keeps section",
			meta: model.Metadata{"specs": map[string]any{"weight": "310g"}},
			want: []string{"hero", "specifications"},
		},
		{
			name: "absent key drops section",
			meta: model.Metadata{},
			want: []string{"hero"},
		},
		{
			name: "nil metadata drops every conditioned section",
			meta: nil,
			want: []string{"hero"},
		},
		{
			name: "null value drops section",
			meta: model.Metadata{"specs": nil},
			want: []string{"hero"},
		},
		{
			name: "empty list drops section",
			meta: model.Metadata{"ingredients": []any{}},
			want: []string{"hero"},
		},
		{
			name: "empty string drops section",
			meta: model.Metadata{"specs": ""},
			want: []string{"hero"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolved := Resolve(cfg, tt.meta)
			assert.Equal(t, tt.want, sectionIDs(resolved.ZoneSections("main")))
		})
	}
}

func TestResolveDropsDisabled(t *testing.T) {
	off := false
	cfg := Config{Zones: []Zone{{
		ID: "main",
		Sections: []SectionRef{
			{ID: "hero"},
			{ID: "sticky-bar", Enabled: &off},
		},
	}}}

	resolved := Resolve(cfg, model.Metadata{})
	assert.Equal(t, []string{"hero"}, sectionIDs(resolved.ZoneSections("main")))
}

func TestZoneSectionsUnknownZone(t *testing.T) {
	assert.Nil(t, Default().ZoneSections("nope"))
}
