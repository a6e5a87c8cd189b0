// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package layout turns a niche's layout configuration into the concrete,
// ordered section lists a page renders. A niche config is merged over a
// hard-coded default, then filtered per product against the metadata bag.
package layout

import (
	"encoding/json"
	"fmt"

	"github.com/0xSimbaDev/affiliate-website-sub002/internal/model"
)

// Config describes the zones of a page and the ordered sections within each.
type Config struct {
	Zones []Zone `json:"zones"`
}

// Zone is a named placement area (main, sidebar, overlay) holding an ordered
// section list.
type Zone struct {
	ID       string       `json:"id"`
	Sections []SectionRef `json:"sections"`
}

// SectionRef is one section descriptor inside a zone. Enabled defaults to
// true when omitted. ConditionField names a product metadata key that must be
// present and truthy for the section to render.
type SectionRef struct {
	ID             string         `json:"id"`
	Enabled        *bool          `json:"enabled,omitempty"`
	Props          map[string]any `json:"props,omitempty"`
	ConditionField string         `json:"conditionField,omitempty"`
}

// IsEnabled reports whether the descriptor is active. A nil Enabled counts as
// true.
func (s SectionRef) IsEnabled() bool {
	return s.Enabled == nil || *s.Enabled
}

// Default returns the base layout every niche starts from. Niche configs
// override it per zone.
func Default() Config {
	return Config{
		Zones: []Zone{
			{
				ID: "main",
				Sections: []SectionRef{
					{ID: "breadcrumb"},
					{ID: "hero"},
					{ID: "affiliate-partners"},
					{ID: "pros-cons"},
					{ID: "full-review"},
					{ID: "related-products", Props: map[string]any{"limit": float64(4)}},
					{ID: "featured-articles"},
				},
			},
			{
				ID: "overlay",
				Sections: []SectionRef{
					{ID: "sticky-bar"},
				},
			},
		},
	}
}

// Parse decodes a niche's layout_config JSON. An empty string means the niche
// has no layout of its own and returns nil with no error.
func Parse(raw string) (*Config, error) {
	if raw == "" || raw == "{}" || raw == "null" {
		return nil, nil
	}
	var cfg Config
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		return nil, fmt.Errorf("parsing layout config: %w", err)
	}
	return &cfg, nil
}

// Merge combines a niche config over the default. It is a pure function of
// its inputs:
//   - a nil niche config yields the default verbatim
//   - a zone the niche mentions takes the niche's section list and order,
//     with enabled:false descriptors removed; descriptors matching a default
//     section in the same zone inherit its props and condition when they set
//     none of their own
//   - zones the niche does not mention keep the default's section list
//   - zones only the niche mentions are appended after the default's zones
func Merge(def Config, niche *Config) Config {
	if niche == nil {
		return cloneConfig(def)
	}

	nicheZones := make(map[string]Zone, len(niche.Zones))
	for _, z := range niche.Zones {
		nicheZones[z.ID] = z
	}

	out := Config{Zones: make([]Zone, 0, len(def.Zones))}
	for _, defZone := range def.Zones {
		nz, mentioned := nicheZones[defZone.ID]
		if !mentioned {
			out.Zones = append(out.Zones, cloneZone(defZone))
			continue
		}
		out.Zones = append(out.Zones, mergeZone(defZone, nz))
		delete(nicheZones, defZone.ID)
	}

	// Niche-only zones keep their declared order.
	for _, z := range niche.Zones {
		if _, remaining := nicheZones[z.ID]; remaining {
			out.Zones = append(out.Zones, mergeZone(Zone{ID: z.ID}, z))
		}
	}

	return out
}

func mergeZone(def, niche Zone) Zone {
	defaults := make(map[string]SectionRef, len(def.Sections))
	for _, ref := range def.Sections {
		defaults[ref.ID] = ref
	}

	merged := Zone{ID: def.ID, Sections: make([]SectionRef, 0, len(niche.Sections))}
	for _, ref := range niche.Sections {
		if !ref.IsEnabled() {
			continue
		}
		out := cloneRef(ref)
		if base, ok := defaults[ref.ID]; ok {
			if out.Props == nil {
				out.Props = cloneProps(base.Props)
			}
			if out.ConditionField == "" {
				out.ConditionField = base.ConditionField
			}
		}
		merged.Sections = append(merged.Sections, out)
	}
	return merged
}

// Resolve filters a merged config for one product: disabled descriptors and
// descriptors whose ConditionField is absent or empty in the metadata bag are
// dropped. A nil metadata bag drops every conditioned section.
func Resolve(cfg Config, meta model.Metadata) Config {
	out := Config{Zones: make([]Zone, 0, len(cfg.Zones))}
	for _, zone := range cfg.Zones {
		resolved := Zone{ID: zone.ID}
		for _, ref := range zone.Sections {
			if !ref.IsEnabled() {
				continue
			}
			if ref.ConditionField != "" && !meta.Has(ref.ConditionField) {
				continue
			}
			resolved.Sections = append(resolved.Sections, cloneRef(ref))
		}
		out.Zones = append(out.Zones, resolved)
	}
	return out
}

// ZoneSections returns the section list for a zone ID, or nil when the config
// has no such zone.
func (c Config) ZoneSections(id string) []SectionRef {
	for _, z := range c.Zones {
		if z.ID == id {
			return z.Sections
		}
	}
	return nil
}

func cloneConfig(c Config) Config {
	out := Config{Zones: make([]Zone, 0, len(c.Zones))}
	for _, z := range c.Zones {
		out.Zones = append(out.Zones, cloneZone(z))
	}
	return out
}

func cloneZone(z Zone) Zone {
	out := Zone{ID: z.ID, Sections: make([]SectionRef, 0, len(z.Sections))}
	for _, ref := range z.Sections {
		out.Sections = append(out.Sections, cloneRef(ref))
	}
	return out
}

func cloneRef(ref SectionRef) SectionRef {
	out := SectionRef{ID: ref.ID, ConditionField: ref.ConditionField}
	if ref.Enabled != nil {
		v := *ref.Enabled
		out.Enabled = &v
	}
	out.Props = cloneProps(ref.Props)
	return out
}

func cloneProps(props map[string]any) map[string]any {
	if props == nil {
		return nil
	}
	out := make(map[string]any, len(props))
	for k, v := range props {
		out[k] = v
	}
	return out
}
