// Package magazine holds the read-only registry of magazine lines: display
// names, how their color pages are announced, and the per-issue counts the
// validator expects.
package magazine

import (
	"fmt"
	"sort"
)

// ColorStyle selects the color-label extraction family for a magazine.
type ColorStyle string

const (
	// StyleStandard pages announce cover, frontispiece and center color.
	StyleStandard ColorStyle = "standard"
	// StyleCoverOnly pages have no center color at all.
	StyleCoverOnly ColorStyle = "cover-only"
)

// DefaultKey is the profile used for magazines without their own entry.
const DefaultKey = "default"

// Profile is the expected number of flagged rows per issue. Center is nil
// when the magazine has no center-color slots.
type Profile struct {
	Cover  int  `yaml:"cover"`
	Top    int  `yaml:"top"`
	Center *int `yaml:"center"`
}

type Magazine struct {
	Slug       string     `yaml:"slug"`
	Name       string     `yaml:"name"`
	Style      ColorStyle `yaml:"style"`
	MonthAhead int        `yaml:"month_ahead"`
	Expect     *Profile   `yaml:"expect,omitempty"`
}

// Registry is built once from config and never mutated afterwards.
type Registry struct {
	mags     map[string]Magazine
	order    []string
	fallback Profile
}

func intPtr(n int) *int { return &n }

// DefaultProfile is cover=1, top=1 at rank 1, center=4.
func DefaultProfile() Profile {
	return Profile{Cover: 1, Top: 1, Center: intPtr(4)}
}

// Defaults returns the five kirara lines as published on dokidokivisual.com.
func Defaults() []Magazine {
	return []Magazine{
		{Slug: "kirara-carat", Name: "きららキャラット", Style: StyleStandard, MonthAhead: 2},
		{Slug: "kirara", Name: "きらら", Style: StyleStandard, MonthAhead: 1},
		{Slug: "kirara-max", Name: "きららMAX", Style: StyleStandard, MonthAhead: 2},
		{Slug: "kirara-forward", Name: "きららフォワード", Style: StyleCoverOnly, MonthAhead: 2,
			Expect: &Profile{Cover: 1, Top: 1}},
		{Slug: "kirara-miracle", Name: "きららミラク", Style: StyleStandard, MonthAhead: 2},
	}
}

func NewRegistry(mags []Magazine, fallback *Profile) (*Registry, error) {
	r := &Registry{
		mags:     make(map[string]Magazine, len(mags)),
		fallback: DefaultProfile(),
	}
	if fallback != nil {
		r.fallback = *fallback
	}

	for _, m := range mags {
		if m.Slug == "" {
			return nil, fmt.Errorf("magazine %q has no slug", m.Name)
		}
		if _, dup := r.mags[m.Slug]; dup {
			return nil, fmt.Errorf("magazine %q registered twice", m.Slug)
		}
		if m.Style == "" {
			m.Style = StyleStandard
		}
		if m.Style != StyleStandard && m.Style != StyleCoverOnly {
			return nil, fmt.Errorf("magazine %q: unknown style %q", m.Slug, m.Style)
		}
		r.mags[m.Slug] = m
		r.order = append(r.order, m.Slug)
	}

	return r, nil
}

// MustDefault is the built-in registry; used by tests and as the config
// fallback when no magazines are configured.
func MustDefault() *Registry {
	r, err := NewRegistry(Defaults(), nil)
	if err != nil {
		panic(err)
	}
	return r
}

func (r *Registry) Lookup(slug string) (Magazine, bool) {
	m, ok := r.mags[slug]
	return m, ok
}

// Slugs returns magazines in registration order.
func (r *Registry) Slugs() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Profile returns the expectation for slug, or the default entry.
func (r *Registry) Profile(slug string) Profile {
	if m, ok := r.mags[slug]; ok && m.Expect != nil {
		return *m.Expect
	}
	return r.fallback
}

// Style returns StyleStandard for unknown magazines.
func (r *Registry) Style(slug string) ColorStyle {
	if m, ok := r.mags[slug]; ok {
		return m.Style
	}
	return StyleStandard
}

// MonthAhead is how far past today the harvester looks for announced issues.
func (r *Registry) MonthAhead(slug string) int {
	if m, ok := r.mags[slug]; ok && m.MonthAhead > 0 {
		return m.MonthAhead
	}
	return 2
}

// Unknown returns the slugs that are not registered, sorted.
func (r *Registry) Unknown(slugs []string) []string {
	var out []string
	for _, s := range slugs {
		if _, ok := r.mags[s]; !ok {
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}
