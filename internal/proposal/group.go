// Package proposal groups extracted features by slug and merges their
// properties into one proposal per slug.
package proposal

import (
	"github.com/jmatoso/propmap/internal/feature"

	"github.com/rs/zerolog/log"
)

// Group is one proposal, assembled from every feature sharing a slug.
type Group struct {
	Slug string

	// HasMapLocation is true once any geographic feature joined the
	// group. It never resets.
	HasMapLocation bool

	Geographic    []*feature.Feature
	NonGeographic []*feature.Feature

	// Combined is the merged property view over all member features,
	// folded in encounter order.
	Combined *feature.Properties

	// AllImages collects raw image URLs from every member, deduplicated
	// in first-occurrence order.
	AllImages []string

	// Resolved holds local image paths after image resolution.
	Resolved []string
}

// Groups is a slug-keyed set of proposals that preserves first-encounter
// order, so artifact output is reproducible between runs.
type Groups struct {
	order  []string
	bySlug map[string]*Group
}

// Get returns the group for a slug.
func (g *Groups) Get(slug string) (*Group, bool) {
	grp, ok := g.bySlug[slug]
	return grp, ok
}

// Slugs returns the slugs in first-encounter order.
func (g *Groups) Slugs() []string {
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

// All returns the groups in first-encounter order.
func (g *Groups) All() []*Group {
	out := make([]*Group, 0, len(g.order))
	for _, slug := range g.order {
		out = append(out, g.bySlug[slug])
	}
	return out
}

// Len returns the number of groups.
func (g *Groups) Len() int {
	return len(g.order)
}

// GroupFeatures folds the geographic features first, then the
// non-geographic ones, into slug-keyed groups. That fixed order is part of
// the merge contract: reordering input changes which conflicting value
// wins. Features without a slug never create or join a group.
func GroupFeatures(geographic, nonGeographic []*feature.Feature) *Groups {
	groups := &Groups{bySlug: make(map[string]*Group)}

	for _, f := range geographic {
		groups.add(f)
	}
	for _, f := range nonGeographic {
		groups.add(f)
	}

	return groups
}

func (g *Groups) add(f *feature.Feature) {
	slug := f.Slug()
	if slug == "" {
		name, _ := f.Properties.Get("name")
		log.Debug().Str("name", name).Msg("Feature without slug, not grouped")
		return
	}

	grp, ok := g.bySlug[slug]
	if !ok {
		grp = &Group{Slug: slug, Combined: feature.NewProperties()}
		g.bySlug[slug] = grp
		g.order = append(g.order, slug)
	}

	if f.Geographic {
		grp.HasMapLocation = true
		grp.Geographic = append(grp.Geographic, f)
	} else {
		grp.NonGeographic = append(grp.NonGeographic, f)
	}

	grp.merge(f)
}
