// Package feature defines the proposal feature model shared by the pipeline.
package feature

import (
	"strings"

	"github.com/paulmach/orb"
)

// Feature is one KML placemark after extraction.
type Feature struct {
	// Geometry is nil for placemarks without (or with unusable) geometry.
	Geometry   orb.Geometry
	Properties *Properties

	// Coordinates holds the parsed "coordenadas" pair of an off-map
	// proposal; only set for non-geographic features.
	Coordinates []float64

	// Geographic reports which kind of KML folder the placemark came from.
	Geographic bool
}

// New returns an empty feature.
func New(geographic bool) *Feature {
	return &Feature{
		Properties: NewProperties(),
		Geographic: geographic,
	}
}

// Slug returns the trimmed slug property, empty when absent.
func (f *Feature) Slug() string {
	v, _ := f.Properties.Get("slug")
	return strings.TrimSpace(v)
}

// Whitelisted property keys kept after tidying.
var keptKeys = []string{"slug", "name", "proposta", "sumario", "descricao", "eixo", "gx_media_links"}

// Tidy lower-cases every property key and drops keys outside the whitelist.
// It is idempotent and mutates the feature in place.
func (f *Feature) Tidy() {
	lowered := NewProperties()
	for _, k := range f.Properties.Keys() {
		v, _ := f.Properties.Get(k)
		lowered.Set(strings.TrimSpace(strings.ToLower(k)), v)
	}

	tidied := NewProperties()
	for _, k := range keptKeys {
		if v, ok := lowered.Get(k); ok {
			tidied.Set(k, v)
		}
	}
	f.Properties = tidied

	if f.Geographic {
		f.Coordinates = nil
	}
}
