package proposal

import (
	"strings"

	"github.com/jmatoso/propmap/internal/feature"

	"github.com/rs/zerolog/log"
)

// appendKeys are the only properties merged by concatenation on conflict.
// Every other key keeps its first value. This asymmetry is intentional:
// descriptions accumulate across placemarks, identity-like fields must not.
var appendKeys = map[string]bool{
	"descricao": true,
	"sumario":   true,
}

// imageKey holds raw image URLs and is folded into AllImages instead of
// Combined.
const imageKey = "gx_media_links"

// merge folds one feature's properties into the group.
func (g *Group) merge(f *feature.Feature) {
	for _, key := range f.Properties.Keys() {
		value, _ := f.Properties.Get(key)

		if key == imageKey {
			g.addImages(value)
			continue
		}

		if strings.TrimSpace(value) == "" {
			continue
		}

		existing, ok := g.Combined.Get(key)
		if !ok || strings.TrimSpace(existing) == "" {
			g.Combined.Set(key, value)
			continue
		}
		if existing == value {
			continue
		}

		if appendKeys[key] {
			if !strings.Contains(existing, value) {
				g.Combined.Set(key, existing+"\n\n"+value)
			}
			continue
		}

		log.Debug().
			Str("slug", g.Slug).
			Str("key", key).
			Str("kept", existing).
			Str("discarded", value).
			Msg("Conflicting property value discarded")
	}
}

// SplitLinks splits a gx_media_links value into URL tokens.
func SplitLinks(raw string) []string {
	return strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
}

// addImages splits an image property into URL tokens and appends them to
// AllImages, keeping the list deduplicated in first-occurrence order.
func (g *Group) addImages(raw string) {
	tokens := SplitLinks(raw)

	seen := make(map[string]bool, len(g.AllImages)+len(tokens))
	deduped := make([]string, 0, len(g.AllImages)+len(tokens))

	for _, url := range append(append([]string{}, g.AllImages...), tokens...) {
		url = strings.TrimSpace(url)
		if url == "" || seen[url] {
			continue
		}
		seen[url] = true
		deduped = append(deduped, url)
	}

	g.AllImages = deduped
}
