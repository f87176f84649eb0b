// Package geojson writes the accepted geographic features as a minified
// GeoJSON FeatureCollection.
package geojson

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmatoso/propmap/internal/feature"

	orbgeojson "github.com/paulmach/orb/geojson"
	"github.com/rs/zerolog/log"
	"github.com/tdewolff/minify/v2"
	minjson "github.com/tdewolff/minify/v2/json"
)

// Collection builds a FeatureCollection from validated geographic features.
func Collection(features []*feature.Feature) *orbgeojson.FeatureCollection {
	fc := orbgeojson.NewFeatureCollection()

	for _, f := range features {
		gf := orbgeojson.NewFeature(f.Geometry)
		for _, k := range f.Properties.Keys() {
			v, _ := f.Properties.Get(k)
			gf.Properties[k] = v
		}
		fc.Append(gf)
	}

	return fc
}

// Write marshals the features and writes them minified to path.
func Write(path string, features []*feature.Feature) error {
	data, err := json.Marshal(Collection(features))
	if err != nil {
		return fmt.Errorf("marshal feature collection: %w", err)
	}

	m := minify.New()
	m.AddFunc("application/json", minjson.Minify)
	data, err = m.Bytes("application/json", data)
	if err != nil {
		return fmt.Errorf("minify feature collection: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return err
	}

	log.Info().Str("path", path).Int("features", len(features)).Msg("GeoJSON written")
	return nil
}
