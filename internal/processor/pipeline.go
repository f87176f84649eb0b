// Package processor runs the per-region pipeline: fetch KML, extract and
// validate features, group proposals, resolve images, write artifacts.
package processor

import (
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/jmatoso/propmap/internal/config"
	"github.com/jmatoso/propmap/internal/feature"
	"github.com/jmatoso/propmap/internal/geo"
	"github.com/jmatoso/propmap/internal/geojson"
	"github.com/jmatoso/propmap/internal/images"
	"github.com/jmatoso/propmap/internal/kml"
	"github.com/jmatoso/propmap/internal/pages"
	"github.com/jmatoso/propmap/internal/proposal"

	"github.com/rs/zerolog/log"
)

// Options selects which artifacts a run produces.
type Options struct {
	Force       bool
	SkipImages  bool
	GeoJSONOnly bool
	PagesOnly   bool
}

// Stats summarizes one region run so operators can sanity-check
// completeness.
type Stats struct {
	Geographic      int
	InvalidGeometry int
	NonGeographic   int
	Groups          int
	Images          int
	ImageFetches    int
	Pages           int
}

// ProcessRegion runs the whole pipeline for one region. Per-item failures
// are logged and skipped inside each stage; only a missing map source or an
// unparsable KML document aborts the run.
func ProcessRegion(client *http.Client, cfg *config.Config, region config.Region, opts Options) (*Stats, error) {
	data, err := kml.Load(client, region.MapID, region.KMLCache)
	if err != nil {
		return nil, fmt.Errorf("load KML for %s: %w", region.Name, err)
	}

	layers, err := kml.Parse(data)
	if err != nil {
		return nil, err
	}

	for _, f := range layers.Geographic {
		f.Tidy()
	}
	for _, f := range layers.NonGeographic {
		f.Tidy()
	}

	stats := &Stats{NonGeographic: len(layers.NonGeographic)}

	valid := make([]*feature.Feature, 0, len(layers.Geographic))
	for _, f := range layers.Geographic {
		if err := geo.Validate(f.Geometry); err != nil {
			name, _ := f.Properties.Get("name")
			log.Warn().
				Err(err).
				Str("region", region.Name).
				Str("name", name).
				Msg("Invalid geometry, feature dropped")
			stats.InvalidGeometry++
			continue
		}
		valid = append(valid, f)
	}
	stats.Geographic = len(valid)

	groups := proposal.GroupFeatures(valid, layers.NonGeographic)
	stats.Groups = groups.Len()

	writeGeo := true
	writePages := true
	if opts.GeoJSONOnly && !opts.PagesOnly {
		writePages = false
	} else if opts.PagesOnly && !opts.GeoJSONOnly {
		writeGeo = false
	}

	if !opts.SkipImages {
		resolver := images.NewResolver(
			client,
			filepath.Join(cfg.SiteDir, "assets", "images", "propostas", region.Name),
			filepath.ToSlash(filepath.Join("assets", "images", "propostas", region.Name)),
			cfg.ImageMaxWidth,
		)
		resolver.Force = opts.Force

		for _, g := range groups.All() {
			if len(g.AllImages) == 0 {
				continue
			}
			resolver.ResolveGroup(g)
			stats.Images += len(g.Resolved)
		}
		stats.ImageFetches = resolver.Fetches()
	}

	if writeGeo {
		dest := filepath.Join(cfg.SiteDir, "assets", "geojson", region.Name+".geojson")
		if err := geojson.Write(dest, valid); err != nil {
			return stats, err
		}
	}

	if writePages {
		pagesDir := filepath.Join(cfg.SiteDir, "_propostas", region.Name)
		n, err := pages.WritePages(pagesDir, region.Name, groups)
		stats.Pages = n
		if err != nil {
			return stats, err
		}

		dataPath := filepath.Join(cfg.SiteDir, "_data", "propostas", region.Name+".yml")
		if err := pages.WriteIndexData(dataPath, region.Name, groups); err != nil {
			return stats, err
		}
	}

	log.Info().
		Str("region", region.Name).
		Int("geographic", stats.Geographic).
		Int("invalid_geometry", stats.InvalidGeometry).
		Int("non_geographic", stats.NonGeographic).
		Int("groups", stats.Groups).
		Int("images", stats.Images).
		Int("image_fetches", stats.ImageFetches).
		Int("pages", stats.Pages).
		Msg("Region processed")

	return stats, nil
}
