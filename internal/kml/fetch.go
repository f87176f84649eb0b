// Package kml fetches Google My Maps KML exports and parses them into
// proposal features.
package kml

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"

	"github.com/jmatoso/propmap/internal/fetch"

	"github.com/rs/zerolog/log"
)

const exportURL = "https://www.google.com/maps/d/kml?mid=%s&forcekml=1"

// ErrNoMapID is returned when neither a map identifier nor a cache file is
// available for a region.
var ErrNoMapID = errors.New("kml: missing map identifier")

// Fetch downloads the KML export for a My Maps identifier.
func Fetch(client *http.Client, mapID string) ([]byte, error) {
	if mapID == "" {
		return nil, ErrNoMapID
	}

	src := fmt.Sprintf(exportURL, url.QueryEscape(mapID))
	log.Info().Str("map_id", mapID).Msg("Fetching KML export")

	data, err := fetch.Get(client, src)
	if err != nil {
		return nil, fmt.Errorf("fetch KML for %s: %w", mapID, err)
	}
	return data, nil
}

// Load returns KML text from a local cache file when configured, otherwise
// it fetches the export.
func Load(client *http.Client, mapID, cachePath string) ([]byte, error) {
	if cachePath != "" {
		log.Debug().Str("path", cachePath).Msg("Reading KML from local cache")
		return os.ReadFile(cachePath)
	}
	return Fetch(client, mapID)
}
