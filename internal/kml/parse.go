package kml

import (
	"encoding/xml"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/jmatoso/propmap/internal/feature"
	"github.com/jmatoso/propmap/internal/geo"

	"github.com/paulmach/orb"
	"github.com/rs/zerolog/log"
)

// Internal structures for XML parsing
type kmlRoot struct {
	XMLName  xml.Name    `xml:"kml"`
	Document kmlDocument `xml:"Document"`
}

type kmlDocument struct {
	Name       string         `xml:"name"`
	Folders    []kmlFolder    `xml:"Folder"`
	Placemarks []kmlPlacemark `xml:"Placemark"`
}

type kmlFolder struct {
	Name       string         `xml:"name"`
	Folders    []kmlFolder    `xml:"Folder"`
	Placemarks []kmlPlacemark `xml:"Placemark"`
}

type kmlPlacemark struct {
	Name         string       `xml:"name"`
	Description  string       `xml:"description"`
	ExtendedData []kmlData    `xml:"ExtendedData>Data"`
	Point        *kmlGeometry `xml:"Point"`
	LineString   *kmlGeometry `xml:"LineString"`
	Polygon      *kmlPolygon  `xml:"Polygon"`
}

type kmlGeometry struct {
	Coordinates string `xml:"coordinates"`
}

type kmlPolygon struct {
	OuterRing kmlGeometry `xml:"outerBoundaryIs>LinearRing"`
}

type kmlData struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value"`
}

// Layers holds the parsed features split by folder kind, in KML encounter
// order.
type Layers struct {
	Geographic    []*feature.Feature
	NonGeographic []*feature.Feature
}

// Description CDATA carries "key: value" pairs separated by <br> markers.
var (
	brPattern   = regexp.MustCompile(`(?i)<br\s*/?>`)
	pairPattern = regexp.MustCompile(`^\s*([^:]+):\s*(.*?)\s*$`)
)

// nonGeographicFolder reports whether a folder holds proposals without a
// map location.
func nonGeographicFolder(name string) bool {
	return strings.Contains(name, "Propostas s/ Local") ||
		strings.Contains(strings.ToLower(name), "sem local")
}

// Parse walks every folder of a KML document and extracts one feature per
// placemark. A placemark that fails extraction is logged and skipped; an
// unparsable document is an error.
func Parse(data []byte) (*Layers, error) {
	var root kmlRoot
	if err := xml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parse KML document: %w", err)
	}

	layers := &Layers{}

	folders := collectFolders(root.Document.Folders)
	if len(folders) == 0 {
		// No folders at all: treat every placemark as a single
		// geographic "Default" layer.
		parseFolder(layers, "Default", root.Document.Placemarks, true)
		return layers, nil
	}

	for _, f := range folders {
		parseFolder(layers, f.Name, f.Placemarks, !nonGeographicFolder(f.Name))
	}

	return layers, nil
}

func collectFolders(folders []kmlFolder) []kmlFolder {
	var out []kmlFolder
	for _, f := range folders {
		out = append(out, f)
		out = append(out, collectFolders(f.Folders)...)
	}
	return out
}

func parseFolder(layers *Layers, name string, placemarks []kmlPlacemark, geographic bool) {
	log.Debug().
		Str("folder", name).
		Bool("geographic", geographic).
		Int("placemarks", len(placemarks)).
		Msg("Parsing folder")

	for _, pm := range placemarks {
		f, err := extractFeature(pm, geographic)
		if err != nil {
			log.Warn().
				Err(err).
				Str("folder", name).
				Str("placemark", strings.TrimSpace(pm.Name)).
				Msg("Skipping placemark")
			continue
		}

		if geographic {
			layers.Geographic = append(layers.Geographic, f)
		} else {
			layers.NonGeographic = append(layers.NonGeographic, f)
		}
	}
}

// extractFeature builds one feature from a placemark. Property precedence:
// placemark name, then description pairs, then ExtendedData, later wins.
func extractFeature(pm kmlPlacemark, geographic bool) (*feature.Feature, error) {
	f := feature.New(geographic)

	if name := strings.TrimSpace(pm.Name); name != "" {
		f.Properties.Set("name", name)
	}

	for _, segment := range brPattern.Split(pm.Description, -1) {
		m := pairPattern.FindStringSubmatch(segment)
		if m == nil {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(m[1]))
		if key == "" {
			continue
		}
		f.Properties.Set(key, m[2])
	}

	for _, d := range pm.ExtendedData {
		key := strings.ToLower(strings.TrimSpace(d.Name))
		if key == "" {
			continue
		}
		f.Properties.Set(key, strings.TrimSpace(d.Value))
	}

	if !geographic {
		if raw, ok := f.Properties.Get("coordenadas"); ok {
			coords, err := parseCoordList(raw)
			if err != nil {
				return nil, err
			}
			f.Coordinates = coords
			f.Properties.Delete("coordenadas")
		}
		return f, nil
	}

	f.Geometry = extractGeometry(pm)
	return f, nil
}

// parseCoordList parses the "coordenadas" property of an off-map proposal,
// a comma-separated list of at least two floats.
func parseCoordList(raw string) ([]float64, error) {
	parts := strings.Split(raw, ",")
	if len(parts) < 2 {
		return nil, fmt.Errorf("coordenadas %q: need at least 2 values", raw)
	}

	coords := make([]float64, 0, len(parts))
	for _, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, fmt.Errorf("coordenadas %q: %w", raw, err)
		}
		coords = append(coords, v)
	}
	return coords, nil
}

func extractGeometry(pm kmlPlacemark) orb.Geometry {
	switch {
	case pm.Point != nil:
		return geo.ParsePoint(pm.Point.Coordinates)
	case pm.LineString != nil:
		return geo.ParseLineString(pm.LineString.Coordinates)
	case pm.Polygon != nil:
		return geo.ParsePolygon(pm.Polygon.OuterRing.Coordinates)
	default:
		return nil
	}
}
