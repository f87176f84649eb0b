// Package geo turns KML coordinate text into orb geometries and validates
// them against WGS84 bounds.
package geo

import (
	"strconv"
	"strings"

	"github.com/paulmach/orb"
)

// ParseCoordinate parses a single "lon,lat[,alt]" token. Altitude is
// discarded. The second return value reports whether both components parsed.
func ParseCoordinate(token string) (orb.Point, bool) {
	parts := strings.Split(strings.TrimSpace(token), ",")
	if len(parts) < 2 {
		return orb.Point{}, false
	}

	lon, err1 := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	lat, err2 := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err1 != nil || err2 != nil {
		return orb.Point{}, false
	}

	return orb.Point{lon, lat}, true
}

// parseTokens splits coordinate text on whitespace and parses each token,
// dropping the ones that do not parse.
func parseTokens(text string) []orb.Point {
	var points []orb.Point
	for _, token := range strings.Fields(text) {
		if p, ok := ParseCoordinate(token); ok {
			points = append(points, p)
		}
	}
	return points
}

// ParsePoint extracts a Point geometry, or nil when the text is unusable.
func ParsePoint(text string) orb.Geometry {
	p, ok := ParseCoordinate(text)
	if !ok {
		return nil
	}
	return p
}

// ParseLineString extracts a LineString, or nil when fewer than two valid
// points remain.
func ParseLineString(text string) orb.Geometry {
	points := parseTokens(text)
	if len(points) < 2 {
		return nil
	}
	return orb.LineString(points)
}

// ParsePolygon extracts a Polygon from the outer boundary ring text, or nil
// when fewer than four valid points remain. The ring is not auto-closed; an
// open ring is rejected later by Validate.
func ParsePolygon(outerText string) orb.Geometry {
	points := parseTokens(outerText)
	if len(points) < 4 {
		return nil
	}
	return orb.Polygon{orb.Ring(points)}
}
