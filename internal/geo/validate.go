package geo

import (
	"errors"
	"fmt"

	"github.com/paulmach/orb"
)

// Validation errors.
var (
	ErrNoGeometry  = errors.New("geo: missing geometry")
	ErrBadPoint    = errors.New("geo: coordinates out of range")
	ErrShortLine   = errors.New("geo: line needs at least 2 points")
	ErrShortRing   = errors.New("geo: ring needs at least 4 points")
	ErrOpenRing    = errors.New("geo: ring is not closed")
	ErrUnsupported = errors.New("geo: unsupported geometry type")
)

// Validate checks a geometry against WGS84 bounds and KML well-formedness
// rules. Multi geometries validate member-wise.
func Validate(g orb.Geometry) error {
	switch geom := g.(type) {
	case nil:
		return ErrNoGeometry
	case orb.Point:
		return validatePoint(geom)
	case orb.MultiPoint:
		for _, p := range geom {
			if err := validatePoint(p); err != nil {
				return err
			}
		}
		return nil
	case orb.LineString:
		return validateLine(geom)
	case orb.MultiLineString:
		for _, ls := range geom {
			if err := validateLine(ls); err != nil {
				return err
			}
		}
		return nil
	case orb.Polygon:
		return validatePolygon(geom)
	case orb.MultiPolygon:
		for _, poly := range geom {
			if err := validatePolygon(poly); err != nil {
				return err
			}
		}
		return nil
	case orb.Collection:
		for _, member := range geom {
			if err := Validate(member); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnsupported, g.GeoJSONType())
	}
}

func validatePoint(p orb.Point) error {
	if p.Lon() < -180 || p.Lon() > 180 || p.Lat() < -90 || p.Lat() > 90 {
		return fmt.Errorf("%w: %g,%g", ErrBadPoint, p.Lon(), p.Lat())
	}
	return nil
}

func validateLine(ls orb.LineString) error {
	if len(ls) < 2 {
		return ErrShortLine
	}
	for _, p := range ls {
		if err := validatePoint(p); err != nil {
			return err
		}
	}
	return nil
}

func validatePolygon(poly orb.Polygon) error {
	for _, ring := range poly {
		if len(ring) < 4 {
			return ErrShortRing
		}
		for _, p := range ring {
			if err := validatePoint(p); err != nil {
				return err
			}
		}
		if !ring.Closed() {
			return ErrOpenRing
		}
	}
	return nil
}
