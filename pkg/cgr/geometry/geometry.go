package geometry

import (
	"encoding/json"
	"fmt"
	"strings"

	cgrerrors "github.com/diwise/cgr-adapter/pkg/cgr/errors"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
	"github.com/paulmach/orb/geojson"
)

// Type is the kind of geometry that instances of a GeoObjectType carry
type Type string

const (
	Point        Type = "POINT"
	Line         Type = "LINE"
	Polygon      Type = "POLYGON"
	MultiPoint   Type = "MULTIPOINT"
	MultiLine    Type = "MULTILINE"
	MultiPolygon Type = "MULTIPOLYGON"
	Mixed        Type = "MIXED"
)

func ParseType(s string) (Type, error) {
	t := Type(strings.ToUpper(s))
	switch t {
	case Point, Line, Polygon, MultiPoint, MultiLine, MultiPolygon, Mixed:
		return t, nil
	}
	return "", cgrerrors.NewMalformedWireFormatError("unknown geometry type %q", s)
}

// Accepts reports whether g is of a kind allowed for geometry type t
func (t Type) Accepts(g orb.Geometry) bool {
	switch g.(type) {
	case orb.Point:
		return t == Point || t == Mixed
	case orb.LineString:
		return t == Line || t == Mixed
	case orb.Polygon:
		return t == Polygon || t == Mixed
	case orb.MultiPoint:
		return t == MultiPoint || t == Mixed
	case orb.MultiLineString:
		return t == MultiLine || t == Mixed
	case orb.MultiPolygon:
		return t == MultiPolygon || t == Mixed
	default:
		return t == Mixed
	}
}

// Validate checks that g is non nil and matches t
func (t Type) Validate(g orb.Geometry) error {
	if g == nil {
		return nil
	}

	if !t.Accepts(g) {
		return cgrerrors.NewValidationError("geometry of type %s is not allowed where %s is expected", g.GeoJSONType(), t)
	}

	return nil
}

func FromWKT(s string) (orb.Geometry, error) {
	g, err := wkt.Unmarshal(s)
	if err != nil {
		return nil, cgrerrors.NewMalformedWireFormatError("failed to parse wkt geometry: %s", err.Error())
	}
	return g, nil
}

func ToWKT(g orb.Geometry) string {
	return wkt.MarshalString(g)
}

// MarshalGeoJSON returns the GeoJSON geometry object for g, or null
func MarshalGeoJSON(g orb.Geometry) (json.RawMessage, error) {
	if g == nil {
		return json.RawMessage("null"), nil
	}

	b, err := geojson.NewGeometry(g).MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("failed to marshal geometry: %w", err)
	}

	return b, nil
}

// UnmarshalGeoJSON parses a GeoJSON geometry object. A JSON null yields a nil geometry.
func UnmarshalGeoJSON(data []byte) (orb.Geometry, error) {
	if isNull(data) {
		return nil, nil
	}

	g, err := geojson.UnmarshalGeometry(data)
	if err != nil {
		return nil, cgrerrors.NewMalformedWireFormatError("failed to parse geojson geometry: %s", err.Error())
	}

	return g.Geometry(), nil
}

func isNull(data []byte) bool {
	s := strings.TrimSpace(string(data))
	return s == "" || s == "null"
}
