package geometry

import (
	"encoding/json"
)

const (
	FeatureType           string = "Feature"
	FeatureCollectionType string = "FeatureCollection"
)

// Feature is the GeoJSON envelope used as the wire shape of a GeoObject.
// See https://tools.ietf.org/html/rfc7946#section-3.2
type Feature struct {
	Type       string                     `json:"type"`
	Geometry   json.RawMessage            `json:"geometry,omitempty"`
	Properties map[string]json.RawMessage `json:"properties"`
}

func NewFeature() *Feature {
	return &Feature{
		Type:       FeatureType,
		Properties: map[string]json.RawMessage{},
	}
}

// HasGeometry is false for features without a geometry member or with a null one
func (f *Feature) HasGeometry() bool {
	return !isNull(f.Geometry)
}

type FeatureCollection struct {
	Type     string     `json:"type"`
	Features []*Feature `json:"features"`
}

func NewFeatureCollection() *FeatureCollection {
	return &FeatureCollection{
		Type:     FeatureCollectionType,
		Features: []*Feature{},
	}
}
