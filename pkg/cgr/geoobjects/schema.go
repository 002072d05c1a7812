package geoobjects

import (
	"github.com/diwise/cgr-adapter/pkg/cgr/attributes"
	"github.com/diwise/cgr-adapter/pkg/cgr/geometry"
	"github.com/diwise/cgr-adapter/pkg/cgr/metadata"
)

// InstanceFactory creates empty instances for a type code. The JSON decoders
// call back into it so that id generation and defaults stay with the caller.
type InstanceFactory interface {
	NewGeoObjectInstance(typeCode string, generateDefaults bool) (*GeoObject, error)
	NewGeoObjectOverTimeInstance(typeCode string, generateDefaults bool) (*GeoObjectOverTime, error)
}

// schema is the part of a GeoObjectType that an instance keeps. It is taken
// once at construction so later schema edits do not reach existing instances.
type schema struct {
	typeCode     string
	geometryType geometry.Type
	names        []string
	types        map[string]metadata.AttributeType
}

func snapshot(got *metadata.GeoObjectType) schema {
	s := schema{
		typeCode:     got.Code(),
		geometryType: got.GeometryType(),
		names:        []string{},
		types:        map[string]metadata.AttributeType{},
	}

	for _, at := range got.Attributes() {
		s.names = append(s.names, at.Name())
		s.types[at.Name()] = at
	}

	return s
}

func (s schema) validate(name string, value any) error {
	if at, ok := s.types[name]; ok {
		return at.Validate(value)
	}
	return nil
}

// BuildAttributeMap creates one empty container for every attribute of the
// type except the geometry, which instances keep apart
func BuildAttributeMap(got *metadata.GeoObjectType) map[string]attributes.Attribute {
	return snapshot(got).attributeMap(func(metadata.AttributeType) bool { return true })
}

func (s schema) attributeMap(include func(metadata.AttributeType) bool) map[string]attributes.Attribute {
	result := map[string]attributes.Attribute{}

	for _, name := range s.names {
		at := s.types[name]
		if at.Kind() == metadata.KindGeometry || !include(at) {
			continue
		}
		result[name] = attributes.New(at)
	}

	return result
}

func isTemporal(at metadata.AttributeType) bool {
	return at.IsChangeOverTime() || at.Kind() == metadata.KindGeometry
}
