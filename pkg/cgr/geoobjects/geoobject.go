package geoobjects

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/diwise/cgr-adapter/pkg/cgr/attributes"
	cgrerrors "github.com/diwise/cgr-adapter/pkg/cgr/errors"
	"github.com/diwise/cgr-adapter/pkg/cgr/geometry"
	"github.com/diwise/cgr-adapter/pkg/cgr/localization"
	"github.com/diwise/cgr-adapter/pkg/cgr/metadata"
	"github.com/diwise/cgr-adapter/pkg/cgr/terms"
	"github.com/paulmach/orb"
)

// GeoObject is a snapshot instance of a GeoObjectType with one value per attribute
type GeoObject struct {
	schema schema

	mu         sync.RWMutex
	geometry   orb.Geometry
	attributes map[string]attributes.Attribute
}

// New creates an empty instance of got with its type attribute set
func New(got *metadata.GeoObjectType) *GeoObject {
	return newGeoObject(snapshot(got))
}

func newGeoObject(s schema) *GeoObject {
	g := &GeoObject{
		schema:     s,
		attributes: s.attributeMap(func(metadata.AttributeType) bool { return true }),
	}

	if typeAttr, ok := g.attributes[metadata.Type]; ok {
		typeAttr.SetValue(s.typeCode)
	}

	return g
}

func (g *GeoObject) TypeCode() string {
	return g.schema.typeCode
}

func (g *GeoObject) GeometryType() geometry.Type {
	return g.schema.geometryType
}

func (g *GeoObject) Attribute(name string) (attributes.Attribute, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	a, ok := g.attributes[name]
	return a, ok
}

// AttributeNames returns the names of the attribute containers in schema order
func (g *GeoObject) AttributeNames() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return slices.DeleteFunc(slices.Clone(g.schema.names), func(name string) bool {
		_, ok := g.attributes[name]
		return !ok
	})
}

// SetValue validates value against the attribute type and stores it. The
// geometry attribute is routed to SetGeometry.
func (g *GeoObject) SetValue(name string, value any) error {
	if name == metadata.Geometry {
		return g.setGeometry(value)
	}

	if err := g.schema.validate(name, value); err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	a, ok := g.attributes[name]
	if !ok {
		return cgrerrors.NewAttributeNotFoundError(name)
	}

	return a.SetValue(value)
}

func (g *GeoObject) Value(name string) (any, error) {
	if name == metadata.Geometry {
		return g.Geometry(), nil
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	a, ok := g.attributes[name]
	if !ok {
		return nil, cgrerrors.NewAttributeNotFoundError(name)
	}

	return a.Value(), nil
}

func (g *GeoObject) Geometry() orb.Geometry {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return g.geometry
}

func (g *GeoObject) SetGeometry(geom orb.Geometry) error {
	return g.setGeometry(geom)
}

func (g *GeoObject) setGeometry(value any) error {
	if err := g.schema.validate(metadata.Geometry, value); err != nil {
		return err
	}

	var geom orb.Geometry
	if value != nil {
		var ok bool
		if geom, ok = value.(orb.Geometry); !ok {
			return cgrerrors.NewTypeMismatchError(metadata.Geometry, string(metadata.KindGeometry), value)
		}
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	g.geometry = geom
	return nil
}

func (g *GeoObject) SetWKTGeometry(wkt string) error {
	geom, err := geometry.FromWKT(wkt)
	if err != nil {
		return err
	}
	return g.SetGeometry(geom)
}

func (g *GeoObject) Code() string {
	return stringValue(g, metadata.Code)
}

func (g *GeoObject) SetCode(code string) error {
	return g.SetValue(metadata.Code, code)
}

func (g *GeoObject) UID() string {
	return stringValue(g, metadata.UID)
}

func (g *GeoObject) SetUID(uid string) error {
	return g.SetValue(metadata.UID, uid)
}

func (g *GeoObject) DisplayLabel() localization.LocalizedValue {
	v, _ := g.Value(metadata.DisplayLabel)
	lv, _ := v.(localization.LocalizedValue)
	return lv
}

func (g *GeoObject) SetDisplayLabel(label localization.LocalizedValue) error {
	return g.SetValue(metadata.DisplayLabel, label)
}

// Status returns the first status term of the object
func (g *GeoObject) Status() (*terms.Term, bool) {
	a, ok := g.Attribute(metadata.Status)
	if !ok {
		return nil, false
	}
	return firstTerm(a)
}

func (g *GeoObject) SetStatus(status *terms.Term) error {
	return g.SetValue(metadata.Status, status)
}

// Equal compares identity, that is the code and the type code
func (g *GeoObject) Equal(other *GeoObject) bool {
	if other == nil {
		return false
	}
	return g.TypeCode() == other.TypeCode() && g.Code() == other.Code()
}

func (g *GeoObject) String() string {
	return fmt.Sprintf("GeoObject [%s:%s]", g.schema.typeCode, g.Code())
}

func (g *GeoObject) MarshalJSON() ([]byte, error) {
	return g.ToJSON(metadata.DefaultSerializer{})
}

// ToJSON writes the object as a GeoJSON Feature. Unset attributes are left out.
func (g *GeoObject) ToJSON(serializer metadata.Serializer) ([]byte, error) {
	serializer = metadata.SerializerOrDefault(serializer)

	g.mu.RLock()
	defer g.mu.RUnlock()

	f := geometry.NewFeature()

	if g.geometry != nil && serializer.Include(metadata.Geometry) {
		b, err := geometry.MarshalGeoJSON(g.geometry)
		if err != nil {
			return nil, err
		}
		f.Geometry = b
	}

	for name, a := range g.attributes {
		if !a.IsSet() || !serializer.Include(name) {
			continue
		}

		b, err := a.MarshalJSON()
		if err != nil {
			return nil, fmt.Errorf("failed to marshal attribute %s: %w", name, err)
		}
		f.Properties[name] = b
	}

	return json.Marshal(f)
}

// NewFromJSON decodes a Feature. The instance is created through the
// factory, with defaults generated only when the document carries no uid.
func NewFromJSON(body []byte, factory InstanceFactory, cache metadata.Cache) (*GeoObject, error) {
	f := geometry.Feature{}
	if err := json.Unmarshal(body, &f); err != nil {
		return nil, cgrerrors.NewMalformedWireFormatError("failed to unmarshal geo object: %s", err.Error())
	}

	typeCode, err := typeCodeOf(f.Properties)
	if err != nil {
		return nil, err
	}

	_, hasUID := f.Properties[metadata.UID]

	g, err := factory.NewGeoObjectInstance(typeCode, !hasUID)
	if err != nil {
		return nil, err
	}

	if f.HasGeometry() {
		geom, err := geometry.UnmarshalGeoJSON(f.Geometry)
		if err != nil {
			return nil, err
		}
		if err := g.SetGeometry(geom); err != nil {
			return nil, err
		}
	}

	for _, name := range slices.Sorted(maps.Keys(g.attributes)) {
		raw, ok := f.Properties[name]
		if !ok {
			continue
		}

		if err := g.attributes[name].UnmarshalAttribute(raw, cache); err != nil {
			return nil, fmt.Errorf("failed to unmarshal attribute %s of %s: %w", name, typeCode, err)
		}
	}

	return g, nil
}

func typeCodeOf(properties map[string]json.RawMessage) (string, error) {
	raw, ok := properties[metadata.Type]
	if !ok {
		return "", cgrerrors.NewMalformedWireFormatError("geo object without a %s property", metadata.Type)
	}

	var typeCode string
	if err := json.Unmarshal(raw, &typeCode); err != nil || typeCode == "" {
		return "", cgrerrors.NewMalformedWireFormatError("geo object with an invalid %s property", metadata.Type)
	}

	return typeCode, nil
}

type valueReader interface {
	Value(name string) (any, error)
}

func stringValue(r valueReader, name string) string {
	v, _ := r.Value(name)
	s, _ := v.(string)
	return s
}

func firstTerm(a attributes.Attribute) (*terms.Term, bool) {
	switch t := a.(type) {
	case *attributes.TermAttribute:
		all := t.Terms()
		if len(all) == 0 {
			return nil, false
		}
		return all[0], true
	case *attributes.ClassificationAttribute:
		return t.Term()
	}
	return nil, false
}
