package geoobjects

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/diwise/cgr-adapter/pkg/cgr/attributes"
	cgrerrors "github.com/diwise/cgr-adapter/pkg/cgr/errors"
	"github.com/diwise/cgr-adapter/pkg/cgr/geometry"
	"github.com/diwise/cgr-adapter/pkg/cgr/localization"
	"github.com/diwise/cgr-adapter/pkg/cgr/metadata"
	"github.com/diwise/cgr-adapter/pkg/cgr/temporal"
	"github.com/diwise/cgr-adapter/pkg/cgr/terms"
	"github.com/paulmach/orb"
)

// GeoObjectOverTime is an instance whose change over time attributes, and
// its geometry, keep a history of values over date intervals. Every other
// attribute holds a single value.
type GeoObjectOverTime struct {
	schema schema

	mu            sync.RWMutex
	attributes    map[string]attributes.Attribute
	votAttributes map[string]*temporal.Collection
}

func NewOverTime(got *metadata.GeoObjectType) *GeoObjectOverTime {
	s := snapshot(got)

	g := &GeoObjectOverTime{
		schema:        s,
		attributes:    s.attributeMap(func(at metadata.AttributeType) bool { return !isTemporal(at) }),
		votAttributes: map[string]*temporal.Collection{},
	}

	for _, name := range s.names {
		if at := s.types[name]; isTemporal(at) {
			g.votAttributes[name] = temporal.New(at)
		}
	}

	if typeAttr, ok := g.attributes[metadata.Type]; ok {
		typeAttr.SetValue(s.typeCode)
	}

	return g
}

func (g *GeoObjectOverTime) TypeCode() string {
	return g.schema.typeCode
}

func (g *GeoObjectOverTime) GeometryType() geometry.Type {
	return g.schema.geometryType
}

// IsTemporal reports whether the named attribute keeps a history
func (g *GeoObjectOverTime) IsTemporal(name string) bool {
	_, ok := g.votAttributes[name]
	return ok
}

// ValuesOverTime returns the history of a temporal attribute
func (g *GeoObjectOverTime) ValuesOverTime(name string) (*temporal.Collection, bool) {
	c, ok := g.votAttributes[name]
	return c, ok
}

// SetValue stores value for a non temporal attribute. A temporal attribute
// gets the value applied to its latest interval.
func (g *GeoObjectOverTime) SetValue(name string, value any) error {
	if g.IsTemporal(name) {
		return g.SetValueOverTime(name, value, time.Time{}, time.Time{})
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

// SetValueOverTime stores value for the interval of a temporal attribute that
// starts at startDate. A zero endDate extends the interval to infinity and a
// zero startDate selects the latest interval, creating one starting today if needed.
// Non temporal attributes ignore the dates.
func (g *GeoObjectOverTime) SetValueOverTime(name string, value any, startDate, endDate time.Time) error {
	c, ok := g.votAttributes[name]
	if !ok {
		return g.SetValue(name, value)
	}

	return c.SetValue(value, startDate, endDate)
}

// Value returns the value of a non temporal attribute, or the latest value of a temporal one
func (g *GeoObjectOverTime) Value(name string) (any, error) {
	if g.IsTemporal(name) {
		return g.ValueOnDate(name, time.Time{})
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	a, ok := g.attributes[name]
	if !ok {
		return nil, cgrerrors.NewAttributeNotFoundError(name)
	}

	return a.Value(), nil
}

// ValueOnDate returns the value that applied on date, or nil when date
// precedes the recorded history. The zero date selects the latest value.
func (g *GeoObjectOverTime) ValueOnDate(name string, date time.Time) (any, error) {
	c, ok := g.votAttributes[name]
	if !ok {
		if _, found := g.attributes[name]; found {
			return g.Value(name)
		}
		return nil, cgrerrors.NewAttributeNotFoundError(name)
	}

	v, _ := c.ValueOnDate(date)
	return v, nil
}

// AttributeOnDate returns the container that holds the value on date
func (g *GeoObjectOverTime) AttributeOnDate(name string, date time.Time) (attributes.Attribute, bool) {
	if c, ok := g.votAttributes[name]; ok {
		return c.AttributeOnDate(date)
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	a, ok := g.attributes[name]
	return a, ok
}

// GetOrCreateAttribute returns the container of the interval of a temporal
// attribute that starts at startDate
func (g *GeoObjectOverTime) GetOrCreateAttribute(name string, startDate time.Time) (attributes.Attribute, error) {
	c, ok := g.votAttributes[name]
	if !ok {
		return nil, cgrerrors.NewAttributeNotFoundError(name)
	}
	return c.GetOrCreateAttribute(startDate), nil
}

func (g *GeoObjectOverTime) Geometry(date time.Time) orb.Geometry {
	v, _ := g.ValueOnDate(metadata.Geometry, date)
	geom, _ := v.(orb.Geometry)
	return geom
}

func (g *GeoObjectOverTime) SetGeometry(geom orb.Geometry, startDate, endDate time.Time) error {
	return g.SetValueOverTime(metadata.Geometry, geom, startDate, endDate)
}

func (g *GeoObjectOverTime) SetWKTGeometry(wkt string, startDate time.Time) error {
	geom, err := geometry.FromWKT(wkt)
	if err != nil {
		return err
	}
	return g.SetGeometry(geom, startDate, time.Time{})
}

func (g *GeoObjectOverTime) Code() string {
	return stringValue(g, metadata.Code)
}

func (g *GeoObjectOverTime) SetCode(code string) error {
	return g.SetValue(metadata.Code, code)
}

func (g *GeoObjectOverTime) UID() string {
	return stringValue(g, metadata.UID)
}

func (g *GeoObjectOverTime) SetUID(uid string) error {
	return g.SetValue(metadata.UID, uid)
}

func (g *GeoObjectOverTime) DisplayLabel(date time.Time) localization.LocalizedValue {
	v, _ := g.ValueOnDate(metadata.DisplayLabel, date)
	lv, _ := v.(localization.LocalizedValue)
	return lv
}

func (g *GeoObjectOverTime) SetDisplayLabel(label localization.LocalizedValue, startDate, endDate time.Time) error {
	return g.SetValueOverTime(metadata.DisplayLabel, label, startDate, endDate)
}

func (g *GeoObjectOverTime) Status(date time.Time) (*terms.Term, bool) {
	a, ok := g.AttributeOnDate(metadata.Status, date)
	if !ok {
		return nil, false
	}
	return firstTerm(a)
}

func (g *GeoObjectOverTime) SetStatus(status *terms.Term, startDate, endDate time.Time) error {
	return g.SetValueOverTime(metadata.Status, status, startDate, endDate)
}

// ToGeoObject returns a snapshot with the values that applied on date
func (g *GeoObjectOverTime) ToGeoObject(date time.Time) *GeoObject {
	snap := newGeoObject(g.schema)

	g.mu.RLock()
	defer g.mu.RUnlock()

	for name, a := range snap.attributes {
		var value any

		if c, ok := g.votAttributes[name]; ok {
			value, _ = c.ValueOnDate(date)
		} else if source, ok := g.attributes[name]; ok {
			value = source.Value()
		}

		if value != nil {
			a.SetValue(value)
		}
	}

	snap.geometry = g.Geometry(date)

	return snap
}

func (g *GeoObjectOverTime) String() string {
	return fmt.Sprintf("GeoObjectOverTime [%s:%s]", g.schema.typeCode, g.Code())
}

type geoObjectOverTimeJSON struct {
	Attributes map[string]json.RawMessage `json:"attributes"`
}

func (g *GeoObjectOverTime) MarshalJSON() ([]byte, error) {
	return g.ToJSON(metadata.DefaultSerializer{})
}

// ToJSON writes every temporal attribute as its history and every set non
// temporal attribute inline
func (g *GeoObjectOverTime) ToJSON(serializer metadata.Serializer) ([]byte, error) {
	serializer = metadata.SerializerOrDefault(serializer)

	j := geoObjectOverTimeJSON{
		Attributes: map[string]json.RawMessage{},
	}

	for name, c := range g.votAttributes {
		if !serializer.Include(name) {
			continue
		}

		b, err := c.MarshalJSON()
		if err != nil {
			return nil, fmt.Errorf("failed to marshal attribute %s: %w", name, err)
		}
		j.Attributes[name] = b
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	for name, a := range g.attributes {
		if !a.IsSet() || !serializer.Include(name) {
			continue
		}

		b, err := a.MarshalJSON()
		if err != nil {
			return nil, fmt.Errorf("failed to marshal attribute %s: %w", name, err)
		}
		j.Attributes[name] = b
	}

	return json.Marshal(j)
}

// NewOverTimeFromJSON decodes an instance created through the factory, with
// defaults generated only when the document carries no uid
func NewOverTimeFromJSON(body []byte, factory InstanceFactory, cache metadata.Cache) (*GeoObjectOverTime, error) {
	j := geoObjectOverTimeJSON{}
	if err := json.Unmarshal(body, &j); err != nil {
		return nil, cgrerrors.NewMalformedWireFormatError("failed to unmarshal geo object over time: %s", err.Error())
	}

	typeCode, err := typeCodeOf(j.Attributes)
	if err != nil {
		return nil, err
	}

	_, hasUID := j.Attributes[metadata.UID]

	g, err := factory.NewGeoObjectOverTimeInstance(typeCode, !hasUID)
	if err != nil {
		return nil, err
	}

	for name, c := range g.votAttributes {
		raw, ok := j.Attributes[name]
		if !ok || isNullJSON(raw) {
			c.Clear()
			continue
		}

		decoded, err := temporal.NewFromJSON(raw, c.AttributeType(), cache)
		if err != nil {
			return nil, fmt.Errorf("failed to unmarshal attribute %s of %s: %w", name, typeCode, err)
		}

		c.Clear()
		for _, vot := range decoded.All() {
			c.Add(vot)
		}
	}

	for name, a := range g.attributes {
		raw, ok := j.Attributes[name]
		if !ok {
			continue
		}

		if err := a.UnmarshalAttribute(raw, cache); err != nil {
			return nil, fmt.Errorf("failed to unmarshal attribute %s of %s: %w", name, typeCode, err)
		}
	}

	return g, nil
}

func isNullJSON(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}
