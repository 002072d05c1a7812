package metadata

import (
	"encoding/json"
	"fmt"
	"slices"
	"sync"

	cgrerrors "github.com/diwise/cgr-adapter/pkg/cgr/errors"
	"github.com/diwise/cgr-adapter/pkg/cgr/geometry"
	"github.com/diwise/cgr-adapter/pkg/cgr/localization"
)

// GeoObjectType is the schema of a kind of geographic feature. It owns an
// ordered mapping from attribute name to AttributeType that is safe for
// concurrent readers.
type GeoObjectType struct {
	code             string
	geometryType     geometry.Type
	label            localization.LocalizedValue
	description      localization.LocalizedValue
	isLeaf           bool
	organizationCode string

	mu         sync.RWMutex
	names      []string
	attributes map[string]AttributeType
}

// NewGeoObjectType creates a type seeded with the default attributes
func NewGeoObjectType(code string, geometryType geometry.Type, label, description localization.LocalizedValue, isLeaf bool, cache Cache) (*GeoObjectType, error) {
	if code == "" {
		return nil, cgrerrors.NewRequiredParameterError("NewGeoObjectType", "code")
	}

	if _, err := geometry.ParseType(string(geometryType)); err != nil {
		return nil, err
	}

	got := &GeoObjectType{
		code:         code,
		geometryType: geometryType,
		label:        label,
		description:  description,
		isLeaf:       isLeaf,
		names:        []string{},
		attributes:   map[string]AttributeType{},
	}

	for _, at := range newDefaultAttributeTypes(geometryType, cache) {
		got.add(at)
	}

	return got, nil
}

func (got *GeoObjectType) Code() string                                 { return got.code }
func (got *GeoObjectType) GeometryType() geometry.Type                  { return got.geometryType }
func (got *GeoObjectType) Label() localization.LocalizedValue           { return got.label }
func (got *GeoObjectType) Description() localization.LocalizedValue     { return got.description }
func (got *GeoObjectType) IsLeaf() bool                                 { return got.isLeaf }
func (got *GeoObjectType) OrganizationCode() string                     { return got.organizationCode }
func (got *GeoObjectType) SetLabel(l localization.LocalizedValue)       { got.label = l }
func (got *GeoObjectType) SetDescription(d localization.LocalizedValue) { got.description = d }
func (got *GeoObjectType) SetIsLeaf(b bool)                             { got.isLeaf = b }
func (got *GeoObjectType) SetOrganizationCode(c string)                 { got.organizationCode = c }

// AddAttribute adds or replaces an attribute type. A replaced attribute
// keeps its position.
func (got *GeoObjectType) AddAttribute(at AttributeType) {
	got.mu.Lock()
	defer got.mu.Unlock()

	got.add(at)
}

func (got *GeoObjectType) add(at AttributeType) {
	if _, exists := got.attributes[at.Name()]; !exists {
		got.names = append(got.names, at.Name())
	}
	got.attributes[at.Name()] = at
}

// RemoveAttribute removes a user defined attribute. Default attributes can not be removed.
func (got *GeoObjectType) RemoveAttribute(name string) error {
	got.mu.Lock()
	defer got.mu.Unlock()

	at, ok := got.attributes[name]
	if !ok {
		return cgrerrors.NewAttributeNotFoundError(name)
	}

	if at.IsDefault() || IsDefaultAttribute(name) {
		return cgrerrors.NewValidationError("default attribute %s can not be removed from %s", name, got.code)
	}

	delete(got.attributes, name)
	got.names = slices.DeleteFunc(got.names, func(n string) bool { return n == name })

	return nil
}

func (got *GeoObjectType) Attribute(name string) (AttributeType, bool) {
	got.mu.RLock()
	defer got.mu.RUnlock()

	at, ok := got.attributes[name]
	return at, ok
}

// Attributes returns the attribute types in declaration order
func (got *GeoObjectType) Attributes() []AttributeType {
	got.mu.RLock()
	defer got.mu.RUnlock()

	result := make([]AttributeType, 0, len(got.names))
	for _, name := range got.names {
		result = append(result, got.attributes[name])
	}
	return result
}

func (got *GeoObjectType) AttributeNames() []string {
	got.mu.RLock()
	defer got.mu.RUnlock()

	return slices.Clone(got.names)
}

// Copy returns a new type with the given identity and a copy of every attribute type
func (got *GeoObjectType) Copy(code string, label, description localization.LocalizedValue) (*GeoObjectType, error) {
	if code == "" {
		return nil, cgrerrors.NewRequiredParameterError("Copy", "code")
	}

	c := &GeoObjectType{
		code:             code,
		geometryType:     got.geometryType,
		label:            label,
		description:      description,
		isLeaf:           got.isLeaf,
		organizationCode: got.organizationCode,
		names:            []string{},
		attributes:       map[string]AttributeType{},
	}

	for _, at := range got.Attributes() {
		c.add(cloneAttributeType(at))
	}

	return c, nil
}

func cloneAttributeType(at AttributeType) AttributeType {
	switch t := at.(type) {
	case *CharacterType:
		c := *t
		return &c
	case *IntegerType:
		c := *t
		return &c
	case *FloatType:
		c := *t
		return &c
	case *BooleanType:
		c := *t
		return &c
	case *DateType:
		c := *t
		return &c
	case *LocalType:
		c := *t
		return &c
	case *TermType:
		c := *t
		return &c
	case *ClassificationType:
		c := *t
		return &c
	case *GeometryAttributeType:
		c := *t
		return &c
	}
	panic(fmt.Sprintf("unexpected attribute type %T", at))
}

func (got *GeoObjectType) String() string {
	return fmt.Sprintf("GeoObjectType [%s]", got.code)
}

type geoObjectTypeJSON struct {
	Code             string                      `json:"code"`
	Label            localization.LocalizedValue `json:"label"`
	Description      localization.LocalizedValue `json:"description"`
	GeometryType     geometry.Type               `json:"geometryType"`
	IsLeaf           bool                        `json:"isLeaf"`
	OrganizationCode string                      `json:"organizationCode,omitempty"`
	Attributes       []json.RawMessage           `json:"attributes"`
}

func (got *GeoObjectType) MarshalJSON() ([]byte, error) {
	return got.ToJSON(DefaultSerializer{})
}

// ToJSON marshals the type, writing only the attributes accepted by the serializer
func (got *GeoObjectType) ToJSON(serializer Serializer) ([]byte, error) {
	serializer = SerializerOrDefault(serializer)

	j := geoObjectTypeJSON{
		Code:             got.code,
		Label:            got.label,
		Description:      got.description,
		GeometryType:     got.geometryType,
		IsLeaf:           got.isLeaf,
		OrganizationCode: got.organizationCode,
		Attributes:       []json.RawMessage{},
	}

	for _, at := range got.Attributes() {
		if !serializer.Include(at.Name()) {
			continue
		}

		b, err := at.MarshalJSON()
		if err != nil {
			return nil, fmt.Errorf("failed to marshal attribute %s of %s: %w", at.Name(), got.code, err)
		}
		j.Attributes = append(j.Attributes, b)
	}

	return json.Marshal(j)
}

// NewGeoObjectTypeFromJSON decodes a type. Term references of attributes are
// resolved through the cache.
func NewGeoObjectTypeFromJSON(body []byte, cache Cache) (*GeoObjectType, error) {
	j := geoObjectTypeJSON{}
	if err := json.Unmarshal(body, &j); err != nil {
		return nil, cgrerrors.NewMalformedWireFormatError("failed to unmarshal geo object type: %s", err.Error())
	}

	if j.Code == "" {
		return nil, cgrerrors.NewMalformedWireFormatError("geo object type without a code")
	}

	geometryType, err := geometry.ParseType(string(j.GeometryType))
	if err != nil {
		return nil, err
	}

	got, err := NewGeoObjectType(j.Code, geometryType, j.Label, j.Description, j.IsLeaf, cache)
	if err != nil {
		return nil, err
	}
	got.organizationCode = j.OrganizationCode

	for _, raw := range j.Attributes {
		at, err := UnmarshalAttributeType(raw, cache)
		if err != nil {
			return nil, fmt.Errorf("failed to unmarshal attribute of %s: %w", j.Code, err)
		}
		got.add(at)
	}

	return got, nil
}

func NewGeoObjectTypesFromJSONArray(body []byte, cache Cache) ([]*GeoObjectType, error) {
	items := []json.RawMessage{}
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, cgrerrors.NewMalformedWireFormatError("expected an array of geo object types: %s", err.Error())
	}

	result := make([]*GeoObjectType, 0, len(items))
	for _, item := range items {
		got, err := NewGeoObjectTypeFromJSON(item, cache)
		if err != nil {
			return nil, err
		}
		result = append(result, got)
	}

	return result, nil
}
