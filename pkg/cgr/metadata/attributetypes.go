package metadata

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	cgrerrors "github.com/diwise/cgr-adapter/pkg/cgr/errors"
	"github.com/diwise/cgr-adapter/pkg/cgr/geometry"
	"github.com/diwise/cgr-adapter/pkg/cgr/localization"
	"github.com/diwise/cgr-adapter/pkg/cgr/terms"
	"github.com/paulmach/orb"
)

// Kind is the discriminator of the closed set of attribute variants
type Kind string

const (
	KindCharacter      Kind = "character"
	KindInteger        Kind = "integer"
	KindFloat          Kind = "float"
	KindBoolean        Kind = "boolean"
	KindDate           Kind = "date"
	KindLocal          Kind = "local"
	KindTerm           Kind = "term"
	KindClassification Kind = "classification"
	KindGeometry       Kind = "geometry"
)

func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(s))
	switch k {
	case KindCharacter, KindInteger, KindFloat, KindBoolean, KindDate, KindLocal, KindTerm, KindClassification, KindGeometry:
		return k, nil
	}
	return "", cgrerrors.NewUnsupportedKindError(s)
}

// AttributeType describes one named and typed field of a GeoObjectType.
// The set of implementations is closed, use a type switch on the concrete
// pointer types or a switch on Kind() to handle each variant.
type AttributeType interface {
	Name() string
	Kind() Kind
	Label() localization.LocalizedValue
	Description() localization.LocalizedValue
	IsDefault() bool
	IsRequired() bool
	IsUnique() bool
	IsChangeOverTime() bool

	SetLabel(localization.LocalizedValue)
	SetDescription(localization.LocalizedValue)
	SetRequired(bool)
	SetUnique(bool)
	SetChangeOverTime(bool)

	// Validate checks a candidate value against the rules of this kind.
	// A nil value is always accepted and means "no value".
	Validate(value any) error

	MarshalJSON() ([]byte, error)

	base() *attributeTypeImpl
}

type attributeTypeImpl struct {
	name           string
	kind           Kind
	label          localization.LocalizedValue
	description    localization.LocalizedValue
	isDefault      bool
	isRequired     bool
	isUnique       bool
	changeOverTime bool
}

func (a *attributeTypeImpl) Name() string                                 { return a.name }
func (a *attributeTypeImpl) Kind() Kind                                   { return a.kind }
func (a *attributeTypeImpl) Label() localization.LocalizedValue           { return a.label }
func (a *attributeTypeImpl) Description() localization.LocalizedValue     { return a.description }
func (a *attributeTypeImpl) IsDefault() bool                              { return a.isDefault }
func (a *attributeTypeImpl) IsRequired() bool                             { return a.isRequired }
func (a *attributeTypeImpl) IsUnique() bool                               { return a.isUnique }
func (a *attributeTypeImpl) IsChangeOverTime() bool                       { return a.changeOverTime }
func (a *attributeTypeImpl) SetLabel(l localization.LocalizedValue)       { a.label = l }
func (a *attributeTypeImpl) SetDescription(d localization.LocalizedValue) { a.description = d }
func (a *attributeTypeImpl) SetRequired(b bool)                           { a.isRequired = b }
func (a *attributeTypeImpl) SetUnique(b bool)                             { a.isUnique = b }
func (a *attributeTypeImpl) SetChangeOverTime(b bool)                     { a.changeOverTime = b }
func (a *attributeTypeImpl) base() *attributeTypeImpl                     { return a }

func (a *attributeTypeImpl) mismatch(value any) error {
	return cgrerrors.NewTypeMismatchError(a.name, string(a.kind), value)
}

type attributeTypeJSON struct {
	Code             string                      `json:"code"`
	Type             Kind                        `json:"type"`
	Label            localization.LocalizedValue `json:"label"`
	Description      localization.LocalizedValue `json:"description"`
	IsDefault        bool                        `json:"isDefault"`
	Required         bool                        `json:"required"`
	Unique           bool                        `json:"unique"`
	IsChangeOverTime bool                        `json:"isChangeOverTime"`
	Precision        *int                        `json:"precision,omitempty"`
	Scale            *int                        `json:"scale,omitempty"`
	RootTerm         string                      `json:"rootTerm,omitempty"`
	GeometryType     geometry.Type               `json:"geometryType,omitempty"`
}

func (a *attributeTypeImpl) toJSON() attributeTypeJSON {
	return attributeTypeJSON{
		Code:             a.name,
		Type:             a.kind,
		Label:            a.label,
		Description:      a.description,
		IsDefault:        a.isDefault,
		Required:         a.isRequired,
		Unique:           a.isUnique,
		IsChangeOverTime: a.changeOverTime,
	}
}

type CharacterType struct {
	attributeTypeImpl
}

func (t *CharacterType) Validate(value any) error {
	switch value.(type) {
	case nil, string:
		return nil
	}
	return t.mismatch(value)
}

func (t *CharacterType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.toJSON())
}

type IntegerType struct {
	attributeTypeImpl
}

func (t *IntegerType) Validate(value any) error {
	if value == nil {
		return nil
	}
	if _, ok := ToInt64(value); ok {
		return nil
	}
	return t.mismatch(value)
}

func (t *IntegerType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.toJSON())
}

// ToInt64 widens any of the builtin integer types. Unsigned values that
// do not fit are rejected.
func ToInt64(value any) (int64, bool) {
	switch v := value.(type) {
	case int:
		return int64(v), true
	case int8:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint8:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint32:
		return int64(v), true
	case uint:
		if uint64(v) > math.MaxInt64 {
			return 0, false
		}
		return int64(v), true
	case uint64:
		if v > math.MaxInt64 {
			return 0, false
		}
		return int64(v), true
	}
	return 0, false
}

// FloatType bounds values by precision (total number of significant digits)
// and scale (digits after the decimal point). Zero means unbounded.
type FloatType struct {
	attributeTypeImpl
	precision int
	scale     int
}

func (t *FloatType) Precision() int { return t.precision }
func (t *FloatType) Scale() int     { return t.scale }

func (t *FloatType) SetPrecision(p int) { t.precision = p }
func (t *FloatType) SetScale(s int)     { t.scale = s }

func (t *FloatType) Validate(value any) error {
	if value == nil {
		return nil
	}

	f, ok := ToFloat64(value)
	if !ok {
		return t.mismatch(value)
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return cgrerrors.NewValidationError("attribute %s does not accept %v", t.name, f)
	}

	intDigits, fracDigits := countDigits(f)

	if t.scale > 0 && fracDigits > t.scale {
		return cgrerrors.NewValidationError("value %v of attribute %s exceeds the scale %d", f, t.name, t.scale)
	}

	if t.precision > 0 && intDigits+fracDigits > t.precision {
		return cgrerrors.NewValidationError("value %v of attribute %s exceeds the precision %d", f, t.name, t.precision)
	}

	return nil
}

func (t *FloatType) MarshalJSON() ([]byte, error) {
	j := t.toJSON()
	j.Precision = &t.precision
	j.Scale = &t.scale
	return json.Marshal(j)
}

func ToFloat64(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		// widen through the shortest decimal form so 0.1 stays 0.1
		f, err := strconv.ParseFloat(strconv.FormatFloat(float64(v), 'f', -1, 32), 64)
		return f, err == nil
	}

	if i, ok := ToInt64(value); ok {
		return float64(i), true
	}

	return 0, false
}

func countDigits(f float64) (int, int) {
	s := strconv.FormatFloat(math.Abs(f), 'f', -1, 64)
	intPart, fracPart, _ := strings.Cut(s, ".")
	intPart = strings.TrimLeft(intPart, "0")
	return len(intPart), len(fracPart)
}

type BooleanType struct {
	attributeTypeImpl
}

func (t *BooleanType) Validate(value any) error {
	switch value.(type) {
	case nil, bool:
		return nil
	}
	return t.mismatch(value)
}

func (t *BooleanType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.toJSON())
}

type DateType struct {
	attributeTypeImpl
}

func (t *DateType) Validate(value any) error {
	switch value.(type) {
	case nil, time.Time:
		return nil
	}
	return t.mismatch(value)
}

func (t *DateType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.toJSON())
}

type LocalType struct {
	attributeTypeImpl
}

func (t *LocalType) Validate(value any) error {
	switch value.(type) {
	case nil, string, localization.LocalizedValue, *localization.LocalizedValue:
		return nil
	}
	return t.mismatch(value)
}

func (t *LocalType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.toJSON())
}

// TermType holds a set of codes from the vocabulary below RootTerm
type TermType struct {
	attributeTypeImpl
	rootTerm *terms.Term
}

func (t *TermType) RootTerm() *terms.Term     { return t.rootTerm }
func (t *TermType) SetRootTerm(r *terms.Term) { t.rootTerm = r }

func (t *TermType) Validate(value any) error {
	switch v := value.(type) {
	case nil:
		return nil
	case string:
		return validateTermCode(t.rootTerm, v)
	case *terms.Term:
		if v == nil {
			return nil
		}
		return validateTermCode(t.rootTerm, v.Code())
	case []string:
		for _, code := range v {
			if err := validateTermCode(t.rootTerm, code); err != nil {
				return err
			}
		}
		return nil
	case []*terms.Term:
		for _, term := range v {
			if term == nil {
				return cgrerrors.NewValidationError("nil term in the value of %s", t.name)
			}
			if err := validateTermCode(t.rootTerm, term.Code()); err != nil {
				return err
			}
		}
		return nil
	}
	return t.mismatch(value)
}

func (t *TermType) MarshalJSON() ([]byte, error) {
	j := t.toJSON()
	if t.rootTerm != nil {
		j.RootTerm = t.rootTerm.Code()
	}
	return json.Marshal(j)
}

// ClassificationType holds a single code from the vocabulary below RootTerm
type ClassificationType struct {
	attributeTypeImpl
	rootTerm *terms.Term
}

func (t *ClassificationType) RootTerm() *terms.Term     { return t.rootTerm }
func (t *ClassificationType) SetRootTerm(r *terms.Term) { t.rootTerm = r }

func (t *ClassificationType) Validate(value any) error {
	switch v := value.(type) {
	case nil:
		return nil
	case string:
		return validateTermCode(t.rootTerm, v)
	case *terms.Term:
		if v == nil {
			return nil
		}
		return validateTermCode(t.rootTerm, v.Code())
	}
	return t.mismatch(value)
}

func (t *ClassificationType) MarshalJSON() ([]byte, error) {
	j := t.toJSON()
	if t.rootTerm != nil {
		j.RootTerm = t.rootTerm.Code()
	}
	return json.Marshal(j)
}

func validateTermCode(root *terms.Term, code string) error {
	if root == nil {
		return cgrerrors.NewUnknownTermError(code, "<unset>")
	}

	if _, ok := root.Find(code); !ok {
		return cgrerrors.NewUnknownTermError(code, root.Code())
	}

	return nil
}

// GeometryAttributeType accepts orb geometries of the owning GeoObjectType's geometry type
type GeometryAttributeType struct {
	attributeTypeImpl
	geometryType geometry.Type
}

func (t *GeometryAttributeType) GeometryType() geometry.Type     { return t.geometryType }
func (t *GeometryAttributeType) SetGeometryType(g geometry.Type) { t.geometryType = g }

func (t *GeometryAttributeType) Validate(value any) error {
	if value == nil {
		return nil
	}

	g, ok := value.(orb.Geometry)
	if !ok {
		return t.mismatch(value)
	}

	if t.geometryType == "" {
		return nil
	}

	return t.geometryType.Validate(g)
}

func (t *GeometryAttributeType) MarshalJSON() ([]byte, error) {
	j := t.toJSON()
	j.GeometryType = t.geometryType
	return json.Marshal(j)
}

// Factory creates an attribute type of the given kind
func Factory(name string, label, description localization.LocalizedValue, kind Kind, isRequired, isUnique, isDefault bool) (AttributeType, error) {
	if name == "" {
		return nil, cgrerrors.NewRequiredParameterError("Factory", "name")
	}

	impl := attributeTypeImpl{
		name:        name,
		kind:        kind,
		label:       label,
		description: description,
		isDefault:   isDefault,
		isRequired:  isRequired,
		isUnique:    isUnique,
	}

	switch kind {
	case KindCharacter:
		return &CharacterType{attributeTypeImpl: impl}, nil
	case KindInteger:
		return &IntegerType{attributeTypeImpl: impl}, nil
	case KindFloat:
		return &FloatType{attributeTypeImpl: impl}, nil
	case KindBoolean:
		return &BooleanType{attributeTypeImpl: impl}, nil
	case KindDate:
		return &DateType{attributeTypeImpl: impl}, nil
	case KindLocal:
		return &LocalType{attributeTypeImpl: impl}, nil
	case KindTerm:
		return &TermType{attributeTypeImpl: impl}, nil
	case KindClassification:
		return &ClassificationType{attributeTypeImpl: impl}, nil
	case KindGeometry:
		return &GeometryAttributeType{attributeTypeImpl: impl}, nil
	}

	return nil, cgrerrors.NewUnsupportedKindError(string(kind))
}

// UnmarshalAttributeType decodes an attribute type and resolves its root
// term reference, if any, through the cache
func UnmarshalAttributeType(data []byte, cache Cache) (AttributeType, error) {
	j := attributeTypeJSON{}
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, cgrerrors.NewMalformedWireFormatError("failed to unmarshal attribute type: %s", err.Error())
	}

	if j.Code == "" {
		return nil, cgrerrors.NewMalformedWireFormatError("attribute type without a code")
	}

	kind, err := ParseKind(string(j.Type))
	if err != nil {
		return nil, err
	}

	at, err := Factory(j.Code, j.Label, j.Description, kind, j.Required, j.Unique, j.IsDefault)
	if err != nil {
		return nil, err
	}
	at.SetChangeOverTime(j.IsChangeOverTime)

	switch t := at.(type) {
	case *FloatType:
		if j.Precision != nil {
			t.precision = *j.Precision
		}
		if j.Scale != nil {
			t.scale = *j.Scale
		}
	case *TermType:
		t.rootTerm, err = resolveRootTerm(j.RootTerm, cache)
	case *ClassificationType:
		t.rootTerm, err = resolveRootTerm(j.RootTerm, cache)
	case *GeometryAttributeType:
		if j.GeometryType != "" {
			t.geometryType, err = geometry.ParseType(string(j.GeometryType))
		}
	}

	if err != nil {
		return nil, err
	}

	return at, nil
}

func resolveRootTerm(code string, cache Cache) (*terms.Term, error) {
	if code == "" {
		return nil, nil
	}

	if cache != nil {
		if term, ok := cache.GetTerm(code); ok {
			return term, nil
		}
	}

	// the status vocabulary is builtin and always resolvable
	if code == terms.StatusRoot {
		return terms.NewStatusTerms(), nil
	}

	return nil, cgrerrors.NewUnresolvedReferenceError("Term", code)
}

// RootTermOf returns the vocabulary root of term and classification types
func RootTermOf(at AttributeType) (*terms.Term, bool) {
	switch t := at.(type) {
	case *TermType:
		return t.rootTerm, t.rootTerm != nil
	case *ClassificationType:
		return t.rootTerm, t.rootTerm != nil
	}
	return nil, false
}

func (a *attributeTypeImpl) String() string {
	return fmt.Sprintf("AttributeType [%s:%s]", a.name, a.kind)
}
