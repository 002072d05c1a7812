package attributes

import (
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/diwise/cgr-adapter/pkg/cgr/dates"
	cgrerrors "github.com/diwise/cgr-adapter/pkg/cgr/errors"
	"github.com/diwise/cgr-adapter/pkg/cgr/geometry"
	"github.com/diwise/cgr-adapter/pkg/cgr/localization"
	"github.com/diwise/cgr-adapter/pkg/cgr/metadata"
	"github.com/diwise/cgr-adapter/pkg/cgr/terms"
	"github.com/paulmach/orb"
)

// Attribute holds the runtime value of one attribute of one instance. The
// kind of a container is fixed by the AttributeType it was created from.
type Attribute interface {
	Name() string
	Kind() metadata.Kind

	// Value returns the current value, or nil when unset
	Value() any
	IsSet() bool

	// SetValue stores value. Nil clears the container.
	SetValue(value any) error

	MarshalJSON() ([]byte, error)
	UnmarshalAttribute(data []byte, cache metadata.Cache) error
}

// New creates an empty container matching the kind of at
func New(at metadata.AttributeType) Attribute {
	base := attribute{name: at.Name(), kind: at.Kind()}

	switch at.Kind() {
	case metadata.KindCharacter:
		return &CharacterAttribute{attribute: base}
	case metadata.KindInteger:
		return &IntegerAttribute{attribute: base}
	case metadata.KindFloat:
		return &FloatAttribute{attribute: base}
	case metadata.KindBoolean:
		return &BooleanAttribute{attribute: base}
	case metadata.KindDate:
		return &DateAttribute{attribute: base}
	case metadata.KindLocal:
		return &LocalAttribute{attribute: base}
	case metadata.KindTerm:
		root, _ := metadata.RootTermOf(at)
		return &TermAttribute{attribute: base, root: root}
	case metadata.KindClassification:
		root, _ := metadata.RootTermOf(at)
		return &ClassificationAttribute{attribute: base, root: root}
	case metadata.KindGeometry:
		return &GeometryAttribute{attribute: base}
	}

	panic(fmt.Sprintf("no attribute container for kind %q", at.Kind()))
}

type attribute struct {
	name string
	kind metadata.Kind
}

func (a attribute) Name() string        { return a.name }
func (a attribute) Kind() metadata.Kind { return a.kind }

func (a attribute) mismatch(value any) error {
	return cgrerrors.NewTypeMismatchError(a.name, string(a.kind), value)
}

func (a attribute) malformed(err error) error {
	return cgrerrors.NewMalformedWireFormatError("failed to unmarshal value of attribute %s: %s", a.name, err.Error())
}

var null = []byte("null")

func isNull(data []byte) bool {
	return len(data) == 0 || string(data) == "null"
}

type CharacterAttribute struct {
	attribute
	value *string
}

func (a *CharacterAttribute) Value() any {
	if a.value == nil {
		return nil
	}
	return *a.value
}

func (a *CharacterAttribute) IsSet() bool { return a.value != nil }

func (a *CharacterAttribute) SetValue(value any) error {
	switch v := value.(type) {
	case nil:
		a.value = nil
	case string:
		a.value = &v
	default:
		return a.mismatch(value)
	}
	return nil
}

func (a *CharacterAttribute) MarshalJSON() ([]byte, error) {
	if a.value == nil {
		return null, nil
	}
	return json.Marshal(*a.value)
}

func (a *CharacterAttribute) UnmarshalAttribute(data []byte, _ metadata.Cache) error {
	if isNull(data) {
		a.value = nil
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return a.malformed(err)
	}
	a.value = &s

	return nil
}

type IntegerAttribute struct {
	attribute
	value *int64
}

func (a *IntegerAttribute) Value() any {
	if a.value == nil {
		return nil
	}
	return *a.value
}

func (a *IntegerAttribute) IsSet() bool { return a.value != nil }

func (a *IntegerAttribute) SetValue(value any) error {
	if value == nil {
		a.value = nil
		return nil
	}

	i, ok := metadata.ToInt64(value)
	if !ok {
		return a.mismatch(value)
	}
	a.value = &i

	return nil
}

func (a *IntegerAttribute) MarshalJSON() ([]byte, error) {
	if a.value == nil {
		return null, nil
	}
	return json.Marshal(*a.value)
}

func (a *IntegerAttribute) UnmarshalAttribute(data []byte, _ metadata.Cache) error {
	if isNull(data) {
		a.value = nil
		return nil
	}

	var i int64
	if err := json.Unmarshal(data, &i); err != nil {
		return a.malformed(err)
	}
	a.value = &i

	return nil
}

type FloatAttribute struct {
	attribute
	value *float64
}

func (a *FloatAttribute) Value() any {
	if a.value == nil {
		return nil
	}
	return *a.value
}

func (a *FloatAttribute) IsSet() bool { return a.value != nil }

func (a *FloatAttribute) SetValue(value any) error {
	if value == nil {
		a.value = nil
		return nil
	}

	f, ok := metadata.ToFloat64(value)
	if !ok {
		return a.mismatch(value)
	}
	a.value = &f

	return nil
}

func (a *FloatAttribute) MarshalJSON() ([]byte, error) {
	if a.value == nil {
		return null, nil
	}
	return json.Marshal(*a.value)
}

func (a *FloatAttribute) UnmarshalAttribute(data []byte, _ metadata.Cache) error {
	if isNull(data) {
		a.value = nil
		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return a.malformed(err)
	}
	a.value = &f

	return nil
}

type BooleanAttribute struct {
	attribute
	value *bool
}

func (a *BooleanAttribute) Value() any {
	if a.value == nil {
		return nil
	}
	return *a.value
}

func (a *BooleanAttribute) IsSet() bool { return a.value != nil }

func (a *BooleanAttribute) SetValue(value any) error {
	switch v := value.(type) {
	case nil:
		a.value = nil
	case bool:
		a.value = &v
	default:
		return a.mismatch(value)
	}
	return nil
}

func (a *BooleanAttribute) MarshalJSON() ([]byte, error) {
	if a.value == nil {
		return null, nil
	}
	return json.Marshal(*a.value)
}

func (a *BooleanAttribute) UnmarshalAttribute(data []byte, _ metadata.Cache) error {
	if isNull(data) {
		a.value = nil
		return nil
	}

	var b bool
	if err := json.Unmarshal(data, &b); err != nil {
		return a.malformed(err)
	}
	a.value = &b

	return nil
}

// DateAttribute stores dates truncated to midnight UTC
type DateAttribute struct {
	attribute
	value *time.Time
}

func (a *DateAttribute) Value() any {
	if a.value == nil {
		return nil
	}
	return *a.value
}

func (a *DateAttribute) IsSet() bool { return a.value != nil }

func (a *DateAttribute) SetValue(value any) error {
	switch v := value.(type) {
	case nil:
		a.value = nil
	case time.Time:
		if v.IsZero() {
			a.value = nil
			return nil
		}
		d := dates.Normalize(v)
		a.value = &d
	default:
		return a.mismatch(value)
	}
	return nil
}

func (a *DateAttribute) MarshalJSON() ([]byte, error) {
	if a.value == nil {
		return null, nil
	}
	return json.Marshal(a.value.Format(dates.Layout))
}

func (a *DateAttribute) UnmarshalAttribute(data []byte, _ metadata.Cache) error {
	if isNull(data) {
		a.value = nil
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return a.malformed(err)
	}

	d, err := dates.Parse(s)
	if err != nil {
		return err
	}
	a.value = &d

	return nil
}

type LocalAttribute struct {
	attribute
	value *localization.LocalizedValue
}

func (a *LocalAttribute) Value() any {
	if a.value == nil {
		return nil
	}
	return *a.value
}

func (a *LocalAttribute) IsSet() bool { return a.value != nil }

func (a *LocalAttribute) SetValue(value any) error {
	switch v := value.(type) {
	case nil:
		a.value = nil
	case string:
		lv := localization.New(v)
		a.value = &lv
	case localization.LocalizedValue:
		a.value = &v
	case *localization.LocalizedValue:
		if v == nil {
			a.value = nil
			return nil
		}
		lv := *v
		a.value = &lv
	default:
		return a.mismatch(value)
	}
	return nil
}

func (a *LocalAttribute) MarshalJSON() ([]byte, error) {
	if a.value == nil {
		return null, nil
	}
	return a.value.MarshalJSON()
}

func (a *LocalAttribute) UnmarshalAttribute(data []byte, _ metadata.Cache) error {
	if isNull(data) {
		a.value = nil
		return nil
	}

	lv := localization.LocalizedValue{}
	if err := json.Unmarshal(data, &lv); err != nil {
		return a.malformed(err)
	}
	a.value = &lv

	return nil
}

// TermAttribute holds a set of term codes. Terms are reduced to their codes.
type TermAttribute struct {
	attribute
	root  *terms.Term
	value []string
}

func (a *TermAttribute) Value() any {
	if a.value == nil {
		return nil
	}
	return slices.Clone(a.value)
}

func (a *TermAttribute) IsSet() bool { return a.value != nil }

// Terms resolves the stored codes against the root term of the attribute
func (a *TermAttribute) Terms() []*terms.Term {
	result := []*terms.Term{}
	if a.root == nil {
		return result
	}

	for _, code := range a.value {
		if t, ok := a.root.Find(code); ok {
			result = append(result, t)
		}
	}
	return result
}

func (a *TermAttribute) SetValue(value any) error {
	switch v := value.(type) {
	case nil:
		a.value = nil
	case string:
		a.value = []string{v}
	case *terms.Term:
		if v == nil {
			a.value = nil
			return nil
		}
		a.value = []string{v.Code()}
	case []string:
		a.value = slices.Clone(v)
	case []*terms.Term:
		codes := make([]string, 0, len(v))
		for _, t := range v {
			if t == nil {
				return cgrerrors.NewValidationError("nil term in the value of %s", a.name)
			}
			codes = append(codes, t.Code())
		}
		a.value = codes
	default:
		return a.mismatch(value)
	}
	return nil
}

func (a *TermAttribute) MarshalJSON() ([]byte, error) {
	if a.value == nil {
		return null, nil
	}
	return json.Marshal(a.value)
}

func (a *TermAttribute) UnmarshalAttribute(data []byte, cache metadata.Cache) error {
	if isNull(data) {
		a.value = nil
		return nil
	}

	codes := []string{}
	if err := json.Unmarshal(data, &codes); err != nil {
		return a.malformed(err)
	}

	for _, code := range codes {
		if err := resolveTerm(a.root, code, cache); err != nil {
			return err
		}
	}
	a.value = codes

	return nil
}

// ClassificationAttribute holds a single term code
type ClassificationAttribute struct {
	attribute
	root  *terms.Term
	value *string
}

func (a *ClassificationAttribute) Value() any {
	if a.value == nil {
		return nil
	}
	return *a.value
}

func (a *ClassificationAttribute) IsSet() bool { return a.value != nil }

func (a *ClassificationAttribute) Term() (*terms.Term, bool) {
	if a.value == nil || a.root == nil {
		return nil, false
	}
	return a.root.Find(*a.value)
}

func (a *ClassificationAttribute) SetValue(value any) error {
	switch v := value.(type) {
	case nil:
		a.value = nil
	case string:
		a.value = &v
	case *terms.Term:
		if v == nil {
			a.value = nil
			return nil
		}
		code := v.Code()
		a.value = &code
	default:
		return a.mismatch(value)
	}
	return nil
}

func (a *ClassificationAttribute) MarshalJSON() ([]byte, error) {
	if a.value == nil {
		return null, nil
	}
	return json.Marshal(*a.value)
}

func (a *ClassificationAttribute) UnmarshalAttribute(data []byte, cache metadata.Cache) error {
	if isNull(data) {
		a.value = nil
		return nil
	}

	var code string
	if err := json.Unmarshal(data, &code); err != nil {
		return a.malformed(err)
	}

	if err := resolveTerm(a.root, code, cache); err != nil {
		return err
	}
	a.value = &code

	return nil
}

// resolveTerm checks that code is a member of the vocabulary under root,
// preferring the version of the vocabulary that is held by the cache
func resolveTerm(root *terms.Term, code string, cache metadata.Cache) error {
	if root == nil {
		return cgrerrors.NewUnknownTermError(code, "<unset>")
	}

	if cache != nil {
		if cached, ok := cache.GetTerm(root.Code()); ok {
			root = cached
		}
	}

	if _, ok := root.Find(code); !ok {
		return cgrerrors.NewUnknownTermError(code, root.Code())
	}

	return nil
}

type GeometryAttribute struct {
	attribute
	value orb.Geometry
}

func (a *GeometryAttribute) Value() any {
	if a.value == nil {
		return nil
	}
	return a.value
}

func (a *GeometryAttribute) IsSet() bool { return a.value != nil }

func (a *GeometryAttribute) Geometry() orb.Geometry {
	return a.value
}

func (a *GeometryAttribute) SetValue(value any) error {
	if value == nil {
		a.value = nil
		return nil
	}

	g, ok := value.(orb.Geometry)
	if !ok {
		return a.mismatch(value)
	}
	a.value = g

	return nil
}

func (a *GeometryAttribute) MarshalJSON() ([]byte, error) {
	return geometry.MarshalGeoJSON(a.value)
}

func (a *GeometryAttribute) UnmarshalAttribute(data []byte, _ metadata.Cache) error {
	g, err := geometry.UnmarshalGeoJSON(data)
	if err != nil {
		return err
	}
	a.value = g

	return nil
}
