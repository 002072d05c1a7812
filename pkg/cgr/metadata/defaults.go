package metadata

import (
	"slices"

	"github.com/diwise/cgr-adapter/pkg/cgr/geometry"
	"github.com/diwise/cgr-adapter/pkg/cgr/localization"
	"github.com/diwise/cgr-adapter/pkg/cgr/terms"
)

const (
	UID            string = "uid"
	Code           string = "code"
	DisplayLabel   string = "displayLabel"
	Type           string = "type"
	Sequence       string = "sequence"
	CreateDate     string = "createDate"
	LastUpdateDate string = "lastUpdateDate"
	Status         string = "status"
	Geometry       string = "geometry"
)

type defaultAttribute struct {
	name           string
	kind           Kind
	label          string
	description    string
	required       bool
	unique         bool
	changeOverTime bool
}

var defaultAttributes = []defaultAttribute{
	{name: UID, kind: KindCharacter, label: "UID", description: "The internal globally unique identifier ID", required: true, unique: true},
	{name: Code, kind: KindCharacter, label: "Code", description: "Human readable unique identified", required: true, unique: true},
	{name: DisplayLabel, kind: KindLocal, label: "Display Label", description: "Label of the location", required: true, changeOverTime: true},
	{name: Type, kind: KindCharacter, label: "Type", description: "The type of the GeoObject", required: true},
	{name: Sequence, kind: KindInteger, label: "Sequence", description: "The sequence number of the GeoObject that is incremented when the object is updated"},
	{name: CreateDate, kind: KindDate, label: "Date Created", description: "The date the object was created"},
	{name: LastUpdateDate, kind: KindDate, label: "Date Last Updated", description: "The date the object was updated"},
	{name: Status, kind: KindTerm, label: "Status", description: "The status of the GeoObject", required: true, changeOverTime: true},
	{name: Geometry, kind: KindGeometry, label: "Geometry", description: "The geometry of the GeoObject", changeOverTime: true},
}

// IsDefaultAttribute reports whether name is one of the built in attributes
// that every GeoObjectType carries
func IsDefaultAttribute(name string) bool {
	return slices.ContainsFunc(defaultAttributes, func(d defaultAttribute) bool {
		return d.name == name
	})
}

func DefaultAttributeNames() []string {
	names := make([]string, 0, len(defaultAttributes))
	for _, d := range defaultAttributes {
		names = append(names, d.name)
	}
	return names
}

// newDefaultAttributeTypes builds the default attributes, in their canonical
// order, for a type with the given geometry type. The status root term is
// looked up in the cache and falls back on the builtin status vocabulary.
func newDefaultAttributeTypes(geometryType geometry.Type, cache Cache) []AttributeType {
	var statusRoot *terms.Term
	if cache != nil {
		statusRoot, _ = cache.GetTerm(terms.StatusRoot)
	}
	if statusRoot == nil {
		statusRoot = terms.NewStatusTerms()
	}

	result := make([]AttributeType, 0, len(defaultAttributes))

	for _, d := range defaultAttributes {
		at, err := Factory(d.name, localization.New(d.label), localization.New(d.description), d.kind, d.required, d.unique, true)
		if err != nil {
			// the defaults table only holds known kinds
			panic(err)
		}
		at.SetChangeOverTime(d.changeOverTime)

		switch t := at.(type) {
		case *TermType:
			t.rootTerm = statusRoot
		case *GeometryAttributeType:
			t.geometryType = geometryType
		}

		result = append(result, at)
	}

	return result
}
