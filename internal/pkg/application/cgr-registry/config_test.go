package cgrregistry

import (
	"bytes"
	"context"
	"errors"
	"testing"

	cgrerrors "github.com/diwise/cgr-adapter/pkg/cgr/errors"
	"github.com/diwise/cgr-adapter/pkg/cgr/geometry"
	"github.com/diwise/cgr-adapter/pkg/cgr/localization"
	"github.com/diwise/cgr-adapter/pkg/cgr/metadata"
	"github.com/diwise/cgr-adapter/pkg/cgr/registry"
	"github.com/matryer/is"
)

func TestLoadConfig(t *testing.T) {
	is, config := setupConfigTest(t)

	is.Equal(len(config.Terms), 1)          // should have a single vocabulary
	is.Equal(len(config.GeoObjectTypes), 3) // should have three types
	is.Equal(len(config.Hierarchies), 1)    // should have a single hierarchy
}

func TestLoadLocalizedText(t *testing.T) {
	is, config := setupConfigTest(t)

	province := config.GeoObjectTypes[0]
	is.Equal(province.Label.Value, "Province")
	is.Equal(province.Label.Locales["sv"], "Län")

	lv := province.Label.LocalizedValue()
	is.Equal(lv.ValueFor("sv"), "Län")
	is.Equal(config.GeoObjectTypes[1].Label.Value, "District")
}

func TestLoadTerms(t *testing.T) {
	is, config := setupConfigTest(t)
	root := config.Terms[0]

	is.Equal(root.Code, "LANDUSE-Root")
	is.Equal(len(root.Children), 2) // should find two child terms
}

func TestLoadConfigRejectsMissingRootTerm(t *testing.T) {
	is := is.New(t)

	_, err := LoadConfiguration(bytes.NewBufferString(`
geoObjectTypes:
  - code: Parcel
    geometryType: POLYGON
    attributes:
      - code: landuse
        type: classification
`))
	is.True(err != nil) // classification attributes need a root term
}

func TestLoadConfigRejectsUnknownGeometryType(t *testing.T) {
	is := is.New(t)

	_, err := LoadConfiguration(bytes.NewBufferString(`
geoObjectTypes:
  - code: Parcel
    geometryType: CIRCLE
`))
	is.True(err != nil)
}

func TestSeed(t *testing.T) {
	is, config := setupConfigTest(t)

	adapter := registry.New()
	err := Seed(context.Background(), adapter, config)
	is.NoErr(err)

	_, ok := adapter.MetadataCache().GetTerm("LANDUSE-Forest")
	is.True(ok)

	district, ok := adapter.MetadataCache().GetGeoObjectType("District")
	is.True(ok)

	population, ok := district.Attribute("population")
	is.True(ok)
	is.Equal(population.Kind(), metadata.KindInteger)
	is.True(population.IsChangeOverTime())

	area, _ := district.Attribute("area")
	is.Equal(area.(*metadata.FloatType).Precision(), 10)

	landuse, _ := district.Attribute("landuse")
	root, ok := metadata.RootTermOf(landuse)
	is.True(ok)
	is.Equal(root.Code(), "LANDUSE-Root")

	ht, ok := adapter.MetadataCache().GetHierarchyType("ADMIN")
	is.True(ok)
	is.Equal(ht.Contact(), "gis@example.org")
	is.True(ht.HasGeoObjectType("Commune", false))
	is.True(!ht.HasGeoObjectType("Commune", true)) // commune is inherited
}

func TestSeedWithUnknownTypeInHierarchy(t *testing.T) {
	is := is.New(t)

	config, err := LoadConfiguration(bytes.NewBufferString(`
hierarchies:
  - code: ADMIN
    roots:
      - type: Country
`))
	is.NoErr(err)

	err = Seed(context.Background(), registry.New(), config)
	is.True(errors.Is(err, cgrerrors.ErrUnresolvedReference))
}

func TestSeedCanNotRedefineDefaultAttributes(t *testing.T) {
	is := is.New(t)

	config, err := LoadConfiguration(bytes.NewBufferString(`
geoObjectTypes:
  - code: Parcel
    geometryType: POLYGON
    attributes:
      - code: code
        type: integer
`))
	is.NoErr(err)

	adapter := registry.New()
	err = Seed(context.Background(), adapter, config)
	is.True(errors.Is(err, cgrerrors.ErrValidation))

	_, ok := adapter.MetadataCache().GetGeoObjectType("Parcel")
	is.True(!ok) // a type that failed to seed should not be registered
}

func TestFailedSeedKeepsAnExistingTypeWithTheSameCode(t *testing.T) {
	is := is.New(t)

	adapter := registry.New()
	existing, err := adapter.NewGeoObjectType("Parcel", geometry.Polygon, localization.New("Parcel"), localization.New(""), true)
	is.NoErr(err)

	config, err := LoadConfiguration(bytes.NewBufferString(`
geoObjectTypes:
  - code: Parcel
    geometryType: POINT
    attributes:
      - code: owner
        type: classification
        label: Owner
        rootTerm: OWNER-Root
`))
	is.NoErr(err)

	err = Seed(context.Background(), adapter, config)
	is.True(errors.Is(err, cgrerrors.ErrUnresolvedReference))

	got, ok := adapter.MetadataCache().GetGeoObjectType("Parcel")
	is.True(ok) // the previously registered type should survive
	is.True(got == existing)
	is.Equal(got.GeometryType(), geometry.Polygon)
}

func setupConfigTest(t *testing.T) (*is.I, *Config) {
	is := is.New(t)
	cfgData := bytes.NewBuffer([]byte(configFile))
	config, err := LoadConfiguration(cfgData)
	is.NoErr(err)

	return is, config
}

var configFile string = `
terms:
  - code: LANDUSE-Root
    label: Land use
    children:
      - code: LANDUSE-Forest
        label:
          value: Forest
          sv: Skog
      - code: LANDUSE-Urban
        label: Urban
geoObjectTypes:
  - code: Province
    label:
      value: Province
      sv: Län
    geometryType: MULTIPOLYGON
  - code: District
    label: District
    geometryType: POLYGON
    attributes:
      - code: population
        type: integer
        label: Population
        changeOverTime: true
      - code: area
        type: float
        label: Area
        precision: 10
        scale: 2
      - code: landuse
        type: classification
        label: Land use
        rootTerm: LANDUSE-Root
  - code: Commune
    label: Commune
    geometryType: POLYGON
    isLeaf: true
hierarchies:
  - code: ADMIN
    label: Administrative
    contact: gis@example.org
    roots:
      - type: Province
        children:
          - type: District
            children:
              - type: Commune
                inheritedHierarchyCode: OTHER
`
