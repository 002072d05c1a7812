package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	cgrerrors "github.com/diwise/cgr-adapter/pkg/cgr/errors"
	"github.com/diwise/cgr-adapter/pkg/cgr/geometry"
	"github.com/diwise/cgr-adapter/pkg/cgr/localization"
	"github.com/diwise/cgr-adapter/pkg/cgr/metadata"
	"github.com/diwise/cgr-adapter/pkg/cgr/terms"
	"github.com/google/uuid"
	"github.com/matryer/is"
)

func TestNewGeoObjectInstanceGeneratesUID(t *testing.T) {
	is, adapter := setupAdapter(t)

	g, err := adapter.NewGeoObjectInstance("Province", true)
	is.NoErr(err)

	_, err = uuid.Parse(g.UID())
	is.NoErr(err)
	is.Equal(g.TypeCode(), "Province")

	g, err = adapter.NewGeoObjectInstance("Province", false)
	is.NoErr(err)
	is.Equal(g.UID(), "")
}

func TestNewInstanceOfUnknownType(t *testing.T) {
	is, adapter := setupAdapter(t)

	_, err := adapter.NewGeoObjectInstance("Country", true)
	is.True(errors.Is(err, cgrerrors.ErrUnresolvedReference))

	_, err = adapter.NewGeoObjectOverTimeInstance("Country", true)
	is.True(errors.Is(err, cgrerrors.ErrUnresolvedReference))
}

func TestGetUIDs(t *testing.T) {
	is := is.New(t)

	adapter := New(WithIdService(&sequenceIdService{}))
	is.Equal(adapter.GetUIDs(3), []string{"id-1", "id-2", "id-3"})
	is.Equal(len(New().GetUIDs(5)), 5)
	is.Equal(len(New().GetUIDs(-1)), 0)
}

func TestAdapterKnowsTheStatusVocabulary(t *testing.T) {
	is := is.New(t)

	adapter := New()
	_, ok := adapter.MetadataCache().GetTerm(terms.StatusActive)
	is.True(ok)
}

func TestGeoObjectOverTimeThroughAdapter(t *testing.T) {
	is, adapter := setupAdapter(t)

	g, err := adapter.NewGeoObjectOverTimeInstance("District", true)
	is.NoErr(err)
	is.NoErr(g.SetCode("D-1"))
	is.NoErr(g.SetDisplayLabel(localization.New("Centrum"), time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), time.Time{}))

	active, _ := adapter.MetadataCache().GetTerm(terms.StatusActive)
	is.NoErr(g.SetStatus(active, time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), time.Time{}))

	first, err := json.Marshal(g)
	is.NoErr(err)

	decoded, err := adapter.GeoObjectOverTimeFromJSON(first)
	is.NoErr(err)
	is.Equal(decoded.UID(), g.UID())

	second, err := json.Marshal(decoded)
	is.NoErr(err)
	is.Equal(string(first), string(second))
}

func TestGeoObjectThroughAdapter(t *testing.T) {
	is, adapter := setupAdapter(t)

	body := `{"type":"Feature","geometry":{"type":"MultiPolygon","coordinates":[[[[0,0],[1,0],[1,1],[0,0]]]]},"properties":{"code":"P-1","type":"Province"}}`

	g, err := adapter.GeoObjectFromJSON([]byte(body))
	is.NoErr(err)
	is.Equal(g.Code(), "P-1")
	is.True(g.UID() != "") // a uid should be generated for documents that lack one
}

func TestHierarchyImport(t *testing.T) {
	is, adapter := setupAdapter(t)

	ht, ok := adapter.MetadataCache().GetHierarchyType("ADMIN")
	is.True(ok)

	b, err := json.Marshal([]*metadata.HierarchyType{ht})
	is.NoErr(err)

	other := New(WithCache(adapter.MetadataCache()))
	imported, err := other.ImportHierarchyTypes(b)
	is.NoErr(err)
	is.Equal(len(imported), 1)

	root := imported[0].RootGeoObjectTypes()[0]
	is.True(!root.HierarchyHasGeoObjectType("Commune", true))
	is.True(root.HierarchyHasGeoObjectType("Commune", false))
}

func TestImportTypesAndTerms(t *testing.T) {
	is, adapter := setupAdapter(t)

	termsBody, err := json.Marshal(adapter.MetadataCache().RootTerms())
	is.NoErr(err)
	typesBody, err := json.Marshal(adapter.MetadataCache().GeoObjectTypes())
	is.NoErr(err)

	other := New()
	_, err = other.ImportTerms(termsBody)
	is.NoErr(err)
	types, err := other.ImportGeoObjectTypes(typesBody)
	is.NoErr(err)
	is.Equal(len(types), 3)

	_, ok := other.MetadataCache().GetGeoObjectType("Commune")
	is.True(ok)
}

type sequenceIdService struct {
	count int
}

func (s *sequenceIdService) Next() string {
	s.count++
	return fmt.Sprintf("id-%d", s.count)
}

func (s *sequenceIdService) GetUIDs(amount int) []string {
	uids := []string{}
	for range amount {
		uids = append(uids, s.Next())
	}
	return uids
}

func setupAdapter(t *testing.T) (*is.I, *Adapter) {
	is := is.New(t)
	adapter := New()

	province, err := adapter.NewGeoObjectType("Province", geometry.MultiPolygon, localization.New("Province"), localization.New(""), false)
	is.NoErr(err)
	district, err := adapter.NewGeoObjectType("District", geometry.Polygon, localization.New("District"), localization.New(""), false)
	is.NoErr(err)
	commune, err := adapter.NewGeoObjectType("Commune", geometry.Polygon, localization.New("Commune"), localization.New(""), true)
	is.NoErr(err)

	ht, err := adapter.NewHierarchyType("ADMIN", localization.New("Administrative"), localization.New(""), "")
	is.NoErr(err)

	root := metadata.NewHierarchyNode(province)
	districtNode := metadata.NewHierarchyNode(district)
	districtNode.AddChild(metadata.NewInheritedHierarchyNode(commune, "OTHER"))
	root.AddChild(districtNode)
	ht.AddRootGeoObjectType(root)

	return is, adapter
}
