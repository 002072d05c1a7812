package registry

import (
	"encoding/json"

	cgrerrors "github.com/diwise/cgr-adapter/pkg/cgr/errors"
	"github.com/diwise/cgr-adapter/pkg/cgr/geometry"
	"github.com/diwise/cgr-adapter/pkg/cgr/geoobjects"
	"github.com/diwise/cgr-adapter/pkg/cgr/localization"
	"github.com/diwise/cgr-adapter/pkg/cgr/metadata"
	"github.com/diwise/cgr-adapter/pkg/cgr/terms"
	"github.com/google/uuid"
)

// IdService hands out unique identifiers for new GeoObjects
type IdService interface {
	Next() string
	GetUIDs(amount int) []string
}

type uuidService struct{}

func NewUUIDService() IdService {
	return uuidService{}
}

func (uuidService) Next() string {
	return uuid.NewString()
}

func (s uuidService) GetUIDs(amount int) []string {
	uids := make([]string, 0, max(amount, 0))
	for range amount {
		uids = append(uids, s.Next())
	}
	return uids
}

// Adapter ties a metadata cache to instance creation. It implements
// geoobjects.InstanceFactory and is the entry point for decoding documents.
type Adapter struct {
	cache     *metadata.MemoryCache
	idService IdService
}

type AdapterDecoratorFunc func(*Adapter)

func WithIdService(idService IdService) AdapterDecoratorFunc {
	return func(a *Adapter) {
		a.idService = idService
	}
}

func WithCache(cache *metadata.MemoryCache) AdapterDecoratorFunc {
	return func(a *Adapter) {
		a.cache = cache
	}
}

// New creates an adapter whose cache knows the status vocabulary
func New(decorators ...AdapterDecoratorFunc) *Adapter {
	a := &Adapter{
		cache:     metadata.NewMemoryCache(),
		idService: NewUUIDService(),
	}

	for _, decorator := range decorators {
		decorator(a)
	}

	if _, ok := a.cache.GetTerm(terms.StatusRoot); !ok {
		a.cache.AddTerm(terms.NewStatusTerms())
	}

	return a
}

func (a *Adapter) MetadataCache() *metadata.MemoryCache {
	return a.cache
}

func (a *Adapter) IdService() IdService {
	return a.idService
}

// NewGeoObjectType creates a type with the default attributes and registers it
func (a *Adapter) NewGeoObjectType(code string, geometryType geometry.Type, label, description localization.LocalizedValue, isLeaf bool) (*metadata.GeoObjectType, error) {
	got, err := metadata.NewGeoObjectType(code, geometryType, label, description, isLeaf, a.cache)
	if err != nil {
		return nil, err
	}

	a.cache.AddGeoObjectType(got)
	return got, nil
}

func (a *Adapter) NewHierarchyType(code string, label, description localization.LocalizedValue, organizationCode string) (*metadata.HierarchyType, error) {
	ht, err := metadata.NewHierarchyType(code, label, description, organizationCode)
	if err != nil {
		return nil, err
	}

	a.cache.AddHierarchyType(ht)
	return ht, nil
}

// AddTerm registers a vocabulary, indexing every term below the root
func (a *Adapter) AddTerm(root *terms.Term) {
	a.cache.AddTerm(root)
}

// NewGeoObjectInstance creates an empty instance of the type. When
// generateDefaults is set the instance is given a new uid.
func (a *Adapter) NewGeoObjectInstance(typeCode string, generateDefaults bool) (*geoobjects.GeoObject, error) {
	got, ok := a.cache.GetGeoObjectType(typeCode)
	if !ok {
		return nil, cgrerrors.NewUnresolvedReferenceError("GeoObjectType", typeCode)
	}

	g := geoobjects.New(got)

	if generateDefaults {
		if err := g.SetUID(a.idService.Next()); err != nil {
			return nil, err
		}
	}

	return g, nil
}

func (a *Adapter) NewGeoObjectOverTimeInstance(typeCode string, generateDefaults bool) (*geoobjects.GeoObjectOverTime, error) {
	got, ok := a.cache.GetGeoObjectType(typeCode)
	if !ok {
		return nil, cgrerrors.NewUnresolvedReferenceError("GeoObjectType", typeCode)
	}

	g := geoobjects.NewOverTime(got)

	if generateDefaults {
		if err := g.SetUID(a.idService.Next()); err != nil {
			return nil, err
		}
	}

	return g, nil
}

func (a *Adapter) GetUIDs(amount int) []string {
	return a.idService.GetUIDs(amount)
}

func (a *Adapter) GeoObjectFromJSON(body []byte) (*geoobjects.GeoObject, error) {
	return geoobjects.NewFromJSON(body, a, a.cache)
}

func (a *Adapter) GeoObjectOverTimeFromJSON(body []byte) (*geoobjects.GeoObjectOverTime, error) {
	return geoobjects.NewOverTimeFromJSON(body, a, a.cache)
}

// ImportGeoObjectTypes decodes an array of types and registers each of them
func (a *Adapter) ImportGeoObjectTypes(body []byte) ([]*metadata.GeoObjectType, error) {
	types, err := metadata.NewGeoObjectTypesFromJSONArray(body, a.cache)
	if err != nil {
		return nil, err
	}

	for _, got := range types {
		a.cache.AddGeoObjectType(got)
	}

	return types, nil
}

// ImportHierarchyTypes decodes an array of hierarchies and registers each of
// them. The types referenced by the hierarchies must already be known.
func (a *Adapter) ImportHierarchyTypes(body []byte) ([]*metadata.HierarchyType, error) {
	hts, err := metadata.NewHierarchyTypesFromJSONArray(body, a.cache)
	if err != nil {
		return nil, err
	}

	for _, ht := range hts {
		a.cache.AddHierarchyType(ht)
	}

	return hts, nil
}

// ImportTerms decodes an array of vocabularies and registers each of them
func (a *Adapter) ImportTerms(body []byte) ([]*terms.Term, error) {
	roots := []*terms.Term{}
	if err := json.Unmarshal(body, &roots); err != nil {
		return nil, cgrerrors.NewMalformedWireFormatError("expected an array of terms: %s", err.Error())
	}

	for _, root := range roots {
		a.cache.AddTerm(root)
	}

	return roots, nil
}

var _ geoobjects.InstanceFactory = &Adapter{}
