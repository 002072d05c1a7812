package metadata

import (
	"maps"
	"slices"
	"sync"

	"github.com/diwise/cgr-adapter/pkg/cgr/terms"
)

// Cache resolves codes found in wire documents to metadata objects
type Cache interface {
	GetGeoObjectType(code string) (*GeoObjectType, bool)
	GetHierarchyType(code string) (*HierarchyType, bool)
	GetTerm(code string) (*terms.Term, bool)
}

// MemoryCache is a Cache that is safe for concurrent use
type MemoryCache struct {
	mu             sync.RWMutex
	geoObjectTypes map[string]*GeoObjectType
	hierarchyTypes map[string]*HierarchyType
	terms          map[string]*terms.Term
	rootTerms      map[string]*terms.Term
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		geoObjectTypes: map[string]*GeoObjectType{},
		hierarchyTypes: map[string]*HierarchyType{},
		terms:          map[string]*terms.Term{},
		rootTerms:      map[string]*terms.Term{},
	}
}

func (c *MemoryCache) GetGeoObjectType(code string) (*GeoObjectType, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	got, ok := c.geoObjectTypes[code]
	return got, ok
}

func (c *MemoryCache) GetHierarchyType(code string) (*HierarchyType, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ht, ok := c.hierarchyTypes[code]
	return ht, ok
}

func (c *MemoryCache) GetTerm(code string) (*terms.Term, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	t, ok := c.terms[code]
	return t, ok
}

func (c *MemoryCache) AddGeoObjectType(got *GeoObjectType) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.geoObjectTypes[got.Code()] = got
}

func (c *MemoryCache) AddHierarchyType(ht *HierarchyType) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.hierarchyTypes[ht.Code()] = ht
}

// AddTerm indexes the term and every term below it
func (c *MemoryCache) AddTerm(root *terms.Term) {
	c.mu.Lock()
	defer c.mu.Unlock()

	root.Walk(func(t *terms.Term) {
		c.terms[t.Code()] = t
	})
	c.rootTerms[root.Code()] = root
}

func (c *MemoryCache) RemoveGeoObjectType(code string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.geoObjectTypes, code)
}

func (c *MemoryCache) RemoveHierarchyType(code string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.hierarchyTypes, code)
}

// GeoObjectTypes returns all cached types ordered by code
func (c *MemoryCache) GeoObjectTypes() []*GeoObjectType {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make([]*GeoObjectType, 0, len(c.geoObjectTypes))
	for _, code := range slices.Sorted(maps.Keys(c.geoObjectTypes)) {
		result = append(result, c.geoObjectTypes[code])
	}
	return result
}

func (c *MemoryCache) HierarchyTypes() []*HierarchyType {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make([]*HierarchyType, 0, len(c.hierarchyTypes))
	for _, code := range slices.Sorted(maps.Keys(c.hierarchyTypes)) {
		result = append(result, c.hierarchyTypes[code])
	}
	return result
}

// Terms returns every indexed term, children included, ordered by code
func (c *MemoryCache) Terms() []*terms.Term {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make([]*terms.Term, 0, len(c.terms))
	for _, code := range slices.Sorted(maps.Keys(c.terms)) {
		result = append(result, c.terms[code])
	}
	return result
}

// RootTerms returns the vocabularies that were added with AddTerm
func (c *MemoryCache) RootTerms() []*terms.Term {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make([]*terms.Term, 0, len(c.rootTerms))
	for _, code := range slices.Sorted(maps.Keys(c.rootTerms)) {
		result = append(result, c.rootTerms[code])
	}
	return result
}
