package cgrregistry

import (
	"context"
	"fmt"
	"log/slog"

	cgrerrors "github.com/diwise/cgr-adapter/pkg/cgr/errors"
	"github.com/diwise/cgr-adapter/pkg/cgr/geometry"
	"github.com/diwise/cgr-adapter/pkg/cgr/metadata"
	"github.com/diwise/cgr-adapter/pkg/cgr/registry"
	"github.com/diwise/cgr-adapter/pkg/cgr/terms"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
)

// Seed registers the configured vocabularies, types and hierarchies with the
// adapter. Terms are applied first, so that attributes can reference them,
// and hierarchies last.
func Seed(ctx context.Context, adapter *registry.Adapter, cfg *Config) error {
	log := logging.GetFromContext(ctx)

	for _, tc := range cfg.Terms {
		adapter.AddTerm(newTerm(tc))
		log.Debug("added vocabulary", slog.String("root", tc.Code))
	}

	for _, tc := range cfg.GeoObjectTypes {
		if err := seedGeoObjectType(adapter, tc); err != nil {
			return fmt.Errorf("failed to seed geo object type %s: %w", tc.Code, err)
		}
		log.Debug("added geo object type", slog.String("code", tc.Code), slog.Int("attributes", len(tc.Attributes)))
	}

	for _, hc := range cfg.Hierarchies {
		if err := seedHierarchyType(adapter, hc); err != nil {
			return fmt.Errorf("failed to seed hierarchy type %s: %w", hc.Code, err)
		}
		log.Debug("added hierarchy type", slog.String("code", hc.Code))
	}

	log.Info("metadata seeded",
		slog.Int("terms", len(cfg.Terms)),
		slog.Int("types", len(cfg.GeoObjectTypes)),
		slog.Int("hierarchies", len(cfg.Hierarchies)),
	)

	return nil
}

func newTerm(tc TermConfig) *terms.Term {
	t := terms.New(tc.Code, tc.Label.LocalizedValue(), tc.Description.LocalizedValue())
	for _, child := range tc.Children {
		t.AddChild(newTerm(child))
	}
	return t
}

func seedGeoObjectType(adapter *registry.Adapter, tc GeoObjectTypeConfig) error {
	geometryType, err := geometry.ParseType(tc.GeometryType)
	if err != nil {
		return err
	}

	attributeTypes := make([]metadata.AttributeType, 0, len(tc.Attributes))
	for _, ac := range tc.Attributes {
		at, err := newAttributeType(adapter.MetadataCache(), ac)
		if err != nil {
			return err
		}
		attributeTypes = append(attributeTypes, at)
	}

	got, err := adapter.NewGeoObjectType(tc.Code, geometryType, tc.Label.LocalizedValue(), tc.Description.LocalizedValue(), tc.IsLeaf)
	if err != nil {
		return err
	}
	got.SetOrganizationCode(tc.OrganizationCode)

	for _, at := range attributeTypes {
		got.AddAttribute(at)
	}

	return nil
}

func newAttributeType(cache metadata.Cache, ac AttributeConfig) (metadata.AttributeType, error) {
	kind, err := metadata.ParseKind(ac.Type)
	if err != nil {
		return nil, err
	}

	if metadata.IsDefaultAttribute(ac.Code) {
		return nil, cgrerrors.NewValidationError("attribute %s is a default attribute and can not be redefined", ac.Code)
	}

	at, err := metadata.Factory(ac.Code, ac.Label.LocalizedValue(), ac.Description.LocalizedValue(), kind, ac.Required, ac.Unique, false)
	if err != nil {
		return nil, err
	}
	at.SetChangeOverTime(ac.ChangeOverTime)

	switch t := at.(type) {
	case *metadata.FloatType:
		t.SetPrecision(ac.Precision)
		t.SetScale(ac.Scale)
	case *metadata.TermType:
		root, ok := cache.GetTerm(ac.RootTerm)
		if !ok {
			return nil, cgrerrors.NewUnresolvedReferenceError("Term", ac.RootTerm)
		}
		t.SetRootTerm(root)
	case *metadata.ClassificationType:
		root, ok := cache.GetTerm(ac.RootTerm)
		if !ok {
			return nil, cgrerrors.NewUnresolvedReferenceError("Term", ac.RootTerm)
		}
		t.SetRootTerm(root)
	}

	return at, nil
}

func seedHierarchyType(adapter *registry.Adapter, hc HierarchyTypeConfig) error {
	roots := make([]*metadata.HierarchyNode, 0, len(hc.Roots))
	for _, nc := range hc.Roots {
		node, err := newHierarchyNode(adapter.MetadataCache(), nc)
		if err != nil {
			return err
		}
		roots = append(roots, node)
	}

	ht, err := adapter.NewHierarchyType(hc.Code, hc.Label.LocalizedValue(), hc.Description.LocalizedValue(), hc.OrganizationCode)
	if err != nil {
		return err
	}

	ht.SetAbstractDescription(hc.AbstractDescription)
	ht.SetProgress(hc.Progress)
	ht.SetAcknowledgement(hc.Acknowledgement)
	ht.SetContact(hc.Contact)

	for _, root := range roots {
		ht.AddRootGeoObjectType(root)
	}

	return nil
}

func newHierarchyNode(cache metadata.Cache, nc HierarchyNodeConfig) (*metadata.HierarchyNode, error) {
	got, ok := cache.GetGeoObjectType(nc.Type)
	if !ok {
		return nil, cgrerrors.NewUnresolvedReferenceError("GeoObjectType", nc.Type)
	}

	node := metadata.NewInheritedHierarchyNode(got, nc.InheritedHierarchyCode)
	for _, child := range nc.Children {
		c, err := newHierarchyNode(cache, child)
		if err != nil {
			return nil, err
		}
		node.AddChild(c)
	}

	return node, nil
}
