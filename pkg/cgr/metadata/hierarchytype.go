package metadata

import (
	"encoding/json"
	"fmt"
	"sync"

	cgrerrors "github.com/diwise/cgr-adapter/pkg/cgr/errors"
	"github.com/diwise/cgr-adapter/pkg/cgr/localization"
)

// HierarchyType is a named forest of GeoObjectTypes
type HierarchyType struct {
	code                string
	label               localization.LocalizedValue
	description         localization.LocalizedValue
	organizationCode    string
	abstractDescription string
	progress            string
	acknowledgement     string
	contact             string

	mu    sync.RWMutex
	roots []*HierarchyNode
}

func NewHierarchyType(code string, label, description localization.LocalizedValue, organizationCode string) (*HierarchyType, error) {
	if code == "" {
		return nil, cgrerrors.NewRequiredParameterError("NewHierarchyType", "code")
	}

	return &HierarchyType{
		code:             code,
		label:            label,
		description:      description,
		organizationCode: organizationCode,
		roots:            []*HierarchyNode{},
	}, nil
}

func (ht *HierarchyType) Code() string                                 { return ht.code }
func (ht *HierarchyType) Label() localization.LocalizedValue           { return ht.label }
func (ht *HierarchyType) Description() localization.LocalizedValue     { return ht.description }
func (ht *HierarchyType) OrganizationCode() string                     { return ht.organizationCode }
func (ht *HierarchyType) AbstractDescription() string                  { return ht.abstractDescription }
func (ht *HierarchyType) Progress() string                             { return ht.progress }
func (ht *HierarchyType) Acknowledgement() string                      { return ht.acknowledgement }
func (ht *HierarchyType) Contact() string                              { return ht.contact }
func (ht *HierarchyType) SetLabel(l localization.LocalizedValue)       { ht.label = l }
func (ht *HierarchyType) SetDescription(d localization.LocalizedValue) { ht.description = d }
func (ht *HierarchyType) SetOrganizationCode(c string)                 { ht.organizationCode = c }
func (ht *HierarchyType) SetAbstractDescription(s string)              { ht.abstractDescription = s }
func (ht *HierarchyType) SetProgress(s string)                         { ht.progress = s }
func (ht *HierarchyType) SetAcknowledgement(s string)                  { ht.acknowledgement = s }
func (ht *HierarchyType) SetContact(s string)                          { ht.contact = s }

func (ht *HierarchyType) AddRootGeoObjectType(node *HierarchyNode) {
	ht.mu.Lock()
	defer ht.mu.Unlock()

	ht.roots = append(ht.roots, node)
}

func (ht *HierarchyType) RootGeoObjectTypes() []*HierarchyNode {
	ht.mu.RLock()
	defer ht.mu.RUnlock()

	return append([]*HierarchyNode{}, ht.roots...)
}

// HasGeoObjectType searches every tree of the hierarchy
func (ht *HierarchyType) HasGeoObjectType(typeCode string, excludeInherited bool) bool {
	for _, root := range ht.RootGeoObjectTypes() {
		if root.HierarchyHasGeoObjectType(typeCode, excludeInherited) {
			return true
		}
	}
	return false
}

func (ht *HierarchyType) String() string {
	return fmt.Sprintf("HierarchyType [%s]", ht.code)
}

// HierarchyNode places one GeoObjectType in a tree. Trees are append only
// and must be kept acyclic by the caller.
type HierarchyNode struct {
	geoObjectType          *GeoObjectType
	inheritedHierarchyCode string

	mu       sync.RWMutex
	children []*HierarchyNode
}

func NewHierarchyNode(got *GeoObjectType) *HierarchyNode {
	return NewInheritedHierarchyNode(got, "")
}

// NewInheritedHierarchyNode creates a node that was pulled in from the hierarchy with the given code
func NewInheritedHierarchyNode(got *GeoObjectType, inheritedHierarchyCode string) *HierarchyNode {
	return &HierarchyNode{
		geoObjectType:          got,
		inheritedHierarchyCode: inheritedHierarchyCode,
		children:               []*HierarchyNode{},
	}
}

func (n *HierarchyNode) GeoObjectType() *GeoObjectType {
	return n.geoObjectType
}

func (n *HierarchyNode) InheritedHierarchyCode() string {
	return n.inheritedHierarchyCode
}

func (n *HierarchyNode) SetInheritedHierarchyCode(code string) {
	n.inheritedHierarchyCode = code
}

func (n *HierarchyNode) IsInherited() bool {
	return n.inheritedHierarchyCode != ""
}

func (n *HierarchyNode) AddChild(child *HierarchyNode) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.children = append(n.children, child)
}

func (n *HierarchyNode) Children() []*HierarchyNode {
	n.mu.RLock()
	defer n.mu.RUnlock()

	return append([]*HierarchyNode{}, n.children...)
}

// HierarchyHasGeoObjectType searches this node and its descendants, depth first.
// With excludeInherited set, matching nodes that were inherited from another
// hierarchy are ignored but their descendants are still searched.
func (n *HierarchyNode) HierarchyHasGeoObjectType(typeCode string, excludeInherited bool) bool {
	if (!excludeInherited || !n.IsInherited()) && n.geoObjectType.Code() == typeCode {
		return true
	}

	for _, child := range n.Children() {
		if child.HierarchyHasGeoObjectType(typeCode, excludeInherited) {
			return true
		}
	}

	return false
}

type hierarchyNodeJSON struct {
	GeoObjectType          string            `json:"geoObjectType"`
	InheritedHierarchyCode *string           `json:"inheritedHierarchyCode"`
	Children               []json.RawMessage `json:"children"`
}

func (n *HierarchyNode) MarshalJSON() ([]byte, error) {
	j := hierarchyNodeJSON{
		GeoObjectType: n.geoObjectType.Code(),
		Children:      []json.RawMessage{},
	}

	if n.inheritedHierarchyCode != "" {
		j.InheritedHierarchyCode = &n.inheritedHierarchyCode
	}

	for _, child := range n.Children() {
		b, err := child.MarshalJSON()
		if err != nil {
			return nil, err
		}
		j.Children = append(j.Children, b)
	}

	return json.Marshal(j)
}

// NewHierarchyNodeFromJSON rebuilds a tree, resolving each type code through the cache
func NewHierarchyNodeFromJSON(body []byte, cache Cache) (*HierarchyNode, error) {
	j := hierarchyNodeJSON{}
	if err := json.Unmarshal(body, &j); err != nil {
		return nil, cgrerrors.NewMalformedWireFormatError("failed to unmarshal hierarchy node: %s", err.Error())
	}

	if j.GeoObjectType == "" {
		return nil, cgrerrors.NewMalformedWireFormatError("hierarchy node without a geoObjectType")
	}

	if cache == nil {
		return nil, cgrerrors.NewUnresolvedReferenceError("GeoObjectType", j.GeoObjectType)
	}

	got, ok := cache.GetGeoObjectType(j.GeoObjectType)
	if !ok {
		return nil, cgrerrors.NewUnresolvedReferenceError("GeoObjectType", j.GeoObjectType)
	}

	node := NewHierarchyNode(got)
	if j.InheritedHierarchyCode != nil {
		node.inheritedHierarchyCode = *j.InheritedHierarchyCode
	}

	for _, raw := range j.Children {
		child, err := NewHierarchyNodeFromJSON(raw, cache)
		if err != nil {
			return nil, err
		}
		node.AddChild(child)
	}

	return node, nil
}

type hierarchyTypeJSON struct {
	Code                string                      `json:"code"`
	Label               localization.LocalizedValue `json:"label"`
	Description         localization.LocalizedValue `json:"description"`
	OrganizationCode    string                      `json:"organizationCode"`
	AbstractDescription string                      `json:"abstractDescription,omitempty"`
	Progress            string                      `json:"progress,omitempty"`
	Acknowledgement     string                      `json:"acknowledgement,omitempty"`
	Contact             string                      `json:"contact,omitempty"`
	RootGeoObjectTypes  []json.RawMessage           `json:"rootGeoObjectTypes"`
}

func (ht *HierarchyType) MarshalJSON() ([]byte, error) {
	j := hierarchyTypeJSON{
		Code:                ht.code,
		Label:               ht.label,
		Description:         ht.description,
		OrganizationCode:    ht.organizationCode,
		AbstractDescription: ht.abstractDescription,
		Progress:            ht.progress,
		Acknowledgement:     ht.acknowledgement,
		Contact:             ht.contact,
		RootGeoObjectTypes:  []json.RawMessage{},
	}

	for _, root := range ht.RootGeoObjectTypes() {
		b, err := root.MarshalJSON()
		if err != nil {
			return nil, fmt.Errorf("failed to marshal hierarchy %s: %w", ht.code, err)
		}
		j.RootGeoObjectTypes = append(j.RootGeoObjectTypes, b)
	}

	return json.Marshal(j)
}

func NewHierarchyTypeFromJSON(body []byte, cache Cache) (*HierarchyType, error) {
	j := hierarchyTypeJSON{}
	if err := json.Unmarshal(body, &j); err != nil {
		return nil, cgrerrors.NewMalformedWireFormatError("failed to unmarshal hierarchy type: %s", err.Error())
	}

	if j.Code == "" {
		return nil, cgrerrors.NewMalformedWireFormatError("hierarchy type without a code")
	}

	ht, err := NewHierarchyType(j.Code, j.Label, j.Description, j.OrganizationCode)
	if err != nil {
		return nil, err
	}

	ht.abstractDescription = j.AbstractDescription
	ht.progress = j.Progress
	ht.acknowledgement = j.Acknowledgement
	ht.contact = j.Contact

	for _, raw := range j.RootGeoObjectTypes {
		node, err := NewHierarchyNodeFromJSON(raw, cache)
		if err != nil {
			return nil, fmt.Errorf("failed to unmarshal hierarchy %s: %w", j.Code, err)
		}
		ht.AddRootGeoObjectType(node)
	}

	return ht, nil
}

func NewHierarchyTypesFromJSONArray(body []byte, cache Cache) ([]*HierarchyType, error) {
	items := []json.RawMessage{}
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, cgrerrors.NewMalformedWireFormatError("expected an array of hierarchy types: %s", err.Error())
	}

	result := make([]*HierarchyType, 0, len(items))
	for _, item := range items {
		ht, err := NewHierarchyTypeFromJSON(item, cache)
		if err != nil {
			return nil, err
		}
		result = append(result, ht)
	}

	return result, nil
}
