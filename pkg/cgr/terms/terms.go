package terms

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/diwise/cgr-adapter/pkg/cgr/localization"
)

// Term is an entry in a controlled vocabulary. Terms form trees where the
// root is referenced by classification attributes.
type Term struct {
	code        string
	label       localization.LocalizedValue
	description localization.LocalizedValue

	mu       sync.RWMutex
	children []*Term
}

func New(code string, label, description localization.LocalizedValue) *Term {
	return &Term{
		code:        code,
		label:       label,
		description: description,
		children:    []*Term{},
	}
}

func (t *Term) Code() string {
	return t.code
}

func (t *Term) Label() localization.LocalizedValue {
	return t.label
}

func (t *Term) Description() localization.LocalizedValue {
	return t.description
}

func (t *Term) AddChild(child *Term) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.children = append(t.children, child)
}

func (t *Term) Children() []*Term {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return append([]*Term{}, t.children...)
}

// Find searches this term and all of its descendants for the given code
func (t *Term) Find(code string) (*Term, bool) {
	if t.code == code {
		return t, true
	}

	for _, child := range t.Children() {
		if found, ok := child.Find(code); ok {
			return found, true
		}
	}

	return nil, false
}

// Walk calls fn for this term and every descendant, depth first
func (t *Term) Walk(fn func(*Term)) {
	fn(t)
	for _, child := range t.Children() {
		child.Walk(fn)
	}
}

func (t *Term) String() string {
	return fmt.Sprintf("Term [%s]", t.code)
}

type termJSON struct {
	Code        string                      `json:"code"`
	Label       localization.LocalizedValue `json:"label"`
	Description localization.LocalizedValue `json:"description"`
	Children    []*Term                     `json:"children"`
}

func (t *Term) MarshalJSON() ([]byte, error) {
	return json.Marshal(termJSON{
		Code:        t.code,
		Label:       t.label,
		Description: t.description,
		Children:    t.Children(),
	})
}

func (t *Term) UnmarshalJSON(data []byte) error {
	tj := termJSON{}
	if err := json.Unmarshal(data, &tj); err != nil {
		return err
	}

	if tj.Code == "" {
		return fmt.Errorf("term without a code is not supported")
	}

	t.code = tj.Code
	t.label = tj.Label
	t.description = tj.Description
	t.children = []*Term{}
	for _, c := range tj.Children {
		if c != nil {
			t.children = append(t.children, c)
		}
	}

	return nil
}

func NewFromJSON(body []byte) (*Term, error) {
	t := &Term{}
	err := json.Unmarshal(body, t)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal term: %w", err)
	}
	return t, nil
}
