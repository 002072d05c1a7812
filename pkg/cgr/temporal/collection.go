package temporal

import (
	"encoding/json"
	"slices"
	"sync"
	"time"

	"github.com/diwise/cgr-adapter/pkg/cgr/attributes"
	"github.com/diwise/cgr-adapter/pkg/cgr/dates"
	cgrerrors "github.com/diwise/cgr-adapter/pkg/cgr/errors"
	"github.com/diwise/cgr-adapter/pkg/cgr/metadata"
)

// Collection is the history of one attribute as a list of intervals.
//
// Intervals are kept in insertion order and are expected, but not required,
// to be ordered and non overlapping. Lookups scan the list and act on the
// first interval that matches.
type Collection struct {
	attributeType metadata.AttributeType

	mu     sync.RWMutex
	values []*ValueOverTime
}

func New(at metadata.AttributeType) *Collection {
	return &Collection{
		attributeType: at,
		values:        []*ValueOverTime{},
	}
}

func (c *Collection) AttributeType() metadata.AttributeType {
	return c.attributeType
}

func (c *Collection) Name() string {
	return c.attributeType.Name()
}

func (c *Collection) Add(vot *ValueOverTime) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.values = append(c.values, vot)
}

// Remove deletes the given interval and reports whether it was found
func (c *Collection) Remove(vot *ValueOverTime) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx := slices.Index(c.values, vot)
	if idx < 0 {
		return false
	}

	c.values = slices.Delete(c.values, idx, idx+1)
	return true
}

func (c *Collection) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.values = []*ValueOverTime{}
}

func (c *Collection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.values)
}

func (c *Collection) At(i int) *ValueOverTime {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.values[i]
}

func (c *Collection) All() []*ValueOverTime {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return slices.Clone(c.values)
}

func (c *Collection) onDate(date time.Time) (*ValueOverTime, bool) {
	for _, vot := range c.values {
		if vot.Between(date) {
			return vot, true
		}
	}
	return nil, false
}

// AttributeOnDate returns the container of the first interval covering date.
// The zero date selects the interval that extends to infinity.
func (c *Collection) AttributeOnDate(date time.Time) (attributes.Attribute, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	vot, ok := c.onDate(date)
	if !ok {
		return nil, false
	}
	return vot.attribute, true
}

// ValueOnDate returns the value of the first interval covering date
func (c *Collection) ValueOnDate(date time.Time) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	vot, ok := c.onDate(date)
	if !ok {
		return nil, false
	}
	return vot.attribute.Value(), true
}

// find locates the interval that a write with the given start date applies
// to. If there is none, the start date of the interval to create is returned.
func (c *Collection) find(startDate time.Time) (*ValueOverTime, time.Time) {
	if startDate.IsZero() {
		if vot, ok := c.onDate(dates.InfinityEndDate); ok {
			return vot, vot.startDate
		}
		return nil, dates.Today()
	}

	start := dates.Normalize(startDate)
	if start.After(dates.InfinityEndDate) {
		start = dates.InfinityEndDate
	}

	for _, vot := range c.values {
		if vot.startDate.Equal(start) {
			return vot, start
		}
	}

	return nil, start
}

// GetOrCreate returns the interval starting at startDate, appending a new
// open ended one if none exists. A zero startDate selects the interval that
// extends to infinity, or creates one that starts today. Start dates after
// the infinity date are clamped to it.
func (c *Collection) GetOrCreate(startDate time.Time) *ValueOverTime {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.getOrCreate(startDate)
}

func (c *Collection) getOrCreate(startDate time.Time) *ValueOverTime {
	vot, start := c.find(startDate)
	if vot != nil {
		return vot
	}

	vot = &ValueOverTime{
		startDate: start,
		endDate:   dates.InfinityEndDate,
		attribute: attributes.New(c.attributeType),
	}
	c.values = append(c.values, vot)

	return vot
}

func (c *Collection) GetOrCreateAttribute(startDate time.Time) attributes.Attribute {
	return c.GetOrCreate(startDate).attribute
}

// SetValue stores value for the interval starting at startDate and moves its
// end to endDate. The value and the dates are checked before anything is changed.
func (c *Collection) SetValue(value any, startDate, endDate time.Time) error {
	if err := c.attributeType.Validate(value); err != nil {
		return err
	}

	if err := attributes.New(c.attributeType).SetValue(value); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	_, start := c.find(startDate)
	end := dates.Normalize(endDate)

	if end.Before(start) {
		return cgrerrors.NewValidationError("end date %s of %s is before start date %s", dates.Format(end), c.Name(), dates.Format(start))
	}

	vot := c.getOrCreate(startDate)
	if err := vot.attribute.SetValue(value); err != nil {
		return err
	}
	vot.endDate = end

	return nil
}

type collectionJSON struct {
	Name   string            `json:"name"`
	Type   metadata.Kind     `json:"type"`
	Values []json.RawMessage `json:"values"`
}

func (c *Collection) MarshalJSON() ([]byte, error) {
	j := collectionJSON{
		Name:   c.attributeType.Name(),
		Type:   c.attributeType.Kind(),
		Values: []json.RawMessage{},
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, vot := range c.values {
		b, err := vot.MarshalJSON()
		if err != nil {
			return nil, err
		}
		j.Values = append(j.Values, b)
	}

	return json.Marshal(j)
}

// NewFromJSON decodes the history of the attribute described by at
func NewFromJSON(data []byte, at metadata.AttributeType, cache metadata.Cache) (*Collection, error) {
	j := collectionJSON{}
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, cgrerrors.NewMalformedWireFormatError("failed to unmarshal values of %s: %s", at.Name(), err.Error())
	}

	c := New(at)
	for _, raw := range j.Values {
		vot, err := newValueOverTimeFromJSON(raw, at, cache)
		if err != nil {
			return nil, err
		}
		c.values = append(c.values, vot)
	}

	return c, nil
}
