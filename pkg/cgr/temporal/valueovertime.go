package temporal

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/diwise/cgr-adapter/pkg/cgr/attributes"
	"github.com/diwise/cgr-adapter/pkg/cgr/dates"
	cgrerrors "github.com/diwise/cgr-adapter/pkg/cgr/errors"
	"github.com/diwise/cgr-adapter/pkg/cgr/metadata"
)

// ValueOverTime pairs an inclusive date interval with one attribute value
type ValueOverTime struct {
	startDate time.Time
	endDate   time.Time
	attribute attributes.Attribute
}

// NewValueOverTime creates an interval. A zero endDate means the interval is open ended.
func NewValueOverTime(startDate, endDate time.Time, attribute attributes.Attribute) (*ValueOverTime, error) {
	if startDate.IsZero() {
		return nil, cgrerrors.NewRequiredParameterError("NewValueOverTime", "startDate")
	}

	start := dates.Normalize(startDate)
	end := dates.Normalize(endDate)

	if end.Before(start) {
		return nil, cgrerrors.NewValidationError("end date %s is before start date %s", dates.Format(end), dates.Format(start))
	}

	return &ValueOverTime{
		startDate: start,
		endDate:   end,
		attribute: attribute,
	}, nil
}

func (vot *ValueOverTime) StartDate() time.Time {
	return vot.startDate
}

func (vot *ValueOverTime) EndDate() time.Time {
	return vot.endDate
}

// SetEndDate moves the end of the interval. A zero date opens it up to infinity.
func (vot *ValueOverTime) SetEndDate(endDate time.Time) {
	vot.endDate = dates.Normalize(endDate)
}

func (vot *ValueOverTime) Attribute() attributes.Attribute {
	return vot.attribute
}

func (vot *ValueOverTime) Value() any {
	return vot.attribute.Value()
}

// Between reports whether date lies within the interval, both ends included.
// The zero date is compared as the infinity sentinel.
func (vot *ValueOverTime) Between(date time.Time) bool {
	d := dates.Normalize(date)
	return !d.Before(vot.startDate) && !d.After(vot.endDate)
}

func (vot *ValueOverTime) String() string {
	return fmt.Sprintf("[%s, %s] %v", dates.Format(vot.startDate), dates.Format(vot.endDate), vot.attribute.Value())
}

type valueOverTimeJSON struct {
	StartDate string          `json:"startDate"`
	EndDate   string          `json:"endDate"`
	Value     json.RawMessage `json:"value"`
}

func (vot *ValueOverTime) MarshalJSON() ([]byte, error) {
	value, err := vot.attribute.MarshalJSON()
	if err != nil {
		return nil, err
	}

	return json.Marshal(valueOverTimeJSON{
		StartDate: vot.startDate.Format(dates.Layout),
		EndDate:   vot.endDate.Format(dates.Layout),
		Value:     value,
	})
}

func newValueOverTimeFromJSON(data []byte, at metadata.AttributeType, cache metadata.Cache) (*ValueOverTime, error) {
	j := valueOverTimeJSON{}
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, cgrerrors.NewMalformedWireFormatError("failed to unmarshal value over time of %s: %s", at.Name(), err.Error())
	}

	if j.StartDate == "" {
		return nil, cgrerrors.NewMalformedWireFormatError("value over time of %s has no startDate", at.Name())
	}

	start, err := dates.Parse(j.StartDate)
	if err != nil {
		return nil, err
	}

	end := time.Time{}
	if j.EndDate != "" {
		end, err = dates.Parse(j.EndDate)
		if err != nil {
			return nil, err
		}
	}

	attr := attributes.New(at)
	if err := attr.UnmarshalAttribute(j.Value, cache); err != nil {
		return nil, err
	}

	return NewValueOverTime(start, end, attr)
}
