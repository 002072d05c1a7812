package temporal

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/diwise/cgr-adapter/pkg/cgr/dates"
	cgrerrors "github.com/diwise/cgr-adapter/pkg/cgr/errors"
	"github.com/diwise/cgr-adapter/pkg/cgr/localization"
	"github.com/diwise/cgr-adapter/pkg/cgr/metadata"
	"github.com/diwise/cgr-adapter/pkg/cgr/terms"
	"github.com/matryer/is"
)

func TestValueOnDate(t *testing.T) {
	is := is.New(t)

	c := New(newCharacterType(t))
	is.NoErr(c.SetValue("A", date(2020, 1, 1), date(2020, 12, 31)))
	is.NoErr(c.SetValue("B", date(2021, 1, 1), time.Time{}))

	v, ok := c.ValueOnDate(date(2020, 6, 15))
	is.True(ok)
	is.Equal(v, "A")

	v, ok = c.ValueOnDate(date(2021, 1, 1))
	is.True(ok)
	is.Equal(v, "B")

	v, ok = c.ValueOnDate(time.Time{})
	is.True(ok)
	is.Equal(v, "B")

	_, ok = c.ValueOnDate(date(2019, 12, 31))
	is.True(!ok) // no value before the first interval
}

func TestBoundariesAreInclusive(t *testing.T) {
	is := is.New(t)

	c := New(newCharacterType(t))
	is.NoErr(c.SetValue("A", date(2020, 1, 1), date(2020, 12, 31)))

	v, ok := c.ValueOnDate(time.Date(2020, time.December, 31, 23, 59, 59, 0, time.UTC))
	is.True(ok)
	is.Equal(v, "A")

	_, ok = c.ValueOnDate(date(2021, 1, 1))
	is.True(!ok)
}

func TestGetOrCreateAttribute(t *testing.T) {
	is := is.New(t)

	c := New(newCharacterType(t))

	first := c.GetOrCreateAttribute(date(2022, 1, 1))
	is.Equal(c.Len(), 1)
	is.Equal(c.At(0).StartDate(), date(2022, 1, 1))
	is.Equal(c.At(0).EndDate(), dates.InfinityEndDate)
	is.True(!first.IsSet())

	second := c.GetOrCreateAttribute(time.Date(2022, time.January, 1, 18, 0, 0, 0, time.UTC))
	is.Equal(c.Len(), 1) // the same start date should not create another interval
	is.True(first == second)
}

func TestGetOrCreateWithoutStartDate(t *testing.T) {
	is := is.New(t)

	c := New(newCharacterType(t))

	vot := c.GetOrCreate(time.Time{})
	is.Equal(vot.StartDate(), dates.Today())
	is.True(dates.IsInfinity(vot.EndDate()))

	is.NoErr(c.SetValue("latest", time.Time{}, time.Time{}))
	is.Equal(c.Len(), 1) // the open ended interval should be reused
	is.Equal(vot.Value(), "latest")
}

func TestSetValueWritesThroughHeldContainer(t *testing.T) {
	is := is.New(t)

	c := New(newCharacterType(t))

	held := c.GetOrCreateAttribute(date(2022, 1, 1))
	is.NoErr(c.SetValue("X", date(2022, 1, 1), time.Time{}))
	is.True(c.GetOrCreateAttribute(date(2022, 1, 1)) == held)
	is.Equal(held.Value(), "X")

	is.NoErr(held.SetValue("Y"))
	v, ok := c.ValueOnDate(date(2022, 6, 1))
	is.True(ok)
	is.Equal(v, "Y")
}

func TestStartDateAfterInfinityIsClamped(t *testing.T) {
	is := is.New(t)

	c := New(newCharacterType(t))

	vot := c.GetOrCreate(date(6000, 1, 1))
	is.Equal(vot.StartDate(), dates.InfinityEndDate)
	is.True(!vot.StartDate().After(vot.EndDate()))

	is.NoErr(c.SetValue("far", date(6000, 1, 1), time.Time{}))
	is.Equal(c.Len(), 1)

	v, ok := c.ValueOnDate(time.Time{})
	is.True(ok)
	is.Equal(v, "far")
}

func TestConcurrentReadsAndWrites(t *testing.T) {
	is := is.New(t)

	c := New(newCharacterType(t))
	is.NoErr(c.SetValue("A", date(2020, 1, 1), time.Time{}))

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			c.SetValue("B", date(2020+i%5, 1, 1), time.Time{})
		}()
		go func() {
			defer wg.Done()
			c.ValueOnDate(date(2022, 6, 1))
			json.Marshal(c)
		}()
	}
	wg.Wait()

	is.Equal(c.Len(), 5)

	_, err := json.Marshal(c)
	is.NoErr(err)
}

func TestSetValueWithEndBeforeStartLeavesCollectionUnchanged(t *testing.T) {
	is := is.New(t)

	c := New(newCharacterType(t))
	is.NoErr(c.SetValue("A", date(2020, 1, 1), time.Time{}))

	err := c.SetValue("B", date(2021, 1, 1), date(2020, 6, 1))
	is.True(errors.Is(err, cgrerrors.ErrValidation))
	is.Equal(c.Len(), 1)

	v, _ := c.ValueOnDate(time.Time{})
	is.Equal(v, "A")
}

func TestSetValueWithUnknownTermLeavesValueUnchanged(t *testing.T) {
	is := is.New(t)

	at, _ := metadata.Factory("status", localization.New("Status"), localization.New(""), metadata.KindTerm, false, false, false)
	at.(*metadata.TermType).SetRootTerm(terms.NewStatusTerms())

	c := New(at)
	is.NoErr(c.SetValue([]string{terms.StatusActive}, date(2020, 1, 1), time.Time{}))

	err := c.SetValue([]string{"CGR:Status-Unknown"}, date(2020, 1, 1), time.Time{})
	is.True(errors.Is(err, cgrerrors.ErrUnknownTerm))

	v, _ := c.ValueOnDate(date(2020, 2, 1))
	is.Equal(v, []string{terms.StatusActive})
}

func TestOverlappingIntervalsResolveToTheFirstMatch(t *testing.T) {
	is := is.New(t)

	c := New(newCharacterType(t))
	is.NoErr(c.SetValue("first", date(2020, 1, 1), date(2020, 12, 31)))
	is.NoErr(c.SetValue("second", date(2020, 6, 1), time.Time{}))

	is.Equal(c.Len(), 2) // overlapping intervals are kept as they are

	v, _ := c.ValueOnDate(date(2020, 7, 1))
	is.Equal(v, "first")

	v, _ = c.ValueOnDate(date(2021, 7, 1))
	is.Equal(v, "second")
}

func TestListOperations(t *testing.T) {
	is := is.New(t)

	c := New(newCharacterType(t))
	a := c.GetOrCreate(date(2020, 1, 1))
	b := c.GetOrCreate(date(2021, 1, 1))
	is.Equal(c.Len(), 2)

	is.True(c.Remove(a))
	is.True(!c.Remove(a))
	is.Equal(c.All(), []*ValueOverTime{b})

	vot, err := NewValueOverTime(date(2019, 1, 1), date(2019, 12, 31), a.Attribute())
	is.NoErr(err)
	c.Add(vot)
	is.Equal(c.Len(), 2)

	c.Clear()
	is.Equal(c.Len(), 0)
}

func TestNewValueOverTimeRequiresStartDate(t *testing.T) {
	is := is.New(t)

	_, err := NewValueOverTime(time.Time{}, time.Time{}, nil)
	is.True(errors.Is(err, cgrerrors.ErrRequiredParameter))
}

func TestNewValueOverTimeNormalizesEndDate(t *testing.T) {
	is := is.New(t)

	vot, err := NewValueOverTime(date(2020, 1, 1), time.Time{}, nil)
	is.NoErr(err)
	is.Equal(vot.EndDate(), dates.InfinityEndDate)
}

func TestCollectionRoundTrip(t *testing.T) {
	is := is.New(t)

	at := newCharacterType(t)
	c := New(at)
	is.NoErr(c.SetValue("A", date(2020, 1, 1), date(2020, 12, 31)))
	is.NoErr(c.SetValue("B", date(2021, 1, 1), time.Time{}))
	c.GetOrCreate(date(2022, 1, 1))

	first, err := json.Marshal(c)
	is.NoErr(err)

	const expected string = `{"name":"nickname","type":"character","values":[{"startDate":"2020-01-01","endDate":"2020-12-31","value":"A"},{"startDate":"2021-01-01","endDate":"5000-12-31","value":"B"},{"startDate":"2022-01-01","endDate":"5000-12-31","value":null}]}`
	is.Equal(string(first), expected)

	decoded, err := NewFromJSON(first, at, nil)
	is.NoErr(err)

	second, err := json.Marshal(decoded)
	is.NoErr(err)
	is.Equal(string(first), string(second))
}

func TestMalformedStartDate(t *testing.T) {
	is := is.New(t)

	body := `{"name":"nickname","type":"character","values":[{"startDate":"01/01/2020","endDate":"5000-12-31","value":"A"}]}`
	_, err := NewFromJSON([]byte(body), newCharacterType(t), nil)
	is.True(errors.Is(err, cgrerrors.ErrMalformedWireFormat))
}

func newCharacterType(t *testing.T) metadata.AttributeType {
	is := is.New(t)
	at, err := metadata.Factory("nickname", localization.New("Nickname"), localization.New(""), metadata.KindCharacter, false, false, false)
	is.NoErr(err)
	at.SetChangeOverTime(true)
	return at
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
