package dates

import (
	"time"

	cgrerrors "github.com/diwise/cgr-adapter/pkg/cgr/errors"
)

// Layout is the wire format of every date, always interpreted in UTC
const Layout string = "2006-01-02"

// InfinityEndDate stands in for an open ended interval
var InfinityEndDate = time.Date(5000, time.December, 31, 0, 0, 0, 0, time.UTC)

// Normalize truncates t to midnight UTC. The zero time means "latest" and
// normalizes to InfinityEndDate.
func Normalize(t time.Time) time.Time {
	if t.IsZero() {
		return InfinityEndDate
	}

	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func IsInfinity(t time.Time) bool {
	return Normalize(t).Equal(InfinityEndDate)
}

// Today returns the current date normalized to midnight UTC
func Today() time.Time {
	return Normalize(time.Now())
}

func Format(t time.Time) string {
	return Normalize(t).Format(Layout)
}

func Parse(value string) (time.Time, error) {
	t, err := time.ParseInLocation(Layout, value, time.UTC)
	if err != nil {
		return time.Time{}, cgrerrors.NewMalformedWireFormatError("date %q is not formatted as yyyy-MM-dd", value)
	}

	return t, nil
}
