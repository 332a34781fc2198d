package gasday

import (
	"fmt"
	"time"
)

const (
	dateLayout = "2006-01-02"
	// A UK gas day runs from 05:00 to 05:00 local time.
	startHour = 5
)

var londonLoc *time.Location

func init() {
	var err error
	londonLoc, err = time.LoadLocation("Europe/London")
	if err != nil {
		panic(fmt.Sprintf("failed to load London location: %v", err))
	}
}

// Date is a gas day in ISO form, "YYYY-MM-DD". The zero value is the empty string.
type Date string

func New(year int, month time.Month, day int) Date {
	return Date(time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Format(dateLayout))
}

func Parse(str string) (Date, error) {
	t, err := time.Parse(dateLayout, str)
	if err != nil {
		return "", fmt.Errorf("invalid gas day %q: %w", str, err)
	}
	return Date(t.Format(dateLayout)), nil
}

// FromTime returns the gas day that t falls within.
func FromTime(t time.Time) Date {
	if t.IsZero() {
		return ""
	}
	local := t.In(londonLoc)
	d := New(local.Year(), local.Month(), local.Day())
	if local.Hour() < startHour {
		return d.Sub(1)
	}
	return d
}

func Today() Date {
	return FromTime(time.Now())
}

// FromTimestamp parses the date part of an ISO 8601 timestamp, as used in
// the ApplicableFor field, e.g. "2020-01-01T00:00:00".
func FromTimestamp(str string) (Date, error) {
	if len(str) < len(dateLayout) {
		return "", fmt.Errorf("invalid gas day timestamp %q", str)
	}
	return Parse(str[:len(dateLayout)])
}

func (d Date) String() string {
	return string(d)
}

func (d Date) IsZero() bool {
	return d == ""
}

func (d Date) Time() time.Time {
	t, err := time.Parse(dateLayout, string(d))
	if err != nil {
		return time.Time{}
	}
	return t
}

// StartTime is the instant the gas day begins.
func (d Date) StartTime() time.Time {
	t := d.Time()
	if t.IsZero() {
		return t
	}
	return time.Date(t.Year(), t.Month(), t.Day(), startHour, 0, 0, 0, londonLoc)
}

func (d Date) Add(days int) Date {
	t := d.Time()
	if t.IsZero() {
		return d
	}
	return Date(t.AddDate(0, 0, days).Format(dateLayout))
}

func (d Date) Sub(days int) Date {
	return d.Add(-days)
}

func (d Date) Compare(other Date) int {
	switch {
	case d == other:
		return 0
	case d < other:
		return -1
	default:
		return 1
	}
}

func (d Date) Before(other Date) bool {
	return d.Compare(other) < 0
}

func (d Date) After(other Date) bool {
	return d.Compare(other) > 0
}

// DaysUntil returns the number of days from d to other, negative if other is earlier.
func (d Date) DaysUntil(other Date) int {
	return int((other.Time().Unix() - d.Time().Unix()) / (24 * 60 * 60))
}

// Range returns every gas day from d to to, both inclusive.
func (d Date) Range(to Date) []Date {
	if to.Before(d) {
		return nil
	}
	days := make([]Date, 0, d.DaysUntil(to)+1)
	for curr := d; !curr.After(to); curr = curr.Add(1) {
		days = append(days, curr)
	}
	return days
}
