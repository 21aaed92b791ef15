package workflow

import (
	"fmt"
	"math"
	"time"
)

// Stage dates are civil dates stored as midnight UTC.

// Day truncates t to its UTC calendar date.
func Day(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// Today returns the calendar date of now as observed in loc, as midnight UTC.
func Today(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	l := now.In(loc)
	return time.Date(l.Year(), l.Month(), l.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns ceil((to - from) / 1 day) on date-only values.
func DaysBetween(from, to time.Time) int {
	return int(math.Ceil(Day(to).Sub(Day(from)).Hours() / 24))
}

// DayCounting selects how schedule offsets are counted.
type DayCounting string

const (
	CalendarDays DayCounting = "calendar"
	BusinessDays DayCounting = "business"
)

func ParseDayCounting(s string) (DayCounting, error) {
	switch DayCounting(s) {
	case CalendarDays, "":
		return CalendarDays, nil
	case BusinessDays:
		return BusinessDays, nil
	}
	return "", fmt.Errorf("unknown day counting policy %q", s)
}

// AddDays moves base forward by n days under the policy. Business counting
// skips Saturdays and Sundays; a weekend base with n == 0 stays put.
func (d DayCounting) AddDays(base time.Time, n int) time.Time {
	base = Day(base)
	if d != BusinessDays {
		return base.AddDate(0, 0, n)
	}
	for n > 0 {
		base = base.AddDate(0, 0, 1)
		if wd := base.Weekday(); wd != time.Saturday && wd != time.Sunday {
			n--
		}
	}
	return base
}
