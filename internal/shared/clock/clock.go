// Package clock decides what "today" means for the service.
package clock

import "time"

const DateLayout = "2006-01-02"

type Clock interface {
	Now() time.Time
	// Today is the current calendar day in the configured zone, returned as
	// midnight UTC so it compares directly with stored DATE values.
	Today() time.Time
}

type zoned struct {
	loc *time.Location
}

// New returns a wall clock evaluating calendar days in loc (UTC when nil).
func New(loc *time.Location) Clock {
	if loc == nil {
		loc = time.UTC
	}
	return zoned{loc: loc}
}

func (z zoned) Now() time.Time { return time.Now() }

func (z zoned) Today() time.Time {
	return DateOf(time.Now().In(z.loc))
}

type fixed struct {
	t time.Time
}

// Fixed returns a clock frozen at t. Used by tests and the seeder.
func Fixed(t time.Time) Clock {
	return fixed{t: t}
}

func (f fixed) Now() time.Time   { return f.t }
func (f fixed) Today() time.Time { return DateOf(f.t) }

// DateOf drops the clock part of t, keeping t's own calendar date.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}
