package matchstatus

import (
	"strconv"
	"strings"
	"time"
)

// Clock yields the league-local current time.
type Clock struct {
	loc *time.Location
	now func() time.Time
}

// NewClock builds a clock from a UTC offset in minutes (480 is UTC+8).
// An empty or malformed offset falls back to the host's local zone.
func NewClock(offsetMinutes string) Clock {
	loc := time.Local
	if v := strings.TrimSpace(offsetMinutes); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			loc = time.FixedZone("league", n*60)
		}
	}
	return Clock{loc: loc, now: time.Now}
}

// FixedClock always reports t, in t's location.
func FixedClock(t time.Time) Clock {
	return Clock{loc: t.Location(), now: func() time.Time { return t }}
}

// Now returns the current instant in league-local time.
func (c Clock) Now() time.Time {
	if c.now == nil {
		return time.Now()
	}
	return c.now().In(c.loc)
}

// Location is the league time zone.
func (c Clock) Location() *time.Location {
	if c.loc == nil {
		return time.Local
	}
	return c.loc
}
