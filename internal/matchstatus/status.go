// Package matchstatus derives the display status of a match from its stored
// status and schedule against the league-local clock.
package matchstatus

import (
	"strings"
	"time"
)

// Status is the display state of a match.
type Status string

const (
	Upcoming Status = "upcoming"
	Ongoing  Status = "ongoing"
	Finished Status = "finished"
)

// LiveWindow is how long after tip-off a match is shown as ongoing.
const LiveWindow = 60 * time.Minute

var (
	finishedWords = map[string]bool{"final": true, "finished": true, "done": true}
	liveWords     = map[string]bool{"live": true, "ongoing": true}
)

// Resolve returns the status of a match. A stored finished or live status
// always wins; otherwise the scheduled start is compared with now. Date is
// YYYY-MM-DD, clock is HH:MM or HH:MM:SS, both in now's location. Unknown or
// unparsable schedules resolve to Upcoming.
func Resolve(raw, date, clock string, now time.Time) Status {
	v := strings.ToLower(strings.TrimSpace(raw))
	if finishedWords[v] {
		return Finished
	}
	if liveWords[v] {
		return Ongoing
	}

	start, ok := startTime(strings.TrimSpace(date), strings.TrimSpace(clock), now)
	if !ok {
		return Upcoming
	}
	switch {
	case now.Before(start):
		return Upcoming
	case !now.After(start.Add(LiveWindow)):
		return Ongoing
	default:
		return Finished
	}
}

// ResolvePtr is Resolve over nullable columns.
func ResolvePtr(raw, date, clock *string, now time.Time) Status {
	return Resolve(deref(raw), deref(date), deref(clock), now)
}

func startTime(date, clock string, now time.Time) (time.Time, bool) {
	if date == "" && clock == "" {
		return time.Time{}, false
	}
	loc := now.Location()

	y, m, d := now.Date()
	if date != "" {
		day, err := time.ParseInLocation(time.DateOnly, date, loc)
		if err != nil {
			return time.Time{}, false
		}
		y, m, d = day.Date()
	}

	var hh, mm, ss int
	if clock != "" {
		layout := "15:04"
		if strings.Count(clock, ":") == 2 {
			layout = time.TimeOnly
		}
		t, err := time.Parse(layout, clock)
		if err != nil {
			return time.Time{}, false
		}
		hh, mm, ss = t.Clock()
	}
	return time.Date(y, m, d, hh, mm, ss, 0, loc), true
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
