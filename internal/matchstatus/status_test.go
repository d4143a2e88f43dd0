package matchstatus

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	loc := time.FixedZone("league", 10*3600)
	now := time.Date(2025, 6, 14, 19, 30, 0, 0, loc)

	tests := []struct {
		name  string
		raw   string
		date  string
		clock string
		want  Status
	}{
		{"finished override beats future date", "finished", "2030-01-01", "10:00", Finished},
		{"final synonym", "FINAL", "", "", Finished},
		{"done synonym", " done ", "", "", Finished},
		{"live override beats past date", "live", "2020-01-01", "10:00", Ongoing},
		{"ongoing synonym", "Ongoing", "", "", Ongoing},
		{"no schedule", "", "", "", Upcoming},
		{"no schedule unknown raw", "postponed", "", "", Upcoming},
		{"before start", "scheduled", "2025-06-14", "20:00", Upcoming},
		{"exactly at start", "", "2025-06-14", "19:30", Ongoing},
		{"inside window", "", "2025-06-14", "19:00:00", Ongoing},
		{"window edge", "", "2025-06-14", "18:30", Ongoing},
		{"after window", "", "2025-06-14", "18:29", Finished},
		{"date only is midnight", "", "2025-06-14", "", Finished},
		{"future date only", "", "2025-06-15", "", Upcoming},
		{"time only uses today", "", "", "19:10", Ongoing},
		{"time only later today", "", "", "21:00", Upcoming},
		{"bad date", "", "14/06/2025", "19:00", Upcoming},
		{"bad time", "", "2025-06-14", "7pm", Upcoming},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.raw, tt.date, tt.clock, now))
		})
	}
}

func TestResolvePtr(t *testing.T) {
	now := time.Date(2025, 6, 14, 12, 0, 0, 0, time.UTC)
	date := "2025-06-13"
	assert.Equal(t, Finished, ResolvePtr(nil, &date, nil, now))
	assert.Equal(t, Upcoming, ResolvePtr(nil, nil, nil, now))
}

func TestClock(t *testing.T) {
	t.Run("offset applied", func(t *testing.T) {
		c := NewClock("480")
		_, off := c.Now().Zone()
		assert.Equal(t, 8*3600, off)
	})

	t.Run("negative offset", func(t *testing.T) {
		_, off := NewClock("-300").Now().Zone()
		assert.Equal(t, -5*3600, off)
	})

	t.Run("invalid falls back to local", func(t *testing.T) {
		assert.Equal(t, time.Local, NewClock("abc").Location())
		assert.Equal(t, time.Local, NewClock("").Location())
	})

	t.Run("fixed", func(t *testing.T) {
		at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
		assert.True(t, at.Equal(FixedClock(at).Now()))
	})
}
