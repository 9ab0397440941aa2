// Package reminder derives the display state of a link's reminder.
//
// A reminder timestamp is an absolute instant: once it has passed it stays
// elapsed. It does not recur daily.
package reminder

import (
	"strings"
	"time"

	"github.com/tahp/LinkManager/internal/model"
)

// State is the derived status of a reminder.
type State string

const (
	None     State = "none"
	Upcoming State = "upcoming"
	Elapsed  State = "elapsed"
)

// Info is what a list view shows for a reminder.
type Info struct {
	DisplayTime string `json:"display_time"`
	Status      State  `json:"status"`
}

// PastGrace is how far in the past a parsed reminder may fall before
// ParseClock flags it.
const PastGrace = 60 * time.Second

var now = time.Now

// Status derives the reminder state against the current time.
func Status(ts int64) Info {
	return StatusAt(ts, now())
}

// StatusAt derives the reminder state of ts relative to at. The display
// time is the 12-hour local clock time, e.g. "3:04 PM".
func StatusAt(ts int64, at time.Time) Info {
	if ts == 0 {
		return Info{DisplayTime: "N/A", Status: None}
	}
	if ts < 0 {
		return Info{DisplayTime: "Invalid Date", Status: None}
	}
	t := time.Unix(ts, 0).Local()
	if t.Year() > 9999 {
		return Info{DisplayTime: "Invalid Date", Status: None}
	}

	state := Upcoming
	if ts <= at.Unix() {
		state = Elapsed
	}
	return Info{DisplayTime: t.Format("3:04 PM"), Status: state}
}

// Clock is the result of parsing a time of day.
type Clock struct {
	Timestamp int64
	// InPast is set when the instant lies more than PastGrace before now.
	InPast bool
}

// ParseClock combines an "HH:MM" time of day with the calendar date of
// base in base's location. An empty input clears the reminder.
func ParseClock(input string, base, at time.Time) (Clock, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return Clock{}, nil
	}

	tod, err := time.Parse("15:04", input)
	if err != nil {
		return Clock{}, model.NewValidationError("reminder", "time must be HH:MM (24-hour)")
	}

	y, m, d := base.Date()
	t := time.Date(y, m, d, tod.Hour(), tod.Minute(), 0, 0, base.Location())
	return Clock{
		Timestamp: t.Unix(),
		InPast:    at.Sub(t) > PastGrace,
	}, nil
}

// BaseFor returns the date a new reminder time should be anchored to: the
// date of an existing reminder, or today when there is none.
func BaseFor(existing int64, at time.Time) time.Time {
	if existing > 0 {
		return time.Unix(existing, 0).Local()
	}
	return at.Local()
}
