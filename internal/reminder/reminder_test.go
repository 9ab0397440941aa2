package reminder

import (
	"errors"
	"testing"
	"time"

	"github.com/tahp/LinkManager/internal/model"
)

func TestStatusAt(t *testing.T) {
	at := time.Date(2024, 3, 10, 12, 0, 0, 0, time.Local)
	future := at.Add(2 * time.Hour)
	past := at.Add(-time.Minute)

	tests := []struct {
		name        string
		ts          int64
		wantDisplay string
		wantStatus  State
	}{
		{name: "unset", ts: 0, wantDisplay: "N/A", wantStatus: None},
		{name: "negative", ts: -1, wantDisplay: "Invalid Date", wantStatus: None},
		{name: "out of range", ts: 1 << 40, wantDisplay: "Invalid Date", wantStatus: None},
		{name: "upcoming", ts: future.Unix(), wantDisplay: "2:00 PM", wantStatus: Upcoming},
		{name: "elapsed", ts: past.Unix(), wantDisplay: "11:59 AM", wantStatus: Elapsed},
		{name: "exactly now", ts: at.Unix(), wantDisplay: "12:00 PM", wantStatus: Elapsed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := StatusAt(tt.ts, at)
			if got.DisplayTime != tt.wantDisplay || got.Status != tt.wantStatus {
				t.Errorf("StatusAt(%d) = %+v, want {%s %s}", tt.ts, got, tt.wantDisplay, tt.wantStatus)
			}
		})
	}
}

func TestStatusElapsedStaysElapsed(t *testing.T) {
	// A reminder from yesterday is elapsed even though its time of day is
	// later than the current one.
	at := time.Date(2024, 3, 10, 9, 0, 0, 0, time.Local)
	yesterday := time.Date(2024, 3, 9, 18, 30, 0, 0, time.Local)

	if got := StatusAt(yesterday.Unix(), at); got.Status != Elapsed {
		t.Errorf("status = %s, want elapsed", got.Status)
	}
}

func TestStatusUsesClock(t *testing.T) {
	fixed := time.Date(2024, 1, 1, 8, 0, 0, 0, time.Local)
	now = func() time.Time { return fixed }
	t.Cleanup(func() { now = time.Now })

	if got := Status(fixed.Add(time.Second).Unix()); got.Status != Upcoming {
		t.Errorf("status = %s, want upcoming", got.Status)
	}
}

func TestParseClock(t *testing.T) {
	at := time.Date(2024, 3, 10, 12, 0, 0, 0, time.Local)

	tests := []struct {
		name       string
		input      string
		base       time.Time
		want       time.Time
		wantInPast bool
		wantErr    bool
	}{
		{name: "later today", input: "18:45", base: at, want: time.Date(2024, 3, 10, 18, 45, 0, 0, time.Local)},
		{name: "single digit hour", input: "9:05", base: at, want: time.Date(2024, 3, 10, 9, 5, 0, 0, time.Local), wantInPast: true},
		{name: "within grace", input: "11:59", base: at, want: time.Date(2024, 3, 10, 11, 59, 0, 0, time.Local)},
		{name: "keeps base date", input: "07:00", base: time.Date(2024, 4, 1, 20, 0, 0, 0, time.Local), want: time.Date(2024, 4, 1, 7, 0, 0, 0, time.Local)},
		{name: "empty clears", input: "  ", base: at},
		{name: "garbage", input: "noon", base: at, wantErr: true},
		{name: "out of range", input: "25:00", base: at, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseClock(tt.input, tt.base, at)
			if tt.wantErr {
				if !errors.Is(err, model.ErrValidation) {
					t.Fatalf("expected validation error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			var want int64
			if !tt.want.IsZero() {
				want = tt.want.Unix()
			}
			if got.Timestamp != want {
				t.Errorf("Timestamp = %d, want %d", got.Timestamp, want)
			}
			if got.InPast != tt.wantInPast {
				t.Errorf("InPast = %v, want %v", got.InPast, tt.wantInPast)
			}
		})
	}
}

func TestBaseFor(t *testing.T) {
	at := time.Date(2024, 3, 10, 12, 0, 0, 0, time.Local)
	existing := time.Date(2024, 5, 2, 6, 0, 0, 0, time.Local)

	if got := BaseFor(0, at); !got.Equal(at) {
		t.Errorf("BaseFor(0) = %v, want %v", got, at)
	}
	if y, m, d := BaseFor(existing.Unix(), at).Date(); y != 2024 || m != 5 || d != 2 {
		t.Errorf("BaseFor(existing) date = %d-%d-%d", y, m, d)
	}
}
