package notify_test

import (
	"testing"
	"time"

	"github.com/heraldhq/herald/notify"
)

func TestParseCalendar_Translation(t *testing.T) {
	testCases := []struct {
		in   string
		cron string
		err  bool
	}{
		{in: "mon..fri 8-17", cron: "* 8-17 * * 1-5"},
		{in: "mon-fri 8..17", cron: "* 8-17 * * 1-5"},
		{in: "sat,sun", cron: "* * * * 6,0"},
		{in: "22:0..29", cron: "0-29 22 * * *"},
		{in: "mon 8-12:30", cron: "30 8-12 * * 1"},
		{in: "*/15 8-17 * * 1-5", cron: "*/15 8-17 * * 1-5"},
		{in: "", err: true},
		{in: "mon 25", err: true},
		{in: "fri..mon", err: true},
		{in: "funday 8", err: true},
		{in: "mon 8 9", err: true},
	}
	for _, tc := range testCases {
		c, err := notify.ParseCalendar(tc.in)
		if tc.err {
			if err == nil {
				t.Errorf("%q: expected error, got cron %q", tc.in, c.Cron())
			}
			continue
		}
		if err != nil {
			t.Errorf("%q: unexpected error: %v", tc.in, err)
			continue
		}
		if got := c.Cron(); got != tc.cron {
			t.Errorf("%q: got cron %q exp %q", tc.in, got, tc.cron)
		}
		if got := c.String(); got != tc.in {
			t.Errorf("%q: String() changed the expression to %q", tc.in, got)
		}
	}
}

func TestCalendarMatcher_Contains(t *testing.T) {
	c := notify.MustParseCalendar("mon..fri 8-17")
	// 2024-03-04 is a Monday.
	testCases := []struct {
		t   time.Time
		exp bool
	}{
		{t: time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC), exp: true},
		{t: time.Date(2024, 3, 4, 17, 59, 59, 999, time.UTC), exp: true},
		{t: time.Date(2024, 3, 4, 18, 0, 0, 0, time.UTC), exp: false},
		{t: time.Date(2024, 3, 4, 7, 59, 30, 0, time.UTC), exp: false},
		{t: time.Date(2024, 3, 8, 12, 0, 0, 0, time.UTC), exp: true},
		{t: time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC), exp: false},
		{t: time.Time{}, exp: false},
	}
	for _, tc := range testCases {
		if got := c.Contains(tc.t); got != tc.exp {
			t.Errorf("%v: got %v exp %v", tc.t, got, tc.exp)
		}
	}
}

func TestCalendarMatcher_Location(t *testing.T) {
	c := notify.MustParseCalendar("8-9")
	zone := time.FixedZone("UTC+2", 2*60*60)
	ts := time.Date(2024, 3, 4, 6, 30, 0, 0, time.UTC)
	if c.Contains(ts) {
		t.Error("06:30 UTC must not be inside 8-9")
	}
	if !c.Contains(ts.In(zone)) {
		t.Error("08:30 UTC+2 must be inside 8-9")
	}
}
