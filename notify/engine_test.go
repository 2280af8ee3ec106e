package notify_test

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/go-cmp/cmp"
	"github.com/heraldhq/herald/notify"
)

type recordingDiag struct {
	matched []string
}

func (d *recordingDiag) RuleMatched(rule string, targets []string) {
	d.matched = append(d.matched, rule)
}

func TestEngine_Dedup(t *testing.T) {
	rules := []notify.Rule{
		{Name: "a", Targets: []string{"mail", "ops"}},
		{Name: "never", Mode: notify.Any, Targets: []string{"pager"}},
		{Name: "b", Targets: []string{"ops", "chat", "mail"}},
	}
	d := new(recordingDiag)
	e := notify.NewEngine(time.UTC, d)
	res := e.Evaluate(rules, notify.Event{Severity: notify.Error})

	if diff := cmp.Diff([]string{"mail", "ops", "chat"}, res.Targets); diff != "" {
		t.Errorf("unexpected targets -exp/+got:\n%s", diff)
	}
	if diff := cmp.Diff([]string{"a", "b"}, res.Matched); diff != "" {
		t.Errorf("unexpected matched rules -exp/+got:\n%s", diff)
	}
	if diff := cmp.Diff(res.Matched, d.matched); diff != "" {
		t.Errorf("unexpected diagnostics -exp/+got:\n%s", diff)
	}
}

func TestEngine_UnresolvedTargetsPassThrough(t *testing.T) {
	rules := []notify.Rule{{Name: "r", Targets: []string{"deleted-endpoint"}}}
	got := notify.NewEngine(time.UTC, new(recordingDiag)).Targets(rules, notify.Event{})
	if diff := cmp.Diff([]string{"deleted-endpoint"}, got); diff != "" {
		t.Errorf("unexpected targets -exp/+got:\n%s", diff)
	}
}

func TestEngine_ClockAndLocation(t *testing.T) {
	mock := clock.NewMock()
	// Monday 2024-03-04 07:30 UTC is 09:30 in UTC+2.
	mock.Set(time.Date(2024, 3, 4, 7, 30, 0, 0, time.UTC))

	e := notify.NewEngine(time.FixedZone("UTC+2", 2*60*60), new(recordingDiag))
	e.Clock = mock

	rules := []notify.Rule{{
		Name:      "office-hours",
		Calendars: []notify.CalendarMatcher{notify.MustParseCalendar("mon..fri 9-17")},
		Targets:   []string{"ops"},
	}}
	if got := e.Targets(rules, notify.Event{}); len(got) != 1 {
		t.Errorf("expected rule to fire using the engine clock, got %v", got)
	}

	mock.Add(9 * time.Hour)
	if got := e.Targets(rules, notify.Event{}); len(got) != 0 {
		t.Errorf("expected rule not to fire after office hours, got %v", got)
	}
}
