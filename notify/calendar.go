package notify

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gorhill/cronexpr"
)

// CalendarMatcher is a parsed match-calendar predicate, a recurring time window.
//
// Two forms are accepted:
//
//	mon..fri 8-17        weekdays and hours[:minutes], systemd calendar style
//	*/15 8-17 * * 1-5    a five field cron expression
//
// A timestamp is inside the window when the minute containing it matches.
type CalendarMatcher struct {
	text string
	cron string
	expr *cronexpr.Expression
}

// ParseCalendar parses a calendar window expression.
func ParseCalendar(s string) (CalendarMatcher, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return CalendarMatcher{}, fmt.Errorf("invalid match-calendar: empty expression")
	}
	cron := s
	if len(strings.Fields(s)) < 5 {
		var err error
		cron, err = translateCalendar(s)
		if err != nil {
			return CalendarMatcher{}, fmt.Errorf("invalid match-calendar %q: %v", s, err)
		}
	}
	expr, err := cronexpr.Parse(cron)
	if err != nil {
		return CalendarMatcher{}, fmt.Errorf("invalid match-calendar %q: %v", s, err)
	}
	return CalendarMatcher{text: s, cron: cron, expr: expr}, nil
}

// MustParseCalendar is like ParseCalendar but panics on error.
func MustParseCalendar(s string) CalendarMatcher {
	c, err := ParseCalendar(s)
	if err != nil {
		panic(err)
	}
	return c
}

func (c CalendarMatcher) String() string {
	return c.text
}

// Cron returns the cron expression the window was translated to.
func (c CalendarMatcher) Cron() string {
	return c.cron
}

// Contains reports whether t falls inside the window, evaluated in t's location.
func (c CalendarMatcher) Contains(t time.Time) bool {
	if c.expr == nil || t.IsZero() {
		return false
	}
	minute := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), 0, 0, t.Location())
	next := c.expr.Next(minute.Add(-time.Second))
	return next.Equal(minute)
}

func (c CalendarMatcher) Matches(e Event) bool {
	return c.Contains(e.Timestamp)
}

var weekdays = map[string]int{
	"sun": 0, "mon": 1, "tue": 2, "wed": 3, "thu": 4, "fri": 5, "sat": 6,
}

// translateCalendar converts "[weekdays] [hours[:minutes]]" into a cron expression.
func translateCalendar(s string) (string, error) {
	fields := strings.Fields(s)
	dow, hours, minutes := "*", "*", "*"

	if len(fields) > 0 && isWeekdaySpec(fields[0]) {
		var err error
		if dow, err = translateList(fields[0], weekdayValue); err != nil {
			return "", err
		}
		fields = fields[1:]
	}
	switch len(fields) {
	case 0:
	case 1:
		hm := strings.SplitN(fields[0], ":", 2)
		var err error
		if hours, err = translateList(hm[0], rangeValue(0, 23)); err != nil {
			return "", err
		}
		if len(hm) == 2 {
			if minutes, err = translateList(hm[1], rangeValue(0, 59)); err != nil {
				return "", err
			}
		}
	default:
		return "", fmt.Errorf("unexpected %q", strings.Join(fields, " "))
	}
	return strings.Join([]string{minutes, hours, "*", "*", dow}, " "), nil
}

func isWeekdaySpec(s string) bool {
	first := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == '.' || r == '-' })
	if len(first) == 0 {
		return false
	}
	_, ok := weekdays[strings.ToLower(first[0])]
	return ok
}

func weekdayValue(s string) (int, error) {
	d, ok := weekdays[strings.ToLower(s)]
	if !ok {
		return 0, fmt.Errorf("unknown weekday %q", s)
	}
	return d, nil
}

func rangeValue(min, max int) func(string) (int, error) {
	return func(s string) (int, error) {
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, fmt.Errorf("invalid value %q", s)
		}
		if v < min || v > max {
			return 0, fmt.Errorf("value %d out of range %d-%d", v, min, max)
		}
		return v, nil
	}
}

// translateList converts a comma separated list of values and ranges ("a..b" or "a-b")
// into cron list syntax using value to convert each endpoint.
func translateList(s string, value func(string) (int, error)) (string, error) {
	if s == "*" {
		return "*", nil
	}
	items := strings.Split(s, ",")
	out := make([]string, len(items))
	for i, item := range items {
		sep := ".."
		if !strings.Contains(item, sep) {
			sep = "-"
		}
		bounds := strings.SplitN(item, sep, 2)
		lo, err := value(bounds[0])
		if err != nil {
			return "", err
		}
		if len(bounds) == 1 {
			out[i] = strconv.Itoa(lo)
			continue
		}
		hi, err := value(bounds[1])
		if err != nil {
			return "", err
		}
		if hi < lo {
			return "", fmt.Errorf("invalid range %q", item)
		}
		out[i] = strconv.Itoa(lo) + "-" + strconv.Itoa(hi)
	}
	return strings.Join(out, ","), nil
}
