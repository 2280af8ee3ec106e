package notify

import (
	"fmt"
	"strings"
)

// Mode determines how the predicates of a Rule are combined.
type Mode int

const (
	// All requires every predicate to hold. A rule without predicates always fires.
	All Mode = iota
	// Any requires at least one predicate to hold. A rule without predicates never fires.
	Any
)

func (m Mode) String() string {
	switch m {
	case All:
		return "all"
	case Any:
		return "any"
	default:
		return "unknown"
	}
}

func (m Mode) MarshalText() ([]byte, error) {
	if m != All && m != Any {
		return nil, fmt.Errorf("invalid mode %d", int(m))
	}
	return []byte(m.String()), nil
}

func (m *Mode) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "", "all":
		*m = All
	case "any":
		*m = Any
	default:
		return fmt.Errorf("unknown mode %q, must be one of all, any", text)
	}
	return nil
}

// ParseMode parses "all" or "any". The empty string is All.
func ParseMode(s string) (m Mode, err error) {
	err = m.UnmarshalText([]byte(s))
	return
}

// Predicate is a single condition of a Rule.
type Predicate interface {
	Matches(e Event) bool
	String() string
}

// Rule is the evaluable form of a matcher.
type Rule struct {
	Name       string
	Fields     []FieldMatcher
	Severities []SeverityMatcher
	Calendars  []CalendarMatcher
	Mode       Mode
	Invert     bool
	Targets    []string
}

// Predicates returns all configured predicates flattened into a single list.
func (r Rule) Predicates() []Predicate {
	ps := make([]Predicate, 0, len(r.Fields)+len(r.Severities)+len(r.Calendars))
	for _, f := range r.Fields {
		ps = append(ps, f)
	}
	for _, s := range r.Severities {
		ps = append(ps, s)
	}
	for _, c := range r.Calendars {
		ps = append(ps, c)
	}
	return ps
}

// Matches reports whether the rule fires for the event.
// The event timestamp is used as is, callers are responsible for its location.
func (r Rule) Matches(e Event) bool {
	var matched bool
	switch r.Mode {
	case Any:
		for _, p := range r.Predicates() {
			if p.Matches(e) {
				matched = true
				break
			}
		}
	default:
		matched = true
		for _, p := range r.Predicates() {
			if !p.Matches(e) {
				matched = false
				break
			}
		}
	}
	return matched != r.Invert
}
