package notify

import (
	"fmt"
	"regexp"
	"strings"
)

// FieldMode determines how a FieldMatcher compares a field value.
type FieldMode int

const (
	// Exact compares the field value for equality with one of the configured values.
	Exact FieldMode = iota
	// Regex matches the field value against an unanchored regular expression.
	Regex
)

func (m FieldMode) String() string {
	switch m {
	case Exact:
		return "exact"
	case Regex:
		return "regex"
	default:
		return "unknown"
	}
}

var validFieldKey = regexp.MustCompile(`^[A-Za-z0-9_][A-Za-z0-9._-]*$`)

// FieldMatcher is a parsed match-field predicate of the form mode:key=value.
type FieldMatcher struct {
	Mode  FieldMode
	Key   string
	Value string

	values []string
	re     *regexp.Regexp
}

// ParseFieldMatcher parses a predicate of the form "exact:key=value" or "regex:key=pattern".
// A predicate without a mode prefix is an exact match.
// Exact values may list several alternatives separated by commas.
func ParseFieldMatcher(s string) (FieldMatcher, error) {
	eq := strings.IndexByte(s, '=')
	if eq < 0 {
		return FieldMatcher{}, fmt.Errorf("invalid match-field %q: expected [mode:]key=value", s)
	}
	lhs, value := s[:eq], s[eq+1:]

	m := FieldMatcher{Mode: Exact, Key: lhs, Value: value}
	if i := strings.IndexByte(lhs, ':'); i >= 0 {
		switch mode := lhs[:i]; mode {
		case "exact":
			m.Mode = Exact
		case "regex":
			m.Mode = Regex
		default:
			return FieldMatcher{}, fmt.Errorf("invalid match-field %q: unknown mode %q", s, mode)
		}
		m.Key = lhs[i+1:]
	}
	if !validFieldKey.MatchString(m.Key) {
		return FieldMatcher{}, fmt.Errorf("invalid match-field %q: invalid field name %q", s, m.Key)
	}

	switch m.Mode {
	case Exact:
		m.values = strings.Split(value, ",")
		for i := range m.values {
			m.values[i] = strings.TrimSpace(m.values[i])
		}
	case Regex:
		re, err := regexp.Compile(value)
		if err != nil {
			return FieldMatcher{}, fmt.Errorf("invalid match-field %q: %v", s, err)
		}
		m.re = re
	}
	return m, nil
}

// MustParseFieldMatcher is like ParseFieldMatcher but panics on error.
func MustParseFieldMatcher(s string) FieldMatcher {
	m, err := ParseFieldMatcher(s)
	if err != nil {
		panic(err)
	}
	return m
}

func (m FieldMatcher) String() string {
	return m.Mode.String() + ":" + m.Key + "=" + m.Value
}

// Matches reports whether the event has the field and its value satisfies the predicate.
// An absent field never matches.
func (m FieldMatcher) Matches(e Event) bool {
	v, ok := e.Field(m.Key)
	if !ok {
		return false
	}
	switch m.Mode {
	case Regex:
		return m.re != nil && m.re.MatchString(v)
	default:
		for _, candidate := range m.values {
			if v == candidate {
				return true
			}
		}
		return false
	}
}
