package notify

import (
	"errors"
	"strings"
)

// SeverityMatcher is a parsed match-severity predicate: a set of severities.
type SeverityMatcher struct {
	set  uint
	text string
}

// ParseSeverityMatcher parses a comma separated list of severities, e.g. "warning,error".
func ParseSeverityMatcher(s string) (SeverityMatcher, error) {
	if strings.TrimSpace(s) == "" {
		return SeverityMatcher{}, errors.New("invalid match-severity: empty severity list")
	}
	var m SeverityMatcher
	names := make([]string, 0, 2)
	for _, part := range strings.Split(s, ",") {
		sev, err := ParseSeverity(part)
		if err != nil {
			return SeverityMatcher{}, err
		}
		if m.set&(1<<uint(sev)) == 0 {
			names = append(names, sev.String())
		}
		m.set |= 1 << uint(sev)
	}
	m.text = strings.Join(names, ",")
	return m, nil
}

// NewSeverityMatcher returns a matcher for the given severities.
func NewSeverityMatcher(sevs ...Severity) SeverityMatcher {
	names := make([]string, len(sevs))
	for i, s := range sevs {
		names[i] = s.String()
	}
	m, _ := ParseSeverityMatcher(strings.Join(names, ","))
	return m
}

func (m SeverityMatcher) String() string {
	return m.text
}

// Contains reports whether sev is part of the set.
func (m SeverityMatcher) Contains(sev Severity) bool {
	if sev < 0 || sev >= maxSeverity {
		return false
	}
	return m.set&(1<<uint(sev)) != 0
}

func (m SeverityMatcher) Matches(e Event) bool {
	return m.Contains(e.Severity)
}
