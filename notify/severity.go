package notify

import (
	"fmt"
	"strings"
)

// Severity of a notification. Severities are ordered from least to most severe,
// Unknown sorts last.
type Severity int

const (
	Info Severity = iota
	Notice
	Warning
	Error
	Unknown
	maxSeverity
)

const severityStrings = "infonoticewarningerrorunknown"

var severityOffsets = []int{0, 4, 10, 17, 22, 29}

func (s Severity) String() string {
	if s >= 0 && s < maxSeverity {
		return severityStrings[severityOffsets[s]:severityOffsets[s+1]]
	}
	return "invalid"
}

func (s Severity) MarshalText() ([]byte, error) {
	if s < 0 || s >= maxSeverity {
		return nil, fmt.Errorf("invalid severity %d", int(s))
	}
	return []byte(s.String()), nil
}

func (s *Severity) UnmarshalText(text []byte) error {
	for i := Severity(0); i < maxSeverity; i++ {
		if string(text) == i.String() {
			*s = i
			return nil
		}
	}
	return fmt.Errorf("unknown severity %q", text)
}

// ParseSeverity parses a severity name, case-insensitive.
func ParseSeverity(s string) (sev Severity, err error) {
	err = sev.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(s))))
	return
}

// Severities returns all valid severities in order.
func Severities() []Severity {
	all := make([]Severity, 0, maxSeverity)
	for i := Severity(0); i < maxSeverity; i++ {
		all = append(all, i)
	}
	return all
}
