package notification

import (
	"github.com/heraldhq/herald/notify"
	"github.com/pkg/errors"
)

// MatcherConfig is the persisted form of a routing rule.
type MatcherConfig struct {
	Name          string   `toml:"name" json:"name"`
	MatchField    []string `toml:"match-field,omitempty" json:"match-field,omitempty"`
	MatchSeverity []string `toml:"match-severity,omitempty" json:"match-severity,omitempty"`
	MatchCalendar []string `toml:"match-calendar,omitempty" json:"match-calendar,omitempty"`
	Target        []string `toml:"target,omitempty" json:"target,omitempty"`
	Mode          string   `toml:"mode,omitempty" json:"mode,omitempty"`
	InvertMatch   bool     `toml:"invert-match,omitempty" json:"invert-match,omitempty"`
	Comment       string   `toml:"comment,omitempty" json:"comment,omitempty"`
}

// Validate parses every predicate of the matcher.
func (m MatcherConfig) Validate() error {
	_, err := m.Rule()
	return err
}

// Rule returns the evaluable form of the matcher.
func (m MatcherConfig) Rule() (notify.Rule, error) {
	if err := validateName(m.Name); err != nil {
		return notify.Rule{}, errors.Wrap(err, "matcher")
	}
	r := notify.Rule{
		Name:    m.Name,
		Invert:  m.InvertMatch,
		Targets: m.Target,
	}
	mode, err := notify.ParseMode(m.Mode)
	if err != nil {
		return notify.Rule{}, validationErrorf("matcher %q: %v", m.Name, err)
	}
	r.Mode = mode
	for _, s := range m.MatchField {
		f, err := notify.ParseFieldMatcher(s)
		if err != nil {
			return notify.Rule{}, validationErrorf("matcher %q: %v", m.Name, err)
		}
		r.Fields = append(r.Fields, f)
	}
	for _, s := range m.MatchSeverity {
		sev, err := notify.ParseSeverityMatcher(s)
		if err != nil {
			return notify.Rule{}, validationErrorf("matcher %q: %v", m.Name, err)
		}
		r.Severities = append(r.Severities, sev)
	}
	for _, s := range m.MatchCalendar {
		c, err := notify.ParseCalendar(s)
		if err != nil {
			return notify.Rule{}, validationErrorf("matcher %q: %v", m.Name, err)
		}
		r.Calendars = append(r.Calendars, c)
	}
	for _, t := range m.Target {
		if err := validateName(t); err != nil {
			return notify.Rule{}, errors.Wrapf(err, "matcher %q: target", m.Name)
		}
	}
	return r, nil
}
