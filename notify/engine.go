package notify

import (
	"time"

	"github.com/benbjohnson/clock"
)

// DefaultTarget is the built-in target that is always present in a default configuration
// and is visible to every caller.
const DefaultTarget = "mail-to-root"

type Diagnostic interface {
	RuleMatched(rule string, targets []string)
}

// Engine evaluates rules against events.
type Engine struct {
	// Clock provides the timestamp of events that do not carry one.
	Clock clock.Clock
	// Location in which calendar windows are evaluated.
	Location *time.Location

	diag Diagnostic
}

// NewEngine returns an engine evaluating calendar windows in loc using the wall clock.
// A nil loc means time.Local. The diagnostic d must not be nil.
func NewEngine(loc *time.Location, d Diagnostic) *Engine {
	if loc == nil {
		loc = time.Local
	}
	return &Engine{
		Clock:    clock.New(),
		Location: loc,
		diag:     d,
	}
}

// Result is the outcome of evaluating an event.
type Result struct {
	// Matched names the rules that fired, in rule order.
	Matched []string
	// Targets is the deduplicated list of target names in first-seen order.
	Targets []string
}

// Evaluate runs all rules against the event.
func (e *Engine) Evaluate(rules []Rule, event Event) Result {
	event = e.normalize(event)

	var res Result
	seen := make(map[string]bool)
	for _, r := range rules {
		if !r.Matches(event) {
			continue
		}
		res.Matched = append(res.Matched, r.Name)
		e.diag.RuleMatched(r.Name, r.Targets)
		for _, t := range r.Targets {
			if seen[t] {
				continue
			}
			seen[t] = true
			res.Targets = append(res.Targets, t)
		}
	}
	return res
}

// Targets returns the deduplicated target names for the event.
func (e *Engine) Targets(rules []Rule, event Event) []string {
	return e.Evaluate(rules, event).Targets
}

func (e *Engine) normalize(event Event) Event {
	if event.Timestamp.IsZero() {
		if e.Clock != nil {
			event.Timestamp = e.Clock.Now()
		} else {
			event.Timestamp = time.Now()
		}
	}
	if e.Location != nil {
		event.Timestamp = event.Timestamp.In(e.Location)
	}
	return event
}
