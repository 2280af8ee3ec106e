package notify_test

import (
	"testing"

	"github.com/heraldhq/herald/notify"
)

func TestSeverity_Text(t *testing.T) {
	for _, s := range notify.Severities() {
		text, err := s.MarshalText()
		if err != nil {
			t.Fatal(err)
		}
		var got notify.Severity
		if err := got.UnmarshalText(text); err != nil {
			t.Fatal(err)
		}
		if got != s {
			t.Errorf("got %v exp %v", got, s)
		}
	}
	var s notify.Severity
	if err := s.UnmarshalText([]byte("warn")); err == nil {
		t.Error("expected error for prefix of a severity name")
	}
}

func TestParseSeverityMatcher(t *testing.T) {
	m, err := notify.ParseSeverityMatcher("Warning, error,warning")
	if err != nil {
		t.Fatal(err)
	}
	if exp, got := "warning,error", m.String(); got != exp {
		t.Errorf("unexpected string: got %q exp %q", got, exp)
	}
	if !m.Contains(notify.Error) || m.Contains(notify.Notice) {
		t.Error("unexpected membership")
	}
	if _, err := notify.ParseSeverityMatcher("critical"); err == nil {
		t.Error("expected error for unknown severity")
	}
	if _, err := notify.ParseSeverityMatcher(""); err == nil {
		t.Error("expected error for empty list")
	}
}
