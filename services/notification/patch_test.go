package notification_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/heraldhq/herald/services/notification"
	"github.com/pkg/errors"
)

func TestNewPatch(t *testing.T) {
	p, err := notification.NewPatch(map[string]interface{}{"comment": "c"}, []string{"author"})
	if err != nil {
		t.Fatal(err)
	}
	if got, exp := p.Get("comment"), (notification.Change{Op: notification.SetOp, Value: "c"}); got != exp {
		t.Errorf("unexpected change: got %v exp %v", got, exp)
	}
	if got, exp := p.Get("author").Op, notification.ClearOp; got != exp {
		t.Errorf("unexpected op: got %v exp %v", got, exp)
	}
	if got, exp := p.Get("mailto").Op, notification.Unchanged; got != exp {
		t.Errorf("unexpected op: got %v exp %v", got, exp)
	}

	if _, err := notification.NewPatch(map[string]interface{}{"comment": "c"}, []string{"comment"}); !errors.Is(err, notification.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
	if _, err := notification.NewPatch(map[string]interface{}{"comment": nil}, nil); !errors.Is(err, notification.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestPatch_Apply(t *testing.T) {
	e := notification.SendmailEndpoint{
		Name:        "m",
		Mailto:      []string{"a@example.com"},
		FromAddress: "herald@example.com",
		Comment:     "old",
	}
	p, err := notification.NewPatch(map[string]interface{}{
		"mailto":      []interface{}{"b@example.com", "c@example.com"},
		"mailto-user": "root@pam",
	}, []string{"comment", "from-address"})
	if err != nil {
		t.Fatal(err)
	}
	if err := p.Apply(&e); err != nil {
		t.Fatal(err)
	}
	exp := notification.SendmailEndpoint{
		Name:       "m",
		Mailto:     []string{"b@example.com", "c@example.com"},
		MailtoUser: []string{"root@pam"},
	}
	if !cmp.Equal(exp, e) {
		t.Errorf("unexpected endpoint -exp/+got:\n%s", cmp.Diff(exp, e))
	}

	bad, err := notification.NewPatch(map[string]interface{}{"invert-match": "maybe"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	m := notification.MatcherConfig{Name: "m"}
	if err := bad.Apply(&m); !errors.Is(err, notification.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
	if err := p.Apply(e); !errors.Is(err, notification.ErrValidation) {
		t.Errorf("expected validation error for non-pointer target, got %v", err)
	}
}

func TestNewEndpoint(t *testing.T) {
	e, err := notification.NewEndpoint(notification.SMTPKind, "relay", map[string]interface{}{
		"server":       "mail.example.com",
		"port":         "2525",
		"mailto":       []interface{}{"ops@example.com"},
		"from-address": "herald@example.com",
	})
	if err != nil {
		t.Fatal(err)
	}
	exp := notification.SMTPEndpoint{
		Name:        "relay",
		Server:      "mail.example.com",
		Port:        2525,
		Mailto:      []string{"ops@example.com"},
		FromAddress: "herald@example.com",
	}
	if !cmp.Equal(exp, e) {
		t.Errorf("unexpected endpoint -exp/+got:\n%s", cmp.Diff(exp, e))
	}
	if err := e.Validate(); err != nil {
		t.Errorf("unexpected validation error: %v", err)
	}

	if _, err := notification.NewEndpoint(notification.GotifyKind, "g", map[string]interface{}{"name": "h"}); !errors.Is(err, notification.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
	if _, err := notification.NewEndpoint("pager", "p", nil); !errors.Is(err, notification.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestNewMatcher(t *testing.T) {
	m, err := notification.NewMatcher("m", map[string]interface{}{
		"match-severity": "warning,error",
		"mode":           "any",
		"target":         "mail-to-root",
	})
	if err != nil {
		t.Fatal(err)
	}
	exp := notification.MatcherConfig{
		Name:          "m",
		MatchSeverity: []string{"warning,error"},
		Mode:          "any",
		Target:        []string{"mail-to-root"},
	}
	if !cmp.Equal(exp, m) {
		t.Errorf("unexpected matcher -exp/+got:\n%s", cmp.Diff(exp, m))
	}
}
