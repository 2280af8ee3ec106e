package auth_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/heraldhq/herald/auth"
	"github.com/heraldhq/herald/notify"
)

func identity(s string) string { return s }

func TestFilter(t *testing.T) {
	names := []string{"gotify1", notify.DefaultTarget, "mail1", "smtp1"}
	check := func(name string) bool { return name == "smtp1" || name == "gotify1" }

	got := auth.Filter(names, identity, check)
	exp := []string{"gotify1", notify.DefaultTarget, "smtp1"}
	if diff := cmp.Diff(exp, got); diff != "" {
		t.Errorf("unexpected entities -exp/+got:\n%s", diff)
	}
	if diff := cmp.Diff([]string{"gotify1", notify.DefaultTarget, "mail1", "smtp1"}, names); diff != "" {
		t.Errorf("input was modified -exp/+got:\n%s", diff)
	}
}

func TestFilter_DefaultTargetNeverConsultsCheck(t *testing.T) {
	called := map[string]bool{}
	check := func(name string) bool {
		called[name] = true
		return false
	}
	got := auth.Filter([]string{notify.DefaultTarget, "other"}, identity, check)
	if diff := cmp.Diff([]string{notify.DefaultTarget}, got); diff != "" {
		t.Errorf("unexpected entities -exp/+got:\n%s", diff)
	}
	if called[notify.DefaultTarget] {
		t.Error("check was consulted for the default target")
	}
}

func TestFilter_UserCheck(t *testing.T) {
	u := auth.NewUser("bob", false, map[string][]auth.Privilege{
		auth.NotificationResource("mail1"): {auth.AuditPrivilege},
	})
	got := auth.Filter([]string{"mail1", "mail2", notify.DefaultTarget}, identity, u.Check(auth.AuditPrivilege))
	if diff := cmp.Diff([]string{"mail1", notify.DefaultTarget}, got); diff != "" {
		t.Errorf("unexpected entities -exp/+got:\n%s", diff)
	}
	if got := auth.Filter([]string{"mail1"}, identity, auth.AdminUser.Check(auth.ModifyPrivilege)); len(got) != 1 {
		t.Errorf("admin must see every entity, got %v", got)
	}
}
