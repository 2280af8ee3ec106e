package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/heraldhq/herald/services/notification"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	t      *testing.T
	config string
}

func newHarness(t *testing.T) *harness {
	dir := t.TempDir()
	config := filepath.Join(dir, "herald.conf")
	require.NoError(t, os.WriteFile(config, []byte(fmt.Sprintf(`
[storage]
  backend = "file"
  path = %q

[lock]
  backend = "file"
  path = %q
  timeout = "1s"

[logging]
  level = "error"
`, filepath.Join(dir, "notifications.cfg"), filepath.Join(dir, "herald.lock"))), 0600))
	return &harness{t: t, config: config}
}

// run runs heraldctl and returns its stdout.
func (h *harness) run(args ...string) (string, error) {
	var stdout, stderr bytes.Buffer
	app := createApp(&stdout, &stderr)
	err := app.Run(append([]string{"heraldctl", "--config", h.config}, args...))
	return stdout.String(), err
}

func (h *harness) mustRun(args ...string) string {
	h.t.Helper()
	out, err := h.run(args...)
	require.NoError(h.t, err, "heraldctl %s", strings.Join(args, " "))
	return out
}

func TestEndpointCommands(t *testing.T) {
	h := newHarness(t)
	h.mustRun("endpoint", "add",
		"--set", "server=mail.example.com",
		"--set", "mode=starttls",
		"--set", "username=herald",
		"--set", "password=hunter2",
		"--set", "mailto=ops@example.com",
		"--set", "mailto=noc@example.com",
		"--set", "from-address=herald@example.com",
		"smtp", "relay",
	)

	var shown endpointView
	var smtp notification.SMTPEndpoint
	out := h.mustRun("endpoint", "show", "relay")
	shown.Endpoint = &smtp
	require.NoError(t, json.Unmarshal([]byte(out), &shown))
	assert.Equal(t, notification.SMTPKind, shown.Kind)
	assert.Equal(t, []string{"ops@example.com", "noc@example.com"}, smtp.Mailto)
	assert.Empty(t, smtp.Password, "secrets must not be shown")

	var list struct {
		Digest    string `json:"digest"`
		Endpoints []struct {
			Kind string `json:"kind"`
		} `json:"endpoints"`
	}
	require.NoError(t, json.Unmarshal([]byte(h.mustRun("endpoint", "list")), &list))
	assert.Len(t, list.Endpoints, 2)
	assert.NotContains(t, h.mustRun("endpoint", "list", "--kind", "smtp"), "mail-to-root")

	// Stale digests are rejected.
	_, err := h.run("endpoint", "update", "--set", "comment=x", "--digest", "0000000000000000", "relay")
	require.Error(t, err)
	assert.Equal(t, 3, exitCode(err))

	h.mustRun("endpoint", "update", "--set", "comment=relay", "--digest", list.Digest, "relay")
	h.mustRun("endpoint", "update", "--delete", "comment", "relay")
	require.NoError(t, json.Unmarshal([]byte(h.mustRun("endpoint", "show", "relay")), &shown))
	assert.Empty(t, smtp.Comment)

	_, err = h.run("endpoint", "add", "--set", "server=x", "smtp", "relay")
	assert.Equal(t, 3, exitCode(err), "duplicate name")

	_, err = h.run("endpoint", "add", "--set", "server=https://gotify.example.com", "gotify", "g")
	assert.Equal(t, 2, exitCode(err), "missing token")

	h.mustRun("endpoint", "delete", "relay")
	_, err = h.run("endpoint", "show", "relay")
	assert.Equal(t, 4, exitCode(err))
}

func TestMatcherCommands(t *testing.T) {
	h := newHarness(t)
	h.mustRun("endpoint", "add", "--set", "server=https://gotify.example.com", "--set", "token=t", "gotify", "ops")
	h.mustRun("matcher", "add",
		"--set", "match-field=regex:host=^pve",
		"--set", "match-severity=warning,error",
		"--set", "target=ops",
		"pve-errors",
	)

	// The endpoint is in use.
	_, err := h.run("endpoint", "delete", "ops")
	assert.Equal(t, 2, exitCode(err))

	var res evaluateView
	out := h.mustRun("evaluate", "--field", "host=pve1", "--severity", "error", "--time", "2023-11-13T10:00:00Z")
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, []string{"default-matcher", "pve-errors"}, res.Matched)
	assert.Equal(t, []string{"mail-to-root", "ops"}, res.Targets)

	out = h.mustRun("evaluate", "--field", "host=pve1", "--severity", "info")
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, []string{"mail-to-root"}, res.Targets)

	h.mustRun("matcher", "update", "--set", "invert-match=true", "default-matcher")
	out = h.mustRun("evaluate", "--severity", "info")
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Empty(t, res.Targets)

	var list listView
	require.NoError(t, json.Unmarshal([]byte(h.mustRun("matcher", "list")), &list))
	require.Len(t, list.Matchers, 2)
	assert.Equal(t, "pve-errors", list.Matchers[1].Name)
	assert.Equal(t, strings.TrimSpace(h.mustRun("digest")), string(list.Digest))

	_, err = h.run("matcher", "add", "--set", "match-calendar=someday", "bad")
	assert.Equal(t, 2, exitCode(err))

	h.mustRun("matcher", "delete", "pve-errors")
	h.mustRun("endpoint", "delete", "ops")
}

func TestAuditPath(t *testing.T) {
	h := newHarness(t)
	h.mustRun("endpoint", "add", "--set", "server=https://gotify.example.com", "--set", "token=t", "gotify", "ops")
	h.mustRun("endpoint", "add", "--set", "server=https://gotify.example.com", "--set", "token=t", "gotify", "dev")

	out := h.mustRun("--audit-path", "/mapping/notification/dev", "endpoint", "list")
	assert.Contains(t, out, `"dev"`)
	assert.Contains(t, out, `"mail-to-root"`)
	assert.NotContains(t, out, `"ops"`)
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, exitCode(nil))
	assert.Equal(t, 1, exitCode(fmt.Errorf("boom")))
	assert.Equal(t, 5, exitCode(notification.ErrParse))
	assert.Equal(t, 6, exitCode(notification.ErrIO))
}
