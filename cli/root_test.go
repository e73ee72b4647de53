package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"f0oster/pneaudit/activedirectory"
	"f0oster/pneaudit/config"
	"f0oster/pneaudit/monitor"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeDirectory struct {
	accounts []activedirectory.Account
	calls    int
	closed   bool
}

func (d *fakeDirectory) FetchFlaggedAccounts(context.Context, bool) ([]activedirectory.Account, error) {
	d.calls++
	return d.accounts, nil
}

func (d *fakeDirectory) Close() { d.closed = true }

type harness struct {
	dir      *fakeDirectory
	baseline string
	logFile  string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	for k, v := range map[string]string{
		"LDAP_BASEDN":      "DC=x,DC=com",
		"LDAP_DCFQDN":      "dc01.x.com",
		"LDAP_USERNAME":    "svc-audit@x.com",
		"LDAP_PASSWORD":    "hunter2",
		"ADSPY_DSN":        "",
		"SLACK_BOT_TOKEN":  "",
		"SLACK_CHANNEL_ID": "",
	} {
		t.Setenv(k, v)
	}
	tmp := t.TempDir()
	return &harness{
		dir:      &fakeDirectory{},
		baseline: filepath.Join(tmp, "baseline.txt"),
		logFile:  filepath.Join(tmp, "audit.log"),
	}
}

func (h *harness) run(args ...string) (string, error) {
	deps := dependencies{
		newDirectory: func(config.PNEAuditConfiguration, *zap.Logger) directory { return h.dir },
		newConsole:   func(string) *zap.Logger { return zap.NewNop() },
	}
	cmd := newRootCmd(deps)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{
		"--env-file", filepath.Join(filepath.Dir(h.baseline), "missing.env"),
		"--baseline", h.baseline,
		"--log-file", h.logFile,
	}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestRoot_RequiresMode(t *testing.T) {
	h := newHarness(t)
	_, err := h.run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "init")
	assert.Equal(t, 0, h.dir.calls)
}

func TestRoot_ModesMutuallyExclusive(t *testing.T) {
	h := newHarness(t)
	_, err := h.run("--init", "--check")
	require.Error(t, err)
	assert.Equal(t, 0, h.dir.calls)
}

func TestRoot_CheckWithoutBaseline(t *testing.T) {
	h := newHarness(t)
	_, err := h.run("--check")
	require.ErrorIs(t, err, monitor.ErrPreconditionFailed)
	assert.Contains(t, err.Error(), "--init")
	assert.Equal(t, 0, h.dir.calls)

	_, statErr := os.Stat(h.baseline)
	assert.True(t, os.IsNotExist(statErr))

	logged, readErr := os.ReadFile(h.logFile)
	require.NoError(t, readErr)
	assert.Contains(t, string(logged), "CRITICAL: Baseline file not found")
}

func TestRoot_InitThenCheck(t *testing.T) {
	h := newHarness(t)
	h.dir.accounts = []activedirectory.Account{{UserPrincipalName: "alice@x.com", SAMAccountName: "alice"}}

	out, err := h.run("--init")
	require.NoError(t, err)
	assert.Contains(t, out, "Baseline initialized with 1 accounts")
	assert.True(t, h.dir.closed)

	h.dir.accounts = append(h.dir.accounts, activedirectory.Account{UserPrincipalName: "bob@x.com", DisplayName: "Bob", SAMAccountName: "bob"})
	out, err = h.run("--check", "--enabled-only")
	require.NoError(t, err)
	assert.Contains(t, out, "1 new account(s)")
	assert.Contains(t, out, "bob@x.com")

	data, err := os.ReadFile(h.baseline)
	require.NoError(t, err)
	assert.Equal(t, "alice@x.com\nbob@x.com\n", string(data))

	logged, err := os.ReadFile(h.logFile)
	require.NoError(t, err)
	assert.Contains(t, string(logged), "CRITICAL: New account with password never expires: UserPrincipalName=bob@x.com")
}

func TestRoot_MissingSettings(t *testing.T) {
	h := newHarness(t)
	t.Setenv("LDAP_PASSWORD", "")
	_, err := h.run("--init")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LDAP_PASSWORD")
}

func TestRoot_InvalidLogLevel(t *testing.T) {
	h := newHarness(t)
	_, err := h.run("--init", "--log-level", "loud")
	require.Error(t, err)
	assert.Equal(t, 0, h.dir.calls)
}
