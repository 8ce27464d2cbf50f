package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"cloudctl/internal/cli"
	"cloudctl/internal/config"
	"cloudctl/internal/gateway"
	"cloudctl/internal/profile"
	"cloudctl/internal/testing/fake"
)

// harness runs the command tree against an in-memory cloud.
type harness struct {
	t     *testing.T
	cloud *fake.Cloud
	clock *fake.Clock
	dir   string
	stdin string

	// used is the profile the last connected command ran with.
	used cli.Profile

	stdout bytes.Buffer
	stderr bytes.Buffer
}

// newHarness returns a harness with one saved default profile named "work".
func newHarness(t *testing.T) *harness {
	t.Helper()
	h := newBareHarness(t)
	err := profile.NewStorageWithPath(h.dir).PutProfile(profile.Profile{
		Name:        "work",
		Token:       "AstraCS:work-token",
		Environment: profile.EnvProd,
	}, true)
	require.NoError(t, err)
	return h
}

// newBareHarness returns a harness without any saved profile.
func newBareHarness(t *testing.T) *harness {
	t.Helper()
	t.Setenv(cli.ProfileEnvVar, "")
	t.Setenv("CLOUDCTL_PROFILES_FILE", "")
	t.Setenv("CLOUDCTL_OUTPUT", "")
	return &harness{
		t:     t,
		cloud: fake.NewCloud(),
		clock: fake.NewClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)),
		dir:   t.TempDir(),
	}
}

func (h *harness) run(args ...string) int {
	h.t.Helper()
	return h.runContext(context.Background(), args...)
}

func (h *harness) runContext(ctx context.Context, args ...string) int {
	h.t.Helper()
	h.stdout.Reset()
	h.stderr.Reset()
	app := &App{
		Stdin:  strings.NewReader(h.stdin),
		Stdout: &h.stdout,
		Stderr: &h.stderr,
		NewGateways: func(p cli.Profile, _ *config.Settings, _ gateway.Progress) (gateway.Set, error) {
			h.used = p
			return h.cloud.Gateways(), nil
		},
		Clock:     h.clock,
		ConfigDir: h.dir,
	}
	return Run(ctx, app, args)
}

// stdoutJSON decodes the JSON envelope written to stdout.
func (h *harness) stdoutJSON() map[string]any {
	h.t.Helper()
	return decodeEnvelope(h.t, h.stdout.String())
}

// stderrJSON decodes the JSON error envelope written to stderr.
func (h *harness) stderrJSON() map[string]any {
	h.t.Helper()
	return decodeEnvelope(h.t, h.stderr.String())
}

func decodeEnvelope(t *testing.T, s string) map[string]any {
	t.Helper()
	var env map[string]any
	require.NoError(t, json.Unmarshal([]byte(s), &env), "output: %s", s)
	return env
}

// data returns the data object of an envelope.
func data(t *testing.T, env map[string]any) map[string]any {
	t.Helper()
	d, ok := env["data"].(map[string]any)
	require.True(t, ok, "envelope has no data object: %v", env)
	return d
}

// nextSteps returns the commands of an envelope's next steps.
func nextSteps(env map[string]any) []string {
	steps, _ := env["nextSteps"].([]any)
	var cmds []string
	for _, s := range steps {
		if m, ok := s.(map[string]any); ok {
			cmds = append(cmds, m["command"].(string))
		}
	}
	return cmds
}

func splitLines(s string) []string {
	return strings.Split(strings.TrimRight(s, "\n"), "\n")
}
