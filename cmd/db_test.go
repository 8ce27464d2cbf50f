package cmd

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cloudctl/internal/cli"
	"cloudctl/internal/gateway"
)

func TestDBCreateIfNotExistsTwice(t *testing.T) {
	h := newHarness(t)
	args := []string{"db", "create", "orders", "--region", "us-east1", "--if-not-exists", "-o", "json"}

	require.Equal(t, cli.ExitCodeSuccess, h.run(args...), h.stderr.String())
	first := h.stdoutJSON()
	assert.Equal(t, float64(0), first["code"])
	assert.Equal(t, true, data(t, first)["wasCreated"])
	assert.Equal(t, "ACTIVE", data(t, first)["currentStatus"])
	assert.Contains(t, first["message"], "has been created")
	assert.Equal(t, 5*time.Second, h.clock.Slept())

	require.Equal(t, cli.ExitCodeSuccess, h.run(args...), h.stderr.String())
	second := h.stdoutJSON()
	assert.Equal(t, false, data(t, second)["wasCreated"])
	assert.Equal(t, "ACTIVE", data(t, second)["currentStatus"])
	assert.Equal(t, []string{"cloudctl db get orders"}, nextSteps(second))

	assert.Equal(t, 1, h.cloud.Mutations())
}

func TestDBCreateExistingWithoutGuard(t *testing.T) {
	h := newHarness(t)
	h.cloud.AddDatabase("orders", gateway.DatabaseActive)

	code := h.run("db", "create", "orders", "--region", "us-east1", "-o", "json")

	require.Equal(t, cli.ExitCodeAlreadyExists, code)
	assert.Empty(t, h.stdout.String())
	env := h.stderrJSON()
	assert.Equal(t, float64(cli.ExitCodeAlreadyExists), env["code"])
	assert.Equal(t, "Database 'orders' already exists.", env["message"])
	assert.Equal(t, []string{
		"cloudctl db create orders --region us-east1 -o json --if-not-exists",
		"cloudctl db list",
	}, nextSteps(env))
	assert.Equal(t, 0, h.cloud.Mutations())
}

func TestDBCreateHumanOutput(t *testing.T) {
	h := newHarness(t)

	require.Equal(t, cli.ExitCodeSuccess, h.run("db", "create", "orders", "--region", "us-east1"))

	out := h.stdout.String()
	assert.Contains(t, out, "Database 'orders' has been created and became 'ACTIVE' after 5s.")
	assert.Contains(t, out, "Next steps:")
	assert.Contains(t, out, "cloudctl db get orders")
}

func TestDBCreateAsync(t *testing.T) {
	h := newHarness(t)

	require.Equal(t, cli.ExitCodeSuccess, h.run("db", "create", "orders", "--region", "us-east1", "--async", "-o", "json"))

	env := h.stdoutJSON()
	assert.Equal(t, "PENDING", data(t, env)["currentStatus"])
	assert.Zero(t, h.clock.Slept())
}

func TestDBCreateTimeout(t *testing.T) {
	h := newHarness(t)
	h.cloud.ReadsToActive = 100

	code := h.run("db", "create", "orders", "--region", "us-east1", "--timeout", "10s")

	require.Equal(t, cli.ExitCodeTimeout, code)
	stderr := h.stderr.String()
	assert.Contains(t, stderr, "Timed out after 10s")
	assert.Contains(t, stderr, "may still become ACTIVE")
	assert.Contains(t, stderr, "cloudctl db get orders")
	assert.Contains(t, stderr, "--timeout=30m")
	// probes at 0s and 5s; the next one would start at the deadline
	assert.Equal(t, 10*time.Second, h.clock.Slept())
	assert.Equal(t, 3, h.cloud.Calls(), "one create and two status reads")
}

func TestDBCreateValidation(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "missing region", args: []string{"db", "create", "orders"}},
		{name: "missing name", args: []string{"db", "create", "--region", "us-east1"}},
		{name: "negative timeout", args: []string{"db", "create", "orders", "--region", "r", "--timeout", "-1s"}},
		{name: "async with timeout", args: []string{"db", "create", "orders", "--region", "r", "--async", "--timeout", "1m"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			assert.Equal(t, cli.ExitCodeValidation, h.run(tt.args...), h.stderr.String())
			assert.Zero(t, h.cloud.Calls())
		})
	}
}

func TestDBDelete(t *testing.T) {
	t.Run("waits until terminated", func(t *testing.T) {
		h := newHarness(t)
		db := h.cloud.AddDatabase("orders", gateway.DatabaseActive)

		require.Equal(t, cli.ExitCodeSuccess, h.run("db", "delete", "orders", "-o", "json"), h.stderr.String())

		env := h.stdoutJSON()
		assert.Equal(t, true, data(t, env)["wasDeleted"])
		assert.Equal(t, db.ID, data(t, env)["id"])
		assert.Equal(t, 5*time.Second, h.clock.Slept())
	})

	t.Run("missing with guard", func(t *testing.T) {
		h := newHarness(t)

		require.Equal(t, cli.ExitCodeSuccess, h.run("db", "delete", "orders", "--if-exists", "-o", "json"))

		env := h.stdoutJSON()
		assert.Equal(t, false, data(t, env)["wasDeleted"])
		assert.Equal(t, 0, h.cloud.Mutations())
	})

	t.Run("missing without guard", func(t *testing.T) {
		h := newHarness(t)

		require.Equal(t, cli.ExitCodeNotFound, h.run("db", "delete", "orders"))

		stderr := h.stderr.String()
		assert.Contains(t, stderr, "Database 'orders' could not be found.")
		assert.Contains(t, stderr, "cloudctl db delete orders --if-exists")
		assert.Contains(t, stderr, "cloudctl db list")
	})

	t.Run("async", func(t *testing.T) {
		h := newHarness(t)
		h.cloud.AddDatabase("orders", gateway.DatabaseActive)

		require.Equal(t, cli.ExitCodeSuccess, h.run("db", "delete", "orders", "--async"))

		assert.Contains(t, h.stdout.String(), "is being terminated")
		assert.Zero(t, h.clock.Slept())
	})
}

func TestDBGet(t *testing.T) {
	h := newHarness(t)
	db := h.cloud.AddDatabase("orders", gateway.DatabaseActive)

	require.Equal(t, cli.ExitCodeSuccess, h.run("db", "get", "orders", "-k", "status"))
	assert.Equal(t, "ACTIVE\n", h.stdout.String())

	require.Equal(t, cli.ExitCodeSuccess, h.run("db", "get", db.ID, "-o", "json"))
	env := h.stdoutJSON()
	assert.Equal(t, "orders", data(t, env)["name"])

	assert.Equal(t, cli.ExitCodeValidation, h.run("db", "get", "orders", "-k", "size"))
	assert.Contains(t, h.stderr.String(), "Invalid key 'size'.")

	assert.Equal(t, cli.ExitCodeNotFound, h.run("db", "get", "missing"))
	assert.Contains(t, h.stderr.String(), "Database 'missing' could not be found.")
}

func TestDBList(t *testing.T) {
	h := newHarness(t)

	require.Equal(t, cli.ExitCodeSuccess, h.run("db", "list"))
	assert.Equal(t, "No databases found.\n", h.stdout.String())

	h.cloud.AddDatabase("orders", gateway.DatabaseActive)
	h.cloud.AddDatabase("users", gateway.DatabaseHibernated)

	require.Equal(t, cli.ExitCodeSuccess, h.run("db", "list"))
	assert.Contains(t, h.stdout.String(), "orders")
	assert.Contains(t, h.stdout.String(), "HIBERNATED")

	require.Equal(t, cli.ExitCodeSuccess, h.run("db", "list", "-o", "csv"))
	lines := splitLines(h.stdout.String())
	require.Len(t, lines, 3)
	assert.Equal(t, "name,id,regions,cloud,vector,status", lines[0])
}

func TestDBUnauthorized(t *testing.T) {
	h := newHarness(t)
	h.cloud.Err = gateway.ErrUnauthorized

	assert.Equal(t, cli.ExitCodeValidation, h.run("db", "list"))
	assert.Contains(t, h.stderr.String(), "The token was rejected.")
	assert.Contains(t, h.stderr.String(), "cloudctl config get")
}
