package fake

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cloudctl/internal/gateway"
)

func TestCloud_DatabaseLifecycle(t *testing.T) {
	cloud := NewCloud()
	dbs := cloud.Gateways().Databases
	ctx := context.Background()

	status, err := dbs.Create(ctx, gateway.DatabaseSpec{Name: "orders", Region: "us-east1"})
	require.NoError(t, err)
	require.False(t, status.Existed)
	assert.Equal(t, gateway.DatabasePending, status.Resource.Status)

	db, err := dbs.FindOne(ctx, "orders")
	require.NoError(t, err)
	assert.Equal(t, gateway.DatabasePending, db.Status)

	db, err = dbs.FindOne(ctx, db.ID)
	require.NoError(t, err)
	assert.Equal(t, gateway.DatabaseActive, db.Status)

	again, err := dbs.Create(ctx, gateway.DatabaseSpec{Name: "orders"})
	require.NoError(t, err)
	assert.True(t, again.Existed)
	assert.Equal(t, 1, cloud.Mutations())

	deleted, err := dbs.Delete(ctx, "orders")
	require.NoError(t, err)
	assert.False(t, deleted.Missing)

	db, err = dbs.FindOne(ctx, "orders")
	require.NoError(t, err)
	assert.Equal(t, gateway.DatabaseTerminating, db.Status)

	_, err = dbs.FindOne(ctx, "orders")
	assert.True(t, gateway.IsNotFound(err))

	missing, err := dbs.Delete(ctx, "orders")
	require.NoError(t, err)
	assert.True(t, missing.Missing)
	assert.Equal(t, 2, cloud.Mutations())
}

func TestCloud_InjectedError(t *testing.T) {
	cloud := NewCloud()
	cloud.Err = errors.New("service unavailable")

	_, err := cloud.Gateways().Roles.FindAll(context.Background())
	assert.EqualError(t, err, "service unavailable")
	assert.Equal(t, 1, cloud.Calls())
}

func TestCloud_TokensHideSecrets(t *testing.T) {
	cloud := NewCloud()
	cloud.AddRole(gateway.Role{Name: "reader"})
	toks := cloud.Gateways().Tokens

	created, err := toks.Create(context.Background(), []string{"reader"})
	require.NoError(t, err)
	assert.NotEmpty(t, created.Secret)

	all, err := toks.FindAll(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Empty(t, all[0].Secret)
	assert.Empty(t, all[0].Value)
}

func TestClock(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	clk := NewClock(start)

	<-clk.After(5 * time.Second)
	clk.Advance(time.Second)

	assert.Equal(t, start.Add(6*time.Second), clk.Now())
	assert.Equal(t, 5*time.Second, clk.Slept())
}
