package api

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cloudctl/internal/gateway"
)

const readerRoleID = "a7d1f7b2-5b8c-4d8e-9f0a-1b2c3d4e5f60"

func rolesHandler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, []roleJSON{{
			ID:     readerRoleID,
			Name:   "reader",
			Policy: rolePolicy{Description: "Read only", Actions: []string{"db-read"}},
		}})
	}
}

func orgHandler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, currentOrg{ID: "org-1"})
	}
}

func TestTenants_Delete(t *testing.T) {
	var deletedPath string
	mux := http.NewServeMux()
	mux.HandleFunc("GET /streaming/tenants", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, []gateway.Tenant{{Name: "events", Cluster: "pulsar-gcp-useast1", Plan: gateway.PlanServerless}})
	})
	mux.HandleFunc("DELETE /streaming/tenants/{name}/clusters/{cluster}", func(w http.ResponseWriter, r *http.Request) {
		deletedPath = r.PathValue("name") + "@" + r.PathValue("cluster")
		w.WriteHeader(http.StatusNoContent)
	})
	tenants := newTestClient(t, mux).Gateways().Tenants

	status, err := tenants.Delete(context.Background(), "missing")
	require.NoError(t, err)
	assert.True(t, status.Missing)

	status, err = tenants.Delete(context.Background(), "events")
	require.NoError(t, err)
	assert.False(t, status.Missing)
	assert.Equal(t, "events@pulsar-gcp-useast1", deletedPath)
}

func TestTenants_Create(t *testing.T) {
	var req createTenantRequest
	mux := http.NewServeMux()
	mux.HandleFunc("GET /streaming/tenants", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, []gateway.Tenant{})
	})
	mux.HandleFunc("POST /streaming/tenants", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		w.WriteHeader(http.StatusOK)
	})

	status, err := newTestClient(t, mux).Gateways().Tenants.Create(context.Background(), gateway.TenantSpec{
		Name: "events", Cloud: "gcp", Region: "useast1", Plan: gateway.PlanServerless, Email: "ops@example.com",
	})
	require.NoError(t, err)
	assert.False(t, status.Existed)
	assert.Equal(t, "events", status.Resource.Name)
	assert.Equal(t, createTenantRequest{
		TenantName: "events", CloudProvider: "gcp", CloudRegion: "useast1", Plan: "serverless", UserEmail: "ops@example.com",
	}, req)
}

func TestRoles_Create(t *testing.T) {
	var req createRoleRequest
	mux := http.NewServeMux()
	mux.HandleFunc("GET /organizations/roles", rolesHandler(t))
	mux.HandleFunc("GET /currentOrg", orgHandler(t))
	mux.HandleFunc("POST /organizations/roles", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		writeJSON(t, w, http.StatusCreated, roleJSON{ID: "new-role", Name: req.Name, Policy: req.Policy})
	})
	roles := newTestClient(t, mux).Gateways().Roles

	status, err := roles.Create(context.Background(), gateway.RoleSpec{Name: "reader"})
	require.NoError(t, err)
	assert.True(t, status.Existed)
	assert.Equal(t, []string{"db-read"}, status.Resource.Policies)

	status, err = roles.Create(context.Background(), gateway.RoleSpec{Name: "writer", Description: "Writes", Policies: []string{"db-write"}})
	require.NoError(t, err)
	assert.False(t, status.Existed)
	assert.Equal(t, gateway.Role{ID: "new-role", Name: "writer", Description: "Writes", Policies: []string{"db-write"}}, status.Resource)
	assert.Equal(t, []string{"drn:astra:org:org-1"}, req.Policy.Resources)
	assert.Equal(t, "allow", req.Policy.Effect)
}

func TestUsers_Invite(t *testing.T) {
	var req inviteUserRequest
	mux := http.NewServeMux()
	mux.HandleFunc("GET /organizations/users", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, usersResponse{OrgID: "org-1", Users: []userJSON{{UserID: "u-1", Email: "ada@example.com", Status: "active"}}})
	})
	mux.HandleFunc("GET /organizations/roles", rolesHandler(t))
	mux.HandleFunc("GET /currentOrg", orgHandler(t))
	mux.HandleFunc("PUT /organizations/users", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		w.WriteHeader(http.StatusOK)
	})
	users := newTestClient(t, mux).Gateways().Users

	status, err := users.Invite(context.Background(), "ada@example.com", []string{"reader"})
	require.NoError(t, err)
	assert.True(t, status.Existed)

	status, err = users.Invite(context.Background(), "bob@example.com", []string{"reader"})
	require.NoError(t, err)
	assert.False(t, status.Existed)
	assert.Equal(t, inviteUserRequest{Email: "bob@example.com", OrgID: "org-1", Roles: []string{readerRoleID}}, req)

	_, err = users.Invite(context.Background(), "eve@example.com", []string{"admin"})
	var nf *gateway.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "role", nf.Kind)
}

func TestTokens_CreateAndDelete(t *testing.T) {
	var req createTokenRequest
	deleted := ""
	mux := http.NewServeMux()
	mux.HandleFunc("GET /organizations/roles", rolesHandler(t))
	mux.HandleFunc("GET /clientIdSecrets", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, tokensResponse{Clients: []tokenJSON{{ClientID: "client-1", Roles: []string{readerRoleID}, GeneratedOn: "2026-01-02T03:04:05Z"}}})
	})
	mux.HandleFunc("POST /clientIdSecrets", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		writeJSON(t, w, http.StatusOK, tokenJSON{ClientID: "client-2", Roles: req.Roles, Secret: "s3cret", Token: "AstraCS:new"})
	})
	mux.HandleFunc("DELETE /clientIdSecrets/{id}", func(w http.ResponseWriter, r *http.Request) {
		deleted = r.PathValue("id")
		w.WriteHeader(http.StatusNoContent)
	})
	tokens := newTestClient(t, mux).Gateways().Tokens
	ctx := context.Background()

	all, err := tokens.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, 2026, all[0].GeneratedOn.Year())

	created, err := tokens.Create(ctx, []string{"reader"})
	require.NoError(t, err)
	assert.Equal(t, "AstraCS:new", created.Value)
	assert.Equal(t, []string{readerRoleID}, req.Roles)

	status, err := tokens.Delete(ctx, "client-9")
	require.NoError(t, err)
	assert.True(t, status.Missing)
	assert.Empty(t, deleted)

	status, err = tokens.Delete(ctx, "client-1")
	require.NoError(t, err)
	assert.False(t, status.Missing)
	assert.Equal(t, "client-1", deleted)
}
