package api

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cloudctl/internal/gateway"
)

const ordersID = "0c5e2a39-7a4e-4a58-9d7a-3f1f2a6b8c10"

func ordersJSON(status string) databaseJSON {
	d := databaseJSON{
		ID:           ordersID,
		Status:       status,
		CreationTime: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Info: databaseInfo{
			Name:          "orders",
			CloudProvider: "GCP",
			Region:        "us-east1",
			Keyspace:      "sales",
			Keyspaces:     []string{"sales", "audit"},
			DBType:        "vector",
		},
	}
	d.Info.Datacenters = append(d.Info.Datacenters, struct {
		Region string `json:"region"`
	}{Region: "us-east1"})
	return d
}

type progressLog struct {
	pushed []string
	depth  int
}

func (p *progressLog) PushMessage(msg string) { p.pushed = append(p.pushed, msg); p.depth++ }
func (p *progressLog) PopMessage()            { p.depth-- }

func TestDatabases_FindAll(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /databases", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "nonterminated", r.URL.Query().Get("include"))
		writeJSON(t, w, http.StatusOK, []databaseJSON{ordersJSON("ACTIVE")})
	})
	c := newTestClient(t, mux)
	progress := &progressLog{}
	c.progress = progress

	dbs, err := c.Gateways().Databases.FindAll(context.Background())
	require.NoError(t, err)
	require.Len(t, dbs, 1)

	assert.Equal(t, gateway.Database{
		ID:        ordersID,
		Name:      "orders",
		Status:    gateway.DatabaseActive,
		Cloud:     "GCP",
		Regions:   []string{"us-east1"},
		Keyspaces: []string{"sales", "audit"},
		Vector:    true,
		CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}, dbs[0])
	assert.Equal(t, []string{"Fetching databases"}, progress.pushed)
	assert.Zero(t, progress.depth)
}

func TestDatabases_FindOne(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /databases", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, []databaseJSON{ordersJSON("ACTIVE")})
	})
	mux.HandleFunc("GET /databases/{id}", func(w http.ResponseWriter, r *http.Request) {
		switch r.PathValue("id") {
		case ordersID:
			writeJSON(t, w, http.StatusOK, ordersJSON("ACTIVE"))
		case "11111111-1111-1111-1111-111111111111":
			writeJSON(t, w, http.StatusOK, databaseJSON{ID: "11111111-1111-1111-1111-111111111111", Status: "TERMINATED"})
		default:
			writeJSON(t, w, http.StatusNotFound, nil)
		}
	})
	dbs := newTestClient(t, mux).Gateways().Databases
	ctx := context.Background()

	t.Run("by name", func(t *testing.T) {
		db, err := dbs.FindOne(ctx, "orders")
		require.NoError(t, err)
		assert.Equal(t, ordersID, db.ID)
	})

	t.Run("by id", func(t *testing.T) {
		db, err := dbs.FindOne(ctx, ordersID)
		require.NoError(t, err)
		assert.Equal(t, "orders", db.Name)
	})

	t.Run("unknown name", func(t *testing.T) {
		_, err := dbs.FindOne(ctx, "billing")
		assert.True(t, gateway.IsNotFound(err))
		exists, err := dbs.Exists(ctx, "billing")
		assert.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := dbs.FindOne(ctx, "22222222-2222-2222-2222-222222222222")
		var nf *gateway.NotFoundError
		require.ErrorAs(t, err, &nf)
		assert.Equal(t, "database", nf.Kind)
	})

	t.Run("terminated id", func(t *testing.T) {
		_, err := dbs.FindOne(ctx, "11111111-1111-1111-1111-111111111111")
		assert.True(t, gateway.IsNotFound(err))
	})
}

func TestDatabases_Create(t *testing.T) {
	t.Run("already exists", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("GET /databases", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(t, w, http.StatusOK, []databaseJSON{ordersJSON("ACTIVE")})
		})
		mux.HandleFunc("POST /databases", func(w http.ResponseWriter, r *http.Request) {
			t.Error("create must not be called for an existing database")
		})

		status, err := newTestClient(t, mux).Gateways().Databases.Create(context.Background(), gateway.DatabaseSpec{Name: "orders", Region: "us-east1"})
		require.NoError(t, err)
		assert.True(t, status.Existed)
		assert.Equal(t, ordersID, status.Resource.ID)
	})

	t.Run("created", func(t *testing.T) {
		var req createDatabaseRequest
		mux := http.NewServeMux()
		mux.HandleFunc("GET /databases", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(t, w, http.StatusOK, []databaseJSON{})
		})
		mux.HandleFunc("POST /databases", func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			w.Header().Set("Location", "/v2/databases/"+ordersID)
			w.WriteHeader(http.StatusCreated)
		})
		mux.HandleFunc("GET /databases/{id}", func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, ordersID, r.PathValue("id"))
			writeJSON(t, w, http.StatusOK, ordersJSON("PENDING"))
		})

		status, err := newTestClient(t, mux).Gateways().Databases.Create(context.Background(), gateway.DatabaseSpec{
			Name: "orders", Region: "us-east1", Cloud: "GCP", Vector: true,
		})
		require.NoError(t, err)
		assert.False(t, status.Existed)
		assert.Equal(t, gateway.DatabasePending, status.Resource.Status)
		assert.Equal(t, createDatabaseRequest{
			Name:          "orders",
			Keyspace:      "default_keyspace",
			CloudProvider: "GCP",
			Region:        "us-east1",
			Tier:          "serverless",
			CapacityUnits: 1,
			DBType:        "vector",
		}, req)
	})
}

func TestDatabases_Delete(t *testing.T) {
	terminated := false
	mux := http.NewServeMux()
	mux.HandleFunc("GET /databases", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, []databaseJSON{ordersJSON("ACTIVE")})
	})
	mux.HandleFunc("POST /databases/{id}/terminate", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, ordersID, r.PathValue("id"))
		terminated = true
		w.WriteHeader(http.StatusAccepted)
	})
	dbs := newTestClient(t, mux).Gateways().Databases

	status, err := dbs.Delete(context.Background(), "billing")
	require.NoError(t, err)
	assert.True(t, status.Missing)
	assert.Equal(t, "billing", status.ID)
	assert.False(t, terminated)

	status, err = dbs.Delete(context.Background(), "orders")
	require.NoError(t, err)
	assert.False(t, status.Missing)
	assert.Equal(t, ordersID, status.ID)
	assert.True(t, terminated)
}
