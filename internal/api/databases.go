package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"time"

	"cloudctl/internal/cli"
	"cloudctl/internal/gateway"
	"cloudctl/internal/outcome"
)

const (
	defaultTier          = "serverless"
	defaultCapacityUnits = 1
	vectorDBType         = "vector"
)

type databaseInfo struct {
	Name          string   `json:"name"`
	CloudProvider string   `json:"cloudProvider"`
	Region        string   `json:"region"`
	Keyspace      string   `json:"keyspace"`
	Keyspaces     []string `json:"keyspaces"`
	DBType        string   `json:"dbType,omitempty"`
	Datacenters   []struct {
		Region string `json:"region"`
	} `json:"datacenters"`
}

type databaseJSON struct {
	ID           string       `json:"id"`
	Status       string       `json:"status"`
	CreationTime time.Time    `json:"creationTime"`
	Info         databaseInfo `json:"info"`
}

func (d databaseJSON) model() gateway.Database {
	regions := make([]string, 0, len(d.Info.Datacenters)+1)
	for _, dc := range d.Info.Datacenters {
		regions = append(regions, dc.Region)
	}
	if len(regions) == 0 && d.Info.Region != "" {
		regions = append(regions, d.Info.Region)
	}

	keyspaces := d.Info.Keyspaces
	if len(keyspaces) == 0 && d.Info.Keyspace != "" {
		keyspaces = []string{d.Info.Keyspace}
	}

	return gateway.Database{
		ID:        d.ID,
		Name:      d.Info.Name,
		Status:    gateway.DatabaseStatus(d.Status),
		Cloud:     d.Info.CloudProvider,
		Regions:   regions,
		Keyspaces: keyspaces,
		Vector:    d.Info.DBType == vectorDBType,
		CreatedAt: d.CreationTime,
	}
}

type createDatabaseRequest struct {
	Name          string `json:"name"`
	Keyspace      string `json:"keyspace"`
	CloudProvider string `json:"cloudProvider"`
	Region        string `json:"region"`
	Tier          string `json:"tier"`
	CapacityUnits int    `json:"capacityUnits"`
	DBType        string `json:"dbType,omitempty"`
}

// Databases is the HTTP database gateway.
type Databases struct {
	c *Client
}

var _ gateway.DatabaseGateway = (*Databases)(nil)

// FindAll lists the databases that are not terminated.
func (g *Databases) FindAll(ctx context.Context) ([]gateway.Database, error) {
	return gateway.Step(g.c.progress, "Fetching databases", func() ([]gateway.Database, error) {
		return g.list(ctx)
	})
}

func (g *Databases) list(ctx context.Context) ([]gateway.Database, error) {
	var raw []databaseJSON
	if _, err := g.c.do(ctx, http.MethodGet, "/databases?include=nonterminated&limit=1000", nil, &raw); err != nil {
		return nil, err
	}
	dbs := make([]gateway.Database, len(raw))
	for i, d := range raw {
		dbs[i] = d.model()
	}
	return dbs, nil
}

// FindOne looks a database up by id or name.
func (g *Databases) FindOne(ctx context.Context, ref string) (gateway.Database, error) {
	return gateway.Step(g.c.progress, fmt.Sprintf("Fetching database %s", cli.Highlight(ref)), func() (gateway.Database, error) {
		return g.findOne(ctx, ref)
	})
}

func (g *Databases) findOne(ctx context.Context, ref string) (gateway.Database, error) {
	if gateway.IsUUID(ref) {
		var raw databaseJSON
		if _, err := g.c.do(ctx, http.MethodGet, "/databases/"+url.PathEscape(ref), nil, &raw); err != nil {
			return gateway.Database{}, notFound(err, "database", ref)
		}
		if gateway.DatabaseStatus(raw.Status) == gateway.DatabaseTerminated {
			return gateway.Database{}, &gateway.NotFoundError{Kind: "database", Ref: ref}
		}
		return raw.model(), nil
	}

	dbs, err := g.list(ctx)
	if err != nil {
		return gateway.Database{}, err
	}
	db, ok := gateway.FindFirst(dbs, ref, gateway.MatchDatabase)
	if !ok {
		return gateway.Database{}, &gateway.NotFoundError{Kind: "database", Ref: ref}
	}
	return db, nil
}

// Exists reports whether a database is referenced by ref.
func (g *Databases) Exists(ctx context.Context, ref string) (bool, error) {
	_, err := g.FindOne(ctx, ref)
	if gateway.IsNotFound(err) {
		return false, nil
	}
	return err == nil, err
}

// Create creates a database unless one with the same name exists.
// The returned database is in its initial status; callers wait for ACTIVE.
func (g *Databases) Create(ctx context.Context, spec gateway.DatabaseSpec) (outcome.CreationStatus[gateway.Database], error) {
	existing, err := g.FindOne(ctx, spec.Name)
	switch {
	case err == nil:
		return outcome.AlreadyExistsStatus(existing), nil
	case !gateway.IsNotFound(err):
		return outcome.CreationStatus[gateway.Database]{}, err
	}

	keyspace := spec.Keyspace
	if keyspace == "" {
		keyspace = "default_keyspace"
	}
	req := createDatabaseRequest{
		Name:          spec.Name,
		Keyspace:      keyspace,
		CloudProvider: spec.Cloud,
		Region:        spec.Region,
		Tier:          defaultTier,
		CapacityUnits: defaultCapacityUnits,
	}
	if spec.Vector {
		req.DBType = vectorDBType
	}

	db, err := gateway.Step(g.c.progress, fmt.Sprintf("Creating database %s", cli.Highlight(spec.Name)), func() (gateway.Database, error) {
		header, err := g.c.do(ctx, http.MethodPost, "/databases", req, nil)
		if err != nil {
			return gateway.Database{}, err
		}
		// The id of the new database is the last segment of Location.
		id := path.Base(header.Get("Location"))
		if id == "" || id == "." || id == "/" {
			return gateway.Database{}, fmt.Errorf("the API did not return the id of database %q", spec.Name)
		}
		return g.findOne(ctx, id)
	})
	if err != nil {
		return outcome.CreationStatus[gateway.Database]{}, err
	}
	return outcome.CreatedStatus(db), nil
}

// Delete terminates a database. The returned id is the database id, not ref.
func (g *Databases) Delete(ctx context.Context, ref string) (outcome.DeletionStatus[string], error) {
	db, err := g.FindOne(ctx, ref)
	if gateway.IsNotFound(err) {
		return outcome.NotFoundStatus(ref), nil
	}
	if err != nil {
		return outcome.DeletionStatus[string]{}, err
	}

	_, err = gateway.Step(g.c.progress, fmt.Sprintf("Terminating database %s", cli.Highlight(db.Name)), func() (struct{}, error) {
		_, err := g.c.do(ctx, http.MethodPost, "/databases/"+url.PathEscape(db.ID)+"/terminate", nil, nil)
		return struct{}{}, notFound(err, "database", ref)
	})
	if err != nil {
		return outcome.DeletionStatus[string]{}, err
	}
	return outcome.DeletedStatus(db.ID), nil
}
