package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"cloudctl/internal/cli"
	"cloudctl/internal/gateway"
	"cloudctl/internal/outcome"
)

type createTenantRequest struct {
	TenantName    string `json:"tenantName"`
	CloudProvider string `json:"cloudProvider"`
	CloudRegion   string `json:"cloudRegion"`
	Plan          string `json:"plan"`
	UserEmail     string `json:"userEmail,omitempty"`
	ClusterName   string `json:"clusterName,omitempty"`
}

// Tenants is the HTTP streaming tenant gateway.
type Tenants struct {
	c *Client
}

var _ gateway.TenantGateway = (*Tenants)(nil)

// FindAll lists the streaming tenants of the organization.
func (g *Tenants) FindAll(ctx context.Context) ([]gateway.Tenant, error) {
	return gateway.Step(g.c.progress, "Fetching streaming tenants", func() ([]gateway.Tenant, error) {
		return g.list(ctx)
	})
}

func (g *Tenants) list(ctx context.Context) ([]gateway.Tenant, error) {
	var tenants []gateway.Tenant
	if _, err := g.c.do(ctx, http.MethodGet, "/streaming/tenants", nil, &tenants); err != nil {
		return nil, err
	}
	return tenants, nil
}

// FindOne looks a tenant up by name.
func (g *Tenants) FindOne(ctx context.Context, name string) (gateway.Tenant, error) {
	return gateway.Step(g.c.progress, fmt.Sprintf("Fetching tenant %s", cli.Highlight(name)), func() (gateway.Tenant, error) {
		tenants, err := g.list(ctx)
		if err != nil {
			return gateway.Tenant{}, err
		}
		t, ok := gateway.FindFirst(tenants, name, func(t gateway.Tenant, ref string) bool { return t.Name == ref })
		if !ok {
			return gateway.Tenant{}, &gateway.NotFoundError{Kind: "tenant", Ref: name}
		}
		return t, nil
	})
}

// Exists reports whether a tenant with this name exists.
func (g *Tenants) Exists(ctx context.Context, name string) (bool, error) {
	_, err := g.FindOne(ctx, name)
	if gateway.IsNotFound(err) {
		return false, nil
	}
	return err == nil, err
}

// Create creates a tenant unless one with the same name exists.
func (g *Tenants) Create(ctx context.Context, spec gateway.TenantSpec) (outcome.CreationStatus[gateway.Tenant], error) {
	existing, err := g.FindOne(ctx, spec.Name)
	switch {
	case err == nil:
		return outcome.AlreadyExistsStatus(existing), nil
	case !gateway.IsNotFound(err):
		return outcome.CreationStatus[gateway.Tenant]{}, err
	}

	req := createTenantRequest{
		TenantName:    spec.Name,
		CloudProvider: spec.Cloud,
		CloudRegion:   spec.Region,
		Plan:          string(spec.Plan),
		UserEmail:     spec.Email,
		ClusterName:   spec.Cluster,
	}
	tenant, err := gateway.Step(g.c.progress, fmt.Sprintf("Creating tenant %s", cli.Highlight(spec.Name)), func() (gateway.Tenant, error) {
		var created gateway.Tenant
		if _, err := g.c.do(ctx, http.MethodPost, "/streaming/tenants", req, &created); err != nil {
			return gateway.Tenant{}, err
		}
		if created.Name == "" {
			created = gateway.Tenant{
				Name:    spec.Name,
				Cloud:   spec.Cloud,
				Region:  spec.Region,
				Plan:    spec.Plan,
				Cluster: spec.Cluster,
				Email:   spec.Email,
			}
		}
		return created, nil
	})
	if err != nil {
		return outcome.CreationStatus[gateway.Tenant]{}, err
	}
	return outcome.CreatedStatus(tenant), nil
}

// Delete deletes a tenant from the cluster it runs on.
func (g *Tenants) Delete(ctx context.Context, name string) (outcome.DeletionStatus[string], error) {
	tenant, err := g.FindOne(ctx, name)
	if gateway.IsNotFound(err) {
		return outcome.NotFoundStatus(name), nil
	}
	if err != nil {
		return outcome.DeletionStatus[string]{}, err
	}

	_, err = gateway.Step(g.c.progress, fmt.Sprintf("Deleting tenant %s", cli.Highlight(name)), func() (struct{}, error) {
		p := "/streaming/tenants/" + url.PathEscape(name) + "/clusters/" + url.PathEscape(tenant.Cluster)
		_, err := g.c.do(ctx, http.MethodDelete, p, nil, nil)
		return struct{}{}, notFound(err, "tenant", name)
	})
	if err != nil {
		return outcome.DeletionStatus[string]{}, err
	}
	return outcome.DeletedStatus(name), nil
}
