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

type rolePolicy struct {
	Description string   `json:"description"`
	Resources   []string `json:"resources"`
	Actions     []string `json:"actions"`
	Effect      string   `json:"effect"`
}

type roleJSON struct {
	ID     string     `json:"id"`
	Name   string     `json:"name"`
	Policy rolePolicy `json:"policy"`
}

func (r roleJSON) model() gateway.Role {
	return gateway.Role{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Policy.Description,
		Policies:    r.Policy.Actions,
	}
}

type createRoleRequest struct {
	Name   string     `json:"name"`
	Policy rolePolicy `json:"policy"`
}

// Roles is the HTTP role gateway.
type Roles struct {
	c *Client
}

var _ gateway.RoleGateway = (*Roles)(nil)

// FindAll lists the roles of the organization, built-in roles included.
func (g *Roles) FindAll(ctx context.Context) ([]gateway.Role, error) {
	return gateway.Step(g.c.progress, "Fetching roles", func() ([]gateway.Role, error) {
		return g.list(ctx)
	})
}

func (g *Roles) list(ctx context.Context) ([]gateway.Role, error) {
	var raw []roleJSON
	if _, err := g.c.do(ctx, http.MethodGet, "/organizations/roles", nil, &raw); err != nil {
		return nil, err
	}
	roles := make([]gateway.Role, len(raw))
	for i, r := range raw {
		roles[i] = r.model()
	}
	return roles, nil
}

// FindOne looks a role up by id or name.
func (g *Roles) FindOne(ctx context.Context, ref string) (gateway.Role, error) {
	return gateway.Step(g.c.progress, fmt.Sprintf("Fetching role %s", cli.Highlight(ref)), func() (gateway.Role, error) {
		return g.findOne(ctx, ref)
	})
}

func (g *Roles) findOne(ctx context.Context, ref string) (gateway.Role, error) {
	roles, err := g.list(ctx)
	if err != nil {
		return gateway.Role{}, err
	}
	r, ok := gateway.FindFirst(roles, ref, gateway.MatchRole)
	if !ok {
		return gateway.Role{}, &gateway.NotFoundError{Kind: "role", Ref: ref}
	}
	return r, nil
}

// resolveIDs maps role references to role ids.
func (g *Roles) resolveIDs(ctx context.Context, refs []string) ([]string, error) {
	ids := make([]string, 0, len(refs))
	var roles []gateway.Role
	for _, ref := range refs {
		if gateway.IsUUID(ref) {
			ids = append(ids, ref)
			continue
		}
		if roles == nil {
			var err error
			if roles, err = g.list(ctx); err != nil {
				return nil, err
			}
		}
		r, ok := gateway.FindFirst(roles, ref, gateway.MatchRole)
		if !ok {
			return nil, &gateway.NotFoundError{Kind: "role", Ref: ref}
		}
		ids = append(ids, r.ID)
	}
	return ids, nil
}

// Exists reports whether a role is referenced by ref.
func (g *Roles) Exists(ctx context.Context, ref string) (bool, error) {
	_, err := g.FindOne(ctx, ref)
	if gateway.IsNotFound(err) {
		return false, nil
	}
	return err == nil, err
}

// Create creates a custom role unless one with the same name exists.
func (g *Roles) Create(ctx context.Context, spec gateway.RoleSpec) (outcome.CreationStatus[gateway.Role], error) {
	existing, err := g.FindOne(ctx, spec.Name)
	switch {
	case err == nil:
		return outcome.AlreadyExistsStatus(existing), nil
	case !gateway.IsNotFound(err):
		return outcome.CreationStatus[gateway.Role]{}, err
	}

	orgID, err := g.c.organizationID(ctx)
	if err != nil {
		return outcome.CreationStatus[gateway.Role]{}, err
	}

	req := createRoleRequest{
		Name: spec.Name,
		Policy: rolePolicy{
			Description: spec.Description,
			Resources:   []string{"drn:astra:org:" + orgID},
			Actions:     spec.Policies,
			Effect:      "allow",
		},
	}
	role, err := gateway.Step(g.c.progress, fmt.Sprintf("Creating role %s", cli.Highlight(spec.Name)), func() (gateway.Role, error) {
		var created roleJSON
		if _, err := g.c.do(ctx, http.MethodPost, "/organizations/roles", req, &created); err != nil {
			return gateway.Role{}, err
		}
		return created.model(), nil
	})
	if err != nil {
		return outcome.CreationStatus[gateway.Role]{}, err
	}
	return outcome.CreatedStatus(role), nil
}

// Delete deletes a custom role.
func (g *Roles) Delete(ctx context.Context, ref string) (outcome.DeletionStatus[string], error) {
	role, err := g.FindOne(ctx, ref)
	if gateway.IsNotFound(err) {
		return outcome.NotFoundStatus(ref), nil
	}
	if err != nil {
		return outcome.DeletionStatus[string]{}, err
	}

	_, err = gateway.Step(g.c.progress, fmt.Sprintf("Deleting role %s", cli.Highlight(role.Name)), func() (struct{}, error) {
		_, err := g.c.do(ctx, http.MethodDelete, "/organizations/roles/"+url.PathEscape(role.ID), nil, nil)
		return struct{}{}, notFound(err, "role", ref)
	})
	if err != nil {
		return outcome.DeletionStatus[string]{}, err
	}
	return outcome.DeletedStatus(role.ID), nil
}
