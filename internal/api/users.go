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

type userJSON struct {
	UserID string `json:"UserID"`
	Email  string `json:"Email"`
	Status string `json:"Status"`
	Roles  []struct {
		ID   string `json:"ID"`
		Name string `json:"Name"`
	} `json:"Roles"`
}

func (u userJSON) model() gateway.User {
	roles := make([]string, len(u.Roles))
	for i, r := range u.Roles {
		roles[i] = r.Name
	}
	return gateway.User{ID: u.UserID, Email: u.Email, Status: u.Status, Roles: roles}
}

type usersResponse struct {
	OrgID string     `json:"OrgID"`
	Users []userJSON `json:"Users"`
}

type inviteUserRequest struct {
	Email string   `json:"email"`
	OrgID string   `json:"orgID"`
	Roles []string `json:"roles"`
}

// Users is the HTTP user gateway.
type Users struct {
	c *Client
}

var _ gateway.UserGateway = (*Users)(nil)

// FindAll lists the members of the organization.
func (g *Users) FindAll(ctx context.Context) ([]gateway.User, error) {
	return gateway.Step(g.c.progress, "Fetching users", func() ([]gateway.User, error) {
		return g.list(ctx)
	})
}

func (g *Users) list(ctx context.Context) ([]gateway.User, error) {
	var resp usersResponse
	if _, err := g.c.do(ctx, http.MethodGet, "/organizations/users", nil, &resp); err != nil {
		return nil, err
	}
	users := make([]gateway.User, len(resp.Users))
	for i, u := range resp.Users {
		users[i] = u.model()
	}
	return users, nil
}

// FindOne looks a user up by id or email.
func (g *Users) FindOne(ctx context.Context, ref string) (gateway.User, error) {
	return gateway.Step(g.c.progress, fmt.Sprintf("Fetching user %s", cli.Highlight(ref)), func() (gateway.User, error) {
		if gateway.IsUUID(ref) {
			var raw userJSON
			if _, err := g.c.do(ctx, http.MethodGet, "/organizations/users/"+url.PathEscape(ref), nil, &raw); err != nil {
				return gateway.User{}, notFound(err, "user", ref)
			}
			return raw.model(), nil
		}

		users, err := g.list(ctx)
		if err != nil {
			return gateway.User{}, err
		}
		u, ok := gateway.FindFirst(users, ref, gateway.MatchUser)
		if !ok {
			return gateway.User{}, &gateway.NotFoundError{Kind: "user", Ref: ref}
		}
		return u, nil
	})
}

// Exists reports whether a user is referenced by ref.
func (g *Users) Exists(ctx context.Context, ref string) (bool, error) {
	_, err := g.FindOne(ctx, ref)
	if gateway.IsNotFound(err) {
		return false, nil
	}
	return err == nil, err
}

// Invite invites email into the organization with the given roles, unless
// the address already belongs to a member.
func (g *Users) Invite(ctx context.Context, email string, roles []string) (outcome.CreationStatus[gateway.User], error) {
	existing, err := g.FindOne(ctx, email)
	switch {
	case err == nil:
		return outcome.AlreadyExistsStatus(existing), nil
	case !gateway.IsNotFound(err):
		return outcome.CreationStatus[gateway.User]{}, err
	}

	roleIDs, err := (&Roles{c: g.c}).resolveIDs(ctx, roles)
	if err != nil {
		return outcome.CreationStatus[gateway.User]{}, err
	}
	orgID, err := g.c.organizationID(ctx)
	if err != nil {
		return outcome.CreationStatus[gateway.User]{}, err
	}

	user, err := gateway.Step(g.c.progress, fmt.Sprintf("Inviting %s", cli.Highlight(email)), func() (gateway.User, error) {
		req := inviteUserRequest{Email: email, OrgID: orgID, Roles: roleIDs}
		if _, err := g.c.do(ctx, http.MethodPut, "/organizations/users", req, nil); err != nil {
			return gateway.User{}, err
		}
		return gateway.User{Email: email, Status: "invited", Roles: roles}, nil
	})
	if err != nil {
		return outcome.CreationStatus[gateway.User]{}, err
	}
	return outcome.CreatedStatus(user), nil
}

// Delete removes a user from the organization.
func (g *Users) Delete(ctx context.Context, ref string) (outcome.DeletionStatus[string], error) {
	user, err := g.FindOne(ctx, ref)
	if gateway.IsNotFound(err) {
		return outcome.NotFoundStatus(ref), nil
	}
	if err != nil {
		return outcome.DeletionStatus[string]{}, err
	}

	_, err = gateway.Step(g.c.progress, fmt.Sprintf("Removing user %s", cli.Highlight(user.Email)), func() (struct{}, error) {
		_, err := g.c.do(ctx, http.MethodDelete, "/organizations/users/"+url.PathEscape(user.ID), nil, nil)
		return struct{}{}, notFound(err, "user", ref)
	})
	if err != nil {
		return outcome.DeletionStatus[string]{}, err
	}
	return outcome.DeletedStatus(user.ID), nil
}
