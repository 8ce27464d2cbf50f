package api

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"cloudctl/internal/gateway"
	"cloudctl/internal/outcome"
)

type tokenJSON struct {
	ClientID    string   `json:"clientId"`
	Roles       []string `json:"roles"`
	GeneratedOn string   `json:"generatedOn"`
	Secret      string   `json:"secret,omitempty"`
	Token       string   `json:"token,omitempty"`
}

func (t tokenJSON) model() gateway.Token {
	generated, _ := time.Parse(time.RFC3339, t.GeneratedOn)
	return gateway.Token{
		ClientID:    t.ClientID,
		Roles:       t.Roles,
		GeneratedOn: generated,
		Secret:      t.Secret,
		Value:       t.Token,
	}
}

type tokensResponse struct {
	Clients []tokenJSON `json:"clients"`
}

type createTokenRequest struct {
	Roles []string `json:"roles"`
}

// Tokens is the HTTP application token gateway.
type Tokens struct {
	c *Client
}

var _ gateway.TokenGateway = (*Tokens)(nil)

// FindAll lists the application tokens of the organization. Secrets are
// never returned.
func (g *Tokens) FindAll(ctx context.Context) ([]gateway.Token, error) {
	return gateway.Step(g.c.progress, "Fetching tokens", func() ([]gateway.Token, error) {
		return g.list(ctx)
	})
}

func (g *Tokens) list(ctx context.Context) ([]gateway.Token, error) {
	var resp tokensResponse
	if _, err := g.c.do(ctx, http.MethodGet, "/clientIdSecrets", nil, &resp); err != nil {
		return nil, err
	}
	tokens := make([]gateway.Token, len(resp.Clients))
	for i, t := range resp.Clients {
		tokens[i] = t.model()
	}
	return tokens, nil
}

// Exists reports whether a token with this client id exists.
func (g *Tokens) Exists(ctx context.Context, clientID string) (bool, error) {
	tokens, err := g.list(ctx)
	if err != nil {
		return false, err
	}
	_, ok := gateway.FindFirst(tokens, clientID, func(t gateway.Token, ref string) bool { return t.ClientID == ref })
	return ok, nil
}

// Create generates a token with the given roles, referenced by id or name.
func (g *Tokens) Create(ctx context.Context, roles []string) (gateway.Token, error) {
	roleIDs, err := (&Roles{c: g.c}).resolveIDs(ctx, roles)
	if err != nil {
		return gateway.Token{}, err
	}

	return gateway.Step(g.c.progress, "Generating token", func() (gateway.Token, error) {
		var created tokenJSON
		if _, err := g.c.do(ctx, http.MethodPost, "/clientIdSecrets", createTokenRequest{Roles: roleIDs}, &created); err != nil {
			return gateway.Token{}, err
		}
		return created.model(), nil
	})
}

// Delete revokes a token.
func (g *Tokens) Delete(ctx context.Context, clientID string) (outcome.DeletionStatus[string], error) {
	exists, err := gateway.Step(g.c.progress, "Fetching tokens", func() (bool, error) {
		return g.Exists(ctx, clientID)
	})
	if err != nil {
		return outcome.DeletionStatus[string]{}, err
	}
	if !exists {
		return outcome.NotFoundStatus(clientID), nil
	}

	_, err = gateway.Step(g.c.progress, "Revoking token", func() (struct{}, error) {
		_, err := g.c.do(ctx, http.MethodDelete, "/clientIdSecrets/"+url.PathEscape(clientID), nil, nil)
		return struct{}{}, notFound(err, "token", clientID)
	})
	if err != nil {
		return outcome.DeletionStatus[string]{}, err
	}
	return outcome.DeletedStatus(clientID), nil
}
