package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"cloudctl/internal/cli"
	"cloudctl/internal/gateway"
	"cloudctl/internal/outcome"
)

func newTokenCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "token",
		Aliases: []string{"tokens"},
		Short:   "Manage application tokens",
	}
	cmd.AddCommand(
		newTokenListCmd(rt),
		newTokenCreateCmd(rt),
		newTokenDeleteCmd(rt),
	)
	return cmd
}

var tokenColumns = []string{"clientId", "roles", "generatedOn"}

func tokenRecord(t gateway.Token) cli.Record {
	return cli.Record{
		cli.F("clientId", t.ClientID),
		cli.F("roles", t.Roles),
		cli.F("generatedOn", t.GeneratedOn),
	}
}

func newTokenListCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List your application tokens",
		Args:    exactArgs(),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, rt, cli.Spec[[]gateway.Token]{
				Name:      "token list",
				Connected: true,
				Progress:  "Fetching tokens",
				Build: func(_ context.Context, p cli.Profile) (cli.Operation[[]gateway.Token], error) {
					gws, err := rt.gateways(p)
					if err != nil {
						return nil, err
					}
					return cli.OperationFunc[[]gateway.Token](func(ctx context.Context) ([]gateway.Token, error) {
						ts, err := gws.Tokens.FindAll(ctx)
						return ts, translate(err, tokenKind)
					}), nil
				},
				Render: cli.Renderers[[]gateway.Token]{
					All: func(ts []gateway.Token) (cli.Output, error) {
						rows := make([]cli.Record, len(ts))
						for i, t := range ts {
							rows[i] = tokenRecord(t)
						}
						return cli.Table(tokenColumns, rows, "No tokens found."), nil
					},
				},
			})
		},
	}
}

// createdTokenRecord includes the credentials, which are only shown once.
func createdTokenRecord(t gateway.Token) cli.Record {
	return append(tokenRecord(t), cli.F("secret", t.Secret), cli.F("token", t.Value))
}

func newTokenCreateCmd(rt *runtime) *cobra.Command {
	var roles []string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an application token",
		Long: `Create an application token with the given roles.

The secret and the token value are printed once and cannot be retrieved
again.`,
		Args: exactArgs(),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, rt, cli.Spec[gateway.Token]{
				Name:      "token create",
				Connected: true,
				Progress:  "Creating token",
				Build: func(_ context.Context, p cli.Profile) (cli.Operation[gateway.Token], error) {
					gws, err := rt.gateways(p)
					if err != nil {
						return nil, err
					}
					return cli.OperationFunc[gateway.Token](func(ctx context.Context) (gateway.Token, error) {
						t, err := gws.Tokens.Create(ctx, roles)
						return t, translate(err, roleKind)
					}), nil
				},
				Render: cli.Renderers[gateway.Token]{
					Human: func(t gateway.Token, theme cli.Theme) (string, error) {
						attrs, err := cli.Encode(cli.Attributes(createdTokenRecord(t)), cli.OutputHuman, theme)
						if err != nil {
							return "", err
						}
						msg := theme.Expand(fmt.Sprintf("Token %s has been created.", cli.Highlight(t.ClientID)))
						return msg + "\n\n" + attrs + "\n\n" + theme.Warning("Store the secret and token now; they cannot be shown again."), nil
					},
					All: func(t gateway.Token) (cli.Output, error) {
						return cli.Attributes(createdTokenRecord(t)), nil
					},
				},
			})
		},
	}
	cmd.Flags().StringSliceVarP(&roles, "role", "r", nil, "Role to grant the token, by id or name (repeatable)")
	_ = cmd.MarkFlagRequired("role")
	return cmd
}

func newTokenDeleteCmd(rt *runtime) *cobra.Command {
	var ifExists bool
	cmd := &cobra.Command{
		Use:     "delete CLIENT_ID",
		Aliases: []string{"rm"},
		Short:   "Revoke an application token",
		Args:    exactArgs("client_id"),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientID := args[0]
			return run(cmd, rt, cli.Spec[outcome.Delete[string]]{
				Name:      "token delete",
				Connected: true,
				Progress:  fmt.Sprintf("Revoking token %s", cli.Highlight(clientID)),
				Build: func(_ context.Context, p cli.Profile) (cli.Operation[outcome.Delete[string]], error) {
					gws, err := rt.gateways(p)
					if err != nil {
						return nil, err
					}
					return cli.OperationFunc[outcome.Delete[string]](func(ctx context.Context) (outcome.Delete[string], error) {
						status, err := gws.Tokens.Delete(ctx, clientID)
						if err != nil {
							return nil, translate(err, tokenKind)
						}
						return outcome.FromDeletionStatus(status, ifExists), nil
					}), nil
				},
				Render: cli.Renderers[outcome.Delete[string]]{
					All: func(o outcome.Delete[string]) (cli.Output, error) {
						return rt.renderDelete(o, tokenKind, "Token", clientID)
					},
				},
			})
		},
	}
	cmd.Flags().BoolVar(&ifExists, "if-exists", false, "Succeed without changes if the token does not exist")
	return cmd
}
