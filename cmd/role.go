package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"cloudctl/internal/cli"
	"cloudctl/internal/gateway"
	"cloudctl/internal/outcome"
)

func newRoleCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "role",
		Aliases: []string{"roles"},
		Short:   "Manage the roles of your organization",
	}
	cmd.AddCommand(
		newRoleListCmd(rt),
		newRoleGetCmd(rt),
		newRoleCreateCmd(rt),
		newRoleDeleteCmd(rt),
	)
	return cmd
}

var roleColumns = []string{"name", "id", "description"}

func roleRecord(r gateway.Role) cli.Record {
	return cli.Record{
		cli.F("name", r.Name),
		cli.F("id", r.ID),
		cli.F("description", r.Description),
		cli.F("policies", r.Policies),
	}
}

func newRoleListCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List the roles of your organization",
		Args:    exactArgs(),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, rt, cli.Spec[[]gateway.Role]{
				Name:      "role list",
				Connected: true,
				Progress:  "Fetching roles",
				Build: func(_ context.Context, p cli.Profile) (cli.Operation[[]gateway.Role], error) {
					gws, err := rt.gateways(p)
					if err != nil {
						return nil, err
					}
					return cli.OperationFunc[[]gateway.Role](func(ctx context.Context) ([]gateway.Role, error) {
						rs, err := gws.Roles.FindAll(ctx)
						return rs, translate(err, roleKind)
					}), nil
				},
				Render: cli.Renderers[[]gateway.Role]{
					All: func(rs []gateway.Role) (cli.Output, error) {
						rows := make([]cli.Record, len(rs))
						for i, r := range rs {
							rows[i] = roleRecord(r)
						}
						return cli.Table(roleColumns, rows, "No roles found."), nil
					},
				},
			})
		},
	}
}

func newRoleGetCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "get ROLE",
		Short: "Show information about a role, referenced by id or name",
		Args:  exactArgs("role"),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref := args[0]
			return run(cmd, rt, cli.Spec[gateway.Role]{
				Name:      "role get",
				Connected: true,
				Build: func(_ context.Context, p cli.Profile) (cli.Operation[gateway.Role], error) {
					gws, err := rt.gateways(p)
					if err != nil {
						return nil, err
					}
					return cli.OperationFunc[gateway.Role](func(ctx context.Context) (gateway.Role, error) {
						r, err := gws.Roles.FindOne(ctx, ref)
						return r, translate(err, roleKind)
					}), nil
				},
				Render: cli.Renderers[gateway.Role]{
					All: func(r gateway.Role) (cli.Output, error) {
						return cli.Attributes(roleRecord(r)), nil
					},
				},
			})
		},
	}
}

func newRoleCreateCmd(rt *runtime) *cobra.Command {
	var (
		spec        gateway.RoleSpec
		ifNotExists bool
	)
	cmd := &cobra.Command{
		Use:     "create NAME",
		Short:   "Create a custom role",
		Example: `  cloudctl role create readers --policy db-read --policy org-read`,
		Args:    exactArgs("name"),
		RunE: func(cmd *cobra.Command, args []string) error {
			spec.Name = args[0]
			return run(cmd, rt, cli.Spec[outcome.Create[gateway.Role]]{
				Name:      "role create",
				Connected: true,
				Progress:  fmt.Sprintf("Creating role %s", cli.Highlight(spec.Name)),
				Setup: func(context.Context) error {
					for _, p := range spec.Policies {
						if strings.TrimSpace(p) == "" {
							return cli.ValidationError("Policies must not be empty.")
						}
					}
					return nil
				},
				Build: func(_ context.Context, p cli.Profile) (cli.Operation[outcome.Create[gateway.Role]], error) {
					gws, err := rt.gateways(p)
					if err != nil {
						return nil, err
					}
					return cli.OperationFunc[outcome.Create[gateway.Role]](func(ctx context.Context) (outcome.Create[gateway.Role], error) {
						status, err := gws.Roles.Create(ctx, spec)
						if err != nil {
							return nil, translate(err, roleKind)
						}
						return outcome.FromCreationStatus(status, ifNotExists), nil
					}), nil
				},
				Render: cli.Renderers[outcome.Create[gateway.Role]]{
					All: func(o outcome.Create[gateway.Role]) (cli.Output, error) {
						return outcome.MatchCreate(o,
							func(v outcome.AlreadyExists[gateway.Role]) (cli.Output, error) {
								return cli.Response(
									fmt.Sprintf("Role %s already exists.", cli.Highlight(v.Resource.Name)),
									cli.Record{cli.F("wasCreated", false), cli.F("id", v.Resource.ID)},
									roleKind.getHint("Get information about the existing role:", v.Resource.Name),
								), nil
							},
							func(v outcome.IllegallyAlreadyExists[gateway.Role]) (cli.Output, error) {
								return nil, rt.alreadyExists(roleKind, v.Resource.Name)
							},
							func(v outcome.Created[gateway.Role]) (cli.Output, error) {
								return cli.Response(
									fmt.Sprintf("Role %s has been created.", cli.Highlight(v.Resource.Name)),
									cli.Record{cli.F("wasCreated", true), cli.F("id", v.Resource.ID)},
									roleKind.getHint("Get information about the new role:", v.Resource.Name),
									cli.NewHint("Create a token with the new role:", fmt.Sprintf("%s token create --role %s", cli.RootCommandName, cli.ShellQuote(v.Resource.Name))),
								), nil
							},
						)
					},
				},
			})
		},
	}
	cmd.Flags().StringSliceVar(&spec.Policies, "policy", nil, "Action the role allows (repeatable)")
	cmd.Flags().StringVarP(&spec.Description, "description", "d", "", "Description of the role")
	cmd.Flags().BoolVar(&ifNotExists, "if-not-exists", false, "Succeed without changes if the role already exists")
	_ = cmd.MarkFlagRequired("policy")
	return cmd
}

func newRoleDeleteCmd(rt *runtime) *cobra.Command {
	var ifExists bool
	cmd := &cobra.Command{
		Use:     "delete ROLE",
		Aliases: []string{"rm"},
		Short:   "Delete a custom role",
		Args:    exactArgs("role"),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref := args[0]
			return run(cmd, rt, cli.Spec[outcome.Delete[string]]{
				Name:      "role delete",
				Connected: true,
				Progress:  fmt.Sprintf("Deleting role %s", cli.Highlight(ref)),
				Build: func(_ context.Context, p cli.Profile) (cli.Operation[outcome.Delete[string]], error) {
					gws, err := rt.gateways(p)
					if err != nil {
						return nil, err
					}
					return cli.OperationFunc[outcome.Delete[string]](func(ctx context.Context) (outcome.Delete[string], error) {
						status, err := gws.Roles.Delete(ctx, ref)
						if err != nil {
							return nil, translate(err, roleKind)
						}
						return outcome.FromDeletionStatus(status, ifExists), nil
					}), nil
				},
				Render: cli.Renderers[outcome.Delete[string]]{
					All: func(o outcome.Delete[string]) (cli.Output, error) {
						return rt.renderDelete(o, roleKind, "Role", ref)
					},
				},
			})
		},
	}
	cmd.Flags().BoolVar(&ifExists, "if-exists", false, "Succeed without changes if the role does not exist")
	return cmd
}
