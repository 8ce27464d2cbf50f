package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"cloudctl/internal/cli"
	"cloudctl/internal/gateway"
	"cloudctl/internal/outcome"
)

func newUserCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "user",
		Aliases: []string{"users"},
		Short:   "Manage the users of your organization",
	}
	cmd.AddCommand(
		newUserListCmd(rt),
		newUserGetCmd(rt),
		newUserInviteCmd(rt),
		newUserDeleteCmd(rt),
	)
	return cmd
}

var userColumns = []string{"email", "id", "status"}

func userRecord(u gateway.User) cli.Record {
	return cli.Record{
		cli.F("email", u.Email),
		cli.F("id", u.ID),
		cli.F("status", u.Status),
		cli.F("roles", u.Roles),
	}
}

func newUserListCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List the users of your organization",
		Args:    exactArgs(),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, rt, cli.Spec[[]gateway.User]{
				Name:      "user list",
				Connected: true,
				Progress:  "Fetching users",
				Build: func(_ context.Context, p cli.Profile) (cli.Operation[[]gateway.User], error) {
					gws, err := rt.gateways(p)
					if err != nil {
						return nil, err
					}
					return cli.OperationFunc[[]gateway.User](func(ctx context.Context) ([]gateway.User, error) {
						us, err := gws.Users.FindAll(ctx)
						return us, translate(err, userKind)
					}), nil
				},
				Render: cli.Renderers[[]gateway.User]{
					All: func(us []gateway.User) (cli.Output, error) {
						rows := make([]cli.Record, len(us))
						for i, u := range us {
							rows[i] = userRecord(u)
						}
						return cli.Table(userColumns, rows, "No users found."), nil
					},
				},
			})
		},
	}
}

func newUserGetCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "get USER",
		Short: "Show information about a user, referenced by id or email",
		Args:  exactArgs("user"),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref := args[0]
			return run(cmd, rt, cli.Spec[gateway.User]{
				Name:      "user get",
				Connected: true,
				Build: func(_ context.Context, p cli.Profile) (cli.Operation[gateway.User], error) {
					gws, err := rt.gateways(p)
					if err != nil {
						return nil, err
					}
					return cli.OperationFunc[gateway.User](func(ctx context.Context) (gateway.User, error) {
						u, err := gws.Users.FindOne(ctx, ref)
						return u, translate(err, userKind)
					}), nil
				},
				Render: cli.Renderers[gateway.User]{
					All: func(u gateway.User) (cli.Output, error) {
						return cli.Attributes(userRecord(u)), nil
					},
				},
			})
		},
	}
}

func newUserInviteCmd(rt *runtime) *cobra.Command {
	var (
		roles       []string
		ifNotExists bool
	)
	cmd := &cobra.Command{
		Use:     "invite EMAIL",
		Short:   "Invite a user to your organization",
		Example: `  cloudctl user invite jane@example.com --role "Database Administrator"`,
		Args:    exactArgs("email"),
		RunE: func(cmd *cobra.Command, args []string) error {
			email := args[0]
			return run(cmd, rt, cli.Spec[outcome.Create[gateway.User]]{
				Name:      "user invite",
				Connected: true,
				Progress:  fmt.Sprintf("Inviting %s", cli.Highlight(email)),
				Setup: func(context.Context) error {
					return validateEmail(email)
				},
				Build: func(_ context.Context, p cli.Profile) (cli.Operation[outcome.Create[gateway.User]], error) {
					gws, err := rt.gateways(p)
					if err != nil {
						return nil, err
					}
					return cli.OperationFunc[outcome.Create[gateway.User]](func(ctx context.Context) (outcome.Create[gateway.User], error) {
						status, err := gws.Users.Invite(ctx, email, roles)
						if err != nil {
							return nil, translate(err, roleKind)
						}
						return outcome.FromCreationStatus(status, ifNotExists), nil
					}), nil
				},
				Render: cli.Renderers[outcome.Create[gateway.User]]{
					All: func(o outcome.Create[gateway.User]) (cli.Output, error) {
						return outcome.MatchCreate(o,
							func(v outcome.AlreadyExists[gateway.User]) (cli.Output, error) {
								return cli.Response(
									fmt.Sprintf("User %s is already a member of the organization (status %s).", cli.Highlight(v.Resource.Email), cli.Highlight(v.Resource.Status)),
									cli.Record{cli.F("wasCreated", false), cli.F("id", v.Resource.ID)},
									userKind.getHint("Get information about the user:", v.Resource.Email),
								), nil
							},
							func(v outcome.IllegallyAlreadyExists[gateway.User]) (cli.Output, error) {
								return nil, rt.alreadyExists(userKind, v.Resource.Email)
							},
							func(v outcome.Created[gateway.User]) (cli.Output, error) {
								return cli.Response(
									fmt.Sprintf("User %s has been invited.", cli.Highlight(v.Resource.Email)),
									cli.Record{cli.F("wasCreated", true), cli.F("id", v.Resource.ID)},
									userKind.getHint("Check the status of the invitation:", v.Resource.Email),
								), nil
							},
						)
					},
				},
			})
		},
	}
	cmd.Flags().StringSliceVarP(&roles, "role", "r", nil, "Role to grant, by id or name (repeatable)")
	cmd.Flags().BoolVar(&ifNotExists, "if-not-exists", false, "Succeed without changes if the user is already a member")
	_ = cmd.MarkFlagRequired("role")
	return cmd
}

func newUserDeleteCmd(rt *runtime) *cobra.Command {
	var ifExists bool
	cmd := &cobra.Command{
		Use:     "delete USER",
		Aliases: []string{"rm"},
		Short:   "Remove a user from your organization",
		Args:    exactArgs("user"),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref := args[0]
			return run(cmd, rt, cli.Spec[outcome.Delete[string]]{
				Name:      "user delete",
				Connected: true,
				Progress:  fmt.Sprintf("Removing user %s", cli.Highlight(ref)),
				Build: func(_ context.Context, p cli.Profile) (cli.Operation[outcome.Delete[string]], error) {
					gws, err := rt.gateways(p)
					if err != nil {
						return nil, err
					}
					return cli.OperationFunc[outcome.Delete[string]](func(ctx context.Context) (outcome.Delete[string], error) {
						status, err := gws.Users.Delete(ctx, ref)
						if err != nil {
							return nil, translate(err, userKind)
						}
						return outcome.FromDeletionStatus(status, ifExists), nil
					}), nil
				},
				Render: cli.Renderers[outcome.Delete[string]]{
					All: func(o outcome.Delete[string]) (cli.Output, error) {
						return rt.renderDelete(o, userKind, "User", ref)
					},
				},
			})
		},
	}
	cmd.Flags().BoolVar(&ifExists, "if-exists", false, "Succeed without changes if the user is not a member")
	return cmd
}
