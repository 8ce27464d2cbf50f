package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"cloudctl/internal/cli"
	"cloudctl/internal/outcome"
	"cloudctl/internal/profile"
)

func newConfigCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "config",
		Aliases: []string{"profile", "profiles"},
		Short:   "Manage saved profiles",
		Long: `Manage the profiles saved in the profiles file.

A profile pairs a token with the environment it belongs to. Connected
commands use the profile selected with --profile, then the one named by
CLOUDCTL_PROFILE, then the default profile.`,
	}
	cmd.AddCommand(
		newConfigListCmd(rt),
		newConfigGetCmd(rt),
		newConfigCreateCmd(rt),
		newConfigDeleteCmd(rt),
		newConfigUseCmd(rt),
	)
	return cmd
}

// profileKeys are the values accepted by config get --key.
var profileKeys = []string{"name", "token", "env"}

// maskToken hides all but the prefix of a token.
func maskToken(token string) string {
	const visible = 8
	if len(token) <= visible {
		return "********"
	}
	return token[:visible] + "********"
}

func profileRecord(p profile.Profile, isDefault bool) cli.Record {
	return cli.Record{
		cli.F("name", p.Name),
		cli.F("env", p.Environment),
		cli.F("default", isDefault),
	}
}

type profileList struct {
	profiles    []profile.Profile
	defaultName string
}

func newConfigListCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List your profiles",
		Args:    exactArgs(),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, rt, cli.Spec[profileList]{
				Name: "config list",
				Build: func(context.Context, cli.Profile) (cli.Operation[profileList], error) {
					return cli.OperationFunc[profileList](func(context.Context) (profileList, error) {
						ps, err := rt.profiles.ListProfiles()
						if err != nil {
							return profileList{}, profileStoreError(err)
						}
						def, err := rt.profiles.DefaultProfileName()
						if err != nil {
							return profileList{}, profileStoreError(err)
						}
						return profileList{profiles: ps, defaultName: def}, nil
					}), nil
				},
				Render: cli.Renderers[profileList]{
					All: func(l profileList) (cli.Output, error) {
						rows := make([]cli.Record, len(l.profiles))
						for i, p := range l.profiles {
							rows[i] = profileRecord(p, p.Name == l.defaultName)
						}
						return cli.Table([]string{"name", "env", "default"}, rows,
							"No profiles found. Create one with: cloudctl config create <name> --token <token>"), nil
					},
				},
			})
		},
	}
}

func newConfigGetCmd(rt *runtime) *cobra.Command {
	var key string
	cmd := &cobra.Command{
		Use:   "get [NAME]",
		Short: "Show a profile, or the default profile",
		Args:  maxArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := cli.DefaultProfileName
			if len(args) == 1 {
				name = args[0]
			}
			return run(cmd, rt, cli.Spec[profileView]{
				Name: "config get",
				Setup: func(context.Context) error {
					return validateKey(key, profileKeys)
				},
				Build: func(context.Context, cli.Profile) (cli.Operation[profileView], error) {
					return cli.OperationFunc[profileView](func(context.Context) (profileView, error) {
						return rt.viewProfile(name)
					}), nil
				},
				Render: cli.Renderers[profileView]{
					All: func(v profileView) (cli.Output, error) {
						if key == "token" {
							return cli.Value(v.profile.Token), nil
						}
						return recordOrKey(cli.Record{
							cli.F("name", v.profile.Name),
							cli.F("env", v.profile.Environment),
							cli.F("token", maskToken(v.profile.Token)),
							cli.F("default", v.isDefault),
						}, key), nil
					},
				},
			})
		},
	}
	cmd.Flags().StringVarP(&key, "key", "k", "", "Print a single attribute (name, token, env)")
	return cmd
}

type profileView struct {
	profile   profile.Profile
	isDefault bool
}

func (rt *runtime) viewProfile(name string) (profileView, error) {
	p, ok, err := rt.profiles.LookupProfile(name)
	if err != nil {
		return profileView{}, profileStoreError(err)
	}
	if !ok {
		return profileView{}, profileMissing(name)
	}
	def, err := rt.profiles.DefaultProfileName()
	if err != nil {
		return profileView{}, profileStoreError(err)
	}
	return profileView{
		profile:   profile.Profile{Name: p.Name, Token: p.Token, Environment: p.Environment},
		isDefault: p.Name == def,
	}, nil
}

type configCreateOptions struct {
	token       string
	env         string
	makeDefault bool
	overwrite   bool
}

func newConfigCreateCmd(rt *runtime) *cobra.Command {
	var opts configCreateOptions
	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Save a token as a named profile",
		Example: `  cloudctl config create work --token AstraCS:...
  cloudctl config create staging --token AstraCS:... --env dev --default`,
		Args: exactArgs("name"),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := profile.Profile{Name: args[0], Token: opts.token, Environment: opts.env}
			return run(cmd, rt, cli.Spec[outcome.Create[profileView]]{
				Name: "config create",
				Setup: func(context.Context) error {
					if err := p.Validate(); err != nil {
						return cli.ValidationError("Invalid profile %s: %s.", cli.Highlight(p.Name), err)
					}
					return nil
				},
				Build: func(context.Context, cli.Profile) (cli.Operation[outcome.Create[profileView]], error) {
					return cli.OperationFunc[outcome.Create[profileView]](func(ctx context.Context) (outcome.Create[profileView], error) {
						return rt.createProfile(ctx, p, opts)
					}), nil
				},
				Render: cli.Renderers[outcome.Create[profileView]]{
					All: func(o outcome.Create[profileView]) (cli.Output, error) {
						return outcome.MatchCreate(o,
							func(v outcome.AlreadyExists[profileView]) (cli.Output, error) {
								return cli.Response(fmt.Sprintf("Profile %s already exists.", cli.Highlight(v.Resource.profile.Name)),
									cli.Record{cli.F("wasCreated", false)}), nil
							},
							func(v outcome.IllegallyAlreadyExists[profileView]) (cli.Output, error) {
								return nil, cli.NewError(cli.CategoryAlreadyExists,
									fmt.Sprintf("Profile %s already exists.", cli.Highlight(v.Resource.profile.Name)),
									rt.inv.FixHint("--overwrite"),
									profileKind.listHint(),
								)
							},
							func(v outcome.Created[profileView]) (cli.Output, error) {
								name := v.Resource.profile.Name
								data := cli.Record{cli.F("wasCreated", true), cli.F("default", v.Resource.isDefault)}
								if v.Resource.isDefault {
									return cli.Response(fmt.Sprintf("Profile %s has been saved as the default profile.", cli.Highlight(name)), data), nil
								}
								return cli.Response(fmt.Sprintf("Profile %s has been saved.", cli.Highlight(name)), data,
									cli.NewHint("Make it the default profile:", fmt.Sprintf("%s config use %s", cli.RootCommandName, name)),
									cli.NewHint("Or use it for a single command:", fmt.Sprintf("%s db list --profile %s", cli.RootCommandName, name)),
								), nil
							},
						)
					},
				},
			})
		},
	}
	cmd.Flags().StringVar(&opts.token, "token", "", "Token to save")
	cmd.Flags().StringVar(&opts.env, "env", profile.EnvProd, "Environment the token belongs to (prod, dev, test)")
	cmd.Flags().BoolVar(&opts.makeDefault, "default", false, "Make the profile the default profile")
	cmd.Flags().BoolVar(&opts.overwrite, "overwrite", false, "Replace an existing profile of the same name")
	_ = cmd.MarkFlagRequired("token")
	return cmd
}

// createProfile saves p. The first profile saved becomes the default.
func (rt *runtime) createProfile(ctx context.Context, p profile.Profile, opts configCreateOptions) (outcome.Create[profileView], error) {
	return outcome.DecideCreate(ctx, false,
		func(context.Context) (profileView, bool, error) {
			if opts.overwrite {
				return profileView{}, false, nil
			}
			existing, err := rt.profiles.GetProfile(p.Name)
			if err != nil || existing == nil {
				return profileView{}, false, profileStoreError(err)
			}
			return profileView{profile: *existing}, true, nil
		},
		func(context.Context) (profileView, error) {
			def, err := rt.profiles.DefaultProfileName()
			if err != nil {
				return profileView{}, profileStoreError(err)
			}
			makeDefault := opts.makeDefault || def == "" || def == p.Name
			if err := rt.profiles.PutProfile(p, makeDefault); err != nil {
				return profileView{}, profileStoreError(err)
			}
			return profileView{profile: p, isDefault: makeDefault}, nil
		},
	)
}

type configDeleteOptions struct {
	ifExists bool
	yes      bool
}

func newConfigDeleteCmd(rt *runtime) *cobra.Command {
	var opts configDeleteOptions
	cmd := &cobra.Command{
		Use:     "delete NAME",
		Aliases: []string{"rm"},
		Short:   "Delete a saved profile",
		Args:    exactArgs("name"),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			return run(cmd, rt, cli.Spec[outcome.Delete[string]]{
				Name: "config delete",
				Build: func(context.Context, cli.Profile) (cli.Operation[outcome.Delete[string]], error) {
					return cli.OperationFunc[outcome.Delete[string]](func(ctx context.Context) (outcome.Delete[string], error) {
						return rt.deleteProfile(ctx, name, opts)
					}), nil
				},
				Render: cli.Renderers[outcome.Delete[string]]{
					All: func(o outcome.Delete[string]) (cli.Output, error) {
						return rt.renderDelete(o, profileKind, "Profile", name)
					},
				},
			})
		},
	}
	cmd.Flags().BoolVar(&opts.ifExists, "if-exists", false, "Succeed without changes if the profile does not exist")
	cmd.Flags().BoolVarP(&opts.yes, "yes", "y", false, "Delete without asking for confirmation")
	return cmd
}

func (rt *runtime) deleteProfile(ctx context.Context, name string, opts configDeleteOptions) (outcome.Delete[string], error) {
	return outcome.DecideDelete(ctx, name, opts.ifExists,
		func(context.Context) (bool, error) {
			ok, err := rt.profiles.HasProfile(name)
			return ok, profileStoreError(err)
		},
		func(context.Context) error {
			if !opts.yes {
				if err := rt.confirmProfileDeletion(name); err != nil {
					return err
				}
			}
			return profileStoreError(rt.profiles.DeleteProfile(name))
		},
	)
}

func (rt *runtime) confirmProfileDeletion(name string) error {
	answer, err := rt.kernel.Prompter().Confirm(fmt.Sprintf("Delete profile %q?", name))
	if err != nil {
		return cli.InternalError(err)
	}
	switch answer {
	case cli.AnswerYes:
		return nil
	case cli.NoAnswer:
		return cli.ValidationError("Deleting profile %s needs confirmation, but no prompt can be shown.", cli.Highlight(name)).
			WithHints(rt.inv.FixHint("--yes"))
	default:
		return cli.ValidationError("Deletion of profile %s was cancelled.", cli.Highlight(name))
	}
}

func newConfigUseCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "use NAME",
		Short: "Make a profile the default profile",
		Args:  exactArgs("name"),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			return run(cmd, rt, cli.Spec[string]{
				Name: "config use",
				Build: func(context.Context, cli.Profile) (cli.Operation[string], error) {
					return cli.OperationFunc[string](func(context.Context) (string, error) {
						return name, profileStoreError(rt.profiles.SetDefault(name))
					}), nil
				},
				Render: cli.Renderers[string]{
					All: func(name string) (cli.Output, error) {
						return cli.Response(fmt.Sprintf("Profile %s is now the default profile.", cli.Highlight(name)),
							cli.Record{cli.F("default", name)}), nil
					},
				},
			})
		},
	}
}

// profileMissing is the error for a profile name that is not saved.
func profileMissing(name string) *cli.Error {
	msg := fmt.Sprintf("Profile %s does not exist.", cli.Highlight(name))
	if name == cli.DefaultProfileName {
		msg = "No default profile is configured."
	}
	return cli.NewError(cli.CategoryProfileNotFound, msg, profileKind.listHint())
}

// profileStoreError converts profile store errors into the error taxonomy.
func profileStoreError(err error) error {
	if err == nil {
		return nil
	}
	var nf *profile.ProfileNotFoundError
	if errors.As(err, &nf) {
		return profileMissing(nf.Name).WithCause(err)
	}
	return &cli.Error{
		Category: cli.CategoryInternal,
		Message:  fmt.Sprintf("Could not access the profiles file: %v", err),
		Cause:    err,
	}
}
