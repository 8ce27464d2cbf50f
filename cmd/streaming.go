package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"cloudctl/internal/cli"
	"cloudctl/internal/gateway"
	"cloudctl/internal/outcome"
)

func newStreamingCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "streaming",
		Aliases: []string{"tenant", "tenants"},
		Short:   "Manage streaming tenants",
	}
	cmd.AddCommand(
		newTenantListCmd(rt),
		newTenantGetCmd(rt),
		newTenantCreateCmd(rt),
		newTenantDeleteCmd(rt),
	)
	return cmd
}

var tenantColumns = []string{"name", "cloud", "region", "plan", "status"}

func tenantRecord(t gateway.Tenant) cli.Record {
	return cli.Record{
		cli.F("name", t.Name),
		cli.F("cloud", t.Cloud),
		cli.F("region", t.Region),
		cli.F("plan", string(t.Plan)),
		cli.F("cluster", t.Cluster),
		cli.F("status", t.Status),
		cli.F("email", t.Email),
		cli.F("brokerUrl", t.BrokerURL),
	}
}

func newTenantListCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List your streaming tenants",
		Args:    exactArgs(),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, rt, cli.Spec[[]gateway.Tenant]{
				Name:      "streaming list",
				Connected: true,
				Progress:  "Fetching streaming tenants",
				Build: func(_ context.Context, p cli.Profile) (cli.Operation[[]gateway.Tenant], error) {
					gws, err := rt.gateways(p)
					if err != nil {
						return nil, err
					}
					return cli.OperationFunc[[]gateway.Tenant](func(ctx context.Context) ([]gateway.Tenant, error) {
						ts, err := gws.Tenants.FindAll(ctx)
						return ts, translate(err, tenantKind)
					}), nil
				},
				Render: cli.Renderers[[]gateway.Tenant]{
					All: func(ts []gateway.Tenant) (cli.Output, error) {
						rows := make([]cli.Record, len(ts))
						for i, t := range ts {
							rows[i] = tenantRecord(t)
						}
						return cli.Table(tenantColumns, rows, "No streaming tenants found."), nil
					},
				},
			})
		},
	}
}

func newTenantGetCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "get TENANT",
		Short: "Show information about a streaming tenant",
		Args:  exactArgs("tenant"),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			return run(cmd, rt, cli.Spec[gateway.Tenant]{
				Name:      "streaming get",
				Connected: true,
				Build: func(_ context.Context, p cli.Profile) (cli.Operation[gateway.Tenant], error) {
					gws, err := rt.gateways(p)
					if err != nil {
						return nil, err
					}
					return cli.OperationFunc[gateway.Tenant](func(ctx context.Context) (gateway.Tenant, error) {
						t, err := gws.Tenants.FindOne(ctx, name)
						return t, translate(err, tenantKind)
					}), nil
				},
				Render: cli.Renderers[gateway.Tenant]{
					All: func(t gateway.Tenant) (cli.Output, error) {
						return cli.Attributes(tenantRecord(t)), nil
					},
				},
			})
		},
	}
}

type tenantCreateOptions struct {
	region      string
	cloud       string
	plan        string
	cluster     string
	email       string
	ifNotExists bool
}

func (o tenantCreateOptions) validate() error {
	switch gateway.TenantPlan(o.plan) {
	case gateway.PlanServerless:
	case gateway.PlanDedicated:
		if o.cluster == "" {
			return cli.NewError(cli.CategoryUnsupported,
				"Dedicated tenants can only be created on an existing cluster.",
				cli.NewHint("Pass the cluster to create the tenant on:", "--cluster <name>"))
		}
	default:
		return cli.ValidationError("Invalid plan %s.", cli.Highlight(o.plan)).
			WithHints(cli.NewHint("Valid plans are:", "serverless, dedicated"))
	}
	if o.cluster == "" && (o.region == "" || o.cloud == "") {
		return cli.ValidationError("--region and --cloud are required unless --cluster is given.")
	}
	if o.email != "" {
		return validateEmail(o.email)
	}
	return nil
}

func newTenantCreateCmd(rt *runtime) *cobra.Command {
	var opts tenantCreateOptions
	cmd := &cobra.Command{
		Use:   "create TENANT",
		Short: "Create a streaming tenant",
		Example: `  cloudctl streaming create events --cloud gcp --region useast1
  cloudctl streaming create events --plan dedicated --cluster pulsar-east`,
		Args: exactArgs("tenant"),
		RunE: func(cmd *cobra.Command, args []string) error {
			spec := gateway.TenantSpec{
				Name:    args[0],
				Cloud:   opts.cloud,
				Region:  opts.region,
				Plan:    gateway.TenantPlan(opts.plan),
				Cluster: opts.cluster,
				Email:   opts.email,
			}
			return run(cmd, rt, cli.Spec[outcome.Create[gateway.Tenant]]{
				Name:      "streaming create",
				Connected: true,
				Progress:  fmt.Sprintf("Creating streaming tenant %s", cli.Highlight(spec.Name)),
				Setup: func(context.Context) error {
					return opts.validate()
				},
				Build: func(_ context.Context, p cli.Profile) (cli.Operation[outcome.Create[gateway.Tenant]], error) {
					gws, err := rt.gateways(p)
					if err != nil {
						return nil, err
					}
					return cli.OperationFunc[outcome.Create[gateway.Tenant]](func(ctx context.Context) (outcome.Create[gateway.Tenant], error) {
						status, err := gws.Tenants.Create(ctx, spec)
						if err != nil {
							return nil, translate(err, tenantKind)
						}
						return outcome.FromCreationStatus(status, opts.ifNotExists), nil
					}), nil
				},
				Render: cli.Renderers[outcome.Create[gateway.Tenant]]{
					All: func(o outcome.Create[gateway.Tenant]) (cli.Output, error) {
						return outcome.MatchCreate(o,
							func(v outcome.AlreadyExists[gateway.Tenant]) (cli.Output, error) {
								return cli.Response(
									fmt.Sprintf("Streaming tenant %s already exists.", cli.Highlight(v.Resource.Name)),
									cli.Record{cli.F("wasCreated", false), cli.F("name", v.Resource.Name)},
									tenantKind.getHint("Get information about the existing tenant:", v.Resource.Name),
								), nil
							},
							func(v outcome.IllegallyAlreadyExists[gateway.Tenant]) (cli.Output, error) {
								return nil, rt.alreadyExists(tenantKind, v.Resource.Name)
							},
							func(v outcome.Created[gateway.Tenant]) (cli.Output, error) {
								return cli.Response(
									fmt.Sprintf("Streaming tenant %s has been created.", cli.Highlight(v.Resource.Name)),
									cli.Record{cli.F("wasCreated", true), cli.F("name", v.Resource.Name)},
									tenantKind.getHint("Get information about the new tenant:", v.Resource.Name),
								), nil
							},
						)
					},
				},
			})
		},
	}
	cmd.Flags().StringVarP(&opts.region, "region", "r", "", "Cloud region for the tenant")
	cmd.Flags().StringVarP(&opts.cloud, "cloud", "c", "", "Cloud provider for the tenant (aws, gcp, azure)")
	cmd.Flags().StringVar(&opts.plan, "plan", string(gateway.PlanServerless), "Plan of the tenant (serverless, dedicated)")
	cmd.Flags().StringVar(&opts.cluster, "cluster", "", "Existing cluster to create the tenant on")
	cmd.Flags().StringVar(&opts.email, "email", "", "Contact email for the tenant (default: the organization email)")
	cmd.Flags().BoolVar(&opts.ifNotExists, "if-not-exists", false, "Succeed without changes if the tenant already exists")
	return cmd
}

func newTenantDeleteCmd(rt *runtime) *cobra.Command {
	var ifExists bool
	cmd := &cobra.Command{
		Use:     "delete TENANT",
		Aliases: []string{"rm"},
		Short:   "Delete a streaming tenant",
		Args:    exactArgs("tenant"),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			return run(cmd, rt, cli.Spec[outcome.Delete[string]]{
				Name:      "streaming delete",
				Connected: true,
				Progress:  fmt.Sprintf("Deleting streaming tenant %s", cli.Highlight(name)),
				Build: func(_ context.Context, p cli.Profile) (cli.Operation[outcome.Delete[string]], error) {
					gws, err := rt.gateways(p)
					if err != nil {
						return nil, err
					}
					return cli.OperationFunc[outcome.Delete[string]](func(ctx context.Context) (outcome.Delete[string], error) {
						status, err := gws.Tenants.Delete(ctx, name)
						if err != nil {
							return nil, translate(err, tenantKind)
						}
						return outcome.FromDeletionStatus(status, ifExists), nil
					}), nil
				},
				Render: cli.Renderers[outcome.Delete[string]]{
					All: func(o outcome.Delete[string]) (cli.Output, error) {
						return rt.renderDelete(o, tenantKind, "Streaming tenant", name)
					},
				},
			})
		},
	}
	cmd.Flags().BoolVar(&ifExists, "if-exists", false, "Succeed without changes if the tenant does not exist")
	return cmd
}

// renderDelete renders the outcome of a delete that does not wait.
func (rt *runtime) renderDelete(o outcome.Delete[string], k resourceKind, title, ref string) (cli.Output, error) {
	return outcome.MatchDelete(o,
		func(outcome.NotFound[string]) (cli.Output, error) {
			return cli.Response(
				fmt.Sprintf("%s %s does not exist; nothing to delete.", title, cli.Highlight(ref)),
				cli.Record{cli.F("wasDeleted", false)},
				k.listHint(),
			), nil
		},
		func(outcome.IllegallyNotFound[string]) (cli.Output, error) {
			return nil, rt.notFound(k, ref)
		},
		func(v outcome.Deleted[string]) (cli.Output, error) {
			return cli.Response(
				fmt.Sprintf("%s %s has been deleted.", title, cli.Highlight(ref)),
				cli.Record{cli.F("wasDeleted", true), cli.F("id", v.ID)},
			), nil
		},
	)
}
