package cmd

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"cloudctl/internal/cli"
	"cloudctl/internal/gateway"
	"cloudctl/internal/outcome"
)

func newDBCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "db",
		Aliases: []string{"database", "databases"},
		Short:   "Manage databases",
	}
	cmd.AddCommand(
		newDBListCmd(rt),
		newDBGetCmd(rt),
		newDBCreateCmd(rt),
		newDBDeleteCmd(rt),
	)
	return cmd
}

var databaseColumns = []string{"name", "id", "regions", "cloud", "vector", "status"}

// databaseKeys are the values accepted by db get --key.
var databaseKeys = []string{"name", "id", "status", "cloud", "regions", "keyspace", "keyspaces", "vector", "created"}

func databaseRecord(db gateway.Database) cli.Record {
	var keyspace string
	if len(db.Keyspaces) > 0 {
		keyspace = db.Keyspaces[0]
	}
	return cli.Record{
		cli.F("name", db.Name),
		cli.F("id", db.ID),
		cli.F("status", string(db.Status)),
		cli.F("cloud", db.Cloud),
		cli.F("regions", db.Regions),
		cli.F("keyspace", keyspace),
		cli.F("keyspaces", db.Keyspaces),
		cli.F("vector", db.Vector),
		cli.F("created", db.CreatedAt),
	}
}

func newDBListCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List your databases",
		Args:    exactArgs(),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, rt, cli.Spec[[]gateway.Database]{
				Name:      "db list",
				Connected: true,
				Progress:  "Fetching databases",
				Build: func(_ context.Context, p cli.Profile) (cli.Operation[[]gateway.Database], error) {
					gws, err := rt.gateways(p)
					if err != nil {
						return nil, err
					}
					return cli.OperationFunc[[]gateway.Database](func(ctx context.Context) ([]gateway.Database, error) {
						dbs, err := gws.Databases.FindAll(ctx)
						return dbs, translate(err, databaseKind)
					}), nil
				},
				Render: cli.Renderers[[]gateway.Database]{
					All: func(dbs []gateway.Database) (cli.Output, error) {
						rows := make([]cli.Record, len(dbs))
						for i, db := range dbs {
							rows[i] = databaseRecord(db)
						}
						return cli.Table(databaseColumns, rows, "No databases found."), nil
					},
				},
			})
		},
	}
}

func newDBGetCmd(rt *runtime) *cobra.Command {
	var key string
	cmd := &cobra.Command{
		Use:   "get DB",
		Short: "Show information about a database",
		Long:  "Show information about a database, referenced by name or id.",
		Args:  exactArgs("db"),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref := args[0]
			return run(cmd, rt, cli.Spec[gateway.Database]{
				Name:      "db get",
				Connected: true,
				Setup: func(context.Context) error {
					return validateKey(key, databaseKeys)
				},
				Build: func(_ context.Context, p cli.Profile) (cli.Operation[gateway.Database], error) {
					gws, err := rt.gateways(p)
					if err != nil {
						return nil, err
					}
					return cli.OperationFunc[gateway.Database](func(ctx context.Context) (gateway.Database, error) {
						db, err := gws.Databases.FindOne(ctx, ref)
						return db, translate(err, databaseKind)
					}), nil
				},
				Render: cli.Renderers[gateway.Database]{
					All: func(db gateway.Database) (cli.Output, error) {
						return recordOrKey(databaseRecord(db), key), nil
					},
				},
			})
		},
	}
	cmd.Flags().StringVarP(&key, "key", "k", "", "Print a single attribute ("+strings.Join(databaseKeys, ", ")+")")
	return cmd
}

// validateKey checks a --key value against the accepted keys.
func validateKey(key string, valid []string) error {
	if key == "" || slices.Contains(valid, key) {
		return nil
	}
	return cli.ValidationError("Invalid key %s.", cli.Highlight(key)).
		WithHints(cli.NewHint("Valid keys are:", strings.Join(valid, ", ")))
}

// recordOrKey renders the whole record, or the raw value of key.
func recordOrKey(r cli.Record, key string) cli.Output {
	if key == "" {
		return cli.Attributes(r)
	}
	v, _ := r.Get(key)
	return cli.Value(v)
}

type dbCreateOptions struct {
	region      string
	cloud       string
	keyspace    string
	vector      bool
	ifNotExists bool
	async       bool
	timeout     time.Duration
}

func newDBCreateCmd(rt *runtime) *cobra.Command {
	var opts dbCreateOptions
	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a database and wait for it to become active",
		Example: `  cloudctl db create orders --region us-east1
  cloudctl db create orders --region us-east1 --vector --if-not-exists
  cloudctl db create orders --region us-east1 --async`,
		Args: exactArgs("name"),
		RunE: func(cmd *cobra.Command, args []string) error {
			spec := gateway.DatabaseSpec{
				Name:     args[0],
				Region:   opts.region,
				Cloud:    opts.cloud,
				Keyspace: opts.keyspace,
				Vector:   opts.vector,
			}
			return run(cmd, rt, cli.Spec[outcome.Create[gateway.Database]]{
				Name:      "db create",
				Connected: true,
				Progress:  fmt.Sprintf("Creating database %s", cli.Highlight(spec.Name)),
				Setup: func(context.Context) error {
					if strings.TrimSpace(spec.Name) == "" {
						return cli.ValidationError("The database name must not be empty.")
					}
					return validateTimeout(opts.timeout)
				},
				Build: func(_ context.Context, p cli.Profile) (cli.Operation[outcome.Create[gateway.Database]], error) {
					gws, err := rt.gateways(p)
					if err != nil {
						return nil, err
					}
					return cli.OperationFunc[outcome.Create[gateway.Database]](func(ctx context.Context) (outcome.Create[gateway.Database], error) {
						return rt.createDatabase(ctx, gws.Databases, spec, opts)
					}), nil
				},
				Render: cli.Renderers[outcome.Create[gateway.Database]]{
					All: func(o outcome.Create[gateway.Database]) (cli.Output, error) {
						return rt.renderDBCreate(o, opts.async)
					},
				},
			})
		},
	}
	cmd.Flags().StringVarP(&opts.region, "region", "r", "", "Cloud region to create the database in")
	cmd.Flags().StringVarP(&opts.cloud, "cloud", "c", "", "Cloud provider (aws, gcp, azure); inferred from the region when omitted")
	cmd.Flags().StringVarP(&opts.keyspace, "keyspace", "k", "", "Initial keyspace (default \"default_keyspace\")")
	cmd.Flags().BoolVar(&opts.vector, "vector", false, "Create a vector-enabled database")
	cmd.Flags().BoolVar(&opts.ifNotExists, "if-not-exists", false, "Succeed without changes if the database already exists")
	cmd.Flags().BoolVar(&opts.async, "async", false, "Do not wait for the database to become active")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "How long to wait for the database to become active (default from settings)")
	cmd.MarkFlagsMutuallyExclusive("async", "timeout")
	_ = cmd.MarkFlagRequired("region")
	return cmd
}

func (rt *runtime) createDatabase(ctx context.Context, dbs gateway.DatabaseGateway, spec gateway.DatabaseSpec, opts dbCreateOptions) (outcome.Create[gateway.Database], error) {
	status, err := dbs.Create(ctx, spec)
	if err != nil {
		return nil, translate(err, databaseKind)
	}

	o := outcome.FromCreationStatus(status, opts.ifNotExists)
	created, ok := o.(outcome.Created[gateway.Database])
	if !ok || opts.async || created.Resource.Status == gateway.DatabaseActive {
		return o, nil
	}

	res, err := rt.awaitDatabase(ctx, dbs, created.Resource, gateway.DatabaseActive, opts.timeout)
	if err != nil {
		return nil, err
	}
	created.Resource.Status = res.LastObserved
	created.Waited = res.Elapsed
	return created, nil
}

func (rt *runtime) renderDBCreate(o outcome.Create[gateway.Database], async bool) (cli.Output, error) {
	return outcome.MatchCreate(o,
		func(v outcome.AlreadyExists[gateway.Database]) (cli.Output, error) {
			db := v.Resource
			return cli.Response(
				fmt.Sprintf("Database %s already exists and has status %s.", cli.Highlight(db.Name), cli.Highlight(string(db.Status))),
				cli.Record{cli.F("wasCreated", false), cli.F("id", db.ID), cli.F("currentStatus", string(db.Status))},
				databaseKind.getHint("Get information about the existing database:", db.Name),
			), nil
		},
		func(v outcome.IllegallyAlreadyExists[gateway.Database]) (cli.Output, error) {
			return nil, rt.alreadyExists(databaseKind, v.Resource.Name)
		},
		func(v outcome.Created[gateway.Database]) (cli.Output, error) {
			db := v.Resource
			data := cli.Record{cli.F("wasCreated", true), cli.F("id", db.ID), cli.F("currentStatus", string(db.Status))}
			if async {
				return cli.Response(
					fmt.Sprintf("Database %s is being created (status %s).", cli.Highlight(db.Name), cli.Highlight(string(db.Status))),
					data,
					databaseKind.getHint("Check the status of the new database:", db.Name),
				), nil
			}
			msg := fmt.Sprintf("Database %s has been created and is now %s.", cli.Highlight(db.Name), cli.Highlight(string(db.Status)))
			if v.Waited > 0 {
				msg = fmt.Sprintf("Database %s has been created and became %s after %s.", cli.Highlight(db.Name), cli.Highlight(string(db.Status)), roundWait(v.Waited))
			}
			return cli.Response(msg, data,
				databaseKind.getHint("Get information about the new database:", db.Name),
			), nil
		},
	)
}

type dbDeleteOptions struct {
	ifExists bool
	async    bool
	timeout  time.Duration
}

func newDBDeleteCmd(rt *runtime) *cobra.Command {
	var opts dbDeleteOptions
	cmd := &cobra.Command{
		Use:     "delete DB",
		Aliases: []string{"rm"},
		Short:   "Terminate a database and wait until it is gone",
		Args:    exactArgs("db"),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref := args[0]
			return run(cmd, rt, cli.Spec[outcome.Delete[string]]{
				Name:      "db delete",
				Connected: true,
				Progress:  fmt.Sprintf("Deleting database %s", cli.Highlight(ref)),
				Setup: func(context.Context) error {
					return validateTimeout(opts.timeout)
				},
				Build: func(_ context.Context, p cli.Profile) (cli.Operation[outcome.Delete[string]], error) {
					gws, err := rt.gateways(p)
					if err != nil {
						return nil, err
					}
					return cli.OperationFunc[outcome.Delete[string]](func(ctx context.Context) (outcome.Delete[string], error) {
						return rt.deleteDatabase(ctx, gws.Databases, ref, opts)
					}), nil
				},
				Render: cli.Renderers[outcome.Delete[string]]{
					All: func(o outcome.Delete[string]) (cli.Output, error) {
						return rt.renderDBDelete(o, ref, opts.async)
					},
				},
			})
		},
	}
	cmd.Flags().BoolVar(&opts.ifExists, "if-exists", false, "Succeed without changes if the database does not exist")
	cmd.Flags().BoolVar(&opts.async, "async", false, "Do not wait for the database to be terminated")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "How long to wait for the database to be terminated (default from settings)")
	cmd.MarkFlagsMutuallyExclusive("async", "timeout")
	return cmd
}

func (rt *runtime) deleteDatabase(ctx context.Context, dbs gateway.DatabaseGateway, ref string, opts dbDeleteOptions) (outcome.Delete[string], error) {
	status, err := dbs.Delete(ctx, ref)
	if err != nil {
		return nil, translate(err, databaseKind)
	}

	o := outcome.FromDeletionStatus(status, opts.ifExists)
	deleted, ok := o.(outcome.Deleted[string])
	if !ok || opts.async {
		return o, nil
	}

	res, err := rt.awaitDatabase(ctx, dbs, gateway.Database{ID: deleted.ID, Name: ref}, gateway.DatabaseTerminated, opts.timeout)
	if err != nil {
		return nil, err
	}
	deleted.Waited = res.Elapsed
	return deleted, nil
}

func (rt *runtime) renderDBDelete(o outcome.Delete[string], ref string, async bool) (cli.Output, error) {
	return outcome.MatchDelete(o,
		func(outcome.NotFound[string]) (cli.Output, error) {
			return cli.Response(
				fmt.Sprintf("Database %s does not exist; nothing to delete.", cli.Highlight(ref)),
				cli.Record{cli.F("wasDeleted", false)},
				databaseKind.listHint(),
			), nil
		},
		func(outcome.IllegallyNotFound[string]) (cli.Output, error) {
			return nil, rt.notFound(databaseKind, ref)
		},
		func(v outcome.Deleted[string]) (cli.Output, error) {
			data := cli.Record{cli.F("wasDeleted", true), cli.F("id", v.ID)}
			if async {
				return cli.Response(
					fmt.Sprintf("Database %s is being terminated.", cli.Highlight(ref)),
					data,
					databaseKind.getHint("Check the status of the database:", ref),
				), nil
			}
			return cli.Response(fmt.Sprintf("Database %s has been deleted.", cli.Highlight(ref)), data), nil
		},
	)
}
