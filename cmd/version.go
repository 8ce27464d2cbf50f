package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"cloudctl/internal/cli"
)

// newVersionCmd creates the command that prints the application version.
func newVersionCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of cloudctl",
		Args:  exactArgs(),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, rt, cli.Spec[string]{
				Name: "version",
				Build: func(context.Context, cli.Profile) (cli.Operation[string], error) {
					return cli.OperationFunc[string](func(context.Context) (string, error) {
						return GetVersion(), nil
					}), nil
				},
				Render: cli.Renderers[string]{
					All: func(v string) (cli.Output, error) {
						return cli.Response("cloudctl version "+v, cli.Record{cli.F("version", v)}), nil
					},
				},
			})
		},
	}
}
