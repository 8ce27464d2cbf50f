package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"slices"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"cloudctl/internal/api"
	"cloudctl/internal/cli"
	"cloudctl/internal/config"
	"cloudctl/internal/gateway"
	"cloudctl/internal/profile"
	"cloudctl/pkg/logging"
)

// version is set from main, usually through -ldflags.
var version = "dev"

// SetVersion sets the version reported by `cloudctl version` and --version.
func SetVersion(v string) {
	version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return version
}

// GatewayFactory builds the gateways a connected command talks to.
type GatewayFactory func(p cli.Profile, settings *config.Settings, progress gateway.Progress) (gateway.Set, error)

// App holds the process-level dependencies of the command tree. Tests
// replace them; DefaultApp wires the real ones.
type App struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	// IsTerminal reports whether a stream is a terminal.
	IsTerminal cli.Terminal
	// NewGateways defaults to the HTTP API.
	NewGateways GatewayFactory
	// Clock paces status polling. nil uses the real clock.
	Clock cli.Clock
	// ConfigDir holds config.yaml and, unless the settings say otherwise,
	// profiles.yaml. Empty means ~/.config/cloudctl.
	ConfigDir string
}

// DefaultApp returns an App bound to the process streams and the HTTP API.
func DefaultApp() *App {
	return &App{
		Stdin:       os.Stdin,
		Stdout:      os.Stdout,
		Stderr:      os.Stderr,
		IsTerminal:  isTerminal,
		NewGateways: httpGateways,
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func httpGateways(p cli.Profile, settings *config.Settings, progress gateway.Progress) (gateway.Set, error) {
	baseURL := settings.APIURL(p.Environment)
	if baseURL == "" {
		return gateway.Set{}, cli.ValidationError("Profile %s targets unknown environment %s.", cli.Highlight(p.Name), cli.Highlight(p.Environment)).
			WithHints(cli.NewHint("Valid environments are:", "prod, dev, test"))
	}
	client := api.NewClient(api.Options{
		BaseURL:  baseURL,
		Token:    p.Token,
		Timeout:  settings.HTTP.Timeout,
		Progress: progress,
	})
	return client.Gateways(), nil
}

// runtime is the per-invocation state shared by every command.
type runtime struct {
	app      *App
	args     []string
	flags    cli.CommandFlags
	settings *config.Settings
	profiles *profile.Storage
	inv      cli.Invocation
	kernel   *cli.Kernel
	// running is set once a command body starts; earlier failures are
	// usage errors.
	running bool
}

// NewRootCmd creates the command tree for one invocation. args are the
// invocation arguments without the program name; they are kept for hints.
func NewRootCmd(app *App, args []string) *cobra.Command {
	rt := &runtime{app: app, args: args}
	return newRootCmd(rt)
}

func newRootCmd(rt *runtime) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   cli.RootCommandName,
		Short: "Manage your cloud databases, streaming tenants and organization",
		Long: `cloudctl manages databases, streaming tenants, users, roles and
application tokens from the command line.

Every command prints human-readable output by default. Use -o json or
-o csv for scripting; the exit code tells what happened:

  0 success, 1 internal error, 2 invalid input, 3 not found,
  4 already exists, 5 unsupported, 6 timed out, 7 profile not found,
  130 interrupted`,
		Version: version,
		// Errors are reported by Run in the active output mode.
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error { return rt.setup() },
	}
	rootCmd.SetVersionTemplate(`{{printf "cloudctl version %s\n" .Version}}`)
	rootCmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return cli.ValidationError("%s", err.Error()).
			WithHints(cli.NewHint("See the usage of this command:", c.CommandPath()+" --help"))
	})
	cli.RegisterCommonFlags(rootCmd, &rt.flags)

	rootCmd.AddCommand(
		newDBCmd(rt),
		newStreamingCmd(rt),
		newUserCmd(rt),
		newRoleCmd(rt),
		newTokenCmd(rt),
		newConfigCmd(rt),
		newVersionCmd(rt),
	)
	return rootCmd
}

// setup runs once the flags are parsed: it loads settings, sets up logging
// and builds the kernel.
func (rt *runtime) setup() error {
	level := logging.LevelWarn
	if rt.flags.Verbose {
		level = logging.LevelDebug
	}
	logging.InitForCLI(level, rt.app.Stderr)

	if rt.flags.Env != "" && !slices.Contains(validEnvironments, rt.flags.Env) {
		return cli.ValidationError("Invalid environment %s.", cli.Highlight(rt.flags.Env)).
			WithHints(cli.NewHint("Valid environments are:", "prod, dev, test"))
	}

	settings, err := config.Load(rt.flags.ConfigFile, rt.configDir())
	if err != nil {
		var cfgErr *config.ConfigurationError
		if errors.As(err, &cfgErr) {
			return cli.NewError(cli.CategoryValidation, cfgErr.Error(),
				cli.NewHint("Fix or remove the settings file:", rt.settingsPath(cfgErr.FilePath))).WithCause(err)
		}
		return err
	}
	rt.settings = settings
	if !rt.flags.Verbose {
		if lvl, err := logging.ParseLevel(settings.LogLevel); err == nil {
			logging.InitForCLI(lvl, rt.app.Stderr)
		}
	}

	inv, err := rt.flags.ToInvocation(rt.args, cli.Streams{In: rt.app.Stdin, Out: rt.app.Stdout, Err: rt.app.Stderr},
		rt.app.IsTerminal, settings.Output, settings.Color)
	if err != nil {
		return err
	}
	rt.inv = inv

	switch {
	case settings.ProfilesFile != "":
		rt.profiles = profile.NewStorageWithFile(settings.ProfilesFile)
	case rt.app.ConfigDir != "":
		rt.profiles = profile.NewStorageWithPath(rt.app.ConfigDir)
	default:
		if rt.profiles, err = profile.NewStorage(); err != nil {
			return cli.InternalError(err)
		}
	}
	logging.Debug("cmd", "using profiles file %s", rt.profiles.Path())

	rt.kernel = cli.NewKernel(inv, cli.NewProfileResolver(rt.profiles, rt.flags.ProfileSelection()))
	return nil
}

var validEnvironments = []string{profile.EnvProd, profile.EnvDev, profile.EnvTest}

func (rt *runtime) configDir() string {
	if rt.app.ConfigDir != "" {
		return rt.app.ConfigDir
	}
	dir, err := config.DefaultConfigDir()
	if err != nil {
		return ""
	}
	return dir
}

func (rt *runtime) settingsPath(path string) string {
	if path != "" {
		return path
	}
	return rt.configDir() + "/config.yaml"
}

// gateways builds the gateways for the resolved profile.
func (rt *runtime) gateways(p cli.Profile) (gateway.Set, error) {
	factory := rt.app.NewGateways
	if factory == nil {
		factory = httpGateways
	}
	return factory(p, rt.settings, rt.kernel.Progress())
}

// run hands spec to the kernel.
func run[R any](cmd *cobra.Command, rt *runtime, spec cli.Spec[R]) error {
	rt.running = true
	defer logging.Timed("cmd", spec.Name)()
	return cli.Run(cmd.Context(), rt.kernel, spec)
}

// report writes err in the active output mode and returns the exit code.
func (rt *runtime) report(err error) int {
	if err == nil {
		return cli.ExitCodeSuccess
	}

	var cliErr *cli.Error
	if !rt.running && !errors.As(err, &cliErr) {
		// cobra argument and flag errors
		err = cli.ValidationError("%s", err.Error()).
			WithHints(cli.NewHint("See the usage of this command:", cli.RootCommandName+" --help"))
	}

	mode, theme, verbose := rt.inv.Mode, rt.inv.Theme, rt.inv.Verbose
	if mode == "" {
		// failed before the invocation was built
		mode = cli.OutputHuman
		if m, perr := cli.ParseOutputMode(rt.flags.Output); perr == nil {
			mode = m
		}
		verbose = rt.flags.Verbose
	}
	return cli.ReportError(rt.app.Stderr, err, mode, theme, verbose)
}

// Run executes one invocation with args and returns the process exit code.
func Run(ctx context.Context, app *App, args []string) int {
	rt := &runtime{app: app, args: args}
	rootCmd := newRootCmd(rt)
	rootCmd.SetArgs(args)
	rootCmd.SetIn(app.Stdin)
	rootCmd.SetOut(app.Stdout)
	rootCmd.SetErr(app.Stderr)

	err := rootCmd.ExecuteContext(ctx)
	return rt.report(err)
}

// Execute is the main entry point for the CLI application. It cancels the
// running command on SIGINT or SIGTERM and exits with the command's exit code.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := Run(ctx, DefaultApp(), os.Args[1:])
	stop()
	os.Exit(code)
}

// usage returns the hint pointing at a command's help.
func usage(cmd *cobra.Command) cli.Hint {
	return cli.NewHint("See the usage of this command:", fmt.Sprintf("%s --help", cmd.CommandPath()))
}
