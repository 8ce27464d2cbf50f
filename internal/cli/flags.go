package cli

import (
	"io"
	"os"

	"github.com/spf13/cobra"
)

// Color settings accepted by the settings file and CLOUDCTL_COLOR.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// CommandFlags holds the global flag values shared by every command.
type CommandFlags struct {
	// Output is the output mode (human, json, csv). Empty means the settings default.
	Output string
	// Color forces colored output.
	Color bool
	// NoColor disables colored output.
	NoColor bool
	// Verbose enables debug logging and error causes
	Verbose bool
	// NoInput disables interactive prompts
	NoInput bool
	// Profile selects a saved profile by name
	Profile string
	// Token overrides any profile with an explicit token
	Token string
	// Env is the environment an explicit token targets
	Env string
	// ConfigFile is an optional settings file
	ConfigFile string
}

// RegisterCommonFlags registers the global flags on cmd as persistent flags.
//
// The registered flags are:
//   - --output/-o: Output format (human, json, csv)
//   - --color / --no-color: Force or disable colored output
//   - --verbose/-V: Debug logging and full error details
//   - --no-input: Never prompt
//   - --profile/-p: Saved profile to use (env: CLOUDCTL_PROFILE)
//   - --token: Explicit token, overrides any profile
//   - --env: Environment for --token (prod, dev, test)
//   - --config: Settings file
func RegisterCommonFlags(cmd *cobra.Command, flags *CommandFlags) {
	cmd.PersistentFlags().StringVarP(&flags.Output, "output", "o", "", "Output format (human, json, csv)")
	cmd.PersistentFlags().BoolVar(&flags.Color, "color", false, "Force colored output")
	cmd.PersistentFlags().BoolVar(&flags.NoColor, "no-color", false, "Disable colored output")
	cmd.PersistentFlags().BoolVarP(&flags.Verbose, "verbose", "V", false, "Enable debug logging and show full error details")
	cmd.PersistentFlags().BoolVar(&flags.NoInput, "no-input", false, "Never prompt for input")
	cmd.PersistentFlags().StringVarP(&flags.Profile, "profile", "p", "", "Profile to use (env: "+ProfileEnvVar+")")
	cmd.PersistentFlags().StringVar(&flags.Token, "token", "", "Token to use instead of a profile")
	cmd.PersistentFlags().StringVar(&flags.Env, "env", "", "Environment for --token (prod, dev, test)")
	cmd.PersistentFlags().StringVar(&flags.ConfigFile, "config", "", "Settings file")
	cmd.MarkFlagsMutuallyExclusive("color", "no-color")
	cmd.MarkFlagsMutuallyExclusive("token", "profile")
}

// Terminal reports whether a writer is attached to a terminal.
type Terminal func(w io.Writer) bool

// Streams are the standard streams of the process.
type Streams struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// ToInvocation converts the flags into the invocation description.
// defaultOutput and colorSetting come from the settings layer.
func (f *CommandFlags) ToInvocation(args []string, streams Streams, isTerminal Terminal, defaultOutput, colorSetting string) (Invocation, error) {
	output := f.Output
	if output == "" {
		output = defaultOutput
	}
	if output == "" {
		output = string(OutputHuman)
	}
	mode, err := ParseOutputMode(output)
	if err != nil {
		return Invocation{}, err
	}

	if f.Env != "" && f.Token == "" {
		return Invocation{}, ValidationError("--env only applies together with --token")
	}

	if isTerminal == nil {
		isTerminal = func(io.Writer) bool { return false }
	}

	return Invocation{
		Args:        append([]string{RootCommandName}, args...),
		Mode:        mode,
		Theme:       Theme{Color: f.useColor(mode, streams.Out, isTerminal, colorSetting)},
		Verbose:     f.Verbose,
		Interactive: mode == OutputHuman && isTerminal(streams.Err),
		NoInput:     f.NoInput,
		Stdin:       streams.In,
		Stdout:      streams.Out,
		Stderr:      streams.Err,
	}, nil
}

// ProfileSelection returns the profile-related flags.
func (f *CommandFlags) ProfileSelection() ProfileSelection {
	return ProfileSelection{Token: f.Token, Environment: f.Env, Name: f.Profile}
}

func (f *CommandFlags) useColor(mode OutputMode, out io.Writer, isTerminal Terminal, setting string) bool {
	switch {
	case mode != OutputHuman, f.NoColor:
		return false
	case f.Color:
		return true
	}
	switch setting {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	default:
		return os.Getenv("NO_COLOR") == "" && isTerminal(out)
	}
}
