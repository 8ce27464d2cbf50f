package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"

	"cloudctl/pkg/logging"
)

// RootCommandName is the first token of every reconstructed command line.
const RootCommandName = "cloudctl"

// Invocation describes the process-level context of a single command run.
// It is built once by the command front-end and never mutated.
type Invocation struct {
	// Args are the literal invocation tokens, starting with RootCommandName.
	Args []string
	// Mode is the active output mode.
	Mode OutputMode
	// Theme is the active color configuration.
	Theme Theme
	// Verbose shows error causes and enables debug logging.
	Verbose bool
	// Interactive is true when a user is watching the diagnostic stream on a
	// terminal. The progress indicator only animates then.
	Interactive bool
	// NoInput disables prompts even on a terminal.
	NoInput bool

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// CommandLine returns the original command line, shell-quoted.
func (inv Invocation) CommandLine() string {
	return joinQuoted(inv.Args)
}

// FixHint suggests re-running the original command with flag added.
func (inv Invocation) FixHint(flag string) Hint {
	args := append(append([]string(nil), inv.Args...), flag)
	return Hint{Label: "Example fix:", Command: joinQuoted(args)}
}

// WithoutFlagHint suggests re-running the original command with a boolean
// flag removed, in both its --flag and --flag=value spellings.
func (inv Invocation) WithoutFlagHint(flag string) Hint {
	args := make([]string, 0, len(inv.Args))
	for _, a := range inv.Args {
		if a == flag || strings.HasPrefix(a, flag+"=") {
			continue
		}
		args = append(args, a)
	}
	return Hint{Label: "Example fix:", Command: joinQuoted(args)}
}

// Operation is a constructed, ready-to-run unit of work.
type Operation[R any] interface {
	Execute(ctx context.Context) (R, error)
}

// OperationFunc adapts a function to the Operation interface.
type OperationFunc[R any] func(ctx context.Context) (R, error)

// Execute calls f.
func (f OperationFunc[R]) Execute(ctx context.Context) (R, error) {
	return f(ctx)
}

// Spec describes one command to the kernel.
type Spec[R any] struct {
	// Name identifies the command in debug logs.
	Name string
	// Connected commands need a resolved profile.
	Connected bool
	// Progress is the initial indicator message while the operation runs.
	Progress string
	// Setup runs before the operation is built. It may fail fast before any
	// network access.
	Setup func(ctx context.Context) error
	// Build constructs the operation. The profile is the zero value for
	// commands that are not connected.
	Build func(ctx context.Context, profile Profile) (Operation[R], error)
	// Render turns the result into text.
	Render Renderers[R]
	// Teardown runs after the output was written.
	Teardown func() error
}

// Kernel runs command specs for one invocation.
type Kernel struct {
	inv      Invocation
	profiles *ProfileResolver
	progress *Indicator
	prompter *Prompter
}

// NewKernel creates the kernel for inv. profiles may be nil when no
// connected command can run.
func NewKernel(inv Invocation, profiles *ProfileResolver) *Kernel {
	if inv.Stdout == nil {
		inv.Stdout = io.Discard
	}
	if inv.Stderr == nil {
		inv.Stderr = io.Discard
	}
	progress := NewIndicator(IndicatorOptions{
		Out:     inv.Stderr,
		Enabled: inv.Interactive && inv.Mode == OutputHuman,
		Theme:   inv.Theme,
	})
	if profiles == nil {
		profiles = NewProfileResolver(nil, ProfileSelection{})
	}
	return &Kernel{
		inv:      inv,
		profiles: profiles,
		progress: progress,
		prompter: NewPrompter(inv.Stdin, inv.Stderr, inv.Interactive && !inv.NoInput, progress),
	}
}

// Invocation returns the invocation the kernel runs for.
func (k *Kernel) Invocation() Invocation { return k.inv }

// Progress returns the progress indicator.
func (k *Kernel) Progress() *Indicator { return k.progress }

// Prompter returns the confirmation prompter.
func (k *Kernel) Prompter() *Prompter { return k.prompter }

// Run executes spec through the fixed pipeline: resolve profile, setup,
// build, execute, render, emit, teardown. The first error aborts the
// remaining steps and is returned unchanged; the caller reports it.
func Run[R any](ctx context.Context, k *Kernel, spec Spec[R]) error {
	logging.Debug("kernel", "running %s", spec.Name)

	var profile Profile
	if spec.Connected {
		p, err := k.profiles.Resolve()
		if err != nil {
			return err
		}
		profile = p
	}

	if spec.Setup != nil {
		if err := spec.Setup(ctx); err != nil {
			return err
		}
	}

	if spec.Build == nil {
		return InternalError(fmt.Errorf("command %s has no operation", spec.Name))
	}
	op, err := spec.Build(ctx, profile)
	if err != nil {
		return err
	}
	if op == nil {
		return InternalError(errors.New("operation builder returned nil"))
	}

	result, err := execute(ctx, k, op, spec.Progress)
	if err != nil {
		logging.Debug("kernel", "%s failed: %v", spec.Name, err)
		return err
	}

	out, err := spec.Render.Render(result, k.inv.Mode, k.inv.Theme)
	if err != nil {
		return err
	}
	out = strings.TrimRightFunc(out, unicode.IsSpace)
	if out != "" {
		if _, err := fmt.Fprintln(k.inv.Stdout, out); err != nil {
			return InternalError(fmt.Errorf("failed to write output: %w", err))
		}
	}

	if spec.Teardown != nil {
		return spec.Teardown()
	}
	return nil
}

// execute runs op with the progress indicator animating.
func execute[R any](ctx context.Context, k *Kernel, op Operation[R], message string) (R, error) {
	if message == "" {
		message = "Working"
	}
	k.progress.PushMessage(message)
	k.progress.Start(ctx)
	defer func() {
		k.progress.Stop()
		k.progress.PopMessage()
	}()

	return op.Execute(ctx)
}

// ReportError writes err to w in the active mode and returns the exit code
// the process should terminate with.
func ReportError(w io.Writer, err error, mode OutputMode, theme Theme, verbose bool) int {
	if err == nil {
		return ExitCodeSuccess
	}
	cliErr := AsError(err)
	if cliErr.Category == CategoryInternal {
		logging.Error("kernel", cliErr.Cause, "internal error")
	}
	out := strings.TrimRightFunc(RenderError(cliErr, mode, theme, verbose), unicode.IsSpace)
	fmt.Fprintln(w, out)
	return cliErr.ExitCode()
}
