package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"

	"cloudctl/internal/api"
	"cloudctl/internal/cli"
	"cloudctl/internal/gateway"
)

// exactArgs requires one positional argument per name.
func exactArgs(names ...string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		switch {
		case len(args) < len(names):
			return cli.ValidationError("Missing argument %s.", strings.ToUpper(names[len(args)])).WithHints(usage(cmd))
		case len(args) > len(names):
			return cli.ValidationError("Unexpected argument %s.", cli.Highlight(args[len(names)])).WithHints(usage(cmd))
		}
		return nil
	}
}

// maxArgs allows at most n positional arguments.
func maxArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) > n {
			return cli.ValidationError("Unexpected argument %s.", cli.Highlight(args[n])).WithHints(usage(cmd))
		}
		return nil
	}
}

// resourceKind describes a resource type for messages and hints.
type resourceKind struct {
	// Noun is the user-facing name, e.g. "database".
	Noun string
	// Plural is used in list hints.
	Plural string
	// Command is the command group, e.g. "db".
	Command string
}

var (
	databaseKind = resourceKind{Noun: "database", Plural: "databases", Command: "db"}
	tenantKind   = resourceKind{Noun: "tenant", Plural: "tenants", Command: "streaming"}
	userKind     = resourceKind{Noun: "user", Plural: "users", Command: "user"}
	roleKind     = resourceKind{Noun: "role", Plural: "roles", Command: "role"}
	tokenKind    = resourceKind{Noun: "token", Plural: "tokens", Command: "token"}
	profileKind  = resourceKind{Noun: "profile", Plural: "profiles", Command: "config"}
)

var kindsByNoun = map[string]resourceKind{
	databaseKind.Noun: databaseKind,
	tenantKind.Noun:   tenantKind,
	userKind.Noun:     userKind,
	roleKind.Noun:     roleKind,
	tokenKind.Noun:    tokenKind,
	profileKind.Noun:  profileKind,
}

// Title returns the noun with its first letter in upper case.
func (k resourceKind) Title() string {
	return strings.ToUpper(k.Noun[:1]) + k.Noun[1:]
}

// listHint points at the list command of the kind.
func (k resourceKind) listHint() cli.Hint {
	return cli.NewHint(fmt.Sprintf("See your existing %s:", k.Plural), fmt.Sprintf("%s %s list", cli.RootCommandName, k.Command))
}

// getHint points at the get command for ref.
func (k resourceKind) getHint(label, ref string) cli.Hint {
	return cli.NewHint(label, fmt.Sprintf("%s %s get %s", cli.RootCommandName, k.Command, cli.ShellQuote(ref)))
}

// alreadyExists is the error for a create without --if-not-exists whose
// target exists.
func (rt *runtime) alreadyExists(k resourceKind, ref string) *cli.Error {
	return cli.NewError(cli.CategoryAlreadyExists,
		fmt.Sprintf("%s %s already exists.", k.Title(), cli.Highlight(ref)),
		rt.inv.FixHint("--if-not-exists"),
		k.listHint(),
	)
}

// notFound is the error for a delete without --if-exists whose target is
// missing.
func (rt *runtime) notFound(k resourceKind, ref string) *cli.Error {
	return cli.NewError(cli.CategoryNotFound,
		fmt.Sprintf("%s %s could not be found.", k.Title(), cli.Highlight(ref)),
		rt.inv.FixHint("--if-exists"),
		k.listHint(),
	)
}

// translate maps gateway errors onto the error taxonomy. kind is used for
// not-found errors that do not name their own kind.
func translate(err error, kind resourceKind) error {
	if err == nil {
		return nil
	}

	var cliErr *cli.Error
	if errors.As(err, &cliErr) {
		return err
	}

	var nf *gateway.NotFoundError
	if errors.As(err, &nf) {
		k, ok := kindsByNoun[nf.Kind]
		if !ok {
			k = kind
		}
		return cli.NewError(cli.CategoryNotFound,
			fmt.Sprintf("%s %s could not be found.", k.Title(), cli.Highlight(nf.Ref)),
			k.listHint(),
		).WithCause(err)
	}

	if errors.Is(err, gateway.ErrUnauthorized) {
		return cli.NewError(cli.CategoryValidation,
			"The token was rejected. It may have been revoked or lack the permissions for this operation.",
			cli.NewHint("Check the token of your profile:", cli.RootCommandName+" config get"),
		).WithCause(err)
	}

	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		return &cli.Error{
			Category: cli.CategoryInternal,
			Message:  fmt.Sprintf("The request was rejected by the API (status %d).", apiErr.StatusCode),
			Cause:    err,
		}
	}
	return err
}

var validate = validator.New()

// validateEmail checks an email argument.
func validateEmail(email string) error {
	if err := validate.Var(email, "required,email"); err != nil {
		return cli.ValidationError("%s is not a valid email address.", cli.Highlight(email))
	}
	return nil
}

// waitOptions returns the poll options for a wait of at most timeout.
// A zero timeout uses the settings default.
func (rt *runtime) waitOptions(timeout time.Duration) cli.PollOptions {
	if timeout <= 0 {
		timeout = rt.settings.Wait.Timeout
	}
	return cli.PollOptions{
		Timeout:  timeout,
		Interval: rt.settings.Wait.Interval,
		Clock:    rt.app.Clock,
	}
}

// validateTimeout rejects a negative --timeout.
func validateTimeout(timeout time.Duration) error {
	if timeout < 0 {
		return cli.ValidationError("--timeout must not be negative, got %s.", timeout)
	}
	return nil
}

// awaitDatabase polls the database until its status is target. A database
// that disappeared counts as TERMINATED.
func (rt *runtime) awaitDatabase(ctx context.Context, dbs gateway.DatabaseGateway, db gateway.Database, target gateway.DatabaseStatus, timeout time.Duration) (cli.PollResult[gateway.DatabaseStatus], error) {
	progress := rt.kernel.Progress()
	progress.PushMessage(fmt.Sprintf("Waiting for database %s to become %s", cli.Highlight(db.Name), target))
	defer progress.PopMessage()

	opts := rt.waitOptions(timeout)
	res, err := cli.Poll(ctx, opts, func(ctx context.Context) (gateway.DatabaseStatus, error) {
		current, err := dbs.FindOne(ctx, db.ID)
		if gateway.IsNotFound(err) {
			return gateway.DatabaseTerminated, nil
		}
		if err != nil {
			return "", err
		}
		progress.UpdateMessage(fmt.Sprintf("Waiting for database %s to become %s (currently %s)", cli.Highlight(db.Name), target, current.Status))
		return current.Status, nil
	}, func(s gateway.DatabaseStatus) bool {
		return s == target
	})
	if err == nil {
		return res, nil
	}

	var cliErr *cli.Error
	if errors.As(err, &cliErr) && cliErr.Category == cli.CategoryTimeout {
		return res, cli.NewError(cli.CategoryTimeout,
			fmt.Sprintf("Timed out after %s waiting for database %s to become %s (current status: %s). The operation is still in progress and the database may still become %s.",
				opts.Timeout, cli.Highlight(db.Name), target, res.LastObserved, target),
			databaseKind.getHint("Check the status of the database:", db.Name),
			rt.inv.FixHint("--timeout=30m"),
		).WithCause(err)
	}
	return res, translate(err, databaseKind)
}

// roundWait rounds a wait for display.
func roundWait(d time.Duration) time.Duration {
	return d.Round(time.Second)
}
