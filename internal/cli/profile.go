package cli

import (
	"fmt"
	"os"
	"sync"

	"cloudctl/pkg/logging"
)

const (
	// ProfileEnvVar overrides the default profile when --profile is not set.
	ProfileEnvVar = "CLOUDCTL_PROFILE"
	// DefaultProfileName names the default profile in lookups.
	DefaultProfileName = "default"
	// TokenProfileName is the name given to a profile built from --token.
	TokenProfileName = "<arg_provided_token>"
	// DefaultEnvironment is the environment a --token profile targets unless
	// --env says otherwise.
	DefaultEnvironment = "prod"
)

// Profile holds the credentials a connected command runs with.
type Profile struct {
	Name        string
	Token       string
	Environment string
}

// ProfileStore looks up saved profiles by name. Looking up DefaultProfileName
// returns the default profile.
type ProfileStore interface {
	LookupProfile(name string) (Profile, bool, error)
}

// ProfileSelection is what the user asked for on the command line.
type ProfileSelection struct {
	// Token is an explicit --token; it takes precedence over everything.
	Token string
	// Environment applies to Token only.
	Environment string
	// Name is an explicit --profile.
	Name string
}

// ProfileResolver resolves the active profile once and caches the result for
// the rest of the invocation.
type ProfileResolver struct {
	store     ProfileStore
	selection ProfileSelection

	once    sync.Once
	profile Profile
	err     error
}

// NewProfileResolver creates a resolver. Nothing is looked up until Resolve.
func NewProfileResolver(store ProfileStore, selection ProfileSelection) *ProfileResolver {
	return &ProfileResolver{store: store, selection: selection}
}

// Resolve returns the active profile using this precedence:
//  1. --token, with --env or the production environment
//  2. --profile
//  3. the CLOUDCTL_PROFILE environment variable
//  4. the default profile
//
// The first call does the lookup; later calls return the cached result,
// including a cached error.
func (r *ProfileResolver) Resolve() (Profile, error) {
	r.once.Do(func() {
		r.profile, r.err = r.resolve()
		if r.err == nil {
			logging.Debug("kernel", "resolved profile %s (environment %s)", r.profile.Name, r.profile.Environment)
		}
	})
	return r.profile, r.err
}

func (r *ProfileResolver) resolve() (Profile, error) {
	if r.selection.Token != "" {
		env := r.selection.Environment
		if env == "" {
			env = DefaultEnvironment
		}
		return Profile{Name: TokenProfileName, Token: r.selection.Token, Environment: env}, nil
	}

	name := r.selection.Name
	if name == "" {
		name = os.Getenv(ProfileEnvVar)
	}
	if name == "" {
		name = DefaultProfileName
	}

	if r.store == nil {
		return Profile{}, profileNotFound(name)
	}
	p, ok, err := r.store.LookupProfile(name)
	if err != nil {
		return Profile{}, &Error{
			Category: CategoryProfileNotFound,
			Message:  fmt.Sprintf("Could not read profile %s.", Highlight(name)),
			Hints:    []Hint{NewHint("List your profiles:", "cloudctl config list")},
			Cause:    err,
		}
	}
	if !ok {
		return Profile{}, profileNotFound(name)
	}
	return p, nil
}

func profileNotFound(name string) *Error {
	msg := fmt.Sprintf("Profile %s does not exist.", Highlight(name))
	hints := []Hint{NewHint("List your profiles:", "cloudctl config list")}
	if name == DefaultProfileName {
		msg = "No default profile is configured."
		hints = append(hints, NewHint("Create a default profile:", "cloudctl config create <name> --token <token> --default"))
	}
	return &Error{Category: CategoryProfileNotFound, Message: msg, Hints: hints}
}
