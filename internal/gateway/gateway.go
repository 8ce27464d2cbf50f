package gateway

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"cloudctl/internal/cli"
	"cloudctl/internal/outcome"
)

// ErrUnauthorized is returned when the API rejects the token.
var ErrUnauthorized = errors.New("the token was rejected by the API")

// NotFoundError is returned when a referenced resource doesn't exist.
type NotFoundError struct {
	Kind string
	Ref  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.Ref)
}

// Is allows errors.Is() to work with wrapped errors.
func (e *NotFoundError) Is(target error) bool {
	_, ok := target.(*NotFoundError)
	return ok
}

// IsNotFound reports whether err is or wraps a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// Progress is the part of the progress indicator gateways use to describe
// the remote call in flight.
type Progress interface {
	PushMessage(msg string)
	PopMessage()
}

// NoProgress discards progress messages.
type NoProgress struct{}

func (NoProgress) PushMessage(string) {}
func (NoProgress) PopMessage()        {}

var _ Progress = (*cli.Indicator)(nil)

// Step runs fn with msg pushed onto p.
func Step[T any](p Progress, msg string, fn func() (T, error)) (T, error) {
	if p == nil {
		return fn()
	}
	p.PushMessage(msg)
	defer p.PopMessage()
	return fn()
}

// DatabaseGateway manages databases. A database reference is an id or a name.
type DatabaseGateway interface {
	FindOne(ctx context.Context, ref string) (Database, error)
	FindAll(ctx context.Context) ([]Database, error)
	Exists(ctx context.Context, ref string) (bool, error)
	Create(ctx context.Context, spec DatabaseSpec) (outcome.CreationStatus[Database], error)
	Delete(ctx context.Context, ref string) (outcome.DeletionStatus[string], error)
}

// TenantGateway manages streaming tenants, referenced by name.
type TenantGateway interface {
	FindOne(ctx context.Context, name string) (Tenant, error)
	FindAll(ctx context.Context) ([]Tenant, error)
	Exists(ctx context.Context, name string) (bool, error)
	Create(ctx context.Context, spec TenantSpec) (outcome.CreationStatus[Tenant], error)
	Delete(ctx context.Context, name string) (outcome.DeletionStatus[string], error)
}

// UserGateway manages organization users. A user reference is a UUID or an
// email address.
type UserGateway interface {
	FindOne(ctx context.Context, ref string) (User, error)
	FindAll(ctx context.Context) ([]User, error)
	Exists(ctx context.Context, ref string) (bool, error)
	Invite(ctx context.Context, email string, roles []string) (outcome.CreationStatus[User], error)
	Delete(ctx context.Context, ref string) (outcome.DeletionStatus[string], error)
}

// RoleGateway manages organization roles, referenced by id or name.
type RoleGateway interface {
	FindOne(ctx context.Context, ref string) (Role, error)
	FindAll(ctx context.Context) ([]Role, error)
	Exists(ctx context.Context, ref string) (bool, error)
	Create(ctx context.Context, spec RoleSpec) (outcome.CreationStatus[Role], error)
	Delete(ctx context.Context, ref string) (outcome.DeletionStatus[string], error)
}

// TokenGateway manages application tokens, referenced by client id.
type TokenGateway interface {
	FindAll(ctx context.Context) ([]Token, error)
	Exists(ctx context.Context, clientID string) (bool, error)
	Create(ctx context.Context, roles []string) (Token, error)
	Delete(ctx context.Context, clientID string) (outcome.DeletionStatus[string], error)
}

// Set bundles the gateways of one profile.
type Set struct {
	Databases DatabaseGateway
	Tenants   TenantGateway
	Users     UserGateway
	Roles     RoleGateway
	Tokens    TokenGateway
}

// IsUUID reports whether ref parses as a UUID. References that are UUIDs are
// matched by id, anything else by name or email.
func IsUUID(ref string) bool {
	_, err := uuid.Parse(ref)
	return err == nil
}

// MatchDatabase reports whether db is referenced by ref.
func MatchDatabase(db Database, ref string) bool {
	if IsUUID(ref) {
		return db.ID == ref
	}
	return db.Name == ref
}

// MatchUser reports whether u is referenced by ref.
func MatchUser(u User, ref string) bool {
	if IsUUID(ref) {
		return u.ID == ref
	}
	return u.Email == ref
}

// MatchRole reports whether r is referenced by ref.
func MatchRole(r Role, ref string) bool {
	if IsUUID(ref) {
		return r.ID == ref
	}
	return r.Name == ref
}

// FindFirst returns the first item matching ref.
func FindFirst[T any](items []T, ref string, match func(T, string) bool) (T, bool) {
	for _, it := range items {
		if match(it, ref) {
			return it, true
		}
	}
	var zero T
	return zero, false
}
