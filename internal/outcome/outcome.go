package outcome

import (
	"context"
	"fmt"
	"time"

	"cloudctl/internal/cli"
)

// CreationStatus is what a gateway reports after a create call: either the
// resource already existed, or it was created. Exactly one of the two
// constructors should be used to build it.
type CreationStatus[T any] struct {
	Resource T
	Existed  bool
}

// AlreadyExistsStatus reports that the resource was found and left untouched.
func AlreadyExistsStatus[T any](resource T) CreationStatus[T] {
	return CreationStatus[T]{Resource: resource, Existed: true}
}

// CreatedStatus reports that the resource was created.
func CreatedStatus[T any](resource T) CreationStatus[T] {
	return CreationStatus[T]{Resource: resource}
}

// DeletionStatus is what a gateway reports after a delete call: either the
// resource was missing, or it was deleted.
type DeletionStatus[ID any] struct {
	ID      ID
	Missing bool
}

// NotFoundStatus reports that there was nothing to delete.
func NotFoundStatus[ID any](id ID) DeletionStatus[ID] {
	return DeletionStatus[ID]{ID: id, Missing: true}
}

// DeletedStatus reports that the resource was deleted.
func DeletedStatus[ID any](id ID) DeletionStatus[ID] {
	return DeletionStatus[ID]{ID: id}
}

// Create is the closed set of outcomes of a create operation:
// AlreadyExists, IllegallyAlreadyExists and Created.
type Create[T any] interface {
	// Succeeded reports whether the outcome is a success kind.
	Succeeded() bool
	isCreate()
}

// AlreadyExists is the soft-success outcome: the resource existed and the
// caller asked for that to be accepted.
type AlreadyExists[T any] struct {
	Resource T
}

// IllegallyAlreadyExists is the conflict outcome: the resource existed and
// the caller did not ask for that to be accepted.
type IllegallyAlreadyExists[T any] struct {
	Resource T
}

// Created is the success outcome of a mutation. Waited is the time spent
// waiting for the resource to stabilize; zero when no wait happened.
type Created[T any] struct {
	Resource T
	Waited   time.Duration
}

func (AlreadyExists[T]) isCreate()          {}
func (IllegallyAlreadyExists[T]) isCreate() {}
func (Created[T]) isCreate()                {}

func (AlreadyExists[T]) Succeeded() bool          { return true }
func (IllegallyAlreadyExists[T]) Succeeded() bool { return false }
func (Created[T]) Succeeded() bool                { return true }

// Delete is the closed set of outcomes of a delete operation:
// NotFound, IllegallyNotFound and Deleted.
type Delete[ID any] interface {
	Succeeded() bool
	isDelete()
}

// NotFound is the soft-success outcome: nothing to delete and the caller
// asked for that to be accepted.
type NotFound[ID any] struct {
	ID ID
}

// IllegallyNotFound is the error outcome: nothing to delete and the caller
// did not ask for that to be accepted.
type IllegallyNotFound[ID any] struct {
	ID ID
}

// Deleted is the success outcome of a mutation.
type Deleted[ID any] struct {
	ID     ID
	Waited time.Duration
}

func (NotFound[ID]) isDelete()          {}
func (IllegallyNotFound[ID]) isDelete() {}
func (Deleted[ID]) isDelete()           {}

func (NotFound[ID]) Succeeded() bool          { return true }
func (IllegallyNotFound[ID]) Succeeded() bool { return false }
func (Deleted[ID]) Succeeded() bool           { return true }

// DecideCreate runs the create protocol. probe looks up the resource and is
// always called first. Only when the resource is absent is create called, so
// at most one mutation happens per call.
func DecideCreate[T any](ctx context.Context, ifNotExists bool, probe func(context.Context) (T, bool, error), create func(context.Context) (T, error)) (Create[T], error) {
	existing, found, err := probe(ctx)
	if err != nil {
		return nil, err
	}
	if found {
		if ifNotExists {
			return AlreadyExists[T]{Resource: existing}, nil
		}
		return IllegallyAlreadyExists[T]{Resource: existing}, nil
	}

	created, err := create(ctx)
	if err != nil {
		return nil, err
	}
	return Created[T]{Resource: created}, nil
}

// FromCreationStatus maps a gateway status onto the create outcomes, for
// gateways whose create call probes on its own.
func FromCreationStatus[T any](status CreationStatus[T], ifNotExists bool) Create[T] {
	switch {
	case !status.Existed:
		return Created[T]{Resource: status.Resource}
	case ifNotExists:
		return AlreadyExists[T]{Resource: status.Resource}
	default:
		return IllegallyAlreadyExists[T]{Resource: status.Resource}
	}
}

// DecideDelete runs the delete protocol: probe first, mutate only if present.
func DecideDelete[ID any](ctx context.Context, id ID, ifExists bool, probe func(context.Context) (bool, error), remove func(context.Context) error) (Delete[ID], error) {
	found, err := probe(ctx)
	if err != nil {
		return nil, err
	}
	if !found {
		if ifExists {
			return NotFound[ID]{ID: id}, nil
		}
		return IllegallyNotFound[ID]{ID: id}, nil
	}

	if err := remove(ctx); err != nil {
		return nil, err
	}
	return Deleted[ID]{ID: id}, nil
}

// FromDeletionStatus maps a gateway status onto the delete outcomes.
func FromDeletionStatus[ID any](status DeletionStatus[ID], ifExists bool) Delete[ID] {
	switch {
	case !status.Missing:
		return Deleted[ID]{ID: status.ID}
	case ifExists:
		return NotFound[ID]{ID: status.ID}
	default:
		return IllegallyNotFound[ID]{ID: status.ID}
	}
}

// MatchCreate calls the handler for o's variant. Every handler is a required
// parameter, so adding a variant breaks every call site at compile time.
func MatchCreate[T, R any](o Create[T],
	onAlreadyExists func(AlreadyExists[T]) (R, error),
	onIllegallyAlreadyExists func(IllegallyAlreadyExists[T]) (R, error),
	onCreated func(Created[T]) (R, error),
) (R, error) {
	switch v := o.(type) {
	case AlreadyExists[T]:
		return onAlreadyExists(v)
	case IllegallyAlreadyExists[T]:
		return onIllegallyAlreadyExists(v)
	case Created[T]:
		return onCreated(v)
	}
	var zero R
	return zero, cli.InternalError(fmt.Errorf("unhandled create outcome %T", o))
}

// MatchDelete calls the handler for o's variant.
func MatchDelete[ID, R any](o Delete[ID],
	onNotFound func(NotFound[ID]) (R, error),
	onIllegallyNotFound func(IllegallyNotFound[ID]) (R, error),
	onDeleted func(Deleted[ID]) (R, error),
) (R, error) {
	switch v := o.(type) {
	case NotFound[ID]:
		return onNotFound(v)
	case IllegallyNotFound[ID]:
		return onIllegallyNotFound(v)
	case Deleted[ID]:
		return onDeleted(v)
	}
	var zero R
	return zero, cli.InternalError(fmt.Errorf("unhandled delete outcome %T", o))
}
