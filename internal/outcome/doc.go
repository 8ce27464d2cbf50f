// Package outcome defines the closed result shapes of mutating commands.
//
// A create command ends in AlreadyExists, IllegallyAlreadyExists or Created;
// a delete command in NotFound, IllegallyNotFound or Deleted. DecideCreate and
// DecideDelete implement the shared protocol: probe the current state first,
// then either accept it (idempotency flag set), reject it (flag unset), or
// perform the single mutation.
package outcome
