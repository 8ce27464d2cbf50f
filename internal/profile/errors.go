package profile

import "fmt"

// ProfileNotFoundError is returned when a profile doesn't exist.
type ProfileNotFoundError struct {
	Name string
}

func (e *ProfileNotFoundError) Error() string {
	return fmt.Sprintf("profile %q not found", e.Name)
}

// Is allows errors.Is() to work with wrapped errors.
func (e *ProfileNotFoundError) Is(target error) bool {
	_, ok := target.(*ProfileNotFoundError)
	return ok
}
