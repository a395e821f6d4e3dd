package domain

import "fmt"

// ErrNotFound is returned when a referenced identifier is absent from the
// registry.
type ErrNotFound struct {
	Entity EntityType
	ID     string
}

func (e ErrNotFound) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// ErrDuplicateID is returned when creation collides with an existing
// identifier.
type ErrDuplicateID struct {
	Entity EntityType
	ID     string
}

func (e ErrDuplicateID) Error() string {
	return fmt.Sprintf("%s %s already exists", e.Entity, e.ID)
}

// ErrInvalidState is returned when an attribute value or transition violates
// a registry invariant. The failed change set is never applied.
type ErrInvalidState struct {
	Entity EntityType
	ID     string
	Reason string
}

func (e ErrInvalidState) Error() string {
	return fmt.Sprintf("%s %s invalid: %s", e.Entity, e.ID, e.Reason)
}

// ErrInsufficientData is returned when analysis is requested on an entity
// missing the attributes the computation requires.
type ErrInsufficientData struct {
	Entity  EntityType
	ID      string
	Missing string
}

func (e ErrInsufficientData) Error() string {
	return fmt.Sprintf("%s %s missing data for analysis: %s", e.Entity, e.ID, e.Missing)
}
